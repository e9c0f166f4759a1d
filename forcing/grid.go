package forcing

import (
	"fmt"
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/meteocima/wrfhydro-runner/ncvar"
)

// Variables are the names of the forcing file variables
// used by this package.
type Variables struct {
	Rain string
	Lon  string
	Lat  string
}

// DefaultVariables returns the names used by WRF-Hydro LDASIN files.
func DefaultVariables() Variables {
	return Variables{
		Rain: "RAINRATE",
		Lon:  "XLONG",
		Lat:  "XLAT",
	}
}

// Grid is the spatial grid of a forcing file.
type Grid struct {
	Lon *sparse.DenseArray
	Lat *sparse.DenseArray
}

// Shape returns the number of rows and columns of the grid.
func (g *Grid) Shape() (ny, nx int) {
	return g.Lon.Shape[0], g.Lon.Shape[1]
}

// ReadGrid reads longitude and latitude at the
// first time index of the forcing file.
func ReadGrid(file string, vars Variables) (*Grid, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("ReadGrid `%s`: Open error: %w", file, err)
	}
	defer f.Close()

	ff, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("ReadGrid `%s`: cdf.Open error: %w", file, err)
	}

	lon, err := ncvar.Read(ff, vars.Lon, 0)
	if err != nil {
		return nil, fmt.Errorf("ReadGrid `%s`: %w", file, err)
	}
	lat, err := ncvar.Read(ff, vars.Lat, 0)
	if err != nil {
		return nil, fmt.Errorf("ReadGrid `%s`: %w", file, err)
	}
	if len(lon.Elements) != len(lat.Elements) {
		return nil, fmt.Errorf("ReadGrid `%s`: `%s` and `%s` have different shapes", file, vars.Lon, vars.Lat)
	}

	return &Grid{Lon: lon, Lat: lat}, nil
}
