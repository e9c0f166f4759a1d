// Package ncvartest creates small NetCDF files for tests.
package ncvartest

import (
	"os"
	"testing"
	"time"

	"github.com/ctessum/cdf"
	"github.com/stretchr/testify/require"
)

// Grid is a forcing grid of NY rows and NX columns.
type Grid struct {
	NY, NX int
}

// Lon returns longitudes increasing along columns.
func (g Grid) Lon() []float32 {
	res := make([]float32, g.NY*g.NX)
	for j := 0; j < g.NY; j++ {
		for i := 0; i < g.NX; i++ {
			res[j*g.NX+i] = 35.0 + 0.5*float32(i)
		}
	}
	return res
}

// Lat returns latitudes increasing along rows.
func (g Grid) Lat() []float32 {
	res := make([]float32, g.NY*g.NX)
	for j := 0; j < g.NY; j++ {
		for i := 0; i < g.NX; i++ {
			res[j*g.NX+i] = 31.0 + 0.25*float32(j)
		}
	}
	return res
}

// Fill returns a slice of NY*NX cells all set to v.
func (g Grid) Fill(v float32) []float32 {
	res := make([]float32, g.NY*g.NX)
	for i := range res {
		res[i] = v
	}
	return res
}

func writeVar(t *testing.T, f *cdf.File, name string, begin, end []int, data interface{}) {
	w := f.Writer(name, begin, end)
	_, err := w.Write(data)
	require.NoError(t, err)
}

// WriteForcing creates an LDASIN-like file at path with the variables
// XLONG, XLAT and RAINRATE, all with dimensions (Time, south_north, west_east).
func WriteForcing(t *testing.T, path string, g Grid, rain float32) {
	dims := []string{"Time", "south_north", "west_east"}
	h := cdf.NewHeader(dims, []int{1, g.NY, g.NX})
	h.AddVariable("XLONG", dims, []float32{0})
	h.AddVariable("XLAT", dims, []float32{0})
	h.AddVariable("RAINRATE", dims, []float32{0})
	h.AddAttribute("RAINRATE", "units", "mm s^-1")
	h.Define()
	require.Empty(t, h.Check())

	ff, err := os.Create(path)
	require.NoError(t, err)
	defer ff.Close()

	f, err := cdf.Create(ff, h)
	require.NoError(t, err)

	begin, end := []int{0, 0, 0}, []int{1, g.NY, g.NX}
	writeVar(t, f, "XLONG", begin, end, g.Lon())
	writeVar(t, f, "XLAT", begin, end, g.Lat())
	writeVar(t, f, "RAINRATE", begin, end, g.Fill(rain))
}

// WriteRainfall creates a gridded rainfall dataset at path with one
// (time, y, x) variable named varName in mm/h, and a time coordinate
// in hours since the first of times. Cells equal to fill are
// flagged through the _FillValue attribute.
func WriteRainfall(t *testing.T, path, varName string, g Grid, times []time.Time, fields [][]float32, fill float32) {
	require.Equal(t, len(times), len(fields))

	h := cdf.NewHeader([]string{"time", "y", "x"}, []int{len(times), g.NY, g.NX})
	h.AddVariable("time", []string{"time"}, []float64{0})
	h.AddAttribute("time", "units", "hours since "+times[0].Format("2006-01-02 15:04:05"))
	h.AddVariable(varName, []string{"time", "y", "x"}, []float32{0})
	h.AddAttribute(varName, "units", "mm h-1")
	h.AddAttribute(varName, "_FillValue", []float32{fill})
	h.Define()
	require.Empty(t, h.Check())

	ff, err := os.Create(path)
	require.NoError(t, err)
	defer ff.Close()

	f, err := cdf.Create(ff, h)
	require.NoError(t, err)

	hours := make([]float64, len(times))
	for i, dt := range times {
		hours[i] = dt.Sub(times[0]).Hours()
	}
	writeVar(t, f, "time", []int{0}, []int{len(times)}, hours)

	for i, field := range fields {
		writeVar(t, f, varName, []int{i, 0, 0}, []int{i + 1, g.NY, g.NX}, field)
	}
}

// ReadVar returns time slice 0 of variable name of the file at path.
func ReadVar(t *testing.T, path, name string) []float32 {
	ff, err := os.Open(path)
	require.NoError(t, err)
	defer ff.Close()

	f, err := cdf.Open(ff)
	require.NoError(t, err)

	dims := f.Header.Lengths(name)
	require.Len(t, dims, 3)
	r := f.Reader(name, []int{0, 0, 0}, []int{1, dims[1], dims[2]})
	buf := r.Zero(dims[1] * dims[2])
	_, err = r.Read(buf)
	require.NoError(t, err)
	return buf.([]float32)
}
