// Package rainfall provides gridded rainfall datasets,
// indexed by time, in millimeters per hour.
package rainfall

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/meteocima/wrfhydro-runner/ncvar"
)

// Source is a time-indexed gridded rainfall dataset.
// At returns the 2-D field in mm/h for the exact timestamp t,
// or false if t is not in the dataset. The field must be
// aligned to the grid of the forcing files it is written to.
type Source interface {
	At(t time.Time) (*sparse.DenseArray, bool)
}

// Series is an in-memory Source.
type Series struct {
	fields map[int64]*sparse.DenseArray
}

// NewSeries returns an empty Series.
func NewSeries() *Series {
	return &Series{fields: map[int64]*sparse.DenseArray{}}
}

// Add sets the field for timestamp t, replacing any previous one.
func (s *Series) Add(t time.Time, field *sparse.DenseArray) {
	s.fields[t.Unix()] = field
}

// At ...
func (s *Series) At(t time.Time) (*sparse.DenseArray, bool) {
	field, ok := s.fields[t.Unix()]
	return field, ok
}

// Times returns the timestamps of the series in ascending order.
func (s *Series) Times() []time.Time {
	res := make([]time.Time, 0, len(s.fields))
	for sec := range s.fields {
		res = append(res, time.Unix(sec, 0).UTC())
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Before(res[j]) })
	return res
}

// Len returns the number of timestamps in the series.
func (s *Series) Len() int {
	return len(s.fields)
}

var unitDurations = map[string]time.Duration{
	"seconds": time.Second,
	"minutes": time.Minute,
	"hours":   time.Hour,
	"days":    24 * time.Hour,
}

var epochLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05Z",
	"2006-01-02",
}

// parseTimeUnits parses a COARDS time unit such as
// "hours since 2017-06-03 00:00:00".
func parseTimeUnits(units string) (time.Duration, time.Time, error) {
	parts := strings.SplitN(strings.TrimSpace(units), " since ", 2)
	if len(parts) != 2 {
		return 0, time.Time{}, fmt.Errorf("unsupported time units `%s`", units)
	}
	step, ok := unitDurations[strings.ToLower(strings.TrimSpace(parts[0]))]
	if !ok {
		return 0, time.Time{}, fmt.Errorf("unsupported time units `%s`", units)
	}
	epochS := strings.TrimSpace(parts[1])
	for _, layout := range epochLayouts {
		epoch, err := time.Parse(layout, epochS)
		if err == nil {
			return step, epoch, nil
		}
	}
	return 0, time.Time{}, fmt.Errorf("unsupported reference date in time units `%s`", units)
}

// OpenNetCDF loads a classic NetCDF rainfall dataset in memory.
// The file must contain a `time` coordinate with COARDS units
// ("<unit> since <date>") and the variable varName with dimensions
// (time, y, x) in mm/h. Cells equal to _FillValue become NaN.
func OpenNetCDF(path, varName string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("OpenNetCDF `%s`: Open error: %w", path, err)
	}
	defer f.Close()

	ff, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("OpenNetCDF `%s`: cdf.Open error: %w", path, err)
	}

	unitsI := ff.Header.GetAttribute("time", "units")
	units, ok := unitsI.(string)
	if !ok {
		return nil, fmt.Errorf("OpenNetCDF `%s`: missing units of time variable", path)
	}
	step, epoch, err := parseTimeUnits(units)
	if err != nil {
		return nil, fmt.Errorf("OpenNetCDF `%s`: %w", path, err)
	}

	offsets, err := ncvar.ReadAll(ff, "time")
	if err != nil {
		return nil, fmt.Errorf("OpenNetCDF `%s`: %w", path, err)
	}

	ny, nx, err := ncvar.Shape(ff, varName)
	if err != nil {
		return nil, fmt.Errorf("OpenNetCDF `%s`: %w", path, err)
	}
	values, err := ncvar.ReadAll(ff, varName)
	if err != nil {
		return nil, fmt.Errorf("OpenNetCDF `%s`: %w", path, err)
	}
	if len(values) != len(offsets)*ny*nx {
		return nil, fmt.Errorf("OpenNetCDF `%s`: variable `%s` has %d values, expecting %d", path, varName, len(values), len(offsets)*ny*nx)
	}

	series := NewSeries()
	cells := ny * nx
	for i, offset := range offsets {
		field := sparse.ZerosDense(ny, nx)
		copy(field.Elements, values[i*cells:(i+1)*cells])
		dt := epoch.Add(time.Duration(offset * float64(step)))
		series.Add(dt.Round(time.Second), field)
	}
	return series, nil
}
