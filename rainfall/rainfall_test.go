package rainfall

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/ctessum/sparse"
	"github.com/meteocima/wrfhydro-runner/ncvar/ncvartest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeries(t *testing.T) {
	s := NewSeries()
	t0 := time.Date(2017, 6, 3, 2, 0, 0, 0, time.UTC)
	field := sparse.ZerosDense(2, 2)
	s.Add(t0, field)

	got, ok := s.At(t0.In(time.FixedZone("IST", 2*3600)))
	assert.True(t, ok)
	assert.Same(t, field, got)

	_, ok = s.At(t0.Add(time.Hour))
	assert.False(t, ok)

	s.Add(t0.Add(-time.Hour), field)
	assert.Equal(t, 2, s.Len())
	times := s.Times()
	assert.True(t, times[0].Before(times[1]))
}

func TestParseTimeUnits(t *testing.T) {
	step, epoch, err := parseTimeUnits("hours since 2017-06-03 00:00:00")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, step)
	assert.Equal(t, time.Date(2017, 6, 3, 0, 0, 0, 0, time.UTC), epoch)

	step, _, err = parseTimeUnits("minutes since 1970-01-01")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, step)

	_, _, err = parseTimeUnits("fortnights since 1970-01-01")
	assert.Error(t, err)
	_, _, err = parseTimeUnits("hours")
	assert.Error(t, err)
}

func TestOpenNetCDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cml_rainfall.nc")
	g := ncvartest.Grid{NY: 2, NX: 2}
	t0 := time.Date(2017, 6, 3, 1, 0, 0, 0, time.UTC)
	ncvartest.WriteRainfall(t, path, "rainfall", g,
		[]time.Time{t0, t0.Add(time.Hour), t0.Add(3 * time.Hour)},
		[][]float32{
			{36, 36, 36, -1},
			{1, 2, 3, 4},
			{0, 0, 0, 0},
		},
		-1,
	)

	s, err := OpenNetCDF(path, "rainfall")
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())

	field, ok := s.At(t0)
	require.True(t, ok)
	assert.Equal(t, []int{2, 2}, field.Shape)
	assert.Equal(t, 36.0, field.Get(0, 0))
	assert.True(t, math.IsNaN(field.Get(1, 1)))

	field, ok = s.At(t0.Add(time.Hour))
	require.True(t, ok)
	assert.Equal(t, 3.0, field.Get(1, 0))

	_, ok = s.At(t0.Add(2 * time.Hour))
	assert.False(t, ok)

	_, err = OpenNetCDF(path, "precip")
	assert.Error(t, err)
	_, err = OpenNetCDF(filepath.Join(t.TempDir(), "missing.nc"), "rainfall")
	assert.Error(t, err)
}
