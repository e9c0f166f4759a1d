// Package ncvar reads and writes gridded floating point
// variables of classic NetCDF files.
//
// Gridded variables have either the dimensions (y, x) or
// (time, y, x); in the latter case a single time slice
// is read or written.
package ncvar

import (
	"fmt"
	"math"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// Has reports whether the file contains variable name.
func Has(ff *cdf.File, name string) bool {
	return len(ff.Header.Lengths(name)) > 0
}

// Shape returns the lengths of the last two dimensions of variable name.
func Shape(ff *cdf.File, name string) (ny, nx int, err error) {
	dims := ff.Header.Lengths(name)
	switch len(dims) {
	case 0:
		return 0, 0, fmt.Errorf("variable `%s` not in file", name)
	case 2, 3:
		return dims[len(dims)-2], dims[len(dims)-1], nil
	}
	return 0, 0, fmt.Errorf("variable `%s` has %d dimensions, expecting 2 or 3", name, len(dims))
}

func bounds(ff *cdf.File, name string, index int) (begin, end []int, ny, nx int, err error) {
	ny, nx, err = Shape(ff, name)
	if err != nil {
		return nil, nil, 0, 0, err
	}
	if len(ff.Header.Lengths(name)) == 2 {
		return []int{0, 0}, []int{ny, nx}, ny, nx, nil
	}
	return []int{index, 0, 0}, []int{index + 1, ny, nx}, ny, nx, nil
}

// Read returns the time slice index of variable name.
// Cells equal to the variable _FillValue are returned as NaN.
func Read(ff *cdf.File, name string, index int) (*sparse.DenseArray, error) {
	begin, end, ny, nx, err := bounds(ff, name, index)
	if err != nil {
		return nil, err
	}
	r := ff.Reader(name, begin, end)
	buf := r.Zero(ny * nx)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("read netcdf variable `%s`: %w", name, err)
	}
	values, err := Float64s(buf)
	if err != nil {
		return nil, fmt.Errorf("read netcdf variable `%s`: %w", name, err)
	}
	if err := maskFill(ff, name, values); err != nil {
		return nil, err
	}

	data := sparse.ZerosDense(ny, nx)
	copy(data.Elements, values)
	return data, nil
}

// ReadAll returns every value of variable name as a flat slice.
// Cells equal to the variable _FillValue are returned as NaN.
func ReadAll(ff *cdf.File, name string) ([]float64, error) {
	if !Has(ff, name) {
		return nil, fmt.Errorf("variable `%s` not in file", name)
	}
	r := ff.Reader(name, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("read netcdf variable `%s`: %w", name, err)
	}
	values, err := Float64s(buf)
	if err != nil {
		return nil, fmt.Errorf("read netcdf variable `%s`: %w", name, err)
	}
	return values, maskFill(ff, name, values)
}

// Write overwrites the time slice index of variable name with data,
// converted to the type of the variable.
func Write(ff *cdf.File, name string, index int, data *sparse.DenseArray) error {
	begin, end, ny, nx, err := bounds(ff, name, index)
	if err != nil {
		return err
	}
	if len(data.Elements) != ny*nx {
		return fmt.Errorf("write netcdf variable `%s`: data has %d cells, variable slice has %dx%d", name, len(data.Elements), ny, nx)
	}

	r := ff.Reader(name, begin, end)
	var out interface{}
	switch r.Zero(0).(type) {
	case []float32:
		vals := make([]float32, len(data.Elements))
		for i, v := range data.Elements {
			vals[i] = float32(v)
		}
		out = vals
	case []float64:
		vals := make([]float64, len(data.Elements))
		copy(vals, data.Elements)
		out = vals
	default:
		return fmt.Errorf("write netcdf variable `%s`: unsupported type %T", name, r.Zero(0))
	}

	w := ff.Writer(name, begin, end)
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("write netcdf variable `%s`: %w", name, err)
	}
	return nil
}

// Float64s converts a floating point or integer buffer
// as returned by cdf readers.
func Float64s(buf interface{}) ([]float64, error) {
	switch vals := buf.(type) {
	case []float64:
		return vals, nil
	case []float32:
		res := make([]float64, len(vals))
		for i, v := range vals {
			res[i] = float64(v)
		}
		return res, nil
	case []int32:
		res := make([]float64, len(vals))
		for i, v := range vals {
			res[i] = float64(v)
		}
		return res, nil
	case []int16:
		res := make([]float64, len(vals))
		for i, v := range vals {
			res[i] = float64(v)
		}
		return res, nil
	}
	return nil, fmt.Errorf("unsupported data type %T", buf)
}

func maskFill(ff *cdf.File, name string, values []float64) error {
	fillI := ff.Header.GetAttribute(name, "_FillValue")
	if fillI == nil {
		return nil
	}
	fills, err := Float64s(fillI)
	if err != nil || len(fills) == 0 {
		return fmt.Errorf("invalid _FillValue for variable `%s`: %T", name, fillI)
	}
	fill := fills[0]
	for i, v := range values {
		if v == fill {
			values[i] = math.NaN()
		}
	}
	return nil
}
