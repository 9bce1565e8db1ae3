// Package field provides the 2D scalar grids shared by the solver packages.
//
// A Field is a fixed-size rectangular grid of float64 values with row-major
// [j, i] indexing (row j, column i). Interior points are 1..ny-2, 1..nx-2;
// the outer ring is the boundary. Fields are plain value containers: they
// carry no boundary policy of their own.
package field

import "fmt"

// Field is a 2D grid of float64 values backed by a flat slice.
type Field struct {
	ny, nx int
	vals   []float64
}

// New returns a zero-filled field with the given dimensions.
// Panics if either dimension is not positive.
func New(ny, nx int) *Field {
	if ny <= 0 || nx <= 0 {
		panic(fmt.Sprintf("invalid field dimensions %dx%d", ny, nx))
	}
	return &Field{
		ny:   ny,
		nx:   nx,
		vals: make([]float64, ny*nx),
	}
}

// FromValues builds a field from a row-major value slice. The slice is
// copied, so the caller keeps ownership of vals.
func FromValues(ny, nx int, vals []float64) (*Field, error) {
	if ny <= 0 || nx <= 0 {
		return nil, fmt.Errorf("invalid field dimensions %dx%d", ny, nx)
	}
	if len(vals) != ny*nx {
		return nil, fmt.Errorf("value slice has %d entries, want %d for a %dx%d field", len(vals), ny*nx, ny, nx)
	}
	f := New(ny, nx)
	copy(f.vals, vals)
	return f, nil
}

// Dims returns the grid dimensions (rows, columns).
func (f *Field) Dims() (ny, nx int) { return f.ny, f.nx }

// At returns the value at row j, column i.
func (f *Field) At(j, i int) float64 {
	f.checkIndex(j, i)
	return f.vals[j*f.nx+i]
}

// Set stores v at row j, column i.
func (f *Field) Set(j, i int, v float64) {
	f.checkIndex(j, i)
	f.vals[j*f.nx+i] = v
}

func (f *Field) checkIndex(j, i int) {
	if j < 0 || j >= f.ny {
		panic(fmt.Sprintf("invalid row index: %d", j))
	}
	if i < 0 || i >= f.nx {
		panic(fmt.Sprintf("invalid column index: %d", i))
	}
}

// Clone returns a deep copy of the field.
func (f *Field) Clone() *Field {
	c := New(f.ny, f.nx)
	copy(c.vals, f.vals)
	return c
}

// Fill sets every point to v.
func (f *Field) Fill(v float64) {
	for i := range f.vals {
		f.vals[i] = v
	}
}

// Values returns the row-major backing slice. Callers that mutate it are
// mutating the field; use Clone first when that is not intended.
func (f *Field) Values() []float64 { return f.vals }

// SameShape reports whether o has the same dimensions as f.
func (f *Field) SameShape(o *Field) bool {
	return o != nil && f.ny == o.ny && f.nx == o.nx
}

// Equal reports whether o has the same shape and exactly the same values.
// It satisfies the Equal convention used by go-cmp.
func (f *Field) Equal(o *Field) bool {
	if f == nil || o == nil {
		return f == o
	}
	if !f.SameShape(o) {
		return false
	}
	for i, v := range f.vals {
		if v != o.vals[i] {
			return false
		}
	}
	return true
}
