// Package dense solves the discrete pressure-Poisson equation directly by
// assembling the five-point stencil and its boundary conditions as a dense
// linear system. It exists as the exact counterpart to the iterative solver:
// tests compare relaxed fields against it, and it is usable on its own for
// small grids. Memory grows with the square of the point count, so it is not
// meant for large fields.
package dense

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/cdcooper84/essential-skills-RRC/internal/field"
)

// Solve returns the exact fixed point of the Jacobi pressure relaxation for
// the given source field: interior points satisfy
//
//	p[j,i] - 0.25*(p[j,i+1] + p[j,i-1] + p[j+1,i] + p[j-1,i]) = -b[j,i]
//
// with zero-gradient conditions on the left, right and bottom edges and zero
// on the top edge. Corner points follow the bottom/top rules, matching the
// order the iterative solver applies them in.
func Solve(b *field.Field) (*field.Field, error) {
	if b == nil {
		return nil, fmt.Errorf("source field must be non-nil")
	}
	ny, nx := b.Dims()
	if ny < 3 || nx < 3 {
		return nil, fmt.Errorf("grid must be at least 3x3 to have interior points, got %dx%d", ny, nx)
	}

	n := ny * nx
	idx := func(j, i int) int { return j*nx + i }

	a := mat.NewDense(n, n, nil)
	rhs := mat.NewVecDense(n, nil)

	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			r := idx(j, i)
			switch {
			case j == ny-1: // top: p = 0
				a.Set(r, r, 1)
			case j == 0: // bottom: p[0,i] = p[1,i]
				a.Set(r, r, 1)
				a.Set(r, idx(1, i), -1)
			case i == 0: // left: p[j,0] = p[j,1]
				a.Set(r, r, 1)
				a.Set(r, idx(j, 1), -1)
			case i == nx-1: // right: p[j,nx-1] = p[j,nx-2]
				a.Set(r, r, 1)
				a.Set(r, idx(j, nx-2), -1)
			default:
				a.Set(r, r, 1)
				a.Set(r, idx(j, i+1), -0.25)
				a.Set(r, idx(j, i-1), -0.25)
				a.Set(r, idx(j+1, i), -0.25)
				a.Set(r, idx(j-1, i), -0.25)
				rhs.SetVec(r, -b.At(j, i))
			}
		}
	}

	var x mat.VecDense
	if err := x.SolveVec(a, rhs); err != nil {
		return nil, fmt.Errorf("pressure system is singular: %w", err)
	}

	vals := make([]float64, n)
	for k := 0; k < n; k++ {
		vals[k] = x.AtVec(k)
	}
	return field.FromValues(ny, nx, vals)
}
