package solver

import (
	"fmt"

	"github.com/cdcooper84/essential-skills-RRC/internal/field"
)

// SourceTerm computes the velocity-derived source field of the pressure-
// Poisson equation for a square grid with spacing dx, fluid density rho and
// time step dt. Interior points combine central differences of u and v; the
// boundary ring of the returned field is zero.
//
// The returned field is freshly allocated and the inputs are never mutated.
func SourceTerm(u, v *field.Field, rho, dt, dx float64) (*field.Field, error) {
	if u == nil || v == nil {
		return nil, fmt.Errorf("velocity fields must be non-nil")
	}
	if !u.SameShape(v) {
		uny, unx := u.Dims()
		vny, vnx := v.Dims()
		return nil, fmt.Errorf("u grid is %dx%d but v grid is %dx%d", uny, unx, vny, vnx)
	}
	ny, nx := u.Dims()
	if ny < 3 || nx < 3 {
		return nil, fmt.Errorf("grid must be at least 3x3 to have interior points, got %dx%d", ny, nx)
	}
	if dt <= 0 {
		return nil, fmt.Errorf("time step must be positive, got %g", dt)
	}
	if dx <= 0 {
		return nil, fmt.Errorf("grid spacing must be positive, got %g", dx)
	}

	b := field.New(ny, nx)
	uv, vv, bv := u.Values(), v.Values(), b.Values()
	scale := rho * dx / 16

	for j := 1; j < ny-1; j++ {
		base := j * nx
		for i := 1; i < nx-1; i++ {
			k := base + i
			du := uv[k+1] - uv[k-1]   // east minus west
			dv := vv[k+nx] - vv[k-nx] // north minus south
			cross := (uv[k+nx] - uv[k-nx]) * (vv[k+1] - vv[k-1])

			bv[k] = scale * (2/dt*(du+dv) - (du*du+2*cross+dv*dv)/dx)
		}
	}
	return b, nil
}
