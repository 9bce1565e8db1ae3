package solver

import "github.com/cdcooper84/essential-skills-RRC/internal/field"

// applyBoundaries rewrites the full boundary ring of p:
//
//	p[:,0]    = p[:,1]     zero-gradient, left
//	p[:,nx-1] = p[:,nx-2]  zero-gradient, right
//	p[0,:]    = p[1,:]     zero-gradient, bottom
//	p[ny-1,:] = 0          fixed zero, top
//
// Order matters at the corners: the bottom and top rows are applied last and
// win over the side columns, matching the reference behavior.
func applyBoundaries(p *field.Field) {
	ny, nx := p.Dims()
	v := p.Values()

	for j := 0; j < ny; j++ {
		base := j * nx
		v[base] = v[base+1]
		v[base+nx-1] = v[base+nx-2]
	}
	copy(v[:nx], v[nx:2*nx])
	top := (ny - 1) * nx
	for i := 0; i < nx; i++ {
		v[top+i] = 0
	}
}
