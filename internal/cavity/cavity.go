// Package cavity steps a lid-driven cavity flow: a square box of fluid whose
// top wall slides at constant speed. Each time step computes the velocity
// source term, relaxes the pressure-Poisson equation, then advances the
// velocity components with a convection / pressure-gradient / diffusion
// update. It is the canonical consumer of the solver package.
package cavity

import (
	"fmt"
	"math"

	"github.com/cdcooper84/essential-skills-RRC/internal/field"
	"github.com/cdcooper84/essential-skills-RRC/internal/solver"
)

// Params describes one cavity simulation. The grid is square-celled: Dx is
// the spacing in both directions.
type Params struct {
	NY, NX   int
	Dx       float64
	Rho      float64 // fluid density
	Nu       float64 // kinematic viscosity
	Dt       float64 // time step
	LidSpeed float64 // u on the top wall

	Solver solver.Options
}

func (p Params) validate() error {
	if p.NY < 3 || p.NX < 3 {
		return fmt.Errorf("grid must be at least 3x3, got %dx%d", p.NY, p.NX)
	}
	if p.Dx <= 0 {
		return fmt.Errorf("grid spacing must be positive, got %g", p.Dx)
	}
	if p.Dt <= 0 {
		return fmt.Errorf("time step must be positive, got %g", p.Dt)
	}
	if p.Rho <= 0 {
		return fmt.Errorf("density must be positive, got %g", p.Rho)
	}
	if p.Nu < 0 {
		return fmt.Errorf("viscosity must be non-negative, got %g", p.Nu)
	}
	return nil
}

// State holds the velocity components and pressure after a run.
type State struct {
	U, V, P *field.Field
}

// MaxDivergence returns the largest absolute central-difference divergence
// of the velocity field over the interior, a cheap incompressibility check.
func (s State) MaxDivergence(dx float64) float64 {
	ny, nx := s.U.Dims()
	uv, vv := s.U.Values(), s.V.Values()
	maxDiv := 0.0
	for j := 1; j < ny-1; j++ {
		for i := 1; i < nx-1; i++ {
			k := j*nx + i
			div := (uv[k+1]-uv[k-1])/(2*dx) + (vv[k+nx]-vv[k-nx])/(2*dx)
			if a := math.Abs(div); a > maxDiv {
				maxDiv = a
			}
		}
	}
	return maxDiv
}

// StepStats records the pressure solve outcome of one time step.
type StepStats struct {
	Step          int
	Iterations    int
	Converged     bool
	FinalResidual float64
}

// Run advances the cavity flow from rest for the given number of time steps
// and returns the final state plus per-step pressure solve statistics.
func Run(params Params, steps int) (State, []StepStats, error) {
	if err := params.validate(); err != nil {
		return State{}, nil, err
	}
	if steps < 0 {
		return State{}, nil, fmt.Errorf("step count must be non-negative, got %d", steps)
	}

	u := field.New(params.NY, params.NX)
	v := field.New(params.NY, params.NX)
	p := field.New(params.NY, params.NX)
	applyVelocityBounds(u, v, params.LidSpeed)

	stats := make([]StepStats, 0, steps)
	for step := 0; step < steps; step++ {
		b, err := solver.SourceTerm(u, v, params.Rho, params.Dt, params.Dx)
		if err != nil {
			return State{}, nil, fmt.Errorf("step %d: %w", step, err)
		}
		res, err := solver.Relax(p, b, params.Solver)
		if err != nil {
			return State{}, nil, fmt.Errorf("step %d: %w", step, err)
		}
		p = res.Pressure

		u, v = momentum(u, v, p, params)
		applyVelocityBounds(u, v, params.LidSpeed)

		stats = append(stats, StepStats{
			Step:          step,
			Iterations:    res.Iterations,
			Converged:     res.Converged,
			FinalResidual: res.FinalResidual,
		})
	}
	return State{U: u, V: v, P: p}, stats, nil
}

// momentum advances the interior velocity points one time step with upwind
// convection, the central pressure gradient and central diffusion, reading
// only the previous iterate.
func momentum(u, v, p *field.Field, params Params) (*field.Field, *field.Field) {
	ny, nx := u.Dims()
	uNew, vNew := u.Clone(), v.Clone()

	uv, vv, pv := u.Values(), v.Values(), p.Values()
	du, dv := uNew.Values(), vNew.Values()

	dtdx := params.Dt / params.Dx
	grad := params.Dt / (2 * params.Rho * params.Dx)
	diff := params.Nu * params.Dt / (params.Dx * params.Dx)

	for j := 1; j < ny-1; j++ {
		base := j * nx
		for i := 1; i < nx-1; i++ {
			k := base + i
			du[k] = uv[k] -
				uv[k]*dtdx*(uv[k]-uv[k-1]) -
				vv[k]*dtdx*(uv[k]-uv[k-nx]) -
				grad*(pv[k+1]-pv[k-1]) +
				diff*(uv[k+1]+uv[k-1]+uv[k+nx]+uv[k-nx]-4*uv[k])

			dv[k] = vv[k] -
				uv[k]*dtdx*(vv[k]-vv[k-1]) -
				vv[k]*dtdx*(vv[k]-vv[k-nx]) -
				grad*(pv[k+nx]-pv[k-nx]) +
				diff*(vv[k+1]+vv[k-1]+vv[k+nx]+vv[k-nx]-4*vv[k])
		}
	}
	return uNew, vNew
}

// applyVelocityBounds enforces no-slip walls and the moving lid: u equals
// LidSpeed on the top row and zero on the other walls, v is zero on all
// walls.
func applyVelocityBounds(u, v *field.Field, lidSpeed float64) {
	ny, nx := u.Dims()
	uv, vv := u.Values(), v.Values()

	for j := 0; j < ny; j++ {
		base := j * nx
		uv[base], uv[base+nx-1] = 0, 0
		vv[base], vv[base+nx-1] = 0, 0
	}
	for i := 0; i < nx; i++ {
		uv[i] = 0
		vv[i] = 0
		top := (ny-1)*nx + i
		uv[top] = lidSpeed
		vv[top] = 0
	}
}
