// Package solver implements the pressure-Poisson building blocks used by the
// cavity flow simulation: the velocity-derived source term and the Jacobi
// relaxation of the discrete Poisson equation.
//
// The relaxation is classic Jacobi: every interior point is updated from the
// previous full sweep, never from values already updated in the current one.
// Boundary policy is fixed: zero-gradient (Neumann) on the left, right and
// bottom edges, and zero (Dirichlet) on the top edge.
package solver

import (
	"fmt"
	"math"

	"github.com/cdcooper84/essential-skills-RRC/internal/field"
)

// Default iteration controls. They reproduce the reference behavior: check
// the residual every 10th sweep, give up after the sweep counter passes 500.
const (
	DefaultMaxIterations = 500
	DefaultCheckInterval = 10
)

// Options controls a single relaxation run. The zero value of MaxIterations
// and CheckInterval selects the defaults above.
type Options struct {
	// L2Target is the relative L2 residual below which the run is
	// considered converged. Zero is allowed but is normally unreachable.
	L2Target float64

	// MaxIterations caps the sweep counter. Sweeps run while the counter
	// has not passed the cap, so a cap of N allows at most N+1 sweeps
	// (counter 0..N). 0 means unset and selects DefaultMaxIterations; a
	// literal zero cap (a single sweep) is not representable, the
	// smallest requestable cap is 1.
	MaxIterations int

	// CheckInterval is how many sweeps pass between residual evaluations.
	// 1 checks after every sweep; larger values trade an overshoot of up
	// to CheckInterval-1 sweeps for fewer norm computations. 0 means
	// unset and selects DefaultCheckInterval.
	CheckInterval int

	// Workers splits each sweep's interior rows across this many
	// goroutines. 0 or 1 runs serially. The result is identical either
	// way: every worker reads only the previous iterate.
	Workers int
}

func (o Options) withDefaults() Options {
	if o.MaxIterations == 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.CheckInterval == 0 {
		o.CheckInterval = DefaultCheckInterval
	}
	return o
}

func (o Options) validate() error {
	if o.L2Target < 0 {
		return fmt.Errorf("l2 target must be non-negative, got %g", o.L2Target)
	}
	if o.MaxIterations < 0 {
		return fmt.Errorf("max iterations must be non-negative, got %d", o.MaxIterations)
	}
	if o.CheckInterval < 0 {
		return fmt.Errorf("check interval must be non-negative, got %d", o.CheckInterval)
	}
	if o.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", o.Workers)
	}
	return nil
}

// ResidualSample is one residual evaluation during a relaxation run.
type ResidualSample struct {
	Sweep int
	Value float64
}

// Result reports the outcome of a relaxation run. Non-convergence is not an
// error: the caller gets the last iterate along with Converged=false.
type Result struct {
	// Pressure is the relaxed field. It is freshly allocated; the input
	// field is never mutated.
	Pressure *field.Field

	// Converged reports whether the residual dropped to L2Target or below
	// before the iteration cap.
	Converged bool

	// Iterations is the number of sweeps performed.
	Iterations int

	// FinalResidual is the last evaluated residual.
	FinalResidual float64

	// Residuals holds every residual evaluation, one per CheckInterval
	// sweeps, in order.
	Residuals []ResidualSample
}

// Relax iterates the Jacobi pressure update
//
//	p[j,i] = 0.25*(p[j,i+1] + p[j,i-1] + p[j+1,i] + p[j-1,i]) - b[j,i]
//
// over the interior of p, reapplying the boundary policy after every sweep,
// until the relative L2 residual between successive iterates drops to
// opts.L2Target or the sweep counter passes opts.MaxIterations.
func Relax(p, b *field.Field, opts Options) (Result, error) {
	if p == nil || b == nil {
		return Result{}, fmt.Errorf("pressure and source fields must be non-nil")
	}
	if !p.SameShape(b) {
		pny, pnx := p.Dims()
		bny, bnx := b.Dims()
		return Result{}, fmt.Errorf("pressure grid is %dx%d but source grid is %dx%d", pny, pnx, bny, bnx)
	}
	ny, nx := p.Dims()
	if ny < 3 || nx < 3 {
		return Result{}, fmt.Errorf("grid must be at least 3x3 to have interior points, got %dx%d", ny, nx)
	}
	if err := opts.validate(); err != nil {
		return Result{}, err
	}
	opts = opts.withDefaults()

	cur := p.Clone()
	prev := p.Clone()

	res := Result{FinalResidual: math.Inf(1)}
	n := 0
	for n <= opts.MaxIterations {
		// The previous iterate is the sweep's only read source.
		prev, cur = cur, prev
		sweep(cur, prev, b, opts.Workers)
		applyBoundaries(cur)

		if n%opts.CheckInterval == 0 {
			r := relativeL2(cur, prev)
			res.FinalResidual = r
			res.Residuals = append(res.Residuals, ResidualSample{Sweep: n, Value: r})
			if r <= opts.L2Target {
				res.Converged = true
				n++
				break
			}
		}
		n++
	}

	res.Pressure = cur
	res.Iterations = n
	return res, nil
}

// sweep writes one Jacobi update of the interior of dst, reading exclusively
// from src. dst boundary values are left stale; applyBoundaries rewrites the
// whole ring afterwards.
func sweep(dst, src, b *field.Field, workers int) {
	ny, nx := dst.Dims()
	d, s, bb := dst.Values(), src.Values(), b.Values()

	row := func(j int) {
		base := j * nx
		for i := 1; i < nx-1; i++ {
			k := base + i
			d[k] = 0.25*(s[k+1]+s[k-1]+s[k+nx]+s[k-nx]) - bb[k]
		}
	}

	if workers > 1 {
		parallelRows(1, ny-1, workers, row)
		return
	}
	for j := 1; j < ny-1; j++ {
		row(j)
	}
}

// relativeL2 returns sqrt(sum((a-b)^2) / sum(b^2)) over all grid points.
// When b is identically zero the ratio is undefined; the absolute norm
// sqrt(sum((a-b)^2)) is used instead so an all-zero fixed point reads as
// converged rather than NaN.
func relativeL2(a, b *field.Field) float64 {
	av, bv := a.Values(), b.Values()
	var num, den float64
	for i := range av {
		d := av[i] - bv[i]
		num += d * d
		den += bv[i] * bv[i]
	}
	if den == 0 {
		return math.Sqrt(num)
	}
	return math.Sqrt(num / den)
}
