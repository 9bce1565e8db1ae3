package solver

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdcooper84/essential-skills-RRC/internal/dense"
	"github.com/cdcooper84/essential-skills-RRC/internal/field"
)

// spikeSource returns a grid with a positive and a negative point source,
// the shape used by the pressure-Poisson step of the cavity flow.
func spikeSource(ny, nx int) *field.Field {
	b := field.New(ny, nx)
	b.Set(ny/4, nx/4, 1.0)
	b.Set(3*ny/4, 3*nx/4, -1.0)
	return b
}

func TestOptions_ZeroMeansDefault(t *testing.T) {
	t.Parallel()

	// Zero MaxIterations and CheckInterval are "unset", not literal
	// zeros: withDefaults maps them to the reference values, so a
	// zero-cap (single sweep) run cannot be requested. The smallest
	// requestable cap is 1 and runs two sweeps (counter 0..1).
	got := Options{}.withDefaults()
	assert.Equal(t, DefaultMaxIterations, got.MaxIterations)
	assert.Equal(t, DefaultCheckInterval, got.CheckInterval)

	// Explicit values pass through untouched.
	set := Options{MaxIterations: 1, CheckInterval: 1}.withDefaults()
	assert.Equal(t, 1, set.MaxIterations)
	assert.Equal(t, 1, set.CheckInterval)

	res, err := Relax(field.New(4, 4), spikeSource(4, 4), Options{
		L2Target:      0,
		MaxIterations: 1,
		CheckInterval: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Iterations)
}

func TestRelax_IterationCap(t *testing.T) {
	t.Parallel()

	// An unreachable target must stop the run at the cap: sweep counter
	// 0..500 inclusive, so exactly 501 sweeps with the defaults.
	p := field.New(16, 16)
	p.Set(8, 8, 1.0)

	res, err := Relax(p, field.New(16, 16), Options{L2Target: 0})
	require.NoError(t, err)

	assert.False(t, res.Converged)
	assert.Equal(t, DefaultMaxIterations+1, res.Iterations)
	assert.Greater(t, res.FinalResidual, 0.0)
	// One residual sample per CheckInterval sweeps, starting at sweep 0.
	assert.Len(t, res.Residuals, DefaultMaxIterations/DefaultCheckInterval+1)
	assert.Equal(t, 0, res.Residuals[0].Sweep)
	assert.Equal(t, DefaultMaxIterations, res.Residuals[len(res.Residuals)-1].Sweep)
}

func TestRelax_ConvergesToDirectSolution(t *testing.T) {
	t.Parallel()

	b := spikeSource(12, 10)
	want, err := dense.Solve(b)
	require.NoError(t, err)

	res, err := Relax(field.New(12, 10), b, Options{
		L2Target:      1e-12,
		MaxIterations: 200000,
		CheckInterval: 1,
	})
	require.NoError(t, err)
	require.True(t, res.Converged)
	assert.LessOrEqual(t, res.FinalResidual, 1e-12)

	ny, nx := want.Dims()
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			assert.InDelta(t, want.At(j, i), res.Pressure.At(j, i), 1e-8, "point (%d,%d)", j, i)
		}
	}
}

func TestRelax_ZeroSourceRelaxesToHarmonic(t *testing.T) {
	t.Parallel()

	// With a zero source the boundary-consistent harmonic field is the
	// direct solution; the iterates must decay onto it.
	b := field.New(10, 10)
	want, err := dense.Solve(b)
	require.NoError(t, err)

	p := field.New(10, 10)
	for j := 1; j < 9; j++ {
		for i := 1; i < 9; i++ {
			p.Set(j, i, float64((j*7+i*3)%5)-2)
		}
	}

	res, err := Relax(p, b, Options{L2Target: 0, MaxIterations: 5000})
	require.NoError(t, err)

	for j := 0; j < 10; j++ {
		for i := 0; i < 10; i++ {
			assert.InDelta(t, want.At(j, i), res.Pressure.At(j, i), 1e-10, "point (%d,%d)", j, i)
		}
	}
}

func TestRelax_SpikeScenario4x4(t *testing.T) {
	t.Parallel()

	// 4x4 grid, zero source, a single interior point at 1.0: the field
	// relaxes toward the direct solution of the same stencil.
	p := field.New(4, 4)
	p.Set(1, 1, 1.0)
	b := field.New(4, 4)

	want, err := dense.Solve(b)
	require.NoError(t, err)

	res, err := Relax(p, b, Options{L2Target: 1e-8})
	require.NoError(t, err)
	assert.False(t, res.Converged)

	for j := 0; j < 4; j++ {
		for i := 0; i < 4; i++ {
			assert.InDelta(t, want.At(j, i), res.Pressure.At(j, i), 1e-10, "point (%d,%d)", j, i)
		}
	}
}

func TestRelax_Idempotence(t *testing.T) {
	t.Parallel()

	const target = 1e-10
	b := spikeSource(10, 10)

	first, err := Relax(field.New(10, 10), b, Options{
		L2Target:      target,
		MaxIterations: 200000,
		CheckInterval: 1,
	})
	require.NoError(t, err)
	require.True(t, first.Converged)

	// Relaxing an already-converged field must come back converged on the
	// very first residual check.
	again, err := Relax(first.Pressure, b, Options{
		L2Target:      target,
		MaxIterations: 200000,
		CheckInterval: 1,
	})
	require.NoError(t, err)
	assert.True(t, again.Converged)
	assert.Equal(t, 1, again.Iterations)
	assert.LessOrEqual(t, again.FinalResidual, target)
}

func TestRelax_Deterministic(t *testing.T) {
	t.Parallel()

	b := spikeSource(14, 11)
	p := field.New(14, 11)
	p.Set(5, 5, 0.25)
	opts := Options{L2Target: 1e-6}

	a, err := Relax(p, b, opts)
	require.NoError(t, err)
	c, err := Relax(p, b, opts)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(a.Pressure, c.Pressure))
	assert.Equal(t, a.Iterations, c.Iterations)
	assert.Equal(t, a.FinalResidual, c.FinalResidual)
}

func TestRelax_ParallelMatchesSerial(t *testing.T) {
	t.Parallel()

	b := spikeSource(33, 29)
	opts := Options{L2Target: 1e-6}

	serial, err := Relax(field.New(33, 29), b, opts)
	require.NoError(t, err)

	opts.Workers = 4
	parallel, err := Relax(field.New(33, 29), b, opts)
	require.NoError(t, err)

	// Workers split rows but read only the previous iterate, so the
	// output must be bit-identical to the serial path.
	assert.Empty(t, cmp.Diff(serial.Pressure, parallel.Pressure))
	assert.Equal(t, serial.Iterations, parallel.Iterations)
	assert.Equal(t, serial.FinalResidual, parallel.FinalResidual)
}

func TestRelax_DoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	p := field.New(8, 8)
	p.Set(3, 3, 1.0)
	b := spikeSource(8, 8)
	pBefore := p.Clone()
	bBefore := b.Clone()

	res, err := Relax(p, b, Options{L2Target: 1e-6})
	require.NoError(t, err)

	assert.True(t, p.Equal(pBefore))
	assert.True(t, b.Equal(bBefore))
	assert.False(t, res.Pressure.Equal(p))
}

func TestRelax_CheckIntervalOvershoot(t *testing.T) {
	t.Parallel()

	b := spikeSource(12, 12)
	exact, err := Relax(field.New(12, 12), b, Options{
		L2Target:      1e-8,
		MaxIterations: 200000,
		CheckInterval: 1,
	})
	require.NoError(t, err)
	require.True(t, exact.Converged)

	coarse, err := Relax(field.New(12, 12), b, Options{
		L2Target:      1e-8,
		MaxIterations: 200000,
		CheckInterval: 10,
	})
	require.NoError(t, err)
	require.True(t, coarse.Converged)

	// Checking every 10th sweep can only stop at a multiple of 10, at or
	// past the exact stopping point.
	assert.GreaterOrEqual(t, coarse.Iterations, exact.Iterations)
	assert.Equal(t, 1, coarse.Iterations%10)
	assert.Less(t, coarse.Iterations-exact.Iterations, 10)
}

func TestRelax_InvalidInput(t *testing.T) {
	t.Parallel()

	p := field.New(5, 5)
	b := field.New(5, 5)

	cases := []struct {
		name string
		p, b *field.Field
		opts Options
	}{
		{"nil pressure", nil, b, Options{}},
		{"nil source", p, nil, Options{}},
		{"shape mismatch", p, field.New(5, 6), Options{}},
		{"too small", field.New(2, 2), field.New(2, 2), Options{}},
		{"negative target", p, b, Options{L2Target: -1}},
		{"negative max iterations", p, b, Options{MaxIterations: -1}},
		{"negative check interval", p, b, Options{CheckInterval: -1}},
		{"negative workers", p, b, Options{Workers: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Relax(tc.p, tc.b, tc.opts)
			require.Error(t, err)
		})
	}
}

func TestSourceTerm(t *testing.T) {
	t.Parallel()

	u := field.New(3, 3)
	v := field.New(3, 3)
	u.Set(1, 2, 2) // east
	u.Set(1, 0, 1) // west
	u.Set(2, 1, 3) // north
	u.Set(0, 1, 1) // south
	v.Set(2, 1, 4)
	v.Set(0, 1, 2)
	v.Set(1, 2, 1)
	v.Set(1, 0, -1)

	b, err := SourceTerm(u, v, 2.0, 0.5, 0.1)
	require.NoError(t, err)

	// scale = rho*dx/16 = 0.0125
	// du = 1, dv = 2, cross = (3-1)*(1-(-1)) = 4
	// b = 0.0125 * (2/0.5*3 - (1 + 8 + 4)/0.1) = 0.0125 * (12 - 130)
	assert.InDelta(t, -1.475, b.At(1, 1), 1e-12)

	ny, nx := b.Dims()
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			if j == 0 || j == ny-1 || i == 0 || i == nx-1 {
				assert.Zero(t, b.At(j, i), "boundary point (%d,%d)", j, i)
			}
		}
	}
}

func TestSourceTerm_PureAndDeterministic(t *testing.T) {
	t.Parallel()

	u := field.New(6, 6)
	v := field.New(6, 6)
	for j := 0; j < 6; j++ {
		for i := 0; i < 6; i++ {
			u.Set(j, i, float64(j)*0.1-float64(i)*0.05)
			v.Set(j, i, float64(i)*0.2)
		}
	}
	uBefore, vBefore := u.Clone(), v.Clone()

	b1, err := SourceTerm(u, v, 1.0, 0.01, 0.2)
	require.NoError(t, err)
	b2, err := SourceTerm(u, v, 1.0, 0.01, 0.2)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(b1, b2))
	assert.True(t, u.Equal(uBefore))
	assert.True(t, v.Equal(vBefore))
}

func TestSourceTerm_InvalidInput(t *testing.T) {
	t.Parallel()

	u := field.New(4, 4)
	v := field.New(4, 4)

	cases := []struct {
		name   string
		u, v   *field.Field
		dt, dx float64
	}{
		{"nil u", nil, v, 0.1, 0.1},
		{"nil v", u, nil, 0.1, 0.1},
		{"shape mismatch", u, field.New(4, 5), 0.1, 0.1},
		{"too small", field.New(2, 2), field.New(2, 2), 0.1, 0.1},
		{"zero dt", u, v, 0, 0.1},
		{"negative dt", u, v, -0.1, 0.1},
		{"zero dx", u, v, 0.1, 0},
		{"negative dx", u, v, 0.1, -0.1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := SourceTerm(tc.u, tc.v, 1.0, tc.dt, tc.dx)
			require.Error(t, err)
		})
	}
}
