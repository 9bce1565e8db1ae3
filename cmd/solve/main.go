// Command solve runs a standalone pressure-Poisson solve on a synthetic
// point-source field, writes heat maps plus a residual-history plot, and
// optionally records the outcome in a SQLite run database.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/cdcooper84/essential-skills-RRC/internal/config"
	"github.com/cdcooper84/essential-skills-RRC/internal/field"
	"github.com/cdcooper84/essential-skills-RRC/internal/fieldplot"
	"github.com/cdcooper84/essential-skills-RRC/internal/runstore"
	"github.com/cdcooper84/essential-skills-RRC/internal/solver"
	"github.com/cdcooper84/essential-skills-RRC/internal/version"
)

var (
	configPath  = flag.String("config", "", "Optional JSON tuning file")
	gridNY      = flag.Int("ny", 0, "Grid rows (overrides config)")
	gridNX      = flag.Int("nx", 0, "Grid columns (overrides config)")
	l2Target    = flag.Float64("target", 0, "Convergence target (overrides config)")
	workers     = flag.Int("workers", -1, "Sweep workers, 0 = serial (overrides config)")
	outDir      = flag.String("out", "out", "Output directory for plots")
	dbPath      = flag.String("db", "", "Optional SQLite database to record the run")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg := &config.TuningConfig{}
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *gridNY > 0 {
		cfg.GridNY = gridNY
	}
	if *gridNX > 0 {
		cfg.GridNX = gridNX
	}
	if *l2Target > 0 {
		cfg.L2Target = l2Target
	}
	if *workers >= 0 {
		cfg.Workers = workers
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ny, nx := cfg.GetGridNY(), cfg.GetGridNX()

	// A positive and a negative point source, quarter-way into the grid.
	b := field.New(ny, nx)
	b.Set(ny/4, nx/4, 100)
	b.Set(3*ny/4, 3*nx/4, -100)

	opts := cfg.SolverOptions()
	start := time.Now()
	res, err := solver.Relax(field.New(ny, nx), b, opts)
	if err != nil {
		log.Fatalf("solve failed: %v", err)
	}
	elapsed := time.Since(start)

	log.Printf("solve finished: grid=%dx%d iterations=%d residual=%.3g converged=%v elapsed=%s",
		ny, nx, res.Iterations, res.FinalResidual, res.Converged, elapsed)
	if !res.Converged {
		log.Printf("warning: residual target %.3g not reached within %d iterations",
			opts.L2Target, opts.MaxIterations)
	}

	if err := writePlots(res, b); err != nil {
		log.Fatalf("failed to write plots: %v", err)
	}

	if *dbPath != "" {
		recordRun(res, opts, ny, nx, start, elapsed)
	}
}

func writePlots(res solver.Result, b *field.Field) error {
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}
	if err := fieldplot.HeatmapPNG(res.Pressure, "Pressure", filepath.Join(*outDir, "pressure.png")); err != nil {
		return err
	}
	if err := fieldplot.HeatmapPNG(b, "Source term", filepath.Join(*outDir, "source.png")); err != nil {
		return err
	}
	if err := fieldplot.ResidualPNG(res.Residuals, "Residual history", filepath.Join(*outDir, "residuals.png")); err != nil {
		return err
	}

	htmlPath := filepath.Join(*outDir, "pressure.html")
	htmlFile, err := os.Create(htmlPath)
	if err != nil {
		return err
	}
	defer htmlFile.Close()
	if err := fieldplot.HeatmapHTML(res.Pressure, "Pressure", htmlFile); err != nil {
		return err
	}

	log.Printf("wrote plots to %s", *outDir)
	return nil
}

func recordRun(res solver.Result, opts solver.Options, ny, nx int, start time.Time, elapsed time.Duration) {
	store, err := runstore.Open(*dbPath)
	if err != nil {
		log.Fatalf("failed to open run database: %v", err)
	}
	defer store.Close()

	id, err := store.RecordRun(runstore.Run{
		Kind:          "poisson",
		StartedAt:     start,
		GridNY:        ny,
		GridNX:        nx,
		L2Target:      opts.L2Target,
		MaxIterations: opts.MaxIterations,
		CheckInterval: opts.CheckInterval,
		Iterations:    res.Iterations,
		FinalResidual: res.FinalResidual,
		Converged:     res.Converged,
		Duration:      elapsed,
	})
	if err != nil {
		log.Fatalf("failed to record run: %v", err)
	}
	log.Printf("recorded run %s in %s", id, *dbPath)
}
