// Command cavity runs a lid-driven cavity simulation, writes heat maps of
// the final velocity and pressure fields, and optionally records the run in
// a SQLite run database.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/cdcooper84/essential-skills-RRC/internal/cavity"
	"github.com/cdcooper84/essential-skills-RRC/internal/config"
	"github.com/cdcooper84/essential-skills-RRC/internal/fieldplot"
	"github.com/cdcooper84/essential-skills-RRC/internal/runstore"
	"github.com/cdcooper84/essential-skills-RRC/internal/version"
)

var (
	configPath  = flag.String("config", "", "Optional JSON tuning file")
	steps       = flag.Int("steps", 0, "Time steps to simulate (overrides config)")
	outDir      = flag.String("out", "out", "Output directory for plots")
	dbPath      = flag.String("db", "", "Optional SQLite database to record the run")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// The cavity is a 2x2 box; the spacing follows from the grid resolution.
const boxSize = 2.0

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
	if *steps > 0 {
		cfg.Steps = steps
	}

	params := cavity.Params{
		NY:       cfg.GetGridNY(),
		NX:       cfg.GetGridNX(),
		Dx:       boxSize / float64(cfg.GetGridNX()-1),
		Rho:      cfg.GetRho(),
		Nu:       cfg.GetNu(),
		Dt:       cfg.GetDt(),
		LidSpeed: cfg.GetLidSpeed(),
		Solver:   cfg.SolverOptions(),
	}

	start := time.Now()
	state, stats, err := cavity.Run(params, cfg.GetSteps())
	if err != nil {
		log.Fatalf("simulation failed: %v", err)
	}
	elapsed := time.Since(start)

	totalIters := 0
	unconverged := 0
	for _, s := range stats {
		totalIters += s.Iterations
		if !s.Converged {
			unconverged++
		}
	}
	log.Printf("cavity finished: grid=%dx%d steps=%d pressure-sweeps=%d max-divergence=%.3g elapsed=%s",
		params.NY, params.NX, len(stats), totalIters, state.MaxDivergence(params.Dx), elapsed)
	if unconverged > 0 {
		log.Printf("warning: pressure solve missed its target on %d of %d steps", unconverged, len(stats))
	}

	if err := writePlots(state); err != nil {
		log.Fatalf("failed to write plots: %v", err)
	}

	if *dbPath != "" {
		last := cavity.StepStats{}
		if len(stats) > 0 {
			last = stats[len(stats)-1]
		}
		recordRun(params, last, totalIters, start, elapsed)
	}
}

func writePlots(state cavity.State) error {
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}
	if err := fieldplot.HeatmapPNG(state.U, "Velocity u", filepath.Join(*outDir, "u.png")); err != nil {
		return err
	}
	if err := fieldplot.HeatmapPNG(state.V, "Velocity v", filepath.Join(*outDir, "v.png")); err != nil {
		return err
	}
	if err := fieldplot.HeatmapPNG(state.P, "Pressure", filepath.Join(*outDir, "p.png")); err != nil {
		return err
	}

	htmlFile, err := os.Create(filepath.Join(*outDir, "p.html"))
	if err != nil {
		return err
	}
	defer htmlFile.Close()
	if err := fieldplot.HeatmapHTML(state.P, "Cavity pressure", htmlFile); err != nil {
		return err
	}

	log.Printf("wrote plots to %s", *outDir)
	return nil
}

func recordRun(params cavity.Params, last cavity.StepStats, totalIters int, start time.Time, elapsed time.Duration) {
	store, err := runstore.Open(*dbPath)
	if err != nil {
		log.Fatalf("failed to open run database: %v", err)
	}
	defer store.Close()

	id, err := store.RecordRun(runstore.Run{
		Kind:          "cavity",
		StartedAt:     start,
		GridNY:        params.NY,
		GridNX:        params.NX,
		L2Target:      params.Solver.L2Target,
		MaxIterations: params.Solver.MaxIterations,
		CheckInterval: params.Solver.CheckInterval,
		Iterations:    totalIters,
		FinalResidual: last.FinalResidual,
		Converged:     last.Converged,
		Duration:      elapsed,
	})
	if err != nil {
		log.Fatalf("failed to record run: %v", err)
	}
	log.Printf("recorded run %s in %s", id, *dbPath)
}
