// Package config loads solver and simulation tuning parameters from JSON.
// All fields are optional pointers so partial files are safe: anything not
// set falls back to the defaults baked into the Get* methods.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cdcooper84/essential-skills-RRC/internal/solver"
)

// TuningConfig mirrors the JSON tuning file accepted by the command-line
// tools. Solver knobs first, then the cavity simulation parameters.
type TuningConfig struct {
	// Pressure solver params
	L2Target      *float64 `json:"l2_target,omitempty"`
	MaxIterations *int     `json:"max_iterations,omitempty"`
	CheckInterval *int     `json:"check_interval,omitempty"`
	Workers       *int     `json:"workers,omitempty"`

	// Cavity simulation params
	GridNY   *int     `json:"grid_ny,omitempty"`
	GridNX   *int     `json:"grid_nx,omitempty"`
	Rho      *float64 `json:"rho,omitempty"`
	Nu       *float64 `json:"nu,omitempty"`
	Dt       *float64 `json:"dt,omitempty"`
	Steps    *int     `json:"steps,omitempty"`
	LidSpeed *float64 `json:"lid_speed,omitempty"`
}

// Load reads a TuningConfig from a JSON file. Fields omitted from the file
// keep their defaults, so partial configs are safe.
func Load(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &TuningConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks every field that is set. Unset fields are always valid.
func (c *TuningConfig) Validate() error {
	if c.L2Target != nil && *c.L2Target < 0 {
		return fmt.Errorf("l2_target must be non-negative, got %g", *c.L2Target)
	}
	if c.MaxIterations != nil && *c.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be positive, got %d", *c.MaxIterations)
	}
	if c.CheckInterval != nil && *c.CheckInterval < 1 {
		return fmt.Errorf("check_interval must be positive, got %d", *c.CheckInterval)
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}
	if c.GridNY != nil && *c.GridNY < 3 {
		return fmt.Errorf("grid_ny must be at least 3, got %d", *c.GridNY)
	}
	if c.GridNX != nil && *c.GridNX < 3 {
		return fmt.Errorf("grid_nx must be at least 3, got %d", *c.GridNX)
	}
	if c.Rho != nil && *c.Rho <= 0 {
		return fmt.Errorf("rho must be positive, got %g", *c.Rho)
	}
	if c.Nu != nil && *c.Nu < 0 {
		return fmt.Errorf("nu must be non-negative, got %g", *c.Nu)
	}
	if c.Dt != nil && *c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %g", *c.Dt)
	}
	if c.Steps != nil && *c.Steps < 0 {
		return fmt.Errorf("steps must be non-negative, got %d", *c.Steps)
	}
	return nil
}

// GetL2Target returns the l2_target value or the default.
func (c *TuningConfig) GetL2Target() float64 {
	if c.L2Target == nil {
		return 1e-4 // default
	}
	return *c.L2Target
}

// GetMaxIterations returns the max_iterations value or the default.
func (c *TuningConfig) GetMaxIterations() int {
	if c.MaxIterations == nil {
		return solver.DefaultMaxIterations
	}
	return *c.MaxIterations
}

// GetCheckInterval returns the check_interval value or the default.
func (c *TuningConfig) GetCheckInterval() int {
	if c.CheckInterval == nil {
		return solver.DefaultCheckInterval
	}
	return *c.CheckInterval
}

// GetWorkers returns the workers value or the default (serial).
func (c *TuningConfig) GetWorkers() int {
	if c.Workers == nil {
		return 0
	}
	return *c.Workers
}

// GetGridNY returns the grid_ny value or the default.
func (c *TuningConfig) GetGridNY() int {
	if c.GridNY == nil {
		return 41 // default
	}
	return *c.GridNY
}

// GetGridNX returns the grid_nx value or the default.
func (c *TuningConfig) GetGridNX() int {
	if c.GridNX == nil {
		return 41 // default
	}
	return *c.GridNX
}

// GetRho returns the rho value or the default.
func (c *TuningConfig) GetRho() float64 {
	if c.Rho == nil {
		return 1.0 // default
	}
	return *c.Rho
}

// GetNu returns the nu value or the default.
func (c *TuningConfig) GetNu() float64 {
	if c.Nu == nil {
		return 0.1 // default
	}
	return *c.Nu
}

// GetDt returns the dt value or the default.
func (c *TuningConfig) GetDt() float64 {
	if c.Dt == nil {
		return 0.001 // default
	}
	return *c.Dt
}

// GetSteps returns the steps value or the default.
func (c *TuningConfig) GetSteps() int {
	if c.Steps == nil {
		return 500 // default
	}
	return *c.Steps
}

// GetLidSpeed returns the lid_speed value or the default.
func (c *TuningConfig) GetLidSpeed() float64 {
	if c.LidSpeed == nil {
		return 1.0 // default
	}
	return *c.LidSpeed
}

// SolverOptions assembles the solver.Options described by this config.
func (c *TuningConfig) SolverOptions() solver.Options {
	return solver.Options{
		L2Target:      c.GetL2Target(),
		MaxIterations: c.GetMaxIterations(),
		CheckInterval: c.GetCheckInterval(),
		Workers:       c.GetWorkers(),
	}
}
