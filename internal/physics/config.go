package physics

import (
	"errors"
	"fmt"
	"os"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"
)

// Config is the world configuration accepted at construction. Invalid
// configs are rejected wholesale and replaced by DefaultConfig — never a
// partial merge.
type Config struct {
	Gravity          rl.Vector3 `yaml:"gravity"`
	Timestep         float32    `yaml:"timestep"`
	MaxSubSteps      int        `yaml:"max_substeps"`
	SolverIterations int        `yaml:"solver_iterations"`

	SleepVelocity float32 `yaml:"sleep_velocity"`
	SleepTimeout  float32 `yaml:"sleep_timeout"`

	WorldMin          rl.Vector3 `yaml:"world_min"`
	WorldMax          rl.Vector3 `yaml:"world_max"`
	BoundsRestitution float32    `yaml:"bounds_restitution"`

	CellSize  float32 `yaml:"cell_size"`
	MaxBodies int     `yaml:"max_bodies"`
	Seed      int64   `yaml:"seed"`
}

// DefaultConfig returns the documented defaults: 60 Hz step, at most 3
// sub-steps per frame, Earth gravity, ±100 m bounds, 0.3 boundary
// restitution.
func DefaultConfig() Config {
	return Config{
		Gravity:           rl.Vector3{Y: -9.81},
		Timestep:          1.0 / 60.0,
		MaxSubSteps:       3,
		SolverIterations:  2,
		SleepVelocity:     0.3,
		SleepTimeout:      0.3,
		WorldMin:          rl.Vector3{X: -100, Y: -100, Z: -100},
		WorldMax:          rl.Vector3{X: 100, Y: 100, Z: 100},
		BoundsRestitution: 0.3,
		CellSize:          defaultCellSize,
		MaxBodies:         4096,
		Seed:              1,
	}
}

// Validate reports every problem with the config. Any error means the
// whole config is unusable.
func (c Config) Validate() error {
	var errs []error

	if !(c.Timestep > 0 && c.Timestep <= 1) {
		errs = append(errs, fmt.Errorf("timestep %v outside (0, 1]", c.Timestep))
	}
	if c.MaxSubSteps < 1 {
		errs = append(errs, fmt.Errorf("max_substeps %d must be at least 1", c.MaxSubSteps))
	}
	if c.SolverIterations < 1 {
		errs = append(errs, fmt.Errorf("solver_iterations %d must be at least 1", c.SolverIterations))
	}
	if c.MaxBodies <= 0 {
		errs = append(errs, fmt.Errorf("max_bodies %d must be positive", c.MaxBodies))
	}
	if !finiteVec(c.Gravity) {
		errs = append(errs, errors.New("gravity must be finite"))
	}
	if c.SleepVelocity < 0 || c.SleepTimeout < 0 {
		errs = append(errs, errors.New("sleep thresholds must be non-negative"))
	}
	if c.WorldMax.X <= c.WorldMin.X || c.WorldMax.Y <= c.WorldMin.Y || c.WorldMax.Z <= c.WorldMin.Z {
		errs = append(errs, errors.New("world_max must exceed world_min on every axis"))
	}
	if c.BoundsRestitution < 0 || c.BoundsRestitution > 1 {
		errs = append(errs, fmt.Errorf("bounds_restitution %v outside [0, 1]", c.BoundsRestitution))
	}
	if c.CellSize <= 0 {
		errs = append(errs, fmt.Errorf("cell_size %v must be positive", c.CellSize))
	}

	return errors.Join(errs...)
}

func finiteVec(v rl.Vector3) bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}

func finite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}

// LoadConfig reads a YAML world config. Fields absent from the file keep
// their default values; the result is validated before being returned.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
