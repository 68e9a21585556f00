package game

import (
	"github.com/pthm-cable/savanna/config"
	"github.com/pthm-cable/savanna/telemetry"
)

// Options configures a simulation run.
type Options struct {
	Seed   uint64
	Config *config.Config // nil = config.Cfg()

	// OutputDir receives population.csv, windows.csv, config.yaml and the
	// final snapshot. Empty disables file output.
	OutputDir string

	// SQLitePath overrides telemetry.sqlite_path when set.
	SQLitePath string

	// Sinks receive population samples in addition to the file and
	// database outputs.
	Sinks []telemetry.Sink

	// LogWindows logs every flushed stats window at info level.
	LogWindows bool
}

func (o Options) config() *config.Config {
	if o.Config != nil {
		return o.Config
	}
	return config.Cfg()
}
