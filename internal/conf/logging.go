package conf

import "udpobfuscat/internal/flog"

// Logging is the `[logging]` section.
type Logging struct {
	LogLevel          string `toml:"log_level"`
	Journald          bool   `toml:"journald"`
	DisableTimestamps bool   `toml:"disable_timestamps"`
}

func (l *Logging) setDefaults() {
	if l.LogLevel == "" {
		l.LogLevel = "info"
	}
}

func (l *Logging) validate() []error {
	if _, err := flog.ParseLevel(l.LogLevel); err != nil {
		return []error{err}
	}
	return nil
}

// Options builds the flog.Options this section describes. Called after
// validate() has already confirmed LogLevel parses.
func (l *Logging) Options() flog.Options {
	level, _ := flog.ParseLevel(l.LogLevel)
	backend := flog.Console
	if l.Journald {
		backend = flog.Journald
	}
	return flog.Options{
		Level:             level,
		Backend:           backend,
		DisableTimestamps: l.DisableTimestamps,
	}
}
