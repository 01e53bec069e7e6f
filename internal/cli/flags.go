package cli

import (
	"time"

	"uirunner/internal/config"
)

// Flags holds command-line flags
type Flags struct {
	ConfigPath     string
	URL            string
	Count          int
	CasesPath      string
	OutPath        string
	Filter         string
	Driver         string
	Headless       bool
	Timeout        time.Duration
	FailOnFailures bool
	Addr           string
	LogLevel       string
	Verbose        bool
	Plain          bool
	Limit          int
}

// ToConfigFlags converts CLI flags to config flags. headlessSet reports
// whether --headless was given explicitly, since its zero value is
// meaningful.
func (f *Flags) ToConfigFlags(headlessSet bool) config.Flags {
	return config.Flags{
		ConfigPath:     f.ConfigPath,
		URL:            f.URL,
		Count:          f.Count,
		CasesPath:      f.CasesPath,
		OutPath:        f.OutPath,
		Filter:         f.Filter,
		Driver:         f.Driver,
		Headless:       f.Headless,
		HeadlessSet:    headlessSet,
		Timeout:        f.Timeout,
		FailOnFailures: f.FailOnFailures,
		Addr:           f.Addr,
		LogLevel:       f.LogLevel,
		Verbose:        f.Verbose,
		Plain:          f.Plain,
		Limit:          f.Limit,
	}
}
