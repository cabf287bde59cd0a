package config

import (
	"flag"
	"fmt"
	"strings"

	"github.com/Faultbox/objexport/pkg/obj"
)

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// Flags are command-line overrides for one subcommand.
type Flags struct {
	ConfigPath string
	Debug      bool
	GRFPaths   []string
	DataDir    string
	Options    string
	Units      string
	TimeMs     float64
	Ground     bool
	LogFile    string
	Select     []string

	// Args are the positional arguments left after the flags.
	Args []string

	set map[string]bool
}

// ParseFlags parses args for the named subcommand.
func ParseFlags(name string, args []string) (*Flags, error) {
	f := &Flags{set: make(map[string]bool)}
	var grfs stringList
	var sel string

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&f.ConfigPath, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.Var(&grfs, "grf", "GRF archive to read from (repeatable, searched in order)")
	fs.StringVar(&f.DataDir, "data", "", "Extracted client data directory")
	fs.StringVar(&f.Options, "options", "", `Option string, e.g. "groups=1;ptgroups=0;normals=1"`)
	fs.StringVar(&f.Units, "units", "", "Output unit (cm, mm, m, km, in, ft, yd, mi)")
	fs.Float64Var(&f.TimeMs, "time", 0, "Animation time in milliseconds")
	fs.BoolVar(&f.Ground, "ground", true, "Export the ground of worlds")
	fs.StringVar(&f.LogFile, "log", "", "Log file path")
	fs.StringVar(&sel, "select", "", "Comma-separated node paths or names to export")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })

	f.GRFPaths = grfs
	if sel != "" {
		for _, s := range strings.Split(sel, ",") {
			if s = strings.TrimSpace(s); s != "" {
				f.Select = append(f.Select, s)
			}
		}
	}
	f.Args = fs.Args()
	return f, nil
}

// applyFlags applies CLI flag overrides to the config.
func (f *Flags) applyFlags(cfg *Config) error {
	if f == nil {
		return nil
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if len(f.GRFPaths) > 0 {
		cfg.Source.GRFPaths = f.GRFPaths
	}
	if f.DataDir != "" {
		cfg.Source.DataDir = f.DataDir
	}
	if f.Options != "" {
		cfg.Export.Options.Apply(f.Options)
	}
	if f.Units != "" {
		u, err := obj.ParseUnit(f.Units)
		if err != nil {
			return fmt.Errorf("-units: %w", err)
		}
		cfg.Export.Units = u
	}
	if f.set["time"] {
		cfg.Source.TimeMs = float32(f.TimeMs)
	}
	if f.set["ground"] {
		cfg.Source.Ground = f.Ground
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
	return nil
}
