// Package config handles objexport configuration loading and management.
package config

import "github.com/Faultbox/objexport/pkg/obj"

// Config holds all exporter settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Source  SourceConfig  `yaml:"source"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig holds OBJ output settings.
type ExportConfig struct {
	obj.Options `yaml:",inline"`

	Units obj.Unit `yaml:"units"`
}

// SourceConfig says where client files are read from.
type SourceConfig struct {
	GRFPaths []string `yaml:"grf_paths"` // Searched in order
	DataDir  string   `yaml:"data_dir"`  // Extracted client data, used when no GRF is given
	TimeMs   float32  `yaml:"time_ms"`   // Animation time models are posed at
	Ground   bool     `yaml:"ground"`    // Export the ground of worlds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			Options: obj.DefaultOptions(),
			Units:   obj.UnitCentimeters,
		},
		Source: SourceConfig{
			DataDir: ".",
			Ground:  true,
		},
		Logging: LoggingConfig{
			Level:      "warn",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}
