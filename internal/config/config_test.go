package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/Faultbox/objexport/pkg/obj"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Export.Options != obj.DefaultOptions() {
		t.Errorf("expected default export options, got %+v", cfg.Export.Options)
	}
	if cfg.Export.Units != obj.UnitCentimeters {
		t.Errorf("expected centimeters, got %s", cfg.Export.Units)
	}
	if len(cfg.Source.GRFPaths) != 0 {
		t.Errorf("expected no GRF paths, got %v", cfg.Source.GRFPaths)
	}
	if !cfg.Source.Ground {
		t.Error("expected ground export on by default")
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level 'warn', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
export:
  groups: false
  ptgroups: false
  precision: 3
  units: meters

source:
  grf_paths: ["rdata.grf", "data.grf"]
  time_ms: 250

logging:
  level: "debug"
  log_file: "objexport.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	want := obj.DefaultOptions()
	want.Groups = false
	want.PointGroups = false
	want.Precision = 3
	if cfg.Export.Options != want {
		t.Errorf("options = %+v, want %+v", cfg.Export.Options, want)
	}
	if cfg.Export.Units != obj.UnitMeters {
		t.Errorf("expected meters, got %s", cfg.Export.Units)
	}
	if !reflect.DeepEqual(cfg.Source.GRFPaths, []string{"rdata.grf", "data.grf"}) {
		t.Errorf("grf paths = %v", cfg.Source.GRFPaths)
	}
	if cfg.Source.TimeMs != 250 {
		t.Errorf("time = %v, want 250", cfg.Source.TimeMs)
	}
	// Untouched keys keep their defaults.
	if cfg.Source.DataDir != "." {
		t.Errorf("data dir = %q, want default", cfg.Source.DataDir)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "objexport.log" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad syntax", "export:\n  groups: [\n"},
		{"bad unit", "export:\n  units: furlongs\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "invalid.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}
			if err := loadFromFile(Default(), configPath); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if err := loadFromFile(Default(), "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	t.Setenv("HOME", "/tmp/home")

	dir := ConfigDir()
	if dir == "" {
		t.Fatal("ConfigDir returned empty string")
	}
	if !strings.HasSuffix(dir, "objexport") {
		t.Errorf("ConfigDir = %s, want an objexport directory", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("APPDATA", t.TempDir())

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile("objexport.yaml", []byte("export:\n  normals: false\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if path := findConfigFile(); path == "" {
		t.Error("expected to find objexport.yaml in current directory")
	}
}

func TestParseFlags(t *testing.T) {
	f, err := ParseFlags("export", []string{
		"-grf", "a.grf", "-grf", "b.grf",
		"-select", "house, |world|inn ,",
		"-time", "0",
		"model.rsm", "out.obj",
	})
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}

	if !reflect.DeepEqual(f.GRFPaths, []string{"a.grf", "b.grf"}) {
		t.Errorf("GRFPaths = %v", f.GRFPaths)
	}
	if !reflect.DeepEqual(f.Select, []string{"house", "|world|inn"}) {
		t.Errorf("Select = %v", f.Select)
	}
	if !reflect.DeepEqual(f.Args, []string{"model.rsm", "out.obj"}) {
		t.Errorf("Args = %v", f.Args)
	}
	if !f.set["time"] {
		t.Error("explicit -time 0 not recorded")
	}

	if _, err := ParseFlags("export", []string{"-h"}); !errors.Is(err, flag.ErrHelp) {
		t.Errorf("-h: err = %v, want flag.ErrHelp", err)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		verify  func(*testing.T, *Config)
		wantErr bool
	}{
		{
			name: "debug flag",
			args: []string{"-debug"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("level = %s, want debug", cfg.Logging.Level)
				}
			},
		},
		{
			name: "options string applies on top",
			args: []string{"-options", "ptgroups=0;normals=0;precision=4"},
			verify: func(t *testing.T, cfg *Config) {
				o := cfg.Export.Options
				if o.PointGroups || o.Normals || !o.Groups || o.Precision != 4 {
					t.Errorf("options = %+v", o)
				}
			},
		},
		{
			name: "units flag",
			args: []string{"-units", "m"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Export.Units != obj.UnitMeters {
					t.Errorf("units = %s, want meters", cfg.Export.Units)
				}
			},
		},
		{
			name: "ground off",
			args: []string{"-ground=false"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Source.Ground {
					t.Error("ground still on")
				}
			},
		},
		{
			name: "ground untouched",
			args: []string{"-debug"},
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Source.Ground {
					t.Error("ground turned off without the flag")
				}
			},
		},
		{
			name:    "bad units",
			args:    []string{"-units", "parsec"},
			wantErr: true,
		},
		{
			name: "time only when given",
			args: []string{"-data", "/client"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Source.TimeMs != 500 {
					t.Errorf("time = %v, want file value 500", cfg.Source.TimeMs)
				}
				if cfg.Source.DataDir != "/client" {
					t.Errorf("data dir = %s", cfg.Source.DataDir)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseFlags("test", tt.args)
			if err != nil {
				t.Fatalf("ParseFlags: %v", err)
			}

			cfg := Default()
			cfg.Source.TimeMs = 500
			err = f.applyFlags(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("applyFlags err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.verify != nil {
				tt.verify(t, cfg)
			}
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := "export:\n  units: feet\n  normals: false\nlogging:\n  level: error\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	f, err := ParseFlags("export", []string{"-config", configPath, "-units", "mm"})
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	cfg, err := Load(f)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Units from the flag, normals and level from the file.
	if cfg.Export.Units != obj.UnitMillimeters {
		t.Errorf("units = %s, want millimeters from flag", cfg.Export.Units)
	}
	if cfg.Export.Normals {
		t.Error("normals should be off from file")
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("level = %s, want error from file", cfg.Logging.Level)
	}
	// Defaults survive.
	if !cfg.Export.Groups {
		t.Error("groups should keep its default")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Export.Units = obj.UnitInches
	cfg.Source.GRFPaths = []string{"data.grf"}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved config: %v", err)
	}
	for _, want := range []string{"units: inches", "ptgroups: true", "- data.grf"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("saved config missing %q:\n%s", want, data)
		}
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reloading: %v", err)
	}
	if !reflect.DeepEqual(loaded, cfg) {
		t.Errorf("reloaded config = %+v, want %+v", loaded, cfg)
	}
}

// chdirForTest changes the working directory for the duration of the test
// and restores it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
