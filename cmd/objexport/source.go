package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/Faultbox/objexport/internal/config"
	"github.com/Faultbox/objexport/internal/logger"
	"github.com/Faultbox/objexport/internal/rsmscene"
	"github.com/Faultbox/objexport/pkg/encoding"
	"github.com/Faultbox/objexport/pkg/formats"
	"github.com/Faultbox/objexport/pkg/grf"
	"github.com/Faultbox/objexport/pkg/scene"
)

// session is the configuration, logger and data source of one command.
type session struct {
	flags *config.Flags
	cfg   *config.Config
	log   *zap.Logger

	archives []*grf.Archive
	loader   rsmscene.Loader
}

// newSession parses flags, loads the config and starts logging.
func newSession(name string, args []string, stderr io.Writer) (*session, error) {
	f, err := config.ParseFlags(name, args)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(f)
	if err != nil {
		return nil, err
	}

	fileCfg := logger.FileConfig{
		Path:       cfg.Logging.LogFile,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	}
	log, err := logger.Init(cfg.Logging.Level, fileCfg, stderr)
	if err != nil {
		return nil, err
	}

	log.Debug("config loaded",
		zap.Stringer("options", cfg.Export.Options),
		zap.Stringer("units", cfg.Export.Units),
		zap.Strings("grf", cfg.Source.GRFPaths),
		zap.String("data", cfg.Source.DataDir))

	return &session{flags: f, cfg: cfg, log: log}, nil
}

// openSource opens the configured GRF archives, or falls back to the data
// directory when there are none.
func (s *session) openSource() error {
	if len(s.cfg.Source.GRFPaths) == 0 {
		s.loader = &rsmscene.DirLoader{Root: s.cfg.Source.DataDir}
		return nil
	}

	for _, path := range s.cfg.Source.GRFPaths {
		a, err := grf.Open(path)
		if err != nil {
			return multierr.Append(fmt.Errorf("opening %s: %w", path, err), s.closeArchives())
		}
		s.log.Debug("archive opened", zap.String("path", path), zap.Int("files", len(a.List())))
		s.archives = append(s.archives, a)
	}
	s.loader = &rsmscene.ArchiveLoader{Archives: s.archives}
	return nil
}

func (s *session) closeArchives() error {
	var err error
	for _, a := range s.archives {
		err = multierr.Append(err, a.Close())
	}
	s.archives = nil
	return err
}

// Close releases the archives and flushes the log.
func (s *session) Close() error {
	err := s.closeArchives()
	// Syncing a console fails on some platforms; only the archives matter.
	_ = logger.Sync()
	return err
}

// readInput reads a model or world from disk, or from the data source when
// no such file exists. Data source names may omit the leading "data/".
func (s *session) readInput(name string) ([]byte, error) {
	data, err := os.ReadFile(name)
	if err == nil || !errors.Is(err, fs.ErrNotExist) {
		return data, err
	}

	data, err = s.loader.ReadFile(name)
	if err == nil {
		return data, nil
	}
	if !strings.HasPrefix(encoding.NormalizeGRFPath(name), "data/") {
		if alt, altErr := s.loader.ReadFile("data/" + name); altErr == nil {
			return alt, nil
		}
	}
	return nil, err
}

// buildScene converts name into a new scene with one top-level transform.
func (s *session) buildScene(name string) (*scene.Scene, *rsmscene.Builder, error) {
	data, err := s.readInput(name)
	if err != nil {
		return nil, nil, err
	}

	sc := scene.New(s.cfg.Export.Units)
	b := rsmscene.NewBuilder(sc, rsmscene.Options{
		TimeMs:     s.cfg.Source.TimeMs,
		SkipGround: !s.cfg.Source.Ground,
	}, s.log)
	root := encoding.BaseName(name)

	switch strings.ToLower(filepath.Ext(name)) {
	case ".rsm", ".rsm2":
		rsm, err := formats.ParseRSM(data)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		if _, err := b.AddModel(nil, root, rsm); err != nil {
			return nil, nil, err
		}
	case ".rsw":
		rsw, err := formats.ParseRSW(data)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		if _, err := b.AddWorld(nil, root, rsw, s.loader); err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, fmt.Errorf("%s: unsupported file type, want .rsm or .rsw", name)
	}
	return sc, b, nil
}

// selectNodes selects nodes by full path (leading "|") or by short name.
// A short name selects every node carrying it.
func selectNodes(sc *scene.Scene, names []string) error {
	var nodes []*scene.Node
	for _, name := range names {
		if strings.HasPrefix(name, scene.PathSeparator) {
			n := sc.Find(name)
			if n == nil {
				return fmt.Errorf("no node at %s", name)
			}
			nodes = append(nodes, n)
			continue
		}
		found := sc.FindByName(name)
		if len(found) == 0 {
			return fmt.Errorf("no node named %q", name)
		}
		nodes = append(nodes, found...)
	}
	sc.Select(nodes...)
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
