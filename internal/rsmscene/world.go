package rsmscene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/objexport/pkg/encoding"
	"github.com/Faultbox/objexport/pkg/formats"
	"github.com/Faultbox/objexport/pkg/grf"
	"github.com/Faultbox/objexport/pkg/math"
	"github.com/Faultbox/objexport/pkg/obj"
	"github.com/Faultbox/objexport/pkg/scene"
)

// DataDir and ModelDir are where world files expect their ground and
// models, relative to the client root.
const (
	DataDir  = "data/"
	ModelDir = "data/model/"
)

// Loader reads client files by their data-root relative path, e.g.
// "data/model/house.rsm".
type Loader interface {
	ReadFile(name string) ([]byte, error)
}

// ArchiveLoader reads from GRF archives. Earlier archives take priority,
// the way the client searches its archive list.
type ArchiveLoader struct {
	Archives []*grf.Archive
}

// ReadFile implements Loader.
func (l *ArchiveLoader) ReadFile(name string) ([]byte, error) {
	for _, a := range l.Archives {
		if a.Contains(name) {
			return a.Read(name)
		}
	}
	return nil, fmt.Errorf("%w: %s", grf.ErrNotFound, name)
}

// DirLoader reads from an extracted data directory.
type DirLoader struct {
	Root string
}

// ReadFile implements Loader.
func (l *DirLoader) ReadFile(name string) ([]byte, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	return os.ReadFile(filepath.Join(l.Root, filepath.FromSlash(name)))
}

// AddWorld adds the ground and every model placed in rsw below a transform
// named name. The ground is read through loader from DataDir and models from
// ModelDir, each model file parsed once. A missing or corrupt ground or model
// is logged and skipped. Lights become non-exportable marker nodes under a
// "lights" transform.
func (b *Builder) AddWorld(parent *scene.Node, name string, rsw *formats.RSW, loader Loader) (*scene.Node, error) {
	root := b.scene.AddTransform(parent, encoding.SanitizeName(name), math.Identity())
	log := b.log.With(zap.String("world", root.Name))

	placed := 0
	if rsw.GndFile != "" && !b.opts.SkipGround {
		if err := b.addWorldGround(root, rsw.GndFile, loader); err != nil {
			log.Warn("skipping ground", zap.String("file", rsw.GndFile), zap.Error(err))
		} else {
			placed++
		}
	}

	for i, m := range rsw.GetModels() {
		rsm, err := b.loadModel(m.ModelName, loader)
		if err != nil {
			log.Warn("skipping placed model",
				zap.Int("object", i),
				zap.String("file", m.ModelName),
				zap.Error(err))
			b.stats.MissingModels++
			continue
		}

		nodeName := m.Name
		if nodeName == "" {
			nodeName = encoding.BaseName(m.ModelName)
		}
		if _, err := b.addModel(root, nodeName, rsm, placementMatrix(m)); err != nil {
			log.Warn("skipping placed model", zap.Int("object", i), zap.Error(err))
			continue
		}
		placed++
	}

	if lights := rsw.GetLights(); len(lights) > 0 {
		group := b.scene.AddTransform(root, "lights", math.Identity())
		for _, l := range lights {
			n := b.scene.AddNode(group, encoding.SanitizeName(l.Name), obj.NodeOther)
			n.Transform = math.Translate(l.Position[0], -l.Position[1], l.Position[2])
			b.stats.Lights++
		}
	}

	if placed == 0 {
		return root, fmt.Errorf("world %s: %w", name, ErrNoGeometry)
	}
	return root, nil
}

// loadModel reads and parses a model, caching the outcome per file.
func (b *Builder) loadModel(name string, loader Loader) (*formats.RSM, error) {
	key := encoding.NormalizeGRFPath(name)
	if r, ok := b.models[key]; ok {
		return r.rsm, r.err
	}

	rsm, err := func() (*formats.RSM, error) {
		if loader == nil {
			return nil, errors.New("no model loader")
		}
		data, err := loader.ReadFile(ModelDir + name)
		if err != nil {
			return nil, err
		}
		return formats.ParseRSM(data)
	}()
	b.models[key] = modelResult{rsm, err}
	return rsm, err
}

func (b *Builder) addWorldGround(root *scene.Node, name string, loader Loader) error {
	if loader == nil {
		return errors.New("no ground loader")
	}
	data, err := loader.ReadFile(DataDir + name)
	if err != nil {
		return err
	}
	gnd, err := formats.ParseGND(data)
	if err != nil {
		return err
	}
	_, err = b.AddGround(root, gnd)
	return err
}
