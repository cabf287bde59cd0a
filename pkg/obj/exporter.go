package obj

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Exporter writes scenes as OBJ text.
type Exporter struct {
	opts Options
	log  *zap.Logger
}

// NewExporter creates an exporter. A nil logger discards diagnostics.
func NewExporter(opts Options, log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{opts: opts, log: log}
}

// Options returns the exporter's options.
func (e *Exporter) Options() Options {
	return e.opts
}

// Plan is a resolved export run. Everything that can fail fatally has
// already been done when a Plan exists; writing it only fails on output
// errors.
type Plan struct {
	exp        *Exporter
	unit       Unit
	scope      Scope
	targets    []MeshTarget
	membership *MembershipIndex
	skipped    []NodeRef
	warnings   int
}

// Prepare resolves the objects to export, queries every mesh and indexes set
// membership across all of them.
func (e *Exporter) Prepare(scene Scene, scope Scope) (*Plan, error) {
	if scene == nil {
		return nil, ErrNoScene
	}

	nodes, err := scene.Walk(scope)
	if err != nil {
		return nil, fmt.Errorf("resolving %s targets: %w", scope, err)
	}

	plan := &Plan{
		exp:   e,
		unit:  scene.LinearUnit(),
		scope: scope,
	}

	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if n.Intermediate {
			continue
		}
		switch n.Kind {
		case NodeSurface:
			plan.warnings++
			plan.skipped = append(plan.skipped, n)
			e.log.Warn("skipping unsupported surface", zap.String("object", n.Path))
		case NodeMesh:
			if seen[n.Path] {
				continue
			}
			seen[n.Path] = true

			mesh, err := scene.Mesh(n.Path)
			if err != nil {
				return nil, fmt.Errorf("querying mesh %s: %w", n.Path, err)
			}
			plan.targets = append(plan.targets, MeshTarget{Ref: n, Mesh: mesh})
		}
	}

	plan.membership, err = BuildMembership(scene, plan.targets, e.opts)
	if err != nil {
		return nil, err
	}
	for _, w := range plan.membership.Warnings {
		plan.warnings++
		e.log.Warn("set component out of range, skipping",
			zap.String("set", w.Set),
			zap.String("object", w.Object),
			zap.String("component", w.Component),
			zap.Int("index", w.Index),
			zap.Int("count", w.Limit),
			zap.Int("skipped", w.Skipped))
	}

	e.log.Info("export prepared",
		zap.Stringer("scope", scope),
		zap.Int("objects", len(plan.targets)),
		zap.Int("sets", plan.membership.NumSets()),
		zap.Int("ancestors", len(plan.membership.Ancestors())))

	return plan, nil
}

// Targets returns the meshes the plan will write, in output order.
func (p *Plan) Targets() []MeshTarget {
	return p.targets
}

// Membership returns the plan's membership index.
func (p *Plan) Membership() *MembershipIndex {
	return p.membership
}

// Write writes the whole run to w in a fresh session.
func (p *Plan) Write(w io.Writer) (*Report, error) {
	s := newSession(w, p.exp.opts, p.exp.log, p.membership)

	if err := s.writeHeader(p.unit); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	for i, t := range p.targets {
		if err := s.writeObject(i, t); err != nil {
			return nil, fmt.Errorf("writing %s: %w", t.Ref.Path, err)
		}
	}

	report, err := s.finish()
	if err != nil {
		return nil, err
	}
	report.Skipped = p.skipped
	report.Warnings += p.warnings

	p.exp.log.Info("export finished",
		zap.Int("objects", len(report.Objects)),
		zap.Int("vertices", report.Vertices),
		zap.Int("polygons", report.Polygons),
		zap.Int("warnings", report.Warnings),
		zap.Int64("bytes", report.Bytes))

	return report, nil
}

// Export prepares and writes a run in one call.
func (e *Exporter) Export(scene Scene, scope Scope, w io.Writer) (*Report, error) {
	plan, err := e.Prepare(scene, scope)
	if err != nil {
		return nil, err
	}
	return plan.Write(w)
}
