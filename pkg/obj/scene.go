// Package obj exports polygon scenes as Wavefront OBJ text.
//
// The exporter never owns geometry. It reads everything through the Scene and
// Mesh interfaces, infers smoothing groups from edge smoothness, resolves set
// membership once per run and writes a single OBJ stream in which every object
// shares one global index space.
package obj

import "errors"

// Export errors.
var (
	ErrNothingSelected = errors.New("nothing is selected")
	ErrNoScene         = errors.New("no scene to export")
)

// Scope selects which part of the scene is exported.
type Scope int

const (
	ScopeAll       Scope = iota // Whole DAG, breadth-first
	ScopeSelection              // Depth-first below each selected node
)

// String returns the scope name.
func (s Scope) String() string {
	switch s {
	case ScopeAll:
		return "all"
	case ScopeSelection:
		return "selection"
	default:
		return "unknown"
	}
}

// NodeKind classifies DAG nodes for export.
type NodeKind int

const (
	NodeTransform NodeKind = iota
	NodeMesh
	NodeSurface // Parametric surface, not exportable
	NodeOther
)

// String returns a human-readable node kind.
func (k NodeKind) String() string {
	switch k {
	case NodeTransform:
		return "transform"
	case NodeMesh:
		return "mesh"
	case NodeSurface:
		return "surface"
	default:
		return "other"
	}
}

// NodeRef identifies a node yielded by Scene.Walk.
type NodeRef struct {
	Path         string // Unique full path, e.g. "|house|roofShape"
	Name         string // Short node name
	Kind         NodeKind
	Intermediate bool // Construction-history node, never exported
}

// SetKind is the restriction class of a set.
type SetKind int

const (
	SetGeneral          SetKind = iota // Group-like, written as "g"
	SetRenderRestricted                // Material-like, written as "usemtl"
)

// String returns the set kind name.
func (k SetKind) String() string {
	if k == SetRenderRestricted {
		return "material"
	}
	return "group"
}

// SetInfo describes a set in the scene.
type SetInfo struct {
	Name string
	Kind SetKind
}

// Member is one flattened set member. A member with Whole set and no
// component lists stands for every polygon of the mesh.
type Member struct {
	Path     string
	Polygons []int
	Vertices []int
	Whole    bool
}

// Edge is an undirected mesh edge as enumerated by the mesh.
type Edge struct {
	A, B   int
	Smooth bool
}

// Mesh is the per-object geometry query interface.
type Mesh interface {
	NumVertices() int
	// Vertex returns a world-space position already converted to the
	// scene's linear unit.
	Vertex(i int) [3]float64

	NumPolygons() int
	// PolygonVertices returns the polygon's vertex cycle.
	PolygonVertices(p int) []int
	Edges() []Edge

	NumUVs() int
	UV(i int) [2]float64
	// PolygonUV reports the UV index at a polygon corner, or false when the
	// polygon has no mapping.
	PolygonUV(p, corner int) (int, bool)

	NumNormals() int
	Normal(i int) [3]float64
	PolygonNormal(p, corner int) int
}

// Scene is the model the exporter reads from.
type Scene interface {
	LinearUnit() Unit
	Walk(scope Scope) ([]NodeRef, error)
	Mesh(path string) (Mesh, error)
	Sets() ([]SetInfo, error)
	Members(set int) ([]Member, error)
	// Ancestors returns transform ancestor names, nearest first.
	Ancestors(path string) ([]string, error)
}
