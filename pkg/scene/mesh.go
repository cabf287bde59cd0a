package scene

import (
	"errors"
	"fmt"

	"github.com/Faultbox/objexport/pkg/math"
	"github.com/Faultbox/objexport/pkg/obj"
)

// Mesh validation errors.
var (
	ErrVertexOutOfRange = errors.New("polygon vertex out of range")
	ErrUVOutOfRange     = errors.New("polygon UV out of range")
	ErrNormalOutOfRange = errors.New("polygon normal out of range")
	ErrMissingNormals   = errors.New("mesh has normals but polygon has no normal ids")
)

// NoUV marks a polygon corner without texture mapping.
const NoUV = -1

// MeshData is polygon geometry in the owning node's local space, in
// centimetres.
type MeshData struct {
	Positions [][3]float32
	Polygons  [][]int

	UVs        [][2]float32
	PolygonUVs [][]int // Per polygon corner, NoUV when unmapped; a nil row leaves the polygon unmapped

	Normals        [][3]float32
	PolygonNormals [][]int // Per polygon corner

	hard  map[[2]int]bool
	edges []obj.Edge
}

func edgePair(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// SetHard marks the edge between two vertices as not smooth.
func (m *MeshData) SetHard(a, b int) {
	if m.hard == nil {
		m.hard = make(map[[2]int]bool)
	}
	m.hard[edgePair(a, b)] = true
	m.edges = nil
}

// IsHard reports whether the edge was marked hard.
func (m *MeshData) IsHard(a, b int) bool {
	return m.hard[edgePair(a, b)]
}

// Edges returns every distinct polygon edge in first-seen order. The list is
// cached until the next SetHard.
func (m *MeshData) Edges() []obj.Edge {
	if m.edges != nil {
		return m.edges
	}
	seen := make(map[[2]int]bool)
	edges := make([]obj.Edge, 0)
	for _, poly := range m.Polygons {
		for i := range poly {
			a, b := poly[i], poly[(i+1)%len(poly)]
			key := edgePair(a, b)
			if seen[key] {
				continue
			}
			seen[key] = true
			edges = append(edges, obj.Edge{A: a, B: b, Smooth: !m.hard[key]})
		}
	}
	m.edges = edges
	return edges
}

// Validate checks every polygon index against the tables.
func (m *MeshData) Validate() error {
	for p, poly := range m.Polygons {
		for _, v := range poly {
			if v < 0 || v >= len(m.Positions) {
				return fmt.Errorf("%w: polygon %d vertex %d", ErrVertexOutOfRange, p, v)
			}
		}
		if p < len(m.PolygonUVs) {
			for _, uv := range m.PolygonUVs[p] {
				if uv != NoUV && (uv < 0 || uv >= len(m.UVs)) {
					return fmt.Errorf("%w: polygon %d uv %d", ErrUVOutOfRange, p, uv)
				}
			}
		}
		if len(m.Normals) > 0 {
			if p >= len(m.PolygonNormals) || len(m.PolygonNormals[p]) < len(poly) {
				return fmt.Errorf("%w: polygon %d", ErrMissingNormals, p)
			}
			for _, n := range m.PolygonNormals[p] {
				if n < 0 || n >= len(m.Normals) {
					return fmt.Errorf("%w: polygon %d normal %d", ErrNormalOutOfRange, p, n)
				}
			}
		}
	}
	return nil
}

// meshView exposes a mesh node to the exporter in world space and in the
// scene's unit.
type meshView struct {
	data   *MeshData
	world  math.Mat4
	normal math.Mat4
	unit   obj.Unit
}

func newMeshView(n *Node, unit obj.Unit) *meshView {
	world := n.WorldMatrix()
	return &meshView{
		data:   n.Mesh,
		world:  world,
		normal: world.NormalMatrix(),
		unit:   unit,
	}
}

func (m *meshView) NumVertices() int { return len(m.data.Positions) }

func (m *meshView) Vertex(i int) [3]float64 {
	p := m.world.TransformPoint(m.data.Positions[i])
	return [3]float64{
		m.unit.FromCentimeters(float64(p[0])),
		m.unit.FromCentimeters(float64(p[1])),
		m.unit.FromCentimeters(float64(p[2])),
	}
}

func (m *meshView) NumPolygons() int { return len(m.data.Polygons) }

func (m *meshView) PolygonVertices(p int) []int { return m.data.Polygons[p] }

func (m *meshView) Edges() []obj.Edge { return m.data.Edges() }

func (m *meshView) NumUVs() int { return len(m.data.UVs) }

func (m *meshView) UV(i int) [2]float64 {
	uv := m.data.UVs[i]
	return [2]float64{float64(uv[0]), float64(uv[1])}
}

func (m *meshView) PolygonUV(p, corner int) (int, bool) {
	if p >= len(m.data.PolygonUVs) {
		return 0, false
	}
	row := m.data.PolygonUVs[p]
	if corner >= len(row) || row[corner] == NoUV {
		return 0, false
	}
	return row[corner], true
}

func (m *meshView) NumNormals() int { return len(m.data.Normals) }

func (m *meshView) Normal(i int) [3]float64 {
	n := math.Vec3FromArray(m.normal.TransformDirection(m.data.Normals[i])).Normalize()
	return [3]float64{float64(n.X), float64(n.Y), float64(n.Z)}
}

func (m *meshView) PolygonNormal(p, corner int) int {
	return m.data.PolygonNormals[p][corner]
}
