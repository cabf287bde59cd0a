package rsmscene

import (
	"fmt"

	"github.com/Faultbox/objexport/pkg/formats"
	"github.com/Faultbox/objexport/pkg/math"
	"github.com/Faultbox/objexport/pkg/scene"
)

// GroundName names the transform holding a world's ground mesh.
const GroundName = "ground"

// wallUV maps a wall without its own surface onto the whole texture.
var wallUV = formats.GNDSurface{U: [4]float32{0, 1, 0, 1}, V: [4]float32{0, 0, 1, 1}}

// groundMesh accumulates ground polygons. Corners at the same position share
// a vertex so neighbouring tiles are connected.
type groundMesh struct {
	g  *formats.GND
	md *scene.MeshData

	vertices  map[[3]float32]int
	topNormal map[int]int
	byTexture map[int][]int
	order     []int
	faces     int
}

func (m *groundMesh) vertex(p [3]float32) int {
	id, ok := m.vertices[p]
	if !ok {
		id = len(m.md.Positions)
		m.vertices[p] = id
		m.md.Positions = append(m.md.Positions, p)
	}
	return id
}

func (m *groundMesh) uv(s *formats.GNDSurface, corner int) int {
	m.md.UVs = append(m.md.UVs, [2]float32{s.U[corner], 1 - s.V[corner]})
	return len(m.md.UVs) - 1
}

// triangle adds one face. Top faces share averaged normals per vertex;
// wall faces get their own normal and hard edges.
func (m *groundMesh) triangle(p [3][3]float32, uvs [3]int, texture int16, wall bool) {
	n, ok := faceNormal(p[0], p[1], p[2])
	if !ok {
		return
	}

	corners := make([]int, 3)
	normals := make([]int, 3)
	for i := range p {
		corners[i] = m.vertex(p[i])
	}
	if corners[0] == corners[1] || corners[1] == corners[2] || corners[0] == corners[2] {
		return
	}

	if wall {
		id := len(m.md.Normals)
		m.md.Normals = append(m.md.Normals, n)
		for i := range normals {
			normals[i] = id
		}
	} else {
		for i, v := range corners {
			id, ok := m.topNormal[v]
			if !ok {
				id = len(m.md.Normals)
				m.topNormal[v] = id
				m.md.Normals = append(m.md.Normals, [3]float32{})
			}
			acc := &m.md.Normals[id]
			acc[0], acc[1], acc[2] = acc[0]+n[0], acc[1]+n[1], acc[2]+n[2]
			normals[i] = id
		}
	}

	poly := len(m.md.Polygons)
	m.md.Polygons = append(m.md.Polygons, corners)
	m.md.PolygonUVs = append(m.md.PolygonUVs, uvs[:])
	m.md.PolygonNormals = append(m.md.PolygonNormals, normals)
	m.faces++

	if wall {
		for i := range corners {
			m.md.SetHard(corners[i], corners[(i+1)%3])
		}
	}

	if texture >= 0 && int(texture) < len(m.g.Textures) {
		tex := int(texture)
		if _, ok := m.byTexture[tex]; !ok {
			m.order = append(m.order, tex)
		}
		m.byTexture[tex] = append(m.byTexture[tex], poly)
	}
}

// quad adds corners a, b, c, d as triangles (a,b,c) and (c,b,d), with UVs
// from the given surface corners.
func (m *groundMesh) quad(p [4][3]float32, s *formats.GNDSurface, uvCorners [4]int, wall bool) {
	var uvs [4]int
	for i, c := range uvCorners {
		uvs[i] = m.uv(s, c)
	}
	m.triangle([3][3]float32{p[0], p[1], p[2]}, [3]int{uvs[0], uvs[1], uvs[2]}, s.TextureID, wall)
	m.triangle([3][3]float32{p[2], p[1], p[3]}, [3]int{uvs[2], uvs[1], uvs[3]}, s.TextureID, wall)
}

// wallSurface returns the surface for a wall, falling back to the tile's top
// surface texture stretched over the wall.
func (m *groundMesh) wallSurface(id int32, tile *formats.GNDTile) *formats.GNDSurface {
	if s := m.g.Surface(id); s != nil {
		return s
	}
	top := m.g.Surface(tile.TopSurface)
	if top == nil {
		return nil
	}
	s := wallUV
	s.TextureID = top.TextureID
	return &s
}

func heightsDiffer(a, b float32) bool {
	return a-b > 0.001 || b-a > 0.001
}

// AddGround adds the ground as a mesh below a transform named GroundName.
// The ground is centred on the origin like world model placements; tile
// corners become shared vertices, walls between tiles of different height
// are added where the heights differ, and each ground texture becomes a
// material.
func (b *Builder) AddGround(parent *scene.Node, g *formats.GND) (*scene.Node, error) {
	m := &groundMesh{
		g:         g,
		md:        &scene.MeshData{},
		vertices:  make(map[[3]float32]int),
		topNormal: make(map[int]int),
		byTexture: make(map[int][]int),
	}

	size := g.Zoom
	for y := 0; y < int(g.Height); y++ {
		for x := 0; x < int(g.Width); x++ {
			tile := g.GetTile(x, y)
			x0, x1 := float32(x)*size, float32(x+1)*size
			z0, z1 := float32(y)*size, float32(y+1)*size

			// Bottom-left, bottom-right, top-left, top-right.
			c := [4][3]float32{
				{x0, -tile.Altitude[0], z1},
				{x1, -tile.Altitude[1], z1},
				{x0, -tile.Altitude[2], z0},
				{x1, -tile.Altitude[3], z0},
			}

			if s := g.Surface(tile.TopSurface); s != nil {
				m.quad(c, s, [4]int{2, 3, 0, 1}, false)
			}

			// Walls face the lower tile.
			if next := g.GetTile(x, y+1); next != nil &&
				(heightsDiffer(tile.Altitude[0], next.Altitude[2]) || heightsDiffer(tile.Altitude[1], next.Altitude[3])) {
				if s := m.wallSurface(tile.FrontSurface, tile); s != nil {
					wall := [4][3]float32{c[0], c[1], {x0, -next.Altitude[2], z1}, {x1, -next.Altitude[3], z1}}
					m.quad([4][3]float32{wall[0], wall[2], wall[1], wall[3]}, s, [4]int{0, 2, 1, 3}, true)
				}
			}

			if right := g.GetTile(x+1, y); right != nil &&
				(heightsDiffer(tile.Altitude[1], right.Altitude[0]) || heightsDiffer(tile.Altitude[3], right.Altitude[2])) {
				if s := m.wallSurface(tile.RightSurface, tile); s != nil {
					wall := [4][3]float32{c[3], c[1], {x1, -right.Altitude[2], z0}, {x1, -right.Altitude[0], z1}}
					m.quad([4][3]float32{wall[1], wall[3], wall[0], wall[2]}, s, [4]int{1, 3, 0, 2}, true)
				}
			}
		}
	}

	if m.faces == 0 {
		return nil, fmt.Errorf("ground: %w", ErrNoGeometry)
	}
	for _, id := range m.topNormal {
		m.md.Normals[id] = normalize(m.md.Normals[id])
	}

	half := size / 2
	xf := b.scene.AddTransform(parent, GroundName,
		math.Translate(-float32(g.Width)*half, 0, -float32(g.Height)*half))
	mesh := b.scene.AddMesh(xf, GroundName+"Shape", m.md)
	for _, tex := range m.order {
		b.material(g.Textures[tex]).AddPolygons(mesh, m.byTexture[tex]...)
	}
	b.stats.GroundFaces += m.faces
	return xf, nil
}
