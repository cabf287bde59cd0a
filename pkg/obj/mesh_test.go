package obj

// testMesh is a minimal Mesh for the adjacency and smoothing tests.
type testMesh struct {
	verts [][3]float64
	polys [][]int
	hard  map[edgeKey]bool
	skip  map[edgeKey]bool // Edges left out of Edges()
}

func newTestMesh(numVerts int, polys ...[]int) *testMesh {
	return &testMesh{
		verts: make([][3]float64, numVerts),
		polys: polys,
		hard:  make(map[edgeKey]bool),
		skip:  make(map[edgeKey]bool),
	}
}

func (m *testMesh) setHard(a, b int) *testMesh {
	m.hard[makeEdgeKey(a, b)] = true
	return m
}

func (m *testMesh) hardenAll() *testMesh {
	for _, e := range m.Edges() {
		m.setHard(e.A, e.B)
	}
	return m
}

func (m *testMesh) NumVertices() int { return len(m.verts) }
func (m *testMesh) Vertex(i int) [3]float64 { return m.verts[i] }
func (m *testMesh) NumPolygons() int { return len(m.polys) }
func (m *testMesh) PolygonVertices(p int) []int { return m.polys[p] }

func (m *testMesh) Edges() []Edge {
	seen := make(map[edgeKey]bool)
	var edges []Edge
	for _, poly := range m.polys {
		for i := range poly {
			key := makeEdgeKey(poly[i], poly[(i+1)%len(poly)])
			if seen[key] || m.skip[key] {
				continue
			}
			seen[key] = true
			edges = append(edges, Edge{A: key.lo, B: key.hi, Smooth: !m.hard[key]})
		}
	}
	return edges
}

func (m *testMesh) NumUVs() int { return 0 }
func (m *testMesh) UV(int) [2]float64 { return [2]float64{} }
func (m *testMesh) PolygonUV(int, int) (int, bool) { return 0, false }
func (m *testMesh) NumNormals() int { return 0 }
func (m *testMesh) Normal(int) [3]float64 { return [3]float64{} }
func (m *testMesh) PolygonNormal(int, int) int { return 0 }

// quadStrip returns n quads in a row, each sharing an edge with the next.
//
//	0---2---4---6
//	|   |   |   |
//	1---3---5---7
func quadStrip(n int) *testMesh {
	polys := make([][]int, n)
	for i := range polys {
		a := 2 * i
		polys[i] = []int{a, a + 1, a + 3, a + 2}
	}
	return newTestMesh(2*n+2, polys...)
}
