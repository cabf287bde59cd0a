package obj

// noPolygon marks an unfilled polygon reference slot.
const noPolygon = -1

// edgeKey is an unordered vertex pair with the smaller id first.
type edgeKey struct {
	lo, hi int
}

func makeEdgeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{lo: a, hi: b}
}

// EdgeRecord is the adjacency entry for one edge. At most two polygon
// references are kept; a third reference overwrites the second.
type EdgeRecord struct {
	Smooth bool
	Polys  [2]int
}

// Border reports whether fewer than two polygons reference the edge.
func (e *EdgeRecord) Border() bool {
	return e.Polys[1] == noPolygon
}

// Other returns the polygon on the opposite side of the edge from p.
func (e *EdgeRecord) Other(p int) int {
	if e.Polys[0] == p {
		return e.Polys[1]
	}
	return e.Polys[0]
}

// AdjacencyIndex maps mesh edges to the polygons that reference them.
type AdjacencyIndex struct {
	index   map[edgeKey]int
	records []EdgeRecord
	polys   [][]int

	// Missing counts polygon boundaries with no matching edge record.
	Missing int
}

// BuildAdjacency builds the edge table for one mesh.
func BuildAdjacency(m Mesh) *AdjacencyIndex {
	edges := m.Edges()
	numPolys := m.NumPolygons()

	adj := &AdjacencyIndex{
		index:   make(map[edgeKey]int, len(edges)),
		records: make([]EdgeRecord, 0, len(edges)),
		polys:   make([][]int, numPolys),
	}

	for _, e := range edges {
		key := makeEdgeKey(e.A, e.B)
		if _, ok := adj.index[key]; ok {
			continue
		}
		adj.index[key] = len(adj.records)
		adj.records = append(adj.records, EdgeRecord{
			Smooth: e.Smooth,
			Polys:  [2]int{noPolygon, noPolygon},
		})
	}

	for p := 0; p < numPolys; p++ {
		verts := m.PolygonVertices(p)
		adj.polys[p] = verts
		for i := range verts {
			rec := adj.Lookup(verts[i], verts[(i+1)%len(verts)])
			if rec == nil {
				adj.Missing++
				continue
			}
			if rec.Polys[0] == noPolygon {
				rec.Polys[0] = p
			} else {
				rec.Polys[1] = p
			}
		}
	}

	return adj
}

// Lookup returns the edge record for the vertex pair, or nil when the mesh
// did not enumerate that edge.
func (a *AdjacencyIndex) Lookup(v1, v2 int) *EdgeRecord {
	idx, ok := a.index[makeEdgeKey(v1, v2)]
	if !ok {
		return nil
	}
	return &a.records[idx]
}

// NumPolygons returns the number of polygons indexed.
func (a *AdjacencyIndex) NumPolygons() int {
	return len(a.polys)
}

// NumEdges returns the number of distinct edges indexed.
func (a *AdjacencyIndex) NumEdges() int {
	return len(a.records)
}

// Boundary returns the edge records around polygon p in cycle order. Missing
// edges are reported as nil entries.
func (a *AdjacencyIndex) Boundary(p int) []*EdgeRecord {
	verts := a.polys[p]
	out := make([]*EdgeRecord, len(verts))
	for i := range verts {
		out[i] = a.Lookup(verts[i], verts[(i+1)%len(verts)])
	}
	return out
}
