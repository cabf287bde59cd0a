package obj

import "testing"

func TestBuildAdjacency_SharedEdge(t *testing.T) {
	adj := BuildAdjacency(quadStrip(2))

	if adj.NumPolygons() != 2 {
		t.Fatalf("NumPolygons = %d, want 2", adj.NumPolygons())
	}
	if adj.NumEdges() != 7 {
		t.Errorf("NumEdges = %d, want 7", adj.NumEdges())
	}

	shared := adj.Lookup(2, 3)
	if shared == nil {
		t.Fatal("shared edge 2-3 not found")
	}
	if shared.Border() {
		t.Error("shared edge reported as border")
	}
	if shared.Polys != [2]int{0, 1} {
		t.Errorf("shared edge polys = %v, want [0 1]", shared.Polys)
	}
	if got := shared.Other(0); got != 1 {
		t.Errorf("Other(0) = %d, want 1", got)
	}
	if got := shared.Other(1); got != 0 {
		t.Errorf("Other(1) = %d, want 0", got)
	}

	border := adj.Lookup(0, 1)
	if border == nil || !border.Border() {
		t.Errorf("edge 0-1 should be a border edge, got %+v", border)
	}
}

func TestAdjacencyIndex_LookupUnordered(t *testing.T) {
	adj := BuildAdjacency(quadStrip(1))

	tests := []struct {
		name   string
		v1, v2 int
		want   bool
	}{
		{"forward", 0, 1, true},
		{"reversed", 1, 0, true},
		{"diagonal", 0, 3, false},
		{"unknown vertex", 0, 99, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adj.Lookup(tt.v1, tt.v2) != nil
			if got != tt.want {
				t.Errorf("Lookup(%d, %d) found = %v, want %v", tt.v1, tt.v2, got, tt.want)
			}
		})
	}
}

func TestBuildAdjacency_ThirdReferenceOverwrites(t *testing.T) {
	// Three triangles fanned around edge 0-1.
	m := newTestMesh(5, []int{0, 1, 2}, []int{0, 1, 3}, []int{0, 1, 4})
	adj := BuildAdjacency(m)

	rec := adj.Lookup(0, 1)
	if rec == nil {
		t.Fatal("edge 0-1 not found")
	}
	if rec.Polys != [2]int{0, 2} {
		t.Errorf("polys = %v, want [0 2]", rec.Polys)
	}
}

func TestBuildAdjacency_MissingEdges(t *testing.T) {
	m := quadStrip(2)
	m.skip[makeEdgeKey(2, 3)] = true
	adj := BuildAdjacency(m)

	if adj.Missing != 2 {
		t.Errorf("Missing = %d, want 2", adj.Missing)
	}

	boundary := adj.Boundary(0)
	if len(boundary) != 4 {
		t.Fatalf("boundary length = %d, want 4", len(boundary))
	}
	nils := 0
	for _, e := range boundary {
		if e == nil {
			nils++
		}
	}
	if nils != 1 {
		t.Errorf("nil boundary entries = %d, want 1", nils)
	}
}

func TestBuildAdjacency_Empty(t *testing.T) {
	adj := BuildAdjacency(newTestMesh(0))
	if adj.NumPolygons() != 0 || adj.NumEdges() != 0 {
		t.Errorf("empty mesh: polygons=%d edges=%d", adj.NumPolygons(), adj.NumEdges())
	}
}
