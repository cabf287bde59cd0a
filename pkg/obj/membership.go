package obj

import "fmt"

// DefaultGroup is reported for polygons that belong to no group.
const DefaultGroup = "default"

// Component names used in membership warnings.
const (
	componentPolygon = "polygon"
	componentVertex  = "vertex"
)

// MembershipWarning describes set members that were skipped because their
// component index is outside the mesh.
type MembershipWarning struct {
	Set       string
	Object    string
	Component string
	Index     int // First offending index
	Limit     int // Component count of the mesh
	Skipped   int
}

func (w MembershipWarning) String() string {
	return fmt.Sprintf("set %q: %s %d of %s out of range (count %d, %d skipped)",
		w.Set, w.Component, w.Index, w.Object, w.Limit, w.Skipped)
}

// MeshTarget is a mesh taking part in the export run.
type MeshTarget struct {
	Ref  NodeRef
	Mesh Mesh
}

type objectTables struct {
	path      string
	polygons  bitMatrix // polygon x set
	vertices  bitMatrix // vertex x set
	ancestors bitMatrix // 1 x ancestor
}

// MembershipIndex answers which sets every polygon and vertex belongs to.
// It is built once per run, before any output is written.
type MembershipIndex struct {
	sets      []SetInfo
	ancestors []string
	objects   []objectTables
	byPath    map[string]int

	Warnings []MembershipWarning
}

// BuildMembership indexes set membership for the given meshes. Material
// sets are only indexed when materials are enabled and group sets only when
// groups are enabled.
func BuildMembership(scene Scene, targets []MeshTarget, opts Options) (*MembershipIndex, error) {
	idx := &MembershipIndex{
		byPath: make(map[string]int, len(targets)),
	}

	allSets, err := scene.Sets()
	if err != nil {
		return nil, fmt.Errorf("listing sets: %w", err)
	}

	// Scene set index for every kept set.
	var sceneIDs []int
	for i, s := range allSets {
		if s.Kind == SetRenderRestricted && !opts.Materials {
			continue
		}
		if s.Kind == SetGeneral && !opts.Groups {
			continue
		}
		idx.sets = append(idx.sets, s)
		sceneIDs = append(sceneIDs, i)
	}

	// Ancestors first, so the per-object tables can be sized.
	ancestorIDs := make(map[string]int)
	objectAncestors := make([][]int, len(targets))
	for i, t := range targets {
		names, err := scene.Ancestors(t.Ref.Path)
		if err != nil {
			return nil, fmt.Errorf("resolving ancestors of %s: %w", t.Ref.Path, err)
		}
		for _, name := range names {
			id, ok := ancestorIDs[name]
			if !ok {
				id = len(idx.ancestors)
				ancestorIDs[name] = id
				idx.ancestors = append(idx.ancestors, name)
			}
			objectAncestors[i] = append(objectAncestors[i], id)
		}
	}

	numSets := len(idx.sets)
	idx.objects = make([]objectTables, len(targets))
	for i, t := range targets {
		tables := objectTables{
			path:      t.Ref.Path,
			polygons:  newBitMatrix(t.Mesh.NumPolygons(), numSets),
			vertices:  newBitMatrix(t.Mesh.NumVertices(), numSets),
			ancestors: newBitMatrix(1, len(idx.ancestors)),
		}
		for _, a := range objectAncestors[i] {
			tables.ancestors.set(0, a)
		}
		idx.objects[i] = tables
		idx.byPath[t.Ref.Path] = i
	}

	for col, sceneID := range sceneIDs {
		members, err := scene.Members(sceneID)
		if err != nil {
			return nil, fmt.Errorf("listing members of set %q: %w", idx.sets[col].Name, err)
		}
		for _, m := range members {
			obj, ok := idx.byPath[m.Path]
			if !ok {
				continue
			}
			idx.mark(col, obj, m)
		}
	}

	return idx, nil
}

func (idx *MembershipIndex) mark(col, obj int, m Member) {
	tables := &idx.objects[obj]

	if m.Whole && len(m.Polygons) == 0 && len(m.Vertices) == 0 {
		tables.polygons.setColumn(col)
		return
	}

	var bad *MembershipWarning
	skip := func(component string, i, limit int) {
		if bad == nil || bad.Component != component {
			if bad != nil {
				idx.Warnings = append(idx.Warnings, *bad)
			}
			bad = &MembershipWarning{
				Set:       idx.sets[col].Name,
				Object:    tables.path,
				Component: component,
				Index:     i,
				Limit:     limit,
			}
		}
		bad.Skipped++
	}

	for _, p := range m.Polygons {
		if !tables.polygons.set(p, col) {
			skip(componentPolygon, p, tables.polygons.rows)
		}
	}
	for _, v := range m.Vertices {
		if !tables.vertices.set(v, col) {
			skip(componentVertex, v, tables.vertices.rows)
		}
	}
	if bad != nil {
		idx.Warnings = append(idx.Warnings, *bad)
	}
}

// NumSets returns the number of indexed sets.
func (idx *MembershipIndex) NumSets() int {
	return len(idx.sets)
}

// Ancestors returns every transform ancestor found, in discovery order.
func (idx *MembershipIndex) Ancestors() []string {
	return idx.ancestors
}

// Object returns the table index of the object at path.
func (idx *MembershipIndex) Object(path string) (int, bool) {
	i, ok := idx.byPath[path]
	return i, ok
}

// InPolygonSet reports whether polygon p of object obj belongs to set s.
func (idx *MembershipIndex) InPolygonSet(obj, p, s int) bool {
	return idx.objects[obj].polygons.get(p, s)
}

// InVertexSet reports whether vertex v of object obj belongs to set s.
func (idx *MembershipIndex) InVertexSet(obj, v, s int) bool {
	return idx.objects[obj].vertices.get(v, s)
}

// HasAncestor reports whether object obj is nested below ancestor a.
func (idx *MembershipIndex) HasAncestor(obj, a int) bool {
	return idx.objects[obj].ancestors.get(0, a)
}

// PolygonSets returns the group and material names for a polygon. Groups
// list the member sets in scene order followed by the object's transform
// ancestors; DefaultGroup stands in when the list would be empty.
func (idx *MembershipIndex) PolygonSets(obj, p int) (groups, materials []string) {
	groups, materials = idx.collect(&idx.objects[obj].polygons, p)
	for a, name := range idx.ancestors {
		if idx.HasAncestor(obj, a) {
			groups = append(groups, name)
		}
	}
	if len(groups) == 0 {
		groups = append(groups, DefaultGroup)
	}
	return groups, materials
}

// VertexSets returns the group and material names for a vertex.
func (idx *MembershipIndex) VertexSets(obj, v int) (groups, materials []string) {
	groups, materials = idx.collect(&idx.objects[obj].vertices, v)
	if len(groups) == 0 {
		groups = append(groups, DefaultGroup)
	}
	return groups, materials
}

func (idx *MembershipIndex) collect(table *bitMatrix, row int) (groups, materials []string) {
	for s, info := range idx.sets {
		if !table.get(row, s) {
			continue
		}
		if info.Kind == SetRenderRestricted {
			materials = append(materials, info.Name)
		} else {
			groups = append(groups, info.Name)
		}
	}
	return groups, materials
}
