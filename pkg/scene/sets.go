package scene

import (
	"fmt"

	"github.com/Faultbox/objexport/pkg/obj"
)

type setMember struct {
	node     *Node
	polygons []int
	vertices []int
}

// Set is a named collection of objects, components and other sets.
type Set struct {
	Name string
	Kind obj.SetKind

	members []setMember
	subsets []*Set
}

// AddSet creates a set. Set names are not required to be unique.
func (s *Scene) AddSet(name string, kind obj.SetKind) *Set {
	set := &Set{Name: name, Kind: kind}
	s.sets = append(s.sets, set)
	return set
}

// FindSet returns the first set with the given name.
func (s *Scene) FindSet(name string) (*Set, error) {
	for _, set := range s.sets {
		if set.Name == name {
			return set, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSetNotFound, name)
}

// AddObject adds whole objects. A transform stands for every mesh shape
// directly below it.
func (set *Set) AddObject(nodes ...*Node) *Set {
	for _, n := range nodes {
		set.members = append(set.members, setMember{node: n})
	}
	return set
}

// AddPolygons adds polygon components of a mesh.
func (set *Set) AddPolygons(mesh *Node, polygons ...int) *Set {
	set.members = append(set.members, setMember{node: mesh, polygons: polygons})
	return set
}

// AddVertices adds vertex components of a mesh.
func (set *Set) AddVertices(mesh *Node, vertices ...int) *Set {
	set.members = append(set.members, setMember{node: mesh, vertices: vertices})
	return set
}

// Include nests another set; its members are reported as members of set.
func (set *Set) Include(other *Set) *Set {
	set.subsets = append(set.subsets, other)
	return set
}

// Sets implements obj.Scene.
func (s *Scene) Sets() ([]obj.SetInfo, error) {
	infos := make([]obj.SetInfo, len(s.sets))
	for i, set := range s.sets {
		infos[i] = obj.SetInfo{Name: set.Name, Kind: set.Kind}
	}
	return infos, nil
}

// Members implements obj.Scene. Nested sets are flattened and visited once
// even when they include each other.
func (s *Scene) Members(index int) ([]obj.Member, error) {
	if index < 0 || index >= len(s.sets) {
		return nil, fmt.Errorf("%w: index %d", ErrSetNotFound, index)
	}

	var members []obj.Member
	visited := make(map[*Set]bool)
	stack := []*Set{s.sets[index]}
	for len(stack) > 0 {
		set := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[set] {
			continue
		}
		visited[set] = true

		for _, m := range set.members {
			members = append(members, flatten(m)...)
		}
		for i := len(set.subsets) - 1; i >= 0; i-- {
			stack = append(stack, set.subsets[i])
		}
	}
	return members, nil
}

func flatten(m setMember) []obj.Member {
	if len(m.polygons) > 0 || len(m.vertices) > 0 {
		return []obj.Member{{
			Path:     m.node.Path(),
			Polygons: m.polygons,
			Vertices: m.vertices,
		}}
	}

	switch m.node.Kind {
	case obj.NodeMesh:
		return []obj.Member{{Path: m.node.Path(), Whole: true}}
	case obj.NodeTransform:
		var out []obj.Member
		for _, c := range m.node.children {
			if c.Kind == obj.NodeMesh && !c.Intermediate {
				out = append(out, obj.Member{Path: c.Path(), Whole: true})
			}
		}
		return out
	}
	return nil
}
