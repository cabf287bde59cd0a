// Package scene is an in-memory DAG of transforms, meshes and sets that
// implements the exporter's scene interface.
package scene

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/objexport/pkg/math"
	"github.com/Faultbox/objexport/pkg/obj"
)

// Scene errors.
var (
	ErrNodeNotFound = errors.New("node not found")
	ErrNotMesh      = errors.New("node is not a mesh")
	ErrSetNotFound  = errors.New("set not found")
)

// PathSeparator separates node names in full paths.
const PathSeparator = "|"

// Node is a DAG node. Transform nodes carry a local matrix; meshes carry
// geometry and may carry a matrix of their own.
type Node struct {
	Name         string
	Kind         obj.NodeKind
	Intermediate bool
	Transform    math.Mat4
	Mesh         *MeshData

	parent   *Node
	children []*Node
}

// Parent returns the node's parent, or nil for top-level nodes.
func (n *Node) Parent() *Node {
	if n.parent == nil || n.parent.parent == nil {
		return nil
	}
	return n.parent
}

// Children returns the node's children in insertion order.
func (n *Node) Children() []*Node {
	return n.children
}

// Path returns the node's full path, e.g. "|house|roof|roofShape".
func (n *Node) Path() string {
	var names []string
	for cur := n; cur != nil && cur.parent != nil; cur = cur.parent {
		names = append(names, cur.Name)
	}
	var b strings.Builder
	for i := len(names) - 1; i >= 0; i-- {
		b.WriteString(PathSeparator)
		b.WriteString(names[i])
	}
	return b.String()
}

// WorldMatrix returns the product of every transform from the root down to
// and including n.
func (n *Node) WorldMatrix() math.Mat4 {
	m := math.Identity()
	for cur := n; cur != nil && cur.parent != nil; cur = cur.parent {
		m = cur.Transform.Mul(m)
	}
	return m
}

func (n *Node) ref() obj.NodeRef {
	return obj.NodeRef{
		Path:         n.Path(),
		Name:         n.Name,
		Kind:         n.Kind,
		Intermediate: n.Intermediate,
	}
}

// Scene is an in-memory scene.
type Scene struct {
	Unit obj.Unit

	root      *Node
	sets      []*Set
	selection []*Node
}

// New creates an empty scene that reports coordinates in unit.
func New(unit obj.Unit) *Scene {
	return &Scene{
		Unit: unit,
		root: &Node{Kind: obj.NodeTransform, Transform: math.Identity()},
	}
}

// Roots returns the top-level nodes.
func (s *Scene) Roots() []*Node {
	return s.root.children
}

// AddNode adds a child of parent (nil for top level). Sibling names are made
// unique by appending a number.
func (s *Scene) AddNode(parent *Node, name string, kind obj.NodeKind) *Node {
	if parent == nil {
		parent = s.root
	}
	n := &Node{
		Name:      uniqueName(parent, name),
		Kind:      kind,
		Transform: math.Identity(),
		parent:    parent,
	}
	parent.children = append(parent.children, n)
	return n
}

// AddTransform adds a transform node with the given local matrix.
func (s *Scene) AddTransform(parent *Node, name string, m math.Mat4) *Node {
	n := s.AddNode(parent, name, obj.NodeTransform)
	n.Transform = m
	return n
}

// AddMesh adds a mesh shape node.
func (s *Scene) AddMesh(parent *Node, name string, mesh *MeshData) *Node {
	n := s.AddNode(parent, name, obj.NodeMesh)
	n.Mesh = mesh
	return n
}

func uniqueName(parent *Node, name string) string {
	if name == "" {
		name = "node"
	}
	taken := func(candidate string) bool {
		for _, c := range parent.children {
			if c.Name == candidate {
				return true
			}
		}
		return false
	}
	if !taken(name) {
		return name
	}
	for i := 1; ; i++ {
		candidate := name + strconv.Itoa(i)
		if !taken(candidate) {
			return candidate
		}
	}
}

// Find returns the node at a full path.
func (s *Scene) Find(path string) *Node {
	cur := s.root
	for _, name := range strings.Split(strings.TrimPrefix(path, PathSeparator), PathSeparator) {
		var next *Node
		for _, c := range cur.children {
			if c.Name == name {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		cur = next
	}
	if cur == s.root {
		return nil
	}
	return cur
}

// FindByName returns every node with the given short name in depth-first
// pre-order.
func (s *Scene) FindByName(name string) []*Node {
	var out []*Node
	stack := make([]*Node, 0, len(s.root.children))
	for i := len(s.root.children) - 1; i >= 0; i-- {
		stack = append(stack, s.root.children[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.Name == name {
			out = append(out, n)
		}
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, n.children[i])
		}
	}
	return out
}

// Select replaces the active selection.
func (s *Scene) Select(nodes ...*Node) {
	s.selection = append(s.selection[:0], nodes...)
}

// Selection returns the active selection.
func (s *Scene) Selection() []*Node {
	return s.selection
}

// LinearUnit implements obj.Scene.
func (s *Scene) LinearUnit() obj.Unit {
	return s.Unit
}

// Walk implements obj.Scene. The whole scene is walked breadth-first; a
// selection is walked depth-first below each selected node.
func (s *Scene) Walk(scope obj.Scope) ([]obj.NodeRef, error) {
	var refs []obj.NodeRef

	switch scope {
	case obj.ScopeAll:
		queue := append([]*Node(nil), s.root.children...)
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			refs = append(refs, n.ref())
			queue = append(queue, n.children...)
		}
	case obj.ScopeSelection:
		if len(s.selection) == 0 {
			return nil, obj.ErrNothingSelected
		}
		for _, sel := range s.selection {
			stack := []*Node{sel}
			for len(stack) > 0 {
				n := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				refs = append(refs, n.ref())
				for i := len(n.children) - 1; i >= 0; i-- {
					stack = append(stack, n.children[i])
				}
			}
		}
	default:
		return nil, fmt.Errorf("unknown scope %d", scope)
	}

	return refs, nil
}

// Mesh implements obj.Scene.
func (s *Scene) Mesh(path string) (obj.Mesh, error) {
	n := s.Find(path)
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, path)
	}
	if n.Kind != obj.NodeMesh || n.Mesh == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotMesh, path)
	}
	if err := n.Mesh.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return newMeshView(n, s.Unit), nil
}

// Ancestors implements obj.Scene.
func (s *Scene) Ancestors(path string) ([]string, error) {
	n := s.Find(path)
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, path)
	}
	var names []string
	for cur := n.parent; cur != nil && cur != s.root; cur = cur.parent {
		if cur.Kind == obj.NodeTransform {
			names = append(names, cur.Name)
		}
	}
	return names, nil
}
