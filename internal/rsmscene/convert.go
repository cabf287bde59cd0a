// Package rsmscene builds exportable scenes from Ragnarok Online models and
// world maps.
//
// Each RSM node becomes a transform carrying the node's hierarchy matrix with
// a mesh shape below it carrying the vertex-only Offset*Mat3 transform, so
// the scene's world matrices reproduce the client's node placement. Faces
// keep their texture as a material set membership and their smoothing group
// as hard edges between groups.
package rsmscene

import (
	"errors"
	"fmt"
	gomath "math"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/objexport/pkg/encoding"
	"github.com/Faultbox/objexport/pkg/formats"
	"github.com/Faultbox/objexport/pkg/math"
	"github.com/Faultbox/objexport/pkg/obj"
	"github.com/Faultbox/objexport/pkg/scene"
)

// ErrNoGeometry is returned when a model or world has nothing to add.
var ErrNoGeometry = errors.New("no geometry")

// TwoSidedSet is the general set holding every face flagged two-sided.
const TwoSidedSet = "two_sided"

// Options control model conversion.
type Options struct {
	// TimeMs poses keyframed nodes. Zero poses the first keyframe.
	TimeMs float32

	// SkipGround leaves out the ground of worlds.
	SkipGround bool
}

// Stats counts what a Builder added.
type Stats struct {
	Models        int
	Nodes         int
	Faces         int
	SkippedFaces  int
	MissingModels int
	Lights        int
	GroundFaces   int
}

// Builder adds models to a scene. Material and two-sided sets are shared by
// every model added through the same Builder.
type Builder struct {
	scene *scene.Scene
	opts  Options
	log   *zap.Logger

	materials map[string]*scene.Set
	twoSided  *scene.Set
	models    map[string]modelResult
	stats     Stats
}

type modelResult struct {
	rsm *formats.RSM
	err error
}

// NewBuilder creates a builder adding to s. A nil logger discards
// diagnostics.
func NewBuilder(s *scene.Scene, opts Options, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{
		scene:     s,
		opts:      opts,
		log:       log,
		materials: make(map[string]*scene.Set),
		models:    make(map[string]modelResult),
	}
}

// Stats returns the running totals.
func (b *Builder) Stats() Stats {
	return b.stats
}

// AddModel adds rsm below parent (nil for top level) as a transform named
// name and returns it.
func (b *Builder) AddModel(parent *scene.Node, name string, rsm *formats.RSM) (*scene.Node, error) {
	return b.addModel(parent, name, rsm, math.Identity())
}

func (b *Builder) addModel(parent *scene.Node, name string, rsm *formats.RSM, placement math.Mat4) (*scene.Node, error) {
	if len(rsm.Nodes) == 0 {
		return nil, fmt.Errorf("model %s: %w", name, ErrNoGeometry)
	}

	root := b.scene.AddTransform(parent, encoding.SanitizeName(name), placement.Mul(flipY))
	log := b.log.With(zap.String("model", root.Name))

	// First occurrence wins for duplicate node names.
	byName := make(map[string]int, len(rsm.Nodes))
	for i := range rsm.Nodes {
		if _, ok := byName[rsm.Nodes[i].Name]; !ok {
			byName[rsm.Nodes[i].Name] = i
		}
	}

	children := make([][]int, len(rsm.Nodes))
	var tops []int
	for i := range rsm.Nodes {
		n := &rsm.Nodes[i]
		p, ok := byName[n.Parent]
		if n.Parent == "" || !ok || p == i {
			tops = append(tops, i)
			continue
		}
		children[p] = append(children[p], i)
	}

	added := make([]bool, len(rsm.Nodes))
	attach := func(start int, under *scene.Node) {
		type item struct {
			node   int
			parent *scene.Node
		}
		stack := []item{{start, under}}
		for len(stack) > 0 {
			it := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if added[it.node] {
				continue
			}
			added[it.node] = true

			xf := b.addNode(it.parent, &rsm.Nodes[it.node], rsm, log)
			for j := len(children[it.node]) - 1; j >= 0; j-- {
				stack = append(stack, item{children[it.node][j], xf})
			}
		}
	}

	for _, i := range tops {
		attach(i, root)
	}
	for i := range rsm.Nodes {
		if !added[i] {
			log.Warn("node parent chain is cyclic, attaching to model root",
				zap.String("node", rsm.Nodes[i].Name),
				zap.String("parent", rsm.Nodes[i].Parent))
			attach(i, root)
		}
	}

	b.stats.Models++
	return root, nil
}

// addNode adds the transform for one RSM node and, when it has faces, its
// mesh shape.
func (b *Builder) addNode(parent *scene.Node, node *formats.RSMNode, rsm *formats.RSM, log *zap.Logger) *scene.Node {
	name := encoding.SanitizeName(node.Name)
	xf := b.scene.AddTransform(parent, name, nodeMatrix(node, b.opts.TimeMs))
	b.stats.Nodes++

	if len(node.Faces) == 0 {
		return xf
	}

	shape := shapeMatrix(node)
	mirrored := xf.WorldMatrix().Mul(shape).Det3() < 0

	conv := b.buildMesh(node, rsm, mirrored, log.With(zap.String("node", node.Name)))
	if len(conv.mesh.Polygons) == 0 {
		return xf
	}

	mesh := b.scene.AddMesh(xf, name+"Shape", conv.mesh)
	mesh.Transform = shape

	for _, tex := range conv.textureOrder {
		b.material(rsm.Textures[tex]).AddPolygons(mesh, conv.byTexture[tex]...)
	}
	if len(conv.twoSided) > 0 {
		if b.twoSided == nil {
			b.twoSided = b.scene.AddSet(TwoSidedSet, obj.SetGeneral)
		}
		b.twoSided.AddPolygons(mesh, conv.twoSided...)
	}
	return xf
}

// material returns the shared material set for a texture path.
func (b *Builder) material(texture string) *scene.Set {
	name := MaterialName(texture)
	set, ok := b.materials[name]
	if !ok {
		set = b.scene.AddSet(name, obj.SetRenderRestricted)
		b.materials[name] = set
	}
	return set
}

// MaterialName derives a material name from a texture path:
// "내부소품/벽.bmp" becomes "내부소품_벽".
func MaterialName(texture string) string {
	texture = strings.ReplaceAll(texture, "\\", "/")
	return encoding.SanitizeName(strings.TrimSuffix(texture, path.Ext(texture)))
}

type convertedMesh struct {
	mesh         *scene.MeshData
	byTexture    map[int][]int
	textureOrder []int
	twoSided     []int
}

type normalKey struct {
	vertex int
	group  int32
}

// buildMesh converts a node's faces. Smooth models get one normal per vertex
// and smoothing group, averaged over the group's faces, and hard edges where
// groups meet. Flat and unshaded models get face normals and every edge
// hard.
func (b *Builder) buildMesh(node *formats.RSMNode, rsm *formats.RSM, mirrored bool, log *zap.Logger) convertedMesh {
	flat := rsm.Shading != formats.RSMShadingSmooth

	md := &scene.MeshData{
		Positions: append([][3]float32(nil), node.Vertices...),
		UVs:       make([][2]float32, len(node.TexCoords)),
	}
	for i, tc := range node.TexCoords {
		md.UVs[i] = [2]float32{tc.U, 1 - tc.V}
	}

	out := convertedMesh{mesh: md, byTexture: make(map[int][]int)}
	normalIDs := make(map[normalKey]int)
	edgeGroup := make(map[[2]int]int32)

	for fi, f := range node.Faces {
		var corners [3]int
		valid := true
		for j, v := range f.VertexIDs {
			if int(v) >= len(node.Vertices) {
				valid = false
			}
			corners[j] = int(v)
		}
		if !valid {
			log.Warn("face vertex out of range, skipping face",
				zap.Int("face", fi),
				zap.Int("vertices", len(node.Vertices)))
			b.stats.SkippedFaces++
			continue
		}

		n, ok := faceNormal(node.Vertices[corners[0]], node.Vertices[corners[1]], node.Vertices[corners[2]])
		if !ok {
			log.Debug("skipping degenerate face", zap.Int("face", fi))
			b.stats.SkippedFaces++
			continue
		}

		var uvs, normals [3]int
		for j, tc := range f.TexCoordIDs {
			uvs[j] = scene.NoUV
			if int(tc) < len(node.TexCoords) {
				uvs[j] = int(tc)
			}
		}
		if flat {
			id := len(md.Normals)
			md.Normals = append(md.Normals, n)
			normals = [3]int{id, id, id}
		} else {
			for j, v := range corners {
				k := normalKey{v, f.SmoothGroup}
				id, ok := normalIDs[k]
				if !ok {
					id = len(md.Normals)
					normalIDs[k] = id
					md.Normals = append(md.Normals, [3]float32{})
				}
				acc := &md.Normals[id]
				acc[0], acc[1], acc[2] = acc[0]+n[0], acc[1]+n[1], acc[2]+n[2]
				normals[j] = id
			}
		}

		if mirrored {
			corners[0], corners[2] = corners[2], corners[0]
			uvs[0], uvs[2] = uvs[2], uvs[0]
			normals[0], normals[2] = normals[2], normals[0]
		}

		p := len(md.Polygons)
		md.Polygons = append(md.Polygons, corners[:])
		md.PolygonUVs = append(md.PolygonUVs, uvs[:])
		md.PolygonNormals = append(md.PolygonNormals, normals[:])
		b.stats.Faces++

		for j := range corners {
			a, c := corners[j], corners[(j+1)%3]
			if flat {
				md.SetHard(a, c)
				continue
			}
			key := [2]int{min(a, c), max(a, c)}
			if g, seen := edgeGroup[key]; !seen {
				edgeGroup[key] = f.SmoothGroup
			} else if g != f.SmoothGroup {
				md.SetHard(a, c)
			}
		}

		if int(f.TextureID) < len(node.TextureIDs) {
			tex := int(node.TextureIDs[f.TextureID])
			if tex >= 0 && tex < len(rsm.Textures) {
				if _, ok := out.byTexture[tex]; !ok {
					out.textureOrder = append(out.textureOrder, tex)
				}
				out.byTexture[tex] = append(out.byTexture[tex], p)
			}
		}
		if f.TwoSide != 0 {
			out.twoSided = append(out.twoSided, p)
		}
	}

	if !flat {
		for i, n := range md.Normals {
			md.Normals[i] = normalize(n)
		}
	}
	return out
}

// faceNormal returns the unit normal of a counter-clockwise triangle, or
// false for a degenerate one.
func faceNormal(a, b, c [3]float32) ([3]float32, bool) {
	e1 := math.Vec3FromArray(b).Sub(math.Vec3FromArray(a))
	e2 := math.Vec3FromArray(c).Sub(math.Vec3FromArray(a))
	n := e1.Cross(e2)
	if n.Length() < 1e-6 {
		return [3]float32{}, false
	}
	return n.Normalize().Array(), true
}

func normalize(v [3]float32) [3]float32 {
	l := float32(gomath.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])))
	if l < 1e-6 {
		return [3]float32{0, 1, 0}
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}
