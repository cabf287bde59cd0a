// Package formats provides parsers for the Ragnarok Online model and world
// formats that carry exportable geometry.
package formats

import (
	"errors"
	"fmt"
	"os"
)

// RSM format errors.
var (
	ErrInvalidRSMMagic       = errors.New("invalid RSM magic: expected 'GRSM'")
	ErrUnsupportedRSMVersion = errors.New("unsupported RSM version")
	ErrTruncatedRSMData      = errors.New("truncated RSM data")
	ErrInvalidNodeCount      = errors.New("invalid RSM node count")
)

// Element count limits for corrupt files.
const (
	maxRSMNodes     = 10000
	maxRSMElements  = 100000
	maxRSMKeyframes = 10000
	maxRSMBoxes     = 1000
	rsmNameSize     = 40
)

// RSMVersion represents the RSM file version.
type RSMVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v RSMVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// AtLeast returns true if version is >= major.minor.
func (v RSMVersion) AtLeast(major, minor uint8) bool {
	return v.Major > major || v.Major == major && v.Minor >= minor
}

// RSMShadingType is the model-wide shading mode.
type RSMShadingType int32

const (
	RSMShadingNone   RSMShadingType = 0
	RSMShadingFlat   RSMShadingType = 1
	RSMShadingSmooth RSMShadingType = 2
)

// String returns a human-readable shading type name.
func (s RSMShadingType) String() string {
	switch s {
	case RSMShadingNone:
		return "None"
	case RSMShadingFlat:
		return "Flat"
	case RSMShadingSmooth:
		return "Smooth"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// RSMTexCoord is a texture coordinate with its vertex color.
type RSMTexCoord struct {
	Color [4]uint8 // RGBA (v1.2+, white before)
	U, V  float32
}

// RSMFace is a triangle.
type RSMFace struct {
	VertexIDs   [3]uint16
	TexCoordIDs [3]uint16
	TextureID   uint16 // Index into the node's TextureIDs
	Padding     uint16
	TwoSide     int32
	SmoothGroup int32 // v1.2+
}

// RSMPosKeyframe is a position keyframe (v < 1.5).
type RSMPosKeyframe struct {
	Frame    int32
	Position [3]float32
}

// RSMRotKeyframe is a rotation keyframe.
type RSMRotKeyframe struct {
	Frame      int32
	Quaternion [4]float32 // X, Y, Z, W
}

// RSMScaleKeyframe is a scale keyframe (v1.5+).
type RSMScaleKeyframe struct {
	Frame int32
	Scale [3]float32
}

// RSMNode is one mesh node of the model hierarchy.
type RSMNode struct {
	Name       string
	Parent     string  // Empty for the root
	TextureIDs []int32 // Indices into RSM.Textures

	Matrix   [9]float32 // 3x3 rotation, column-major
	Offset   [3]float32 // Pivot offset
	Position [3]float32
	RotAngle float32 // Radians
	RotAxis  [3]float32
	Scale    [3]float32

	Vertices  [][3]float32
	TexCoords []RSMTexCoord
	Faces     []RSMFace

	PosKeys   []RSMPosKeyframe
	RotKeys   []RSMRotKeyframe
	ScaleKeys []RSMScaleKeyframe
}

// RSMVolumeBox is a collision volume.
type RSMVolumeBox struct {
	Size     [3]float32
	Position [3]float32
	Rotation [3]float32
	Flag     int32 // v1.3+
}

// RSM is a parsed Resource Model file.
type RSM struct {
	Version     RSMVersion
	AnimLength  int32 // Milliseconds
	Shading     RSMShadingType
	Alpha       float32 // 0-1
	Textures    []string
	RootNode    string
	Nodes       []RSMNode
	VolumeBoxes []RSMVolumeBox
}

// ParseRSM parses RSM data from a byte slice.
func ParseRSM(data []byte) (*RSM, error) {
	if len(data) < 6 {
		return nil, ErrTruncatedRSMData
	}
	if string(data[:4]) != "GRSM" {
		return nil, ErrInvalidRSMMagic
	}

	r := newReader(data, ErrTruncatedRSMData)
	r.skip(4)

	rsm := &RSM{
		Version: RSMVersion{Major: r.u8(), Minor: r.u8()},
	}
	if rsm.Version.Major < 1 || rsm.Version.Major > 2 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRSMVersion, rsm.Version)
	}

	rsm.AnimLength = r.i32()
	rsm.Shading = RSMShadingType(r.i32())

	rsm.Alpha = 1.0
	if rsm.Version.AtLeast(1, 4) {
		rsm.Alpha = float32(r.u8()) / 255.0
	}

	r.skip(16) // Reserved

	textureCount := r.count(maxRSMElements)
	rsm.Textures = make([]string, textureCount)
	for i := range rsm.Textures {
		rsm.Textures[i] = r.str(rsmNameSize)
	}

	rsm.RootNode = r.str(rsmNameSize)

	nodeCount := r.i32()
	if r.err != nil {
		return nil, r.err
	}
	if nodeCount < 0 || nodeCount > maxRSMNodes {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNodeCount, nodeCount)
	}

	rsm.Nodes = make([]RSMNode, nodeCount)
	for i := range rsm.Nodes {
		readRSMNode(r, rsm.Version, &rsm.Nodes[i])
		if r.err != nil {
			return nil, fmt.Errorf("parsing node %d: %w", i, r.err)
		}
	}

	// Volume boxes are optional trailing data.
	if r.remaining() >= 4 {
		if n := r.count(maxRSMBoxes - 1); n > 0 {
			boxes := make([]RSMVolumeBox, n)
			for i := range boxes {
				boxes[i].Size = r.vec3()
				boxes[i].Position = r.vec3()
				boxes[i].Rotation = r.vec3()
				if rsm.Version.AtLeast(1, 3) {
					boxes[i].Flag = r.i32()
				}
			}
			if r.err == nil {
				rsm.VolumeBoxes = boxes
			}
		}
	}

	return rsm, nil
}

func readRSMNode(r *reader, version RSMVersion, node *RSMNode) {
	node.Name = r.str(rsmNameSize)
	node.Parent = r.str(rsmNameSize)

	if n := r.count(maxRSMElements); n > 0 {
		node.TextureIDs = make([]int32, n)
		for i := range node.TextureIDs {
			node.TextureIDs[i] = r.i32()
		}
	}

	for i := range node.Matrix {
		node.Matrix[i] = r.f32()
	}
	node.Offset = r.vec3()
	node.Position = r.vec3()
	node.RotAngle = r.f32()
	node.RotAxis = r.vec3()
	node.Scale = r.vec3()

	if n := r.count(maxRSMElements); n > 0 {
		node.Vertices = make([][3]float32, n)
		for i := range node.Vertices {
			node.Vertices[i] = r.vec3()
		}
	}

	if n := r.count(maxRSMElements); n > 0 {
		node.TexCoords = make([]RSMTexCoord, n)
		for i := range node.TexCoords {
			tc := &node.TexCoords[i]
			if version.AtLeast(1, 2) {
				tc.Color = [4]uint8{r.u8(), r.u8(), r.u8(), r.u8()}
			} else {
				tc.Color = [4]uint8{255, 255, 255, 255}
			}
			tc.U = r.f32()
			tc.V = r.f32()
		}
	}

	if n := r.count(maxRSMElements); n > 0 {
		node.Faces = make([]RSMFace, n)
		for i := range node.Faces {
			f := &node.Faces[i]
			f.VertexIDs = [3]uint16{r.u16(), r.u16(), r.u16()}
			f.TexCoordIDs = [3]uint16{r.u16(), r.u16(), r.u16()}
			f.TextureID = r.u16()
			f.Padding = r.u16()
			f.TwoSide = r.i32()
			if version.AtLeast(1, 2) {
				f.SmoothGroup = r.i32()
			}
		}
	}

	if !version.AtLeast(1, 5) {
		if n := r.count(maxRSMKeyframes - 1); n > 0 {
			node.PosKeys = make([]RSMPosKeyframe, n)
			for i := range node.PosKeys {
				node.PosKeys[i] = RSMPosKeyframe{Frame: r.i32(), Position: r.vec3()}
			}
		}
	}

	if n := r.count(maxRSMKeyframes - 1); n > 0 {
		node.RotKeys = make([]RSMRotKeyframe, n)
		for i := range node.RotKeys {
			node.RotKeys[i] = RSMRotKeyframe{Frame: r.i32(), Quaternion: r.vec4()}
		}
	}

	if version.AtLeast(1, 5) {
		if n := r.count(maxRSMKeyframes - 1); n > 0 {
			node.ScaleKeys = make([]RSMScaleKeyframe, n)
			for i := range node.ScaleKeys {
				node.ScaleKeys[i] = RSMScaleKeyframe{Frame: r.i32(), Scale: r.vec3()}
			}
		}
	}
}

// ParseRSMFile parses an RSM file from disk.
func ParseRSMFile(path string) (*RSM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading RSM file: %w", err)
	}
	return ParseRSM(data)
}

// GetTotalVertexCount returns the number of vertices across all nodes.
func (rsm *RSM) GetTotalVertexCount() int {
	total := 0
	for _, node := range rsm.Nodes {
		total += len(node.Vertices)
	}
	return total
}

// GetTotalFaceCount returns the number of faces across all nodes.
func (rsm *RSM) GetTotalFaceCount() int {
	total := 0
	for _, node := range rsm.Nodes {
		total += len(node.Faces)
	}
	return total
}

// GetNodeByName returns a node by its name, or nil if not found.
func (rsm *RSM) GetNodeByName(name string) *RSMNode {
	for i := range rsm.Nodes {
		if rsm.Nodes[i].Name == name {
			return &rsm.Nodes[i]
		}
	}
	return nil
}

// GetRootNode returns the node named by RootNode. Files whose RootNode does
// not match any node fall back to the first node without a parent.
func (rsm *RSM) GetRootNode() *RSMNode {
	if n := rsm.GetNodeByName(rsm.RootNode); n != nil {
		return n
	}
	for i := range rsm.Nodes {
		if rsm.Nodes[i].Parent == "" {
			return &rsm.Nodes[i]
		}
	}
	return nil
}

// GetChildNodes returns all nodes that have the given parent name. A node
// naming itself as parent is never its own child.
func (rsm *RSM) GetChildNodes(parentName string) []*RSMNode {
	var children []*RSMNode
	for i := range rsm.Nodes {
		n := &rsm.Nodes[i]
		if n.Parent == parentName && n.Name != parentName {
			children = append(children, n)
		}
	}
	return children
}

// HasAnimation returns true if any node has keyframes.
func (rsm *RSM) HasAnimation() bool {
	for _, node := range rsm.Nodes {
		if len(node.PosKeys) > 0 || len(node.RotKeys) > 0 || len(node.ScaleKeys) > 0 {
			return true
		}
	}
	return false
}
