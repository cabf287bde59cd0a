package rsmscene

import (
	gomath "math"

	"github.com/Faultbox/objexport/pkg/formats"
	"github.com/Faultbox/objexport/pkg/math"
)

// flipY converts RO's Y-down model space to Y-up.
var flipY = math.Scale(1, -1, 1)

// nodeMatrix is the transform a node passes on to its children:
// Position * Rotation * Scale. Rotation comes from keyframes when the node
// has any, otherwise from the axis-angle pair.
func nodeMatrix(node *formats.RSMNode, timeMs float32) math.Mat4 {
	m := math.Translate(node.Position[0], node.Position[1], node.Position[2])

	if len(node.RotKeys) > 0 {
		m = m.Mul(rotationAt(node.RotKeys, timeMs).ToMat4())
	} else if node.RotAngle != 0 {
		axis := node.RotAxis
		l := float32(gomath.Sqrt(float64(axis[0]*axis[0] + axis[1]*axis[1] + axis[2]*axis[2])))
		if l > 1e-6 {
			m = m.Mul(math.RotateAxis([3]float32{axis[0] / l, axis[1] / l, axis[2] / l}, node.RotAngle))
		}
	}

	m = m.Mul(math.Scale(node.Scale[0], node.Scale[1], node.Scale[2]))
	if len(node.ScaleKeys) > 0 {
		s := scaleAt(node.ScaleKeys, timeMs)
		m = m.Mul(math.Scale(s[0], s[1], s[2]))
	}
	return m
}

// shapeMatrix is applied to a node's own vertices only: Offset * Mat3.
func shapeMatrix(node *formats.RSMNode) math.Mat4 {
	return math.Translate(node.Offset[0], node.Offset[1], node.Offset[2]).
		Mul(math.FromMat3x3(node.Matrix))
}

// placementMatrix positions a world model: RSW rotations are degrees applied
// in Y, X, Z order and the Y axis points down.
func placementMatrix(m *formats.RSWModel) math.Mat4 {
	const deg = gomath.Pi / 180
	return math.Translate(m.Position[0], -m.Position[1], m.Position[2]).
		Mul(math.RotateY(m.Rotation[1] * deg)).
		Mul(math.RotateX(m.Rotation[0] * deg)).
		Mul(math.RotateZ(m.Rotation[2] * deg)).
		Mul(math.Scale(m.Scale[0], m.Scale[1], m.Scale[2]))
}
