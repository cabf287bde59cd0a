package formats

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/Faultbox/objexport/pkg/encoding"
)

// writer is the encoding counterpart of reader.
type writer struct {
	buf bytes.Buffer
	tmp [4]byte
}

func (w *writer) u8(v uint8) {
	w.buf.WriteByte(v)
}

func (w *writer) u16(v uint16) {
	binary.LittleEndian.PutUint16(w.tmp[:2], v)
	w.buf.Write(w.tmp[:2])
}

func (w *writer) u32(v uint32) {
	binary.LittleEndian.PutUint32(w.tmp[:], v)
	w.buf.Write(w.tmp[:])
}

func (w *writer) i32(v int32) {
	w.u32(uint32(v))
}

func (w *writer) f32(v float32) {
	w.u32(math.Float32bits(v))
}

func (w *writer) floats(vs ...float32) {
	for _, v := range vs {
		w.f32(v)
	}
}

func (w *writer) str(s string, size int) {
	w.buf.Write(encoding.UTF8ToFixedString(s, size))
}

// EncodeRSM serializes a model in the layout ParseRSM reads.
func EncodeRSM(rsm *RSM) []byte {
	var w writer
	v := rsm.Version

	w.buf.WriteString("GRSM")
	w.u8(v.Major)
	w.u8(v.Minor)
	w.i32(rsm.AnimLength)
	w.i32(int32(rsm.Shading))
	if v.AtLeast(1, 4) {
		w.u8(uint8(rsm.Alpha*255 + 0.5))
	}
	w.buf.Write(make([]byte, 16))

	w.i32(int32(len(rsm.Textures)))
	for _, t := range rsm.Textures {
		w.str(t, rsmNameSize)
	}
	w.str(rsm.RootNode, rsmNameSize)

	w.i32(int32(len(rsm.Nodes)))
	for i := range rsm.Nodes {
		n := &rsm.Nodes[i]
		w.str(n.Name, rsmNameSize)
		w.str(n.Parent, rsmNameSize)

		w.i32(int32(len(n.TextureIDs)))
		for _, id := range n.TextureIDs {
			w.i32(id)
		}

		w.floats(n.Matrix[:]...)
		w.floats(n.Offset[:]...)
		w.floats(n.Position[:]...)
		w.f32(n.RotAngle)
		w.floats(n.RotAxis[:]...)
		w.floats(n.Scale[:]...)

		w.i32(int32(len(n.Vertices)))
		for _, p := range n.Vertices {
			w.floats(p[:]...)
		}

		w.i32(int32(len(n.TexCoords)))
		for _, tc := range n.TexCoords {
			if v.AtLeast(1, 2) {
				w.buf.Write(tc.Color[:])
			}
			w.floats(tc.U, tc.V)
		}

		w.i32(int32(len(n.Faces)))
		for _, f := range n.Faces {
			for _, id := range f.VertexIDs {
				w.u16(id)
			}
			for _, id := range f.TexCoordIDs {
				w.u16(id)
			}
			w.u16(f.TextureID)
			w.u16(f.Padding)
			w.i32(f.TwoSide)
			if v.AtLeast(1, 2) {
				w.i32(f.SmoothGroup)
			}
		}

		if !v.AtLeast(1, 5) {
			w.i32(int32(len(n.PosKeys)))
			for _, k := range n.PosKeys {
				w.i32(k.Frame)
				w.floats(k.Position[:]...)
			}
		}

		w.i32(int32(len(n.RotKeys)))
		for _, k := range n.RotKeys {
			w.i32(k.Frame)
			w.floats(k.Quaternion[:]...)
		}

		if v.AtLeast(1, 5) {
			w.i32(int32(len(n.ScaleKeys)))
			for _, k := range n.ScaleKeys {
				w.i32(k.Frame)
				w.floats(k.Scale[:]...)
			}
		}
	}

	w.i32(int32(len(rsm.VolumeBoxes)))
	for _, b := range rsm.VolumeBoxes {
		w.floats(b.Size[:]...)
		w.floats(b.Position[:]...)
		w.floats(b.Rotation[:]...)
		if v.AtLeast(1, 3) {
			w.i32(b.Flag)
		}
	}

	return w.buf.Bytes()
}

// EncodeRSW serializes a world in the layout ParseRSW reads.
func EncodeRSW(rsw *RSW) []byte {
	var w writer
	v := rsw.Version

	w.buf.WriteString("GRSW")
	w.u8(v.Major)
	w.u8(v.Minor)
	if v.AtLeast(2, 5) {
		w.u32(v.BuildNumber)
		w.u8(0)
	} else if v.AtLeast(2, 2) {
		w.u8(uint8(v.BuildNumber))
	}

	w.str(rsw.IniFile, rswFileNameSize)
	w.str(rsw.GndFile, rswFileNameSize)
	if v.AtLeast(1, 4) {
		w.str(rsw.GatFile, rswFileNameSize)
		w.str(rsw.SrcFile, rswFileNameSize)
	}

	if v.AtLeast(1, 3) && !v.AtLeast(2, 6) {
		water := rsw.Water
		w.f32(water.Level)
		w.i32(water.Type)
		w.floats(water.WaveHeight, water.WaveSpeed, water.WavePitch)
		w.i32(water.AnimSpeed)
	}
	if v.AtLeast(1, 5) {
		w.i32(rsw.Light.Longitude)
		w.i32(rsw.Light.Latitude)
		w.floats(rsw.Light.Diffuse[:]...)
		w.floats(rsw.Light.Ambient[:]...)
	}
	if v.AtLeast(1, 7) {
		w.f32(rsw.Light.Opacity)
	}
	if v.AtLeast(1, 6) {
		g := rsw.Ground
		w.i32(g.Top)
		w.i32(g.Bottom)
		w.i32(g.Left)
		w.i32(g.Right)
	}

	w.u32(uint32(len(rsw.Objects)))
	for _, o := range rsw.Objects {
		w.i32(int32(o.Type))
		switch {
		case o.Model != nil:
			m := o.Model
			w.str(m.Name, rswFileNameSize)
			w.i32(m.AnimType)
			w.f32(m.AnimSpeed)
			w.i32(m.BlockType)
			if v.AtLeast(2, 6) && v.BuildNumber >= 162 {
				w.u8(0)
			}
			w.str(m.ModelName, rswNameSize)
			w.str(m.NodeName, rswNameSize)
			w.floats(m.Position[:]...)
			w.floats(m.Rotation[:]...)
			w.floats(m.Scale[:]...)
		case o.Light != nil:
			l := o.Light
			w.str(l.Name, rswNameSize)
			w.floats(l.Position[:]...)
			w.floats(l.Color[:]...)
			w.f32(l.Range)
		case o.Sound != nil:
			s := o.Sound
			w.str(s.Name, rswNameSize)
			w.str(s.File, rswNameSize)
			w.floats(s.Position[:]...)
			w.f32(s.Volume)
			w.i32(s.Width)
			w.i32(s.Height)
			w.f32(s.Range)
			if v.AtLeast(2, 0) {
				w.f32(s.Cycle)
			}
		case o.Effect != nil:
			e := o.Effect
			w.str(e.Name, rswNameSize)
			w.floats(e.Position[:]...)
			w.i32(e.EffectID)
			w.f32(e.Delay)
			w.floats(e.Param[:]...)
		}
	}

	if v.AtLeast(2, 1) {
		for _, q := range rsw.Quadtree {
			w.floats(q[:]...)
		}
	}

	return w.buf.Bytes()
}

// EncodeGND serializes a ground in the layout ParseGND reads. Lightmap
// pixels are written as zeros.
func EncodeGND(g *GND) []byte {
	const nameLen = 80
	var w writer

	w.buf.WriteString("GRGN")
	w.u8(g.Version.Major)
	w.u8(g.Version.Minor)
	w.u32(g.Width)
	w.u32(g.Height)
	w.f32(g.Zoom)

	w.u32(uint32(len(g.Textures)))
	w.u32(nameLen)
	for _, t := range g.Textures {
		w.str(t, nameLen)
	}

	w.u32(g.LightmapCount)
	w.u32(g.LightmapWidth)
	w.u32(g.LightmapHeight)
	w.u32(1)
	w.buf.Write(make([]byte, int(g.LightmapCount*g.LightmapWidth*g.LightmapHeight)*4))

	w.u32(uint32(len(g.Surfaces)))
	for _, s := range g.Surfaces {
		w.floats(s.U[:]...)
		w.floats(s.V[:]...)
		w.u16(uint16(s.TextureID))
		w.u16(uint16(s.LightmapID))
		w.buf.Write(s.Color[:])
	}

	for _, t := range g.Tiles {
		w.floats(t.Altitude[:]...)
		w.i32(t.TopSurface)
		w.i32(t.FrontSurface)
		w.i32(t.RightSurface)
	}

	return w.buf.Bytes()
}
