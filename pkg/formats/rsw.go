package formats

import (
	"errors"
	"fmt"
	"os"
)

// RSW format errors.
var (
	ErrInvalidRSWMagic       = errors.New("invalid RSW magic: expected 'GRSW'")
	ErrUnsupportedRSWVersion = errors.New("unsupported RSW version")
	ErrTruncatedRSWData      = errors.New("truncated RSW data")
	ErrUnknownObjectType     = errors.New("unknown RSW object type")
)

const (
	maxRSWObjects   = 1 << 20
	rswFileNameSize = 40
	rswNameSize     = 80
)

// RSWVersion represents the RSW file version.
type RSWVersion struct {
	Major       uint8
	Minor       uint8
	BuildNumber uint32 // v2.2+ (uint8 for v2.2-2.4, uint32 for v2.5+)
}

// String returns the version as "Major.Minor" or "Major.Minor.Build".
func (v RSWVersion) String() string {
	if v.BuildNumber > 0 {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.BuildNumber)
	}
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// AtLeast returns true if version is >= major.minor.
func (v RSWVersion) AtLeast(major, minor uint8) bool {
	return v.Major > major || v.Major == major && v.Minor >= minor
}

// RSWObjectType is the kind of a placed world object.
type RSWObjectType int32

const (
	RSWObjectModel  RSWObjectType = 1
	RSWObjectLight  RSWObjectType = 2
	RSWObjectSound  RSWObjectType = 3
	RSWObjectEffect RSWObjectType = 4
)

// String returns a human-readable object type name.
func (t RSWObjectType) String() string {
	switch t {
	case RSWObjectModel:
		return "Model"
	case RSWObjectLight:
		return "Light"
	case RSWObjectSound:
		return "Sound"
	case RSWObjectEffect:
		return "Effect"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// RSWWater contains water settings (v1.3 to v2.5).
type RSWWater struct {
	Level      float32
	Type       int32
	WaveHeight float32
	WaveSpeed  float32
	WavePitch  float32
	AnimSpeed  int32
}

// RSWLight contains global lighting settings.
type RSWLight struct {
	Longitude int32
	Latitude  int32
	Diffuse   [3]float32
	Ambient   [3]float32
	Opacity   float32 // v1.7+
}

// RSWGround contains ground view bounds.
type RSWGround struct {
	Top    int32
	Bottom int32
	Left   int32
	Right  int32
}

// RSWModel is an RSM model placed in the world.
type RSWModel struct {
	Name      string
	AnimType  int32
	AnimSpeed float32
	BlockType int32
	ModelName string // RSM file name relative to data/model/
	NodeName  string
	Position  [3]float32
	Rotation  [3]float32 // Degrees
	Scale     [3]float32
}

// RSWLightSource is a point light.
type RSWLightSource struct {
	Name     string
	Position [3]float32
	Color    [3]float32
	Range    float32
}

// RSWSoundSource is a sound emitter.
type RSWSoundSource struct {
	Name     string
	File     string
	Position [3]float32
	Volume   float32
	Width    int32
	Height   int32
	Range    float32
	Cycle    float32 // v2.0+
}

// RSWEffectSource is a visual effect.
type RSWEffectSource struct {
	Name     string
	Position [3]float32
	EffectID int32
	Delay    float32
	Param    [4]float32
}

// RSWObject is any placed world object; exactly one pointer is set.
type RSWObject struct {
	Type   RSWObjectType
	Model  *RSWModel
	Light  *RSWLightSource
	Sound  *RSWSoundSource
	Effect *RSWEffectSource
}

// RSW is a parsed Resource World file.
type RSW struct {
	Version  RSWVersion
	IniFile  string
	GndFile  string
	GatFile  string // v1.4+
	SrcFile  string // v1.4+
	Water    RSWWater
	Light    RSWLight
	Ground   RSWGround
	Objects  []RSWObject
	Quadtree [][4]float32 // v2.1+
}

// CountByType returns the count of objects for each type.
func (w *RSW) CountByType() map[RSWObjectType]int {
	counts := make(map[RSWObjectType]int)
	for _, o := range w.Objects {
		counts[o.Type]++
	}
	return counts
}

// GetModels returns all model objects.
func (w *RSW) GetModels() []*RSWModel {
	var models []*RSWModel
	for _, o := range w.Objects {
		if o.Model != nil {
			models = append(models, o.Model)
		}
	}
	return models
}

// GetLights returns all light source objects.
func (w *RSW) GetLights() []*RSWLightSource {
	var lights []*RSWLightSource
	for _, o := range w.Objects {
		if o.Light != nil {
			lights = append(lights, o.Light)
		}
	}
	return lights
}

// ParseRSW parses an RSW file from raw bytes.
func ParseRSW(data []byte) (*RSW, error) {
	if len(data) < 6 {
		return nil, ErrTruncatedRSWData
	}
	if string(data[:4]) != "GRSW" {
		return nil, ErrInvalidRSWMagic
	}

	version := RSWVersion{Major: data[4], Minor: data[5]}
	if version.Major < 1 || version.Major > 2 || (version.Major == 2 && version.Minor > 6) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRSWVersion, version)
	}

	r := newReader(data, ErrTruncatedRSWData)
	r.skip(6)

	if version.AtLeast(2, 5) {
		version.BuildNumber = r.u32()
		r.skip(1) // Render flag
	} else if version.AtLeast(2, 2) {
		version.BuildNumber = uint32(r.u8())
	}

	w := &RSW{Version: version}

	w.IniFile = r.str(rswFileNameSize)
	w.GndFile = r.str(rswFileNameSize)
	if version.AtLeast(1, 4) {
		w.GatFile = r.str(rswFileNameSize)
		w.SrcFile = r.str(rswFileNameSize)
	}
	if r.err != nil {
		return nil, fmt.Errorf("%w: reading file references", r.err)
	}

	// Water moved to GND in v2.6.
	if version.AtLeast(1, 3) && !version.AtLeast(2, 6) {
		w.Water = RSWWater{
			Level:      r.f32(),
			Type:       r.i32(),
			WaveHeight: r.f32(),
			WaveSpeed:  r.f32(),
			WavePitch:  r.f32(),
			AnimSpeed:  r.i32(),
		}
		if r.err != nil {
			return nil, fmt.Errorf("%w: reading water", r.err)
		}
	}

	if version.AtLeast(1, 5) {
		w.Light.Longitude = r.i32()
		w.Light.Latitude = r.i32()
		w.Light.Diffuse = r.vec3()
		w.Light.Ambient = r.vec3()
	}
	if version.AtLeast(1, 7) {
		w.Light.Opacity = r.f32()
	}
	if r.err != nil {
		return nil, fmt.Errorf("%w: reading light", r.err)
	}

	if version.AtLeast(1, 6) {
		w.Ground = RSWGround{Top: r.i32(), Bottom: r.i32(), Left: r.i32(), Right: r.i32()}
		if r.err != nil {
			return nil, fmt.Errorf("%w: reading ground", r.err)
		}
	}

	objectCount := r.u32()
	if r.err != nil {
		return nil, fmt.Errorf("%w: reading object count", r.err)
	}
	if objectCount > maxRSWObjects {
		return nil, fmt.Errorf("%w: %d objects", ErrTruncatedRSWData, objectCount)
	}

	w.Objects = make([]RSWObject, 0, objectCount)
	for i := uint32(0); i < objectCount; i++ {
		o, err := readRSWObject(r, version)
		if err != nil {
			return nil, fmt.Errorf("parsing object %d: %w", i, err)
		}
		w.Objects = append(w.Objects, o)
	}

	if version.AtLeast(2, 1) {
		w.Quadtree = make([][4]float32, 0, r.remaining()/16)
		for r.remaining() >= 16 {
			w.Quadtree = append(w.Quadtree, r.vec4())
		}
	}

	return w, nil
}

func readRSWObject(r *reader, version RSWVersion) (RSWObject, error) {
	o := RSWObject{Type: RSWObjectType(r.i32())}
	if r.err != nil {
		return RSWObject{}, fmt.Errorf("%w: reading object type", r.err)
	}

	switch o.Type {
	case RSWObjectModel:
		m := &RSWModel{
			Name:      r.str(rswFileNameSize),
			AnimType:  r.i32(),
			AnimSpeed: r.f32(),
			BlockType: r.i32(),
		}
		// v2.6.162+ adds a collision flag byte.
		if version.AtLeast(2, 6) && version.BuildNumber >= 162 {
			r.skip(1)
		}
		m.ModelName = r.str(rswNameSize)
		m.NodeName = r.str(rswNameSize)
		m.Position = r.vec3()
		m.Rotation = r.vec3()
		m.Scale = r.vec3()
		o.Model = m

	case RSWObjectLight:
		o.Light = &RSWLightSource{
			Name:     r.str(rswNameSize),
			Position: r.vec3(),
			Color:    r.vec3(),
			Range:    r.f32(),
		}

	case RSWObjectSound:
		s := &RSWSoundSource{
			Name:     r.str(rswNameSize),
			File:     r.str(rswNameSize),
			Position: r.vec3(),
			Volume:   r.f32(),
			Width:    r.i32(),
			Height:   r.i32(),
			Range:    r.f32(),
		}
		if version.AtLeast(2, 0) {
			s.Cycle = r.f32()
		}
		o.Sound = s

	case RSWObjectEffect:
		o.Effect = &RSWEffectSource{
			Name:     r.str(rswNameSize),
			Position: r.vec3(),
			EffectID: r.i32(),
			Delay:    r.f32(),
			Param:    r.vec4(),
		}

	default:
		return RSWObject{}, fmt.Errorf("%w: %d", ErrUnknownObjectType, o.Type)
	}

	if r.err != nil {
		return RSWObject{}, fmt.Errorf("%w: reading %s", r.err, o.Type)
	}
	return o, nil
}

// ParseRSWFile parses an RSW file from disk.
func ParseRSWFile(path string) (*RSW, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading RSW file: %w", err)
	}
	return ParseRSW(data)
}
