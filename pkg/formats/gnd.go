package formats

import (
	"errors"
	"fmt"
	"os"
)

// GND format errors.
var (
	ErrInvalidGNDMagic       = errors.New("invalid GND magic: expected 'GRGN'")
	ErrUnsupportedGNDVersion = errors.New("unsupported GND version")
	ErrTruncatedGNDData      = errors.New("truncated GND data")
	ErrInvalidGNDDimensions  = errors.New("invalid GND dimensions")
)

const (
	gndMaxSide     = 1024
	gndMaxTextures = 4096
	gndMaxNameLen  = 1024
)

// GNDVersion represents the GND file version.
type GNDVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v GNDVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// GNDSurface is a textured tile face.
type GNDSurface struct {
	U          [4]float32 // Corners: top-left, top-right, bottom-left, bottom-right
	V          [4]float32
	TextureID  int16 // -1 = no texture
	LightmapID int16
	Color      [4]uint8 // BGRA
}

// GNDTile is one ground cell.
type GNDTile struct {
	Altitude     [4]float32 // Corner heights (bottom-left, bottom-right, top-left, top-right), negative is up
	TopSurface   int32      // -1 = none
	FrontSurface int32      // Wall towards the next row, -1 = none
	RightSurface int32      // Wall towards the next column, -1 = none
}

// GND is a parsed ground file. Lightmap pixels are skipped.
type GND struct {
	Version        GNDVersion
	Width          uint32
	Height         uint32
	Zoom           float32 // Tile edge length
	Textures       []string
	LightmapCount  uint32
	LightmapWidth  uint32
	LightmapHeight uint32
	Surfaces       []GNDSurface
	Tiles          []GNDTile
}

// GetTile returns the tile at the given coordinates, or nil out of bounds.
func (g *GND) GetTile(x, y int) *GNDTile {
	if x < 0 || y < 0 || x >= int(g.Width) || y >= int(g.Height) {
		return nil
	}
	return &g.Tiles[y*int(g.Width)+x]
}

// Surface returns the surface with the given id, or nil when the id is
// negative or out of range.
func (g *GND) Surface(id int32) *GNDSurface {
	if id < 0 || int(id) >= len(g.Surfaces) {
		return nil
	}
	return &g.Surfaces[id]
}

// GetAltitudeRange returns the minimum and maximum altitude.
func (g *GND) GetAltitudeRange() (lo, hi float32) {
	if len(g.Tiles) == 0 {
		return 0, 0
	}
	lo, hi = g.Tiles[0].Altitude[0], g.Tiles[0].Altitude[0]
	for _, tile := range g.Tiles {
		for _, h := range tile.Altitude {
			lo = min(lo, h)
			hi = max(hi, h)
		}
	}
	return lo, hi
}

// CountSurfacesByTexture returns the number of surfaces using each texture.
func (g *GND) CountSurfacesByTexture() map[int]int {
	counts := make(map[int]int)
	for _, s := range g.Surfaces {
		if s.TextureID >= 0 {
			counts[int(s.TextureID)]++
		}
	}
	return counts
}

// ParseGND parses a GND file from raw bytes.
func ParseGND(data []byte) (*GND, error) {
	if len(data) < 6 {
		return nil, ErrTruncatedGNDData
	}
	if string(data[:4]) != "GRGN" {
		return nil, ErrInvalidGNDMagic
	}

	version := GNDVersion{Major: data[4], Minor: data[5]}
	if version.Major != 1 || version.Minor < 5 || version.Minor > 9 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGNDVersion, version)
	}

	r := newReader(data, ErrTruncatedGNDData)
	r.skip(6)

	g := &GND{
		Version: version,
		Width:   r.u32(),
		Height:  r.u32(),
		Zoom:    r.f32(),
	}
	if r.err != nil {
		return nil, fmt.Errorf("%w: reading dimensions", r.err)
	}
	if g.Width == 0 || g.Height == 0 || g.Width > gndMaxSide || g.Height > gndMaxSide {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidGNDDimensions, g.Width, g.Height)
	}

	textureCount := r.count(gndMaxTextures)
	nameLen := r.count(gndMaxNameLen)
	g.Textures = make([]string, textureCount)
	for i := range g.Textures {
		g.Textures[i] = r.str(nameLen)
	}
	if r.err != nil {
		return nil, fmt.Errorf("%w: reading textures", r.err)
	}

	g.LightmapCount = r.u32()
	g.LightmapWidth = r.u32()
	g.LightmapHeight = r.u32()
	cells := r.u32()
	if r.err != nil {
		return nil, fmt.Errorf("%w: reading lightmap header", r.err)
	}
	// Brightness plus RGB per pixel.
	lightmapSize := uint64(g.LightmapCount) * uint64(g.LightmapWidth) * uint64(g.LightmapHeight) * uint64(cells) * 4
	if lightmapSize > uint64(r.remaining()) {
		return nil, fmt.Errorf("%w: reading lightmaps", ErrTruncatedGNDData)
	}
	r.skip(int(lightmapSize))

	// Each surface is 40 bytes.
	surfaceCount := r.count(int32(min(r.remaining()/40, 1<<30)))
	g.Surfaces = make([]GNDSurface, surfaceCount)
	for i := range g.Surfaces {
		s := &g.Surfaces[i]
		s.U = r.vec4()
		s.V = r.vec4()
		s.TextureID = int16(r.u16())
		s.LightmapID = int16(r.u16())
		copy(s.Color[:], r.take(4))
	}
	if r.err != nil {
		return nil, fmt.Errorf("%w: reading surfaces", r.err)
	}

	g.Tiles = make([]GNDTile, int(g.Width)*int(g.Height))
	for i := range g.Tiles {
		t := &g.Tiles[i]
		t.Altitude = r.vec4()
		t.TopSurface = r.i32()
		t.FrontSurface = r.i32()
		t.RightSurface = r.i32()
		if r.err != nil {
			return nil, fmt.Errorf("%w: reading tile %d", r.err, i)
		}
	}

	return g, nil
}

// ParseGNDFile parses a GND file from disk.
func ParseGNDFile(path string) (*GND, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading GND file: %w", err)
	}
	return ParseGND(data)
}
