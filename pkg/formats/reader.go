package formats

import (
	"encoding/binary"
	"math"

	"github.com/Faultbox/objexport/pkg/encoding"
)

// reader decodes little-endian fields from a byte slice. The first short
// read sets err and every later read returns zero values, so parsers check
// the error once per record instead of once per field.
type reader struct {
	data []byte
	off  int
	err  error

	// truncated is reported when a read runs past the end.
	truncated error
}

func newReader(data []byte, truncated error) *reader {
	return &reader{data: data, truncated: truncated}
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.data) {
		r.err = r.truncated
		r.off = len(r.data)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) remaining() int {
	return len(r.data) - r.off
}

func (r *reader) skip(n int) {
	r.take(n)
}

func (r *reader) u8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) u16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *reader) u32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *reader) i32() int32 {
	return int32(r.u32())
}

func (r *reader) f32() float32 {
	return math.Float32frombits(r.u32())
}

func (r *reader) vec3() [3]float32 {
	return [3]float32{r.f32(), r.f32(), r.f32()}
}

func (r *reader) vec4() [4]float32 {
	return [4]float32{r.f32(), r.f32(), r.f32(), r.f32()}
}

// str reads a fixed-size, NUL-padded EUC-KR string and returns it as UTF-8.
func (r *reader) str(size int) string {
	b := r.take(size)
	if b == nil {
		return ""
	}
	return encoding.FixedStringToUTF8(b)
}

// count reads an int32 element count. Counts outside [0, limit] are
// returned as 0 so corrupt files cannot trigger huge allocations.
func (r *reader) count(limit int32) int {
	n := r.i32()
	if n < 0 || n > limit {
		return 0
	}
	return int(n)
}
