package obj

import "strconv"

func appendFloats(buf []byte, keyword string, prec int, values ...float64) []byte {
	buf = append(buf, keyword...)
	for _, v := range values {
		buf = append(buf, ' ')
		buf = strconv.AppendFloat(buf, v, 'f', prec, 64)
	}
	return append(buf, '\n')
}

// faceCorner holds the 1-based global indices of one face corner. Zero means
// the index is absent.
type faceCorner struct {
	v, vt, vn int
}

// appendCorner writes "v", "v/vt", "v/vt/vn" or "v//vn".
func appendCorner(buf []byte, c faceCorner) []byte {
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, int64(c.v), 10)
	if c.vt > 0 {
		buf = append(buf, '/')
		buf = strconv.AppendInt(buf, int64(c.vt), 10)
	}
	if c.vn > 0 {
		if c.vt == 0 {
			buf = append(buf, '/')
		}
		buf = append(buf, '/')
		buf = strconv.AppendInt(buf, int64(c.vn), 10)
	}
	return buf
}

func appendSmoothing(buf []byte, group int) []byte {
	if group == NoGroup {
		return append(buf, "s off\n"...)
	}
	buf = append(buf, "s "...)
	buf = strconv.AppendInt(buf, int64(group), 10)
	return append(buf, '\n')
}
