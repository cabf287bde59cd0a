package obj

// bitMatrix is a dense row-major boolean matrix packed into 64-bit words.
type bitMatrix struct {
	rows, cols int
	words      []uint64
}

func newBitMatrix(rows, cols int) bitMatrix {
	return bitMatrix{
		rows:  rows,
		cols:  cols,
		words: make([]uint64, (rows*cols+63)/64),
	}
}

func (m *bitMatrix) inRange(r, c int) bool {
	return r >= 0 && r < m.rows && c >= 0 && c < m.cols
}

// set marks (r, c). Out-of-range cells report false and are left untouched.
func (m *bitMatrix) set(r, c int) bool {
	if !m.inRange(r, c) {
		return false
	}
	bit := r*m.cols + c
	m.words[bit/64] |= 1 << (uint(bit) % 64)
	return true
}

func (m *bitMatrix) get(r, c int) bool {
	if !m.inRange(r, c) {
		return false
	}
	bit := r*m.cols + c
	return m.words[bit/64]&(1<<(uint(bit)%64)) != 0
}

// setColumn marks column c in every row.
func (m *bitMatrix) setColumn(c int) {
	for r := 0; r < m.rows; r++ {
		m.set(r, c)
	}
}
