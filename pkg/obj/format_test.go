package obj

import "testing"

func TestAppendCorner(t *testing.T) {
	tests := []struct {
		name   string
		corner faceCorner
		want   string
	}{
		{"vertex only", faceCorner{v: 4}, " 4"},
		{"vertex and uv", faceCorner{v: 4, vt: 7}, " 4/7"},
		{"vertex uv normal", faceCorner{v: 4, vt: 7, vn: 2}, " 4/7/2"},
		{"vertex and normal", faceCorner{v: 4, vn: 2}, " 4//2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(appendCorner(nil, tt.corner)); got != tt.want {
				t.Errorf("appendCorner = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppendFloats(t *testing.T) {
	tests := []struct {
		keyword string
		prec    int
		values  []float64
		want    string
	}{
		{"v", 6, []float64{1, -2.5, 0}, "v 1.000000 -2.500000 0.000000\n"},
		{"vt", 3, []float64{0.25, 1}, "vt 0.250 1.000\n"},
		{"vn", 2, []float64{0, 1, 0}, "vn 0.00 1.00 0.00\n"},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			if got := string(appendFloats(nil, tt.keyword, tt.prec, tt.values...)); got != tt.want {
				t.Errorf("appendFloats = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppendSmoothing(t *testing.T) {
	if got := string(appendSmoothing(nil, NoGroup)); got != "s off\n" {
		t.Errorf("NoGroup = %q, want %q", got, "s off\n")
	}
	if got := string(appendSmoothing(nil, 12)); got != "s 12\n" {
		t.Errorf("12 = %q, want %q", got, "s 12\n")
	}
}
