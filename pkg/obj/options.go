package obj

import (
	"strconv"
	"strings"
)

// DefaultPrecision is the number of decimals written for coordinates.
const DefaultPrecision = 6

// Options toggles the optional parts of the output. Each toggle only
// affects its own lines.
type Options struct {
	Groups      bool `yaml:"groups"`    // "g" lines for polygons
	PointGroups bool `yaml:"ptgroups"`  // "g"/"usemtl" lines inside the vertex table
	Materials   bool `yaml:"materials"` // "usemtl" lines
	Smoothing   bool `yaml:"smoothing"` // "s" lines
	Normals     bool `yaml:"normals"`   // "vn" table and normal indices
	Precision   int  `yaml:"precision"` // Decimals for coordinates, 0 means DefaultPrecision
}

// DefaultOptions enables everything.
func DefaultOptions() Options {
	return Options{
		Groups:      true,
		PointGroups: true,
		Materials:   true,
		Smoothing:   true,
		Normals:     true,
		Precision:   DefaultPrecision,
	}
}

// ParseOptions applies an option string such as
// "groups=1;ptgroups=0;materials=1;smoothing=1;normals=1;" on top of the
// defaults. Unknown keys are ignored; a value greater than zero turns the
// option on.
func ParseOptions(s string) Options {
	opts := DefaultOptions()
	opts.Apply(s)
	return opts
}

// Apply updates o from an option string.
func (o *Options) Apply(s string) {
	for _, item := range strings.Split(s, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(item), "=")
		if !ok {
			continue
		}
		n, _ := strconv.Atoi(strings.TrimSpace(value))
		on := n > 0

		switch strings.TrimSpace(key) {
		case "groups":
			o.Groups = on
		case "ptgroups":
			o.PointGroups = on
		case "materials":
			o.Materials = on
		case "smoothing":
			o.Smoothing = on
		case "normals":
			o.Normals = on
		case "precision":
			if n > 0 {
				o.Precision = n
			}
		}
	}
}

// String renders the options in option-string form.
func (o Options) String() string {
	var b strings.Builder
	write := func(key string, on bool) {
		b.WriteString(key)
		if on {
			b.WriteString("=1;")
		} else {
			b.WriteString("=0;")
		}
	}
	write("groups", o.Groups)
	write("ptgroups", o.PointGroups)
	write("materials", o.Materials)
	write("smoothing", o.Smoothing)
	write("normals", o.Normals)
	return b.String()
}

func (o Options) precision() int {
	if o.Precision <= 0 {
		return DefaultPrecision
	}
	return o.Precision
}
