package obj

// EmissionState is the last group and material lists that were current.
type EmissionState struct {
	Groups    []string
	Materials []string

	initialized bool
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// DirectiveWriter writes "g" and "usemtl" lines only when the current lists
// differ from the previous ones. Groups and materials are tracked
// independently.
type DirectiveWriter struct {
	state     EmissionState
	groups    bool
	materials bool
}

// NewDirectiveWriter returns a writer that emits the enabled directive kinds.
func NewDirectiveWriter(groups, materials bool) *DirectiveWriter {
	return &DirectiveWriter{groups: groups, materials: materials}
}

// State returns the last recorded lists.
func (d *DirectiveWriter) State() EmissionState {
	return d.state
}

// Update records the lists for the next component and appends any directive
// lines that changed to buf.
func (d *DirectiveWriter) Update(buf []byte, groups, materials []string) []byte {
	first := !d.state.initialized
	d.state.initialized = true

	if first || !sameNames(d.state.Groups, groups) {
		d.state.Groups = append(d.state.Groups[:0], groups...)
		if d.groups && len(groups) > 0 {
			buf = appendDirective(buf, "g", groups)
		}
	}

	if first || !sameNames(d.state.Materials, materials) {
		d.state.Materials = append(d.state.Materials[:0], materials...)
		if d.materials && len(materials) > 0 {
			buf = appendDirective(buf, "usemtl", materials)
		}
	}

	return buf
}

func appendDirective(buf []byte, keyword string, names []string) []byte {
	buf = append(buf, keyword...)
	for _, name := range names {
		buf = append(buf, ' ')
		buf = append(buf, name...)
	}
	return append(buf, '\n')
}
