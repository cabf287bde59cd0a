package obj

// NoGroup is the smoothing label of a polygon with no smooth neighbours.
const NoGroup = -1

// unvisited marks a polygon the assigner has not reached yet.
const unvisited = -2

// SmoothingConflict records a polygon reached from a smoothing group other
// than the one it was already labelled with. The existing label is kept.
type SmoothingConflict struct {
	Polygon  int
	Label    int // Label the polygon keeps
	Proposed int // Group of the polygon that reached it
}

// Smoothing is the polygon to smoothing-group labelling of one mesh.
type Smoothing struct {
	Groups    []int // Per polygon: group id >= 1, or NoGroup
	Count     int   // Number of group ids allocated
	Conflicts []SmoothingConflict
}

// Group returns the label of polygon p.
func (s *Smoothing) Group(p int) int {
	return s.Groups[p]
}

// AssignSmoothingGroups labels every polygon by flood-filling across smooth,
// two-sided edges. Seeds are taken in polygon order and group ids are handed
// out in the order seeds first find a smooth edge, so the result depends only
// on the mesh enumeration order.
func AssignSmoothingGroups(adj *AdjacencyIndex) *Smoothing {
	n := adj.NumPolygons()
	s := &Smoothing{Groups: make([]int, n)}
	for i := range s.Groups {
		s.Groups[i] = unvisited
	}

	next := 1
	var stack []int

	for seed := 0; seed < n; seed++ {
		if s.Groups[seed] != unvisited {
			continue
		}

		group := NoGroup
		stack = append(stack[:0], seed)

		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			for _, edge := range adj.Boundary(p) {
				if edge == nil || edge.Border() || !edge.Smooth {
					continue
				}

				if group == NoGroup {
					group = next
					next++
					s.Groups[seed] = group
				}

				adjPoly := edge.Other(p)
				switch label := s.Groups[adjPoly]; {
				case label == unvisited:
					s.Groups[adjPoly] = group
					stack = append(stack, adjPoly)
				case label != group:
					s.Conflicts = append(s.Conflicts, SmoothingConflict{
						Polygon:  adjPoly,
						Label:    label,
						Proposed: group,
					})
				}
			}
		}

		if group == NoGroup {
			s.Groups[seed] = NoGroup
		}
	}

	s.Count = next - 1
	return s
}
