package schema

import "sort"

// Sorted returns a copy of the schema ordered by Order. Fields sharing an
// Order keep their original relative position.
func (s Schema) Sorted() Schema {
	out := s.Clone()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}
