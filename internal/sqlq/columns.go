package sqlq

import "sort"

// ColumnSet is an allow-list of column names for one relation.
type ColumnSet map[string]struct{}

// NewColumnSet returns a set holding names.
func NewColumnSet(names ...string) ColumnSet {
	s := make(ColumnSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Has reports whether name is allowed. Matching is exact.
func (s ColumnSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Check returns an *UnknownColumnError for the first name not in the set.
func (s ColumnSet) Check(names []string) error {
	for _, n := range names {
		if !s.Has(n) {
			return &UnknownColumnError{Column: n}
		}
	}
	return nil
}

// Names returns the allowed names, sorted.
func (s ColumnSet) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
