package extract

// Set is an insertion-ordered set of strings
type Set struct {
	seen  map[string]struct{}
	items []string
}

// NewSet creates an empty Set
func NewSet() *Set {
	return &Set{seen: make(map[string]struct{})}
}

// Add inserts v unless it is empty or already present, reporting whether it was added
func (s *Set) Add(v string) bool {
	if v == "" {
		return false
	}
	if _, ok := s.seen[v]; ok {
		return false
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

// AddAll inserts every value of vs
func (s *Set) AddAll(vs []string) {
	for _, v := range vs {
		s.Add(v)
	}
}

// Len returns the number of distinct values
func (s *Set) Len() int { return len(s.items) }

// Items returns the values in insertion order
func (s *Set) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}
