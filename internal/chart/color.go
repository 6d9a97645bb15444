package chart

import (
	"strconv"
	"sync"
)

// Set3 is the 12-colour qualitative ColorBrewer palette.
var Set3 = []string{
	"#8dd3c7", "#ffffb3", "#bebada", "#fb8072", "#80b1d3", "#fdb462",
	"#b3de69", "#fccde5", "#d9d9d9", "#bc80bd", "#ccebc5", "#ffed6f",
}

// OrdinalScale maps keys to a cyclic colour range. Keys outside the domain
// are appended on first use, so a key keeps its colour for the scale's life.
type OrdinalScale struct {
	mu     sync.Mutex
	index  map[string]int
	domain []string
	colors []string
}

func NewOrdinalScale(domain []string, colors []string) *OrdinalScale {
	if len(colors) == 0 {
		colors = Set3
	}
	s := &OrdinalScale{index: make(map[string]int), colors: colors}
	for _, k := range domain {
		s.add(k)
	}
	return s
}

// NewYearScale seeds the domain with the fiscal years.
func NewYearScale(years []int) *OrdinalScale {
	domain := make([]string, len(years))
	for i, y := range years {
		domain[i] = strconv.Itoa(y)
	}
	return NewOrdinalScale(domain, Set3)
}

func (s *OrdinalScale) add(key string) int {
	if i, ok := s.index[key]; ok {
		return i
	}
	i := len(s.domain)
	s.domain = append(s.domain, key)
	s.index[key] = i
	return i
}

func (s *OrdinalScale) Color(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.colors[s.add(key)%len(s.colors)]
}

func (s *OrdinalScale) Domain() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.domain))
	copy(out, s.domain)
	return out
}
