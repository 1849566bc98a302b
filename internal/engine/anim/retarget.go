package anim

import "strings"

// canonicalName collapses exporter decoration so the same logical bone
// matches across files: lowercase, strip any namespace prefix up to the
// last ':' or '|', then keep only letters and digits.
// "Armature:Root" and "root" both canonicalize to "root".
func canonicalName(name string) string {
	s := strings.ToLower(name)
	if i := strings.LastIndexAny(s, ":|"); i >= 0 {
		s = s[i+1:]
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// nodeMapper resolves animation-source node indices to base-model node
// indices, exact name first, canonical name second.
type nodeMapper struct {
	exact     map[string]int
	canonical map[string]int
}

func newNodeMapper(names []string) *nodeMapper {
	m := &nodeMapper{
		exact:     make(map[string]int, len(names)),
		canonical: make(map[string]int, len(names)),
	}
	// First occurrence wins on duplicate names.
	for i, name := range names {
		if _, ok := m.exact[name]; !ok {
			m.exact[name] = i
		}
		c := canonicalName(name)
		if _, ok := m.canonical[c]; !ok && c != "" {
			m.canonical[c] = i
		}
	}
	return m
}

func (m *nodeMapper) resolve(name string) (int, bool) {
	if i, ok := m.exact[name]; ok {
		return i, true
	}
	if i, ok := m.canonical[canonicalName(name)]; ok {
		return i, true
	}
	return 0, false
}
