package model

// SkinTable is a deduplicated list of skin names. Index 0 is the default skin.
type SkinTable struct {
	names []string
	index map[string]int
}

// NewSkinTable returns a table holding only the default skin.
func NewSkinTable() *SkinTable {
	return &SkinTable{
		names: []string{""},
		index: map[string]int{"": 0},
	}
}

// Add returns the index of name, appending it when unknown.
func (t *SkinTable) Add(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	t.index[name] = len(t.names)
	t.names = append(t.names, name)
	return len(t.names) - 1
}

// Name returns the skin at index i, or the default skin when out of range.
func (t *SkinTable) Name(i int) string {
	if i < 0 || i >= len(t.names) {
		return ""
	}
	return t.names[i]
}

// Len returns the number of skins.
func (t *SkinTable) Len() int { return len(t.names) }

// Names returns a copy of all skin names.
func (t *SkinTable) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// SkinTableFromNames rebuilds a table from a saved list.
func SkinTableFromNames(names []string) *SkinTable {
	t := NewSkinTable()
	for _, n := range names {
		t.Add(n)
	}
	return t
}
