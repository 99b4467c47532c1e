package merge

// Origin identifies which input an image is copied from.
type Origin int

const (
	First Origin = iota + 1
	Second
)

func (o Origin) String() string {
	switch o {
	case First:
		return "first"
	case Second:
		return "second"
	default:
		return "unknown"
	}
}

// ImageSource is where an output image's bytes come from.
type ImageSource struct {
	Origin Origin
	Name   string
}

// ImageEntry pairs an output name with its source.
type ImageEntry struct {
	Name   string
	Source ImageSource
}

// ImageMap maps output image names to their sources, iterating in insertion
// order.
type ImageMap struct {
	entries []ImageEntry
	index   map[string]int
}

// NewImageMap returns an empty map.
func NewImageMap() *ImageMap {
	return &ImageMap{index: make(map[string]int)}
}

// Add inserts name. It reports false, leaving the map unchanged, if name is
// already present.
func (m *ImageMap) Add(name string, src ImageSource) bool {
	if _, ok := m.index[name]; ok {
		return false
	}
	m.index[name] = len(m.entries)
	m.entries = append(m.entries, ImageEntry{Name: name, Source: src})
	return true
}

// Get returns the source of name.
func (m *ImageMap) Get(name string) (ImageSource, bool) {
	i, ok := m.index[name]
	if !ok {
		return ImageSource{}, false
	}
	return m.entries[i].Source, true
}

// Len returns the number of entries.
func (m *ImageMap) Len() int {
	return len(m.entries)
}

// Entries returns a copy of the entries in insertion order.
func (m *ImageMap) Entries() []ImageEntry {
	return append([]ImageEntry(nil), m.entries...)
}

// Names returns the output names in insertion order.
func (m *ImageMap) Names() []string {
	names := make([]string, len(m.entries))
	for i, e := range m.entries {
		names[i] = e.Name
	}
	return names
}
