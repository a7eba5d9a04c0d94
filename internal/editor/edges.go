package editor

// EdgeSet is a bitmask of crop rectangle edges. A corner touch activates one
// vertical and one horizontal edge at the same time, so up to two bits of
// compatible orientation may be set together.
type EdgeSet uint8

const (
	EdgeLeft EdgeSet = 1 << iota
	EdgeRight
	EdgeTop
	EdgeBottom
)

// Has reports whether all edges in mask are present in s.
func (s EdgeSet) Has(mask EdgeSet) bool { return s&mask == mask }

// Empty reports whether no edge is set.
func (s EdgeSet) Empty() bool { return s == 0 }

// Names returns the stable lowercase names of the edges in s, in
// left/right/top/bottom order. Used for overlay payloads and logging.
func (s EdgeSet) Names() []string {
	var names []string
	if s.Has(EdgeLeft) {
		names = append(names, "left")
	}
	if s.Has(EdgeRight) {
		names = append(names, "right")
	}
	if s.Has(EdgeTop) {
		names = append(names, "top")
	}
	if s.Has(EdgeBottom) {
		names = append(names, "bottom")
	}
	return names
}

// ParseEdge maps an edge name to its bit. Unknown names return 0.
func ParseEdge(name string) EdgeSet {
	switch name {
	case "left":
		return EdgeLeft
	case "right":
		return EdgeRight
	case "top":
		return EdgeTop
	case "bottom":
		return EdgeBottom
	}
	return 0
}
