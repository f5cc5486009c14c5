package scene

// Kind is the node type tag reported by the design tool ("RECTANGLE",
// "FRAME", ...). Unknown values are preserved as-is.
type Kind string

// Known node kinds.
const (
	KindRectangle Kind = "RECTANGLE"
	KindEllipse   Kind = "ELLIPSE"
	KindText      Kind = "TEXT"
	KindGroup     Kind = "GROUP"
	KindFrame     Kind = "FRAME"
)

// Class partitions kinds by structure.
type Class int

const (
	// ClassLeaf nodes carry geometry and paint and never have children.
	ClassLeaf Class = iota
	// ClassContainer nodes carry children only.
	ClassContainer
)

// String returns "leaf" or "container".
func (c Class) String() string {
	if c == ClassContainer {
		return "container"
	}
	return "leaf"
}

// Class returns the structural class of k. GROUP and FRAME are containers;
// every other kind, including kinds this package does not know, is a leaf.
func (k Kind) Class() Class {
	switch k {
	case KindGroup, KindFrame:
		return ClassContainer
	case KindRectangle, KindEllipse, KindText:
		return ClassLeaf
	default:
		return ClassLeaf
	}
}

// IsContainer reports whether nodes of kind k may carry children.
func (k Kind) IsContainer() bool {
	return k.Class() == ClassContainer
}

// Known reports whether k is one of the kinds declared in this package.
func (k Kind) Known() bool {
	switch k {
	case KindRectangle, KindEllipse, KindText, KindGroup, KindFrame:
		return true
	}
	return false
}
