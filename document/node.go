package document

// PropertyValue is what lives at a key in a Node's property map, or at an
// index in an array: either an owned Node or a Link to another node.
//
// Tagged variants over inheritance: PropertyValue has exactly two
// implementations and every consumer switches on them exhaustively, the same
// shape as the teacher's document.Node/Value sum types.
type PropertyValue interface {
	propertyValue()
	// Clone returns a deep copy of the receiver.
	Clone() PropertyValue
}

// Link means "this property IS that other node". It carries no eq and no
// own properties — just the textual reference string it was written with
// (see Ref.Format for the canonical form).
type Link struct {
	Ref string
}

func (*Link) propertyValue() {}

// Clone returns a copy of the Link (Links are immutable value holders, so
// this is just a new pointer to the same string).
func (l *Link) Clone() PropertyValue { return &Link{Ref: l.Ref} }

// Node is a named entry in the MOTLY tree: an optional value slot, an
// optional ordered map of properties, and a deleted tombstone flag.
type Node struct {
	Eq         *EqValue
	Properties *Properties
	Deleted    bool
}

func (*Node) propertyValue() {}

// NewNode returns a freshly allocated, empty Node.
func NewNode() *Node {
	return &Node{}
}

// NewDeletedNode returns a tombstone Node: deleted=true, no eq, no
// properties.
func NewDeletedNode() *Node {
	return &Node{Deleted: true}
}

// EnsureProperties returns the Node's property map, allocating it if it is
// nil.
func (n *Node) EnsureProperties() *Properties {
	if n.Properties == nil {
		n.Properties = NewProperties()
	}
	return n.Properties
}

// HasProperties reports whether n carries a non-empty property map.
func (n *Node) HasProperties() bool {
	return n.Properties != nil && n.Properties.Len() > 0
}

// Clone returns a deep copy of n: its eq is copied by value, every owned
// child Node is recursively cloned, and every Link is copied (its reference
// string is not rewritten here — clone-boundary sanitization, which must
// happen exactly once per clone and only the interpreter has the context
// for, is a separate step; see internal/interp).
func (n *Node) Clone() PropertyValue {
	return n.CloneNode()
}

// CloneNode is Clone with the concrete *Node return type, for callers that
// already know they're cloning a Node (most of the interpreter does).
func (n *Node) CloneNode() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		Eq:      n.Eq.Clone(),
		Deleted: n.Deleted,
	}
	if n.Properties != nil {
		c.Properties = n.Properties.Clone()
	}
	return c
}
