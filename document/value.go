package document

// EqKind identifies which variant of EqValue is populated.
type EqKind uint8

const (
	// EqScalar holds a Scalar.
	EqScalar EqKind = iota
	// EqArray holds an ordered sequence of PropertyValue.
	EqArray
	// EqEnvRef holds an environment-variable reference; resolving it against
	// the actual environment is a host concern, not the core's.
	EqEnvRef
)

// EqValue is the value slot of a Node: a Scalar, an array literal, or an
// environment-variable reference.
type EqValue struct {
	Kind    EqKind
	Scalar  Scalar
	Array   []PropertyValue
	EnvName string // valid for EqEnvRef
}

// NewScalarEq wraps a Scalar as an EqValue.
func NewScalarEq(s Scalar) *EqValue { return &EqValue{Kind: EqScalar, Scalar: s} }

// NewArrayEq wraps an array literal as an EqValue.
func NewArrayEq(arr []PropertyValue) *EqValue { return &EqValue{Kind: EqArray, Array: arr} }

// NewEnvRefEq wraps an environment-variable name as an EqValue.
func NewEnvRefEq(name string) *EqValue { return &EqValue{Kind: EqEnvRef, EnvName: name} }

// Clone returns a deep copy of v, or nil if v is nil.
func (v *EqValue) Clone() *EqValue {
	if v == nil {
		return nil
	}
	c := &EqValue{Kind: v.Kind, Scalar: v.Scalar, EnvName: v.EnvName}
	if v.Kind == EqArray {
		c.Array = make([]PropertyValue, len(v.Array))
		for i, el := range v.Array {
			c.Array[i] = el.Clone()
		}
	}
	return c
}
