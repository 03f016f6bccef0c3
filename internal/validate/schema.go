package validate

import (
	"fmt"
	"regexp"

	"github.com/malloydata/motly-go/document"
	"github.com/malloydata/motly-go/motlyerr"
)

// Schema validates value against a schema tree (spec §4.4), which is itself
// a MOTLY tree. The root of schema is consulted for Required/Optional/
// Additional/Types exactly like any other schema node.
func Schema(schema, value *document.Node) []error {
	s := &schemaRun{root: schema, types: collectTypes(schema)}
	var errs []error
	s.validateNode(schema, value, nil, &errs)
	return errs
}

type schemaRun struct {
	root  *document.Node
	types map[string]*document.Node
}

// collectTypes reads the root's `Types` property (a map of named type
// definitions) once, up front; type specs anywhere in the schema may
// reference these by name (spec §4.4).
func collectTypes(schema *document.Node) map[string]*document.Node {
	types := make(map[string]*document.Node)
	if schema == nil || schema.Properties == nil {
		return types
	}
	typesNode, ok := propNode(schema, "Types")
	if !ok || typesNode.Properties == nil {
		return types
	}
	for _, key := range typesNode.Properties.Keys() {
		if n, ok2 := propNode(typesNode, key); ok2 {
			types[key] = n
		}
	}
	return types
}

func propNode(n *document.Node, key string) (*document.Node, bool) {
	if n.Properties == nil {
		return nil, false
	}
	v, ok := n.Properties.Get(key)
	if !ok {
		return nil, false
	}
	node, ok2 := v.(*document.Node)
	return node, ok2
}

// validateNode checks value (a Node, never a Link — callers have already
// handled the Link case) against spec's Required/Optional/Additional
// sections of schemaNode, in that order, walking keys in lexicographic
// order within each section (spec §4.4 "Ordering").
func (s *schemaRun) validateNode(schemaNode, value *document.Node, path []string, errs *[]error) {
	required, _ := propNode(schemaNode, "Required")
	optional, _ := propNode(schemaNode, "Optional")

	checked := make(map[string]bool)

	if required != nil && required.Properties != nil {
		for _, key := range required.Properties.Keys() {
			typeSpecV, _ := required.Properties.Get(key)
			typeSpec, ok := typeSpecV.(*document.Node)
			if !ok {
				continue
			}
			checked[key] = true
			childPath := append(append([]string{}, path...), key)
			child, present := childValue(value, key)
			if !present {
				*errs = append(*errs, &motlyerr.SchemaError{
					Code:    "missing-required",
					Message: fmt.Sprintf("missing required property %q", key),
					Path:    childPath,
				})
				continue
			}
			s.validateValueAgainstSpec(typeSpec, child, childPath, errs)
		}
	}

	if optional != nil && optional.Properties != nil {
		for _, key := range optional.Properties.Keys() {
			typeSpecV, _ := optional.Properties.Get(key)
			typeSpec, ok := typeSpecV.(*document.Node)
			if !ok {
				continue
			}
			checked[key] = true
			child, present := childValue(value, key)
			if !present {
				continue
			}
			childPath := append(append([]string{}, path...), key)
			s.validateValueAgainstSpec(typeSpec, child, childPath, errs)
		}
	}

	s.checkAdditional(schemaNode, value, checked, path, errs)
}

// checkAdditional applies the Additional policy (spec §4.4) to every
// property of value not already covered by Required/Optional.
func (s *schemaRun) checkAdditional(schemaNode, value *document.Node, checked map[string]bool, path []string, errs *[]error) {
	if value == nil || value.Properties == nil {
		return
	}
	policy, policyType := additionalPolicy(schemaNode)
	for _, key := range value.Properties.Keys() {
		if checked[key] {
			continue
		}
		childPath := append(append([]string{}, path...), key)
		switch policy {
		case policyAllow:
			continue
		case policyReject:
			*errs = append(*errs, &motlyerr.SchemaError{
				Code:    "unknown-property",
				Message: fmt.Sprintf("unknown property %q", key),
				Path:    childPath,
			})
		case policyNamed:
			child, _ := childValue(value, key)
			s.validateBaseType(policyType, child, childPath, errs)
		}
	}
}

type additionalPolicyKind uint8

const (
	policyAllow additionalPolicyKind = iota
	policyReject
	policyNamed
)

// additionalPolicy reads the schema node's Additional section. Absent
// Additional defaults to reject; an Additional section present but with no
// eq, or with a non-string eq, defaults to allow (spec §9 open question,
// resolved that way).
func additionalPolicy(schemaNode *document.Node) (additionalPolicyKind, string) {
	additional, ok := propNode(schemaNode, "Additional")
	if !ok {
		return policyReject, ""
	}
	if additional.Eq == nil {
		return policyAllow, ""
	}
	if additional.Eq.Kind != document.EqScalar || additional.Eq.Scalar.Kind != document.ScalarString {
		return policyAllow, ""
	}
	switch additional.Eq.Scalar.Str {
	case "allow":
		return policyAllow, ""
	case "reject":
		return policyReject, ""
	default:
		return policyNamed, additional.Eq.Scalar.Str
	}
}

// childValue returns the PropertyValue at key in value's properties, and
// whether it was present.
func childValue(value *document.Node, key string) (document.PropertyValue, bool) {
	if value == nil || value.Properties == nil {
		return nil, false
	}
	return value.Properties.Get(key)
}

// validateValueAgainstSpec dispatches a type spec node against one
// PropertyValue (spec §4.4's six-step ordered dispatch).
func (s *schemaRun) validateValueAgainstSpec(typeSpec *document.Node, value document.PropertyValue, path []string, errs *[]error) {
	if oneOf, ok := arrayOfStrings(typeSpec, "oneOf"); ok {
		s.validateUnion(oneOf, value, path, errs)
		return
	}
	if enumNode, ok := propNode(typeSpec, "eq"); ok && enumNode.Eq != nil && enumNode.Eq.Kind == document.EqArray {
		s.validateEnum(enumNode.Eq.Array, value, path, errs)
		return
	}
	if matches, ok := scalarStringChild(typeSpec, "matches"); ok {
		s.validatePattern(matches, typeSpec, value, path, errs)
		return
	}
	if typeSpec.Eq != nil && typeSpec.Eq.Kind == document.EqScalar && typeSpec.Eq.Scalar.Kind == document.ScalarString {
		s.validateBaseType(typeSpec.Eq.Scalar.Str, value, path, errs)
		return
	}
	if hasStructuralSections(typeSpec) {
		s.validateStructural(typeSpec, value, path, errs)
		return
	}
	// degenerate spec: nothing to check.
}

func hasStructuralSections(typeSpec *document.Node) bool {
	if typeSpec.Properties == nil {
		return false
	}
	for _, k := range []string{"Required", "Optional", "Additional"} {
		if _, ok := typeSpec.Properties.Get(k); ok {
			return true
		}
	}
	return false
}

func (s *schemaRun) validateStructural(typeSpec *document.Node, value document.PropertyValue, path []string, errs *[]error) {
	node, ok := value.(*document.Node)
	if !ok {
		*errs = append(*errs, &motlyerr.SchemaError{
			Code:    "wrong-type",
			Message: "expected a tag but found a link",
			Path:    append([]string{}, path...),
		})
		return
	}
	s.validateNode(typeSpec, node, path, errs)
}

// validateEnum implements enum type specs: value's eq must be a scalar
// equal (by value) to one of the listed scalars.
func (s *schemaRun) validateEnum(members []document.PropertyValue, value document.PropertyValue, path []string, errs *[]error) {
	node, ok := value.(*document.Node)
	if !ok {
		*errs = append(*errs, &motlyerr.SchemaError{
			Code:    "wrong-type",
			Message: "expected an enum value but found a link",
			Path:    append([]string{}, path...),
		})
		return
	}
	if node.Eq == nil || node.Eq.Kind != document.EqScalar {
		*errs = append(*errs, &motlyerr.SchemaError{
			Code:    "invalid-enum-value",
			Message: "value is not a scalar",
			Path:    append([]string{}, path...),
		})
		return
	}
	for _, m := range members {
		mn, ok2 := m.(*document.Node)
		if !ok2 || mn.Eq == nil || mn.Eq.Kind != document.EqScalar {
			continue
		}
		if mn.Eq.Scalar.Equal(node.Eq.Scalar) {
			return
		}
	}
	*errs = append(*errs, &motlyerr.SchemaError{
		Code:    "invalid-enum-value",
		Message: fmt.Sprintf("value %q is not one of the allowed enum values", node.Eq.Scalar.Display()),
		Path:    append([]string{}, path...),
	})
}

// validatePattern implements `matches` type specs: the value's eq must be a
// string matching the given regex, and if the spec also names a base type
// via its own string eq, the value must additionally satisfy that type.
func (s *schemaRun) validatePattern(pattern string, typeSpec *document.Node, value document.PropertyValue, path []string, errs *[]error) {
	node, ok := value.(*document.Node)
	if !ok {
		*errs = append(*errs, &motlyerr.SchemaError{
			Code:    "wrong-type",
			Message: "expected type string but found a link",
			Path:    append([]string{}, path...),
		})
		return
	}
	if node.Eq == nil || node.Eq.Kind != document.EqScalar || node.Eq.Scalar.Kind != document.ScalarString {
		*errs = append(*errs, &motlyerr.SchemaError{
			Code:    "wrong-type",
			Message: "expected type string but found a non-string value",
			Path:    append([]string{}, path...),
		})
		return
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		*errs = append(*errs, &motlyerr.SchemaError{
			Code:    "invalid-schema",
			Message: fmt.Sprintf("invalid regular expression %q", pattern),
			Path:    append([]string{}, path...),
		})
		return
	}
	if !re.MatchString(node.Eq.Scalar.Str) {
		*errs = append(*errs, &motlyerr.SchemaError{
			Code:    "pattern-mismatch",
			Message: fmt.Sprintf("value %q does not match pattern %q", node.Eq.Scalar.Str, pattern),
			Path:    append([]string{}, path...),
		})
		return
	}
	if typeSpec.Eq != nil && typeSpec.Eq.Kind == document.EqScalar && typeSpec.Eq.Scalar.Kind == document.ScalarString {
		s.validateBaseType(typeSpec.Eq.Scalar.Str, value, path, errs)
	}
}

// validateUnion implements `oneOf` type specs: valid iff value validates
// against at least one named member type with zero errors.
func (s *schemaRun) validateUnion(members []string, value document.PropertyValue, path []string, errs *[]error) {
	for _, name := range members {
		var trial []error
		s.validateBaseType(name, value, path, &trial)
		if len(trial) == 0 {
			return
		}
	}
	*errs = append(*errs, &motlyerr.SchemaError{
		Code:    "wrong-type",
		Message: fmt.Sprintf("value does not match any of the union members %v", members),
		Path:    append([]string{}, path...),
	})
}

// validateBaseType implements the base type names of spec §4.4: string,
// number, boolean, date, tag, flag, any, T[], or a lookup in the root Types
// section.
func (s *schemaRun) validateBaseType(name string, value document.PropertyValue, path []string, errs *[]error) {
	if name == "any" {
		return
	}
	if len(name) > 2 && name[len(name)-2:] == "[]" {
		s.validateArrayType(name[:len(name)-2], value, path, errs)
		return
	}

	switch name {
	case "tag", "flag":
		if _, ok := value.(*document.Node); !ok {
			*errs = append(*errs, &motlyerr.SchemaError{
				Code:    "wrong-type",
				Message: "expected a tag but found a link",
				Path:    append([]string{}, path...),
			})
		}
		return
	case "string", "number", "boolean", "date":
		node, ok := value.(*document.Node)
		if !ok {
			*errs = append(*errs, &motlyerr.SchemaError{
				Code:    "wrong-type",
				Message: fmt.Sprintf("expected type %s but found a link", name),
				Path:    append([]string{}, path...),
			})
			return
		}
		if node.Eq == nil || node.Eq.Kind != document.EqScalar || node.Eq.Scalar.Kind != scalarKindFor(name) {
			*errs = append(*errs, &motlyerr.SchemaError{
				Code:    "wrong-type",
				Message: fmt.Sprintf("expected type %s", name),
				Path:    append([]string{}, path...),
			})
		}
		return
	}

	if typeDef, ok := s.types[name]; ok {
		s.validateValueAgainstSpec(typeDef, value, path, errs)
		return
	}

	*errs = append(*errs, &motlyerr.SchemaError{
		Code:    "invalid-schema",
		Message: fmt.Sprintf("unknown type %q", name),
		Path:    append([]string{}, path...),
	})
}

func scalarKindFor(name string) document.ScalarKind {
	switch name {
	case "string":
		return document.ScalarString
	case "number":
		return document.ScalarNumber
	case "boolean":
		return document.ScalarBoolean
	case "date":
		return document.ScalarDate
	default:
		return document.ScalarString
	}
}

// validateArrayType implements the `T[]` base type: value's eq must be an
// array, and every element must satisfy T.
func (s *schemaRun) validateArrayType(elemType string, value document.PropertyValue, path []string, errs *[]error) {
	node, ok := value.(*document.Node)
	if !ok {
		*errs = append(*errs, &motlyerr.SchemaError{
			Code:    "wrong-type",
			Message: fmt.Sprintf("expected type %s[] but found a link", elemType),
			Path:    append([]string{}, path...),
		})
		return
	}
	if node.Eq == nil || node.Eq.Kind != document.EqArray {
		*errs = append(*errs, &motlyerr.SchemaError{
			Code:    "wrong-type",
			Message: fmt.Sprintf("expected type %s[]", elemType),
			Path:    append([]string{}, path...),
		})
		return
	}
	for idx, el := range node.Eq.Array {
		elPath := append(append([]string{}, path...), fmt.Sprintf("[%d]", idx))
		if _, isLink := el.(*document.Link); isLink {
			*errs = append(*errs, &motlyerr.SchemaError{
				Code:    "wrong-type",
				Message: fmt.Sprintf("expected type %s but found a link", elemType),
				Path:    elPath,
			})
			continue
		}
		s.validateBaseType(elemType, el, elPath, errs)
	}
}

// arrayOfStrings returns the string eq values of a node's `childKey`
// property array, if present and shaped that way.
func arrayOfStrings(typeSpec *document.Node, childKey string) ([]string, bool) {
	child, ok := propNode(typeSpec, childKey)
	if !ok || child.Eq == nil || child.Eq.Kind != document.EqArray {
		return nil, false
	}
	out := make([]string, 0, len(child.Eq.Array))
	for _, el := range child.Eq.Array {
		n, ok2 := el.(*document.Node)
		if !ok2 || n.Eq == nil || n.Eq.Kind != document.EqScalar || n.Eq.Scalar.Kind != document.ScalarString {
			return nil, false
		}
		out = append(out, n.Eq.Scalar.Str)
	}
	return out, true
}

func scalarStringChild(typeSpec *document.Node, key string) (string, bool) {
	child, ok := propNode(typeSpec, key)
	if !ok || child.Eq == nil || child.Eq.Kind != document.EqScalar || child.Eq.Scalar.Kind != document.ScalarString {
		return "", false
	}
	return child.Eq.Scalar.Str, true
}
