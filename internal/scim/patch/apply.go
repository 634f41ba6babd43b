package patch

import (
	"fmt"
	"strings"

	"gitlab.com/identity-lab/scim-target-api/internal/scim"
	"gitlab.com/identity-lab/scim-target-api/pkg/errors"
)

// OpType is the type of a PATCH operation.
type OpType string

// Valid operation types.
const (
	AddOp     OpType = "add"
	ReplaceOp OpType = "replace"
	RemoveOp  OpType = "remove"
)

// ParseOpType normalizes an operation name. Operation names are matched
// case-insensitively; anything other than add, replace and remove is
// rejected.
func ParseOpType(op string) (OpType, error) {
	switch OpType(strings.ToLower(op)) {
	case AddOp:
		return AddOp, nil
	case ReplaceOp:
		return ReplaceOp, nil
	case RemoveOp:
		return RemoveOp, nil
	}
	return "", errors.New(
		"unsupported patch operation %q", op,
		errors.WithErrorCode(errors.EInvalid),
		errors.WithSCIMType(errors.SCIMTypeInvalidValue),
	)
}

// Operation is a parsed PATCH operation ready to apply.
type Operation struct {
	Type  OpType
	Path  *Path
	Value interface{}
}

// requiredAttributes may not be removed from a document.
var requiredAttributes = map[string]struct{}{
	"username":    {},
	"displayname": {},
}

func noTargetError(format string, a ...any) error {
	a = append(a, errors.WithErrorCode(errors.EInvalid), errors.WithSCIMType(errors.SCIMTypeNoTarget))
	return errors.New(format, a...)
}

func invalidValueError(format string, a ...any) error {
	a = append(a, errors.WithErrorCode(errors.EInvalid), errors.WithSCIMType(errors.SCIMTypeInvalidValue))
	return errors.New(format, a...)
}

// Apply mutates doc according to the operation. Operations in a request are
// applied in order by the caller so a later operation observes the effect
// of an earlier one.
func Apply(doc map[string]interface{}, op *Operation) error {
	if op.Path == nil {
		return applyNoPath(doc, op)
	}

	target := doc
	if op.Path.URN != "" {
		namespace, err := resolveNamespace(doc, op.Path.URN, op.Type)
		if err != nil {
			return err
		}
		if len(op.Path.Segments) == 0 {
			return applyWholeNamespace(doc, op)
		}
		target = namespace
	}

	if op.Path.Filter != nil {
		return applyValueFilter(target, op)
	}

	return applySimple(target, op.Path.URN, op.Path.Segments, op.Type, op.Value)
}

// applyNoPath handles add/replace with no path: the value must be an
// object, and each key is itself resolved as a path (extension URN, dotted
// path or flat attribute) and merged into the document.
func applyNoPath(doc map[string]interface{}, op *Operation) error {
	if op.Type == RemoveOp {
		return noTargetError("remove operation requires a path")
	}

	values, ok := op.Value.(map[string]interface{})
	if !ok {
		return invalidValueError("value must be an object when no path is specified")
	}

	for key, value := range values {
		keyPath, err := ParsePath(key)
		if err != nil {
			return err
		}
		if keyPath == nil {
			continue
		}

		if err := Apply(doc, &Operation{Type: op.Type, Path: keyPath, Value: value}); err != nil {
			return err
		}
	}

	return nil
}

// applyWholeNamespace handles a path that is a bare extension URN: the
// value object replaces or merges into the whole namespace.
func applyWholeNamespace(doc map[string]interface{}, op *Operation) error {
	if op.Type == RemoveOp {
		deleteKey(doc, op.Path.URN)
		return nil
	}

	values, ok := op.Value.(map[string]interface{})
	if !ok {
		return invalidValueError("value must be an object when targeting a schema extension")
	}

	namespace, err := resolveNamespace(doc, op.Path.URN, op.Type)
	if err != nil {
		return err
	}

	for key, value := range values {
		if err := applySimple(namespace, op.Path.URN, []string{key}, op.Type, value); err != nil {
			return err
		}
	}

	return nil
}

// applySimple sets, merges or removes an attribute at a dotted path.
// Missing parents are created for add and replace.
func applySimple(target map[string]interface{}, urn string, segments []string, opType OpType, value interface{}) error {
	parent := target
	for _, segment := range segments[:len(segments)-1] {
		child, ok := lookupKey(parent, segment)
		if !ok {
			if opType == RemoveOp {
				// Nothing to remove.
				return nil
			}
			created := map[string]interface{}{}
			parent[segment] = created
			parent = created
			continue
		}

		childMap, ok := child.(map[string]interface{})
		if !ok {
			if opType == RemoveOp {
				return nil
			}
			childMap = map[string]interface{}{}
			setKey(parent, segment, childMap)
		}
		parent = childMap
	}

	leaf := segments[len(segments)-1]

	if opType == RemoveOp {
		if _, required := requiredAttributes[strings.ToLower(leaf)]; required && urn == "" && len(segments) == 1 {
			return invalidValueError("attribute %s is required and cannot be removed", leaf)
		}
		deleteKey(parent, leaf)
		return nil
	}

	value = wrapComplexValue(urn, segments, value)

	// add appends to an existing multi-valued attribute instead of
	// overwriting it.
	if opType == AddOp {
		if existing, ok := lookupKey(parent, leaf); ok {
			if existingSlice, isSlice := existing.([]interface{}); isSlice {
				setKey(parent, leaf, appendValues(existingSlice, value))
				return nil
			}
		}
	}

	setKey(parent, leaf, value)
	return nil
}

// applyValueFilter applies an operation to the elements of a multi-valued
// attribute selected by the bracketed filter.
func applyValueFilter(target map[string]interface{}, op *Operation) error {
	path := op.Path
	attrSegments := path.Segments

	parent := target
	for _, segment := range attrSegments[:len(attrSegments)-1] {
		child, ok := lookupKey(parent, segment)
		if !ok {
			if op.Type == RemoveOp {
				return noTargetError("no value matches the supplied filter")
			}
			created := map[string]interface{}{}
			parent[segment] = created
			parent = created
			continue
		}
		childMap, ok := child.(map[string]interface{})
		if !ok {
			return noTargetError("path does not target a complex attribute")
		}
		parent = childMap
	}

	leaf := attrSegments[len(attrSegments)-1]

	var elements []interface{}
	if existing, ok := lookupKey(parent, leaf); ok {
		existingSlice, isSlice := existing.([]interface{})
		if !isSlice {
			return noTargetError("attribute %s is not multi-valued", leaf)
		}
		elements = existingSlice
	}

	matched := []int{}
	for i, element := range elements {
		elementMap, ok := element.(map[string]interface{})
		if !ok {
			continue
		}
		if matchesFilter(elementMap, path.Filter) {
			matched = append(matched, i)
		}
	}

	switch op.Type {
	case ReplaceOp:
		if len(matched) == 0 {
			return noTargetError("no value matches the supplied filter")
		}
		for _, i := range matched {
			if path.SubAttribute != "" {
				setKey(elements[i].(map[string]interface{}), path.SubAttribute, op.Value)
			} else {
				elements[i] = op.Value
			}
		}
		setKey(parent, leaf, elements)

	case AddOp:
		if len(matched) > 0 {
			for _, i := range matched {
				elementMap := elements[i].(map[string]interface{})
				if path.SubAttribute != "" {
					setKey(elementMap, path.SubAttribute, op.Value)
				} else if valueMap, ok := op.Value.(map[string]interface{}); ok {
					for key, value := range valueMap {
						setKey(elementMap, key, value)
					}
				} else {
					return invalidValueError("value must be an object when adding to a filtered element")
				}
			}
			setKey(parent, leaf, elements)
			return nil
		}

		// No element matched: create a new one seeded with the filter
		// criteria so a follow-up with the same filter finds it.
		element := map[string]interface{}{
			path.Filter.Attribute: path.Filter.Value,
		}
		if path.SubAttribute != "" {
			element[path.SubAttribute] = op.Value
		} else if valueMap, ok := op.Value.(map[string]interface{}); ok {
			for key, value := range valueMap {
				setKey(element, key, value)
			}
		} else {
			return invalidValueError("value must be an object when adding to a filtered element")
		}
		setKey(parent, leaf, append(elements, interface{}(element)))

	case RemoveOp:
		if len(matched) == 0 {
			return noTargetError("no value matches the supplied filter")
		}
		if path.SubAttribute != "" {
			for _, i := range matched {
				deleteKey(elements[i].(map[string]interface{}), path.SubAttribute)
			}
			setKey(parent, leaf, elements)
			return nil
		}

		remaining := make([]interface{}, 0, len(elements))
		matchedSet := map[int]struct{}{}
		for _, i := range matched {
			matchedSet[i] = struct{}{}
		}
		for i, element := range elements {
			if _, drop := matchedSet[i]; !drop {
				remaining = append(remaining, element)
			}
		}

		if len(remaining) == 0 {
			deleteKey(parent, leaf)
		} else {
			setKey(parent, leaf, remaining)
		}
	}

	return nil
}

// resolveNamespace returns the extension namespace object for the URN,
// creating it for add and replace operations.
func resolveNamespace(doc map[string]interface{}, urn string, opType OpType) (map[string]interface{}, error) {
	existing, ok := lookupKey(doc, urn)
	if ok {
		namespace, isMap := existing.(map[string]interface{})
		if !isMap {
			if opType == RemoveOp {
				return map[string]interface{}{}, nil
			}
			namespace = map[string]interface{}{}
			setKey(doc, urn, namespace)
		}
		return namespace, nil
	}

	namespace := map[string]interface{}{}
	if opType != RemoveOp {
		doc[urn] = namespace
	}
	return namespace, nil
}

// wrapComplexValue wraps a bare string assigned to the enterprise manager
// attribute as {value: "<string>"} since manager is a complex attribute
// with a value sub-attribute. No other attribute receives this wrapping.
func wrapComplexValue(urn string, segments []string, value interface{}) interface{} {
	if urn != string(scim.UserEnterpriseSchemaURI) {
		return value
	}
	if len(segments) != 1 || !strings.EqualFold(segments[0], "manager") {
		return value
	}
	if str, ok := value.(string); ok {
		return map[string]interface{}{"value": str}
	}
	return value
}

// matchesFilter evaluates a value filter against one element of a
// multi-valued attribute. Attribute names match case-insensitively; eq
// compares strings case-insensitively; other operators fall back to strict
// equality of canonical string forms.
func matchesFilter(element map[string]interface{}, filter *FilterExpression) bool {
	actual, ok := lookupKey(element, filter.Attribute)
	if !ok {
		return false
	}

	actualStr := canonicalString(actual)

	if filter.Operator == "eq" {
		return strings.EqualFold(actualStr, filter.Value)
	}

	return actualStr == filter.Value
}

// canonicalString coerces a scalar to its canonical string form for filter
// comparison.
func canonicalString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		// JSON numbers decode as float64; render integers without a
		// fractional part.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case nil:
		return ""
	}
	return fmt.Sprintf("%v", value)
}

// appendValues appends one or more values to a multi-valued attribute.
func appendValues(existing []interface{}, value interface{}) []interface{} {
	if additions, ok := value.([]interface{}); ok {
		return append(existing, additions...)
	}
	return append(existing, value)
}

// lookupKey performs a case-insensitive key lookup (RFC 7643 section 2.1).
func lookupKey(m map[string]interface{}, name string) (interface{}, bool) {
	if value, ok := m[name]; ok {
		return value, true
	}
	for key, value := range m {
		if strings.EqualFold(key, name) {
			return value, true
		}
	}
	return nil, false
}

// setKey overwrites an existing key case-insensitively, preserving the
// stored casing, or sets a new key with the supplied casing.
func setKey(m map[string]interface{}, name string, value interface{}) {
	if _, ok := m[name]; ok {
		m[name] = value
		return
	}
	for key := range m {
		if strings.EqualFold(key, name) {
			m[key] = value
			return
		}
	}
	m[name] = value
}

// deleteKey removes a key case-insensitively.
func deleteKey(m map[string]interface{}, name string) {
	if _, ok := m[name]; ok {
		delete(m, name)
		return
	}
	for key := range m {
		if strings.EqualFold(key, name) {
			delete(m, key)
			return
		}
	}
}
