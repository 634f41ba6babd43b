package patch

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/identity-lab/scim-target-api/pkg/errors"
)

const enterpriseURN = "urn:ietf:params:scim:schemas:extension:enterprise:2.0:User"

func mustParsePath(t *testing.T, raw string) *Path {
	t.Helper()
	path, err := ParsePath(raw)
	require.NoError(t, err)
	return path
}

func TestParseOpType(t *testing.T) {
	for _, raw := range []string{"add", "Add", "ADD", "replace", "Replace", "remove", "REMOVE"} {
		_, err := ParseOpType(raw)
		assert.NoError(t, err, raw)
	}

	_, err := ParseOpType("move")
	require.Error(t, err)
	assert.Equal(t, errors.EInvalid, errors.ErrorCode(err))
	assert.Equal(t, errors.SCIMTypeInvalidValue, errors.SCIMType(err))
}

func TestApplySimplePaths(t *testing.T) {
	testCases := []struct {
		name            string
		doc             map[string]interface{}
		op              *Operation
		expect          map[string]interface{}
		expectErrorCode string
	}{
		{
			name: "replace scalar",
			doc:  map[string]interface{}{"displayName": "Old"},
			op: &Operation{
				Type:  ReplaceOp,
				Path:  mustParsePath(t, "displayName"),
				Value: "New",
			},
			expect: map[string]interface{}{"displayName": "New"},
		},
		{
			name: "replace is case-insensitive on attribute names",
			doc:  map[string]interface{}{"displayName": "Old"},
			op: &Operation{
				Type:  ReplaceOp,
				Path:  mustParsePath(t, "displayname"),
				Value: "New",
			},
			expect: map[string]interface{}{"displayName": "New"},
		},
		{
			name: "replace nested creates parent",
			doc:  map[string]interface{}{},
			op: &Operation{
				Type:  ReplaceOp,
				Path:  mustParsePath(t, "name.givenName"),
				Value: "Alice",
			},
			expect: map[string]interface{}{
				"name": map[string]interface{}{"givenName": "Alice"},
			},
		},
		{
			name: "replace nested preserves siblings",
			doc: map[string]interface{}{
				"name": map[string]interface{}{"familyName": "Smith", "givenName": "Old"},
			},
			op: &Operation{
				Type:  ReplaceOp,
				Path:  mustParsePath(t, "name.givenName"),
				Value: "Alice",
			},
			expect: map[string]interface{}{
				"name": map[string]interface{}{"familyName": "Smith", "givenName": "Alice"},
			},
		},
		{
			name: "add appends to multi-valued attribute",
			doc: map[string]interface{}{
				"emails": []interface{}{
					map[string]interface{}{"type": "home", "value": "h@x"},
				},
			},
			op: &Operation{
				Type:  AddOp,
				Path:  mustParsePath(t, "emails"),
				Value: []interface{}{map[string]interface{}{"type": "work", "value": "w@x"}},
			},
			expect: map[string]interface{}{
				"emails": []interface{}{
					map[string]interface{}{"type": "home", "value": "h@x"},
					map[string]interface{}{"type": "work", "value": "w@x"},
				},
			},
		},
		{
			name: "remove deletes attribute",
			doc:  map[string]interface{}{"title": "Engineer", "displayName": "A"},
			op: &Operation{
				Type: RemoveOp,
				Path: mustParsePath(t, "title"),
			},
			expect: map[string]interface{}{"displayName": "A"},
		},
		{
			name: "remove missing attribute is a no-op",
			doc:  map[string]interface{}{"displayName": "A"},
			op: &Operation{
				Type: RemoveOp,
				Path: mustParsePath(t, "title"),
			},
			expect: map[string]interface{}{"displayName": "A"},
		},
		{
			name: "remove required attribute fails",
			doc:  map[string]interface{}{"userName": "alice"},
			op: &Operation{
				Type: RemoveOp,
				Path: mustParsePath(t, "userName"),
			},
			expectErrorCode: errors.EInvalid,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			err := Apply(test.doc, test.op)

			if test.expectErrorCode != "" {
				require.Error(t, err)
				assert.Equal(t, test.expectErrorCode, errors.ErrorCode(err))
				return
			}

			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(test.expect, test.doc))
		})
	}
}

func TestApplyValueFilterPaths(t *testing.T) {
	testCases := []struct {
		name            string
		doc             map[string]interface{}
		op              *Operation
		expect          map[string]interface{}
		expectErrorCode string
		expectSCIMType  string
	}{
		{
			// spec scenario: add on an empty multi-valued attribute seeds
			// the new element with the filter criteria.
			name: "add creates element on empty attribute",
			doc:  map[string]interface{}{"userName": "alice"},
			op: &Operation{
				Type:  AddOp,
				Path:  mustParsePath(t, `emails[type eq "work"].value`),
				Value: "a@w",
			},
			expect: map[string]interface{}{
				"userName": "alice",
				"emails": []interface{}{
					map[string]interface{}{"type": "work", "value": "a@w"},
				},
			},
		},
		{
			name: "add updates matching element",
			doc: map[string]interface{}{
				"emails": []interface{}{
					map[string]interface{}{"type": "work", "value": "old@w"},
				},
			},
			op: &Operation{
				Type:  AddOp,
				Path:  mustParsePath(t, `emails[type eq "work"].value`),
				Value: "new@w",
			},
			expect: map[string]interface{}{
				"emails": []interface{}{
					map[string]interface{}{"type": "work", "value": "new@w"},
				},
			},
		},
		{
			name: "replace sub-attribute of matching element",
			doc: map[string]interface{}{
				"emails": []interface{}{
					map[string]interface{}{"type": "work", "value": "old@w"},
					map[string]interface{}{"type": "home", "value": "h@x"},
				},
			},
			op: &Operation{
				Type:  ReplaceOp,
				Path:  mustParsePath(t, `emails[type eq "work"].value`),
				Value: "new@w",
			},
			expect: map[string]interface{}{
				"emails": []interface{}{
					map[string]interface{}{"type": "work", "value": "new@w"},
					map[string]interface{}{"type": "home", "value": "h@x"},
				},
			},
		},
		{
			name: "filter value matching is case-insensitive for eq",
			doc: map[string]interface{}{
				"emails": []interface{}{
					map[string]interface{}{"type": "Work", "value": "old@w"},
				},
			},
			op: &Operation{
				Type:  ReplaceOp,
				Path:  mustParsePath(t, `emails[type eq "work"].value`),
				Value: "new@w",
			},
			expect: map[string]interface{}{
				"emails": []interface{}{
					map[string]interface{}{"type": "Work", "value": "new@w"},
				},
			},
		},
		{
			name: "replace whole matching element",
			doc: map[string]interface{}{
				"emails": []interface{}{
					map[string]interface{}{"type": "work", "value": "old@w"},
				},
			},
			op: &Operation{
				Type:  ReplaceOp,
				Path:  mustParsePath(t, `emails[type eq "work"]`),
				Value: map[string]interface{}{"type": "work", "value": "new@w", "primary": true},
			},
			expect: map[string]interface{}{
				"emails": []interface{}{
					map[string]interface{}{"type": "work", "value": "new@w", "primary": true},
				},
			},
		},
		{
			name: "replace with no match is noTarget",
			doc:  map[string]interface{}{"emails": []interface{}{}},
			op: &Operation{
				Type:  ReplaceOp,
				Path:  mustParsePath(t, `emails[type eq "work"].value`),
				Value: "new@w",
			},
			expectErrorCode: errors.EInvalid,
			expectSCIMType:  errors.SCIMTypeNoTarget,
		},
		{
			name: "remove matching element",
			doc: map[string]interface{}{
				"emails": []interface{}{
					map[string]interface{}{"type": "work", "value": "w@x"},
					map[string]interface{}{"type": "home", "value": "h@x"},
				},
			},
			op: &Operation{
				Type: RemoveOp,
				Path: mustParsePath(t, `emails[type eq "work"]`),
			},
			expect: map[string]interface{}{
				"emails": []interface{}{
					map[string]interface{}{"type": "home", "value": "h@x"},
				},
			},
		},
		{
			name: "remove last element drops the attribute",
			doc: map[string]interface{}{
				"emails": []interface{}{
					map[string]interface{}{"type": "work", "value": "w@x"},
				},
			},
			op: &Operation{
				Type: RemoveOp,
				Path: mustParsePath(t, `emails[type eq "work"]`),
			},
			expect: map[string]interface{}{},
		},
		{
			name: "remove sub-attribute of matching element",
			doc: map[string]interface{}{
				"emails": []interface{}{
					map[string]interface{}{"type": "work", "value": "w@x", "primary": true},
				},
			},
			op: &Operation{
				Type: RemoveOp,
				Path: mustParsePath(t, `emails[type eq "work"].primary`),
			},
			expect: map[string]interface{}{
				"emails": []interface{}{
					map[string]interface{}{"type": "work", "value": "w@x"},
				},
			},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			err := Apply(test.doc, test.op)

			if test.expectErrorCode != "" {
				require.Error(t, err)
				assert.Equal(t, test.expectErrorCode, errors.ErrorCode(err))
				if test.expectSCIMType != "" {
					assert.Equal(t, test.expectSCIMType, errors.SCIMType(err))
				}
				return
			}

			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(test.expect, test.doc))
		})
	}
}

func TestApplyExtensionPaths(t *testing.T) {
	// spec scenario: a string manager value is wrapped as a complex value.
	doc := map[string]interface{}{"userName": "alice"}
	err := Apply(doc, &Operation{
		Type:  ReplaceOp,
		Path:  mustParsePath(t, enterpriseURN+":manager"),
		Value: "MGR-1",
	})
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(map[string]interface{}{
		"userName": "alice",
		enterpriseURN: map[string]interface{}{
			"manager": map[string]interface{}{"value": "MGR-1"},
		},
	}, doc))

	// Non-manager attributes are not wrapped.
	err = Apply(doc, &Operation{
		Type:  ReplaceOp,
		Path:  mustParsePath(t, enterpriseURN+":department"),
		Value: "Finance",
	})
	require.NoError(t, err)
	namespace := doc[enterpriseURN].(map[string]interface{})
	assert.Equal(t, "Finance", namespace["department"])

	// Remove deletes from the namespace.
	err = Apply(doc, &Operation{
		Type: RemoveOp,
		Path: mustParsePath(t, enterpriseURN+":department"),
	})
	require.NoError(t, err)
	namespace = doc[enterpriseURN].(map[string]interface{})
	_, exists := namespace["department"]
	assert.False(t, exists)
}

func TestApplyNoPath(t *testing.T) {
	t.Run("merges flat, dotted and extension keys", func(t *testing.T) {
		doc := map[string]interface{}{
			"userName": "alice",
			"name":     map[string]interface{}{"familyName": "Smith"},
		}

		err := Apply(doc, &Operation{
			Type: ReplaceOp,
			Value: map[string]interface{}{
				"title":                    "Engineer",
				"name.givenName":           "Alice",
				enterpriseURN + ":manager": "MGR-9",
			},
		})
		require.NoError(t, err)

		assert.Empty(t, cmp.Diff(map[string]interface{}{
			"userName": "alice",
			"title":    "Engineer",
			"name":     map[string]interface{}{"familyName": "Smith", "givenName": "Alice"},
			enterpriseURN: map[string]interface{}{
				"manager": map[string]interface{}{"value": "MGR-9"},
			},
		}, doc))
	})

	t.Run("remove without path is rejected", func(t *testing.T) {
		err := Apply(map[string]interface{}{}, &Operation{Type: RemoveOp})
		require.Error(t, err)
		assert.Equal(t, errors.EInvalid, errors.ErrorCode(err))
		assert.Equal(t, errors.SCIMTypeNoTarget, errors.SCIMType(err))
	})

	t.Run("non-object value is rejected", func(t *testing.T) {
		err := Apply(map[string]interface{}{}, &Operation{Type: AddOp, Value: "scalar"})
		require.Error(t, err)
		assert.Equal(t, errors.SCIMTypeInvalidValue, errors.SCIMType(err))
	})
}

// TestSequentialEquivalence checks that a later operation observes the
// effect of an earlier one.
func TestSequentialEquivalence(t *testing.T) {
	doc := map[string]interface{}{"userName": "alice"}

	ops := []*Operation{
		{Type: AddOp, Path: mustParsePath(t, `emails[type eq "work"].value`), Value: "a@w"},
		{Type: ReplaceOp, Path: mustParsePath(t, `emails[type eq "work"].value`), Value: "b@w"},
		{Type: RemoveOp, Path: mustParsePath(t, `emails[type eq "work"]`)},
	}

	for _, op := range ops {
		require.NoError(t, Apply(doc, op))
	}

	assert.Empty(t, cmp.Diff(map[string]interface{}{"userName": "alice"}, doc))
}
