package scim

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func testDocument() map[string]interface{} {
	return map[string]interface{}{
		"schemas":  []string{string(UserSchemaURI)},
		"id":       "u-1",
		"meta":     map[string]interface{}{"resourceType": "User"},
		"userName": "alice",
		"title":    "Engineer",
		"name": map[string]interface{}{
			"givenName":  "Alice",
			"familyName": "Smith",
		},
	}
}

func TestProjectAttributes(t *testing.T) {
	t.Run("attributes keeps listed plus always-returned", func(t *testing.T) {
		result := Project(testDocument(), []string{"userName"}, nil)

		assert.Empty(t, cmp.Diff(map[string]interface{}{
			"schemas":  []string{string(UserSchemaURI)},
			"id":       "u-1",
			"meta":     map[string]interface{}{"resourceType": "User"},
			"userName": "alice",
		}, result))
	})

	t.Run("attribute matching is case-insensitive", func(t *testing.T) {
		result := Project(testDocument(), []string{"USERNAME"}, nil)
		_, ok := result["userName"]
		assert.True(t, ok)
	})

	t.Run("sub-attribute selection keeps only that sub-attribute", func(t *testing.T) {
		result := Project(testDocument(), []string{"name.givenName"}, nil)

		assert.Empty(t, cmp.Diff(map[string]interface{}{"givenName": "Alice"}, result["name"]))
		_, ok := result["userName"]
		assert.False(t, ok)
	})

	t.Run("parent selection includes all sub-attributes", func(t *testing.T) {
		result := Project(testDocument(), []string{"name"}, nil)

		assert.Empty(t, cmp.Diff(map[string]interface{}{
			"givenName":  "Alice",
			"familyName": "Smith",
		}, result["name"]))
	})

	t.Run("projection is monotonic", func(t *testing.T) {
		full := testDocument()
		projected := Project(testDocument(), []string{"userName", "title"}, nil)

		for key := range projected {
			_, ok := full[key]
			assert.True(t, ok, key)
		}
	})
}

func TestProjectExcludedAttributes(t *testing.T) {
	t.Run("excluded removes listed attributes", func(t *testing.T) {
		result := Project(testDocument(), nil, []string{"title"})

		_, ok := result["title"]
		assert.False(t, ok)
		_, ok = result["userName"]
		assert.True(t, ok)
	})

	t.Run("excluded never removes schemas, id, meta", func(t *testing.T) {
		result := Project(testDocument(), nil, []string{"schemas", "id", "meta", "userName"})

		for _, key := range []string{"schemas", "id", "meta"} {
			_, ok := result[key]
			assert.True(t, ok, key)
		}
		_, ok := result["userName"]
		assert.False(t, ok)
	})

	t.Run("excluded sub-attribute keeps siblings", func(t *testing.T) {
		result := Project(testDocument(), nil, []string{"name.givenName"})

		assert.Empty(t, cmp.Diff(map[string]interface{}{"familyName": "Smith"}, result["name"]))
	})

	t.Run("attributes wins over excluded", func(t *testing.T) {
		result := Project(testDocument(), []string{"userName"}, []string{"userName"})

		_, ok := result["userName"]
		assert.True(t, ok)
	})
}

func TestParseAttributeList(t *testing.T) {
	assert.Nil(t, ParseAttributeList(""))
	assert.Equal(t, []string{"userName", "name.givenName"}, ParseAttributeList("userName, name.givenName"))
	assert.Equal(t, []string{"a"}, ParseAttributeList("a,,"))
}

func TestNormalizePage(t *testing.T) {
	testCases := []struct {
		name             string
		startIndex       int
		count            *int
		expectStartIndex int
		expectSize       int
	}{
		{name: "defaults", startIndex: 1, expectStartIndex: 1, expectSize: DefaultPageSize},
		{name: "startIndex below one normalizes to one", startIndex: -5, expectStartIndex: 1, expectSize: DefaultPageSize},
		{name: "count above cap clamps silently", startIndex: 1, count: intPtr(500), expectStartIndex: 1, expectSize: MaxPageSize},
		{name: "count at zero yields empty page", startIndex: 1, count: intPtr(0), expectStartIndex: 1, expectSize: 0},
		{name: "negative count yields empty page", startIndex: 1, count: intPtr(-3), expectStartIndex: 1, expectSize: 0},
		{name: "count within cap is honored", startIndex: 3, count: intPtr(25), expectStartIndex: 3, expectSize: 25},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			startIndex, size := NormalizePage(test.startIndex, test.count)
			assert.Equal(t, test.expectStartIndex, startIndex)
			assert.Equal(t, test.expectSize, size)
		})
	}
}

func intPtr(v int) *int {
	return &v
}
