package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New("something %s happened", "bad", WithErrorCode(EInvalid), WithSCIMType(SCIMTypeInvalidPath))

	assert.Equal(t, "something bad happened", err.Error())
	assert.Equal(t, EInvalid, ErrorCode(err))
	assert.Equal(t, SCIMTypeInvalidPath, SCIMType(err))
}

func TestNewDefaultsToInternal(t *testing.T) {
	err := New("boom")
	assert.Equal(t, EInternal, ErrorCode(err))
	assert.Equal(t, "", SCIMType(err))
}

func TestWrap(t *testing.T) {
	inner := New("inner", WithErrorCode(EConflict), WithSCIMType(SCIMTypeUniqueness))
	outer := Wrap(inner, "outer")

	assert.Equal(t, "outer: inner", outer.Error())
	// The code and scimType of the root error propagate through wrapping.
	assert.Equal(t, EConflict, ErrorCode(outer))
	assert.Equal(t, SCIMTypeUniqueness, SCIMType(outer))
	assert.True(t, stderrors.Is(outer, inner) || stderrors.Unwrap(outer) == inner)
}

func TestWrapNonAPIError(t *testing.T) {
	inner := stderrors.New("plain failure")
	outer := Wrap(inner, "failed to do the thing", WithErrorCode(EInvalid))

	assert.Equal(t, "failed to do the thing: plain failure", outer.Error())
	assert.Equal(t, EInvalid, ErrorCode(outer))
}

func TestErrorCodeOfPlainError(t *testing.T) {
	assert.Equal(t, EInternal, ErrorCode(stderrors.New("anything")))
	assert.Equal(t, "", ErrorCode(nil))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "not for you", ErrorMessage(New("not for you", WithErrorCode(EForbidden))))
	assert.Equal(t, "An internal error has occurred.", ErrorMessage(stderrors.New("db column xyz broke")))
}
