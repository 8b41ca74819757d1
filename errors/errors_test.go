package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClass_String(t *testing.T) {
	assert.Equal(t, "invalid", ErrorInvalid.String())
	assert.Equal(t, "fatal", ErrorFatal.String())
	assert.Equal(t, "unknown", ErrorClass(99).String())
}

func TestWrap_Format(t *testing.T) {
	err := Wrap(ErrMissingField, "Codec", "Decode", "field extraction")
	require.Error(t, err)
	assert.Equal(t, "Codec.Decode: field extraction failed: missing field", err.Error())
	assert.True(t, stderrors.Is(err, ErrMissingField))
}

func TestWrap_NilError(t *testing.T) {
	assert.NoError(t, Wrap(nil, "Codec", "Decode", "anything"))
	assert.NoError(t, WrapInvalid(nil, "Codec", "Decode", "anything"))
	assert.NoError(t, WrapFatal(nil, "Registry", "Register", "anything"))
}

func TestWrapInvalid_Classification(t *testing.T) {
	err := WrapInvalid(ErrUnknownType, "Registry", "Resolve", "tag lookup")

	var ce *ClassifiedError
	require.True(t, stderrors.As(err, &ce))
	assert.Equal(t, ErrorInvalid, ce.Class)
	assert.Equal(t, "Registry", ce.Component)
	assert.Equal(t, "Resolve", ce.Operation)

	assert.True(t, IsInvalid(err))
	assert.False(t, IsFatal(err))
	assert.True(t, stderrors.Is(err, ErrUnknownType))
}

func TestWrapFatal_Classification(t *testing.T) {
	err := WrapFatal(ErrDuplicateType, "Registry", "Register", "duplicate check")

	assert.True(t, IsFatal(err))
	assert.False(t, IsInvalid(err))
	assert.True(t, stderrors.Is(err, ErrDuplicateType))
	assert.Equal(t, ErrorFatal, Classify(err))
}

func TestIsInvalid_Sentinels(t *testing.T) {
	for _, err := range []error{
		ErrMalformedInput,
		ErrMissingTypeTag,
		ErrUnknownType,
		ErrMissingField,
		ErrWrongFieldKind,
		ErrIllegalStatus,
	} {
		assert.True(t, IsInvalid(err), "expected %v to classify as invalid", err)
		assert.False(t, IsFatal(err), "expected %v not to classify as fatal", err)
	}
}

func TestIsFatal_Sentinels(t *testing.T) {
	for _, err := range []error{ErrDuplicateType, ErrInvalidConfig, ErrMissingConfig} {
		assert.True(t, IsFatal(err), "expected %v to classify as fatal", err)
	}
}

func TestNilChecks(t *testing.T) {
	assert.False(t, IsInvalid(nil))
	assert.False(t, IsFatal(nil))
}

func TestClassify_UnknownDefaultsToInvalid(t *testing.T) {
	assert.Equal(t, ErrorInvalid, Classify(stderrors.New("some random error")))
}
