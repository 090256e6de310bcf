package errors

import (
	stderrors "errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCode_String(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{SyntaxErrorCode, "SyntaxError"},
		{ValidationErrorCode, "ValidationError"},
		{GenerationErrorCode, "GenerationError"},
		{TemplateErrorCode, "TemplateError"},
		{FileSystemErrorCode, "FileSystemError"},
		{ConfigurationErrorCode, "ConfigurationError"},
		{ConflictErrorCode, "ConflictError"},
		{ErrorCode(99), "UnknownError"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.code.String())
	}
}

func TestBaseError_Error(t *testing.T) {
	err := New(SyntaxErrorCode, "unexpected token")
	assert.Equal(t, "unexpected token", err.Error())

	err.WithLocation(SourceLocation{File: "a.cs", Line: 3, Column: 7})
	assert.Equal(t, "a.cs:3:7: unexpected token", err.Error())

	wrapped := Wrap(FileSystemErrorCode, "failed to read", fs.ErrNotExist)
	assert.Equal(t, "failed to read: file does not exist", wrapped.Error())
}

func TestWrap_PreservesChain(t *testing.T) {
	err := WrapFileSystemError("read", "a.cs", fs.ErrNotExist)

	assert.True(t, Is(err, fs.ErrNotExist))
	assert.True(t, stderrors.Is(err, fs.ErrNotExist))
	assert.Equal(t, FileSystemErrorCode, CodeOf(err))
	assert.Equal(t, "read", err.Context()["operation"])
	assert.Equal(t, "a.cs", err.Context()["path"])
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, UnknownErrorCode, CodeOf(Plain("boom")))

	inner := ConflictError(SourceLocation{File: "x.cs"}, "duplicate %s", "IService")
	outer := Errorf("while generating: %w", inner)
	assert.Equal(t, ConflictErrorCode, CodeOf(outer))
}

func TestSuggestions_IncludeCauseHints(t *testing.T) {
	cause := WithHint(Plain("bad version"), "Use a semantic version")
	err := Wrap(ConfigurationErrorCode, "invalid config", cause).
		WithSuggestion("Check .autoiface.yaml")

	assert.Equal(t, []string{"Check .autoiface.yaml", "Use a semantic version"}, err.Suggestions())
}

func TestBaseError_Builders(t *testing.T) {
	err := Newf(ValidationErrorCode, "bad %s", "value").
		WithContext("key", 1).
		WithSuggestions("one", "two").
		WithCause(fs.ErrPermission)

	assert.Equal(t, ValidationErrorCode, err.ErrorCode())
	assert.Equal(t, 1, err.Context()["key"])
	assert.Len(t, err.Hints, 2)
	assert.Equal(t, fs.ErrPermission, err.Unwrap())
	assert.NotNil(t, New(UnknownErrorCode, "x").Context())
}

func TestMultipleErrors(t *testing.T) {
	var multi *MultipleErrors
	assert.Nil(t, multi.ErrOrNil())

	AddToMultiple(&multi, SyntaxError(SourceLocation{File: "a.cs", Line: 1}, "first"))
	AddToMultiple(&multi, ConflictError(SourceLocation{}, "second").WithSuggestion("rename"))

	require.Equal(t, 2, multi.Count())
	assert.True(t, multi.HasCode(ConflictErrorCode))
	assert.False(t, multi.HasCode(TemplateErrorCode))
	assert.Equal(t, SyntaxErrorCode, multi.ErrorCode())
	assert.Equal(t, "a.cs", multi.Location().File)
	assert.Equal(t, []string{"rename"}, multi.Suggestions())
	assert.Equal(t, "2 errors:\n  a.cs:1: first\n  second", multi.Error())
	assert.Equal(t, 2, multi.Context()["count"])
	assert.Equal(t, []string{"a.cs"}, multi.Context()["files"])
	assert.Error(t, multi.ErrOrNil())
}

func TestStackTrace(t *testing.T) {
	err := WrapParseError("file a.cs", Plain("unexpected EOF"))
	assert.Contains(t, StackTrace(err), "unexpected EOF")
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("contract.indent", 0, "must be between 1 and 16").
		WithSuggestion("Set contract.indent in .autoiface.yaml")

	assert.Equal(t, ValidationErrorCode, CodeOf(err))
	assert.Equal(t, "contract.indent", err.Context()["field"])
	assert.Equal(t, "validation failed for field 'contract.indent': must be between 1 and 16", err.Error())
	assert.Equal(t, []string{"Set contract.indent in .autoiface.yaml"}, err.Suggestions())
}
