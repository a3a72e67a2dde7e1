package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DerivesCategoryAndSeverity(t *testing.T) {
	err := New(ErrCodeStorageUpsert, "write failed", nil)

	assert.Equal(t, ErrCodeStorageUpsert, err.Code)
	assert.Equal(t, CategoryStorage, err.Category)
	assert.Equal(t, SeverityError, err.Severity)
	assert.Equal(t, "[ERR_302_STORAGE_UPSERT] write failed", err.Error())
}

func TestCategoryFromCode(t *testing.T) {
	assert.Equal(t, CategoryConfig, categoryFromCode(ErrCodeConfigInvalid))
	assert.Equal(t, CategoryDocStore, categoryFromCode(ErrCodeDocRead))
	assert.Equal(t, CategoryStorage, categoryFromCode(ErrCodeStorageQuery))
	assert.Equal(t, CategoryValidation, categoryFromCode(ErrCodeInvalidPath))
	assert.Equal(t, CategoryInternal, categoryFromCode(ErrCodeInternal))
	assert.Equal(t, CategoryInternal, categoryFromCode("bad"))
}

func TestWrap_RetainsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(ErrCodeStorageUpsert, cause)

	require.NotNil(t, err)
	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
}

func TestWrap_NilErrorReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeStorageUpsert, nil))
	assert.Nil(t, Wrapf(ErrCodeStorageUpsert, nil, "context"))
}

func TestWrapf_FormatsMessage(t *testing.T) {
	cause := errors.New("no such file")
	err := Wrapf(ErrCodeDocRead, cause, "failed to read %s/%s", "reference-doc", "go/errors.md")

	assert.Contains(t, err.Message, "failed to read reference-doc/go/errors.md")
	assert.Contains(t, err.Message, "no such file")
}

func TestIs_MatchesByCode(t *testing.T) {
	err := Newf(ErrCodeStorageClosed, "index is closed")
	wrapped := fmt.Errorf("during search: %w", err)

	assert.True(t, errors.Is(wrapped, Newf(ErrCodeStorageClosed, "any message")))
	assert.False(t, errors.Is(wrapped, Newf(ErrCodeStorageOpen, "any message")))
}

func TestCodeOf_WalksChain(t *testing.T) {
	err := Newf(ErrCodeDocFrontmatter, "bad yaml")
	wrapped := fmt.Errorf("outer: %w", err)

	assert.Equal(t, ErrCodeDocFrontmatter, CodeOf(wrapped))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
	assert.Equal(t, CategoryDocStore, CategoryOf(wrapped))
	assert.Equal(t, CategoryInternal, CategoryOf(errors.New("plain")))
}

func TestWithDetailAndSuggestion(t *testing.T) {
	err := Newf(ErrCodeConfigInvalid, "bad workers value").
		WithDetail("field", "scanner.workers").
		WithSuggestion("set scanner.workers to a positive integer")

	assert.Equal(t, "scanner.workers", err.Details["field"])
	assert.Equal(t, "set scanner.workers to a positive integer", err.Suggestion)
}
