// Package errors provides structured error handling for dockb.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Document store errors (read, stat, list)
//   - 3XX: Index storage errors
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryDocStore indicates document store I/O errors.
	CategoryDocStore Category = "DOCSTORE"
	// CategoryStorage indicates index storage errors.
	CategoryStorage Category = "STORAGE"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Document store errors (200-299)
	ErrCodeDocNotFound    = "ERR_201_DOC_NOT_FOUND"
	ErrCodeDocRead        = "ERR_202_DOC_READ"
	ErrCodeDocStat        = "ERR_203_DOC_STAT"
	ErrCodeDocList        = "ERR_204_DOC_LIST"
	ErrCodeDocWrite       = "ERR_205_DOC_WRITE"
	ErrCodeDocFrontmatter = "ERR_206_DOC_FRONTMATTER"

	// Index storage errors (300-399)
	ErrCodeStorageOpen    = "ERR_301_STORAGE_OPEN"
	ErrCodeStorageUpsert  = "ERR_302_STORAGE_UPSERT"
	ErrCodeStorageRemove  = "ERR_303_STORAGE_REMOVE"
	ErrCodeStorageQuery   = "ERR_304_STORAGE_QUERY"
	ErrCodeStorageCorrupt = "ERR_305_STORAGE_CORRUPT"
	ErrCodeStorageClosed  = "ERR_306_STORAGE_CLOSED"

	// Validation errors (400-499)
	ErrCodeInvalidInput    = "ERR_401_INVALID_INPUT"
	ErrCodeInvalidCategory = "ERR_402_INVALID_CATEGORY"
	ErrCodeInvalidPath     = "ERR_403_INVALID_PATH"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// categoryFromCode derives the error category from the code prefix.
func categoryFromCode(code string) Category {
	if len(code) < 5 {
		return CategoryInternal
	}
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryDocStore
	case '3':
		return CategoryStorage
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode derives the default severity from the code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeStorageCorrupt, ErrCodeStorageOpen:
		return SeverityFatal
	case ErrCodeDocNotFound:
		return SeverityWarning
	default:
		return SeverityError
	}
}
