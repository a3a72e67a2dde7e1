// Package mcp implements the Model Context Protocol (MCP) server for dockb.
package mcp

import (
	"fmt"

	kberrors "github.com/dockb/dockb/internal/errors"
)

// Custom MCP error codes for dockb.
const (
	// ErrCodeDocumentNotFound indicates the requested document does not exist.
	ErrCodeDocumentNotFound = -32001

	// ErrCodeStorageFault indicates an index storage failure.
	ErrCodeStorageFault = -32002

	// Standard JSON-RPC error codes.
	ErrCodeInvalidParams = -32602
	ErrCodeInternalError = -32603
)

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// NewInvalidParamsError creates an invalid-params MCP error.
func NewInvalidParamsError(message string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: message}
}

// NewDocumentNotFoundError creates a document-not-found MCP error.
func NewDocumentNotFoundError(category, path string) *MCPError {
	return &MCPError{
		Code:    ErrCodeDocumentNotFound,
		Message: fmt.Sprintf("document not found: %s/%s", category, path),
	}
}

// MapError converts internal errors to MCP errors by category.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}
	if me, ok := err.(*MCPError); ok {
		return me
	}

	switch kberrors.CategoryOf(err) {
	case kberrors.CategoryValidation:
		return &MCPError{Code: ErrCodeInvalidParams, Message: err.Error()}
	case kberrors.CategoryStorage:
		return &MCPError{Code: ErrCodeStorageFault, Message: err.Error()}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: err.Error()}
	}
}
