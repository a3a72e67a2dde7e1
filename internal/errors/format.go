package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatForCLI formats an error for CLI output.
// Uses a concise format suitable for terminal display.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	kbe, ok := err.(*KBError)
	if !ok {
		// Wrap standard error
		kbe = Wrap(ErrCodeInternal, err)
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Error: %s\n", kbe.Message))

	if kbe.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  Hint: %s\n", kbe.Suggestion))
	}

	sb.WriteString(fmt.Sprintf("  Code: %s\n", kbe.Code))

	return sb.String()
}

// jsonError is the JSON representation of an error.
type jsonError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Category   string            `json:"category"`
	Severity   string            `json:"severity"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
}

// FormatJSON returns the error as a JSON string for machine consumption.
func FormatJSON(err error) string {
	if err == nil {
		return "{}"
	}

	kbe, ok := err.(*KBError)
	if !ok {
		kbe = Wrap(ErrCodeInternal, err)
	}

	je := jsonError{
		Code:       kbe.Code,
		Message:    kbe.Message,
		Category:   string(kbe.Category),
		Severity:   string(kbe.Severity),
		Details:    kbe.Details,
		Suggestion: kbe.Suggestion,
	}
	if kbe.Cause != nil {
		je.Cause = kbe.Cause.Error()
	}

	data, marshalErr := json.Marshal(je)
	if marshalErr != nil {
		return fmt.Sprintf(`{"code":%q,"message":%q}`, kbe.Code, kbe.Message)
	}
	return string(data)
}
