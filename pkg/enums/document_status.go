package enums

import "fmt"

// DocumentStatus is the lifecycle of a sale or purchase document.
// Cancellation is terminal; edited documents stay live.
type DocumentStatus string

const (
	DocumentStatusActive    DocumentStatus = "active"
	DocumentStatusEdited    DocumentStatus = "edited"
	DocumentStatusCancelled DocumentStatus = "cancelled"
)

var validDocumentStatuses = []DocumentStatus{
	DocumentStatusActive,
	DocumentStatusEdited,
	DocumentStatusCancelled,
}

// String implements fmt.Stringer.
func (s DocumentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DocumentStatus.
func (s DocumentStatus) IsValid() bool {
	for _, candidate := range validDocumentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDocumentStatus converts raw input into a DocumentStatus.
func ParseDocumentStatus(value string) (DocumentStatus, error) {
	for _, candidate := range validDocumentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid document status %q", value)
}
