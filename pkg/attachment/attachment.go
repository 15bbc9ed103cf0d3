// Package attachment validates document uploads for leads and bids.
package attachment

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// MaxSize is the largest accepted document, in bytes.
const MaxSize int64 = 25 * 1024 * 1024

// Slot names one of the two document fields on a lead.
type Slot string

const (
	SlotTenderDocument Slot = "tender_document"
	SlotWorkingSheet   Slot = "working_sheet"
)

// Slots lists lead slots in upload order.
var Slots = []Slot{SlotTenderDocument, SlotWorkingSheet}

var allowedExtensions = []string{".pdf", ".doc", ".docx", ".xls", ".xlsx", ".png"}

var (
	ErrExtensionNotAllowed = errors.New("invalid_file_type")
	ErrTooLarge            = errors.New("file_too_large")
	ErrEmptyName           = errors.New("invalid_file_name")
	ErrUnknownSlot         = errors.New("invalid_slot")
)

// ValidationError carries the message shown to the user next to the control.
type ValidationError struct {
	Err     error
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Err }

// Extension returns the lower-cased extension of name, including the dot.
func Extension(name string) string {
	return strings.ToLower(filepath.Ext(strings.TrimSpace(name)))
}

// Allowed reports whether name has an accepted extension.
func Allowed(name string) bool {
	ext := Extension(name)
	for _, allowed := range allowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// AllowedList renders the accepted extensions for messages.
func AllowedList() string {
	return strings.Join(allowedExtensions, ", ")
}

// Validate checks a file's name and size before anything is uploaded.
func Validate(name string, size int64) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Err: ErrEmptyName, Message: "File name is required"}
	}
	if !Allowed(name) {
		return &ValidationError{
			Err:     ErrExtensionNotAllowed,
			Message: fmt.Sprintf("File type not allowed. Allowed types: %s", AllowedList()),
		}
	}
	if size > MaxSize {
		return &ValidationError{Err: ErrTooLarge, Message: "File size exceeds 25MB limit"}
	}
	return nil
}

// ParseSlot maps a route segment such as "tender-document" to a Slot.
func ParseSlot(value string) (Slot, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), "-", "_") {
	case string(SlotTenderDocument):
		return SlotTenderDocument, nil
	case string(SlotWorkingSheet):
		return SlotWorkingSheet, nil
	default:
		return "", ErrUnknownSlot
	}
}

// Path returns the route segment for s, e.g. "working-sheet".
func (s Slot) Path() string {
	return strings.ReplaceAll(string(s), "_", "-")
}

// FilePrefix is prepended to stored file names so the two slots never collide.
func (s Slot) FilePrefix() string {
	if s == SlotWorkingSheet {
		return "ws_"
	}
	return ""
}
