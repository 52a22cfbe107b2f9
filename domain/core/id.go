package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	EventID   ID
	PuzzleID  ID
	AttemptID ID
	UserID    ID
)

// String conversions for domain IDs
func (id EventID) String() string   { return ID(id).String() }
func (id PuzzleID) String() string  { return ID(id).String() }
func (id AttemptID) String() string { return ID(id).String() }
func (id UserID) String() string    { return ID(id).String() }

// ParseEventID parses a string into EventID
func ParseEventID(s string) (EventID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("event ID cannot be empty")
	}
	return EventID(s), nil
}

// ParsePuzzleID parses a string into PuzzleID
func ParsePuzzleID(s string) (PuzzleID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("puzzle ID cannot be empty")
	}
	return PuzzleID(s), nil
}

// ParseUserID parses a string into UserID
func ParseUserID(s string) (UserID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("user ID cannot be empty")
	}
	return UserID(s), nil
}
