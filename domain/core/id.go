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
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
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
	SnapshotID  ID
	VariableKey ID
)

// String conversions for domain IDs
func (id SnapshotID) String() string  { return ID(id).String() }
func (id VariableKey) String() string { return ID(id).String() }

// NewSnapshotID creates a time-ordered snapshot identifier
func NewSnapshotID() SnapshotID {
	return SnapshotID(NewID())
}

// ParseSnapshotID parses a string into SnapshotID
func ParseSnapshotID(s string) (SnapshotID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("snapshot ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("snapshot ID %q is not a UUID: %w", s, err)
	}
	return SnapshotID(s), nil
}

// ParseVariableKey parses a string into VariableKey
func ParseVariableKey(s string) (VariableKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("variable key cannot be empty")
	}
	return VariableKey(s), nil
}

// KeyStrings converts variable keys to plain strings, preserving order
func KeyStrings(keys []VariableKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}
