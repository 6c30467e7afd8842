package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

func TestParseID(t *testing.T) {
	id := NewID()
	parsed, err := ParseID("  " + id.String() + " ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != id {
		t.Errorf("Expected %s, got %s", id, parsed)
	}

	for _, bad := range []string{"", "   ", "not-a-uuid"} {
		if _, err := ParseID(bad); !errors.Is(err, ErrInvalidData) {
			t.Errorf("ParseID(%q): expected ErrInvalidData, got %v", bad, err)
		}
	}
}

func TestErrorHelpers(t *testing.T) {
	if !IsNotFoundError(NewColumnNotFoundError("age")) {
		t.Error("column not found should be a not-found error")
	}
	if !IsDataError(NewInvalidIndexError(3, 2)) {
		t.Error("invalid index should be a data error")
	}
	if !IsDataError(ErrSingularMatrix) {
		t.Error("singular matrix should be a data error")
	}
	if IsDataError(ErrTypeMismatch) {
		t.Error("type mismatch is not a data error")
	}
}
