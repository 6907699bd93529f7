package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	// StorageEventName is the frontend channel for document changes.
	StorageEventName = "events:storage"
	// NoticeEventName is the frontend channel for settings toasts.
	NoticeEventName = "events:settings:notice"
)

// StorageEvent announces that a preference document was written. NewValue is
// informational: listeners re-read the store rather than trusting it, since
// another process may have written the same key since.
type StorageEvent struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	NewValue  string    `json:"newValue"`
	Timestamp time.Time `json:"timestamp"`
}

func NewStorageEvent(key, newValue string) StorageEvent {
	return StorageEvent{
		ID:        uuid.NewString(),
		Key:       key,
		NewValue:  newValue,
		Timestamp: time.Now(),
	}
}
