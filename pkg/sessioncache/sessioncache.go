// Package sessioncache keys uploaded workbooks and generated reports by
// session ID so the validation and finalize stages can run independently for
// concurrent users.
package sessioncache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no entry exists for the session and slot.
var ErrNotFound = errors.New("sessioncache: entry not found")

// Well-known slots within a session.
const (
	SlotValidationFile   = "validation_file"
	SlotValidationReport = "validation_report"
	SlotTagReport        = "tag_report"
)

// Entry is a cached file with its original name.
type Entry struct {
	Filename string `json:"filename"`
	Data     []byte `json:"data"`
}

// Store holds per-session byte blobs with a TTL.
type Store interface {
	Put(ctx context.Context, sessionID, slot string, entry Entry, ttl time.Duration) error
	Get(ctx context.Context, sessionID, slot string) (Entry, error)
	Delete(ctx context.Context, sessionID, slot string) error
}
