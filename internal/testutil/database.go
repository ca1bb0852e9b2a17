// Package testutil provides shared fixtures for tests that need a working
// engine or audit log.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/kharcha/internal/engine"
	"github.com/Veraticus/kharcha/internal/locale"
	"github.com/Veraticus/kharcha/internal/storage"
)

// Lunchtime is a fixed clock inside the lunch meal window.
func Lunchtime() time.Time {
	return time.Date(2026, time.March, 3, 13, 0, 0, 0, time.UTC)
}

// SetupAuditDB creates a migrated audit log in a temp directory. It is
// closed when the test ends.
func SetupAuditDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	db, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close test database: %v", err)
		}
	})

	return db
}

// NewEngine builds an engine over the built-in locale pack with the
// Lunchtime clock. ai and recorder may be nil.
func NewEngine(t *testing.T, ai engine.AIExtractor, recorder engine.Recorder) *engine.Engine {
	t.Helper()

	eng, err := engine.New(locale.NewStore(locale.MustDefault(), nil), ai, engine.Config{
		Clock:    Lunchtime,
		Recorder: recorder,
	})
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	return eng
}
