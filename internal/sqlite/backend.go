// Package sqlite implements the SQLite storage backend for Folio. JSONL
// files in the data directory are the source of truth; the SQLite database
// is a query mirror rebuilt on every Attach.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/folio/pkg/types"
)

// dbFileName is the SQLite mirror file inside DataDir.
const dbFileName = "folio.db"

// Backend implements the Vault interface using SQLite as the query engine
// and JSONL files as the source of truth.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	shelves  map[string]types.Shelf

	syncStrategy string

	// pendingMu protects the deferred-write queue used by the on_close
	// sync strategy.
	pendingMu     sync.Mutex
	pendingWrites []pendingWrite
}

// pendingWrite is a JSONL rewrite deferred until Detach.
type pendingWrite struct {
	shelfName string
	operation string // "save" or "delete"
	persist   func() error
}

// NewBackend creates a new SQLite backend instance. The backend is not
// attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{
		shelves: make(map[string]types.Shelf),
	}
}

// GetShelf returns a Shelf for the specified shelf name.
// Returns ErrShelfNotFound if the name is not recognized and
// ErrVaultDetached if the backend is not attached.
func (b *Backend) GetShelf(name string) (types.Shelf, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrVaultDetached
	}
	shelf, ok := b.shelves[name]
	if !ok {
		return nil, types.ErrShelfNotFound
	}
	return shelf, nil
}

// Attach initializes the backend with the given configuration. Creates
// DataDir if it does not exist, recreates the SQLite mirror, initializes
// missing JSONL files, and loads them into SQLite.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	// The SQLite file is disposable; JSONL is the source of truth.
	dbPath := filepath.Join(dataDir, dbFileName)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return fmt.Errorf("creating schema: %w", err)
	}

	if err := initJSONLFiles(dataDir); err != nil {
		db.Close()
		return fmt.Errorf("init JSONL files: %w", err)
	}
	if err := loadAllJSONL(db, dataDir); err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	b.db = db
	b.config = config
	b.config.DataDir = dataDir
	b.syncStrategy = config.GetSyncStrategy()
	b.pendingWrites = nil
	b.attached = true

	b.shelves[types.DocumentsShelf] = &documentsShelf{backend: b}
	b.shelves[types.RevisionsShelf] = &revisionsShelf{backend: b}

	return nil
}

// Detach releases all resources held by the backend. For the on_close sync
// strategy, flushes pending JSONL writes before closing the SQLite
// connection. After Detach, all operations return ErrVaultDetached.
// Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if err := b.flushPendingWrites(); err != nil {
		return fmt.Errorf("flush pending writes: %w", err)
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.attached = false
	b.shelves = make(map[string]types.Shelf)
	return nil
}

// persistOrQueue runs a JSONL rewrite now for the immediate strategy, or
// queues it until Detach for on_close. Deduplicates: only the latest queued
// rewrite per shelf survives, since each rewrite dumps the whole table.
func (b *Backend) persistOrQueue(shelfName, operation string, persist func() error) error {
	if b.syncStrategy == types.SyncImmediate {
		return persist()
	}

	b.pendingMu.Lock()
	defer b.pendingMu.Unlock()
	for i := range b.pendingWrites {
		if b.pendingWrites[i].shelfName == shelfName {
			b.pendingWrites[i] = pendingWrite{shelfName, operation, persist}
			return nil
		}
	}
	b.pendingWrites = append(b.pendingWrites, pendingWrite{shelfName, operation, persist})
	return nil
}

// flushPendingWrites executes queued JSONL rewrites. Caller holds b.mu.
func (b *Backend) flushPendingWrites() error {
	b.pendingMu.Lock()
	defer b.pendingMu.Unlock()

	for _, pw := range b.pendingWrites {
		if err := pw.persist(); err != nil {
			return fmt.Errorf("flush %s %s: %w", pw.shelfName, pw.operation, err)
		}
	}
	b.pendingWrites = nil
	return nil
}

// generateUUID generates a UUID v7 for entity IDs, falling back to v4 when
// v7 generation fails.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
