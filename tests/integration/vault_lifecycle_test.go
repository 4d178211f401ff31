// Package integration tests the SQLite backend through the Vault and Shelf
// interfaces: the full Attach → CRUD → Detach lifecycle, UUID generation,
// JSONL persistence round-trips, and revision recording.
package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/folio/internal/sqlite"
	"github.com/mesh-intelligence/folio/pkg/types"
)

// newAttachedBackend creates a backend attached to a temp directory.
func newAttachedBackend(t *testing.T) (*sqlite.Backend, string) {
	t.Helper()
	dir := t.TempDir()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	return b, dir
}

// readJSONLFile parses every line of a JSONL file into a map.
func readJSONLFile(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var records []map[string]any
	for _, line := range splitLines(data) {
		if len(line) == 0 {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal(line, &rec))
		records = append(records, rec)
	}
	return records
}

func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			lines = append(lines, data[start:i])
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines
}

func TestCreateDocumentGeneratesUUIDv7(t *testing.T) {
	backend, _ := newAttachedBackend(t)
	defer backend.Detach()

	docs, err := backend.GetShelf(types.DocumentsShelf)
	require.NoError(t, err)

	id, err := docs.Set("", &types.Document{Name: "settings", Body: map[string]any{"a": 1}})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())

	got, err := docs.Get(id)
	require.NoError(t, err)
	doc := got.(*types.Document)
	assert.Equal(t, "settings", doc.Name)
	assert.Equal(t, int64(1), doc.Version)
	assert.Equal(t, types.DocOpCreate, doc.LastOperation)
}

func TestCreatedDocumentPersistsToJSONL(t *testing.T) {
	backend, dataDir := newAttachedBackend(t)
	defer backend.Detach()

	docs, err := backend.GetShelf(types.DocumentsShelf)
	require.NoError(t, err)

	id, err := docs.Set("", &types.Document{Name: "persisted", Body: map[string]any{"k": "v"}})
	require.NoError(t, err)

	records := readJSONLFile(t, filepath.Join(dataDir, "documents.jsonl"))
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0]["doc_id"])
	assert.Equal(t, "persisted", records[0]["name"])

	body, ok := records[0]["body"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "v", body["k"])
}

func TestJSONLSurvivesDatabaseDeletion(t *testing.T) {
	dir := t.TempDir()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))

	docs, err := b.GetShelf(types.DocumentsShelf)
	require.NoError(t, err)
	id, err := docs.Set("", &types.Document{Name: "durable", Body: map[string]any{"n": 42}})
	require.NoError(t, err)
	require.NoError(t, b.Detach())

	// JSONL is the source of truth; the SQLite mirror is disposable.
	require.NoError(t, os.Remove(filepath.Join(dir, "folio.db")))

	b2 := sqlite.NewBackend()
	require.NoError(t, b2.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	defer b2.Detach()

	docs2, err := b2.GetShelf(types.DocumentsShelf)
	require.NoError(t, err)
	got, err := docs2.Get(id)
	require.NoError(t, err)
	doc := got.(*types.Document)
	assert.Equal(t, "durable", doc.Name)
	assert.Equal(t, float64(42), doc.Body["n"])

	revs, err := b2.GetShelf(types.RevisionsShelf)
	require.NoError(t, err)
	history, err := revs.Fetch(map[string]any{"doc_id": id})
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestDetachFlushesOnCloseStrategy(t *testing.T) {
	dir := t.TempDir()
	b := sqlite.NewBackend()
	cfg := types.Config{
		Backend:      types.BackendSQLite,
		DataDir:      dir,
		SyncStrategy: types.SyncOnClose,
	}
	require.NoError(t, b.Attach(cfg))

	docs, err := b.GetShelf(types.DocumentsShelf)
	require.NoError(t, err)
	_, err = docs.Set("", &types.Document{Name: "deferred"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "documents.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, data, "writes should be deferred until Detach")

	require.NoError(t, b.Detach())

	records := readJSONLFile(t, filepath.Join(dir, "documents.jsonl"))
	assert.Len(t, records, 1)
}
