// Integration tests for key-path operations through the storage layer:
// assoc/dissoc/update at paths survive a full persist-and-reload cycle, and
// every mutation appends a revision.
package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/folio/internal/sqlite"
	"github.com/mesh-intelligence/folio/pkg/nested"
	"github.com/mesh-intelligence/folio/pkg/types"
)

func TestPathOperationsPersistAcrossReattach(t *testing.T) {
	dir := t.TempDir()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))

	docs, err := b.GetShelf(types.DocumentsShelf)
	require.NoError(t, err)

	id, err := docs.Set("", &types.Document{Name: "app", Body: map[string]any{}})
	require.NoError(t, err)

	// assoc-in creates intermediate maps.
	got, err := docs.Get(id)
	require.NoError(t, err)
	doc := got.(*types.Document)
	require.NoError(t, doc.AssocIn(nested.Path{"server", "tls", "enabled"}, true))
	_, err = docs.Set(id, doc)
	require.NoError(t, err)

	// update-in works on an absent path.
	got, err = docs.Get(id)
	require.NoError(t, err)
	doc = got.(*types.Document)
	require.NoError(t, doc.UpdateIn(nested.Path{"stats", "visits"}, func(old any) any {
		if old == nil {
			return 1.0
		}
		return old.(float64) + 1
	}))
	_, err = docs.Set(id, doc)
	require.NoError(t, err)

	// dissoc-in removes a nested key.
	got, err = docs.Get(id)
	require.NoError(t, err)
	doc = got.(*types.Document)
	require.NoError(t, doc.DissocIn(nested.Path{"server", "tls"}))
	_, err = docs.Set(id, doc)
	require.NoError(t, err)

	require.NoError(t, b.Detach())

	// Reattach and verify the final shape.
	b2 := sqlite.NewBackend()
	require.NoError(t, b2.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	defer b2.Detach()

	docs2, err := b2.GetShelf(types.DocumentsShelf)
	require.NoError(t, err)
	got, err = docs2.Get(id)
	require.NoError(t, err)
	doc = got.(*types.Document)

	assert.Equal(t, int64(4), doc.Version)

	visits, ok := doc.GetIn(nested.Path{"stats", "visits"})
	require.True(t, ok)
	assert.Equal(t, float64(1), visits)

	_, ok = doc.GetIn(nested.Path{"server", "tls"})
	assert.False(t, ok, "dissoc'd path should be gone")

	// server survives as an empty map after its only child was removed.
	server, ok := doc.GetIn(nested.Path{"server"})
	require.True(t, ok)
	assert.Empty(t, server)

	// Four revisions: create, assoc, update, dissoc.
	revs, err := b2.GetShelf(types.RevisionsShelf)
	require.NoError(t, err)
	history, err := revs.Fetch(map[string]any{"doc_id": id})
	require.NoError(t, err)
	require.Len(t, history, 4)

	ops := make([]string, len(history))
	for i, entry := range history {
		ops[i] = entry.(*types.Revision).Operation
	}
	assert.Equal(t, []string{
		types.DocOpCreate, types.DocOpAssoc, types.DocOpUpdate, types.DocOpDissoc,
	}, ops)
}

func TestRevisionBodiesAreSnapshots(t *testing.T) {
	backend, _ := newAttachedBackend(t)
	defer backend.Detach()

	docs, err := backend.GetShelf(types.DocumentsShelf)
	require.NoError(t, err)
	revs, err := backend.GetShelf(types.RevisionsShelf)
	require.NoError(t, err)

	id, err := docs.Set("", &types.Document{Name: "snap", Body: map[string]any{"n": 1}})
	require.NoError(t, err)

	got, err := docs.Get(id)
	require.NoError(t, err)
	doc := got.(*types.Document)
	require.NoError(t, doc.AssocIn(nested.Path{"n"}, 2))
	_, err = docs.Set(id, doc)
	require.NoError(t, err)

	history, err := revs.Fetch(map[string]any{"doc_id": id})
	require.NoError(t, err)
	require.Len(t, history, 2)

	// The first revision keeps the original body.
	assert.Equal(t, float64(1), history[0].(*types.Revision).Body["n"])
	assert.Equal(t, float64(2), history[1].(*types.Revision).Body["n"])
}

func TestFetchByBodyPath(t *testing.T) {
	backend, _ := newAttachedBackend(t)
	defer backend.Detach()

	docs, err := backend.GetShelf(types.DocumentsShelf)
	require.NoError(t, err)

	for _, seed := range []struct {
		name string
		env  string
	}{
		{"api", "prod"}, {"worker", "prod"}, {"sandbox", "dev"},
	} {
		_, err := docs.Set("", &types.Document{
			Name: seed.name,
			Body: map[string]any{"deploy": map[string]any{"env": seed.env}},
		})
		require.NoError(t, err)
	}

	matches, err := docs.Fetch(map[string]any{"path:deploy.env": "prod"})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	names := []string{
		matches[0].(*types.Document).Name,
		matches[1].(*types.Document).Name,
	}
	assert.ElementsMatch(t, []string{"api", "worker"}, names)
}
