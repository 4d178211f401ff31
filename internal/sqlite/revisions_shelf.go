// Revisions shelf accessor. The shelf is read-only: revisions are written
// as a side effect of document mutations and never updated or deleted.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/mesh-intelligence/folio/pkg/types"
)

var _ types.Shelf = (*revisionsShelf)(nil)

type revisionsShelf struct {
	backend *Backend
}

// Get retrieves a revision by ID.
func (rs *revisionsShelf) Get(id string) (any, error) {
	rs.backend.mu.RLock()
	defer rs.backend.mu.RUnlock()
	if !rs.backend.attached {
		return nil, types.ErrVaultDetached
	}
	if id == "" {
		return nil, types.ErrInvalidID
	}

	row := rs.backend.db.QueryRow(
		"SELECT revision_id, doc_id, version, body, operation, created_at FROM revisions WHERE revision_id = ?",
		id,
	)
	r, err := hydrateRevision(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting revision %s: %w", id, err)
	}
	return r, nil
}

// Set is not supported; revisions are recorded by document mutations.
func (rs *revisionsShelf) Set(id string, data any) (string, error) {
	return "", types.ErrReadOnlyShelf
}

// Delete is not supported; revision history is append-only.
func (rs *revisionsShelf) Delete(id string) error {
	return types.ErrReadOnlyShelf
}

// Fetch returns revisions matching the filter, ordered by version.
// Supported filter keys: "doc_id" and "operation" (string).
func (rs *revisionsShelf) Fetch(filter map[string]any) ([]any, error) {
	rs.backend.mu.RLock()
	defer rs.backend.mu.RUnlock()
	if !rs.backend.attached {
		return nil, types.ErrVaultDetached
	}

	query := "SELECT revision_id, doc_id, version, body, operation, created_at FROM revisions"
	var (
		clauses []string
		args    []any
	)
	for key, want := range filter {
		switch key {
		case "doc_id":
			s, ok := want.(string)
			if !ok {
				return nil, types.ErrInvalidFilter
			}
			clauses = append(clauses, "doc_id = ?")
			args = append(args, s)
		case "operation":
			s, ok := want.(string)
			if !ok {
				return nil, types.ErrInvalidFilter
			}
			clauses = append(clauses, "operation = ?")
			args = append(args, s)
		default:
			return nil, fmt.Errorf("%w: unknown filter key %q", types.ErrInvalidFilter, key)
		}
	}
	for i, c := range clauses {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY doc_id, version"

	rows, err := rs.backend.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying revisions: %w", err)
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		r, err := hydrateRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating revision: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating revisions: %w", err)
	}
	return out, nil
}

func hydrateRevision(row rowScanner) (*types.Revision, error) {
	var (
		r         types.Revision
		bodyJSON  string
		createdAt string
	)
	err := row.Scan(&r.RevisionID, &r.DocID, &r.Version, &bodyJSON, &r.Operation, &createdAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(bodyJSON), &r.Body); err != nil {
		return nil, fmt.Errorf("unmarshaling revision body: %w", err)
	}
	r.CreatedAt = parseTime(createdAt)
	return &r, nil
}

// persistRevisionsJSONL dumps the revisions table to revisions.jsonl
// atomically.
func persistRevisionsJSONL(b *Backend) error {
	rows, err := b.db.Query(
		"SELECT revision_id, doc_id, version, body, operation, created_at FROM revisions ORDER BY doc_id, version",
	)
	if err != nil {
		return fmt.Errorf("querying revisions for persist: %w", err)
	}
	defer rows.Close()

	var records []revisionJSON
	for rows.Next() {
		r, err := hydrateRevision(rows)
		if err != nil {
			return fmt.Errorf("hydrating revision for persist: %w", err)
		}
		records = append(records, revisionToJSON(r))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating revisions for persist: %w", err)
	}

	raw, err := marshalRecords(records)
	if err != nil {
		return err
	}
	return writeJSONL(filepath.Join(b.config.DataDir, revisionsFile), raw)
}
