// Documents shelf accessor for the SQLite backend. Every mutation records a
// revision and rewrites the JSONL source of truth (immediately or on close,
// per the sync strategy).
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mesh-intelligence/folio/pkg/nested"
	"github.com/mesh-intelligence/folio/pkg/types"
)

var _ types.Shelf = (*documentsShelf)(nil)

type documentsShelf struct {
	backend *Backend
}

// pathFilterPrefix marks a Fetch filter key addressing a body key path:
// "path:server.port" matches documents whose body has that value at the
// path.
const pathFilterPrefix = "path:"

// Get retrieves a document by ID.
func (ds *documentsShelf) Get(id string) (any, error) {
	ds.backend.mu.RLock()
	defer ds.backend.mu.RUnlock()
	if !ds.backend.attached {
		return nil, types.ErrVaultDetached
	}
	if id == "" {
		return nil, types.ErrInvalidID
	}

	row := ds.backend.db.QueryRow(
		"SELECT doc_id, name, body, version, last_operation, created_at, updated_at FROM documents WHERE doc_id = ?",
		id,
	)
	d, err := hydrateDocument(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting document %s: %w", id, err)
	}
	return d, nil
}

// Set persists a document. If id is empty, generates a UUID v7 and creates
// the document at version 1. If id is provided, updates the existing
// document. Every successful Set appends a revision.
func (ds *documentsShelf) Set(id string, data any) (string, error) {
	ds.backend.mu.RLock()
	defer ds.backend.mu.RUnlock()
	if !ds.backend.attached {
		return "", types.ErrVaultDetached
	}

	d, ok := data.(*types.Document)
	if !ok {
		return "", types.ErrInvalidData
	}
	if strings.TrimSpace(d.Name) == "" {
		return "", types.ErrInvalidName
	}

	now := time.Now().UTC()
	isCreate := id == ""
	if isCreate {
		d.DocID = generateUUID()
		d.Version = 1
		d.CreatedAt = now
		d.LastOperation = types.DocOpCreate
		id = d.DocID
	} else {
		d.DocID = id
		var exists int
		err := ds.backend.db.QueryRow("SELECT 1 FROM documents WHERE doc_id = ?", id).Scan(&exists)
		if err == sql.ErrNoRows {
			return "", types.ErrNotFound
		}
		if err != nil {
			return "", fmt.Errorf("checking document existence: %w", err)
		}
	}
	d.UpdatedAt = now

	// Name uniqueness is enforced here and backstopped by the UNIQUE
	// constraint for concurrent writers.
	var dupID string
	err := ds.backend.db.QueryRow(
		"SELECT doc_id FROM documents WHERE name = ? AND doc_id != ?",
		d.Name, id,
	).Scan(&dupID)
	if err == nil {
		return "", types.ErrDuplicateName
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("checking name uniqueness: %w", err)
	}

	op := d.LastOperation
	if !types.ValidDocOp(op) {
		if isCreate {
			op = types.DocOpCreate
		} else {
			op = types.DocOpSet
		}
		d.LastOperation = op
	}

	bodyJSON, err := json.Marshal(d.Body)
	if err != nil {
		return "", fmt.Errorf("marshaling document body: %w", err)
	}

	tx, err := ds.backend.db.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	createdAtStr := d.CreatedAt.UTC().Format(time.RFC3339)
	updatedAtStr := now.Format(time.RFC3339)

	if isCreate {
		_, err = tx.Exec(
			"INSERT INTO documents (doc_id, name, body, version, last_operation, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			id, d.Name, string(bodyJSON), d.Version, op, createdAtStr, updatedAtStr,
		)
	} else {
		_, err = tx.Exec(
			"UPDATE documents SET name = ?, body = ?, version = ?, last_operation = ?, created_at = ?, updated_at = ? WHERE doc_id = ?",
			d.Name, string(bodyJSON), d.Version, op, createdAtStr, updatedAtStr, id,
		)
	}
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return "", types.ErrDuplicateName
		}
		return "", fmt.Errorf("persisting document: %w", err)
	}

	revID := generateUUID()
	_, err = tx.Exec(
		"INSERT INTO revisions (revision_id, doc_id, version, body, operation, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		revID, id, d.Version, string(bodyJSON), op, updatedAtStr,
	)
	if err != nil {
		return "", fmt.Errorf("recording revision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing transaction: %w", err)
	}

	if err := ds.backend.persistOrQueue(types.DocumentsShelf, "save", ds.persistDocuments); err != nil {
		return "", err
	}
	if err := ds.backend.persistOrQueue(types.RevisionsShelf, "save", ds.persistRevisions); err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes a document. Its revisions are retained; history outlives
// the document.
func (ds *documentsShelf) Delete(id string) error {
	ds.backend.mu.RLock()
	defer ds.backend.mu.RUnlock()
	if !ds.backend.attached {
		return types.ErrVaultDetached
	}
	if id == "" {
		return types.ErrInvalidID
	}

	res, err := ds.backend.db.Exec("DELETE FROM documents WHERE doc_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return ds.backend.persistOrQueue(types.DocumentsShelf, "delete", ds.persistDocuments)
}

// Fetch returns all documents matching the filter. Supported filter keys:
// "doc_id" and "name" (string), "version" (integer), and "path:<keypath>"
// for body value equality at a key path. An empty filter returns every
// document.
func (ds *documentsShelf) Fetch(filter map[string]any) ([]any, error) {
	ds.backend.mu.RLock()
	defer ds.backend.mu.RUnlock()
	if !ds.backend.attached {
		return nil, types.ErrVaultDetached
	}

	rows, err := ds.backend.db.Query(
		"SELECT doc_id, name, body, version, last_operation, created_at, updated_at FROM documents ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		d, err := hydrateDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating document: %w", err)
		}
		match, err := documentMatches(d, filter)
		if err != nil {
			return nil, err
		}
		if match {
			out = append(out, d)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return out, nil
}

// documentMatches applies the Fetch filter to one document.
func documentMatches(d *types.Document, filter map[string]any) (bool, error) {
	for key, want := range filter {
		if strings.HasPrefix(key, pathFilterPrefix) {
			path, err := nested.ParsePath(strings.TrimPrefix(key, pathFilterPrefix))
			if err != nil {
				return false, fmt.Errorf("%w: %v", types.ErrInvalidFilter, err)
			}
			got, ok := nested.GetIn(d.Body, path)
			if !ok || !jsonEqual(got, want) {
				return false, nil
			}
			continue
		}
		switch key {
		case "doc_id":
			s, ok := want.(string)
			if !ok {
				return false, types.ErrInvalidFilter
			}
			if d.DocID != s {
				return false, nil
			}
		case "name":
			s, ok := want.(string)
			if !ok {
				return false, types.ErrInvalidFilter
			}
			if d.Name != s {
				return false, nil
			}
		case "version":
			v, ok := asInt64(want)
			if !ok {
				return false, types.ErrInvalidFilter
			}
			if d.Version != v {
				return false, nil
			}
		default:
			return false, fmt.Errorf("%w: unknown filter key %q", types.ErrInvalidFilter, key)
		}
	}
	return true, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func hydrateDocument(row rowScanner) (*types.Document, error) {
	var (
		d         types.Document
		bodyJSON  string
		createdAt string
		updatedAt string
	)
	err := row.Scan(&d.DocID, &d.Name, &bodyJSON, &d.Version, &d.LastOperation, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(bodyJSON), &d.Body); err != nil {
		return nil, fmt.Errorf("unmarshaling document body: %w", err)
	}
	d.CreatedAt = parseTime(createdAt)
	d.UpdatedAt = parseTime(updatedAt)
	return &d, nil
}

// persistDocuments dumps the documents table to documents.jsonl atomically.
func (ds *documentsShelf) persistDocuments() error {
	rows, err := ds.backend.db.Query(
		"SELECT doc_id, name, body, version, last_operation, created_at, updated_at FROM documents ORDER BY doc_id",
	)
	if err != nil {
		return fmt.Errorf("querying documents for persist: %w", err)
	}
	defer rows.Close()

	var records []documentJSON
	for rows.Next() {
		d, err := hydrateDocument(rows)
		if err != nil {
			return fmt.Errorf("hydrating document for persist: %w", err)
		}
		records = append(records, documentToJSON(d))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating documents for persist: %w", err)
	}

	raw, err := marshalRecords(records)
	if err != nil {
		return err
	}
	return writeJSONL(filepath.Join(ds.backend.config.DataDir, documentsFile), raw)
}

// persistRevisions dumps the revisions table to revisions.jsonl atomically.
func (ds *documentsShelf) persistRevisions() error {
	return persistRevisionsJSONL(ds.backend)
}

// jsonEqual compares two values through their JSON encodings, normalizing
// numeric types (JSON decoding yields float64 where callers may pass int).
func jsonEqual(a, b any) bool {
	aj, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bj, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(aj) == string(bj)
}

// asInt64 converts the integer types a filter may carry.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
