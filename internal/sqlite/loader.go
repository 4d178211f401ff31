// JSONL loading for startup. The SQLite mirror starts empty on every Attach
// and is repopulated from the JSONL files here.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
)

// loadAllJSONL reads the JSONL files from DataDir and inserts records into
// the SQLite mirror. Loading is transactional: all succeed or the database
// remains empty. Malformed lines were already skipped by readJSONL; unknown
// JSON fields are ignored for forward compatibility.
func loadAllJSONL(db *sql.DB, dataDir string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	if err := loadDocuments(tx, filepath.Join(dataDir, documentsFile)); err != nil {
		return fmt.Errorf("loading %s: %w", documentsFile, err)
	}
	if err := loadRevisions(tx, filepath.Join(dataDir, revisionsFile)); err != nil {
		return fmt.Errorf("loading %s: %w", revisionsFile, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}

func loadDocuments(tx *sql.Tx, path string) error {
	records, err := readJSONL(path)
	if err != nil {
		return err
	}
	for _, raw := range records {
		var rec documentJSON
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		body, err := json.Marshal(rec.Body)
		if err != nil {
			continue
		}
		_, err = tx.Exec(
			"INSERT INTO documents (doc_id, name, body, version, last_operation, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			rec.DocID, rec.Name, string(body), rec.Version, rec.LastOperation, rec.CreatedAt, rec.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting document %s: %w", rec.DocID, err)
		}
	}
	return nil
}

func loadRevisions(tx *sql.Tx, path string) error {
	records, err := readJSONL(path)
	if err != nil {
		return err
	}
	for _, raw := range records {
		var rec revisionJSON
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		body, err := json.Marshal(rec.Body)
		if err != nil {
			continue
		}
		_, err = tx.Exec(
			"INSERT INTO revisions (revision_id, doc_id, version, body, operation, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			rec.RevisionID, rec.DocID, rec.Version, string(body), rec.Operation, rec.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting revision %s: %w", rec.RevisionID, err)
		}
	}
	return nil
}
