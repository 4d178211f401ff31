// JSON record structures defining the JSONL file format, and conversions
// between records and entity types.
package sqlite

import (
	"time"

	"github.com/mesh-intelligence/folio/pkg/types"
)

// documentJSON represents a document in documents.jsonl.
type documentJSON struct {
	DocID         string         `json:"doc_id"`
	Name          string         `json:"name"`
	Body          map[string]any `json:"body"`
	Version       int64          `json:"version"`
	LastOperation string         `json:"last_operation"`
	CreatedAt     string         `json:"created_at"`
	UpdatedAt     string         `json:"updated_at"`
}

// revisionJSON represents a revision in revisions.jsonl.
type revisionJSON struct {
	RevisionID string         `json:"revision_id"`
	DocID      string         `json:"doc_id"`
	Version    int64          `json:"version"`
	Body       map[string]any `json:"body"`
	Operation  string         `json:"operation"`
	CreatedAt  string         `json:"created_at"`
}

func documentToJSON(d *types.Document) documentJSON {
	return documentJSON{
		DocID:         d.DocID,
		Name:          d.Name,
		Body:          d.Body,
		Version:       d.Version,
		LastOperation: d.LastOperation,
		CreatedAt:     d.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     d.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func revisionToJSON(r *types.Revision) revisionJSON {
	return revisionJSON{
		RevisionID: r.RevisionID,
		DocID:      r.DocID,
		Version:    r.Version,
		Body:       r.Body,
		Operation:  r.Operation,
		CreatedAt:  r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// parseTime parses an RFC 3339 timestamp, returning the zero time for
// malformed input rather than failing a whole record.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
