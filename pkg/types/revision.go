package types

import "time"

// Revision records a change to a document. Revisions are append-only: the
// revisions shelf accepts no updates or deletes, and revisions outlive the
// documents they describe.
type Revision struct {
	// RevisionID is a UUID v7 of the revision.
	RevisionID string `json:"revision_id"`

	// DocID is the document this revision belongs to.
	DocID string `json:"doc_id"`

	// Version is the document version after this change.
	Version int64 `json:"version"`

	// Body is the document body after this change.
	Body map[string]any `json:"body"`

	// Operation is the operation that caused this change.
	// One of: create, set, assoc, dissoc, update.
	Operation string `json:"operation"`

	// CreatedAt is the timestamp of this change.
	CreatedAt time.Time `json:"created_at"`
}
