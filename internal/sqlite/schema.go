package sqlite

// Schema DDL for the SQLite mirror. Bodies are stored as JSON text;
// timestamps as RFC 3339 text.
const (
	createDocuments = `CREATE TABLE documents (
    doc_id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    body TEXT NOT NULL,
    version INTEGER NOT NULL,
    last_operation TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createRevisions = `CREATE TABLE revisions (
    revision_id TEXT PRIMARY KEY,
    doc_id TEXT NOT NULL,
    version INTEGER NOT NULL,
    body TEXT NOT NULL,
    operation TEXT NOT NULL,
    created_at TEXT NOT NULL
);
CREATE INDEX idx_revisions_doc_id ON revisions(doc_id);`
)

// schemaSQL is the full DDL executed on Attach.
const schemaSQL = createDocuments + "\n" + createRevisions
