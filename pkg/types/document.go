package types

import (
	"time"

	"github.com/mesh-intelligence/folio/pkg/nested"
)

// Document operation constants. Recorded on the entity and in revision
// history to describe the mutation that produced the current body.
const (
	DocOpCreate = "create"
	DocOpSet    = "set"
	DocOpAssoc  = "assoc"
	DocOpDissoc = "dissoc"
	DocOpUpdate = "update"
)

// validDocOps is the set of recognized document operation values.
var validDocOps = map[string]bool{
	DocOpCreate: true,
	DocOpSet:    true,
	DocOpAssoc:  true,
	DocOpDissoc: true,
	DocOpUpdate: true,
}

// ValidDocOp reports whether op is a recognized document operation.
func ValidDocOp(op string) bool {
	return validDocOps[op]
}

// Document represents a named nested mapping with a monotonic version.
// The body is replaced wholesale on every mutation through the copy-on-write
// operations in pkg/nested; callers holding a previous body copy never see
// later changes.
type Document struct {
	DocID         string         `json:"doc_id"`         // UUID v7, generated on creation.
	Name          string         `json:"name"`           // Human-readable name, unique per vault.
	Body          map[string]any `json:"body"`           // Nested mapping content.
	Version       int64          `json:"version"`        // Monotonic, starts at 1.
	LastOperation string         `json:"last_operation"` // Operation that produced Body.
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// GetIn returns the value at path in the document body. The second return
// reports whether the full path resolved.
func (d *Document) GetIn(path nested.Path) (any, bool) {
	return nested.GetIn(d.Body, path)
}

// AssocIn sets value at path in the body, creating intermediate maps as
// needed, and bumps the version. The previous body is not modified.
func (d *Document) AssocIn(path nested.Path, value any) error {
	body, err := nested.AssocIn(d.Body, path, value)
	if err != nil {
		return err
	}
	d.replaceBody(body, DocOpAssoc)
	return nil
}

// DissocIn removes the key at path from the body and bumps the version.
// Removing a path that does not resolve is a no-op and does not bump the
// version.
func (d *Document) DissocIn(path nested.Path) error {
	if len(path) == 0 {
		return nested.ErrEmptyPath
	}
	if _, ok := nested.GetIn(d.Body, path); !ok {
		return nil
	}
	body, err := nested.DissocIn(d.Body, path)
	if err != nil {
		return err
	}
	d.replaceBody(body, DocOpDissoc)
	return nil
}

// UpdateIn replaces the value at path with f(old) and bumps the version.
// f receives nil when the path does not resolve.
func (d *Document) UpdateIn(path nested.Path, f func(old any) any) error {
	body, err := nested.UpdateIn(d.Body, path, f)
	if err != nil {
		return err
	}
	d.replaceBody(body, DocOpUpdate)
	return nil
}

// SetBody replaces the entire body with a deep copy of m and bumps the
// version.
func (d *Document) SetBody(m map[string]any) {
	d.replaceBody(nested.Clone(m), DocOpSet)
}

// BodyCopy returns a deep copy of the body. Returns an empty map (not nil)
// when the body is unset.
func (d *Document) BodyCopy() map[string]any {
	if d.Body == nil {
		return map[string]any{}
	}
	return nested.Clone(d.Body)
}

func (d *Document) replaceBody(body map[string]any, op string) {
	d.Body = body
	d.Version++
	d.LastOperation = op
	d.UpdatedAt = time.Now().UTC()
}
