package types

import "errors"

// Vault defines the interface for backend-agnostic storage access. Callers
// attach to a backend, access shelves by name, and detach when done.
type Vault interface {
	// GetShelf returns the Shelf for the given name.
	// Returns ErrShelfNotFound if the name is not a standard shelf.
	GetShelf(name string) (Shelf, error)

	// Attach connects the Vault to the backend described by config.
	// Creates the DataDir if it does not exist.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources and flushes deferred writes.
	// Idempotent: multiple calls succeed. After Detach, operations on
	// shelves return ErrVaultDetached.
	Detach() error
}

// Vault lifecycle errors.
var (
	ErrVaultDetached   = errors.New("vault is detached")
	ErrAlreadyAttached = errors.New("vault is already attached")
	ErrShelfNotFound   = errors.New("shelf not found")
)

// Standard shelf names for Vault.GetShelf.
const (
	DocumentsShelf = "documents"
	RevisionsShelf = "revisions"
)

// StandardShelfNames lists all standard shelf names for enumeration.
var StandardShelfNames = []string{
	DocumentsShelf,
	RevisionsShelf,
}
