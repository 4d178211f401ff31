// Package types defines the Vault and Shelf interfaces, the Document and
// Revision entities, configuration, and standard error types for the Folio
// storage system.
package types
