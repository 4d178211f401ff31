// Package state provides mutable-reference cells over immutable values: a
// stable identity whose contained value is replaced, never modified in
// place. Three cell kinds cover the coordination spectrum: Atom for
// independent synchronous updates, Ref with Atomically for coordinated
// transactional updates across cells, and Agent for asynchronous serialized
// updates. All three pair naturally with the copy-on-write operations in
// pkg/nested.
package state
