package state

import (
	"errors"
	"sync"
)

// Transaction errors.
var ErrTxConflict = errors.New("transaction conflict: retries exhausted")

// maxTxAttempts bounds Atomically's retry loop.
const maxTxAttempts = 100

// commitMu serializes transaction commits across all refs.
var commitMu sync.Mutex

// Ref is a coordinated transactional cell. Refs are read and written
// together inside Atomically; reads outside transactions never block
// writers beyond the duration of a version snapshot.
type Ref[T any] struct {
	mu      sync.RWMutex
	val     T
	version uint64
}

// NewRef creates a Ref holding v.
func NewRef[T any](v T) *Ref[T] {
	return &Ref[T]{val: v, version: 1}
}

// Load returns the current value outside any transaction.
func (r *Ref[T]) Load() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.val
}

// txRef is the untyped view of a Ref that Tx tracks. Interface values over
// *Ref[T] pointers are comparable, so they serve as map keys.
type txRef interface {
	snapshot() (any, uint64)
	versionNow() uint64
	commitWrite(any)
}

func (r *Ref[T]) snapshot() (any, uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.val, r.version
}

func (r *Ref[T]) versionNow() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

func (r *Ref[T]) commitWrite(v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.val = v.(T)
	r.version++
}

// Tx is a transaction: snapshot reads with version tracking and buffered
// writes, applied atomically at commit.
type Tx struct {
	reads  map[txRef]uint64
	writes map[txRef]any
}

// Atomically runs body inside a transaction. Reads through Get record the
// ref version first seen; writes through Set and Alter are buffered. At
// commit every read version is revalidated under a global commit lock, and
// on conflict the body is re-run from scratch with fresh state. A non-nil
// error from body aborts without retrying. Returns ErrTxConflict when the
// attempt bound is exhausted.
//
// The body may run multiple times; it must not have effects beyond the
// transaction.
func Atomically(body func(tx *Tx) error) error {
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		tx := &Tx{
			reads:  make(map[txRef]uint64),
			writes: make(map[txRef]any),
		}
		if err := body(tx); err != nil {
			return err
		}
		if tx.commit() {
			return nil
		}
	}
	return ErrTxConflict
}

func (tx *Tx) commit() bool {
	commitMu.Lock()
	defer commitMu.Unlock()
	for r, ver := range tx.reads {
		if r.versionNow() != ver {
			return false
		}
	}
	for r, v := range tx.writes {
		r.commitWrite(v)
	}
	return true
}

// Get reads a ref inside the transaction. A ref written earlier in the same
// transaction returns its buffered value; otherwise the first read snapshots
// the ref and records its version for commit-time validation.
func Get[T any](tx *Tx, r *Ref[T]) T {
	if v, ok := tx.writes[r]; ok {
		return v.(T)
	}
	v, ver := r.snapshot()
	if _, seen := tx.reads[r]; !seen {
		tx.reads[r] = ver
	}
	return v.(T)
}

// Set buffers a write to a ref. The value becomes visible to other
// goroutines only when the transaction commits.
func Set[T any](tx *Tx, r *Ref[T], v T) {
	tx.writes[r] = v
}

// Alter replaces the ref's in-transaction value with f(current) and returns
// the new value. Equivalent to Set(tx, r, f(Get(tx, r))).
func Alter[T any](tx *Tx, r *Ref[T], f func(old T) T) T {
	next := f(Get(tx, r))
	Set(tx, r, next)
	return next
}
