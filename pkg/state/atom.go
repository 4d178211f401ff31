package state

import (
	"errors"
	"sync"
	"sync/atomic"
)

// Atom validation errors.
var ErrValidator = errors.New("value rejected by validator")

// WatchFunc observes a successful change to a cell. It runs in the
// goroutine that performed the change, after the new value is visible.
type WatchFunc[T any] func(name string, old, new T)

// Atom is an independent synchronous cell. Reads never block; writes go
// through an atomic compare-and-swap loop, so a Swap transform must be pure
// and may run more than once under contention.
type Atom[T any] struct {
	v atomic.Pointer[T]

	mu       sync.Mutex // guards validate and watches
	validate func(T) error
	watches  map[string]WatchFunc[T]
}

// NewAtom creates an Atom holding v.
func NewAtom[T any](v T) *Atom[T] {
	a := &Atom[T]{}
	a.v.Store(&v)
	return a
}

// Load returns the current value.
func (a *Atom[T]) Load() T {
	return *a.v.Load()
}

// Store replaces the current value. Returns ErrValidator when a validator
// rejects v; the value is unchanged on error.
func (a *Atom[T]) Store(v T) error {
	_, err := a.Swap(func(T) T { return v })
	return err
}

// Reset replaces the current value regardless of the old one and returns
// the new value. Returns ErrValidator when a validator rejects v; the value
// is unchanged on error.
func (a *Atom[T]) Reset(v T) (T, error) {
	return a.Swap(func(T) T { return v })
}

// Swap replaces the current value with f(old) and returns the new value.
// f may be invoked multiple times when concurrent writers race; it must be
// free of side effects. Returns ErrValidator when a validator rejects the
// result; the value is unchanged on error.
func (a *Atom[T]) Swap(f func(old T) T) (T, error) {
	for {
		oldPtr := a.v.Load()
		next := f(*oldPtr)
		if err := a.check(next); err != nil {
			var zero T
			return zero, err
		}
		if a.v.CompareAndSwap(oldPtr, &next) {
			a.notify(*oldPtr, next)
			return next, nil
		}
	}
}

// SetValidator installs a validator applied to every candidate value before
// it becomes visible. The current value is not re-validated. A nil validator
// removes validation.
func (a *Atom[T]) SetValidator(f func(T) error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.validate = f
}

// AddWatch registers fn under name, replacing any watch with the same name.
// Watches fire after each successful Store, Reset, or Swap with the old and
// new values, in the mutating goroutine.
func (a *Atom[T]) AddWatch(name string, fn WatchFunc[T]) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.watches == nil {
		a.watches = make(map[string]WatchFunc[T])
	}
	a.watches[name] = fn
}

// RemoveWatch removes the watch registered under name. Removing an unknown
// name is a no-op.
func (a *Atom[T]) RemoveWatch(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.watches, name)
}

func (a *Atom[T]) check(v T) error {
	a.mu.Lock()
	validate := a.validate
	a.mu.Unlock()
	if validate == nil {
		return nil
	}
	if err := validate(v); err != nil {
		return errors.Join(ErrValidator, err)
	}
	return nil
}

func (a *Atom[T]) notify(old, new T) {
	a.mu.Lock()
	fns := make([]struct {
		name string
		fn   WatchFunc[T]
	}, 0, len(a.watches))
	for name, fn := range a.watches {
		fns = append(fns, struct {
			name string
			fn   WatchFunc[T]
		}{name, fn})
	}
	a.mu.Unlock()
	for _, w := range fns {
		w.fn(w.name, old, new)
	}
}
