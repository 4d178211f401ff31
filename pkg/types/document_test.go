package types

import (
	"errors"
	"testing"

	"github.com/mesh-intelligence/folio/pkg/nested"
)

func TestDocumentAssocIn(t *testing.T) {
	t.Run("sets value and bumps version", func(t *testing.T) {
		d := &Document{Version: 1, Body: map[string]any{}}
		if err := d.AssocIn(nested.Path{"user", "name"}, "ada"); err != nil {
			t.Fatal(err)
		}
		got, ok := d.GetIn(nested.Path{"user", "name"})
		if !ok || got != "ada" {
			t.Fatalf("expected ada, got %v (ok=%v)", got, ok)
		}
		if d.Version != 2 {
			t.Fatalf("expected version 2, got %d", d.Version)
		}
		if d.LastOperation != DocOpAssoc {
			t.Fatalf("expected operation %s, got %s", DocOpAssoc, d.LastOperation)
		}
	})

	t.Run("previous body copies are unaffected", func(t *testing.T) {
		d := &Document{Version: 1, Body: map[string]any{"n": 1}}
		before := d.BodyCopy()
		if err := d.AssocIn(nested.Path{"n"}, 2); err != nil {
			t.Fatal(err)
		}
		if before["n"] != 1 {
			t.Fatal("earlier body copy changed")
		}
	})

	t.Run("path conflict surfaces", func(t *testing.T) {
		d := &Document{Version: 1, Body: map[string]any{"n": 1}}
		err := d.AssocIn(nested.Path{"n", "deep"}, 2)
		if !errors.Is(err, nested.ErrPathConflict) {
			t.Fatalf("expected ErrPathConflict, got %v", err)
		}
		if d.Version != 1 {
			t.Fatalf("version bumped on failed mutation: %d", d.Version)
		}
	})
}

func TestDocumentDissocIn(t *testing.T) {
	t.Run("removes value and bumps version", func(t *testing.T) {
		d := &Document{Version: 1, Body: map[string]any{"a": map[string]any{"b": 1}}}
		if err := d.DissocIn(nested.Path{"a", "b"}); err != nil {
			t.Fatal(err)
		}
		if _, ok := d.GetIn(nested.Path{"a", "b"}); ok {
			t.Fatal("key still present")
		}
		if d.Version != 2 || d.LastOperation != DocOpDissoc {
			t.Fatalf("unexpected version/op: %d %s", d.Version, d.LastOperation)
		}
	})

	t.Run("absent path is a no-op without version bump", func(t *testing.T) {
		d := &Document{Version: 1, Body: map[string]any{"a": 1}}
		if err := d.DissocIn(nested.Path{"x", "y"}); err != nil {
			t.Fatal(err)
		}
		if d.Version != 1 {
			t.Fatalf("version bumped on no-op: %d", d.Version)
		}
	})

	t.Run("empty path rejected", func(t *testing.T) {
		d := &Document{Version: 1}
		if err := d.DissocIn(nested.Path{}); !errors.Is(err, nested.ErrEmptyPath) {
			t.Fatalf("expected ErrEmptyPath, got %v", err)
		}
	})
}

func TestDocumentUpdateIn(t *testing.T) {
	t.Run("applies transform", func(t *testing.T) {
		d := &Document{Version: 1, Body: map[string]any{"hits": 4}}
		err := d.UpdateIn(nested.Path{"hits"}, func(old any) any {
			return old.(int) + 1
		})
		if err != nil {
			t.Fatal(err)
		}
		got, _ := d.GetIn(nested.Path{"hits"})
		if got != 5 {
			t.Fatalf("expected 5, got %v", got)
		}
		if d.LastOperation != DocOpUpdate {
			t.Fatalf("expected operation %s, got %s", DocOpUpdate, d.LastOperation)
		}
	})

	t.Run("absent path receives nil", func(t *testing.T) {
		d := &Document{Version: 1, Body: map[string]any{}}
		err := d.UpdateIn(nested.Path{"hits"}, func(old any) any {
			if old == nil {
				return 1
			}
			return old.(int) + 1
		})
		if err != nil {
			t.Fatal(err)
		}
		got, _ := d.GetIn(nested.Path{"hits"})
		if got != 1 {
			t.Fatalf("expected 1, got %v", got)
		}
	})
}

func TestDocumentSetBody(t *testing.T) {
	d := &Document{Version: 1}
	src := map[string]any{"a": map[string]any{"b": 1}}
	d.SetBody(src)
	src["a"].(map[string]any)["b"] = 99
	got, _ := d.GetIn(nested.Path{"a", "b"})
	if got != 1 {
		t.Fatal("SetBody aliased the caller's map")
	}
	if d.Version != 2 || d.LastOperation != DocOpSet {
		t.Fatalf("unexpected version/op: %d %s", d.Version, d.LastOperation)
	}
}

func TestDocumentBodyCopy(t *testing.T) {
	t.Run("nil body yields empty map", func(t *testing.T) {
		d := &Document{}
		got := d.BodyCopy()
		if got == nil || len(got) != 0 {
			t.Fatalf("expected empty map, got %v", got)
		}
	})

	t.Run("copy does not alias body", func(t *testing.T) {
		d := &Document{Body: map[string]any{"n": 1}}
		cp := d.BodyCopy()
		cp["n"] = 2
		if d.Body["n"] != 1 {
			t.Fatal("copy aliased the body")
		}
	})
}

func TestValidDocOp(t *testing.T) {
	for _, op := range []string{DocOpCreate, DocOpSet, DocOpAssoc, DocOpDissoc, DocOpUpdate} {
		if !ValidDocOp(op) {
			t.Fatalf("expected %s to be valid", op)
		}
	}
	if ValidDocOp("merge") {
		t.Fatal("unexpected valid op")
	}
}
