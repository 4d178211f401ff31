package sqlite

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestReadJSONL(t *testing.T) {
	t.Run("skips malformed and empty lines", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mixed.jsonl")
		content := `{"a":1}

not json
{"b":2}
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		records, err := readJSONL(path)
		if err != nil {
			t.Fatal(err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
	})

	t.Run("missing file is an error", func(t *testing.T) {
		if _, err := readJSONL(filepath.Join(t.TempDir(), "absent.jsonl")); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestWriteJSONL(t *testing.T) {
	t.Run("writes one record per line", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.jsonl")
		records := []json.RawMessage{
			json.RawMessage(`{"a":1}`),
			json.RawMessage(`{"b":2}`),
		}
		if err := writeJSONL(path, records); err != nil {
			t.Fatal(err)
		}
		got, err := readJSONL(path)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 records, got %d", len(got))
		}
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "out.jsonl")
		if err := writeJSONL(path, nil); err != nil {
			t.Fatal(err)
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Fatalf("expected only the target file, found %d entries", len(entries))
		}
	})
}
