// Shared helpers for folio CLI commands.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/folio/internal/sqlite"
	"github.com/mesh-intelligence/folio/pkg/nested"
	"github.com/mesh-intelligence/folio/pkg/types"
)

// backendConfig builds the Config for Vault.Attach from the resolved data
// directory and the sync_strategy loaded from config.yaml.
func backendConfig(dataDir string) types.Config {
	return types.Config{
		Backend:      types.BackendSQLite,
		DataDir:      dataDir,
		SyncStrategy: configSyncStrategy,
	}
}

// attachBackend resolves the data directory, creates a SQLite backend, and
// attaches it. The caller must defer backend.Detach().
func attachBackend() (*sqlite.Backend, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := backendConfig(dataDir)
	backend := sqlite.NewBackend()
	if err := backend.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach backend: %w", err)
	}
	return backend, nil
}

// documentsShelf returns the documents shelf or exits with a system error.
func documentsShelf(backend *sqlite.Backend) types.Shelf {
	shelf, err := backend.GetShelf(types.DocumentsShelf)
	if err != nil {
		fmt.Fprintln(os.Stderr, "get shelf:", err)
		os.Exit(exitSysError)
	}
	return shelf
}

// findDocument resolves a document by ID or, failing that, by unique name.
func findDocument(shelf types.Shelf, ref string) (*types.Document, error) {
	got, err := shelf.Get(ref)
	if err == nil {
		return got.(*types.Document), nil
	}
	if !errors.Is(err, types.ErrNotFound) && !errors.Is(err, types.ErrInvalidID) {
		return nil, err
	}

	matches, err := shelf.Fetch(map[string]any{"name": ref})
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("document %q: %w", ref, types.ErrNotFound)
	}
	return matches[0].(*types.Document), nil
}

// parsePathArg parses a key-path argument, exiting with a user error on
// malformed input.
func parsePathArg(arg string) nested.Path {
	path, err := nested.ParsePath(arg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "parse path:", err)
		os.Exit(exitUserError)
	}
	if len(path) == 0 {
		fmt.Fprintln(os.Stderr, "key path must not be empty")
		os.Exit(exitUserError)
	}
	return path
}

// parseValueArg parses a value argument as JSON, falling back to a plain
// string. "8080" becomes a number, "true" a bool, "[1,2]" a list, and
// "hello" the string itself.
func parseValueArg(arg string) any {
	var v any
	if err := json.Unmarshal([]byte(arg), &v); err != nil {
		return arg
	}
	return v
}

// loadBodyFile reads a document body from a YAML or JSON file, chosen by
// extension.
func loadBodyFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var body map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &body); err != nil {
			return nil, fmt.Errorf("parse YAML %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, fmt.Errorf("parse JSON %s: %w", path, err)
		}
	}
	return body, nil
}

// printJSON writes v to stdout as indented JSON, exiting with a system
// error on marshal failure.
func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "marshal JSON:", err)
		os.Exit(exitSysError)
	}
	fmt.Println(string(out))
}

// isNotFound returns true if the error wraps ErrNotFound.
func isNotFound(err error) bool {
	return errors.Is(err, types.ErrNotFound)
}
