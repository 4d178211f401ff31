// Update command: transform the value at a key path with a named operation.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update <id|name> <path> <op> [arg]",
	Short: "Transform the value at a key path",
	Long: `Update replaces the value at a dotted key path by applying a named
transform to the current value. An absent path behaves as nil, so counters
and list appends work on missing keys.

Transforms:
  inc [n]       add n (default 1) to a number, starting from 0
  dec [n]       subtract n (default 1) from a number, starting from 0
  append <v>    append v to a list, creating the list if absent
  default <v>   set v only when the path is absent

Example:
  folio update app-settings stats.visits inc
  folio update app-settings tags append '"beta"'
  folio update app-settings server.port default 8080`,
	Args: cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := parsePathArg(args[1])
		op := args[2]
		var arg any
		hasArg := len(args) == 4
		if hasArg {
			arg = parseValueArg(args[3])
		}

		transform, err := buildTransform(op, arg, hasArg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitUserError)
		}

		backend, err := attachBackend()
		if err != nil {
			fmt.Fprintln(os.Stderr, "update:", err)
			os.Exit(exitSysError)
		}
		defer backend.Detach()
		shelf := documentsShelf(backend)

		doc, err := findDocument(shelf, args[0])
		if err != nil {
			if isNotFound(err) {
				fmt.Fprintf(os.Stderr, "document %q not found\n", args[0])
				os.Exit(exitUserError)
			}
			fmt.Fprintln(os.Stderr, "find document:", err)
			os.Exit(exitSysError)
		}

		var transformErr error
		err = doc.UpdateIn(path, func(old any) any {
			next, err := transform(old)
			if err != nil {
				transformErr = err
				return old
			}
			return next
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "update:", err)
			os.Exit(exitUserError)
		}
		if transformErr != nil {
			fmt.Fprintln(os.Stderr, "update:", transformErr)
			os.Exit(exitUserError)
		}

		if _, err := shelf.Set(doc.DocID, doc); err != nil {
			fmt.Fprintln(os.Stderr, "save document:", err)
			os.Exit(exitSysError)
		}

		if flagJSON {
			printJSON(doc)
			return nil
		}
		value, _ := doc.GetIn(path)
		fmt.Printf("%s v%d: %v\n", doc.Name, doc.Version, value)
		return nil
	},
}

// buildTransform maps a named operation to a transform function.
func buildTransform(op string, arg any, hasArg bool) (func(any) (any, error), error) {
	switch op {
	case "inc", "dec":
		step := 1.0
		if hasArg {
			n, ok := asFloat(arg)
			if !ok {
				return nil, fmt.Errorf("%s argument must be a number, got %v", op, arg)
			}
			step = n
		}
		if op == "dec" {
			step = -step
		}
		return func(old any) (any, error) {
			cur := 0.0
			if old != nil {
				n, ok := asFloat(old)
				if !ok {
					return nil, fmt.Errorf("cannot %s non-number %v", op, old)
				}
				cur = n
			}
			return cur + step, nil
		}, nil
	case "append":
		if !hasArg {
			return nil, fmt.Errorf("append requires an argument")
		}
		return func(old any) (any, error) {
			if old == nil {
				return []any{arg}, nil
			}
			list, ok := old.([]any)
			if !ok {
				return nil, fmt.Errorf("cannot append to non-list %v", old)
			}
			out := make([]any, len(list), len(list)+1)
			copy(out, list)
			return append(out, arg), nil
		}, nil
	case "default":
		if !hasArg {
			return nil, fmt.Errorf("default requires an argument")
		}
		return func(old any) (any, error) {
			if old == nil {
				return arg, nil
			}
			return old, nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown transform %q (valid: inc, dec, append, default)", op)
	}
}

// asFloat converts the numeric types a parsed JSON value or document body
// may carry.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
