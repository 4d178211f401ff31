// Set command: associate a value at a key path in a document.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/folio/pkg/nested"
)

var setCmd = &cobra.Command{
	Use:   "set <id|name> <path> <value>",
	Short: "Set the value at a key path",
	Long: `Set associates a value at a dotted key path, creating intermediate
maps as needed. The value is parsed as JSON, falling back to a plain string.

Example:
  folio set app-settings server.port 8080
  folio set app-settings server.tls.enabled true
  folio set app-settings greeting hello`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := parsePathArg(args[1])
		value := parseValueArg(args[2])

		backend, err := attachBackend()
		if err != nil {
			fmt.Fprintln(os.Stderr, "set:", err)
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

		if err := doc.AssocIn(path, value); err != nil {
			if errors.Is(err, nested.ErrPathConflict) {
				fmt.Fprintf(os.Stderr, "path %q traverses a non-map value\n", path)
				os.Exit(exitUserError)
			}
			fmt.Fprintln(os.Stderr, "assoc:", err)
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
		fmt.Printf("%s v%d\n", doc.Name, doc.Version)
		return nil
	},
}
