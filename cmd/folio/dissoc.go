// Dissoc command: remove the key at a key path in a document.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var dissocCmd = &cobra.Command{
	Use:   "dissoc <id|name> <path>",
	Short: "Remove the key at a key path",
	Long: `Dissoc removes the key at a dotted key path. Removing a path that
does not resolve is a no-op.

Example:
  folio dissoc app-settings server.tls`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := parsePathArg(args[1])

		backend, err := attachBackend()
		if err != nil {
			fmt.Fprintln(os.Stderr, "dissoc:", err)
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

		before := doc.Version
		if err := doc.DissocIn(path); err != nil {
			fmt.Fprintln(os.Stderr, "dissoc:", err)
			os.Exit(exitUserError)
		}
		if doc.Version == before {
			fmt.Printf("%s unchanged (path %q not present)\n", doc.Name, path)
			return nil
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
