// Get command: read the value at a key path in a document.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <id|name> <path>",
	Short: "Get the value at a key path",
	Long: `Get reads the value at a dotted key path in a document body.

Example:
  folio get app-settings server.port
  folio get app-settings 'hosts.db\.internal'`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := parsePathArg(args[1])

		backend, err := attachBackend()
		if err != nil {
			fmt.Fprintln(os.Stderr, "get:", err)
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

		value, ok := doc.GetIn(path)
		if !ok {
			fmt.Fprintf(os.Stderr, "path %q not found in document %q\n", path, doc.Name)
			os.Exit(exitUserError)
		}

		printJSON(value)
		return nil
	},
}
