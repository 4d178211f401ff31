// Delete command: remove a document. Revision history is retained.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id|name>",
	Short: "Delete a document",
	Long:  "Delete removes a document from the vault. Its revisions are retained.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			fmt.Fprintln(os.Stderr, "delete:", err)
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

		if err := shelf.Delete(doc.DocID); err != nil {
			fmt.Fprintln(os.Stderr, "delete document:", err)
			os.Exit(exitSysError)
		}

		fmt.Printf("deleted %s (%s)\n", doc.Name, doc.DocID)
		return nil
	},
}
