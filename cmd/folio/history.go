// History command: list the revisions of a document.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/folio/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history <id|name>",
	Short: "Show a document's revision history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			fmt.Fprintln(os.Stderr, "history:", err)
			os.Exit(exitSysError)
		}
		defer backend.Detach()
		docs := documentsShelf(backend)

		doc, err := findDocument(docs, args[0])
		if err != nil {
			if isNotFound(err) {
				fmt.Fprintf(os.Stderr, "document %q not found\n", args[0])
				os.Exit(exitUserError)
			}
			fmt.Fprintln(os.Stderr, "find document:", err)
			os.Exit(exitSysError)
		}

		revs, err := backend.GetShelf(types.RevisionsShelf)
		if err != nil {
			fmt.Fprintln(os.Stderr, "get shelf:", err)
			os.Exit(exitSysError)
		}
		history, err := revs.Fetch(map[string]any{"doc_id": doc.DocID})
		if err != nil {
			fmt.Fprintln(os.Stderr, "fetch revisions:", err)
			os.Exit(exitSysError)
		}

		if flagJSON {
			printJSON(history)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "VERSION\tOPERATION\tAT\tREVISION")
		for _, entry := range history {
			r := entry.(*types.Revision)
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.Version, r.Operation, r.CreatedAt.Format("2006-01-02 15:04:05"), r.RevisionID)
		}
		return w.Flush()
	},
}
