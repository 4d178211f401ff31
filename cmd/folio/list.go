// List command: enumerate documents in the vault.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/folio/pkg/types"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all documents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			fmt.Fprintln(os.Stderr, "list:", err)
			os.Exit(exitSysError)
		}
		defer backend.Detach()
		shelf := documentsShelf(backend)

		docs, err := shelf.Fetch(nil)
		if err != nil {
			fmt.Fprintln(os.Stderr, "fetch documents:", err)
			os.Exit(exitSysError)
		}

		if flagJSON {
			printJSON(docs)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tID\tVERSION\tUPDATED")
		for _, entry := range docs {
			d := entry.(*types.Document)
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", d.Name, d.DocID, d.Version, d.UpdatedAt.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}
