// Create command: add a new named document, optionally seeding the body
// from a YAML or JSON file.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/folio/pkg/types"
)

var createFileFlag string

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new document",
	Long: `Create a new named document with an empty body, or with a body
loaded from a YAML or JSON file via --file.

Example:
  folio create app-settings
  folio create app-settings --file settings.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		body := map[string]any{}
		if createFileFlag != "" {
			loaded, err := loadBodyFile(createFileFlag)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(exitUserError)
			}
			body = loaded
		}

		backend, err := attachBackend()
		if err != nil {
			fmt.Fprintln(os.Stderr, "create:", err)
			os.Exit(exitSysError)
		}
		defer backend.Detach()
		shelf := documentsShelf(backend)

		doc := &types.Document{Name: name, Body: body}
		id, err := shelf.Set("", doc)
		if err != nil {
			if errors.Is(err, types.ErrDuplicateName) {
				fmt.Fprintf(os.Stderr, "document name %q already in use\n", name)
				os.Exit(exitUserError)
			}
			fmt.Fprintln(os.Stderr, "create document:", err)
			os.Exit(exitUserError)
		}

		if flagJSON {
			got, err := shelf.Get(id)
			if err != nil {
				fmt.Fprintln(os.Stderr, "get created document:", err)
				os.Exit(exitSysError)
			}
			printJSON(got)
			return nil
		}
		fmt.Println(id)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVarP(&createFileFlag, "file", "f", "", "YAML or JSON file with the initial body")
}
