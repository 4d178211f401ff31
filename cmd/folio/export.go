// Export command: write a document body to a YAML or JSON file, or stdout.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var exportOutFlag string

var exportCmd = &cobra.Command{
	Use:   "export <id|name>",
	Short: "Export a document body",
	Long: `Export writes a document body to a file, serialized as YAML or
JSON depending on the file extension. Without --out, indented JSON goes to
stdout.

Example:
  folio export app-settings --out settings.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			fmt.Fprintln(os.Stderr, "export:", err)
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

		if exportOutFlag == "" {
			printJSON(doc.BodyCopy())
			return nil
		}

		var data []byte
		switch strings.ToLower(filepath.Ext(exportOutFlag)) {
		case ".yaml", ".yml":
			data, err = yaml.Marshal(doc.BodyCopy())
		default:
			data, err = json.MarshalIndent(doc.BodyCopy(), "", "  ")
			data = append(data, '\n')
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "marshal body:", err)
			os.Exit(exitSysError)
		}

		if err := os.WriteFile(exportOutFlag, data, 0o644); err != nil {
			fmt.Fprintln(os.Stderr, "write file:", err)
			os.Exit(exitSysError)
		}
		fmt.Printf("exported %s to %s\n", doc.Name, exportOutFlag)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutFlag, "out", "o", "", "output file (.yaml/.yml for YAML, otherwise JSON)")
}
