// Init command: create configuration and data directories and initialize
// the storage backend.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize folio storage",
	Long:  "Create the configuration directory, a default config.yaml, and the data directory with empty JSONL files.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "resolve config dir:", err)
			os.Exit(exitSysError)
		}

		// Attach once to create the data dir and JSONL files.
		backend, err := attachBackend()
		if err != nil {
			fmt.Fprintln(os.Stderr, "init:", err)
			os.Exit(exitSysError)
		}
		defer backend.Detach()

		dataDir, err := resolveDataDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "resolve data dir:", err)
			os.Exit(exitSysError)
		}

		fmt.Printf("initialized folio storage\n  config: %s\n  data:   %s\n", configDir, dataDir)
		return nil
	},
}
