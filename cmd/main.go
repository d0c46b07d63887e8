package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the cantofal command
var rootCmd = &cobra.Command{
	Use:   "cantofal",
	Short: "Canto storages as a file abstraction layer",
	Long: `cantofal serves Canto digital asset libraries as hierarchical storages.

It runs the HTTP API, keeps the local file index in sync with the remote
libraries and offers maintenance commands for caches and tokens.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(tokenCmd)
}
