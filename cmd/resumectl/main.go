// Package main implements resumectl, a command-line front end for the résumé
// document model, preview renderers and enhancement gateway.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "resumectl",
	Short:        "Résumé builder command-line tools",
	Long:         "resumectl validates, previews and enhances résumé documents stored as JSON files.",
	SilenceUsage: true,
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
