package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dartclass",
		Short: "Generate and maintain Dart data classes",
	}

	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newClassesCmd())
	rootCmd.AddCommand(newImportsCmd())
	rootCmd.AddCommand(newLSPCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
