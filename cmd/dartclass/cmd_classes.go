package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dhamidi/dartclass/dart"
)

func newClassesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classes <file>",
		Short: "List the classes detected in a .dart file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if filepath.Ext(path) != ".dart" {
				return fmt.Errorf("expected .dart file, got %s", path)
			}
			source, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read file: %w", err)
			}
			classes, _, err := dart.ClassModelsFromSource(source, dart.WithSourcePath(path))
			if err != nil {
				return fmt.Errorf("scan %s: %w", path, err)
			}
			if len(classes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no classes detected")
				return nil
			}
			for _, c := range classes {
				status := "ok"
				if !c.IsValid() {
					status = c.Issue()
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tlines %d-%d\t%d field(s)\t%s\n",
					c.Name, c.StartLine+1, c.EndLine+1, len(c.Fields), status)
			}
			return nil
		},
	}
}
