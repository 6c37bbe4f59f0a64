package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/dartclass/dart"
	"github.com/dhamidi/dartclass/edit"
	"github.com/dhamidi/dartclass/project"
)

func newImportsCmd() *cobra.Command {
	var write bool
	var workspaceName string

	cmd := &cobra.Command{
		Use:   "imports <file>",
		Short: "Sort a file's import block into canonical order",
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

			imports := dart.ParseImports(strings.Split(string(source), "\n"))
			if !imports.Exists() {
				fmt.Fprintln(cmd.OutOrStdout(), "no import block found")
				return nil
			}

			workspace := workspaceName
			if workspace == "" {
				workspace = project.WorkspaceName(path)
			}
			if !imports.ShouldChange(workspace) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: no changes\n", path)
				return nil
			}

			if write {
				edits, err := edit.Plan(nil, imports, workspace)
				if err != nil {
					return fmt.Errorf("plan %s: %w", path, err)
				}
				doc := edit.NewFileDocument(path)
				if err := doc.ApplyEdits(edits); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), imports.Format(workspace))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "rewrite the import block in place")
	cmd.Flags().StringVar(&workspaceName, "project", "", "workspace name for import sorting (default: from pubspec.yaml)")

	return cmd
}
