package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/dhamidi/dartclass/dart"
	"github.com/dhamidi/dartclass/edit"
	"github.com/dhamidi/dartclass/generate"
	"github.com/dhamidi/dartclass/project"
)

var skipDirs = map[string]bool{
	".git":       true,
	".dart_tool": true,
	"build":      true,
	".idea":      true,
}

func newGenerateCmd() *cobra.Command {
	var write, showDiff bool
	var classNames, includes, excludes []string
	var workspaceName string
	var noCopyWith, noSerialization, noToString, noEquality bool

	cmd := &cobra.Command{
		Use:   "generate [path]",
		Short: "Generate data-class members for Dart classes",
		Long: `Generate the canonical data-class member set (constructor, copyWith,
serialization, toString, equality) for every valid class in a .dart file.

If path is a directory, every .dart file under it is processed; directory
runs require -w or --diff. Without either flag a single file's rewritten
content is printed to stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}

			opts := generate.DefaultOptions()
			if noCopyWith {
				opts.CopyWith = false
			}
			if noSerialization {
				opts.ToMap, opts.FromMap, opts.ToJson, opts.FromJson = false, false, false, false
			}
			if noToString {
				opts.ToString = false
			}
			if noEquality {
				opts.Equality = false
			}

			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("stat %s: %w", path, err)
			}
			run := runner{
				opts:          opts,
				classNames:    classNames,
				workspaceName: workspaceName,
				write:         write,
				showDiff:      showDiff,
				out:           cmd.OutOrStdout(),
			}
			if info.IsDir() {
				if !write && !showDiff {
					return fmt.Errorf("directory runs require -w or --diff")
				}
				return run.directory(path, includes, excludes)
			}
			return run.file(path)
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "write changes back to the file(s)")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "print a unified diff instead of the result")
	cmd.Flags().StringArrayVar(&classNames, "class", nil, "only generate for the named class (repeatable)")
	cmd.Flags().StringArrayVar(&includes, "include", nil, "glob of files to include in directory runs")
	cmd.Flags().StringArrayVar(&excludes, "exclude", nil, "glob of files to exclude in directory runs")
	cmd.Flags().StringVar(&workspaceName, "project", "", "workspace name for import sorting (default: from pubspec.yaml)")
	cmd.Flags().BoolVar(&noCopyWith, "no-copywith", false, "skip copyWith")
	cmd.Flags().BoolVar(&noSerialization, "no-serialization", false, "skip toMap/fromMap/toJson/fromJson")
	cmd.Flags().BoolVar(&noToString, "no-tostring", false, "skip toString")
	cmd.Flags().BoolVar(&noEquality, "no-equality", false, "skip ==/hashCode (or Equatable props)")

	return cmd
}

type runner struct {
	opts          generate.Options
	classNames    []string
	workspaceName string
	write         bool
	showDiff      bool
	out           io.Writer
}

func (r runner) file(path string) error {
	if filepath.Ext(path) != ".dart" {
		return fmt.Errorf("expected .dart file, got %s", path)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	edits, after, err := r.plan(source, path)
	if err != nil {
		return err
	}
	if len(edits) == 0 {
		fmt.Fprintf(r.out, "%s: no changes\n", path)
		return nil
	}

	if r.showDiff {
		diff, err := edit.UnifiedDiff(path, string(source), after)
		if err != nil {
			return fmt.Errorf("diff %s: %w", path, err)
		}
		fmt.Fprint(r.out, diff)
	}
	if r.write {
		doc := edit.NewFileDocument(path)
		if _, err := doc.Text(); err != nil {
			return fmt.Errorf("read file: %w", err)
		}
		if err := doc.ApplyEdits(edits); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		return nil
	}
	if !r.showDiff {
		fmt.Fprintln(r.out, after)
	}
	return nil
}

// plan runs the whole pipeline over one source snapshot: scan, generate,
// plan edits, and render the edited text.
func (r runner) plan(source []byte, path string) ([]edit.TextEdit, string, error) {
	classes, imports, err := dart.ClassModelsFromSource(source, dart.WithSourcePath(path))
	if err != nil {
		return nil, "", fmt.Errorf("scan %s: %w", path, err)
	}
	for _, c := range dart.SelectClasses(classes, r.classNames) {
		generate.DataClass(c, imports, r.opts)
	}

	workspace := r.workspaceName
	if workspace == "" {
		workspace = project.WorkspaceName(path)
	}
	edits, err := edit.Plan(classes, imports, workspace)
	if err != nil {
		return nil, "", fmt.Errorf("plan %s: %w", path, err)
	}
	return edits, edit.Apply(string(source), edits), nil
}

func (r runner) directory(root string, includes, excludes []string) error {
	files, err := collectDartFiles(root, includes, excludes)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(r.out, "no .dart files found")
		return nil
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("generating"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)

	var failed []string
	for _, f := range files {
		if err := r.file(f); err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", f, err))
		}
		_ = bar.Add(1)
	}
	if len(failed) > 0 {
		return fmt.Errorf("generation failed for %d file(s):\n%s", len(failed), strings.Join(failed, "\n"))
	}
	return nil
}

// collectDartFiles walks root for .dart files, honoring the repository's
// .gitignore and the include/exclude globs.
func collectDartFiles(root string, includes, excludes []string) ([]string, error) {
	var matcher *ignore.GitIgnore
	if gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
		matcher = gi
	}

	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		if info.IsDir() {
			if skipDirs[info.Name()] {
				return filepath.SkipDir
			}
			if matcher != nil && rel != "." && matcher.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".dart" {
			return nil
		}
		if matcher != nil && matcher.MatchesPath(rel) {
			return nil
		}
		if !matchesGlobs(rel, includes, true) || matchesGlobs(rel, excludes, false) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}

func matchesGlobs(rel string, patterns []string, emptyMeans bool) bool {
	if len(patterns) == 0 {
		return emptyMeans
	}
	rel = filepath.ToSlash(rel)
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}
