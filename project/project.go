// Package project detects the Dart/Flutter workspace containing a source
// file. The workspace name decides which package imports count as
// same-project when the import block is sorted.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pubspec is the subset of pubspec.yaml this tool cares about.
type Pubspec struct {
	Name         string         `yaml:"name"`
	Description  string         `yaml:"description"`
	Environment  map[string]any `yaml:"environment"`
	Dependencies map[string]any `yaml:"dependencies"`
}

// Load reads and parses the pubspec.yaml at path.
func Load(path string) (*Pubspec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pubspec: %w", err)
	}
	var p Pubspec
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse pubspec: %w", err)
	}
	return &p, nil
}

// Find walks up from dir looking for a pubspec.yaml and returns its path,
// or "" when none exists up to the filesystem root.
func Find(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, "pubspec.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// WorkspaceName resolves the workspace name for a source file: the name
// field of the nearest pubspec.yaml, falling back to the project folder's
// basename with dashes replaced by underscores.
func WorkspaceName(sourcePath string) string {
	dir := filepath.Dir(sourcePath)
	if pubspec := Find(dir); pubspec != "" {
		if p, err := Load(pubspec); err == nil && p.Name != "" {
			return p.Name
		}
		dir = filepath.Dir(pubspec)
	}
	base := filepath.Base(dir)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.ReplaceAll(base, "-", "_")
}
