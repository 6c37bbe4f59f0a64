package codebase

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/dhamidi/dartclass/dart"
	"github.com/dhamidi/dartclass/project"
)

// Codebase caches the latest known content of every Dart file the host
// has shown us, along with the class models scanned from it. Models in
// the cache are read-only; generation always re-scans the current content
// because populated models are consumed by planning.
type Codebase struct {
	mu      sync.RWMutex
	rootDir string
	files   map[string]*FileInfo
}

type FileInfo struct {
	Path          string
	Content       []byte
	Classes       []*dart.ClassModel
	Imports       *dart.ImportBlock
	WorkspaceName string
}

func New(rootDir string) *Codebase {
	return &Codebase{
		rootDir: rootDir,
		files:   make(map[string]*FileInfo),
	}
}

func (c *Codebase) RootDir() string {
	return c.rootDir
}

func (c *Codebase) ScanAll() error {
	return filepath.Walk(c.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if filepath.Ext(path) == ".dart" {
			c.ScanFile(path)
		}
		return nil
	})
}

func (c *Codebase) ScanFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.UpdateFile(path, content)
}

func (c *Codebase) UpdateFile(path string, content []byte) error {
	classes, imports, err := dart.ClassModelsFromSource(content, dart.WithSourcePath(path))
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[path] = &FileInfo{
		Path:          path,
		Content:       content,
		Classes:       classes,
		Imports:       imports,
		WorkspaceName: project.WorkspaceName(path),
	}
	return nil
}

func (c *Codebase) RemoveFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.files, path)
}

func (c *Codebase) GetFile(path string) *FileInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.files[path]
}

// AllClasses returns every class model currently cached, for diagnostics
// and listings.
func (c *Codebase) AllClasses() []*dart.ClassModel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var all []*dart.ClassModel
	for _, f := range c.files {
		all = append(all, f.Classes...)
	}
	return all
}
