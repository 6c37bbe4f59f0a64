package edit

import (
	"os"
)

// FileDocument is the filesystem-backed Document used by the CLI. Edits
// are applied against a snapshot of the file taken on first read, so a
// plan computed from that snapshot stays consistent.
type FileDocument struct {
	Path string

	snapshot string
	loaded   bool
}

func NewFileDocument(path string) *FileDocument {
	return &FileDocument{Path: path}
}

func (d *FileDocument) Text() (string, error) {
	if !d.loaded {
		data, err := os.ReadFile(d.Path)
		if err != nil {
			return "", err
		}
		d.snapshot = string(data)
		d.loaded = true
	}
	return d.snapshot, nil
}

func (d *FileDocument) ApplyEdits(edits []TextEdit) error {
	if len(edits) == 0 {
		return nil
	}
	text, err := d.Text()
	if err != nil {
		return err
	}
	d.snapshot = Apply(text, edits)
	return os.WriteFile(d.Path, []byte(d.snapshot), 0644)
}
