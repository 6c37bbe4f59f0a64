// Package edit turns populated class models into the minimal set of
// line-range edits a host needs to apply, and can apply them itself to an
// in-memory document. The core never talks to an editor directly; hosts
// implement Document.
package edit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dhamidi/dartclass/dart"
)

// TextEdit replaces the inclusive zero-based line range [StartLine,
// EndLine] of the original document with NewText. EndLine < StartLine
// denotes a pure insertion before StartLine.
type TextEdit struct {
	StartLine int
	EndLine   int
	NewText   string
}

func (e TextEdit) IsInsert() bool {
	return e.EndLine < e.StartLine
}

// Document is the narrow host surface the core depends on: read the
// current text, apply a batch of edits atomically.
type Document interface {
	Text() (string, error)
	ApplyEdits(edits []TextEdit) error
}

// Plan compares every class's reconstructed text and the import block's
// canonical form against the current document and returns the edits that
// differ. Edits come back ordered by line and never overlap; a fully
// up-to-date document yields an empty plan.
func Plan(classes []*dart.ClassModel, imports *dart.ImportBlock, workspaceName string) ([]TextEdit, error) {
	var edits []TextEdit

	if imports != nil && len(imports.Directives) > 0 {
		if imports.Exists() {
			if imports.ShouldChange(workspaceName) {
				edits = append(edits, TextEdit{
					StartLine: imports.StartLine,
					EndLine:   imports.EndLine,
					NewText:   imports.Format(workspaceName),
				})
			}
		} else {
			edits = append(edits, TextEdit{
				StartLine: 0,
				EndLine:   -1,
				NewText:   imports.Format(workspaceName) + "\n",
			})
		}
	}

	for _, c := range classes {
		if !c.IsValid() {
			continue
		}
		replacement := c.ReplacementText()
		if replacement != c.SourceText() {
			edits = append(edits, TextEdit{
				StartLine: c.StartLine,
				EndLine:   c.EndLine,
				NewText:   replacement,
			})
		}
	}

	// Insertions sort before replacements at the same line: an insert
	// before line N does not overlap a replacement starting at N.
	sort.Slice(edits, func(i, j int) bool {
		if edits[i].StartLine != edits[j].StartLine {
			return edits[i].StartLine < edits[j].StartLine
		}
		return edits[i].EndLine < edits[j].EndLine
	})
	for i := 1; i < len(edits); i++ {
		if edits[i].StartLine <= edits[i-1].EndLine {
			return nil, fmt.Errorf("overlapping edits at lines %d and %d", edits[i-1].StartLine, edits[i].StartLine)
		}
	}
	return edits, nil
}

// Apply rewrites the document text with the given edits. Edits are
// applied bottom-up so earlier line numbers stay valid throughout.
func Apply(text string, edits []TextEdit) string {
	lines := strings.Split(text, "\n")

	// Bottom-up, and at the same line the replacement goes before the
	// insertion so the inserted lines end up above the replaced range.
	ordered := make([]TextEdit, len(edits))
	copy(ordered, edits)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].StartLine != ordered[j].StartLine {
			return ordered[i].StartLine > ordered[j].StartLine
		}
		return ordered[i].EndLine > ordered[j].EndLine
	})

	for _, e := range ordered {
		newLines := strings.Split(e.NewText, "\n")
		if e.IsInsert() {
			rest := append(newLines, lines[e.StartLine:]...)
			lines = append(lines[:e.StartLine:e.StartLine], rest...)
			continue
		}
		end := e.EndLine
		if end >= len(lines) {
			end = len(lines) - 1
		}
		rest := append(newLines, lines[end+1:]...)
		lines = append(lines[:e.StartLine:e.StartLine], rest...)
	}
	return strings.Join(lines, "\n")
}
