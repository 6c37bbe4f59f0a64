package dart

import (
	"fmt"
	"sort"
	"strings"
)

// ImportBlock is the leading run of import/export/part directives at the
// top of a file. Blank lines and a library directive are allowed between
// directives but never extend the block's line range. A comment between
// directives ends the block: rewriting must not swallow it, so the
// comment and every directive after it stay out of the rewritable span.
// StartLine is -1 when the file has no directives at all.
type ImportBlock struct {
	Directives []string
	StartLine  int
	EndLine    int

	raw string
	// directives past an interior comment; read-only, consulted for
	// requirement dedupe but never rewritten.
	trailing []string
}

// ParseImports captures the directive block from the document's lines.
// Scanning stops at the first line that is neither a directive nor one of
// the permitted fillers.
func ParseImports(lines []string) *ImportBlock {
	b := &ImportBlock{StartLine: -1, EndLine: -1}
	closed := false
scan:
	for i, line := range lines {
		t := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(t, "import ") || strings.HasPrefix(t, "export ") || strings.HasPrefix(t, "part "):
			if closed {
				b.trailing = append(b.trailing, t)
				continue
			}
			b.Directives = append(b.Directives, t)
			if b.StartLine < 0 {
				b.StartLine = i
			}
			b.EndLine = i
		case t == "" || strings.HasPrefix(t, "library "):
			// filler, keep looking
		case strings.HasPrefix(t, "//"):
			// before the first directive: ordinary leading comment.
			// after it: the block ends here so the comment survives.
			if b.Exists() {
				closed = true
			}
		default:
			break scan
		}
	}
	if b.Exists() {
		b.raw = strings.Join(lines[b.StartLine:b.EndLine+1], "\n")
	}
	return b
}

func (b *ImportBlock) Exists() bool {
	return b.StartLine >= 0
}

// Format emits the canonical directive block: platform imports, then
// third-party packages, then packages of the containing workspace, then
// relative imports, then exports, then parts. Buckets are sorted and
// separated by one blank line; the result carries no trailing blank line.
// Formatting its own output reproduces it unchanged.
func (b *ImportBlock) Format(workspaceName string) string {
	var dartImports, packageImports, projectImports, relativeImports, exports, parts []string
	for _, d := range b.Directives {
		switch {
		case strings.HasPrefix(d, "export "):
			exports = append(exports, d)
		case strings.HasPrefix(d, "part "):
			parts = append(parts, d)
		case strings.Contains(d, "dart:"):
			dartImports = append(dartImports, d)
		case workspaceName != "" && strings.Contains(d, "package:"+workspaceName+"/"):
			projectImports = append(projectImports, d)
		case strings.Contains(d, "package:"):
			packageImports = append(packageImports, d)
		default:
			relativeImports = append(relativeImports, d)
		}
	}

	var out []string
	for _, bucket := range [][]string{dartImports, packageImports, projectImports, relativeImports, exports, parts} {
		if len(bucket) == 0 {
			continue
		}
		sort.Strings(bucket)
		out = append(out, bucket...)
		out = append(out, "")
	}
	return strings.TrimRight(strings.Join(out, "\n"), "\n")
}

// ShouldChange reports whether emitting an edit for the block is worth it,
// i.e. whether the captured source text differs from the canonical form.
func (b *ImportBlock) ShouldChange(workspaceName string) bool {
	if !b.Exists() {
		return len(b.Directives) > 0
	}
	return b.raw != b.Format(workspaceName)
}

// RequiresImport declares a dependency of generated code. The requirement
// may be a full directive or a bare URI like "dart:convert". Nothing is
// added when an existing directive already contains the requirement or
// one of the overrides.
func (b *ImportBlock) RequiresImport(requirement string, validOverrides ...string) {
	for _, group := range [][]string{b.Directives, b.trailing} {
		for _, d := range group {
			if strings.Contains(d, requirement) {
				return
			}
			for _, o := range validOverrides {
				if strings.Contains(d, o) {
					return
				}
			}
		}
	}
	stmt := requirement
	if !strings.HasPrefix(stmt, "import ") && !strings.HasPrefix(stmt, "export ") && !strings.HasPrefix(stmt, "part ") {
		stmt = fmt.Sprintf("import '%s';", requirement)
	}
	b.Directives = append(b.Directives, stmt)
}
