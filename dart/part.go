package dart

import "strings"

// ClassPart is an existing member's location inside a class, found by its
// signature line. CurrentText is the member exactly as the source has it.
type ClassPart struct {
	Name        string
	StartLine   int
	EndLine     int
	CurrentText string
}

// FindPart locates a member whose signature line starts with one of the
// given prefixes. An @override annotation on the preceding line is pulled
// into the span so replacing the part does not duplicate it. Returns nil
// when the class has no such member or its extent cannot be determined.
func (c *ClassModel) FindPart(name string, prefixes ...string) *ClassPart {
	if !c.HasEnding() {
		return nil
	}
	for l := c.StartLine + 1; l < c.EndLine; l++ {
		trimmed := strings.TrimSpace(c.lines[l])
		if !hasAnyPrefix(trimmed, prefixes) {
			continue
		}
		start := l
		if l > c.StartLine+1 && strings.TrimSpace(c.lines[l-1]) == "@override" {
			start = l - 1
		}
		end := c.partEnd(l)
		if end < 0 {
			return nil
		}
		return &ClassPart{
			Name:        name,
			StartLine:   start,
			EndLine:     end,
			CurrentText: strings.Join(c.lines[start:end+1], "\n"),
		}
	}
	return nil
}

// partEnd finds the last line of a member starting at the given signature
// line: the first line on which all opened parens and braces are closed
// again and the statement is terminated.
func (c *ClassModel) partEnd(from int) int {
	depth := 0
	for l := from; l < c.EndLine; l++ {
		scanLine := stripForScan(c.lines[l])
		depth += strings.Count(scanLine, "(") - strings.Count(scanLine, ")")
		depth += strings.Count(scanLine, "{") - strings.Count(scanLine, "}")
		if depth > 0 {
			continue
		}
		t := strings.TrimSpace(scanLine)
		if strings.HasSuffix(t, ";") || strings.HasSuffix(t, "}") {
			return l
		}
	}
	return -1
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
