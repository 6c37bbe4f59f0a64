package dart

import (
	"fmt"
	"strings"
)

// GenericParameter is one type parameter of a class declaration,
// e.g. "T extends Comparable<T>" has Name "T" and Bound "Comparable<T>".
type GenericParameter struct {
	Name  string
	Bound string
}

// ReplacementUnit pairs a line range of the original document with the
// canonical text that should replace it. CurrentText is kept only so
// callers can tell whether anything actually changed; it is never written
// back.
type ReplacementUnit struct {
	Name            string
	StartLine       int
	EndLine         int
	CurrentText     string
	ReplacementText string
}

// ClassModel is the structured view of one class declaration found in a
// document. Line numbers are zero-based and inclusive, indexing into the
// original document's lines. EndLine is -1 until the matching closing
// brace has been seen; a class that never closes stays at -1 and is
// reported as invalid instead of aborting the scan.
type ClassModel struct {
	Name              string
	GenericParameters []GenericParameter
	SuperClass        string
	Mixins            []string
	Interfaces        []string
	IsAbstract        bool

	Fields []PropertyModel

	StartLine            int
	EndLine              int
	ConstructorStartLine int
	ConstructorEndLine   int
	ConstructorText      string

	// PendingConstructor holds a synthesized constructor for classes
	// that have none; it is inserted right after the last field.
	// PendingInserts collects members that have no prior source span and
	// go before the closing brace. PendingReplacements are members whose
	// canonical text differs from what the source currently has.
	PendingConstructor  string
	PendingInserts      string
	PendingReplacements []ReplacementUnit

	SourcePath string

	lines []string
}

func newClassModel(lines []string, startLine int) *ClassModel {
	return &ClassModel{
		StartLine:            startLine,
		EndLine:              -1,
		ConstructorStartLine: -1,
		ConstructorEndLine:   -1,
		lines:                lines,
	}
}

func (c *ClassModel) HasEnding() bool {
	return c.EndLine >= c.StartLine
}

func (c *ClassModel) HasConstructor() bool {
	return c.ConstructorStartLine >= 0
}

func (c *ClassModel) HasFields() bool {
	return len(c.Fields) > 0
}

// HasUniqueFieldNames reports whether no two fields normalize to the same
// name. Duplicates make generated constructors and equality ambiguous, so
// such a class is excluded from generation.
func (c *ClassModel) HasUniqueFieldNames() bool {
	seen := make(map[string]bool, len(c.Fields))
	for _, f := range c.Fields {
		if seen[f.Name] {
			return false
		}
		seen[f.Name] = true
	}
	return true
}

func (c *ClassModel) IsValid() bool {
	return c.Name != "" && c.HasEnding() && c.HasFields() && c.HasUniqueFieldNames()
}

// Issue returns a human-readable reason why the class is excluded from
// generation, or "" for a valid class. When several things are wrong the
// most actionable one wins.
func (c *ClassModel) Issue() string {
	if c.IsValid() {
		return ""
	}
	switch {
	case !c.HasFields():
		return fmt.Sprintf("class '%s' doesn't have any properties", c.Name)
	case !c.HasEnding():
		return fmt.Sprintf("class '%s' doesn't have an ending", c.Name)
	case !c.HasUniqueFieldNames():
		return fmt.Sprintf("class '%s' doesn't have unique property names", c.Name)
	default:
		return fmt.Sprintf("class '%s' couldn't be parsed", c.Name)
	}
}

func (c *ClassModel) IsWidget() bool {
	return c.SuperClass == "StatelessWidget" || c.SuperClass == "StatefulWidget"
}

func (c *ClassModel) IsStatelessWidget() bool {
	return c.SuperClass == "StatelessWidget"
}

func (c *ClassModel) IsStateClass() bool {
	return c.SuperClass == "State" || strings.HasPrefix(c.SuperClass, "State<")
}

func (c *ClassModel) UsesEquatable() bool {
	if c.SuperClass == "Equatable" {
		return true
	}
	for _, m := range c.Mixins {
		if m == "Equatable" || m == "EquatableMixin" {
			return true
		}
	}
	return false
}

// HasNamedConstructor reports whether the detected constructor takes
// named parameters. This mirrors the textual shape the generator emits
// ("Name({" after an optional leading const); other named-constructor
// spellings are not recognized. A class without a constructor has no
// named constructor.
func (c *ClassModel) HasNamedConstructor() bool {
	if !c.HasConstructor() {
		return false
	}
	t := strings.TrimSpace(c.ConstructorText)
	t = strings.TrimSpace(strings.TrimPrefix(t, "const"))
	return strings.HasPrefix(t, c.Name+"({")
}

// TypeString is the class name with its type parameters but without
// their bounds, as used in return types and instantiations.
func (c *ClassModel) TypeString() string {
	if len(c.GenericParameters) == 0 {
		return c.Name
	}
	names := make([]string, len(c.GenericParameters))
	for i, g := range c.GenericParameters {
		names[i] = g.Name
	}
	return c.Name + "<" + strings.Join(names, ", ") + ">"
}

// HeaderLine synthesizes the canonical class declaration line. The header
// is always regenerated rather than copied from source, so a misformatted
// declaration heals itself on the next run.
func (c *ClassModel) HeaderLine() string {
	var sb strings.Builder
	if c.IsAbstract {
		sb.WriteString("abstract ")
	}
	sb.WriteString("class ")
	sb.WriteString(c.Name)
	if len(c.GenericParameters) > 0 {
		sb.WriteString("<")
		for i, g := range c.GenericParameters {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(g.Name)
			if g.Bound != "" {
				sb.WriteString(" extends ")
				sb.WriteString(g.Bound)
			}
		}
		sb.WriteString(">")
	}
	if c.SuperClass != "" {
		sb.WriteString(" extends ")
		sb.WriteString(c.SuperClass)
	}
	if len(c.Mixins) > 0 {
		sb.WriteString(" with ")
		sb.WriteString(strings.Join(c.Mixins, ", "))
	}
	if len(c.Interfaces) > 0 {
		sb.WriteString(" implements ")
		sb.WriteString(strings.Join(c.Interfaces, ", "))
	}
	sb.WriteString(" {")
	return sb.String()
}

// SourceText returns the class's lines exactly as they appear in the
// document.
func (c *ClassModel) SourceText() string {
	if !c.HasEnding() {
		return ""
	}
	return strings.Join(c.lines[c.StartLine:c.EndLine+1], "\n")
}

// AppendInsert queues a member with no prior source span. Members are
// separated by one blank line and emitted before the closing brace.
func (c *ClassModel) AppendInsert(text string) {
	if c.PendingInserts != "" {
		c.PendingInserts += "\n"
	}
	c.PendingInserts += "\n" + strings.Trim(text, "\n")
}

// AddReplacement queues an in-place replacement for a member whose
// canonical text differs from the source. Overlapping spans are dropped;
// the first registration wins.
func (c *ClassModel) AddReplacement(name string, startLine, endLine int, currentText, replacementText string) {
	for _, r := range c.PendingReplacements {
		if startLine <= r.EndLine && endLine >= r.StartLine {
			return
		}
	}
	c.PendingReplacements = append(c.PendingReplacements, ReplacementUnit{
		Name:            name,
		StartLine:       startLine,
		EndLine:         endLine,
		CurrentText:     currentText,
		ReplacementText: replacementText,
	})
}

func (c *ClassModel) replacementAt(line int) *ReplacementUnit {
	for i := range c.PendingReplacements {
		r := &c.PendingReplacements[i]
		if line >= r.StartLine && line <= r.EndLine {
			return r
		}
	}
	return nil
}

// ReplacementText reconstructs the full class body: the header line is
// synthesized, lines covered by a queued replacement are substituted once,
// the synthesized constructor lands after the last field, queued inserts
// land before the closing brace, and every other line is copied verbatim
// from the source. Running this on already-canonical source reproduces the
// source byte for byte.
func (c *ClassModel) ReplacementText() string {
	if !c.HasEnding() {
		return ""
	}
	var out []string
	emitted := make(map[string]bool)

	lastFieldLine := -1
	if len(c.Fields) > 0 {
		lastFieldLine = c.Fields[len(c.Fields)-1].Line
	}

	for l := c.StartLine; l <= c.EndLine; l++ {
		switch {
		case l == c.StartLine:
			out = append(out, c.HeaderLine())
		case l == c.EndLine:
			if c.IsValid() && c.PendingInserts != "" {
				out = append(out, strings.Split(c.PendingInserts, "\n")...)
			}
			out = append(out, c.lines[l])
		default:
			if r := c.replacementAt(l); r != nil {
				if !emitted[r.Name] {
					emitted[r.Name] = true
					out = append(out, strings.Split(r.ReplacementText, "\n")...)
				}
			} else {
				out = append(out, c.lines[l])
			}
		}
		if l == lastFieldLine && c.PendingConstructor != "" && !c.HasConstructor() {
			out = append(out, "")
			out = append(out, strings.Split(strings.Trim(c.PendingConstructor, "\n"), "\n")...)
		}
	}
	return strings.TrimRight(strings.Join(out, "\n"), "\n")
}

// EqualIgnoringWhitespace compares two source fragments with all
// whitespace removed, which is how generated members are checked against
// what the file already contains.
func EqualIgnoringWhitespace(a, b string) bool {
	return stripWhitespace(a) == stripWhitespace(b)
}

func stripWhitespace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r':
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
