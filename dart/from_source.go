package dart

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type scanner struct {
	sourcePath string
}

type Option func(*scanner)

func WithSourcePath(path string) Option {
	return func(s *scanner) {
		s.sourcePath = path
	}
}

// ClassModelsFromSource scans a whole document and returns every class
// declaration found at the top level, plus the leading import block.
// Malformed constructs never abort the scan: a class that cannot be fully
// parsed comes back with IsValid() == false and an Issue() explaining why.
// The only hard failure is input that is not valid UTF-8.
func ClassModelsFromSource(source []byte, opts ...Option) ([]*ClassModel, *ImportBlock, error) {
	if !utf8.Valid(source) {
		return nil, nil, fmt.Errorf("source is not valid UTF-8")
	}
	var sc scanner
	for _, opt := range opts {
		opt(&sc)
	}

	lines := strings.Split(string(source), "\n")
	imports := ParseImports(lines)

	var classes []*ClassModel
	var cur *ClassModel
	depth := 0
	inConstructor := false
	parenDepth := 0
	constructorStart := 0

	for i, rawLine := range lines {
		scanLine := stripForScan(rawLine)
		trimmed := strings.TrimSpace(rawLine)

		switch {
		case inConstructor && cur != nil:
			parenDepth += strings.Count(scanLine, "(") - strings.Count(scanLine, ")")
			if parenDepth <= 0 && constructorTerminated(scanLine) {
				finishConstructor(cur, lines, constructorStart, i)
				inConstructor = false
			}
		case depth == 0:
			if decl, ok := parseClassDecl(strings.TrimSpace(scanLine)); ok {
				cur = newClassModel(lines, i)
				cur.Name = decl.name
				cur.GenericParameters = decl.generics
				cur.SuperClass = decl.superClass
				cur.Mixins = decl.mixins
				cur.Interfaces = decl.interfaces
				cur.IsAbstract = decl.isAbstract
				cur.SourcePath = sc.sourcePath
				classes = append(classes, cur)
			}
		case depth == 1 && cur != nil:
			if typ, name, isFinal, isConst, ok := parseFieldDecl(trimmed); ok {
				p := NewProperty(typ, name, i)
				p.IsFinal = isFinal
				p.IsConst = isConst
				cur.Fields = append(cur.Fields, p)
			} else if !cur.HasConstructor() && isConstructorStart(cur.Name, trimmed) {
				constructorStart = i
				parenDepth = strings.Count(scanLine, "(") - strings.Count(scanLine, ")")
				if parenDepth <= 0 && constructorTerminated(scanLine) {
					finishConstructor(cur, lines, i, i)
				} else {
					inConstructor = true
				}
			}
		}

		depth += strings.Count(scanLine, "{") - strings.Count(scanLine, "}")
		if cur != nil && depth <= 0 && strings.Contains(scanLine, "}") {
			cur.EndLine = i
			cur = nil
			depth = 0
			inConstructor = false
		}
	}

	return classes, imports, nil
}

// SelectClasses filters models by name, preserving order. An empty
// selection keeps everything.
func SelectClasses(classes []*ClassModel, names []string) []*ClassModel {
	if len(names) == 0 {
		return classes
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	var out []*ClassModel
	for _, c := range classes {
		if wanted[c.Name] {
			out = append(out, c)
		}
	}
	return out
}

func finishConstructor(c *ClassModel, lines []string, start, end int) {
	c.ConstructorStartLine = start
	c.ConstructorEndLine = end
	c.ConstructorText = strings.Join(lines[start:end+1], "\n")
}

func constructorTerminated(scanLine string) bool {
	t := strings.TrimSpace(scanLine)
	return strings.HasSuffix(t, ";") || strings.Contains(t, "{")
}

func isConstructorStart(className, trimmed string) bool {
	if className == "" || strings.HasPrefix(trimmed, "factory ") {
		return false
	}
	t := trimmed
	if strings.HasPrefix(t, "const ") {
		t = strings.TrimSpace(strings.TrimPrefix(t, "const "))
	}
	return strings.HasPrefix(t, className+"(") || strings.HasPrefix(t, className+".")
}

type classDecl struct {
	name       string
	generics   []GenericParameter
	superClass string
	mixins     []string
	interfaces []string
	isAbstract bool
}

func parseClassDecl(trimmed string) (classDecl, bool) {
	var d classDecl
	s := trimmed
	if strings.HasPrefix(s, "abstract ") {
		d.isAbstract = true
		s = strings.TrimSpace(strings.TrimPrefix(s, "abstract"))
	}
	if !strings.HasPrefix(s, "class ") {
		return d, false
	}
	s = strings.TrimSpace(strings.TrimPrefix(s, "class"))

	i := 0
	for i < len(s) && isIdentChar(s[i]) {
		i++
	}
	if i == 0 {
		return d, false
	}
	d.name = s[:i]
	s = s[i:]

	if strings.HasPrefix(s, "<") {
		inner, rest, ok := matchAngle(s)
		if !ok {
			return d, false
		}
		d.generics = parseGenericParameters(inner)
		s = rest
	}

	// The declaration line must carry its opening brace. Declarations
	// split across lines stay unrecognized and pass through untouched
	// instead of losing their continuation.
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "{") {
		return d, false
	}
	s = strings.TrimSpace(strings.TrimSuffix(s, "{"))
	if idx := strings.Index(s, "implements "); idx >= 0 {
		d.interfaces = splitTopLevel(s[idx+len("implements "):])
		s = strings.TrimSpace(s[:idx])
	}
	if idx := strings.Index(s, "with "); idx >= 0 {
		d.mixins = splitTopLevel(s[idx+len("with "):])
		s = strings.TrimSpace(s[:idx])
	}
	if idx := strings.Index(s, "extends "); idx >= 0 {
		d.superClass = strings.TrimSpace(s[idx+len("extends "):])
	}
	return d, true
}

// matchAngle consumes a balanced <...> group at the start of s and
// returns its inner text and the remainder. Nested groups, as in bounded
// generics, are handled by depth tracking.
func matchAngle(s string) (inner, rest string, ok bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				return s[1:i], s[i+1:], true
			}
		}
	}
	return "", "", false
}

func parseGenericParameters(inner string) []GenericParameter {
	var params []GenericParameter
	for _, part := range splitTopLevel(inner) {
		name, bound := part, ""
		if idx := strings.Index(part, " extends "); idx >= 0 {
			name = strings.TrimSpace(part[:idx])
			bound = strings.TrimSpace(part[idx+len(" extends "):])
		}
		if name != "" {
			params = append(params, GenericParameter{Name: name, Bound: bound})
		}
	}
	return params
}

// splitTopLevel splits on commas that are not nested inside <...>.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseFieldDecl(trimmed string) (typ, name string, isFinal, isConst, ok bool) {
	t := trimmed
	if !strings.HasSuffix(t, ";") ||
		strings.ContainsAny(t, "()=") ||
		strings.HasPrefix(t, "//") ||
		strings.HasPrefix(t, "@") {
		return "", "", false, false, false
	}
	toks := strings.Fields(strings.TrimSuffix(t, ";"))

	modifiers := true
	for modifiers && len(toks) > 0 {
		switch toks[0] {
		case "final":
			isFinal = true
			toks = toks[1:]
		case "const":
			isConst = true
			toks = toks[1:]
		case "late":
			toks = toks[1:]
		case "static", "var", "return", "throw", "await", "yield", "break", "continue", "assert", "super", "this":
			return "", "", false, false, false
		default:
			modifiers = false
		}
	}
	if len(toks) < 2 {
		return "", "", false, false, false
	}
	name = toks[len(toks)-1]
	typ = strings.Join(toks[:len(toks)-1], " ")
	if !isIdentifier(name) || !isTypeLike(typ) {
		return "", "", false, false, false
	}
	return typ, name, isFinal, isConst, true
}

func isIdentChar(ch byte) bool {
	return ch == '_' || ch == '$' ||
		(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}

func isIdentifier(s string) bool {
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return false
		}
	}
	return true
}

func isTypeLike(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if !isIdentChar(ch) && ch != '<' && ch != '>' && ch != ',' && ch != ' ' && ch != '?' && ch != '.' {
			return false
		}
	}
	return true
}

// stripForScan blanks out string-literal contents and drops line-comment
// tails so brace and paren counting is not thrown off by braces inside
// text.
func stripForScan(line string) string {
	var sb strings.Builder
	sb.Grow(len(line))
	var quote byte
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if quote != 0 {
			if ch == '\\' {
				i++
				continue
			}
			if ch == quote {
				quote = 0
				sb.WriteByte(ch)
			}
			continue
		}
		switch ch {
		case '\'', '"':
			quote = ch
			sb.WriteByte(ch)
		case '/':
			if i+1 < len(line) && line[i+1] == '/' {
				return sb.String()
			}
			sb.WriteByte(ch)
		default:
			sb.WriteByte(ch)
		}
	}
	return sb.String()
}
