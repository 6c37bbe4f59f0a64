package dart

import (
	"strings"
	"testing"
)

func TestScanBasicClass(t *testing.T) {
	source := []byte(`class Foo {
  final String name;
  final int age;
}
`)
	classes, _, err := ClassModelsFromSource(source)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(classes) != 1 {
		t.Fatalf("expected 1 class, got %d", len(classes))
	}
	c := classes[0]

	if c.Name != "Foo" {
		t.Errorf("expected name Foo, got %q", c.Name)
	}
	if !c.IsValid() {
		t.Errorf("expected valid class, got issue %q", c.Issue())
	}
	if c.StartLine != 0 || c.EndLine != 3 {
		t.Errorf("expected span 0-3, got %d-%d", c.StartLine, c.EndLine)
	}
	if len(c.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(c.Fields))
	}
	if c.Fields[0].Name != "name" || c.Fields[0].Type != "String" || !c.Fields[0].IsFinal {
		t.Errorf("unexpected first field: %+v", c.Fields[0])
	}
	if c.Fields[1].Name != "age" || c.Fields[1].Type != "int" {
		t.Errorf("unexpected second field: %+v", c.Fields[1])
	}
	if c.Fields[0].Line != 1 || c.Fields[1].Line != 2 {
		t.Errorf("unexpected field lines: %d, %d", c.Fields[0].Line, c.Fields[1].Line)
	}
	if c.HasConstructor() {
		t.Errorf("expected no constructor")
	}
	if c.HasNamedConstructor() {
		t.Errorf("class without a constructor must not report a named one")
	}
}

func TestScanMultiLineDeclaration(t *testing.T) {
	// A declaration split across lines carries no trailing brace on its
	// first line; it must stay unrecognized so it passes through untouched
	// instead of being reassembled without its continuation.
	source := []byte(`class Foo extends Bar
    implements Baz {
  final String name;
}
`)
	classes, _, err := ClassModelsFromSource(source)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(classes) != 0 {
		t.Fatalf("expected no recognized classes, got %d: %+v", len(classes), classes[0])
	}
}

func TestScanClassHeader(t *testing.T) {
	source := []byte(`abstract class Box<T extends Comparable<T>, U> extends Base with Loggable, Cacheable implements Storable<T>, Printable {
  final T value;
}
`)
	classes, _, err := ClassModelsFromSource(source)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(classes) != 1 {
		t.Fatalf("expected 1 class, got %d", len(classes))
	}
	c := classes[0]

	if !c.IsAbstract {
		t.Errorf("expected abstract class")
	}
	if c.Name != "Box" {
		t.Errorf("expected name Box, got %q", c.Name)
	}
	if len(c.GenericParameters) != 2 {
		t.Fatalf("expected 2 generic parameters, got %d", len(c.GenericParameters))
	}
	if c.GenericParameters[0].Name != "T" || c.GenericParameters[0].Bound != "Comparable<T>" {
		t.Errorf("unexpected first generic: %+v", c.GenericParameters[0])
	}
	if c.GenericParameters[1].Name != "U" || c.GenericParameters[1].Bound != "" {
		t.Errorf("unexpected second generic: %+v", c.GenericParameters[1])
	}
	if c.SuperClass != "Base" {
		t.Errorf("expected superclass Base, got %q", c.SuperClass)
	}
	if len(c.Mixins) != 2 || c.Mixins[0] != "Loggable" || c.Mixins[1] != "Cacheable" {
		t.Errorf("unexpected mixins: %v", c.Mixins)
	}
	if len(c.Interfaces) != 2 || c.Interfaces[0] != "Storable<T>" || c.Interfaces[1] != "Printable" {
		t.Errorf("unexpected interfaces: %v", c.Interfaces)
	}
	if c.TypeString() != "Box<T, U>" {
		t.Errorf("unexpected type string: %q", c.TypeString())
	}
}

func TestScanConstructor(t *testing.T) {
	t.Run("single line", func(t *testing.T) {
		source := []byte(`class Foo {
  final String name;

  Foo(this.name);
}
`)
		classes, _, _ := ClassModelsFromSource(source)
		c := classes[0]
		if !c.HasConstructor() {
			t.Fatalf("expected constructor")
		}
		if c.ConstructorStartLine != 3 || c.ConstructorEndLine != 3 {
			t.Errorf("expected constructor span 3-3, got %d-%d", c.ConstructorStartLine, c.ConstructorEndLine)
		}
		if strings.TrimSpace(c.ConstructorText) != "Foo(this.name);" {
			t.Errorf("unexpected constructor text: %q", c.ConstructorText)
		}
		if c.HasNamedConstructor() {
			t.Errorf("positional constructor misclassified as named")
		}
	})

	t.Run("multi line", func(t *testing.T) {
		source := []byte(`class Foo {
  final String name;
  final int age;

  Foo(
    this.name,
    this.age,
  );
}
`)
		classes, _, _ := ClassModelsFromSource(source)
		c := classes[0]
		if !c.HasConstructor() {
			t.Fatalf("expected constructor")
		}
		if c.ConstructorStartLine != 4 || c.ConstructorEndLine != 7 {
			t.Errorf("expected constructor span 4-7, got %d-%d", c.ConstructorStartLine, c.ConstructorEndLine)
		}
	})

	t.Run("const named", func(t *testing.T) {
		source := []byte(`class Foo {
  final String name;

  const Foo({required this.name});
}
`)
		classes, _, _ := ClassModelsFromSource(source)
		c := classes[0]
		if !c.HasConstructor() {
			t.Fatalf("expected constructor")
		}
		if !c.HasNamedConstructor() {
			t.Errorf("named constructor not recognized")
		}
	})

	t.Run("factory is not the constructor", func(t *testing.T) {
		source := []byte(`class Foo {
  final String name;

  factory Foo.fromMap(Map<String, dynamic> map) {
    return Foo();
  }
}
`)
		classes, _, _ := ClassModelsFromSource(source)
		if classes[0].HasConstructor() {
			t.Errorf("factory constructor recorded as the constructor span")
		}
	})
}

func TestScanInvalidClasses(t *testing.T) {
	t.Run("no fields", func(t *testing.T) {
		source := []byte("class Empty {\n}\n")
		classes, _, _ := ClassModelsFromSource(source)
		c := classes[0]
		if c.IsValid() {
			t.Fatalf("expected invalid class")
		}
		if want := "class 'Empty' doesn't have any properties"; c.Issue() != want {
			t.Errorf("expected issue %q, got %q", want, c.Issue())
		}
	})

	t.Run("unterminated", func(t *testing.T) {
		source := []byte("class Open {\n  final int x;\n")
		classes, _, _ := ClassModelsFromSource(source)
		c := classes[0]
		if c.IsValid() {
			t.Fatalf("expected invalid class")
		}
		if want := "class 'Open' doesn't have an ending"; c.Issue() != want {
			t.Errorf("expected issue %q, got %q", want, c.Issue())
		}
	})

	t.Run("duplicate field names", func(t *testing.T) {
		source := []byte(`class User {
  final String user_id;
  final String userId;
}
`)
		classes, _, _ := ClassModelsFromSource(source)
		c := classes[0]
		if c.IsValid() {
			t.Fatalf("expected invalid class")
		}
		if want := "class 'User' doesn't have unique property names"; c.Issue() != want {
			t.Errorf("expected issue %q, got %q", want, c.Issue())
		}
	})

	t.Run("no-fields outranks no-ending", func(t *testing.T) {
		source := []byte("class Open {\n")
		classes, _, _ := ClassModelsFromSource(source)
		if got := classes[0].Issue(); !strings.Contains(got, "doesn't have any properties") {
			t.Errorf("expected no-properties issue, got %q", got)
		}
	})
}

func TestScanMultipleClasses(t *testing.T) {
	source := []byte(`class A {
  final int x;
}

class B {
  final int y;

  void touch() {
    x = '{';
  }
}

class C {
  final String z;
}
`)
	classes, _, err := ClassModelsFromSource(source)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(classes) != 3 {
		t.Fatalf("expected 3 classes, got %d", len(classes))
	}
	names := []string{classes[0].Name, classes[1].Name, classes[2].Name}
	if names[0] != "A" || names[1] != "B" || names[2] != "C" {
		t.Errorf("unexpected class order: %v", names)
	}
	for _, c := range classes {
		if !c.IsValid() {
			t.Errorf("class %s unexpectedly invalid: %s", c.Name, c.Issue())
		}
	}

	t.Run("braces in strings ignored", func(t *testing.T) {
		if classes[1].StartLine != 4 || classes[1].EndLine != 10 {
			t.Errorf("class B span thrown off by string literal: %d-%d", classes[1].StartLine, classes[1].EndLine)
		}
	})

	t.Run("selection", func(t *testing.T) {
		selected := SelectClasses(classes, []string{"C", "A"})
		if len(selected) != 2 {
			t.Fatalf("expected 2 selected classes, got %d", len(selected))
		}
		if selected[0].Name != "A" || selected[1].Name != "C" {
			t.Errorf("selection changed order: %s, %s", selected[0].Name, selected[1].Name)
		}
	})
}

func TestScanSkipsNonFieldLines(t *testing.T) {
	source := []byte(`class Foo {
  // a comment
  static const int limit = 3;
  final Map<String, int> counts;
  late String cached;
  int get doubled => counts.length * 2;

  void reset() {
    cached = '';
  }
}
`)
	classes, _, err := ClassModelsFromSource(source)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	c := classes[0]
	if len(c.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d: %+v", len(c.Fields), c.Fields)
	}
	if c.Fields[0].Type != "Map<String, int>" || c.Fields[0].Name != "counts" {
		t.Errorf("generic field mangled: %+v", c.Fields[0])
	}
	if c.Fields[1].Name != "cached" {
		t.Errorf("late field not picked up: %+v", c.Fields[1])
	}
}

func TestScanRejectsInvalidEncoding(t *testing.T) {
	if _, _, err := ClassModelsFromSource([]byte{0xff, 0xfe, 0x00}); err == nil {
		t.Fatalf("expected error for invalid UTF-8")
	}
}
