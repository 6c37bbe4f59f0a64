package generate

import (
	"strings"
	"testing"

	"github.com/dhamidi/dartclass/dart"
	"github.com/dhamidi/dartclass/edit"
)

// runPipeline is the whole flow a host performs: scan, generate, plan,
// apply. It returns the rewritten document and the planned edits.
func runPipeline(t *testing.T, source string, opts Options) (string, []edit.TextEdit) {
	t.Helper()
	classes, imports, err := dart.ClassModelsFromSource([]byte(source))
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	for _, c := range classes {
		DataClass(c, imports, opts)
	}
	edits, err := edit.Plan(classes, imports, "")
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}
	return edit.Apply(source, edits), edits
}

func TestGenerateConstructorOrder(t *testing.T) {
	source := `class Foo {
  final String name;
  final int age;
}
`
	out, edits := runPipeline(t, source, DefaultOptions())
	if len(edits) == 0 {
		t.Fatalf("expected edits for bare class")
	}
	if !strings.Contains(out, "  Foo(this.name, this.age);") {
		t.Errorf("constructor missing or out of order:\n%s", out)
	}
}

func TestGenerateFullMemberSet(t *testing.T) {
	source := `class Foo {
  final String name;
  final int age;
}
`
	out, _ := runPipeline(t, source, DefaultOptions())

	for _, want := range []string{
		"  Foo(this.name, this.age);",
		"  Foo copyWith({",
		"    String? name,",
		"    int? age,",
		"      name ?? this.name,",
		"  Map<String, dynamic> toMap() {",
		"      'name': name,",
		"  factory Foo.fromMap(Map<String, dynamic> map) {",
		"      map['name'] ?? '',",
		"      map['age']?.toInt() ?? 0,",
		"  String toJson() => json.encode(toMap());",
		"  factory Foo.fromJson(String source) => Foo.fromMap(json.decode(source));",
		"  String toString() => 'Foo(name: $name, age: $age)';",
		"  bool operator ==(Object other) {",
		"        other.name == name &&",
		"  int get hashCode => name.hashCode ^ age.hashCode;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if !strings.HasPrefix(out, "import 'dart:convert';\n") {
		t.Errorf("dart:convert import not inserted at top:\n%s", out)
	}
}

func TestGenerateIdempotent(t *testing.T) {
	sources := []string{
		"class Foo {\n  final String name;\n  final int age;\n}\n",
		"class Bag {\n  final List<int> values;\n  final Map<String, int> counts;\n}\n",
		"class User {\n  final String name;\n\n  User({required this.name});\n}\n",
	}
	for _, source := range sources {
		once, _ := runPipeline(t, source, DefaultOptions())
		twice, edits := runPipeline(t, once, DefaultOptions())
		if len(edits) != 0 {
			t.Errorf("second run produced %d edit(s) for:\n%s", len(edits), source)
		}
		if once != twice {
			t.Errorf("generation not idempotent:\nfirst:\n%s\nsecond:\n%s", once, twice)
		}
	}
}

func TestGenerateUntouchedRegions(t *testing.T) {
	source := `class Foo {
  final String name;

  // keep me exactly as written
  String shout() {
    return name.toUpperCase();
  }
}
`
	out, _ := runPipeline(t, source, DefaultOptions())
	for _, want := range []string{
		"  // keep me exactly as written",
		"  String shout() {",
		"    return name.toUpperCase();",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("hand-written region not preserved: %q missing\n%s", want, out)
		}
	}
}

func TestGenerateNamedCallSites(t *testing.T) {
	source := `class User {
  final String name;
  final int? age;

  User({required this.name, this.age});
}
`
	out, _ := runPipeline(t, source, DefaultOptions())
	if !strings.Contains(out, "      name: name ?? this.name,") {
		t.Errorf("copyWith does not use named arguments:\n%s", out)
	}
	if !strings.Contains(out, "      name: map['name'] ?? '',") {
		t.Errorf("fromMap does not use named arguments:\n%s", out)
	}
	if !strings.Contains(out, "    required this.name,") {
		t.Errorf("canonical constructor lost required:\n%s", out)
	}
	if !strings.Contains(out, "    this.age,") || strings.Contains(out, "required this.age") {
		t.Errorf("nullable field must not be required:\n%s", out)
	}
}

func TestGenerateEquatable(t *testing.T) {
	source := `import 'package:equatable/equatable.dart';

class Point extends Equatable {
  final int x;
  final int y;
}
`
	out, _ := runPipeline(t, source, DefaultOptions())
	if !strings.Contains(out, "  List<Object> get props => [x, y];") {
		t.Errorf("props getter missing:\n%s", out)
	}
	if strings.Contains(out, "operator ==") {
		t.Errorf("equatable class must not get operator ==:\n%s", out)
	}
	if strings.Count(out, "package:equatable/equatable.dart") != 1 {
		t.Errorf("equatable import duplicated or dropped:\n%s", out)
	}
}

func TestGenerateCollectionEquality(t *testing.T) {
	source := `class Bag {
  final List<int> values;
}
`
	out, _ := runPipeline(t, source, DefaultOptions())
	if !strings.Contains(out, "    final collectionEquals = const DeepCollectionEquality().equals;") {
		t.Errorf("deep equality helper missing:\n%s", out)
	}
	if !strings.Contains(out, "collectionEquals(other.values, values)") {
		t.Errorf("collection comparison missing:\n%s", out)
	}
	if !strings.Contains(out, "import 'package:collection/collection.dart';") {
		t.Errorf("collection import missing:\n%s", out)
	}
	if !strings.Contains(out, "List<int>.from(map['values'] ?? const [])") {
		t.Errorf("fromMap list handling missing:\n%s", out)
	}
}

func TestGenerateLeavesMultiLineDeclarations(t *testing.T) {
	source := `class Foo extends Bar
    implements Baz {
  final String name;
}
`
	out, edits := runPipeline(t, source, DefaultOptions())
	if len(edits) != 0 {
		t.Fatalf("unrecognized declaration produced edits: %v", edits)
	}
	if out != source {
		t.Errorf("unrecognized declaration rewritten:\n%s", out)
	}
}

func TestGenerateSetFromMap(t *testing.T) {
	source := `class Bag {
  final Set<int> ids;
}
`
	out, _ := runPipeline(t, source, DefaultOptions())
	if !strings.Contains(out, "Set<int>.from(map['ids'] ?? const [])") {
		t.Errorf("set fallback must be an iterable literal:\n%s", out)
	}
	if strings.Contains(out, "?? const {}") {
		t.Errorf("untyped const {} fallback generated:\n%s", out)
	}
}

func TestGenerateSkipsInvalidAndState(t *testing.T) {
	t.Run("invalid class", func(t *testing.T) {
		source := "class Empty {\n}\n"
		out, edits := runPipeline(t, source, DefaultOptions())
		if len(edits) != 0 {
			t.Errorf("invalid class produced edits: %v", edits)
		}
		if out != source {
			t.Errorf("invalid class rewritten:\n%s", out)
		}
	})

	t.Run("state class", func(t *testing.T) {
		source := "class _FooState extends State<Foo> {\n  final int counter;\n}\n"
		out, edits := runPipeline(t, source, DefaultOptions())
		if len(edits) != 0 {
			t.Errorf("state class produced edits: %v", edits)
		}
		if out != source {
			t.Errorf("state class rewritten:\n%s", out)
		}
	})
}

func TestGenerateWidgetGetsNoSerialization(t *testing.T) {
	source := `class FancyButton extends StatelessWidget {
  final String label;
}
`
	out, _ := runPipeline(t, source, DefaultOptions())
	if !strings.Contains(out, "  FancyButton(this.label);") {
		t.Errorf("widget constructor missing:\n%s", out)
	}
	if !strings.Contains(out, "copyWith") {
		t.Errorf("widget copyWith missing:\n%s", out)
	}
	for _, forbidden := range []string{"toMap", "fromMap", "toJson", "hashCode"} {
		if strings.Contains(out, forbidden) {
			t.Errorf("widget got %s:\n%s", forbidden, out)
		}
	}
}

func TestGenerateRespectsOptions(t *testing.T) {
	source := `class Foo {
  final String name;
}
`
	opts := DefaultOptions()
	opts.ToMap, opts.FromMap, opts.ToJson, opts.FromJson = false, false, false, false
	opts.Equality = false

	out, _ := runPipeline(t, source, opts)
	for _, forbidden := range []string{"toMap", "toJson", "operator ==", "hashCode"} {
		if strings.Contains(out, forbidden) {
			t.Errorf("disabled member %s generated:\n%s", forbidden, out)
		}
	}
	if !strings.Contains(out, "  Foo(this.name);") || !strings.Contains(out, "copyWith") {
		t.Errorf("enabled members missing:\n%s", out)
	}
}

func TestGenerateOnlySelectedClasses(t *testing.T) {
	source := `class A {
  final int x;
}

class B {
  final int y;
}
`
	classes, imports, err := dart.ClassModelsFromSource([]byte(source))
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	for _, c := range dart.SelectClasses(classes, []string{"B"}) {
		DataClass(c, imports, DefaultOptions())
	}
	edits, err := edit.Plan(classes, imports, "")
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}
	out := edit.Apply(source, edits)

	if !strings.Contains(out, "  B(this.y);") {
		t.Errorf("selected class not generated:\n%s", out)
	}
	if strings.Contains(out, "  A(this.x);") {
		t.Errorf("unselected class was generated:\n%s", out)
	}
}
