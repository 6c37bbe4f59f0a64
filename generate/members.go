package generate

import (
	"fmt"
	"strings"

	"github.com/dhamidi/dartclass/dart"
)

const maxLineWidth = 78

// namedCallSites reports whether generated constructor invocations
// (copyWith, fromMap) must pass arguments by name. That is the case only
// when the class already has a named-parameter constructor; synthesized
// constructors are positional.
func namedCallSites(c *dart.ClassModel) bool {
	return c.HasNamedConstructor()
}

func constructor(c *dart.ClassModel) {
	if !c.HasConstructor() {
		c.PendingConstructor = constructorText(c, false, false)
		return
	}
	current := strings.TrimSpace(c.ConstructorText)
	if !strings.HasSuffix(current, ";") {
		// A constructor with a body or an initializer list is
		// hand-written logic the generator must not touch.
		return
	}
	canonical := constructorText(c, c.HasNamedConstructor(), strings.HasPrefix(current, "const "))
	if !dart.EqualIgnoringWhitespace(c.ConstructorText, canonical) {
		c.AddReplacement("constructor", c.ConstructorStartLine, c.ConstructorEndLine, c.ConstructorText, canonical)
	}
}

func constructorText(c *dart.ClassModel, named, isConst bool) string {
	prefix := ""
	if isConst {
		prefix = "const "
	}
	if named {
		var sb strings.Builder
		fmt.Fprintf(&sb, "  %s%s({\n", prefix, c.Name)
		for _, f := range c.Fields {
			if f.IsNullable() {
				fmt.Fprintf(&sb, "    this.%s,\n", f.Name)
			} else {
				fmt.Fprintf(&sb, "    required this.%s,\n", f.Name)
			}
		}
		sb.WriteString("  });")
		return sb.String()
	}

	params := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		params[i] = "this." + f.Name
	}
	oneLine := fmt.Sprintf("  %s%s(%s);", prefix, c.Name, strings.Join(params, ", "))
	if len(oneLine) <= maxLineWidth {
		return oneLine
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "  %s%s(\n", prefix, c.Name)
	for _, p := range params {
		fmt.Fprintf(&sb, "    %s,\n", p)
	}
	sb.WriteString("  );")
	return sb.String()
}

func copyWith(c *dart.ClassModel) {
	named := namedCallSites(c)
	var sb strings.Builder
	fmt.Fprintf(&sb, "  %s copyWith({\n", c.TypeString())
	for _, f := range c.Fields {
		typ := f.Type
		if !f.IsNullable() {
			typ += "?"
		}
		fmt.Fprintf(&sb, "    %s %s,\n", typ, f.Name)
	}
	sb.WriteString("  }) {\n")
	fmt.Fprintf(&sb, "    return %s(\n", c.Name)
	for _, f := range c.Fields {
		if named {
			fmt.Fprintf(&sb, "      %s: %s ?? this.%s,\n", f.Name, f.Name, f.Name)
		} else {
			fmt.Fprintf(&sb, "      %s ?? this.%s,\n", f.Name, f.Name)
		}
	}
	sb.WriteString("    );\n")
	sb.WriteString("  }")

	apply(c, "copyWith", sb.String(),
		c.TypeString()+" copyWith(", c.Name+" copyWith(")
}

func toMap(c *dart.ClassModel) {
	var sb strings.Builder
	sb.WriteString("  Map<String, dynamic> toMap() {\n")
	sb.WriteString("    return {\n")
	for _, f := range c.Fields {
		fmt.Fprintf(&sb, "      '%s': %s,\n", f.RawName, toMapValue(f))
	}
	sb.WriteString("    };\n")
	sb.WriteString("  }")

	apply(c, "toMap", sb.String(), "Map<String, dynamic> toMap(")
}

func toMapValue(f dart.PropertyModel) string {
	access := "."
	if f.IsNullable() {
		access = "?."
	}
	switch {
	case f.IsList() || f.IsSet():
		if f.IsPrimitive() {
			return f.Name
		}
		expr := fmt.Sprintf("%s%smap((x) => x.toMap())", f.Name, access)
		if f.IsList() {
			expr += ".toList()"
		} else {
			expr += ".toSet()"
		}
		return expr
	case f.IsPrimitive():
		return f.Name
	default:
		return fmt.Sprintf("%s%stoMap()", f.Name, access)
	}
}

func fromMap(c *dart.ClassModel) {
	named := namedCallSites(c)
	var sb strings.Builder
	fmt.Fprintf(&sb, "  factory %s.fromMap(Map<String, dynamic> map) {\n", c.Name)
	fmt.Fprintf(&sb, "    return %s(\n", c.Name)
	for _, f := range c.Fields {
		if named {
			fmt.Fprintf(&sb, "      %s: %s,\n", f.Name, fromMapValue(f))
		} else {
			fmt.Fprintf(&sb, "      %s,\n", fromMapValue(f))
		}
	}
	sb.WriteString("    );\n")
	sb.WriteString("  }")

	apply(c, "fromMap", sb.String(), "factory "+c.Name+".fromMap(")
}

func fromMapValue(f dart.PropertyModel) string {
	key := fmt.Sprintf("map['%s']", f.RawName)
	switch {
	case f.IsList() || f.IsSet():
		ctor := "List"
		if f.IsSet() {
			ctor = "Set"
		}
		elem := f.ElementType()
		src := key
		if !f.IsNullable() {
			// const [] is iterable either way; an untyped const {} would
			// be a Map literal and break Set.from.
			src = key + " ?? const []"
		}
		var expr string
		if f.IsPrimitive() {
			expr = fmt.Sprintf("%s<%s>.from(%s)", ctor, elem, src)
		} else {
			expr = fmt.Sprintf("%s<%s>.from((%s).map((x) => %s.fromMap(x)))", ctor, elem, src, elem)
		}
		if f.IsNullable() {
			return fmt.Sprintf("%s != null ? %s : null", key, expr)
		}
		return expr
	case f.IsMap():
		target := f.BaseType()
		if target == "Map" {
			target = "Map<String, dynamic>"
		}
		if f.IsNullable() {
			return fmt.Sprintf("%s != null ? %s.from(%s) : null", key, target, key)
		}
		return fmt.Sprintf("%s.from(%s ?? const {})", target, key)
	}

	switch f.BaseType() {
	case "String":
		if f.IsNullable() {
			return key
		}
		return key + " ?? ''"
	case "int":
		if f.IsNullable() {
			return key + "?.toInt()"
		}
		return key + "?.toInt() ?? 0"
	case "double":
		if f.IsNullable() {
			return key + "?.toDouble()"
		}
		return key + "?.toDouble() ?? 0.0"
	case "num":
		if f.IsNullable() {
			return key
		}
		return key + " ?? 0"
	case "bool":
		if f.IsNullable() {
			return key
		}
		return key + " ?? false"
	case "dynamic":
		return key
	default:
		if f.IsNullable() {
			return fmt.Sprintf("%s != null ? %s.fromMap(%s) : null", key, f.BaseType(), key)
		}
		return fmt.Sprintf("%s.fromMap(%s)", f.BaseType(), key)
	}
}

func toJSON(c *dart.ClassModel, imports *dart.ImportBlock) {
	text := "  String toJson() => json.encode(toMap());"
	if imports != nil {
		imports.RequiresImport("dart:convert")
	}
	apply(c, "toJson", text, "String toJson(")
}

func fromJSON(c *dart.ClassModel, imports *dart.ImportBlock) {
	text := fmt.Sprintf("  factory %s.fromJson(String source) => %s.fromMap(json.decode(source));", c.Name, c.Name)
	if imports != nil {
		imports.RequiresImport("dart:convert")
	}
	apply(c, "fromJson", text, "factory "+c.Name+".fromJson(")
}

func toStringMember(c *dart.ClassModel) {
	parts := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		parts[i] = fmt.Sprintf("%s: $%s", f.Name, f.Name)
	}
	literal := fmt.Sprintf("'%s(%s)'", c.Name, strings.Join(parts, ", "))

	oneLine := fmt.Sprintf("  String toString() => %s;", literal)
	var text string
	if len(oneLine) <= maxLineWidth {
		text = "  @override\n" + oneLine
	} else {
		text = fmt.Sprintf("  @override\n  String toString() {\n    return %s;\n  }", literal)
	}
	apply(c, "toString", text, "String toString(")
}

func equalsOperator(c *dart.ClassModel, imports *dart.ImportBlock) {
	hasCollection := false
	for _, f := range c.Fields {
		if f.IsCollection() {
			hasCollection = true
			break
		}
	}

	var sb strings.Builder
	sb.WriteString("  @override\n")
	sb.WriteString("  bool operator ==(Object other) {\n")
	sb.WriteString("    if (identical(this, other)) return true;\n")
	if hasCollection {
		sb.WriteString("    final collectionEquals = const DeepCollectionEquality().equals;\n")
		if imports != nil {
			imports.RequiresImport("package:collection/collection.dart")
		}
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "    return other is %s", c.TypeString())
	for _, f := range c.Fields {
		if f.IsCollection() {
			fmt.Fprintf(&sb, " &&\n        collectionEquals(other.%s, %s)", f.Name, f.Name)
		} else {
			fmt.Fprintf(&sb, " &&\n        other.%s == %s", f.Name, f.Name)
		}
	}
	sb.WriteString(";\n")
	sb.WriteString("  }")

	apply(c, "==", sb.String(), "bool operator ==(")
}

func hashCodeGetter(c *dart.ClassModel) {
	hashes := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		hashes[i] = f.Name + ".hashCode"
	}
	text := fmt.Sprintf("  @override\n  int get hashCode => %s;", strings.Join(hashes, " ^ "))
	apply(c, "hashCode", text, "int get hashCode")
}

func equatableProps(c *dart.ClassModel, imports *dart.ImportBlock) {
	elem := "Object"
	for _, f := range c.Fields {
		if f.IsNullable() {
			elem = "Object?"
			break
		}
	}
	names := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		names[i] = f.Name
	}
	text := fmt.Sprintf("  @override\n  List<%s> get props => [%s];", elem, strings.Join(names, ", "))
	if imports != nil {
		imports.RequiresImport("package:equatable/equatable.dart")
	}
	apply(c, "props", text, "List<Object> get props", "List<Object?> get props")
}
