package dart

import (
	"strings"

	"github.com/iancoleman/strcase"
)

// CollectionKind classifies a declared type as one of Dart's core
// collection interfaces, or CollectionNone for everything else.
type CollectionKind string

const (
	CollectionNone CollectionKind = "none"
	CollectionList CollectionKind = "list"
	CollectionSet  CollectionKind = "set"
	CollectionMap  CollectionKind = "map"
)

// PropertyModel is one field of a class. Name is the camel-cased field
// name used in generated code; RawName preserves the spelling found in
// the source (or the JSON key the field came from) and is what map keys in
// serialization use. Everything else about the type is derived on demand.
type PropertyModel struct {
	Type    string
	Name    string
	RawName string
	Line    int
	IsFinal bool
	IsConst bool
}

func NewProperty(declaredType, name string, line int) PropertyModel {
	return PropertyModel{
		Type:    declaredType,
		Name:    strcase.ToLowerCamel(name),
		RawName: name,
		Line:    line,
	}
}

func (p PropertyModel) IsNullable() bool {
	return strings.HasSuffix(p.Type, "?")
}

// BaseType is the declared type without a trailing nullability marker.
func (p PropertyModel) BaseType() string {
	return strings.TrimSuffix(p.Type, "?")
}

func (p PropertyModel) Kind() CollectionKind {
	base := p.BaseType()
	switch {
	case base == "List" || strings.HasPrefix(base, "List<"):
		return CollectionList
	case base == "Set" || strings.HasPrefix(base, "Set<"):
		return CollectionSet
	case base == "Map" || strings.HasPrefix(base, "Map<"):
		return CollectionMap
	}
	return CollectionNone
}

func (p PropertyModel) IsList() bool       { return p.Kind() == CollectionList }
func (p PropertyModel) IsSet() bool        { return p.Kind() == CollectionSet }
func (p PropertyModel) IsMap() bool        { return p.Kind() == CollectionMap }
func (p PropertyModel) IsCollection() bool { return p.Kind() != CollectionNone }

// ElementType is the type argument of a List or Set, "dynamic" when the
// declaration has none. Non-collection types return their base type so
// primitiveness checks can treat both uniformly.
func (p PropertyModel) ElementType() string {
	base := p.BaseType()
	switch p.Kind() {
	case CollectionList, CollectionSet:
		open := strings.Index(base, "<")
		if open < 0 || !strings.HasSuffix(base, ">") {
			return "dynamic"
		}
		return strings.TrimSpace(base[open+1 : len(base)-1])
	case CollectionMap:
		return "dynamic"
	}
	return base
}

// IsPrimitive reports whether the value (the element for a List or Set)
// serializes without a toMap call. Maps count as primitive because they
// already are the serialized shape.
func (p PropertyModel) IsPrimitive() bool {
	if p.IsMap() {
		return true
	}
	switch strings.TrimSuffix(p.ElementType(), "?") {
	case "String", "num", "dynamic", "bool", "int", "double":
		return true
	}
	return false
}

// DefaultValue is the literal used when a serialized value is missing.
func (p PropertyModel) DefaultValue() string {
	switch p.Kind() {
	case CollectionList:
		return "const []"
	case CollectionSet, CollectionMap:
		return "const {}"
	}
	switch p.BaseType() {
	case "String":
		return "''"
	case "num", "int":
		return "0"
	case "double":
		return "0.0"
	case "bool":
		return "false"
	case "dynamic":
		return "null"
	default:
		return p.BaseType() + "()"
	}
}
