// Package generate derives the canonical data-class members for a scanned
// class model and queues them on the model as inserts or in-place
// replacements. It owns only the member text; where edits land is decided
// by the model's replacement planning.
package generate

import (
	"github.com/dhamidi/dartclass/dart"
)

// Options selects which members to derive. The zero value generates
// nothing; use DefaultOptions for the full canonical set.
type Options struct {
	Constructor bool
	CopyWith    bool
	ToMap       bool
	FromMap     bool
	ToJson      bool
	FromJson    bool
	ToString    bool
	Equality    bool
}

func DefaultOptions() Options {
	return Options{
		Constructor: true,
		CopyWith:    true,
		ToMap:       true,
		FromMap:     true,
		ToJson:      true,
		FromJson:    true,
		ToString:    true,
		Equality:    true,
	}
}

// DataClass populates the model's pending inserts and replacements with
// the canonical member set. Members already present and textually current
// are left untouched, so running this twice over the same source queues
// nothing the second time. Invalid classes and State subclasses are
// skipped entirely; widget classes only get a constructor and copyWith
// since they are not value objects.
func DataClass(c *dart.ClassModel, imports *dart.ImportBlock, opts Options) {
	if !c.IsValid() || c.IsStateClass() {
		return
	}
	if opts.Constructor {
		constructor(c)
	}
	if opts.CopyWith {
		copyWith(c)
	}
	if c.IsWidget() {
		return
	}
	if opts.ToMap {
		toMap(c)
	}
	if opts.FromMap {
		fromMap(c)
	}
	if opts.ToJson {
		toJSON(c, imports)
	}
	if opts.FromJson {
		fromJSON(c, imports)
	}
	if opts.ToString {
		toStringMember(c)
	}
	if opts.Equality {
		if c.UsesEquatable() {
			equatableProps(c, imports)
		} else {
			equalsOperator(c, imports)
			hashCodeGetter(c)
		}
	}
}

// apply queues text for one member: replace the existing span when its
// content went stale, insert before the closing brace when the member is
// new, do nothing when the source already matches.
func apply(c *dart.ClassModel, name, text string, prefixes ...string) {
	if part := c.FindPart(name, prefixes...); part != nil {
		if !dart.EqualIgnoringWhitespace(part.CurrentText, text) {
			c.AddReplacement(name, part.StartLine, part.EndLine, part.CurrentText, text)
		}
		return
	}
	c.AppendInsert(text)
}
