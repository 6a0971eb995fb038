// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package node reads the loosely-typed tree produced by a generic
// XML-to-tree conversion.
//
// Tree conventions: an element with children or attributes is a
// map[string]any; an element that occurs more than once under the same
// parent is a []any; a text-only element is a scalar (string, float64,
// int, int64, bool or json.Number). Attribute keys carry AttrPrefix and the
// text of an element that also has attributes is stored under TextKey.
//
// Whether a field is present and how many times it occurs are independent
// questions. List answers the second one so that callers never inspect
// cardinality themselves.
package node

import (
	"encoding/json"
	"strconv"
	"strings"
)

const (
	// AttrPrefix marks attribute keys, e.g. "@_ValidYN".
	AttrPrefix = "@_"

	// TextKey holds element text when the element also has attributes or children.
	TextKey = "#text"
)

// List normalizes a field that may be absent, a single item, or a sequence
// into a sequence in document order. Absent yields an empty slice; a
// sequence is returned as is.
func List(v any) []any {
	switch t := v.(type) {
	case nil:
		return []any{}
	case []any:
		return t
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = m
		}
		return out
	default:
		return []any{v}
	}
}

// Object returns v as an object when it is one.
func Object(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// Field returns the named child of v, or nil when v is not an object or
// has no such child.
func Field(v any, name string) any {
	m, ok := Object(v)
	if !ok {
		return nil
	}
	return m[name]
}

// Path follows a chain of child names. Each step must land on an object;
// a sequence in the middle of the path yields nil.
func Path(v any, names ...string) any {
	for _, name := range names {
		v = Field(v, name)
		if v == nil {
			return nil
		}
	}
	return v
}

// Text returns the text content of v. Scalars are formatted without
// rounding; objects yield their TextKey entry. Sequences and absent
// values report false.
func Text(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	case map[string]any:
		return Text(t[TextKey])
	default:
		return "", false
	}
}

// TrimmedText is Text with surrounding whitespace removed. Blank text
// reports false.
func TrimmedText(v any) (string, bool) {
	s, ok := Text(v)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// OptionalText returns the trimmed text of v as a pointer, or nil when v
// is absent, has no text, or its text is blank.
func OptionalText(v any) *string {
	s, ok := TrimmedText(v)
	if !ok {
		return nil
	}
	return &s
}

// PresentText returns the trimmed text of v whenever v carries text,
// blank included. Only an absent or text-less v yields nil.
func PresentText(v any) *string {
	s, ok := Text(v)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	return &s
}

// Attr returns the named attribute of v. Only objects carry attributes.
func Attr(v any, name string) (string, bool) {
	m, ok := Object(v)
	if !ok {
		return "", false
	}
	return Text(m[AttrPrefix+name])
}

// OptionalAttr is Attr returning a trimmed pointer, nil when absent or blank.
func OptionalAttr(v any, name string) *string {
	s, ok := Attr(v, name)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// IsYes interprets the schema's "Y"/"N" flag convention. Anything other
// than a "Y" (case-insensitive, surrounding space ignored) is false.
func IsYes(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "Y")
}

// AttrIs reports whether the named attribute of v equals want,
// ignoring case and surrounding space.
func AttrIs(v any, name, want string) bool {
	s, ok := Attr(v, name)
	return ok && strings.EqualFold(strings.TrimSpace(s), want)
}
