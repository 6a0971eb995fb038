// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tree converts serialized documents into the loosely-typed tree
// read by package node. XML is decoded into objects, sequences and scalars
// following node's conventions; JSON arrays of already converted nodes are
// streamed one node at a time.
package tree

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/pubmed-engine/internal/node"
)

// ErrNoRoot is returned for input without any element.
var ErrNoRoot = errors.New("document has no root element")

// element accumulates one open XML element.
type element struct {
	name     string
	fields   map[string]any
	repeated map[string]bool
	own      strings.Builder // character data directly inside the element
	deep     strings.Builder // character data of the element and its descendants
	children bool
	nested   bool // has a child that is not inline markup
}

// inlineTags are the formatting elements PubMed allows inside titles,
// abstracts, keywords and affiliations.
var inlineTags = map[string]bool{
	"b": true, "i": true, "u": true, "sup": true, "sub": true,
	"em": true, "strong": true, "sc": true, "math": true,
}

func newElement(start xml.StartElement) *element {
	e := &element{name: start.Name.Local, fields: make(map[string]any)}
	for _, a := range start.Attr {
		e.fields[node.AttrPrefix+a.Name.Local] = cleanText(a.Value)
	}
	return e
}

// add stores a child value, turning the field into a sequence on the
// second occurrence of the same name.
func (e *element) add(name string, v any) {
	e.children = true
	if !inlineTags[name] {
		e.nested = true
	}
	existing, ok := e.fields[name]
	switch {
	case !ok:
		e.fields[name] = v
	case e.repeated[name]:
		e.fields[name] = append(existing.([]any), v)
	default:
		if e.repeated == nil {
			e.repeated = make(map[string]bool)
		}
		e.repeated[name] = true
		e.fields[name] = []any{existing, v}
	}
}

// value is the tree form of a closed element. A text-only element without
// attributes collapses to its text. Mixed content keeps the full inner
// text, inline markup included, under node.TextKey. So does an element
// whose only children are inline markup, even with no direct text.
func (e *element) value() any {
	own := strings.TrimSpace(e.own.String())
	if len(e.fields) == 0 {
		return cleanText(own)
	}
	switch {
	case !e.children:
		if own != "" {
			e.fields[node.TextKey] = cleanText(own)
		}
	case own != "" || !e.nested:
		if deep := cleanText(e.deep.String()); deep != "" {
			e.fields[node.TextKey] = deep
		}
	}
	return e.fields
}

// DecodeXML reads one XML document and returns its tree as a single-key
// object mapping the root element name to its value. Non-UTF-8 encodings
// declared in the prolog are converted; HTML named entities are accepted.
func DecodeXML(r io.Reader) (any, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	dec.Entity = xml.HTMLEntity

	var stack []*element
	var root map[string]any

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, newElement(t))
		case xml.CharData:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				top.own.Write(t)
				top.deep.Write(t)
			}
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("decoding XML: unexpected end element %s", t.Name.Local)
			}
			closed := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			v := closed.value()
			if len(stack) == 0 {
				root = map[string]any{closed.name: v}
				continue
			}
			parent := stack[len(stack)-1]
			parent.deep.WriteString(closed.deep.String())
			parent.add(closed.name, v)
		}
	}

	if root == nil {
		return nil, ErrNoRoot
	}
	return root, nil
}

// cleanText trims and NFC-normalizes decoded text so that equal strings
// compare equal regardless of how the source composed accents.
func cleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
