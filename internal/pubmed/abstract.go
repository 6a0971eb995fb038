// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"strings"

	"github.com/pdiddy/pubmed-engine/internal/node"
)

// sectionSeparator sits between abstract sections.
const sectionSeparator = "\n\n"

// AbstractSection is one part of a structured abstract.
type AbstractSection struct {
	Label    string
	Category string
	Text     string
}

// String renders the section as "LABEL: text", or just the text when
// the section has no label.
func (s AbstractSection) String() string {
	if s.Label == "" {
		return s.Text
	}
	return s.Label + ": " + s.Text
}

// AbstractSections normalizes an AbstractText field into sections in
// document order. A bare string is a single unlabelled section. Sections
// with blank text are dropped.
func AbstractSections(abstractText any) []AbstractSection {
	items := node.List(abstractText)
	sections := make([]AbstractSection, 0, len(items))
	for _, item := range items {
		text, ok := node.TrimmedText(item)
		if !ok {
			continue
		}
		label, _ := node.Attr(item, "Label")
		category, _ := node.Attr(item, "NlmCategory")
		sections = append(sections, AbstractSection{
			Label:    strings.TrimSpace(label),
			Category: strings.TrimSpace(category),
			Text:     text,
		})
	}
	return sections
}

// ExtractAbstract joins the abstract's sections with a blank line between
// them. It returns nil, never "", when there is no abstract text.
// A labelled section with a blank body is omitted, not rendered as "LABEL: ".
func ExtractAbstract(abstractText any) *string {
	sections := AbstractSections(abstractText)
	if len(sections) == 0 {
		return nil
	}
	parts := make([]string, len(sections))
	for i, s := range sections {
		parts[i] = s.String()
	}
	joined := strings.Join(parts, sectionSeparator)
	return &joined
}
