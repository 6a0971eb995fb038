// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"github.com/pdiddy/pubmed-engine/internal/node"
	"github.com/pdiddy/pubmed-engine/pkg/types"
)

// ExtractMeshTerms converts a MeshHeadingList node into MeSH terms.
// Headings without descriptor text are skipped; a heading without
// qualifiers is kept with an empty qualifier list.
func ExtractMeshTerms(headingList any) []types.ParsedMeshTerm {
	headings := node.List(node.Field(headingList, "MeshHeading"))
	terms := make([]types.ParsedMeshTerm, 0, len(headings))
	for _, heading := range headings {
		descriptor := firstOf(node.Field(heading, "DescriptorName"))
		name, ok := node.TrimmedText(descriptor)
		if !ok {
			continue
		}
		terms = append(terms, types.ParsedMeshTerm{
			Descriptor:   name,
			DescriptorUI: node.OptionalAttr(descriptor, "UI"),
			IsMajorTopic: majorTopic(descriptor),
			Qualifiers:   extractQualifiers(node.Field(heading, "QualifierName")),
		})
	}
	return terms
}

func extractQualifiers(v any) []types.ParsedMeshQualifier {
	items := node.List(v)
	qualifiers := make([]types.ParsedMeshQualifier, 0, len(items))
	for _, q := range items {
		name, ok := node.TrimmedText(q)
		if !ok {
			continue
		}
		qualifiers = append(qualifiers, types.ParsedMeshQualifier{
			Name:         name,
			UI:           node.OptionalAttr(q, "UI"),
			IsMajorTopic: majorTopic(q),
		})
	}
	return qualifiers
}

// majorTopic reads MajorTopicYN; absent means false.
func majorTopic(v any) bool {
	flag, ok := node.Attr(v, "MajorTopicYN")
	return ok && node.IsYes(flag)
}
