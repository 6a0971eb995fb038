// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"github.com/pdiddy/pubmed-engine/internal/node"
	"github.com/pdiddy/pubmed-engine/pkg/types"
)

// ExtractAuthors converts an AuthorList node into authors in document
// order. Every Author entry yields exactly one ParsedAuthor, including
// entries with no usable name.
func ExtractAuthors(authorList any) []types.ParsedAuthor {
	entries := node.List(node.Field(authorList, "Author"))
	authors := make([]types.ParsedAuthor, 0, len(entries))
	for _, entry := range entries {
		authors = append(authors, parseAuthor(entry))
	}
	return authors
}

func parseAuthor(entry any) types.ParsedAuthor {
	affiliations := extractAffiliations(node.Field(entry, "AffiliationInfo"))

	if collective := node.OptionalText(node.Field(entry, "CollectiveName")); collective != nil {
		return types.ParsedAuthor{
			Kind:           types.AuthorCollective,
			CollectiveName: collective,
			Affiliations:   affiliations,
		}
	}

	return types.ParsedAuthor{
		Kind:         types.AuthorIndividual,
		LastName:     node.OptionalText(node.Field(entry, "LastName")),
		ForeName:     node.OptionalText(node.Field(entry, "ForeName")),
		Initials:     node.OptionalText(node.Field(entry, "Initials")),
		Affiliations: affiliations,
	}
}

// extractAffiliations flattens AffiliationInfo entries, each of which may
// itself hold one or several Affiliation elements.
func extractAffiliations(info any) []string {
	affiliations := []string{}
	for _, block := range node.List(info) {
		for _, aff := range node.List(node.Field(block, "Affiliation")) {
			if s, ok := node.TrimmedText(aff); ok {
				affiliations = append(affiliations, s)
			}
		}
	}
	return affiliations
}
