// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"github.com/pdiddy/pubmed-engine/internal/node"
)

// ExtractPublicationTypes returns the PublicationType labels in document
// order. Duplicates and case are kept as recorded.
func ExtractPublicationTypes(typeList any) []string {
	return texts(node.Field(typeList, "PublicationType"))
}

// ExtractKeywords flattens every KeywordList block into one list, in block
// order then entry order. The Owner of each block is not carried over.
func ExtractKeywords(keywordLists any) []string {
	keywords := []string{}
	for _, block := range node.List(keywordLists) {
		keywords = append(keywords, texts(node.Field(block, "Keyword"))...)
	}
	return keywords
}

// ExtractLanguages returns the article's Language codes.
func ExtractLanguages(languages any) []string {
	return texts(languages)
}

// texts returns the non-blank trimmed text of each item of a repeatable
// field. Items may be bare scalars or objects carrying #text.
func texts(v any) []string {
	items := node.List(v)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := node.TrimmedText(item); ok {
			out = append(out, s)
		}
	}
	return out
}
