// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"github.com/pdiddy/pubmed-engine/internal/node"
)

// ExtractDOI resolves the article DOI. The first match wins, in order:
//
//  1. an ELocationID with EIdType "doi" and ValidYN "Y";
//  2. an ELocationID with EIdType "doi", whatever its ValidYN;
//  3. an ArticleId with IdType "doi" in the ArticleIdList.
func ExtractDOI(eLocationIDs, articleIDList any) *string {
	locations := node.List(eLocationIDs)

	for _, loc := range locations {
		if !node.AttrIs(loc, "EIdType", "doi") {
			continue
		}
		if valid, ok := node.Attr(loc, "ValidYN"); ok && node.IsYes(valid) {
			if doi := node.OptionalText(loc); doi != nil {
				return doi
			}
		}
	}

	for _, loc := range locations {
		if node.AttrIs(loc, "EIdType", "doi") {
			if doi := node.OptionalText(loc); doi != nil {
				return doi
			}
		}
	}

	return articleID(articleIDList, "doi")
}

// ExtractPMCID returns the PubMed Central identifier from the
// ArticleIdList, if any.
func ExtractPMCID(articleIDList any) *string {
	return articleID(articleIDList, "pmc")
}

// articleID returns the first ArticleId whose IdType matches idType.
func articleID(articleIDList any, idType string) *string {
	for _, id := range node.List(node.Field(articleIDList, "ArticleId")) {
		if node.AttrIs(id, "IdType", idType) {
			if v := node.OptionalText(id); v != nil {
				return v
			}
		}
	}
	return nil
}
