// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"github.com/pdiddy/pubmed-engine/internal/node"
	"github.com/pdiddy/pubmed-engine/pkg/types"
)

// ExtractGrants converts a GrantList node into grants. Each Grant entry
// is kept even when none of its fields are present. A field element that
// is present but blank maps to "", not nil.
func ExtractGrants(grantList any) []types.ParsedGrant {
	entries := node.List(node.Field(grantList, "Grant"))
	grants := make([]types.ParsedGrant, 0, len(entries))
	for _, g := range entries {
		grants = append(grants, types.ParsedGrant{
			GrantID: node.PresentText(node.Field(g, "GrantID")),
			Acronym: node.PresentText(node.Field(g, "Acronym")),
			Agency:  node.PresentText(node.Field(g, "Agency")),
			Country: node.PresentText(node.Field(g, "Country")),
		})
	}
	return grants
}
