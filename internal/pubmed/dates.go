// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"github.com/pdiddy/pubmed-engine/internal/node"
	"github.com/pdiddy/pubmed-engine/pkg/types"
)

// ExtractArticleDates converts the article's ArticleDate entries. Year,
// month and day are copied as recorded: a missing day stays missing and a
// malformed value is not corrected. Entries that are not elements with
// content are dropped.
func ExtractArticleDates(articleDates any) []types.ParsedArticleDate {
	entries := node.List(articleDates)
	dates := make([]types.ParsedArticleDate, 0, len(entries))
	for _, entry := range entries {
		if _, ok := node.Object(entry); !ok {
			continue
		}
		dates = append(dates, types.ParsedArticleDate{
			Year:  node.PresentText(node.Field(entry, "Year")),
			Month: node.PresentText(node.Field(entry, "Month")),
			Day:   node.PresentText(node.Field(entry, "Day")),
			Type:  node.OptionalAttr(entry, "DateType"),
		})
	}
	return dates
}
