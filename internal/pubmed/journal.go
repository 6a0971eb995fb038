// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"github.com/pdiddy/pubmed-engine/internal/node"
	"github.com/pdiddy/pubmed-engine/pkg/types"
)

// ExtractJournal builds journal information from the Journal node and the
// article's Pagination node, which lives outside Journal.
//
// A missing Journal yields nil, so callers can tell "no journal block"
// apart from "journal block with nothing in it". An empty <Journal/>
// element still yields a (blank) record.
func ExtractJournal(journal, pagination any) *types.ParsedJournalInfo {
	if !journalPresent(journal) {
		return nil
	}

	info := &types.ParsedJournalInfo{
		ISOAbbreviation: node.OptionalText(node.Field(journal, "ISOAbbreviation")),
		Pagination:      extractPagination(pagination),
	}

	info.Title = node.OptionalText(node.Field(journal, "Title"))
	if info.Title == nil {
		info.Title = info.ISOAbbreviation
	}

	issn := firstOf(node.Field(journal, "ISSN"))
	info.ISSN = node.OptionalText(issn)
	if info.ISSN != nil {
		info.ISSNType = node.OptionalAttr(issn, "IssnType")
	}

	issue := node.Field(journal, "JournalIssue")
	info.Volume = node.OptionalText(node.Field(issue, "Volume"))
	info.Issue = node.OptionalText(node.Field(issue, "Issue"))
	info.PubDate = extractJournalPubDate(node.Field(issue, "PubDate"))

	return info
}

// journalPresent accepts an object or an empty element. Any other shape
// is a mismatch and counts as absent.
func journalPresent(journal any) bool {
	switch t := journal.(type) {
	case map[string]any:
		return true
	case string:
		return true
	case []any:
		return len(t) > 0 && journalPresent(t[0])
	default:
		return false
	}
}

// extractPagination prefers MedlinePgn, then StartPage[-EndPage].
func extractPagination(pagination any) *string {
	if pgn := node.OptionalText(node.Field(pagination, "MedlinePgn")); pgn != nil {
		return pgn
	}
	start := node.OptionalText(node.Field(pagination, "StartPage"))
	if start == nil {
		return nil
	}
	end := node.OptionalText(node.Field(pagination, "EndPage"))
	if end == nil || *end == *start {
		return start
	}
	return types.Str(*start + "-" + *end)
}

func extractJournalPubDate(pubDate any) *types.JournalPubDate {
	if _, ok := node.Object(pubDate); !ok {
		return nil
	}
	d := &types.JournalPubDate{
		Year:        node.OptionalText(node.Field(pubDate, "Year")),
		Month:       node.OptionalText(node.Field(pubDate, "Month")),
		Day:         node.OptionalText(node.Field(pubDate, "Day")),
		Season:      node.OptionalText(node.Field(pubDate, "Season")),
		MedlineDate: node.OptionalText(node.Field(pubDate, "MedlineDate")),
	}
	if *d == (types.JournalPubDate{}) {
		return nil
	}
	return d
}

// firstOf returns the first item of a possibly repeated field.
func firstOf(v any) any {
	items := node.List(v)
	if len(items) == 0 {
		return nil
	}
	return items[0]
}
