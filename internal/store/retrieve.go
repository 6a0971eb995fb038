// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/pubmed-engine/pkg/types"
)

// QueryOptions holds parameters for article queries.
type QueryOptions struct {
	// Query is a full-text search over title and abstract.
	Query string

	// MeSH filters by descriptor name (case-insensitive).
	MeSH string

	// MajorOnly restricts the MeSH filter to major-topic headings.
	MajorOnly bool

	// Keyword filters by author keyword (case-insensitive).
	Keyword string

	// Author filters by individual author last name (case-insensitive).
	Author string

	// DOI filters by exact DOI (case-insensitive).
	DOI string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.MeSH == "" && q.Keyword == "" && q.Author == "" && q.DOI == ""
}

// Retrieve queries stored articles with optional full-text search and
// structured filters. Full-text results are ranked by relevance; other
// queries are ordered by PMID.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]types.ParsedArticle, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		query  = strings.TrimSpace(opts.Query)
		useFTS = query != "" && s.fts
	)

	if useFTS {
		qb.WriteString(
			`SELECT a.record FROM articles_fts
			JOIN articles a ON a.rowid = articles_fts.rowid
			WHERE articles_fts MATCH ?`)
		args = append(args, query)
	} else {
		qb.WriteString(`SELECT a.record FROM articles a WHERE 1=1`)
		for _, term := range strings.Fields(query) {
			qb.WriteString(` AND (a.title LIKE ? ESCAPE '\' OR a.abstract LIKE ? ESCAPE '\')`)
			pattern := "%" + escapeLike(term) + "%"
			args = append(args, pattern, pattern)
		}
	}

	if opts.MeSH != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM article_mesh m WHERE m.pmid = a.pmid AND m.descriptor = ? COLLATE NOCASE`)
		if opts.MajorOnly {
			qb.WriteString(` AND m.major = 1`)
		}
		qb.WriteString(`)`)
		args = append(args, opts.MeSH)
	}

	if opts.Keyword != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM article_keywords k WHERE k.pmid = a.pmid AND k.keyword = ? COLLATE NOCASE)`)
		args = append(args, opts.Keyword)
	}

	if opts.Author != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM article_authors au WHERE au.pmid = a.pmid AND au.last_name = ? COLLATE NOCASE)`)
		args = append(args, opts.Author)
	}

	if opts.DOI != "" {
		qb.WriteString(` AND a.doi = ? COLLATE NOCASE`)
		args = append(args, opts.DOI)
	}

	if useFTS {
		qb.WriteString(` ORDER BY articles_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY CAST(a.pmid AS INTEGER), a.pmid`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	results := []types.ParsedArticle{}
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		a, err := decodeRecord(record)
		if err != nil {
			return nil, err
		}
		results = append(results, a)
	}

	return results, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
