// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eutils

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/pubmed-engine/internal/pubmed"
	"github.com/pdiddy/pubmed-engine/internal/tree"
	"github.com/pdiddy/pubmed-engine/pkg/types"
)

// Failure records a record that could not be parsed.
type Failure struct {
	Batch int
	Index int
	Err   error
}

// FetchResult holds the parsed articles of a FetchArticles call.
type FetchResult struct {
	Articles  []types.ParsedArticle
	Failures  []Failure
	Requested int
	Batches   int
}

// Missing returns the requested PMIDs that no parsed article carries.
// Each PMID is reported once, in request order.
func (r FetchResult) Missing(requested []string) []string {
	seen := make(map[string]bool, len(r.Articles)+len(requested))
	for _, a := range r.Articles {
		seen[a.ID()] = true
	}
	var missing []string
	for _, id := range requested {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		missing = append(missing, id)
	}
	return missing
}

// FetchArticles fetches pmids in batches of the configured size and parses
// every record. A record that fails to parse is reported in Failures and
// does not stop the batch; a failed request stops the whole call.
func (c *Client) FetchArticles(ctx context.Context, pmids []string) (FetchResult, error) {
	ids, err := normalizePMIDs(pmids)
	if err != nil {
		return FetchResult{}, err
	}

	result := FetchResult{Articles: []types.ParsedArticle{}, Requested: len(ids)}
	for start := 0; start < len(ids); start += c.cfg.BatchSize {
		end := min(start+c.cfg.BatchSize, len(ids))
		batch := result.Batches
		result.Batches++

		body, err := c.Fetch(ctx, ids[start:end])
		if err != nil {
			return result, fmt.Errorf("batch %d: %w", batch, err)
		}

		doc, err := tree.DecodeXML(bytes.NewReader(body))
		if err != nil {
			return result, fmt.Errorf("batch %d: %w", batch, err)
		}

		roots := pubmed.Articles(doc)
		for _, r := range pubmed.ParseAll(roots, c.cfg.Workers) {
			if r.Err != nil {
				result.Failures = append(result.Failures, Failure{Batch: batch, Index: r.Index, Err: r.Err})
				continue
			}
			result.Articles = append(result.Articles, r.Article)
		}

		c.log.Debug().
			Int("batch", batch).
			Int("requested", end-start).
			Int("records", len(roots)).
			Msg("batch parsed")
	}
	return result, nil
}
