// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pubmed turns a PubmedArticle tree node into a types.ParsedArticle.
//
// Each extractor is a pure function of one sub-tree. None of them fail:
// a missing or oddly shaped field becomes an absent or empty value for
// that field alone. Parse reports an error only when the root itself is
// not an element.
package pubmed

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pdiddy/pubmed-engine/internal/node"
	"github.com/pdiddy/pubmed-engine/pkg/types"
)

// ErrInvalidRoot is returned when the input is not an element node.
var ErrInvalidRoot = errors.New("citation root is not an element")

// Parse extracts a ParsedArticle from a PubmedArticle node (the element
// holding MedlineCitation and PubmedData).
func Parse(root any) (types.ParsedArticle, error) {
	if _, ok := node.Object(root); !ok {
		return types.ParsedArticle{}, fmt.Errorf("%w: got %T", ErrInvalidRoot, root)
	}

	citation := node.Field(root, "MedlineCitation")
	article := node.Field(citation, "Article")
	articleIDs := node.Path(root, "PubmedData", "ArticleIdList")

	return types.ParsedArticle{
		PMID:             ExtractPMID(citation),
		Title:            ExtractTitle(article),
		Authors:          ExtractAuthors(node.Field(article, "AuthorList")),
		Journal:          ExtractJournal(node.Field(article, "Journal"), node.Field(article, "Pagination")),
		MeshTerms:        ExtractMeshTerms(node.Field(citation, "MeshHeadingList")),
		Grants:           ExtractGrants(node.Field(article, "GrantList")),
		DOI:              ExtractDOI(node.Field(article, "ELocationID"), articleIDs),
		PMCID:            ExtractPMCID(articleIDs),
		PublicationTypes: ExtractPublicationTypes(node.Field(article, "PublicationTypeList")),
		Keywords:         ExtractKeywords(node.Field(citation, "KeywordList")),
		Languages:        ExtractLanguages(node.Field(article, "Language")),
		Abstract:         ExtractAbstract(node.Path(article, "Abstract", "AbstractText")),
		ArticleDates:     ExtractArticleDates(node.Field(article, "ArticleDate")),
	}, nil
}

// ExtractPMID returns the PMID of a MedlineCitation node. The PMID has a
// single canonical location, so there is no fallback.
func ExtractPMID(citation any) *string {
	return node.OptionalText(firstOf(node.Field(citation, "PMID")))
}

// ExtractTitle returns the ArticleTitle of an Article node.
func ExtractTitle(article any) *string {
	return node.OptionalText(firstOf(node.Field(article, "ArticleTitle")))
}

// Articles returns the PubmedArticle nodes of a decoded efetch document.
// It accepts the document root, a PubmedArticleSet node, or a single
// PubmedArticle node.
func Articles(tree any) []any {
	if set := node.Field(tree, "PubmedArticleSet"); set != nil {
		return node.List(node.Field(set, "PubmedArticle"))
	}
	if articles := node.Field(tree, "PubmedArticle"); articles != nil {
		return node.List(articles)
	}
	if node.Field(tree, "MedlineCitation") != nil {
		return []any{tree}
	}
	return []any{}
}

// Result pairs a parsed article with the error for its root, if any.
type Result struct {
	Index   int
	Article types.ParsedArticle
	Err     error
}

// ParseAll parses roots on up to workers goroutines. Results are returned
// in input order. workers <= 0 uses one worker.
func ParseAll(roots []any, workers int) []Result {
	results := make([]Result, len(roots))
	if len(roots) == 0 {
		return results
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > len(roots) {
		workers = len(roots)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				article, err := Parse(roots[i])
				results[i] = Result{Index: i, Article: article, Err: err}
			}
		}()
	}
	for i := range roots {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
