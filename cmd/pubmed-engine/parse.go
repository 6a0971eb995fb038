// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-engine/internal/export"
	"github.com/pdiddy/pubmed-engine/internal/pubmed"
	"github.com/pdiddy/pubmed-engine/internal/store"
	"github.com/pdiddy/pubmed-engine/internal/tree"
	"github.com/pdiddy/pubmed-engine/pkg/types"
)

var parseCmd = &cobra.Command{
	Use:   "parse [files...]",
	Short: "Parse PubMed XML files into structured articles",
	Long: `Parse reads efetch XML documents (a PubmedArticleSet or a single
PubmedArticle) and writes one structured record per article. With no file
arguments, or with "-", input is read from stdin.

Use --input json for a JSON array of citation nodes that were already
converted to a tree by another tool.`,
	RunE: runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	workers, _ := cmd.Flags().GetInt("workers")
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		args = []string{"-"}
	}

	var roots []any
	for _, name := range args {
		found, err := readRoots(cmd.InOrStdin(), name, input)
		if err != nil {
			return err
		}
		logger.Debug().Str("file", name).Int("records", len(found)).Msg("read input")
		roots = append(roots, found...)
	}

	articles, failed := parseRoots(roots, workers, cmd.ErrOrStderr())

	if err := emit(cmd, articles, format); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d record(s) failed to parse", failed)
	}
	return nil
}

// readRoots loads the citation nodes of one input.
func readRoots(stdin io.Reader, name, input string) ([]any, error) {
	r := stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		r = f
	}

	switch input {
	case "xml", "":
		doc, err := tree.DecodeXML(r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return pubmed.Articles(doc), nil
	case "json":
		var roots []any
		err := tree.StreamJSON(r, func(n any) error {
			if found := pubmed.Articles(n); len(found) > 0 {
				roots = append(roots, found...)
			} else {
				roots = append(roots, n)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return roots, nil
	default:
		return nil, fmt.Errorf("unknown input format %q: use xml or json", input)
	}
}

// parseRoots parses roots concurrently, reporting failures to w. It
// returns the parsed articles in input order and the failure count.
func parseRoots(roots []any, workers int, w io.Writer) ([]types.ParsedArticle, int) {
	if workers <= 0 {
		workers = cfg.EUtils.Workers
	}
	articles := make([]types.ParsedArticle, 0, len(roots))
	failed := 0
	for _, r := range pubmed.ParseAll(roots, workers) {
		if r.Err != nil {
			fmt.Fprintf(w, "failed  record %d: %v\n", r.Index, r.Err)
			failed++
			continue
		}
		articles = append(articles, r.Article)
	}
	return articles, failed
}

// emit writes articles in format and, with --store, saves them.
func emit(cmd *cobra.Command, articles []types.ParsedArticle, format types.OutputFormat) error {
	if err := export.Write(articles, format, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	save, _ := cmd.Flags().GetBool("store")
	if !save {
		return nil
	}
	return storeArticles(cmd.Context(), articles, cmd.ErrOrStderr())
}

func storeArticles(ctx context.Context, articles []types.ParsedArticle, w io.Writer) error {
	s, err := store.Open(cfg.Store, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	summary, err := s.Put(ctx, articles, w)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d article(s) failed to store", summary.Failed)
	}
	return nil
}

func outputFormat(cmd *cobra.Command) (types.OutputFormat, error) {
	name, _ := cmd.Flags().GetString("format")
	return export.ParseFormat(name)
}

// addOutputFlags registers the flags shared by commands that emit articles.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "json", "output format: json, yaml or csl")
	cmd.Flags().Bool("store", false, "also save the articles to the article store")
}

func init() {
	parseCmd.Flags().String("input", "xml", "input format: xml or json")
	parseCmd.Flags().Int("workers", 0, "parallel parse workers (0 = eutils.workers)")
	addOutputFlags(parseCmd)

	rootCmd.AddCommand(parseCmd)
}
