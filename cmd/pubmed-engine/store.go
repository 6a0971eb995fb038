// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-engine/internal/export"
	"github.com/pdiddy/pubmed-engine/internal/store"
	"github.com/pdiddy/pubmed-engine/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Query and export the local article store",
	Long: `Store manages the SQLite article store in <data-dir>/pubmed.db.
Articles are added with parse --store, fetch --store or search --fetch --store.`,
}

// --- retrieve subcommand ---

var storeRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Search stored articles by text, MeSH heading, keyword, author or DOI",
	Long: `Retrieve searches titles and abstracts (FTS5 when available) and
filters by MeSH descriptor, keyword, author last name or DOI. Without
--format the results are printed as a table.`,
	RunE: runStoreRetrieve,
}

func runStoreRetrieve(cmd *cobra.Command, args []string) error {
	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --mesh, --keyword, --author or --doi")
	}

	s, err := store.Open(cfg.Store, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	results, err := s.Retrieve(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if name, _ := cmd.Flags().GetString("format"); name != "" {
		format, err := export.ParseFormat(name)
		if err != nil {
			return err
		}
		return export.Write(results, format, cmd.OutOrStdout())
	}
	return formatRetrieveTable(cmd, results)
}

func formatRetrieveTable(cmd *cobra.Command, results []types.ParsedArticle) error {
	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}

	fmt.Fprintf(out, "%-4s  %-10s  %-4s  %-50s  %s\n", "Rank", "PMID", "Year", "Title", "Journal")
	fmt.Fprintln(out, strings.Repeat("-", 100))

	for i, a := range results {
		title := ""
		if a.Title != nil {
			title = truncate(*a.Title, 50)
		}
		journal := ""
		if a.Journal != nil && a.Journal.Title != nil {
			journal = truncate(*a.Journal.Title, 25)
		}
		fmt.Fprintf(out, "%-4d  %-10s  %-4s  %-50s  %s\n", i+1, a.ID(), a.Year(), title, journal)
	}

	fmt.Fprintf(out, "\n%d results\n", len(results))
	return nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

// --- get subcommand ---

var storeGetCmd = &cobra.Command{
	Use:   "get <pmid>",
	Short: "Print one stored article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}

		s, err := store.Open(cfg.Store, logger)
		if err != nil {
			return err
		}
		defer s.Close()

		a, err := s.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return export.Write([]types.ParsedArticle{a}, format, cmd.OutOrStdout())
	},
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored articles to YAML or JSON",
	Long: `Export writes all stored articles (or a filtered subset) to
<data-dir>/export.yaml or export.json. Supports the same filter flags as
retrieve for partial exports.`,
	RunE: runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	s, err := store.Open(cfg.Store, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := queryOptsFromFlags(cmd, args)

	var path string
	switch format {
	case "yaml", "":
		path, err = s.ExportYAML(cmd.Context(), opts)
	case "json":
		path, err = s.ExportJSON(cmd.Context(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	return nil
}

// --- shared helpers ---

func queryOptsFromFlags(cmd *cobra.Command, args []string) store.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	mesh, _ := cmd.Flags().GetString("mesh")
	major, _ := cmd.Flags().GetBool("major")
	keyword, _ := cmd.Flags().GetString("keyword")
	author, _ := cmd.Flags().GetString("author")
	doi, _ := cmd.Flags().GetString("doi")
	limit, _ := cmd.Flags().GetInt("limit")

	return store.QueryOptions{
		Query:      queryText,
		MeSH:       mesh,
		MajorOnly:  major,
		Keyword:    keyword,
		Author:     author,
		DOI:        doi,
		MaxResults: limit,
	}
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("query", "", "full-text search over title and abstract")
	cmd.Flags().String("mesh", "", "filter by MeSH descriptor")
	cmd.Flags().Bool("major", false, "with --mesh, match major-topic headings only")
	cmd.Flags().String("keyword", "", "filter by author keyword")
	cmd.Flags().String("author", "", "filter by author last name")
	cmd.Flags().String("doi", "", "filter by DOI")
}

func init() {
	storeCmd.PersistentFlags().Int("max-results", 20, "default maximum number of query results")
	bindFlag("store.max_results", storeCmd.PersistentFlags().Lookup("max-results"))

	addFilterFlags(storeRetrieveCmd)
	storeRetrieveCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	storeRetrieveCmd.Flags().String("format", "", "output json, yaml or csl instead of a table")

	storeGetCmd.Flags().String("format", "json", "output format: json, yaml or csl")

	addFilterFlags(storeExportCmd)
	storeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	storeCmd.AddCommand(storeRetrieveCmd)
	storeCmd.AddCommand(storeGetCmd)
	storeCmd.AddCommand(storeExportCmd)

	rootCmd.AddCommand(storeCmd)
}
