// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-engine/internal/eutils"
)

var searchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Search PubMed and list or fetch the matching PMIDs",
	Long: `Search runs an esearch query using PubMed query syntax, for example
"kras[tiab] AND 2019[dp]". Matching PMIDs are printed one per line in
relevance order. With --fetch the matching records are fetched and
written as structured articles instead.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	term, _ := cmd.Flags().GetString("term")
	if term == "" {
		term = strings.Join(args, " ")
	}
	if strings.TrimSpace(term) == "" {
		return fmt.Errorf("search term required: pass --term or an argument")
	}
	maxResults, _ := cmd.Flags().GetInt("max")
	fetch, _ := cmd.Flags().GetBool("fetch")

	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	client := eutils.New(cfg.EUtils, logger)
	result, err := client.Search(cmd.Context(), term, maxResults)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d match(es), showing %d\n", result.Count, len(result.PMIDs))
	if result.QueryTranslation != "" {
		logger.Debug().Str("translation", result.QueryTranslation).Msg("esearch query")
	}

	if !fetch {
		out := cmd.OutOrStdout()
		for _, id := range result.PMIDs {
			fmt.Fprintln(out, id)
		}
		return nil
	}

	fetched, err := client.FetchArticles(cmd.Context(), result.PMIDs)
	if err != nil {
		return err
	}
	for _, f := range fetched.Failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "failed  batch %d record %d: %v\n", f.Batch, f.Index, f.Err)
	}
	return emit(cmd, fetched.Articles, format)
}

func init() {
	searchCmd.Flags().String("term", "", "PubMed query")
	searchCmd.Flags().Int("max", 20, "maximum number of PMIDs to return")
	searchCmd.Flags().Bool("fetch", false, "fetch and parse the matching records")
	addOutputFlags(searchCmd)

	rootCmd.AddCommand(searchCmd)
}
