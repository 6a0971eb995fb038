// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-engine/internal/eutils"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [pmids...]",
	Short: "Fetch PubMed records by PMID and parse them",
	Long: `Fetch downloads citation records from NCBI E-utilities (efetch) and
writes them as structured articles. PMIDs are taken from the arguments,
or read from stdin (whitespace or comma separated) when none are given.

Requests are rate limited to 3 per second, or 10 per second with an API
key (--api-key or .secrets/ncbi-api-key).`,
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	pmids := splitIDs(args)
	if len(pmids) == 0 {
		pmids, err = readIDs(cmd.InOrStdin())
		if err != nil {
			return err
		}
	}
	if len(pmids) == 0 {
		return fmt.Errorf("no PMIDs given")
	}

	client := eutils.New(cfg.EUtils, logger)
	result, err := client.FetchArticles(cmd.Context(), pmids)
	if err != nil {
		return err
	}

	w := cmd.ErrOrStderr()
	for _, f := range result.Failures {
		fmt.Fprintf(w, "failed  batch %d record %d: %v\n", f.Batch, f.Index, f.Err)
	}
	for _, id := range result.Missing(pmids) {
		fmt.Fprintf(w, "missing %s\n", id)
	}
	fmt.Fprintf(w, "fetched %d of %d article(s) in %d batch(es)\n",
		len(result.Articles), result.Requested, result.Batches)

	if err := emit(cmd, result.Articles, format); err != nil {
		return err
	}
	if len(result.Failures) > 0 {
		return fmt.Errorf("%d record(s) failed to parse", len(result.Failures))
	}
	return nil
}

// splitIDs splits arguments on commas and whitespace.
func splitIDs(args []string) []string {
	var ids []string
	for _, a := range args {
		ids = append(ids, strings.FieldsFunc(a, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
		})...)
	}
	return ids
}

func readIDs(r io.Reader) ([]string, error) {
	var ids []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		ids = append(ids, splitIDs([]string{sc.Text()})...)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading PMIDs: %w", err)
	}
	return ids, nil
}

func init() {
	addOutputFlags(fetchCmd)
	fetchCmd.Flags().Int("batch-size", 200, "PMIDs per efetch request")
	bindFlag("eutils.batch_size", fetchCmd.Flags().Lookup("batch-size"))

	rootCmd.AddCommand(fetchCmd)
}
