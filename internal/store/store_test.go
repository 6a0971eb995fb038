// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-engine/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "data")
	s, err := Open(types.StoreConfig{DataDir: dir, MaxResults: 20}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s, dir
}

func sampleArticles() []types.ParsedArticle {
	return []types.ParsedArticle{
		{
			PMID:     types.Str("31452104"),
			Title:    types.Str("Single-cell profiling of KRAS-mutant tumours"),
			Abstract: types.Str("BACKGROUND: KRAS is frequently mutated.\n\nRESULTS: Two programs emerged."),
			DOI:      types.Str("10.1038/s41586-019-1473-8"),
			Authors: []types.ParsedAuthor{
				{Kind: types.AuthorIndividual, LastName: types.Str("Smith"), ForeName: types.Str("Jane"), Affiliations: []string{}},
				{Kind: types.AuthorCollective, CollectiveName: types.Str("Tumour Atlas Consortium"), Affiliations: []string{}},
			},
			Journal: &types.ParsedJournalInfo{Title: types.Str("Nature"), PubDate: &types.JournalPubDate{Year: types.Str("2019")}},
			MeshTerms: []types.ParsedMeshTerm{
				{Descriptor: "Humans", Qualifiers: []types.ParsedMeshQualifier{}},
				{Descriptor: "Neoplasms", IsMajorTopic: true, Qualifiers: []types.ParsedMeshQualifier{}},
			},
			Keywords:         []string{"single-cell", "KRAS"},
			Grants:           []types.ParsedGrant{},
			PublicationTypes: []string{"Journal Article"},
			Languages:        []string{"eng"},
			ArticleDates:     []types.ParsedArticleDate{},
		},
		{
			PMID:     types.Str("9999"),
			Title:    types.Str("An old record on hypertension"),
			Abstract: types.Str("Blood pressure in 100% of patients."),
			Authors: []types.ParsedAuthor{
				{Kind: types.AuthorIndividual, LastName: types.Str("Okafor"), Affiliations: []string{}},
			},
			MeshTerms: []types.ParsedMeshTerm{
				{Descriptor: "Humans", Qualifiers: []types.ParsedMeshQualifier{}},
				{Descriptor: "Hypertension", IsMajorTopic: true, Qualifiers: []types.ParsedMeshQualifier{}},
			},
			Keywords:         []string{"blood pressure"},
			Grants:           []types.ParsedGrant{},
			PublicationTypes: []string{},
			Languages:        []string{},
			ArticleDates:     []types.ParsedArticleDate{},
		},
	}
}

func putSample(t *testing.T, s *Store) IngestSummary {
	t.Helper()
	var buf bytes.Buffer
	summary, err := s.Put(context.Background(), sampleArticles(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	return summary
}

func pmids(articles []types.ParsedArticle) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.ID()
	}
	return out
}

// --- tests ---

func TestOpenCreatesDatabase(t *testing.T) {
	_, dir := testStore(t)
	if _, err := os.Stat(filepath.Join(dir, dbFile)); err != nil {
		t.Fatalf("database file not created: %v", err)
	}
}

func TestOpenRequiresDataDir(t *testing.T) {
	if _, err := Open(types.StoreConfig{}, zerolog.Nop()); err == nil {
		t.Fatal("expected error for empty data dir")
	}
}

func TestPutAndGet(t *testing.T) {
	s, _ := testStore(t)
	summary := putSample(t, s)

	if summary.Stored != 2 || summary.Total() != 2 {
		t.Errorf("summary = %+v, want 2 stored", summary)
	}
	if _, err := uuid.Parse(summary.RunID); err != nil {
		t.Errorf("run ID %q is not a UUID: %v", summary.RunID, err)
	}

	got, err := s.Get(context.Background(), "31452104")
	if err != nil {
		t.Fatal(err)
	}
	want := sampleArticles()[0]
	gotJSON, _ := json.Marshal(got)
	wantJSON, _ := json.Marshal(want)
	if string(gotJSON) != string(wantJSON) {
		t.Errorf("round trip mismatch\n got: %s\nwant: %s", gotJSON, wantJSON)
	}

	n, err := s.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
}

func TestGetNotFound(t *testing.T) {
	s, _ := testStore(t)
	_, err := s.Get(context.Background(), "123")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPutSkipsMissingPMID(t *testing.T) {
	s, _ := testStore(t)
	var buf bytes.Buffer
	summary, err := s.Put(context.Background(), []types.ParsedArticle{{Title: types.Str("No id")}}, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Skipped != 1 || summary.Stored != 0 {
		t.Errorf("summary = %+v, want 1 skipped", summary)
	}
	if !strings.Contains(buf.String(), "no PMID") {
		t.Errorf("output missing skip line: %q", buf.String())
	}
}

func TestPutUnchangedAndUpdated(t *testing.T) {
	s, _ := testStore(t)
	putSample(t, s)

	again := putSample(t, s)
	if again.Unchanged != 2 {
		t.Errorf("second put = %+v, want 2 unchanged", again)
	}

	changed := sampleArticles()[:1]
	changed[0].Title = types.Str("Revised title about pancreatic cancer")
	changed[0].Keywords = []string{"pancreas"}
	var buf bytes.Buffer
	summary, err := s.Put(context.Background(), changed, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Updated != 1 {
		t.Errorf("summary = %+v, want 1 updated", summary)
	}

	got, err := s.Retrieve(context.Background(), QueryOptions{Keyword: "KRAS"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("old keywords should be replaced, got %v", pmids(got))
	}

	got, err = s.Retrieve(context.Background(), QueryOptions{Query: "pancreatic"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID() != "31452104" {
		t.Errorf("text index not refreshed after update, got %v", pmids(got))
	}
}

func TestPutRecordsIngestRun(t *testing.T) {
	s, _ := testStore(t)
	summary := putSample(t, s)

	var stored int
	var finished string
	err := s.db.QueryRow(`SELECT stored, finished_at FROM ingest_runs WHERE id = ?`, summary.RunID).Scan(&stored, &finished)
	if err != nil {
		t.Fatal(err)
	}
	if stored != 2 || finished == "" {
		t.Errorf("ingest run stored=%d finished=%q", stored, finished)
	}
}

func TestRetrieveFilters(t *testing.T) {
	s, _ := testStore(t)
	putSample(t, s)

	tests := []struct {
		name string
		opts QueryOptions
		want []string
	}{
		{"no filters ordered by PMID", QueryOptions{}, []string{"9999", "31452104"}},
		{"text query", QueryOptions{Query: "KRAS"}, []string{"31452104"}},
		{"text query in abstract", QueryOptions{Query: "pressure"}, []string{"9999"}},
		{"mesh any", QueryOptions{MeSH: "humans"}, []string{"9999", "31452104"}},
		{"mesh major only", QueryOptions{MeSH: "Humans", MajorOnly: true}, []string{}},
		{"mesh major match", QueryOptions{MeSH: "Neoplasms", MajorOnly: true}, []string{"31452104"}},
		{"keyword", QueryOptions{Keyword: "Blood Pressure"}, []string{"9999"}},
		{"author last name", QueryOptions{Author: "smith"}, []string{"31452104"}},
		{"collective author is not a last name", QueryOptions{Author: "Tumour Atlas Consortium"}, []string{}},
		{"doi", QueryOptions{DOI: "10.1038/S41586-019-1473-8"}, []string{"31452104"}},
		{"combined", QueryOptions{MeSH: "Humans", Author: "Okafor"}, []string{"9999"}},
		{"max results", QueryOptions{MaxResults: 1}, []string{"9999"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Retrieve(context.Background(), tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if strings.Join(pmids(got), ",") != strings.Join(tt.want, ",") {
				t.Errorf("got %v, want %v", pmids(got), tt.want)
			}
		})
	}
}

func TestRetrieveLikeEscapes(t *testing.T) {
	s, _ := testStore(t)
	putSample(t, s)

	if s.FullText() {
		t.Skip("text queries go through FTS5")
	}
	got, err := s.Retrieve(context.Background(), QueryOptions{Query: "100%"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID() != "9999" {
		t.Errorf("got %v, want [9999]", pmids(got))
	}
}

func TestQueryOptionsIsEmpty(t *testing.T) {
	if !(QueryOptions{MaxResults: 5, MajorOnly: true}).IsEmpty() {
		t.Error("limits and flags alone should be empty")
	}
	if (QueryOptions{Author: "x"}).IsEmpty() {
		t.Error("author filter should not be empty")
	}
}

func TestExport(t *testing.T) {
	s, dir := testStore(t)
	putSample(t, s)

	yamlPath, err := s.ExportYAML(context.Background(), QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if yamlPath != filepath.Join(dir, "export.yaml") {
		t.Errorf("yaml path = %s", yamlPath)
	}
	data, err := os.ReadFile(yamlPath)
	if err != nil {
		t.Fatal(err)
	}
	var fromYAML []types.ParsedArticle
	if err := yaml.Unmarshal(data, &fromYAML); err != nil {
		t.Fatal(err)
	}
	if len(fromYAML) != 2 {
		t.Errorf("yaml export has %d articles, want 2", len(fromYAML))
	}

	jsonPath, err := s.ExportJSON(context.Background(), QueryOptions{MeSH: "Hypertension"})
	if err != nil {
		t.Fatal(err)
	}
	data, err = os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var fromJSON []types.ParsedArticle
	if err := json.Unmarshal(data, &fromJSON); err != nil {
		t.Fatal(err)
	}
	if len(fromJSON) != 1 || fromJSON[0].ID() != "9999" {
		t.Errorf("filtered json export = %v", pmids(fromJSON))
	}
}
