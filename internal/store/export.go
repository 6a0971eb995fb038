// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-engine/pkg/types"
)

const exportLimit = 1000000

// ExportYAML writes the matching articles to <data-dir>/export.yaml and
// returns the file path. It supports the same filters as Retrieve.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) (string, error) {
	articles, err := s.exportArticles(ctx, opts)
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(articles)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return s.writeExport("export.yaml", data)
}

// ExportJSON writes the matching articles to <data-dir>/export.json and
// returns the file path. It supports the same filters as Retrieve.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) (string, error) {
	articles, err := s.exportArticles(ctx, opts)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return s.writeExport("export.json", data)
}

func (s *Store) exportArticles(ctx context.Context, opts QueryOptions) ([]types.ParsedArticle, error) {
	opts.MaxResults = exportLimit
	articles, err := s.Retrieve(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	return articles, nil
}

func (s *Store) writeExport(name string, data []byte) (string, error) {
	path := filepath.Join(s.dataDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
