// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes parsed articles as JSON, YAML or CSL-YAML.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-engine/pkg/types"
)

// Write encodes articles to w in the given format. An empty format means
// JSON.
func Write(articles []types.ParsedArticle, format types.OutputFormat, w io.Writer) error {
	if articles == nil {
		articles = []types.ParsedArticle{}
	}
	switch format {
	case types.OutputJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(articles)
	case types.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(articles)
	case types.OutputCSL:
		return FormatCSL(articles, w)
	default:
		return fmt.Errorf("unknown output format %q (want json, yaml or csl)", format)
	}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (types.OutputFormat, error) {
	switch f := types.OutputFormat(s); f {
	case types.OutputJSON, types.OutputYAML, types.OutputCSL:
		return f, nil
	case "":
		return types.OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want json, yaml or csl)", s)
	}
}
