// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubmed-engine/pkg/types"
)

func TestNewWithWriterLevels(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		debugSeen bool
		infoSeen  bool
	}{
		{"default is info", "", false, true},
		{"debug", "debug", true, true},
		{"upper case", "WARN", false, false},
		{"trace", "trace", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := NewWithWriter(types.LoggingConfig{Level: tt.level, Format: "json"}, &buf)
			require.NoError(t, err)

			logger.Debug().Msg("debug-line")
			logger.Info().Msg("info-line")

			assert.Equal(t, tt.debugSeen, bytes.Contains(buf.Bytes(), []byte("debug-line")))
			assert.Equal(t, tt.infoSeen, bytes.Contains(buf.Bytes(), []byte("info-line")))
		})
	}
}

func TestNewWithWriterFormats(t *testing.T) {
	var jsonBuf bytes.Buffer
	logger, err := NewWithWriter(types.LoggingConfig{}, &jsonBuf)
	require.NoError(t, err)
	logger.Info().Str("pmid", "123").Msg("stored")
	assert.Contains(t, jsonBuf.String(), `"pmid":"123"`)
	assert.Contains(t, jsonBuf.String(), `"message":"stored"`)

	var consoleBuf bytes.Buffer
	logger, err = NewWithWriter(types.LoggingConfig{Format: "console"}, &consoleBuf)
	require.NoError(t, err)
	logger.Info().Str("pmid", "123").Msg("stored")
	assert.Contains(t, consoleBuf.String(), "stored")
	assert.Contains(t, consoleBuf.String(), "pmid=123")
	assert.NotContains(t, consoleBuf.String(), `"message"`)
}

func TestNewWithWriterBadLevel(t *testing.T) {
	_, err := NewWithWriter(types.LoggingConfig{Level: "loud"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loud")
}
