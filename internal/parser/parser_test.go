package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"financial-qa/internal/config"
	"financial-qa/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		RAG: config.RAGConfig{
			ChunkSize:           1000,
			ChunkOverlap:        0,
			SupportedExtensions: []string{".pdf", ".txt", ".docx", ".xlsx", ".xml", ".htm"},
		},
	}
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestProcessUnsupportedExtension(t *testing.T) {
	in := New(testConfig())

	_, err := in.Process("filing.csv")
	require.Error(t, err)

	var unsupported *UnsupportedFormatError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, ".csv", unsupported.Ext)
}

func TestProcessMissingFile(t *testing.T) {
	in := New(testConfig())

	_, err := in.Process(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)

	var ingestion *IngestionError
	require.ErrorAs(t, err, &ingestion)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestProcessTextFile(t *testing.T) {
	path := writeTemp(t, "report.txt",
		"Total  revenue\twas $12.5M,\n\nup   8% versus  the prior year.")

	in := New(testConfig())
	chunks, err := in.Process(path)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	// whitespace collapsed, characters outside the allow-list stripped
	assert.Equal(t, "Total revenue was 12.5M, up 8 versus the prior year.", chunks[0].Text)
	assert.Equal(t, models.DocumentTypeFreeText, chunks[0].Meta.DocumentType)
	assert.Equal(t, path, chunks[0].Meta.SourcePath)
	assert.Equal(t, 1, chunks[0].Meta.Page)
	assert.Equal(t, 0, chunks[0].Meta.ChunkIndex)
	assert.Empty(t, chunks[0].Meta.Category)
	assert.Zero(t, chunks[0].Meta.FactCount)
}

func TestProcessEmptyTextFile(t *testing.T) {
	path := writeTemp(t, "empty.txt", "   \n\t ")

	in := New(testConfig())
	chunks, err := in.Process(path)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestProcessTextFileChunkIndexOrder(t *testing.T) {
	text := ""
	for i := 0; i < 200; i++ {
		text += "segment content word "
	}
	path := writeTemp(t, "long.txt", text)

	cfg := testConfig()
	cfg.RAG.ChunkSize = 100
	in := New(cfg)

	chunks, err := in.Process(path)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i, c := range chunks {
		assert.Equal(t, i, c.Meta.ChunkIndex)
		assert.Equal(t, 1, c.Meta.Page)
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain words", "plain words"},
		{"  spaced\t\nout  ", "spaced out"},
		{"keep .,;:!?()- drop @#$%^&*+={}[]|<>/\"'", "keep .,;:!?()- drop"},
		{"café latté résumé", "café latté résumé"},
		{"Umsatzerlöse 10 Mrd. €", "Umsatzerlöse 10 Mrd."},
		{"売上高は391億ドル", "売上高は391億ドル"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanText(tt.in), "input %q", tt.in)
	}
}

func TestExtractTaggedText(t *testing.T) {
	markup := `<w:p><w:r><w:t>Annual</w:t></w:r><w:r><w:t xml:space="preserve">Report </w:t></w:r></w:p><w:tbl/>`
	got := extractTaggedText(markup, "<w:t", "</w:t>")
	assert.Equal(t, "Annual Report  ", got)
}

func TestProcessAllOrNothingOnFailure(t *testing.T) {
	// truncated XML must yield no chunks at all
	path := writeTemp(t, "broken.xml",
		`<?xml version="1.0"?><xbrl xmlns:us-gaap="http://x"><us-gaap:Revenue contextRef="C">100`)

	in := New(testConfig())
	chunks, err := in.Process(path)
	require.Error(t, err)
	assert.Nil(t, chunks)

	var ingestion *IngestionError
	assert.ErrorAs(t, err, &ingestion)
}

func TestErrorMessagesCarryPath(t *testing.T) {
	err := &IngestionError{Path: "/tmp/f.xml", Err: errors.New("boom")}
	assert.Contains(t, err.Error(), "/tmp/f.xml")
	assert.Contains(t, err.Error(), "boom")
}
