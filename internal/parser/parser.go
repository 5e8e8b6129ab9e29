package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"financial-qa/internal/chunker"
	"financial-qa/internal/config"
	"financial-qa/internal/models"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/rs/zerolog/log"
	"github.com/tealeg/xlsx"
)

// UnsupportedFormatError is returned before any file I/O when the
// extension is not in the configured supported set.
type UnsupportedFormatError struct {
	Path string
	Ext  string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format %q: %s", e.Ext, e.Path)
}

// IngestionError wraps any extraction or parse failure. Ingestion is
// all-or-nothing per file: no partial chunk list is ever returned.
type IngestionError struct {
	Path string
	Err  error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingesting %s: %v", e.Path, e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	// conservative allow-list: letters and digits in any script plus
	// common punctuation
	disallowedRe = regexp.MustCompile(`[^\p{L}\p{N}_\s.,;:!?()-]`)
)

// Ingestor turns a filing on disk into a flat sequence of chunks with
// provenance metadata. Free-text formats go through page extraction and
// cleaning, structured XBRL filings through fact extraction and rendering;
// both end in the same chunker.
type Ingestor struct {
	chunker *chunker.Chunker
	exts    map[string]bool
}

func New(cfg *config.Config) *Ingestor {
	exts := make(map[string]bool, len(cfg.RAG.SupportedExtensions))
	for _, ext := range cfg.RAG.SupportedExtensions {
		exts[strings.ToLower(ext)] = true
	}
	return &Ingestor{
		chunker: chunker.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap),
		exts:    exts,
	}
}

// Process dispatches on the file extension and returns the chunk sequence
// for the whole document.
func (in *Ingestor) Process(filePath string) ([]models.Chunk, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	if !in.exts[ext] {
		return nil, &UnsupportedFormatError{Path: filePath, Ext: ext}
	}

	var (
		chunks []models.Chunk
		err    error
	)
	switch ext {
	case ".pdf":
		chunks, err = in.processPDF(filePath)
	case ".txt":
		chunks, err = in.processText(filePath)
	case ".docx":
		chunks, err = in.processDOCX(filePath)
	case ".xlsx":
		chunks, err = in.processXLSX(filePath)
	case ".xml", ".htm":
		chunks, err = in.processXBRL(filePath)
	default:
		return nil, &UnsupportedFormatError{Path: filePath, Ext: ext}
	}
	if err != nil {
		return nil, &IngestionError{Path: filePath, Err: err}
	}

	log.Debug().Str("file", filePath).Int("chunks", len(chunks)).Msg("Processed document")
	return chunks, nil
}

func (in *Ingestor) processPDF(filePath string) ([]models.Chunk, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, err
	}

	var chunks []models.Chunk
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, in.freeTextChunks(filePath, i, pageText)...)
	}
	return chunks, nil
}

func (in *Ingestor) processText(filePath string) ([]models.Chunk, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return in.freeTextChunks(filePath, 1, string(data)), nil
}

func (in *Ingestor) processDOCX(filePath string) ([]models.Chunk, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	text := extractTaggedText(r.Editable().GetContent(), "<w:t", "</w:t>")
	return in.freeTextChunks(filePath, 1, text), nil
}

func (in *Ingestor) processXLSX(filePath string) ([]models.Chunk, error) {
	f, err := xlsx.OpenFile(filePath)
	if err != nil {
		return nil, err
	}

	var chunks []models.Chunk
	for sheetNum, sheet := range f.Sheets {
		var text strings.Builder
		text.WriteString("Sheet " + sheet.Name + ":\n")
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				text.WriteString(cell.String() + "\t")
			}
			text.WriteString("\n")
		}
		// one logical page per sheet, 1-based like PDF pages
		chunks = append(chunks, in.freeTextChunks(filePath, sheetNum+1, text.String())...)
	}
	return chunks, nil
}

// freeTextChunks cleans one page of extracted text and emits its chunks.
// Pages with no extractable text produce nothing.
func (in *Ingestor) freeTextChunks(filePath string, page int, text string) []models.Chunk {
	cleaned := cleanText(text)
	if cleaned == "" {
		return nil
	}

	var chunks []models.Chunk
	for idx, segment := range in.chunker.Split(cleaned) {
		chunks = append(chunks, models.Chunk{
			Text: segment,
			Meta: models.Metadata{
				SourcePath:   filePath,
				DocumentType: models.DocumentTypeFreeText,
				Page:         page,
				ChunkIndex:   idx,
			},
		})
	}
	return chunks
}

// cleanText collapses whitespace runs and strips characters outside the
// allow-list of word characters and common punctuation.
func cleanText(text string) string {
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = disallowedRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// extractTaggedText pulls the text content of every occurrence of an XML
// tag such as <w:t> out of raw markup, tolerating attributes on the tag.
func extractTaggedText(markup, openTag, closeTag string) string {
	var text strings.Builder
	for i, part := range strings.Split(markup, openTag) {
		if i == 0 || part == "" || (part[0] != '>' && part[0] != ' ') {
			continue
		}
		gt := strings.Index(part, ">")
		if gt < 0 {
			continue
		}
		end := strings.Index(part, closeTag)
		if end > gt {
			text.WriteString(part[gt+1:end] + " ")
		}
	}
	return text.String()
}
