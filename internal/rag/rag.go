package rag

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"financial-qa/internal/config"
	"financial-qa/internal/models"
	"financial-qa/internal/vectorstore"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
)

const generationTemperature = 0.1

// Pipeline turns a question into ranked context, a grounded prompt and a
// scored answer. Single attempt against the generation service; a failed
// call degrades into an answer-shaped error instead of failing the query.
type Pipeline struct {
	store *vectorstore.Store
	llm   llms.Model
	cfg   *config.Config
}

func New(store *vectorstore.Store, llm llms.Model, cfg *config.Config) *Pipeline {
	return &Pipeline{store: store, llm: llm, cfg: cfg}
}

// Query retrieves up to contextLimit chunks, asks the generation service
// for an answer grounded in them and packages sources and confidence.
// contextLimit <= 0 uses the configured top-k.
func (p *Pipeline) Query(ctx context.Context, question string, contextLimit int) (*models.AnswerResult, error) {
	if contextLimit <= 0 {
		contextLimit = p.cfg.RAG.TopK
	}

	retrieved, err := p.store.Search(ctx, question, contextLimit)
	if err != nil {
		return nil, err
	}

	if len(retrieved) == 0 {
		return &models.AnswerResult{
			Answer:      models.NoContextAnswer,
			Sources:     []models.Source{},
			Confidence:  0.0,
			ContextUsed: 0,
		}, nil
	}

	contextText := buildContext(retrieved)
	answer := p.generateAnswer(ctx, question, contextText)

	return &models.AnswerResult{
		Answer:      answer,
		Sources:     extractSources(retrieved),
		Confidence:  confidence(retrieved),
		ContextUsed: len(retrieved),
	}, nil
}

// BatchQuery runs Query sequentially for each question and tags every
// result with the question that produced it.
func (p *Pipeline) BatchQuery(ctx context.Context, questions []string) ([]models.AnswerResult, error) {
	results := make([]models.AnswerResult, 0, len(questions))
	for _, question := range questions {
		result, err := p.Query(ctx, question, 0)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", question, err)
		}
		result.Question = question
		results = append(results, *result)
	}
	return results, nil
}

// buildContext renders the retrieved chunks as numbered blocks in
// descending score order, each preceded by its source-info line.
func buildContext(retrieved []models.SearchResult) string {
	var parts []string
	for i, r := range retrieved {
		parts = append(parts, fmt.Sprintf("[Context %d] %s\n%s\n", i+1, sourceInfo(r.Meta), r.Text))
	}
	return strings.Join(parts, "\n")
}

// sourceInfo is the pipe-separated provenance line for one chunk.
func sourceInfo(meta models.Metadata) string {
	var parts []string
	if meta.SourcePath != "" {
		parts = append(parts, "Source: "+filepath.Base(meta.SourcePath))
	}
	if meta.Page > 0 {
		parts = append(parts, fmt.Sprintf("Page: %d", meta.Page))
	}
	if meta.Category != "" {
		parts = append(parts, "Category: "+meta.Category)
	}
	if meta.DocumentType != "" {
		parts = append(parts, "Type: "+strings.ToUpper(string(meta.DocumentType)))
	}
	return strings.Join(parts, " | ")
}

// generateAnswer makes the one-shot generation call. Failure is non-fatal
// to the pipeline: the error text becomes the answer body.
func (p *Pipeline) generateAnswer(ctx context.Context, question, contextText string) string {
	prompt := fmt.Sprintf(models.AnswerPromptTemplate, contextText, question)

	answer, err := llms.GenerateFromSinglePrompt(ctx, p.llm, prompt,
		llms.WithTemperature(generationTemperature),
		llms.WithMaxTokens(p.cfg.LLM.MaxTokens),
	)
	if err != nil {
		log.Error().Err(err).Msg("Error generating answer")
		return fmt.Sprintf("Error generating answer: %v", err)
	}
	return strings.TrimSpace(answer)
}

func extractSources(retrieved []models.SearchResult) []models.Source {
	sources := make([]models.Source, 0, len(retrieved))
	for _, r := range retrieved {
		preview := r.Text
		if len(preview) > models.SourcePreviewLen {
			// back up to a rune boundary so the cut never splits a
			// multi-byte character
			cut := models.SourcePreviewLen
			for cut > 0 && !utf8.RuneStart(preview[cut]) {
				cut--
			}
			preview = preview[:cut] + "..."
		}
		sources = append(sources, models.Source{
			TextPreview:     preview,
			SimilarityScore: r.Score,
			Metadata:        r.Meta,
		})
	}
	return sources
}

// confidence is the mean retrieved similarity clamped at 1.0. It is a
// heuristic relevance signal, not a calibrated probability.
func confidence(retrieved []models.SearchResult) float64 {
	if len(retrieved) == 0 {
		return 0.0
	}
	var sum float64
	for _, r := range retrieved {
		sum += float64(r.Score)
	}
	avg := sum / float64(len(retrieved))
	if avg > 1.0 {
		return 1.0
	}
	return avg
}
