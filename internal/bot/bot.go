package bot

import (
	"context"
	"fmt"
	"path/filepath"

	"financial-qa/internal/config"
	"financial-qa/internal/models"
	"financial-qa/internal/parser"
	"financial-qa/internal/rag"
	"financial-qa/internal/vectorstore"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
)

// OpResult is what every top-level operation hands back: a success flag
// and a human-readable message, so callers drive the happy path without
// inspecting errors.
type OpResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Bot is the application facade over ingestion, the vector store and the
// retrieval pipeline. One bot owns one store; single-writer, single-reader
// per process.
type Bot struct {
	cfg      *config.Config
	ingestor *parser.Ingestor
	store    *vectorstore.Store
	pipeline *rag.Pipeline
}

func New(cfg *config.Config, store *vectorstore.Store, llm llms.Model) *Bot {
	return &Bot{
		cfg:      cfg,
		ingestor: parser.New(cfg),
		store:    store,
		pipeline: rag.New(store, llm, cfg),
	}
}

// ProcessDocument ingests one filing and adds its chunks to the store.
func (b *Bot) ProcessDocument(ctx context.Context, filePath string) OpResult {
	chunks, err := b.ingestor.Process(filePath)
	if err != nil {
		log.Error().Err(err).Str("file", filePath).Msg("Error processing document")
		return OpResult{Success: false, Message: fmt.Sprintf("Error processing document: %v", err)}
	}
	if len(chunks) == 0 {
		return OpResult{Success: false, Message: "No content could be extracted from the document"}
	}

	if err := b.store.Add(ctx, chunks); err != nil {
		log.Error().Err(err).Str("file", filePath).Msg("Error indexing document")
		return OpResult{Success: false, Message: fmt.Sprintf("Error indexing document: %v", err)}
	}

	return OpResult{
		Success: true,
		Message: fmt.Sprintf("Successfully processed %d chunks from %s", len(chunks), filepath.Base(filePath)),
	}
}

// Ask runs one question through the retrieval pipeline.
func (b *Bot) Ask(ctx context.Context, question string) (*models.AnswerResult, OpResult) {
	result, err := b.pipeline.Query(ctx, question, 0)
	if err != nil {
		log.Error().Err(err).Msg("Error processing question")
		return nil, OpResult{Success: false, Message: fmt.Sprintf("Error processing question: %v", err)}
	}
	return result, OpResult{Success: true, Message: "ok"}
}

// AskAll runs a batch of questions sequentially, in input order.
func (b *Bot) AskAll(ctx context.Context, questions []string) ([]models.AnswerResult, OpResult) {
	results, err := b.pipeline.BatchQuery(ctx, questions)
	if err != nil {
		log.Error().Err(err).Msg("Error processing batch questions")
		return nil, OpResult{Success: false, Message: fmt.Sprintf("Error processing batch questions: %v", err)}
	}
	return results, OpResult{Success: true, Message: fmt.Sprintf("Answered %d questions", len(results))}
}

// SaveIndex persists the vector store to the configured path.
func (b *Bot) SaveIndex() OpResult {
	if err := b.store.Save(b.cfg.Store.Path); err != nil {
		return OpResult{Success: false, Message: fmt.Sprintf("Error saving vector store: %v", err)}
	}
	return OpResult{Success: true, Message: "Vector store saved to " + b.cfg.Store.Path}
}

// LoadIndex restores a previously persisted vector store.
func (b *Bot) LoadIndex() OpResult {
	if !b.store.Load(b.cfg.Store.Path) {
		return OpResult{Success: false, Message: "No existing vector store found at " + b.cfg.Store.Path}
	}
	return OpResult{
		Success: true,
		Message: fmt.Sprintf("Loaded vector store with %d documents", b.store.Count()),
	}
}

// ClearIndex wipes the in-memory store and deletes the persisted
// artifacts, so a later load finds nothing.
func (b *Bot) ClearIndex() OpResult {
	b.store.Clear()
	if err := b.store.Remove(b.cfg.Store.Path); err != nil {
		return OpResult{Success: false, Message: fmt.Sprintf("Error removing vector store files: %v", err)}
	}
	return OpResult{Success: true, Message: "Vector store cleared"}
}

// Stats reports the current state of the vector store.
func (b *Bot) Stats() models.IndexStats {
	return b.store.Stats()
}
