package vectorstore

import (
	"context"
	"fmt"

	"financial-qa/internal/config"
	"financial-qa/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
)

// Store owns the similarity index plus the parallel document storage.
// Invariant: texts[i], metadata[i] and row i of the index always refer to
// the same logical document; insertion order is the positional key, there
// are no deletions and no compaction.
type Store struct {
	embedder  embeddings.Embedder
	dimension int
	model     string
	topK      int

	index    *flatIndex
	texts    []string
	metadata []models.Metadata
}

func New(embedder embeddings.Embedder, cfg *config.Config) *Store {
	return &Store{
		embedder:  embedder,
		dimension: cfg.Embedding.Dimension,
		model:     cfg.Embedding.Model,
		topK:      cfg.RAG.TopK,
	}
}

// Add embeds every chunk's text, normalizes the vectors and appends them
// to the index and the parallel storage in the same order. Each document
// is assigned a stable ID on the way in. No-op on empty input.
func (s *Store) Add(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}
	for _, v := range vectors {
		normalizeL2(v)
	}

	if s.index == nil {
		s.index = newFlatIndex(s.dimension)
	}
	if err := s.index.add(vectors); err != nil {
		return err
	}

	for _, c := range chunks {
		meta := c.Meta
		meta.ID = uuid.NewString()
		s.texts = append(s.texts, c.Text)
		s.metadata = append(s.metadata, meta)
	}

	log.Info().Int("added", len(chunks)).Int("total", len(s.texts)).Msg("Added documents to vector store")
	return nil
}

// Search embeds the query the same way documents were embedded and
// returns up to topK results by descending similarity. An empty or
// uninitialized store yields an empty result, never an error.
func (s *Store) Search(ctx context.Context, query string, topK int) ([]models.SearchResult, error) {
	if s.index == nil || len(s.texts) == 0 {
		return nil, nil
	}
	if topK <= 0 {
		topK = s.topK
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	normalizeL2(vector)

	rows, scores := s.index.search(vector, topK)

	results := make([]models.SearchResult, 0, len(rows))
	for i, row := range rows {
		if row < 0 || row >= len(s.texts) {
			continue
		}
		results = append(results, models.SearchResult{
			Text:  s.texts[row],
			Meta:  s.metadata[row],
			Score: scores[i],
		})
	}
	return results, nil
}

// Clear resets the store to the empty, uninitialized state.
func (s *Store) Clear() {
	s.index = nil
	s.texts = nil
	s.metadata = nil
	log.Info().Msg("Vector store cleared")
}

// Count reports how many documents the store holds.
func (s *Store) Count() int { return len(s.texts) }

// Stats describes the store's configuration and current size.
func (s *Store) Stats() models.IndexStats {
	indexType := "None"
	if s.index != nil {
		indexType = "FlatIP"
	}
	return models.IndexStats{
		TotalDocuments:     len(s.texts),
		EmbeddingDimension: s.dimension,
		EmbeddingModel:     s.model,
		IndexType:          indexType,
	}
}
