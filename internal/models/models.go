package models

// DocumentType tells which ingestion path produced a chunk.
type DocumentType string

const (
	DocumentTypeFreeText   DocumentType = "free_text"
	DocumentTypeStructured DocumentType = "structured"
)

// Metadata carries the provenance of a chunk. Page is only set for
// free-text chunks (1-based); Category and FactCount only for structured
// chunks. ID is assigned when the chunk enters the vector store.
type Metadata struct {
	ID           string       `json:"id,omitempty"`
	SourcePath   string       `json:"source_path"`
	DocumentType DocumentType `json:"document_type"`
	ChunkIndex   int          `json:"chunk_index"`
	Page         int          `json:"page,omitempty"`
	Category     string       `json:"category,omitempty"`
	FactCount    int          `json:"fact_count,omitempty"`
}

// Chunk is the atomic unit of ingestion and retrieval: a bounded piece of
// text plus where it came from.
type Chunk struct {
	Text string
	Meta Metadata
}

// SearchResult is one retrieval hit. Score is the inner product of the
// normalized query and document vectors, so cosine similarity.
type SearchResult struct {
	Text  string
	Meta  Metadata
	Score float32
}

// Source describes one retrieved chunk backing an answer.
type Source struct {
	TextPreview     string   `json:"text_preview"`
	SimilarityScore float32  `json:"similarity_score"`
	Metadata        Metadata `json:"metadata"`
}

// AnswerResult is the output of one pipeline query. Confidence is a
// heuristic relevance signal derived from retrieval similarity, not a
// calibrated probability.
type AnswerResult struct {
	Question    string   `json:"question,omitempty"`
	Answer      string   `json:"answer"`
	Sources     []Source `json:"sources"`
	Confidence  float64  `json:"confidence"`
	ContextUsed int      `json:"context_used"`
}

// IndexStats summarizes the state of the vector store.
type IndexStats struct {
	TotalDocuments     int    `json:"total_documents"`
	EmbeddingDimension int    `json:"embedding_dimension"`
	EmbeddingModel     string `json:"embedding_model"`
	IndexType          string `json:"index_type"`
}
