package domain

import (
	"errors"
	"fmt"
)

// EndPageUnbounded is the end page assigned to the last chapter in a TOC.
const EndPageUnbounded = 99999

var (
	// ErrMissingInput is returned when a required input file cannot be read.
	ErrMissingInput = errors.New("missing input")
	// ErrInsufficientContent marks a chapter or chunk too short to process.
	ErrInsufficientContent = errors.New("insufficient content")
	// ErrEmbeddingUnavailable is returned when no embedding backend is configured.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	// ErrBudgetExhausted is returned once the embedding call budget is spent.
	ErrBudgetExhausted = errors.New("embedding call budget exhausted")
)

// ChapterRecord is one chapter entry parsed from a table of contents.
type ChapterRecord struct {
	Number    int
	ID        string
	Name      string
	StartPage int
	EndPage   int
}

// ChapterID formats the stable identifier of the n-th chapter.
func ChapterID(n int) string {
	return fmt.Sprintf("CH-%04d", n)
}

// Heading is a heading-like line found in cleaned chapter text.
// LineOffset is the zero-based line index within that text.
type Heading struct {
	Text       string
	LineOffset int
	Score      float64
}

// Table is a titled block of rows found in raw chapter text.
type Table struct {
	Title    string   `json:"title"`
	Rows     []string `json:"rows"`
	Position int      `json:"position"`
}

// DatasetRecord is one output row: a chunk of a chapter with its metadata.
type DatasetRecord struct {
	BookTitle        string    `json:"book_title"`
	ChapterID        string    `json:"chapter_id"`
	ChapterNumber    int       `json:"chapter_number"`
	ChapterName      string    `json:"chapter_name"`
	ChunkIndex       int       `json:"chunk_index"`
	TopicName        string    `json:"topic_name"`
	Content          string    `json:"content"`
	Category         string    `json:"category,omitempty"`
	Summary          string    `json:"summary"`
	TokenEstimate    int       `json:"token_estimate"`
	MicroChunks      []string  `json:"micro_chunks,omitempty"`
	Tables           []Table   `json:"tables,omitempty"`
	ContentEmbedding []float64 `json:"content_embedding,omitempty"`
	SummaryEmbedding []float64 `json:"summary_embedding,omitempty"`
	TopicEmbedding   []float64 `json:"topic_embedding,omitempty"`
}

// Key identifies a record within a dataset.
func (r DatasetRecord) Key() string {
	return fmt.Sprintf("%s:%d", r.ChapterID, r.ChunkIndex)
}

// SearchResult represents a matching record with a relevance score.
type SearchResult struct {
	Record DatasetRecord
	Score  float64
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(text string) ([]float64, error)
}

// VectorStore persists vectors and supports similarity search.
type VectorStore interface {
	Init(dimension int) error
	Upsert(records []DatasetRecord, vectors [][]float64) error
	Search(vector []float64, topK int) ([]SearchResult, error)
	Clear() error
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// TokenCounter estimates how many model tokens a text occupies.
type TokenCounter interface {
	Count(text string) int
}
