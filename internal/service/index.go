package service

import (
	"context"

	"go.uber.org/zap"

	"medrag/internal/domain"
)

// Index makes records searchable. With an embedder and a vector store the
// records are embedded and upserted; otherwise queries fall back to lexical
// ranking.
func (s *DatasetService) Index(ctx context.Context, records []domain.DatasetRecord) error {
	s.records = records
	if s.c.Store == nil || !s.c.Embedder.Available() {
		return nil
	}
	if missing := s.embedRecords(ctx, records, false); missing > 0 {
		s.log.Warn("records indexed without vectors", zap.Int("missing", missing))
	}
	return s.upsert(records)
}

// Records returns the records from the last Run or Index.
func (s *DatasetService) Records() []domain.DatasetRecord { return s.records }

// embedRecords prepares the embedder on the record contents and fills the
// content embedding, plus summary and topic embeddings when all is set.
// It returns how many requested vectors could not be produced.
func (s *DatasetService) embedRecords(ctx context.Context, records []domain.DatasetRecord, all bool) int {
	if !s.c.Embedder.Available() {
		s.log.Warn("embeddings requested", zap.Error(domain.ErrEmbeddingUnavailable))
		return 0
	}
	corpus := make([]string, len(records))
	for i := range records {
		corpus[i] = records[i].Content
	}
	if err := s.c.Embedder.Prepare(corpus); err != nil {
		s.log.Warn("embedder prepare failed", zap.String("embedder", s.c.Embedder.Name()), zap.Error(err))
		return 0
	}

	missing := 0
	embed := func(text string) []float64 {
		vec, ok := s.c.Embedder.Embed(ctx, text)
		if !ok {
			missing++
		}
		return vec
	}
	for i := range records {
		r := &records[i]
		r.ContentEmbedding = embed(r.Content)
		if all {
			r.SummaryEmbedding = embed(r.Summary)
			r.TopicEmbedding = embed(r.TopicName)
		}
	}
	return missing
}

// upsert replaces the store contents with the records that carry a content
// embedding.
func (s *DatasetService) upsert(records []domain.DatasetRecord) error {
	if s.c.Store == nil {
		return nil
	}
	var (
		kept    []domain.DatasetRecord
		vectors [][]float64
	)
	for _, r := range records {
		if len(r.ContentEmbedding) == 0 {
			continue
		}
		kept = append(kept, r)
		vectors = append(vectors, r.ContentEmbedding)
	}
	if len(kept) == 0 {
		return nil
	}
	if err := s.c.Store.Clear(); err != nil {
		return err
	}
	if err := s.c.Store.Init(len(vectors[0])); err != nil {
		return err
	}
	return s.c.Store.Upsert(kept, vectors)
}
