// Package memory is an in-process vector store using brute-force cosine similarity.
package memory

import (
	"errors"
	"sort"
	"sync"

	"medrag/internal/domain"
)

var (
	errInvalidDimension  = errors.New("invalid dimension")
	errLengthMismatch    = errors.New("records and vectors length mismatch")
	errDimensionMismatch = errors.New("vector dimension mismatch")
)

// Storage keeps records and their vectors in memory. Upserting a record whose
// key is already present replaces it.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
	records   []domain.DatasetRecord
	index     map[string]int
}

func NewStorage() *Storage { return &Storage{index: map[string]int{}} }

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errInvalidDimension
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.reset()
	return nil
}

func (s *Storage) Upsert(records []domain.DatasetRecord, vectors [][]float64) error {
	if len(records) != len(vectors) {
		return errLengthMismatch
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errDimensionMismatch
		}
	}
	for i, rec := range records {
		key := rec.Key()
		if j, ok := s.index[key]; ok {
			s.records[j] = rec
			s.vectors[j] = vectors[i]
			continue
		}
		s.index[key] = len(s.records)
		s.records = append(s.records, rec)
		s.vectors = append(s.vectors, vectors[i])
	}
	return nil
}

func (s *Storage) Search(vector []float64, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}
	// vectors are assumed L2-normalized, so the dot product is the cosine
	results := make([]domain.SearchResult, len(s.vectors))
	for i := range s.vectors {
		results[i] = domain.SearchResult{Record: s.records[i], Score: dot(s.vectors[i], vector)}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

// Len reports the number of stored records.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

func (s *Storage) reset() {
	s.vectors = nil
	s.records = nil
	s.index = map[string]int{}
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
