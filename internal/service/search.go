package service

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"

	"medrag/internal/domain"
)

var unicodeWordRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

// Query ranks the indexed records against query. Vector search is used when
// a store is populated; a zero query vector or all-zero scores fall back to
// lexical overlap.
func (s *DatasetService) Query(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	if s.c.Store == nil || !s.c.Embedder.Available() {
		return s.lexicalSearch(query, topK), nil
	}
	vec, ok := s.c.Embedder.Embed(ctx, query)
	if !ok || isZero(vec) {
		return s.lexicalSearch(query, topK), nil
	}
	res, err := s.c.Store.Search(vec, topK)
	if err != nil {
		return nil, err
	}
	allZero := true
	for _, r := range res {
		if r.Score > 1e-9 {
			allZero = false
			break
		}
	}
	if allZero {
		return s.lexicalSearch(query, topK), nil
	}
	return res, nil
}

func isZero(vec []float64) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}

func (s *DatasetService) lexicalSearch(query string, topK int) []domain.SearchResult {
	qset := toTokenSet(query)
	results := make([]domain.SearchResult, len(s.records))
	for i, r := range s.records {
		text := r.TopicName + " " + r.Summary + " " + r.Content
		results[i] = domain.SearchResult{Record: r, Score: overlapOchiai(qset, text)}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK <= 0 {
		topK = 5
	}
	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK]
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

// overlapOchiai is |A∩B| / sqrt(|A||B|) over distinct lowercase words.
func overlapOchiai(qset map[string]struct{}, text string) float64 {
	seen := toTokenSet(text)
	if len(qset) == 0 || len(seen) == 0 {
		return 0
	}
	inter := 0
	for t := range seen {
		if _, ok := qset[t]; ok {
			inter++
		}
	}
	return float64(inter) / math.Sqrt(float64(len(qset))*float64(len(seen)))
}
