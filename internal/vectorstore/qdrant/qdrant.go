// Package qdrant is a minimal REST client to a Qdrant collection.
package qdrant

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"medrag/internal/domain"
)

// Storage writes dataset records as Qdrant points. The collection is created
// on Init; point ids are derived from the record key so re-runs overwrite.
type Storage struct {
	collection string
	distance   string
	dimension  int
	client     *resty.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Distance   string
	Timeout    time.Duration
}

func NewStorage(cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	distance := cfg.Distance
	if distance == "" {
		distance = "Cosine"
	}
	client := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("api-key", cfg.APIKey)
	}
	return &Storage{
		collection: cfg.Collection,
		distance:   distance,
		client:     client,
	}
}

// PointID returns the deterministic point id for a record key.
func PointID(key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("medrag:"+key)).String()
}

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.dimension = dimension
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": s.distance,
		},
	}
	// Qdrant answers 200 when the collection already exists with the same schema
	return s.do(s.client.R().SetBody(body), "PUT", "/collections/"+s.collection)
}

func (s *Storage) Upsert(records []domain.DatasetRecord, vectors [][]float64) error {
	if len(records) != len(vectors) {
		return errors.New("records and vectors length mismatch")
	}
	if len(records) == 0 {
		return nil
	}
	points := make([]map[string]any, len(records))
	for i, rec := range records {
		payload := rec
		payload.ContentEmbedding, payload.SummaryEmbedding, payload.TopicEmbedding = nil, nil, nil
		points[i] = map[string]any{
			"id":      PointID(rec.Key()),
			"vector":  vectors[i],
			"payload": payload,
		}
	}
	req := s.client.R().
		SetQueryParam("wait", "true").
		SetBody(map[string]any{"points": points})
	return s.do(req, "PUT", "/collections/"+s.collection+"/points")
}

type searchResponse struct {
	Result []struct {
		Score   float64         `json:"score"`
		Payload json.RawMessage `json:"payload"`
	} `json:"result"`
}

func (s *Storage) Search(vector []float64, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	var resp searchResponse
	req := s.client.R().
		SetBody(map[string]any{
			"vector":       vector,
			"limit":        topK,
			"with_payload": true,
		}).
		SetResult(&resp)
	if err := s.do(req, "POST", "/collections/"+s.collection+"/points/search"); err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		var rec domain.DatasetRecord
		if len(r.Payload) > 0 {
			if err := json.Unmarshal(r.Payload, &rec); err != nil {
				return nil, fmt.Errorf("qdrant payload: %w", err)
			}
		}
		results = append(results, domain.SearchResult{Record: rec, Score: r.Score})
	}
	return results, nil
}

// Clear drops the collection. A missing collection is not an error.
func (s *Storage) Clear() error {
	resp, err := s.client.R().Delete("/collections/" + s.collection)
	if err != nil {
		return err
	}
	if resp.IsError() && resp.StatusCode() != 404 {
		return fmt.Errorf("qdrant DELETE collection %s failed: %s", s.collection, resp.Status())
	}
	return nil
}

func (s *Storage) do(req *resty.Request, method, path string) error {
	resp, err := req.Execute(method, path)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("qdrant %s %s failed: %s", method, path, resp.Status())
	}
	return nil
}
