package openai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/go-resty/resty/v2"
)

// Client is an OpenAI-compatible embeddings client implementing the Embedder interface.
// It also understands the Ollama response shape.
type Client struct {
	model      string
	dimension  int
	client     *resty.Client
	maxRetries int
	retryDelay time.Duration
}

// Config configures the OpenAI-compatible embeddings client.
type Config struct {
	BaseURL    string
	APIKeyEnv  string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	// RetryDelay is the first backoff step; it doubles up to five seconds.
	RetryDelay time.Duration
	// AllowEmptyKey permits servers that need no key, such as a local Ollama.
	AllowEmptyKey bool
}

// retryAfterError carries a server-requested wait.
type retryAfterError struct {
	status string
	wait   time.Duration
}

func (e *retryAfterError) Error() string {
	return fmt.Sprintf("openai embeddings throttled: %s", e.status)
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" && !cfg.AllowEmptyKey {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 200 * time.Millisecond
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	if key != "" {
		client.SetAuthToken(key)
	}
	return &Client{
		model:      cfg.Model,
		client:     client,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai" }

// Prepare is not required for remote embedding. The dimension is set on first embed.
func (c *Client) Prepare(corpus []string) error { return nil }

// Dimension returns the dimensionality of the produced embedding vectors.
func (c *Client) Dimension() int { return c.dimension }

// Embed returns an embedding vector for the given text. Throttling, server
// errors, transport errors and empty payloads are retried with exponential
// backoff; other client errors fail at once.
func (c *Client) Embed(text string) ([]float64, error) {
	var vec []float64
	err := retry.Do(
		func() error {
			v, err := c.embedOnce(text)
			if err != nil {
				return err
			}
			vec = v
			return nil
		},
		retry.Attempts(uint(c.maxRetries+1)),
		retry.Delay(c.retryDelay),
		retry.MaxDelay(5*time.Second),
		retry.DelayType(retryAfterDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	if c.dimension == 0 {
		c.dimension = len(vec)
	}
	return vec, nil
}

func (c *Client) embedOnce(text string) ([]float64, error) {
	type reqBody struct {
		Input  string `json:"input,omitempty"`
		Prompt string `json:"prompt,omitempty"`
		Model  string `json:"model"`
	}
	resp, err := c.client.R().
		SetBody(reqBody{Input: text, Prompt: text, Model: c.model}).
		Post("/embeddings")
	if err != nil {
		return nil, err
	}

	if resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= 500 {
		ra := &retryAfterError{status: resp.Status()}
		if secs, err := strconv.Atoi(resp.Header().Get("Retry-After")); err == nil {
			ra.wait = time.Duration(secs) * time.Second
		}
		return nil, ra
	}
	if resp.IsError() || resp.StatusCode() >= 300 {
		return nil, retry.Unrecoverable(fmt.Errorf("openai embeddings failed: %s", resp.Status()))
	}
	return decode(resp.Body())
}

// decode accepts the OpenAI shape {"data":[{"embedding":[...]}]} and the
// Ollama shape {"embedding":[...]}.
func decode(payload []byte) ([]float64, error) {
	var openaiOut struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
		Embedding []float64 `json:"embedding"`
	}
	if err := json.Unmarshal(payload, &openaiOut); err != nil {
		return nil, fmt.Errorf("decode embedding: %w", err)
	}
	if len(openaiOut.Data) > 0 && len(openaiOut.Data[0].Embedding) > 0 {
		return openaiOut.Data[0].Embedding, nil
	}
	if len(openaiOut.Embedding) > 0 {
		return openaiOut.Embedding, nil
	}
	return nil, errors.New("no embedding returned")
}

// retryAfterDelay honours a Retry-After header and otherwise backs off
// exponentially.
func retryAfterDelay(n uint, err error, config *retry.Config) time.Duration {
	var ra *retryAfterError
	if errors.As(err, &ra) && ra.wait > 0 {
		return ra.wait
	}
	return retry.BackOffDelay(n, err, config)
}
