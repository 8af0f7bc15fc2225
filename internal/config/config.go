package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// BookConfig names the book and its two input files.
type BookConfig struct {
	Title      string `yaml:"title"`
	TOCPath    string `yaml:"toc_path"`
	TextPath   string `yaml:"text_path"`
	SourceMode string `yaml:"source_mode"`
}

// ProfileConfig controls how chapters are divided into chunks.
type ProfileConfig struct {
	Name               string  `yaml:"name"`
	ChunkCount         int     `yaml:"chunk_count"`
	MinWords           int     `yaml:"min_words"`
	MaxWords           int     `yaml:"max_words"`
	Tolerance          float64 `yaml:"tolerance"`
	MinViableWords     int     `yaml:"min_viable_words"`
	ShortChapterWords  int     `yaml:"short_chapter_words"`
	MinChapterChars    int     `yaml:"min_chapter_chars"`
	MinChunkWords      int     `yaml:"min_chunk_words"`
	HeadingAware       bool    `yaml:"heading_aware"`
	StrongHeadingScore float64 `yaml:"strong_heading_score"`
	TokenCounter       string  `yaml:"token_counter"`
	TiktokenEncoding   string  `yaml:"tiktoken_encoding"`
}

// TopicConfig controls how chunk topic names are derived.
type TopicConfig struct {
	Strategy        string  `yaml:"strategy"`
	MinHeadingScore float64 `yaml:"min_heading_score"`
	MaxWords        int     `yaml:"max_words"`
	MaxChars        int     `yaml:"max_chars"`
}

// SummarizerConfig selects and configures the summarizer.
type SummarizerConfig struct {
	Type             string `yaml:"type"`
	MaxSentences     int    `yaml:"max_sentences"`
	CharBudget       int    `yaml:"char_budget"`
	MinSentenceChars int    `yaml:"min_sentence_chars"`
	MaxSentenceChars int    `yaml:"max_sentence_chars"`
	FallbackChars    int    `yaml:"fallback_chars"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
	// AllowEmptyKey lets keyless local servers such as Ollama be used.
	AllowEmptyKey bool `yaml:"allow_empty_key"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type          string                `yaml:"type"`
	MaxInputChars int                   `yaml:"max_input_chars"`
	CallBudget    int                   `yaml:"call_budget"`
	DelayMillis   int                   `yaml:"delay_ms"`
	MaxFeatures   int                   `yaml:"max_features"`
	OpenAI        *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// OutputConfig describes where and how the dataset is written.
type OutputConfig struct {
	Dir         string   `yaml:"dir"`
	Basename    string   `yaml:"basename"`
	Formats     []string `yaml:"formats"`
	Category    bool     `yaml:"category"`
	Identifiers bool     `yaml:"identifiers"`
	MicroChunks bool     `yaml:"micro_chunks"`
	Tables      bool     `yaml:"tables"`
	Embeddings  bool     `yaml:"embeddings"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	Distance    string `yaml:"distance"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// SQLConfig configures the optional relational sink.
type SQLConfig struct {
	Enabled   bool   `yaml:"enabled"`
	DSNEnv    string `yaml:"dsn_env"`
	Table     string `yaml:"table"`
	BatchSize int    `yaml:"batch_size"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Book        BookConfig        `yaml:"book"`
	Profile     ProfileConfig     `yaml:"profile"`
	Topic       TopicConfig       `yaml:"topic"`
	Summarizer  SummarizerConfig  `yaml:"summarizer"`
	Lexicon     string            `yaml:"lexicon,omitempty"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	Output      OutputConfig      `yaml:"output"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	SQL         SQLConfig         `yaml:"sql"`
	LogLevel    string            `yaml:"log_level"`
}

// Profiles returns the named chunking presets.
func Profiles() map[string]ProfileConfig {
	return map[string]ProfileConfig{
		"compact": {
			Name:               "compact",
			ChunkCount:         3,
			MinWords:           250,
			MaxWords:           400,
			Tolerance:          1.4,
			MinViableWords:     200,
			ShortChapterWords:  150,
			MinChapterChars:    200,
			MinChunkWords:      50,
			HeadingAware:       true,
			StrongHeadingScore: 2,
			TokenCounter:       "words",
			TiktokenEncoding:   "cl100k_base",
		},
		"fine": {
			Name:               "fine",
			ChunkCount:         15,
			MinWords:           250,
			MaxWords:           400,
			Tolerance:          1.3,
			MinViableWords:     200,
			ShortChapterWords:  150,
			MinChapterChars:    200,
			MinChunkWords:      50,
			HeadingAware:       false,
			StrongHeadingScore: 2,
			TokenCounter:       "words",
			TiktokenEncoding:   "cl100k_base",
		},
	}
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := applyConfigDefaults(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault tries ./medrag.yaml first, then ~/.config/medrag/config.yaml.
// If neither exists, it writes defaults to ~/.config/medrag/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "medrag.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "medrag", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Book:        BookConfig{Title: "Nelson Textbook of Pediatrics", SourceMode: "pages"},
		Profile:     Profiles()["fine"],
		Topic:       TopicConfig{Strategy: "heading", MinHeadingScore: 2, MaxWords: 5, MaxChars: 80},
		Summarizer:  SummarizerConfig{Type: "extractive", MaxSentences: 5, CharBudget: 600, MinSentenceChars: 40, MaxSentenceChars: 450, FallbackChars: 300},
		Embedder:    EmbedderConfig{Type: "none", MaxInputChars: 2000, MaxFeatures: 384},
		Output:      OutputConfig{Dir: "output", Basename: "dataset", Formats: []string{"csv", "json"}, Category: true, Identifiers: true},
		VectorStore: VectorStoreConfig{Type: "none"},
		SQL:         SQLConfig{DSNEnv: "MEDRAG_MYSQL_DSN", Table: "chunks", BatchSize: 100},
		LogLevel:    "info",
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) error {
	def := defaultConfig()

	if cfg.Book.SourceMode == "" {
		cfg.Book.SourceMode = def.Book.SourceMode
	}
	if cfg.Book.Title == "" {
		cfg.Book.Title = def.Book.Title
	}

	name := cfg.Profile.Name
	if name == "" {
		name = def.Profile.Name
	}
	preset, ok := Profiles()[name]
	if !ok {
		return fmt.Errorf("unknown profile %q", name)
	}
	mergeProfile(&cfg.Profile, preset)

	if cfg.Topic.Strategy == "" {
		cfg.Topic.Strategy = def.Topic.Strategy
	}
	if cfg.Topic.MinHeadingScore == 0 {
		cfg.Topic.MinHeadingScore = def.Topic.MinHeadingScore
	}
	if cfg.Topic.MaxWords == 0 {
		cfg.Topic.MaxWords = def.Topic.MaxWords
	}
	if cfg.Topic.MaxChars == 0 {
		cfg.Topic.MaxChars = def.Topic.MaxChars
	}

	if cfg.Summarizer.Type == "" {
		cfg.Summarizer.Type = def.Summarizer.Type
	}
	if cfg.Summarizer.MaxSentences == 0 {
		cfg.Summarizer.MaxSentences = def.Summarizer.MaxSentences
	}
	if cfg.Summarizer.CharBudget == 0 {
		cfg.Summarizer.CharBudget = def.Summarizer.CharBudget
	}
	if cfg.Summarizer.MinSentenceChars == 0 {
		cfg.Summarizer.MinSentenceChars = def.Summarizer.MinSentenceChars
	}
	if cfg.Summarizer.MaxSentenceChars == 0 {
		cfg.Summarizer.MaxSentenceChars = def.Summarizer.MaxSentenceChars
	}
	if cfg.Summarizer.FallbackChars == 0 {
		cfg.Summarizer.FallbackChars = def.Summarizer.FallbackChars
	}

	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = def.Embedder.Type
	}
	if cfg.Embedder.MaxInputChars == 0 {
		cfg.Embedder.MaxInputChars = def.Embedder.MaxInputChars
	}
	if cfg.Embedder.MaxFeatures == 0 {
		cfg.Embedder.MaxFeatures = def.Embedder.MaxFeatures
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
		if cfg.Embedder.OpenAI.MaxRetries == 0 {
			cfg.Embedder.OpenAI.MaxRetries = 3
		}
	}

	if cfg.Output.Dir == "" {
		cfg.Output.Dir = def.Output.Dir
	}
	if cfg.Output.Basename == "" {
		cfg.Output.Basename = def.Output.Basename
	}
	if len(cfg.Output.Formats) == 0 {
		cfg.Output.Formats = def.Output.Formats
	}

	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = def.VectorStore.Type
	}
	if cfg.VectorStore.Type == "qdrant" && cfg.VectorStore.Qdrant != nil {
		if cfg.VectorStore.Qdrant.Collection == "" {
			cfg.VectorStore.Qdrant.Collection = "medrag_chunks"
		}
		if cfg.VectorStore.Qdrant.Distance == "" {
			cfg.VectorStore.Qdrant.Distance = "Cosine"
		}
		if cfg.VectorStore.Qdrant.TimeoutSecs == 0 {
			cfg.VectorStore.Qdrant.TimeoutSecs = 15
		}
	}

	if cfg.SQL.DSNEnv == "" {
		cfg.SQL.DSNEnv = def.SQL.DSNEnv
	}
	if cfg.SQL.Table == "" {
		cfg.SQL.Table = def.SQL.Table
	}
	if cfg.SQL.BatchSize == 0 {
		cfg.SQL.BatchSize = def.SQL.BatchSize
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	return nil
}

// mergeProfile fills zero-valued fields of p from preset.
func mergeProfile(p *ProfileConfig, preset ProfileConfig) {
	p.Name = preset.Name
	if p.ChunkCount == 0 {
		p.ChunkCount = preset.ChunkCount
	}
	if p.MinWords == 0 {
		p.MinWords = preset.MinWords
	}
	if p.MaxWords == 0 {
		p.MaxWords = preset.MaxWords
	}
	if p.Tolerance == 0 {
		p.Tolerance = preset.Tolerance
	}
	if p.MinViableWords == 0 {
		p.MinViableWords = preset.MinViableWords
	}
	if p.ShortChapterWords == 0 {
		p.ShortChapterWords = preset.ShortChapterWords
	}
	if p.MinChapterChars == 0 {
		p.MinChapterChars = preset.MinChapterChars
	}
	if p.MinChunkWords == 0 {
		p.MinChunkWords = preset.MinChunkWords
	}
	if !p.HeadingAware {
		p.HeadingAware = preset.HeadingAware
	}
	if p.StrongHeadingScore == 0 {
		p.StrongHeadingScore = preset.StrongHeadingScore
	}
	if p.TokenCounter == "" {
		p.TokenCounter = preset.TokenCounter
	}
	if p.TiktokenEncoding == "" {
		p.TiktokenEncoding = preset.TiktokenEncoding
	}
}
