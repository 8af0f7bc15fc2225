package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"medrag/internal/category"
	"medrag/internal/chunker"
	"medrag/internal/config"
	"medrag/internal/domain"
	"medrag/internal/embedding"
	"medrag/internal/embedding/openai"
	"medrag/internal/embedding/tfidf"
	"medrag/internal/headings"
	"medrag/internal/lexicon"
	"medrag/internal/service"
	"medrag/internal/source"
	"medrag/internal/sqlstore"
	"medrag/internal/summarizer"
	"medrag/internal/toc"
	"medrag/internal/topic"
	"medrag/internal/vectorstore/memory"
	"medrag/internal/vectorstore/qdrant"
)

// buildService assembles the pipeline described by cfg.
func buildService(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (*service.DatasetService, error) {
	lex, err := lexicon.Load(cfg.Lexicon)
	if err != nil {
		return nil, err
	}
	src, err := buildSource(cfg.Book)
	if err != nil {
		return nil, err
	}
	sum, err := buildSummarizer(cfg.Summarizer, lex)
	if err != nil {
		return nil, err
	}
	counter, err := buildCounter(cfg.Profile)
	if err != nil {
		return nil, err
	}
	emb, err := buildEmbedder(cfg.Embedder, lex, log)
	if err != nil {
		return nil, err
	}
	store, err := buildStore(cfg.VectorStore)
	if err != nil {
		return nil, err
	}
	sink, err := buildSink(ctx, cfg.SQL)
	if err != nil {
		return nil, err
	}

	detector := headings.NewDetector(lex)
	c := service.Components{
		Parser:     toc.NewParser(log),
		Source:     src,
		Detector:   detector,
		Splitter:   chunker.NewSplitter(splitterConfig(cfg.Profile)),
		Namer:      topic.NewNamer(topic.Config(cfg.Topic), detector),
		Summarizer: sum,
		Counter:    counter,
		Categories: category.Default(),
		Embedder:   emb,
		Store:      store,
	}
	if sink != nil {
		c.Sink = sink
	}
	opts := service.Options{
		BookTitle:       cfg.Book.Title,
		TOCPath:         cfg.Book.TOCPath,
		MaxSentences:    cfg.Summarizer.MaxSentences,
		MinChapterChars: cfg.Profile.MinChapterChars,
		MinChunkWords:   cfg.Profile.MinChunkWords,
		Category:        cfg.Output.Category,
		Tables:          cfg.Output.Tables,
		MicroChunks:     cfg.Output.MicroChunks,
		Embeddings:      cfg.Output.Embeddings,
	}
	return service.NewDatasetService(c, opts, log), nil
}

func splitterConfig(p config.ProfileConfig) chunker.Config {
	return chunker.Config{
		ChunkCount:         p.ChunkCount,
		MinWords:           p.MinWords,
		MaxWords:           p.MaxWords,
		Tolerance:          p.Tolerance,
		MinViableWords:     p.MinViableWords,
		ShortChapterWords:  p.ShortChapterWords,
		HeadingAware:       p.HeadingAware,
		StrongHeadingScore: p.StrongHeadingScore,
		MinChunkWords:      p.MinChunkWords,
	}
}

func buildSource(b config.BookConfig) (service.ChapterSource, error) {
	switch b.SourceMode {
	case "pages", "":
		return source.NewPageExtractor(b.TextPath)
	case "markers":
		return source.LoadMarkerIndex(b.TextPath)
	default:
		return nil, fmt.Errorf("unknown source mode: %s", b.SourceMode)
	}
}

func buildSummarizer(cfg config.SummarizerConfig, lex *lexicon.Lexicon) (domain.Summarizer, error) {
	sc := summarizer.Config{
		MaxSentences:     cfg.MaxSentences,
		CharBudget:       cfg.CharBudget,
		MinSentenceChars: cfg.MinSentenceChars,
		MaxSentenceChars: cfg.MaxSentenceChars,
		FallbackChars:    cfg.FallbackChars,
	}
	switch cfg.Type {
	case "extractive", "":
		return summarizer.NewExtractive(sc, lex)
	case "frequency":
		return summarizer.NewFrequencySummarizer(sc, lex)
	default:
		return nil, fmt.Errorf("unknown summarizer: %s", cfg.Type)
	}
}

func buildCounter(p config.ProfileConfig) (domain.TokenCounter, error) {
	switch p.TokenCounter {
	case "words", "":
		return chunker.WordCounter{}, nil
	case "tiktoken":
		return chunker.NewTikTokenCounter(p.TiktokenEncoding)
	default:
		return nil, fmt.Errorf("unknown token counter: %s", p.TokenCounter)
	}
}

func buildEmbedder(cfg config.EmbedderConfig, lex *lexicon.Lexicon, log *zap.Logger) (*embedding.Adapter, error) {
	opts := embedding.Options{
		MaxInputChars: cfg.MaxInputChars,
		CallBudget:    cfg.CallBudget,
		Delay:         time.Duration(cfg.DelayMillis) * time.Millisecond,
	}
	var emb domain.Embedder
	switch cfg.Type {
	case "none", "":
	case "tfidf":
		emb = tfidf.NewEmbedder(lex.StopwordSet(), cfg.MaxFeatures)
	case "openai":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:       cfg.OpenAI.BaseURL,
			APIKeyEnv:     cfg.OpenAI.APIKeyEnv,
			Model:         cfg.OpenAI.Model,
			Timeout:       time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
			MaxRetries:    cfg.OpenAI.MaxRetries,
			AllowEmptyKey: cfg.OpenAI.AllowEmptyKey,
		})
		if err != nil {
			// The dataset is still written; records keep empty vectors.
			log.Warn("openai embedder unavailable", zap.Error(err))
			break
		}
		emb = client
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Type)
	}
	return embedding.NewAdapter(emb, opts, log), nil
}

func buildStore(cfg config.VectorStoreConfig) (domain.VectorStore, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "memory":
		return memory.NewStorage(), nil
	case "qdrant":
		if cfg.Qdrant == nil {
			return nil, fmt.Errorf("qdrant config missing")
		}
		return qdrant.NewStorage(qdrant.Config{
			URL:        cfg.Qdrant.URL,
			APIKey:     cfg.Qdrant.APIKey,
			Collection: cfg.Qdrant.Collection,
			Distance:   cfg.Qdrant.Distance,
			Timeout:    time.Duration(cfg.Qdrant.TimeoutSecs) * time.Second,
		}), nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.Type)
	}
}

func buildSink(ctx context.Context, cfg config.SQLConfig) (*sqlstore.Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	db, err := sqlstore.Open(os.Getenv(cfg.DSNEnv))
	if err != nil {
		return nil, fmt.Errorf("sql sink (%s): %w", cfg.DSNEnv, err)
	}
	store := sqlstore.New(db, cfg.Table, cfg.BatchSize)
	if err := store.Migrate(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
