// Package service runs the chapter pipeline: table of contents in, dataset
// records out, with optional embeddings and downstream sinks.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"medrag/internal/category"
	"medrag/internal/chunker"
	"medrag/internal/domain"
	"medrag/internal/embedding"
	"medrag/internal/headings"
	"medrag/internal/normalize"
	"medrag/internal/tables"
	"medrag/internal/toc"
	"medrag/internal/topic"
)

// ChapterSource returns the raw text of a chapter.
type ChapterSource interface {
	Chapter(ch domain.ChapterRecord) (string, error)
}

// RecordSink receives the finished dataset, e.g. a SQL table.
type RecordSink interface {
	Insert(ctx context.Context, records []domain.DatasetRecord) error
}

// Components are the collaborators of a DatasetService. Store, Sink and
// Categories may be nil; a nil Embedder behaves like an unavailable one.
type Components struct {
	Parser     *toc.Parser
	Source     ChapterSource
	Detector   *headings.Detector
	Splitter   *chunker.Splitter
	Namer      *topic.Namer
	Summarizer domain.Summarizer
	Counter    domain.TokenCounter
	Categories *category.Table
	Embedder   *embedding.Adapter
	Store      domain.VectorStore
	Sink       RecordSink
}

// Options control record content.
type Options struct {
	BookTitle       string
	TOCPath         string
	MaxSentences    int
	MinChapterChars int
	MinChunkWords   int
	Category        bool
	Tables          bool
	MicroChunks     bool
	MicroChunkChars int
	MicroChunkLimit int
	Embeddings      bool
}

// Result reports one run.
type Result struct {
	RunID             string
	Records           []domain.DatasetRecord
	Chapters          int
	Malformed         int
	Skipped           int
	DroppedChunks     int
	EmbeddingsMissing int
	// StoreErr and SinkErr record downstream failures. They never discard
	// the records.
	StoreErr error
	SinkErr  error
	Elapsed  time.Duration
}

// DatasetService builds dataset records chapter by chapter and answers
// queries over the last indexed records.
type DatasetService struct {
	c    Components
	opts Options
	log  *zap.Logger

	records []domain.DatasetRecord
}

func NewDatasetService(c Components, opts Options, log *zap.Logger) *DatasetService {
	if log == nil {
		log = zap.NewNop()
	}
	if c.Parser == nil {
		c.Parser = toc.NewParser(log)
	}
	if c.Splitter == nil {
		c.Splitter = chunker.NewSplitter(chunker.DefaultConfig())
	}
	if c.Counter == nil {
		c.Counter = chunker.WordCounter{}
	}
	if c.Embedder == nil {
		c.Embedder = embedding.NewAdapter(nil, embedding.Options{}, log)
	}
	if opts.MaxSentences <= 0 {
		opts.MaxSentences = 5
	}
	if opts.MinChapterChars <= 0 {
		opts.MinChapterChars = 200
	}
	if opts.MinChunkWords <= 0 {
		opts.MinChunkWords = 50
	}
	return &DatasetService{c: c, opts: opts, log: log}
}

// Run builds the records and publishes them to the vector store and the
// record sink. Only missing inputs abort the run.
func (s *DatasetService) Run(ctx context.Context) (*Result, error) {
	res, err := s.Build(ctx)
	if err != nil {
		return nil, err
	}
	s.Publish(ctx, res)
	return res, nil
}

// Build processes every chapter of the table of contents and embeds the
// records when enabled. Chapters that cannot be processed are logged and
// skipped.
func (s *DatasetService) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: uuid.NewString()}
	log := s.log.With(zap.String("run_id", res.RunID))

	chapters, stats, err := s.c.Parser.ParseFile(s.opts.TOCPath)
	if err != nil {
		return nil, err
	}
	res.Chapters = len(chapters)
	res.Malformed = stats.Malformed
	log.Info("toc parsed", zap.Int("chapters", len(chapters)), zap.Int("malformed", stats.Malformed))

	for _, ch := range chapters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		recs, dropped, err := s.processChapter(ch)
		res.DroppedChunks += dropped
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrMissingInput):
			return nil, err
		default:
			res.Skipped++
			log.Warn("chapter skipped", zap.String("chapter_id", ch.ID), zap.String("chapter", ch.Name), zap.Error(err))
			continue
		}
		res.Records = append(res.Records, recs...)
		log.Debug("chapter done", zap.String("chapter_id", ch.ID), zap.Int("chunks", len(recs)))
	}

	if s.opts.Embeddings {
		res.EmbeddingsMissing = s.embedRecords(ctx, res.Records, true)
	}
	s.records = res.Records
	res.Elapsed = time.Since(start)
	log.Info("records built",
		zap.Int("records", len(res.Records)),
		zap.Int("skipped", res.Skipped),
		zap.Int("dropped_chunks", res.DroppedChunks),
		zap.Int("embeddings_missing", res.EmbeddingsMissing),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

// Publish upserts the built records into the vector store and inserts them
// into the record sink. Failures are logged and kept on res.
func (s *DatasetService) Publish(ctx context.Context, res *Result) {
	log := s.log.With(zap.String("run_id", res.RunID))
	if err := s.upsert(res.Records); err != nil {
		res.StoreErr = fmt.Errorf("vector store: %w", err)
		log.Error("publish failed", zap.Error(res.StoreErr))
	}
	if s.c.Sink != nil {
		if err := s.c.Sink.Insert(ctx, res.Records); err != nil {
			res.SinkErr = fmt.Errorf("record sink: %w", err)
			log.Error("publish failed", zap.Error(res.SinkErr))
		}
	}
	log.Info("run finished",
		zap.Int("records", len(res.Records)),
		zap.Bool("store_ok", res.StoreErr == nil),
		zap.Bool("sink_ok", res.SinkErr == nil))
}

// ProcessChapter turns one chapter into dataset records without embeddings.
// A chapter too short to process yields domain.ErrInsufficientContent.
func (s *DatasetService) ProcessChapter(ch domain.ChapterRecord) ([]domain.DatasetRecord, error) {
	recs, _, err := s.processChapter(ch)
	return recs, err
}

func (s *DatasetService) processChapter(ch domain.ChapterRecord) ([]domain.DatasetRecord, int, error) {
	if ch.ID == "" {
		ch.ID = domain.ChapterID(ch.Number)
	}
	raw, err := s.c.Source.Chapter(ch)
	if err != nil {
		return nil, 0, err
	}
	if n := len(strings.TrimSpace(raw)); n < s.opts.MinChapterChars {
		return nil, 0, fmt.Errorf("%w: %d raw characters", domain.ErrInsufficientContent, n)
	}
	clean := normalize.Normalize(raw)
	if len(clean) < s.opts.MinChapterChars {
		return nil, 0, fmt.Errorf("%w: %d characters after cleaning", domain.ErrInsufficientContent, len(clean))
	}

	var hs []domain.Heading
	if s.c.Detector != nil {
		hs = s.c.Detector.Detect(clean)
	}
	segs := s.c.Splitter.Split(clean, hs)
	contents := make([]string, len(segs))
	for i, seg := range segs {
		contents[i] = seg.Text
	}
	names := s.topicNames(contents, ch.Name)

	var (
		chapterTables []domain.Table
		categoryName  string
	)
	if s.opts.Tables {
		chapterTables = tables.Extract(raw)
	}
	if s.opts.Category && s.c.Categories != nil {
		categoryName = s.c.Categories.Lookup(ch.Number)
	}

	var (
		out     []domain.DatasetRecord
		dropped int
	)
	for i, seg := range segs {
		if seg.Words < s.opts.MinChunkWords {
			dropped++
			s.log.Debug("chunk dropped", zap.String("chapter_id", ch.ID), zap.Int("chunk", i), zap.String("reason", "too few words"))
			continue
		}
		summary, err := s.c.Summarizer.Summarize(seg.Text, s.opts.MaxSentences)
		if err != nil || summary == "" {
			dropped++
			s.log.Warn("chunk dropped", zap.String("chapter_id", ch.ID), zap.Int("chunk", i), zap.String("reason", "empty summary"), zap.Error(err))
			continue
		}
		rec := domain.DatasetRecord{
			BookTitle:     s.opts.BookTitle,
			ChapterID:     ch.ID,
			ChapterNumber: ch.Number,
			ChapterName:   ch.Name,
			ChunkIndex:    len(out),
			TopicName:     names[i],
			Content:       seg.Text,
			Category:      categoryName,
			Summary:       summary,
			TokenEstimate: s.c.Counter.Count(seg.Text),
			Tables:        chapterTables,
		}
		if s.opts.MicroChunks {
			rec.MicroChunks = chunker.MicroChunks(seg.Text, s.opts.MicroChunkChars, s.opts.MicroChunkLimit)
		}
		out = append(out, rec)
	}
	if len(out) == 0 {
		return nil, dropped, fmt.Errorf("%w: no chunk survived", domain.ErrInsufficientContent)
	}
	return out, dropped, nil
}

func (s *DatasetService) topicNames(contents []string, chapterName string) []string {
	if s.c.Namer == nil {
		s.c.Namer = topic.NewNamer(topic.Config{}, s.c.Detector)
	}
	return s.c.Namer.NameAll(contents, chapterName)
}
