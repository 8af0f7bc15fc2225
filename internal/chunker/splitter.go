// Package chunker divides cleaned chapter text into a bounded number of
// contiguous, sentence-aligned chunks.
package chunker

import (
	"math"
	"strings"

	"medrag/internal/domain"
)

// Config holds the splitting parameters of a profile.
type Config struct {
	// ChunkCount is the number of chunks aimed for per chapter.
	ChunkCount int
	MinWords   int
	MaxWords   int
	// Tolerance scales the per-chunk word target into a hard cap.
	Tolerance float64
	// MinViableWords is the smallest per-chunk target accepted before
	// ChunkCount is reduced.
	MinViableWords int
	// ShortChapterWords is the size under which a chapter stays whole.
	ShortChapterWords int
	HeadingAware      bool
	// StrongHeadingScore is the minimum heading score used as a boundary.
	StrongHeadingScore float64
	// MinChunkWords is the smallest chunk kept apart; shorter chunks are
	// merged into a neighbour.
	MinChunkWords int
}

// DefaultConfig mirrors the fine-grained profile.
func DefaultConfig() Config {
	return Config{
		ChunkCount:         15,
		MinWords:           250,
		MaxWords:           400,
		Tolerance:          1.3,
		MinViableWords:     200,
		ShortChapterWords:  150,
		StrongHeadingScore: 2,
		MinChunkWords:      50,
	}
}

// Segment is one chunk of a text. Start and End are byte offsets into the
// text passed to Split; Text is that range with surrounding space trimmed.
type Segment struct {
	Start int
	End   int
	Text  string
	Words int
}

// Splitter cuts chapter text into segments.
type Splitter struct {
	cfg Config
}

// NewSplitter returns a splitter, filling unset fields from DefaultConfig.
func NewSplitter(cfg Config) *Splitter {
	def := DefaultConfig()
	if cfg.ChunkCount <= 0 {
		cfg.ChunkCount = def.ChunkCount
	}
	if cfg.MinWords <= 0 {
		cfg.MinWords = def.MinWords
	}
	if cfg.MaxWords <= 0 {
		cfg.MaxWords = def.MaxWords
	}
	if cfg.Tolerance < 1 {
		cfg.Tolerance = def.Tolerance
	}
	if cfg.MinViableWords <= 0 {
		cfg.MinViableWords = def.MinViableWords
	}
	if cfg.ShortChapterWords <= 0 {
		cfg.ShortChapterWords = def.ShortChapterWords
	}
	if cfg.StrongHeadingScore <= 0 {
		cfg.StrongHeadingScore = def.StrongHeadingScore
	}
	if cfg.MinChunkWords <= 0 {
		cfg.MinChunkWords = def.MinChunkWords
	}
	return &Splitter{cfg: cfg}
}

// Config returns the effective configuration.
func (s *Splitter) Config() Config { return s.cfg }

// Split returns at most ChunkCount segments covering text in order. Empty
// text yields none and short text yields one. Headings are consulted only in
// heading-aware mode and must refer to lines of text.
func (s *Splitter) Split(text string, hs []domain.Heading) []Segment {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	units := sentenceUnits(text)
	total := 0
	for _, u := range units {
		total += u.words
	}

	n := s.cfg.ChunkCount
	if total < s.cfg.ShortChapterWords || n == 1 {
		return segments(text, nil)
	}
	per := float64(total) / float64(n)
	if per < float64(s.cfg.MinViableWords) {
		n = min(s.cfg.ChunkCount, max(1, total/max(s.cfg.MinWords, s.cfg.MinViableWords)))
		per = float64(total) / float64(n)
	}
	if n == 1 {
		return segments(text, nil)
	}

	var bounds []int
	if s.cfg.HeadingAware {
		bounds = s.headingBounds(text, units, hs, n, per)
	}
	if bounds == nil {
		bounds = s.walkBounds(units, n, per)
	}
	return segments(text, mergeShort(text, bounds, s.cfg.MinChunkWords))
}

// mergeShort drops boundaries until every chunk has at least minWords words
// or a single chunk is left. A short last chunk joins the one before it;
// any other short chunk joins the one after it.
func mergeShort(text string, bounds []int, minWords int) []int {
	for len(bounds) > 0 {
		cuts := make([]int, 0, len(bounds)+2)
		cuts = append(append(append(cuts, 0), bounds...), len(text))
		drop := -1
		for i := 0; i+1 < len(cuts); i++ {
			if countWords(text[cuts[i]:cuts[i+1]]) >= minWords {
				continue
			}
			drop = i
			if i == len(bounds) {
				drop = i - 1
			}
			break
		}
		if drop < 0 {
			break
		}
		bounds = append(bounds[:drop:drop], bounds[drop+1:]...)
	}
	return bounds
}

// walkBounds accumulates sentences, closing a chunk once it reaches the
// per-chunk target or before a sentence would push it past the tolerance cap.
// The last chunk takes the remainder.
func (s *Splitter) walkBounds(units []unit, n int, per float64) []int {
	limit := per * s.cfg.Tolerance
	bounds := make([]int, 0, n-1)
	cur := 0
	for i, u := range units {
		if len(bounds) == n-1 {
			break
		}
		if cur > 0 && float64(cur+u.words) > limit {
			bounds = append(bounds, u.start)
			cur = 0
			if len(bounds) == n-1 {
				break
			}
		}
		cur += u.words
		if float64(cur) >= per && i < len(units)-1 {
			bounds = append(bounds, u.end)
			cur = 0
		}
	}
	return bounds
}

type mark struct {
	offset int
	words  int
}

// headingBounds places each of the n-1 boundaries on the strong heading line
// nearest to its fractional mark, within 30% of a chunk. Marks without such a
// heading fall back to the nearest sentence end. It returns nil when fewer
// than two strong headings are known.
func (s *Splitter) headingBounds(text string, units []unit, hs []domain.Heading, n int, per float64) []int {
	strong := make(map[int]bool)
	for _, h := range hs {
		if h.Score >= s.cfg.StrongHeadingScore {
			strong[h.LineOffset] = true
		}
	}
	if len(strong) < 2 {
		return nil
	}

	var headingMarks []mark
	pos, words := 0, 0
	for i, line := range strings.Split(text, "\n") {
		if strong[i] && pos > 0 {
			headingMarks = append(headingMarks, mark{offset: pos, words: words})
		}
		words += countWords(line)
		pos += len(line) + 1
	}

	unitMarks := make([]mark, 0, len(units))
	cum := 0
	for _, u := range units[:len(units)-1] {
		cum += u.words
		unitMarks = append(unitMarks, mark{offset: u.end, words: cum})
	}

	window := 0.3 * per
	bounds := make([]int, 0, n-1)
	prev := 0
	for k := 1; k < n; k++ {
		target := per * float64(k)
		m, ok := nearest(headingMarks, target, window, prev)
		if !ok {
			m, ok = nearest(unitMarks, target, math.Inf(1), prev)
		}
		if !ok || m.offset >= len(text) {
			break
		}
		bounds = append(bounds, m.offset)
		prev = m.offset
	}
	return bounds
}

// nearest returns the mark past offset after whose word position is closest
// to target and within window of it. Ties go to the earlier mark.
func nearest(marks []mark, target, window float64, after int) (mark, bool) {
	var (
		best  mark
		found bool
		dist  = math.Inf(1)
	)
	for _, m := range marks {
		if m.offset <= after {
			continue
		}
		d := math.Abs(float64(m.words) - target)
		if d > window || d >= dist {
			continue
		}
		best, dist, found = m, d, true
	}
	return best, found
}

// segments cuts text at bounds. Whitespace-only pieces are folded into a
// neighbour so every segment carries text.
func segments(text string, bounds []int) []Segment {
	cuts := make([]int, 0, len(bounds)+2)
	cuts = append(cuts, 0)
	cuts = append(cuts, bounds...)
	cuts = append(cuts, len(text))

	var segs []Segment
	for i := 0; i+1 < len(cuts); i++ {
		start, end := cuts[i], cuts[i+1]
		body := strings.TrimSpace(text[start:end])
		if body == "" {
			switch {
			case len(segs) > 0:
				segs[len(segs)-1].End = end
			case i+2 < len(cuts):
				cuts[i+1] = start
			}
			continue
		}
		segs = append(segs, Segment{Start: start, End: end, Text: body, Words: countWords(body)})
	}
	return segs
}
