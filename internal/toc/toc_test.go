package toc

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medrag/internal/domain"
)

func TestParseBackfillsEndPages(t *testing.T) {
	input := "CHAPTER: Fluid and Electrolyte Disorders (Page: 348)\n" +
		"CHAPTER: Acid-Base Balance (Page: 361)\n"

	chapters, stats, err := NewParser(nil).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, chapters, 2)
	assert.Equal(t, 0, stats.Malformed)

	first := chapters[0]
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, "CH-0001", first.ID)
	assert.Equal(t, "Fluid and Electrolyte Disorders", first.Name)
	assert.Equal(t, 348, first.StartPage)
	assert.Equal(t, 360, first.EndPage)

	last := chapters[1]
	assert.Equal(t, "CH-0002", last.ID)
	assert.Equal(t, 361, last.StartPage)
	assert.Equal(t, domain.EndPageUnbounded, last.EndPage)
}

func TestParseAdjacencyInvariant(t *testing.T) {
	input := `Contents
CHAPTER: Overview of Pediatrics (Page: 1)
CHAPTER: Child Health Disparities (Page: 7)

Part II
CHAPTER: Global Child Health (Page: 22)
CHAPTER: Quality and Value in Healthcare (Page: 40)
`
	chapters, _, err := NewParser(nil).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, chapters, 4)
	for i := 0; i+1 < len(chapters); i++ {
		assert.Equal(t, chapters[i+1].StartPage-1, chapters[i].EndPage)
		assert.Equal(t, i+1, chapters[i].Number)
	}
	assert.Equal(t, domain.EndPageUnbounded, chapters[3].EndPage)
}

func TestParseCountsMalformedEntries(t *testing.T) {
	input := "CHAPTER: Missing page marker\n" +
		"CHAPTER: Fever (Page: 12)\n" +
		"CHAPTER: Broken (Page: twelve)\n" +
		"random noise line\n"

	chapters, stats, err := NewParser(nil).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, chapters, 1)
	assert.Equal(t, "CH-0001", chapters[0].ID)
	assert.Equal(t, "Fever", chapters[0].Name)
	assert.Equal(t, 2, stats.Malformed)
	assert.Equal(t, 4, stats.Lines)
}

func TestParseEmptyInput(t *testing.T) {
	chapters, _, err := NewParser(nil).Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, chapters)
}

func TestParseLastLineWithoutNewline(t *testing.T) {
	chapters, _, err := NewParser(nil).Parse(strings.NewReader("CHAPTER: Asthma (Page: 1100)"))
	require.NoError(t, err)
	require.Len(t, chapters, 1)
	assert.Equal(t, 1100, chapters[0].StartPage)
}

func TestParseFileMissing(t *testing.T) {
	_, _, err := NewParser(nil).ParseFile(filepath.Join(t.TempDir(), "toc.txt"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingInput))
}
