package lexicon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLexicon(t *testing.T) {
	lex := Default()
	assert.Len(t, lex.HeadingKeywords, 15)
	assert.Contains(t, lex.DisqualifyingTokens, "elsevier")
	assert.InDelta(t, 3.0, lex.SummaryWeights["diagnosis"], 1e-9)
	assert.InDelta(t, 2.5, lex.SummaryWeights["prognosis"], 1e-9)
	assert.InDelta(t, 1.5, lex.SummaryWeights["imaging"], 1e-9)
	assert.Contains(t, lex.OpeningWords, "Treatment")
	assert.Contains(t, lex.BoilerplatePrefixes, "See Chapter")
	_, ok := lex.StopwordSet()["the"]
	assert.True(t, ok)
}

func TestSortedWeightsIsOrdered(t *testing.T) {
	weights := Default().SortedWeights()
	require.NotEmpty(t, weights)
	for i := 1; i < len(weights); i++ {
		assert.Less(t, weights[i-1].Term, weights[i].Term)
	}
}

func TestLoadOverridesAndMerges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	data := []byte("heading_keywords: [Surgery]\nsummary_weights:\n  Dose: 4\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	lex, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"surgery"}, lex.HeadingKeywords)
	assert.InDelta(t, 4.0, lex.SummaryWeights["dose"], 1e-9)
	assert.InDelta(t, 3.0, lex.SummaryWeights["treatment"], 1e-9)
	assert.Contains(t, lex.DisqualifyingTokens, "chapter")
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	lex, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().HeadingKeywords, lex.HeadingKeywords)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
