package headings

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medrag/internal/lexicon"
)

func TestDetectScoresAndOrders(t *testing.T) {
	text := strings.Join([]string{
		"Fever is the most common reason for a visit.",
		"Diagnosis and Treatment of Fever",
		"Background Information",
		"CLINICAL MANIFESTATIONS",
		"More text follows here.",
	}, "\n")

	got := NewDetector(lexicon.Default()).Detect(text)
	require.Len(t, got, 3)

	assert.Equal(t, "Diagnosis and Treatment of Fever", got[0].Text)
	assert.InDelta(t, 3.0, got[0].Score, 1e-9)
	assert.Equal(t, 1, got[0].LineOffset)

	assert.Equal(t, "CLINICAL MANIFESTATIONS", got[1].Text)
	assert.InDelta(t, UpperCaseScore, got[1].Score, 1e-9)
	assert.Equal(t, 3, got[1].LineOffset)

	assert.Equal(t, "Background Information", got[2].Text)
	assert.InDelta(t, 1.0, got[2].Score, 1e-9)
}

func TestDetectSkipsDisqualifiedLines(t *testing.T) {
	text := "CHAPTER 12 FEVER\nDownloaded From Somewhere Else\nPAGET DISEASE OF BONE"
	got := NewDetector(lexicon.Default()).Detect(text)
	require.Len(t, got, 1)
	assert.Equal(t, "PAGET DISEASE OF BONE", got[0].Text)
}

func TestDetectLengthBounds(t *testing.T) {
	text := "SHORT\nTiny Words\n" + strings.Repeat("A", 160)
	got := NewDetector(lexicon.Default()).Detect(text)
	assert.Empty(t, got)
}

func TestBestRespectsThreshold(t *testing.T) {
	d := NewDetector(lexicon.Default())

	_, ok := d.Best("Background Information\nSome text.", 2)
	assert.False(t, ok)

	h, ok := d.Best("Background Information\nPROGNOSIS\nSome text.", 2)
	require.True(t, ok)
	assert.Equal(t, "PROGNOSIS", h.Text)
}

func TestLooksLikeHeading(t *testing.T) {
	assert.True(t, LooksLikeHeading("TREATMENT"))
	assert.True(t, LooksLikeHeading("Management of Acute Otitis"))
	assert.False(t, LooksLikeHeading("Fever resolves in 3 days."))
	assert.False(t, LooksLikeHeading("lowercase start line here"))
}
