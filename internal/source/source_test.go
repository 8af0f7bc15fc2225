package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medrag/internal/domain"
)

const book = `front matter
--- PAGE 1 ---
page one text
--- PAGE 2 ---
page two text
more of page two
--- PAGE 3 ---
page three text
--- PAGE 4 ---
page four text
`

func TestExtractPagesInclusiveRange(t *testing.T) {
	text, err := ExtractPages(strings.NewReader(book), 2, 3)
	require.NoError(t, err)
	assert.Equal(t, "page two text\nmore of page two\npage three text\n", text)
}

func TestExtractPagesUnboundedEnd(t *testing.T) {
	text, err := ExtractPages(strings.NewReader(book), 4, domain.EndPageUnbounded)
	require.NoError(t, err)
	assert.Equal(t, "page four text\n", text)
}

func TestExtractPagesNoMatch(t *testing.T) {
	text, err := ExtractPages(strings.NewReader(book), 10, 12)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtractPagesReplacesInvalidUTF8(t *testing.T) {
	input := "--- PAGE 1 ---\nbad \xff byte\n"
	text, err := ExtractPages(strings.NewReader(input), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "bad � byte\n", text)
}

func TestPageExtractorFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.txt")
	require.NoError(t, os.WriteFile(path, []byte(book), 0o644))

	ex, err := NewPageExtractor(path)
	require.NoError(t, err)
	text, err := ex.Extract(1, 1)
	require.NoError(t, err)
	assert.Equal(t, "page one text\n", text)
}

func TestNewPageExtractorMissingFile(t *testing.T) {
	_, err := NewPageExtractor(filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingInput))
}

func TestReadMarkerIndex(t *testing.T) {
	input := `preamble
>> CHAPTER: Fever
Fever is common.
It is a sign.
>> CHAPTER: Asthma
Asthma is chronic.
`
	idx, err := ReadMarkerIndex(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"Fever", "Asthma"}, idx.Names())

	text, ok := idx.Lookup("fever")
	require.True(t, ok)
	assert.Equal(t, "Fever is common.\nIt is a sign.\n", text)

	_, ok = idx.Lookup("Croup")
	assert.False(t, ok)
}

func TestMarkerIndexChapter(t *testing.T) {
	idx, err := ReadMarkerIndex(strings.NewReader(">> CHAPTER: Croup\nCroup is viral.\n"))
	require.NoError(t, err)

	text, err := idx.Chapter(domain.ChapterRecord{Name: "CROUP"})
	require.NoError(t, err)
	assert.Equal(t, "Croup is viral.\n", text)

	text, err = idx.Chapter(domain.ChapterRecord{Name: "Fever"})
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestConvertPDFMissingFile(t *testing.T) {
	var buf strings.Builder
	n, err := ConvertPDF(filepath.Join(t.TempDir(), "absent.pdf"), &buf, nil)
	assert.Error(t, err)
	assert.Zero(t, n)
	assert.Empty(t, buf.String())
}
