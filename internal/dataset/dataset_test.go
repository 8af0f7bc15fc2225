package dataset

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medrag/internal/domain"
)

func sample() []domain.DatasetRecord {
	return []domain.DatasetRecord{
		{
			BookTitle:        "Nelson Textbook of Pediatrics",
			ChapterID:        "CH-0073",
			ChapterNumber:    73,
			ChapterName:      "Fluid and Electrolyte Disorders",
			ChunkIndex:       0,
			TopicName:        "Hyponatremia",
			Content:          "Hyponatremia is common, \"often\" iatrogenic.\nIt is treated slowly.",
			Category:         "Fluid & Electrolytes",
			Summary:          "Hyponatremia is common.",
			TokenEstimate:    12,
			MicroChunks:      []string{"Hyponatremia is common."},
			Tables:           []domain.Table{{Title: "Table 73.1 Causes", Rows: []string{"a", "b"}}},
			ContentEmbedding: []float64{0.5, 0.25},
		},
		{
			BookTitle:     "Nelson Textbook of Pediatrics",
			ChapterID:     "CH-0074",
			ChapterNumber: 74,
			ChapterName:   "Acid-Base Balance",
			ChunkIndex:    1,
			TopicName:     "Acid-Base Balance Part 2",
			Content:       "Metabolic acidosis.",
			Summary:       "Metabolic acidosis occurs.",
		},
	}
}

func TestHeaderOrder(t *testing.T) {
	assert.Equal(t,
		[]string{"book_title", "chapter_number", "chapter_name", "topic_name", "content", "summary"},
		Header(Columns{}))
	assert.Equal(t,
		[]string{"book_title", "chapter_number", "chapter_name", "topic_name", "content", "category", "summary",
			"micro_chunks", "tables", "content_embedding", "summary_embedding", "topic_embedding",
			"chapter_id", "chunk_index", "token_estimate"},
		Header(Columns{Category: true, MicroChunks: true, Tables: true, Embeddings: true, Identifiers: true}))
}

func TestWriteCSVEncodesLists(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample(), Columns{Embeddings: true}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "73", rows[1][1])
	assert.Equal(t, sample()[0].Content, rows[1][4])
	assert.Equal(t, "[0.5,0.25]", rows[1][6])
	assert.Equal(t, "[]", rows[1][7])
	assert.Equal(t, "[]", rows[2][6])
}

func TestCSVRoundTrip(t *testing.T) {
	cols := Columns{Category: true, MicroChunks: true, Tables: true, Embeddings: true, Identifiers: true}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample(), cols))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, sample(), got)
}

func TestReadCSVMissingColumn(t *testing.T) {
	_, err := ReadCSV(bytes.NewBufferString("book_title,content\nx,y\n"))
	assert.ErrorContains(t, err, "chapter_number")
}

func TestJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sample()))
	assert.Contains(t, buf.String(), `"chapter_id": "CH-0073"`)
	assert.NotContains(t, buf.String(), `&`)

	got, err := ReadJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, sample(), got)
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteFilesAndReadFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WriteFiles(dir, "dataset", []string{"csv", "JSON"}, sample(), Columns{Category: true, Identifiers: true})
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "dataset.csv"), filepath.Join(dir, "dataset.json")}, paths)

	fromCSV, err := ReadFile(paths[0])
	require.NoError(t, err)
	require.Len(t, fromCSV, 2)
	assert.Equal(t, "Fluid & Electrolytes", fromCSV[0].Category)
	assert.Equal(t, "CH-0074", fromCSV[1].ChapterID)

	fromJSON, err := ReadFile(paths[1])
	require.NoError(t, err)
	assert.Equal(t, sample(), fromJSON)

	_, err = WriteFiles(dir, "dataset", []string{"xml"}, sample(), Columns{})
	assert.Error(t, err)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "none.json"))
	assert.ErrorIs(t, err, domain.ErrMissingInput)
}
