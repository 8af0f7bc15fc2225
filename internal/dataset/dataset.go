// Package dataset writes and reads the chunk dataset as CSV and JSON.
package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"medrag/internal/domain"
)

// Columns selects the optional CSV columns.
type Columns struct {
	Category    bool
	MicroChunks bool
	Tables      bool
	Embeddings  bool
	Identifiers bool
}

// Header returns the CSV header for cols.
func Header(cols Columns) []string {
	h := []string{"book_title", "chapter_number", "chapter_name", "topic_name", "content"}
	if cols.Category {
		h = append(h, "category")
	}
	h = append(h, "summary")
	if cols.MicroChunks {
		h = append(h, "micro_chunks")
	}
	if cols.Tables {
		h = append(h, "tables")
	}
	if cols.Embeddings {
		h = append(h, "content_embedding", "summary_embedding", "topic_embedding")
	}
	if cols.Identifiers {
		h = append(h, "chapter_id", "chunk_index", "token_estimate")
	}
	return h
}

// WriteCSV writes a header row followed by one row per record. List-valued
// columns hold JSON arrays; absent values are written as [].
func WriteCSV(w io.Writer, records []domain.DatasetRecord, cols Columns) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(cols)); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{r.BookTitle, strconv.Itoa(r.ChapterNumber), r.ChapterName, r.TopicName, r.Content}
		if cols.Category {
			row = append(row, r.Category)
		}
		row = append(row, r.Summary)
		if cols.MicroChunks {
			row = append(row, jsonList(r.MicroChunks))
		}
		if cols.Tables {
			row = append(row, jsonList(r.Tables))
		}
		if cols.Embeddings {
			row = append(row, jsonList(r.ContentEmbedding), jsonList(r.SummaryEmbedding), jsonList(r.TopicEmbedding))
		}
		if cols.Identifiers {
			row = append(row, r.ChapterID, strconv.Itoa(r.ChunkIndex), strconv.Itoa(r.TokenEstimate))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a dataset written by WriteCSV. Unknown columns are ignored.
func ReadCSV(r io.Reader) ([]domain.DatasetRecord, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"book_title", "chapter_number", "chapter_name", "topic_name", "content", "summary"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("csv missing column %q", required)
		}
	}

	var out []domain.DatasetRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		get := func(name string) string {
			if i, ok := idx[name]; ok && i < len(row) {
				return row[i]
			}
			return ""
		}
		rec := domain.DatasetRecord{
			BookTitle:   get("book_title"),
			ChapterName: get("chapter_name"),
			ChapterID:   get("chapter_id"),
			TopicName:   get("topic_name"),
			Content:     get("content"),
			Category:    get("category"),
			Summary:     get("summary"),
		}
		if rec.ChapterNumber, err = atoi(get("chapter_number")); err != nil {
			return nil, fmt.Errorf("line %d: chapter_number: %w", line, err)
		}
		if rec.ChunkIndex, err = atoi(get("chunk_index")); err != nil {
			return nil, fmt.Errorf("line %d: chunk_index: %w", line, err)
		}
		if rec.TokenEstimate, err = atoi(get("token_estimate")); err != nil {
			return nil, fmt.Errorf("line %d: token_estimate: %w", line, err)
		}
		for name, dst := range map[string]any{
			"micro_chunks":      &rec.MicroChunks,
			"tables":            &rec.Tables,
			"content_embedding": &rec.ContentEmbedding,
			"summary_embedding": &rec.SummaryEmbedding,
			"topic_embedding":   &rec.TopicEmbedding,
		} {
			if v := strings.TrimSpace(get(name)); v != "" && v != "[]" {
				if err := json.Unmarshal([]byte(v), dst); err != nil {
					return nil, fmt.Errorf("line %d: %s: %w", line, name, err)
				}
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// WriteJSON writes records as an indented JSON array.
func WriteJSON(w io.Writer, records []domain.DatasetRecord) error {
	if records == nil {
		records = []domain.DatasetRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(records)
}

// ReadJSON reads a JSON array of records.
func ReadJSON(r io.Reader) ([]domain.DatasetRecord, error) {
	var records []domain.DatasetRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return records, nil
}

// ReadFile loads a dataset, choosing the format from the file extension.
func ReadFile(path string) ([]domain.DatasetRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: dataset %s: %v", domain.ErrMissingInput, path, err)
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return ReadCSV(f)
	}
	return ReadJSON(f)
}

// WriteFiles writes one file per format ("csv" or "json") named
// dir/basename.<format> and returns the paths written.
func WriteFiles(dir, basename string, formats []string, records []domain.DatasetRecord, cols Columns) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var paths []string
	for _, format := range formats {
		format = strings.ToLower(strings.TrimSpace(format))
		path := filepath.Join(dir, basename+"."+format)
		var write func(io.Writer) error
		switch format {
		case "csv":
			write = func(w io.Writer) error { return WriteCSV(w, records, cols) }
		case "json":
			write = func(w io.Writer) error { return WriteJSON(w, records) }
		default:
			return paths, fmt.Errorf("unknown output format %q", format)
		}
		if err := writeFile(path, write); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func jsonList[T any](v []T) string {
	if len(v) == 0 {
		return "[]"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func atoi(s string) (int, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return strconv.Atoi(strings.TrimSpace(s))
}
