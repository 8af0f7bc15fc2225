package source

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// ConvertPDF writes the text of every page of the PDF at path to w, each
// page preceded by a "--- PAGE n ---" marker. Pages whose text cannot be
// read are emitted empty and logged. It returns the number of pages written.
func ConvertPDF(path string, w io.Writer, log *zap.Logger) (int, error) {
	if log == nil {
		log = zap.NewNop()
	}
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	out := bufio.NewWriter(w)
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if _, err := fmt.Fprintf(out, "--- PAGE %d ---\n", i); err != nil {
			return i - 1, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			log.Warn("pdf page unreadable", zap.Int("page", i), zap.Error(err))
			continue
		}
		text = strings.TrimRight(text, "\n")
		if text == "" {
			continue
		}
		if _, err := out.WriteString(text + "\n"); err != nil {
			return i - 1, err
		}
	}
	if err := out.Flush(); err != nil {
		return numPages, err
	}
	return numPages, nil
}
