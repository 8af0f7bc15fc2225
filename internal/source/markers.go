package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"medrag/internal/domain"
)

const sectionPrefix = ">> CHAPTER:"

// MarkerIndex holds chapter texts keyed by the name following a
// ">> CHAPTER:" marker line.
type MarkerIndex struct {
	sections map[string]string
	order    []string
}

// LoadMarkerIndex reads the sections of the file at path.
func LoadMarkerIndex(path string) (*MarkerIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: text %s: %v", domain.ErrMissingInput, path, err)
	}
	defer f.Close()
	return ReadMarkerIndex(f)
}

// ReadMarkerIndex splits r into sections. Text before the first marker is
// ignored. A repeated name keeps the last section.
func ReadMarkerIndex(r io.Reader) (*MarkerIndex, error) {
	idx := &MarkerIndex{sections: make(map[string]string)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var (
		current string
		open    bool
		body    strings.Builder
	)
	flush := func() {
		if !open {
			return
		}
		if _, seen := idx.sections[current]; !seen {
			idx.order = append(idx.order, current)
		}
		idx.sections[current] = body.String()
		body.Reset()
	}
	for scanner.Scan() {
		line := strings.ToValidUTF8(scanner.Text(), "�")
		if strings.HasPrefix(line, sectionPrefix) {
			flush()
			current = strings.TrimSpace(strings.TrimPrefix(line, sectionPrefix))
			open = true
			continue
		}
		if open {
			body.WriteString(strings.TrimRight(line, " \t"))
			body.WriteByte('\n')
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return idx, nil
}

// Lookup returns the section text for a chapter name. Names are compared
// after trimming and case folding.
func (m *MarkerIndex) Lookup(name string) (string, bool) {
	if text, ok := m.sections[strings.TrimSpace(name)]; ok {
		return text, true
	}
	for key, text := range m.sections {
		if strings.EqualFold(key, strings.TrimSpace(name)) {
			return text, true
		}
	}
	return "", false
}

// Names lists section names in file order.
func (m *MarkerIndex) Names() []string {
	return append([]string(nil), m.order...)
}

// Chapter returns the section named like ch, or an empty string when the
// file has no such section.
func (m *MarkerIndex) Chapter(ch domain.ChapterRecord) (string, error) {
	text, _ := m.Lookup(ch.Name)
	return text, nil
}
