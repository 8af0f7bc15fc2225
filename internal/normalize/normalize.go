// Package normalize turns raw OCR chapter text into clean prose lines.
//
// Normalize is deterministic and idempotent. Its output contains no banner
// text, page or chapter marker lines, running headers, purely numeric lines,
// blank lines or runs of whitespace. Wrapped lines are rejoined into one line
// per sentence group; heading-like lines stay on their own line.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"medrag/internal/headings"
)

var (
	bannerPattern  = regexp.MustCompile(`Downloaded\s+for\s(?s:.{1,300}?)\sat\s(?s:.{1,300}?)\sfrom\s+ClinicalKey\.com(?s:.{0,400}?)reserved\.`)
	pageLine       = regexp.MustCompile(`(?m)^[ \t]*--- PAGE \d+ ---.*$`)
	chapterLine    = regexp.MustCompile(`(?m)^[ \t]*>> CHAPTER:.*$`)
	runningHeader  = regexp.MustCompile(`(?m)^[ \t]*Chapter \d+[ \t]+[uv][ \t]+.*$`)
	hyphenBreak    = regexp.MustCompile(`(\p{L})-[ \t]*\n(?:[ \t]*\n)*[ \t]*(\p{Ll})`)
	whitespaceRun  = regexp.MustCompile(`[\s\x{00A0}]+`)
	numericOnly    = regexp.MustCompile(`^\d+$`)
	trailingQuotes = "\"')]’”"
)

// Normalize cleans raw chapter text.
func Normalize(raw string) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	text = bannerPattern.ReplaceAllString(text, "")
	text = chapterLine.ReplaceAllString(text, "")
	text = pageLine.ReplaceAllString(text, "")
	text = runningHeader.ReplaceAllString(text, "")
	text = hyphenBreak.ReplaceAllString(text, "${1}${2}")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(whitespaceRun.ReplaceAllString(line, " "))
		if line == "" || numericOnly.MatchString(line) {
			continue
		}
		lines = append(lines, line)
	}
	out := strings.Join(reflow(lines), "\n")
	// Hyphen repair and rejoined lines can complete a banner.
	if bannerPattern.MatchString(out) {
		return Normalize(bannerPattern.ReplaceAllString(out, ""))
	}
	return out
}

// reflow joins wrapped lines. A line starting in lower case always continues
// the previous one. Otherwise the buffered line is emitted when it ends a
// sentence or when it is a single heading-like line.
func reflow(lines []string) []string {
	var (
		out    []string
		buf    string
		single bool
	)
	for _, line := range lines {
		if buf == "" {
			buf, single = line, true
			continue
		}
		boundary := endsSentence(buf) || (single && headings.LooksLikeHeading(buf))
		if startsLower(line) || !boundary {
			buf += " " + line
			single = false
			continue
		}
		out = append(out, buf)
		buf, single = line, true
	}
	if buf != "" {
		out = append(out, buf)
	}
	return out
}

func endsSentence(s string) bool {
	s = strings.TrimRight(s, trailingQuotes)
	if s == "" {
		return false
	}
	switch s[len(s)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}

func startsLower(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLower(r)
}
