// Package ingest turns the page text of a PDF into token-bounded chunks and
// stores them with their embeddings.
package ingest

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/thywilljoshua/pdf-corpus/internal/pdfdoc"
)

const (
	DefaultMaxTokens = 1000
	maxHeadingLength = 100
)

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// PageText is the text of one page, numbered from 1.
type PageText struct {
	Page int
	Text string
}

type Chunk struct {
	Index      int
	Heading    string
	Content    string
	PageStart  int
	PageEnd    int
	TokenCount int
}

// EstimateTokens approximates a token count as one token per four characters.
func EstimateTokens(s string) int {
	return utf8.RuneCountInString(s) / 4
}

// PagesFromDocument returns the non-blank pages of doc.
func PagesFromDocument(doc pdfdoc.Document) []PageText {
	var out []PageText
	for i, text := range pdfdoc.PageTexts(doc) {
		if strings.TrimSpace(text) == "" {
			continue
		}
		out = append(out, PageText{Page: i + 1, Text: text})
	}
	return out
}

// ChunkPages packs paragraphs into chunks of at most maxTokens estimated
// tokens. A paragraph is never split, so one longer than maxTokens becomes a
// chunk on its own.
func ChunkPages(pages []PageText, maxTokens int) []Chunk {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	var (
		chunks     []Chunk
		current    string
		start, end int
	)
	flush := func() {
		chunks = append(chunks, Chunk{
			Index:      len(chunks),
			Heading:    Heading(current),
			Content:    current,
			PageStart:  start,
			PageEnd:    max(end, start),
			TokenCount: EstimateTokens(current),
		})
	}
	for _, p := range pages {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		if start == 0 {
			start = p.Page
		}
		for _, para := range paragraphBreak.Split(text, -1) {
			para = strings.TrimSpace(para)
			if para == "" {
				continue
			}
			combined := para
			if current != "" {
				combined = current + "\n\n" + para
			}
			if current != "" && EstimateTokens(combined) > maxTokens {
				flush()
				current = para
				start, end = p.Page, p.Page
				continue
			}
			current = combined
			end = p.Page
		}
	}
	if current != "" {
		flush()
	}
	return chunks
}

// Heading returns the first line of text when it is short and either all
// upper case or title case, and "" otherwise.
func Heading(text string) string {
	first, _, _ := strings.Cut(text, "\n")
	first = strings.TrimSpace(first)
	if utf8.RuneCountInString(first) >= maxHeadingLength {
		return ""
	}
	if isUpper(first) || isTitle(first) {
		return first
	}
	return ""
}

// isUpper reports whether s has at least one cased letter and no lower-case
// ones.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			return false
		case unicode.IsUpper(r) || unicode.IsTitle(r):
			cased = true
		}
	}
	return cased
}

// isTitle reports whether every word starts with an upper-case letter
// followed only by lower-case ones. A word is a run of cased letters.
func isTitle(s string) bool {
	cased, prevCased := false, false
	for _, r := range s {
		switch {
		case unicode.IsUpper(r) || unicode.IsTitle(r):
			if prevCased {
				return false
			}
			prevCased, cased = true, true
		case unicode.IsLower(r):
			if !prevCased {
				return false
			}
			prevCased, cased = true, true
		default:
			prevCased = false
		}
	}
	return cased
}
