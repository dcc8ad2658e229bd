// Package backfill recovers the page a text chunk came from by looking for
// short fragments of the chunk in the text of nearby pages.
package backfill

import (
	"regexp"
	"strings"
)

const (
	DefaultAnchors      = 3
	DefaultAnchorLength = 40
	DefaultWindow       = 10
)

var lineBreakHyphen = regexp.MustCompile(`-\s*\n\s*`)

// Normalize lowercases text, joins words hyphenated across a line break and
// collapses whitespace. Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = lineBreakHyphen.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// Anchors returns up to count fragments of length runes taken from the
// start, middle and end of the normalized text. Text shorter than length is
// its own single anchor.
func Anchors(text string, count, length int) []string {
	r := []rune(Normalize(text))
	if len(r) == 0 {
		return nil
	}
	if len(r) < length {
		return []string{string(r)}
	}
	mid := len(r) / 2
	out := []string{
		string(r[:length]),
		string(r[mid:min(mid+length, len(r))]),
		string(r[len(r)-length:]),
	}
	if count < len(out) {
		out = out[:max(count, 0)]
	}
	return out
}

// Chunk is the part of a stored text chunk the backfill reads and writes.
// Pages are 1-based.
type Chunk struct {
	ID        string
	Content   string
	PageStart *int
	PageEnd   *int
}

// Session matches the chunks of one document, in order, against its pages.
// The search is centered on the page of the last match, so chunks are
// expected to arrive roughly in reading order.
type Session struct {
	Window       int
	AnchorCount  int
	AnchorLength int

	Matches int
	Misses  int

	pages  []string
	cursor int
}

// NewSession prepares a session over the raw text of each page.
func NewSession(pageTexts []string) *Session {
	pages := make([]string, len(pageTexts))
	for i, t := range pageTexts {
		pages[i] = Normalize(t)
	}
	return &Session{
		Window:       DefaultWindow,
		AnchorCount:  DefaultAnchors,
		AnchorLength: DefaultAnchorLength,
		pages:        pages,
	}
}

// Cursor is the 0-based page the next search is centered on.
func (s *Session) Cursor() int { return s.cursor }

// Locate sets c's page range when at least two anchors (or the only one)
// appear on a page within the window. The page with the most anchors wins;
// ties go to the earlier page. On a miss c is left untouched. The cursor
// only moves forward.
func (s *Session) Locate(c *Chunk) bool {
	anchors := Anchors(c.Content, s.AnchorCount, s.AnchorLength)
	if len(anchors) == 0 {
		s.Misses++
		return false
	}

	best, bestHits := -1, 0
	lo := max(0, s.cursor-s.Window)
	hi := min(len(s.pages), s.cursor+s.Window+1)
	for i := lo; i < hi; i++ {
		hits := 0
		for _, a := range anchors {
			if strings.Contains(s.pages[i], a) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = i, hits
		}
	}

	if best < 0 || bestHits < min(2, len(anchors)) {
		s.Misses++
		return false
	}
	s.cursor = max(s.cursor, best)
	start, end := best+1, best+1
	c.PageStart, c.PageEnd = &start, &end
	s.Matches++
	return true
}
