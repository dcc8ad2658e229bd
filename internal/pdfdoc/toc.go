package pdfdoc

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
)

// OutlineEntry is one table-of-contents line. Page is 1-based.
type OutlineEntry struct {
	Number string `json:"number,omitempty"`
	Title  string `json:"title"`
	Page   int    `json:"page"`
	Level  int    `json:"level"`
}

// Section is a node of the document hierarchy built from outline entries.
type Section struct {
	Number   string    `json:"number,omitempty"`
	Title    string    `json:"title"`
	Start    int       `json:"start_page"`
	End      int       `json:"end_page"`
	Depth    int       `json:"depth"`
	Slug     string    `json:"slug"`
	Children []Section `json:"children,omitempty"`
}

// Outline returns the bookmark tree of the document flattened in document
// order. A PDF without bookmarks yields no entries and no error.
func (f *File) Outline() ([]OutlineEntry, error) {
	bms, err := pdfcpu.Bookmarks(f.img)
	if err != nil {
		return nil, fmt.Errorf("read bookmarks: %w", err)
	}
	var out []OutlineEntry
	var walk func([]pdfcpu.Bookmark, int)
	walk = func(bms []pdfcpu.Bookmark, level int) {
		for _, bm := range bms {
			title := strings.Join(strings.Fields(bm.Title), " ")
			if title != "" {
				out = append(out, OutlineEntry{Title: title, Page: bm.PageFrom, Level: level})
			}
			walk(bm.Kids, level+1)
		}
	}
	walk(bms, 1)
	return out, nil
}

// Patterns for printed ToC lines: numeric, roman, alphabetic appendices and
// an explicit "Appendix" prefix.
var (
	tocNumRe      = regexp.MustCompile(`^\s*(\d+(?:\.\d+)*)\s+(.+?)\s+(\d+)\s*$`)
	tocRomanRe    = regexp.MustCompile(`^\s*([IVXLCDM]+)(?:\.([0-9]+))?\s+(.+?)\s+(\d+)\s*$`)
	tocAlphaRe    = regexp.MustCompile(`^\s*([A-Z](?:\.[0-9]+)*)\s+(.+?)\s+(\d+)\s*$`)
	tocAppendixRe = regexp.MustCompile(`^\s*(?:Appendix|APPENDIX)\s+([A-Z](?:\.[0-9]+)*)\s+(.+?)\s+(\d+)\s*$`)

	dotLeaderRe = regexp.MustCompile(`(?:\s*\.){3,}\s*`)
)

// ParseToCLines scans printed table-of-contents text, typically the first
// few pages of a document, and returns the recognized entries by page.
func ParseToCLines(lines []string) []OutlineEntry {
	var out []OutlineEntry
	for _, line := range lines {
		if e, ok := matchToC(normalizeDotLeaders(line)); ok {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Page < out[j].Page })
	return out
}

// ToCLines collects the lines of the first n pages that read as ToC
// entries. Once a page has contributed, the first following page that adds
// nothing ends the scan.
func ToCLines(pages []string, n int) []string {
	var out []string
	for i := 0; i < len(pages) && i < n; i++ {
		added := false
		for _, ln := range strings.Split(pages[i], "\n") {
			if _, ok := matchToC(normalizeDotLeaders(ln)); ok {
				out = append(out, strings.TrimSpace(ln))
				added = true
			}
		}
		if !added && len(out) > 0 {
			break
		}
	}
	return out
}

func matchToC(line string) (OutlineEntry, bool) {
	entry := func(num, title, page string) OutlineEntry {
		p, _ := strconv.Atoi(page)
		return OutlineEntry{
			Number: num,
			Title:  strings.TrimSpace(title),
			Page:   p,
			Level:  strings.Count(num, ".") + 1,
		}
	}
	if m := tocAppendixRe.FindStringSubmatch(line); m != nil {
		return entry(m[1], m[2], m[3]), true
	}
	if m := tocNumRe.FindStringSubmatch(line); m != nil {
		return entry(m[1], m[2], m[3]), true
	}
	if m := tocAlphaRe.FindStringSubmatch(line); m != nil {
		return entry(m[1], m[2], m[3]), true
	}
	if m := tocRomanRe.FindStringSubmatch(line); m != nil {
		num := m[1]
		if m[2] != "" {
			num += "." + m[2]
		}
		return entry(num, m[3], m[4]), true
	}
	return OutlineEntry{}, false
}

func normalizeDotLeaders(s string) string {
	r := strings.NewReplacer("•", " ", "·", " ", "…", " ")
	s = r.Replace(s)
	s = dotLeaderRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// BuildSections turns entries into a tree. Entries deeper than maxDepth are
// dropped. Each section ends the page before the next entry starts, the last
// one at lastPage.
func BuildSections(entries []OutlineEntry, maxDepth, lastPage int) []Section {
	if maxDepth <= 0 {
		maxDepth = 10
	}
	var kept []OutlineEntry
	for _, e := range entries {
		if e.Level >= 1 && e.Level <= maxDepth {
			kept = append(kept, e)
		}
	}

	flat := make([]Section, len(kept))
	for i, e := range kept {
		end := max(lastPage, e.Page)
		if i+1 < len(kept) {
			end = max(kept[i+1].Page-1, e.Page)
		}
		flat[i] = Section{
			Number: e.Number,
			Title:  e.Title,
			Start:  e.Page,
			End:    end,
			Depth:  e.Level,
			Slug:   Slugify(strings.TrimPrefix(e.Number+"-"+e.Title, "-")),
		}
	}
	roots, _ := nest(flat, 0, 0)
	return roots
}

// nest consumes flat from i while entries are deeper than depth.
func nest(flat []Section, i, depth int) ([]Section, int) {
	var out []Section
	for i < len(flat) && flat[i].Depth > depth {
		s := flat[i]
		s.Children, i = nest(flat, i+1, s.Depth)
		out = append(out, s)
	}
	return out, i
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and joins its alphanumeric runs with single dashes.
func Slugify(s string) string {
	s = nonSlug.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}
