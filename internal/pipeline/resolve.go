// Package pipeline runs the per-document batch jobs: image extraction and
// upload, page backfill and linking.
package pipeline

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/thywilljoshua/pdf-corpus/internal/extract"
	"github.com/thywilljoshua/pdf-corpus/internal/store"
)

var leadingNumber = regexp.MustCompile(`^\d+[_\s]+`)

// Resolve matches a PDF file name against the known documents. Names like
// "05_phak_ch3.pdf" match titles like "PHAK 05 phak ch3". It tries, in order:
// the stem without its number prefix as a unique title substring; the full
// stem to pick among several such titles; the first word as abbreviation
// with the rest in the title.
func Resolve(docs []store.Document, filename string) (store.Document, bool) {
	stem := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(filename, filepath.Ext(filename))))
	normalized := strings.ReplaceAll(leadingNumber.ReplaceAllString(stem, ""), "_", " ")

	var matches []store.Document
	for _, d := range docs {
		if strings.Contains(strings.ToLower(d.Title), normalized) {
			matches = append(matches, d)
		}
	}
	if len(matches) == 1 {
		return matches[0], true
	}
	if len(matches) > 1 {
		full := strings.ReplaceAll(stem, "_", " ")
		var refined []store.Document
		for _, d := range matches {
			if strings.Contains(strings.ToLower(d.Title), full) {
				refined = append(refined, d)
			}
		}
		if len(refined) == 1 {
			return refined[0], true
		}
	}

	parts := strings.Fields(normalized)
	if len(parts) >= 2 {
		abbr, rest := parts[0], strings.Join(parts[1:], " ")
		for _, d := range docs {
			if strings.ToLower(d.Abbreviation) == abbr && strings.Contains(strings.ToLower(d.Title), rest) {
				return d, true
			}
		}
	}
	return store.Document{}, false
}

// DocSlug is the storage prefix of a document's images.
func DocSlug(abbreviation, filename string) string {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return extract.SanitizePath(abbreviation + "/" + stem)
}
