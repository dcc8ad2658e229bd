package extract

import (
	"fmt"
	"regexp"
	"strings"
)

var unsafePath = regexp.MustCompile(`[^a-z0-9/\-.]`)

// SanitizePath lowercases p and replaces every character outside
// [a-z0-9/.-] with a hyphen.
func SanitizePath(p string) string {
	return unsafePath.ReplaceAllString(strings.ToLower(p), "-")
}

// StoragePath is the object key of img inside the document folder docSlug:
// the figure label when there is one, the zero-padded page number otherwise.
func StoragePath(docSlug string, img ExtractedImage) string {
	var name string
	if img.FigureLabel != "" {
		name = SanitizePath(img.FigureLabel) + "." + string(img.Format)
	} else {
		name = fmt.Sprintf("page-%04d.%s", img.Page, img.Format)
	}
	return SanitizePath(docSlug + "/" + name)
}
