// Package pdfdoc exposes the narrow slice of a PDF that the corpus pipeline
// needs: pages, embedded image references, image placement, positioned text
// and page rasterization.
package pdfdoc

import (
	"context"
	"errors"
	"image"
)

var (
	ErrNoColorSpace = errors.New("pdfdoc: image has no color space")
	ErrUndecodable  = errors.New("pdfdoc: image cannot be decoded")
	ErrPageRange    = errors.New("pdfdoc: page index out of range")
)

// Rect is a rectangle in page space, in points, with the origin at the
// top-left corner of the page and y growing downwards.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

func (r Rect) Width() float64  { return r.X1 - r.X0 }
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

func (r Rect) Empty() bool { return r.X0 >= r.X1 || r.Y0 >= r.Y1 }

// Intersect clips r to o. The result is the zero Rect when they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	out := Rect{
		X0: max(r.X0, o.X0),
		Y0: max(r.Y0, o.Y0),
		X1: min(r.X1, o.X1),
		Y1: min(r.Y1, o.Y1),
	}
	if out.Empty() {
		return Rect{}
	}
	return out
}

// Contains reports whether the point lies inside r (edges included).
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X0 && x <= r.X1 && y >= r.Y0 && y <= r.Y1
}

// ImageRef identifies one raster image resource used by a page.
type ImageRef struct {
	Name       string // resource name on the page, e.g. "Im3"
	ObjNr      int
	ColorSpace string // "DeviceRGB", "DeviceGray", "Indexed", "DeviceCMYK", ...
	Width      int
	Height     int
	IsMask     bool
}

// Document is a parsed PDF.
type Document interface {
	NumPages() int
	// Page returns the page at a 0-based index.
	Page(index int) (Page, error)
}

// Page is one page of a Document.
type Page interface {
	Index() int
	Rect() Rect
	Images() ([]ImageRef, error)
	// Decode returns the decoded pixels of ref. Masks and stencils yield
	// ErrNoColorSpace, unsupported encodings ErrUndecodable.
	Decode(ref ImageRef) (image.Image, error)
	// ImageRects lists every rectangle where ref is painted on the page.
	ImageRects(ref ImageRef) []Rect
	// TextIn returns the page text whose glyphs fall inside r, in reading order.
	TextIn(r Rect) string
	Text() string
}

// Renderer rasterizes whole pages.
type Renderer interface {
	Render(ctx context.Context, index, dpi int) (image.Image, error)
}

// PageTexts returns the plain text of every page of doc, in order. Pages
// that fail to load yield an empty string.
func PageTexts(doc Document) []string {
	out := make([]string, doc.NumPages())
	for i := range out {
		p, err := doc.Page(i)
		if err != nil {
			continue
		}
		out[i] = p.Text()
	}
	return out
}
