// Package pdfdoctest provides in-memory pdfdoc implementations for tests.
package pdfdoctest

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/thywilljoshua/pdf-corpus/internal/pdfdoc"
)

// Doc is a synthetic document.
type Doc struct {
	Pages []*Page
}

func (d *Doc) NumPages() int { return len(d.Pages) }

func (d *Doc) Page(index int) (pdfdoc.Page, error) {
	if index < 0 || index >= len(d.Pages) {
		return nil, fmt.Errorf("%w: %d", pdfdoc.ErrPageRange, index)
	}
	p := d.Pages[index]
	p.index = index
	return p, nil
}

// Text is a run of text placed at a point in top-left page space.
type Text struct {
	X, Y float64
	S    string
}

// Image is one image resource on a synthetic page. A nil Pixels makes
// Decode fail with ErrUndecodable.
type Image struct {
	Ref    pdfdoc.ImageRef
	Pixels image.Image
	Rects  []pdfdoc.Rect
}

// Page is a synthetic page. The zero Size means US Letter.
type Page struct {
	Size      pdfdoc.Rect
	Resources []Image
	Texts     []Text

	index int
}

// TextPage returns a page holding s as a single run.
func TextPage(s string) *Page {
	return &Page{Texts: []Text{{X: 72, Y: 72, S: s}}}
}

// TextDoc returns a document with one TextPage per string.
func TextDoc(texts ...string) *Doc {
	d := &Doc{Pages: make([]*Page, len(texts))}
	for i, s := range texts {
		d.Pages[i] = TextPage(s)
	}
	return d
}

func (p *Page) Index() int { return p.index }

func (p *Page) Rect() pdfdoc.Rect {
	if p.Size.Empty() {
		return pdfdoc.Rect{X1: 612, Y1: 792}
	}
	return p.Size
}

func (p *Page) Images() ([]pdfdoc.ImageRef, error) {
	refs := make([]pdfdoc.ImageRef, len(p.Resources))
	for i, img := range p.Resources {
		refs[i] = img.Ref
	}
	return refs, nil
}

func (p *Page) find(ref pdfdoc.ImageRef) *Image {
	for i := range p.Resources {
		if p.Resources[i].Ref.Name == ref.Name {
			return &p.Resources[i]
		}
	}
	return nil
}

func (p *Page) Decode(ref pdfdoc.ImageRef) (image.Image, error) {
	if ref.IsMask || ref.ColorSpace == "" {
		return nil, pdfdoc.ErrNoColorSpace
	}
	img := p.find(ref)
	if img == nil || img.Pixels == nil {
		return nil, pdfdoc.ErrUndecodable
	}
	return img.Pixels, nil
}

func (p *Page) ImageRects(ref pdfdoc.ImageRef) []pdfdoc.Rect {
	if img := p.find(ref); img != nil {
		return img.Rects
	}
	return nil
}

func (p *Page) TextIn(r pdfdoc.Rect) string {
	var parts []string
	for _, t := range p.Texts {
		if r.Contains(t.X, t.Y) {
			parts = append(parts, t.S)
		}
	}
	return strings.Join(parts, "\n")
}

func (p *Page) Text() string { return p.TextIn(p.Rect()) }

// Renderer paints every page as a flat image whose color depends on the
// page index, so distinct pages hash differently.
type Renderer struct {
	Width, Height int
	// Same makes every page render identically.
	Same bool
}

func (r Renderer) Render(ctx context.Context, index, dpi int) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w, h := r.Width, r.Height
	if w == 0 {
		w, h = 170, 220
	}
	shade := uint8(index * 37)
	if r.Same {
		shade = 0x80
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{shade, uint8(x), uint8(y), 0xff})
		}
	}
	return img, nil
}

// Noise returns a w×h RGB image of pseudo-random pixels seeded by seed.
// Noise does not compress, so its PNG size tracks its pixel count.
func Noise(w, h int, seed uint32) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	s := seed | 1
	for i := 0; i < len(img.Pix); i += 4 {
		s ^= s << 13
		s ^= s >> 17
		s ^= s << 5
		img.Pix[i] = uint8(s)
		img.Pix[i+1] = uint8(s >> 8)
		img.Pix[i+2] = uint8(s >> 16)
		img.Pix[i+3] = 0xff
	}
	return img
}
