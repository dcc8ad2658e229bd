package pdfdoc

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	_ "golang.org/x/image/tiff"
	rpdf "rsc.io/pdf"
)

// File is a Document backed by a PDF on disk. Text and geometry come from
// rsc.io/pdf, image streams from pdfcpu.
type File struct {
	Path string

	textFile *os.File
	imgFile  *os.File
	text     *rpdf.Reader
	img      *model.Context
}

// Open parses the PDF at path.
func Open(path string) (doc *File, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("open %s: pdf parse panic: %v", path, r)
		}
	}()

	tf, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := tf.Stat()
	if err != nil {
		tf.Close()
		return nil, err
	}
	text, err := rpdf.NewReader(tf, fi.Size())
	if err != nil {
		tf.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	imf, err := os.Open(path)
	if err != nil {
		tf.Close()
		return nil, err
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadValidateAndOptimize(imf, conf)
	if err != nil {
		tf.Close()
		imf.Close()
		return nil, fmt.Errorf("open %s: pdfcpu read: %w", path, err)
	}

	return &File{Path: path, textFile: tf, imgFile: imf, text: text, img: ctx}, nil
}

func (f *File) Close() error {
	err1 := f.textFile.Close()
	err2 := f.imgFile.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

func (f *File) NumPages() int { return f.text.NumPage() }

func (f *File) Page(index int) (Page, error) {
	if index < 0 || index >= f.NumPages() {
		return nil, fmt.Errorf("%w: %d", ErrPageRange, index)
	}
	p := f.text.Page(index + 1)
	if p.V.IsNull() {
		return nil, fmt.Errorf("%w: %d", ErrPageRange, index)
	}
	box := mediaBox(p)
	return &filePage{
		doc:   f,
		index: index,
		v:     p,
		box:   box,
		rect:  Rect{X1: box.Width(), Y1: box.Height()},
	}, nil
}

type filePage struct {
	doc   *File
	index int
	v     rpdf.Page
	box   Rect // MediaBox in PDF user space
	rect  Rect

	glyphs     []glyph
	glyphsRead bool
	placements map[string][]Rect
	broken     map[int]error
}

func (p *filePage) Index() int { return p.index }
func (p *filePage) Rect() Rect { return p.rect }

// Images lists the image XObjects of the page from their dictionaries only;
// no stream is decoded here. An image whose dictionary cannot be read is
// still listed so Decode can report it.
func (p *filePage) Images() ([]ImageRef, error) {
	ctx := p.doc.img
	if ctx.Optimize == nil {
		return nil, fmt.Errorf("page %d images: document not optimized", p.index+1)
	}
	objNrs := pdfcpu.ImageObjNrs(ctx, p.index+1)
	sort.Ints(objNrs)

	p.broken = make(map[int]error)
	refs := make([]ImageRef, 0, len(objNrs))
	for _, nr := range objNrs {
		obj := ctx.Optimize.ImageObjects[nr]
		if obj == nil || obj.ImageDict == nil {
			continue
		}
		ref := ImageRef{Name: obj.ResourceNames[p.index], ObjNr: nr}
		stub, err := imageStub(ctx, obj, ref.Name, nr)
		if err != nil {
			p.broken[nr] = err
			refs = append(refs, ref)
			continue
		}
		ref.ColorSpace = stub.Cs
		ref.Width = stub.Width
		ref.Height = stub.Height
		ref.IsMask = stub.IsImgMask
		refs = append(refs, ref)
	}
	return refs, nil
}

func imageStub(ctx *model.Context, obj *model.ImageObject, name string, objNr int) (stub *model.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			stub, err = nil, fmt.Errorf("image object %d: %v", objNr, r)
		}
	}()
	stub, err = pdfcpu.ExtractImage(ctx, obj.ImageDict, false, name, objNr, true)
	if err == nil && stub == nil {
		err = fmt.Errorf("image object %d: empty dictionary", objNr)
	}
	return stub, err
}

// Decode decodes the stream of one image. Each image is decoded on its own,
// so a broken stream never hides the other images of the page.
func (p *filePage) Decode(ref ImageRef) (img image.Image, err error) {
	if err := p.broken[ref.ObjNr]; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	if ref.IsMask || ref.ColorSpace == "" {
		return nil, ErrNoColorSpace
	}
	ctx := p.doc.img
	obj := ctx.Optimize.ImageObjects[ref.ObjNr]
	if obj == nil || obj.ImageDict == nil {
		return nil, fmt.Errorf("%w: object %d not found", ErrUndecodable, ref.ObjNr)
	}
	sd := obj.ImageDict
	defer func() {
		// pdfcpu caches the decoded stream on the dictionary.
		sd.Content = nil
		if r := recover(); r != nil {
			img = nil
			err = fmt.Errorf("%w: %v", ErrUndecodable, r)
		}
	}()

	src, err := pdfcpu.ExtractImage(ctx, sd, false, ref.Name, ref.ObjNr, false)
	if err != nil {
		return nil, fmt.Errorf("%w: object %d: %v", ErrUndecodable, ref.ObjNr, err)
	}
	if src == nil || src.Reader == nil {
		return nil, fmt.Errorf("%w: object %d: unsupported filter or color space %s", ErrUndecodable, ref.ObjNr, ref.ColorSpace)
	}
	img, _, err = image.Decode(src.Reader)
	if err != nil {
		// jpx has no Go decoder and ends up here.
		return nil, fmt.Errorf("%w: %s: %v", ErrUndecodable, src.FileType, err)
	}
	return img, nil
}

func (p *filePage) ImageRects(ref ImageRef) []Rect {
	if p.placements == nil {
		p.placements = imagePlacements(p.v, p.box)
	}
	return p.placements[ref.Name]
}

func (p *filePage) TextIn(r Rect) string {
	if !p.glyphsRead {
		p.glyphs = pageGlyphs(p.v, p.box)
		p.glyphsRead = true
	}
	return assembleText(p.glyphs, r)
}

func (p *filePage) Text() string { return p.TextIn(p.rect) }

// mediaBox resolves the (possibly inherited) MediaBox of a page.
func mediaBox(p rpdf.Page) Rect {
	for v := p.V; !v.IsNull(); v = v.Key("Parent") {
		mb := v.Key("MediaBox")
		if mb.Kind() != rpdf.Array || mb.Len() != 4 {
			continue
		}
		x0, y0 := mb.Index(0).Float64(), mb.Index(1).Float64()
		x1, y1 := mb.Index(2).Float64(), mb.Index(3).Float64()
		return Rect{X0: min(x0, x1), Y0: min(y0, y1), X1: max(x0, x1), Y1: max(y0, y1)}
	}
	// US Letter.
	return Rect{X1: 612, Y1: 792}
}
