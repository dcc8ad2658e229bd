package extract

import (
	"context"
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/thywilljoshua/pdf-corpus/internal/pdfdoc"
)

// Extractor turns the pages of one document into ExtractedImages. It keeps
// no state between documents; the caller owns the Deduper and Stats.
type Extractor struct {
	Filter   Filter
	Renderer pdfdoc.Renderer
	DPI      int
	Log      *zap.Logger

	optimize func(image.Image, int) ([]byte, Format, error)
}

func New(log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{Filter: DefaultFilter(), DPI: pdfdoc.DefaultDPI, Log: log, optimize: Optimize}
}

// Embedded walks every image on every page of doc in document order and
// hands each accepted, unseen image to emit. An error from emit stops the
// walk; everything else is counted and skipped.
func (e *Extractor) Embedded(doc pdfdoc.Document, seen *Deduper, stats *Stats, emit func(ExtractedImage) error) error {
	for i := 0; i < doc.NumPages(); i++ {
		stats.TotalPages++
		page, err := doc.Page(i)
		if err != nil {
			e.Log.Warn("load page", zap.Int("page", i+1), zap.Error(err))
			continue
		}
		refs, err := page.Images()
		if err != nil {
			e.Log.Warn("list page images", zap.Int("page", i+1), zap.Error(err))
			continue
		}
		for _, ref := range refs {
			img, ok := e.embedded(page, ref, seen, stats)
			if !ok {
				continue
			}
			if err := emit(img); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Extractor) embedded(page pdfdoc.Page, ref pdfdoc.ImageRef, seen *Deduper, stats *Stats) (ExtractedImage, bool) {
	log := e.Log.With(zap.Int("page", page.Index()+1), zap.String("image", ref.Name))

	decoded, err := page.Decode(ref)
	switch {
	case errors.Is(err, pdfdoc.ErrNoColorSpace):
		stats.NoColorSpace++
		log.Debug("skip image without color space", zap.Bool("mask", ref.IsMask))
		return ExtractedImage{}, false
	case err != nil:
		stats.Undecodable++
		log.Debug("decode image", zap.Error(err))
		return ExtractedImage{}, false
	}
	canon, err := canonicalize(decoded, ref.ColorSpace)
	if err != nil {
		stats.ConversionFailed++
		log.Debug("convert image", zap.String("colorspace", ref.ColorSpace), zap.Error(err))
		return ExtractedImage{}, false
	}
	raw, err := canonicalPNG(canon)
	if err != nil {
		stats.ConversionFailed++
		log.Debug("encode image", zap.Error(err))
		return ExtractedImage{}, false
	}

	b := canon.Bounds()
	width, height := b.Dx(), b.Dy()
	if !e.Filter.Accepts(width, height, len(raw), stats) {
		return ExtractedImage{}, false
	}
	hash := canonicalHash(canon)
	if seen.Seen(hash) {
		return ExtractedImage{}, false
	}
	data, format, err := e.encode(canon, len(raw))
	if err != nil {
		stats.ConversionFailed++
		log.Warn("optimize image", zap.Error(err))
		return ExtractedImage{}, false
	}
	stats.TotalExtracted++

	out := ExtractedImage{
		Page:        page.Index() + 1,
		Width:       width,
		Height:      height,
		Method:      MethodEmbedded,
		ContentHash: hash,
		Data:        data,
		Format:      format,
		ByteSize:    len(data),
		Relevant:    true,
	}
	if rects := page.ImageRects(ref); len(rects) > 0 {
		r := rects[0]
		bbox := NormalizeBBox(r, page.Rect())
		out.BBox = &bbox
		out.FigureLabel = FigureLabel(page, r)
		out.Caption = Caption(page, r)
	}
	out.Category = Classify(out.FigureLabel, out.Caption)
	out.Quality = QualityScore(width, height, len(data))
	return out, true
}

func (e *Extractor) encode(img image.Image, rawSize int) ([]byte, Format, error) {
	if e.optimize != nil {
		return e.optimize(img, rawSize)
	}
	return Optimize(img, rawSize)
}

// RenderPages rasterizes whole pages (0-based indices). Out-of-range pages
// are ignored. Renders are deduplicated but not size filtered.
func (e *Extractor) RenderPages(ctx context.Context, doc pdfdoc.Document, pages []int, seen *Deduper, stats *Stats, emit func(ExtractedImage) error) error {
	if e.Renderer == nil {
		return errors.New("extract: no page renderer configured")
	}
	for _, idx := range pages {
		if idx < 0 || idx >= doc.NumPages() {
			continue
		}
		img, err := e.Renderer.Render(ctx, idx, e.DPI)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			e.Log.Warn("render page", zap.Int("page", idx+1), zap.Error(err))
			continue
		}
		out, err := e.rendered(idx, img, seen, stats)
		if err != nil {
			e.Log.Warn("encode rendered page", zap.Int("page", idx+1), zap.Error(err))
			continue
		}
		if out == nil {
			continue
		}
		if err := emit(*out); err != nil {
			return err
		}
	}
	return nil
}

func (e *Extractor) rendered(idx int, img image.Image, seen *Deduper, stats *Stats) (*ExtractedImage, error) {
	canon := opaqueRGB(img)
	raw, err := canonicalPNG(canon)
	if err != nil {
		return nil, err
	}
	hash := canonicalHash(canon)
	if seen.Seen(hash) {
		return nil, nil
	}
	data, format, err := e.encode(canon, len(raw))
	if err != nil {
		stats.ConversionFailed++
		return nil, fmt.Errorf("optimize: %w", err)
	}
	stats.TotalExtracted++
	b := canon.Bounds()
	return &ExtractedImage{
		Page:        idx + 1,
		Data:        data,
		Width:       b.Dx(),
		Height:      b.Dy(),
		Format:      format,
		Method:      MethodPageRender,
		ContentHash: hash,
		ByteSize:    len(data),
		Category:    CategoryGeneral,
		Quality:     QualityScore(b.Dx(), b.Dy(), len(data)),
		Relevant:    true,
	}, nil
}
