package extract

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/thywilljoshua/pdf-corpus/internal/pdfdoc"
	"github.com/thywilljoshua/pdf-corpus/internal/pdfdoc/pdfdoctest"
)

func testDoc() *pdfdoctest.Doc {
	rgb := pdfdoctest.Noise(200, 150, 1)
	return &pdfdoctest.Doc{Pages: []*pdfdoctest.Page{
		{
			Resources: []pdfdoctest.Image{
				{
					Ref:    pdfdoc.ImageRef{Name: "Im1", ObjNr: 10, ColorSpace: "DeviceRGB", Width: 200, Height: 150},
					Pixels: rgb,
					Rects:  []pdfdoc.Rect{{X0: 100, Y0: 100, X1: 300, Y1: 250}},
				},
				// Same pixels under another resource name.
				{
					Ref:    pdfdoc.ImageRef{Name: "Im2", ObjNr: 11, ColorSpace: "DeviceRGB", Width: 200, Height: 150},
					Pixels: rgb,
				},
				{
					Ref: pdfdoc.ImageRef{Name: "Im3", ObjNr: 12, IsMask: true, Width: 200, Height: 150},
				},
				{
					Ref: pdfdoc.ImageRef{Name: "Im4", ObjNr: 13, ColorSpace: "JPXDecode", Width: 200, Height: 150},
				},
				{
					Ref:    pdfdoc.ImageRef{Name: "Im5", ObjNr: 14, ColorSpace: "DeviceRGB", Width: 50, Height: 50},
					Pixels: pdfdoctest.Noise(50, 50, 2),
				},
			},
			Texts: []pdfdoctest.Text{
				{X: 150, Y: 60, S: "Figure 3-1"},
				{X: 150, Y: 270, S: "Surface weather front and cloud analysis"},
			},
		},
		{
			Resources: []pdfdoctest.Image{
				{
					Ref:    pdfdoc.ImageRef{Name: "Im1", ObjNr: 20, ColorSpace: "DeviceCMYK", Width: 300, Height: 120},
					Pixels: pdfdoctest.Noise(300, 120, 3),
				},
			},
		},
	}}
}

func TestEmbedded(t *testing.T) {
	e := New(nil)
	var stats Stats
	seen := NewDeduper(&stats)

	var got []ExtractedImage
	err := e.Embedded(testDoc(), seen, &stats, func(img ExtractedImage) error {
		got = append(got, img)
		return nil
	})
	if err != nil {
		t.Fatalf("Embedded: %v", err)
	}

	wantStats := Stats{
		TotalPages:       2,
		TotalExtracted:   2,
		FilteredTooSmall: 1,
		Deduplicated:     1,
		NoColorSpace:     1,
		Undecodable:      1,
	}
	if diff := cmp.Diff(wantStats, stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
	if len(got) != 2 {
		t.Fatalf("extracted %d images, want 2", len(got))
	}

	first := got[0]
	if first.Page != 1 || first.Method != MethodEmbedded {
		t.Errorf("first image page/method = %d/%s, want 1/embedded", first.Page, first.Method)
	}
	if first.FigureLabel != "Figure 3-1" {
		t.Errorf("FigureLabel = %q, want %q", first.FigureLabel, "Figure 3-1")
	}
	if first.Caption != "Surface weather front and cloud analysis" {
		t.Errorf("Caption = %q", first.Caption)
	}
	if first.Category != CategoryWeather {
		t.Errorf("Category = %q, want weather", first.Category)
	}
	if first.BBox == nil || *first.BBox != (BBox{0.1634, 0.1263, 0.4902, 0.3157}) {
		t.Errorf("BBox = %v", first.BBox)
	}
	if first.Format != FormatJPEG {
		t.Errorf("Format = %s, want jpeg", first.Format)
	}
	if first.ByteSize != len(first.Data) || first.ByteSize == 0 {
		t.Errorf("ByteSize = %d, len(Data) = %d", first.ByteSize, len(first.Data))
	}
	if first.Quality < 0 || first.Quality > 1 {
		t.Errorf("Quality = %v, outside [0,1]", first.Quality)
	}
	if !first.Relevant {
		t.Errorf("Relevant = false, want true")
	}

	second := got[1]
	if second.Page != 2 || second.BBox != nil || second.FigureLabel != "" {
		t.Errorf("second image = page %d bbox %v label %q, want page 2 without bbox or label",
			second.Page, second.BBox, second.FigureLabel)
	}
	if second.Category != CategoryGeneral {
		t.Errorf("second Category = %q, want general", second.Category)
	}
	if first.ContentHash == second.ContentHash {
		t.Errorf("distinct images share hash %s", first.ContentHash)
	}
}

func TestEmbeddedDedupAcrossDocuments(t *testing.T) {
	e := New(nil)
	var stats Stats
	seen := NewDeduper(&stats)
	count := 0
	emit := func(ExtractedImage) error { count++; return nil }

	if err := e.Embedded(testDoc(), seen, &stats, emit); err != nil {
		t.Fatal(err)
	}
	if err := e.Embedded(testDoc(), seen, &stats, emit); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("emitted %d images over two identical documents, want 2", count)
	}
	if stats.Deduplicated != 4 {
		t.Errorf("Deduplicated = %d, want 4", stats.Deduplicated)
	}
}

func TestEmbeddedOptimizeFailureSkipsImage(t *testing.T) {
	e := New(nil)
	e.optimize = func(image.Image, int) ([]byte, Format, error) {
		return nil, "", errors.New("encoder unavailable")
	}
	var stats Stats
	count := 0
	err := e.Embedded(testDoc(), NewDeduper(&stats), &stats, func(ExtractedImage) error {
		count++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("emitted %d images, want 0", count)
	}
	if stats.TotalExtracted != 0 || stats.ConversionFailed != 2 {
		t.Errorf("TotalExtracted/ConversionFailed = %d/%d, want 0/2", stats.TotalExtracted, stats.ConversionFailed)
	}
}

func TestCanonicalHashIgnoresEncoding(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(0, 0, 4, 3))
	nrgba := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			c := color.RGBA{uint8(x * 40), uint8(y * 70), 9, 0xff}
			rgba.Set(x, y, c)
			nrgba.Set(x, y, c)
		}
	}
	a, err := canonicalize(rgba, "DeviceRGB")
	if err != nil {
		t.Fatal(err)
	}
	b, err := canonicalize(nrgba, "ICCBased")
	if err != nil {
		t.Fatal(err)
	}
	if ha, hb := canonicalHash(a), canonicalHash(b); ha != hb {
		t.Errorf("canonicalHash differs for identical pixels: %s vs %s", ha, hb)
	}
	if h := canonicalHash(a); !hexHash.MatchString(h) {
		t.Errorf("canonicalHash = %q, want 64 lowercase hex chars", h)
	}
}

func TestCanonicalizeKeepsGrayAndPalette(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	if out, _ := canonicalize(gray, "DeviceGray"); layout(out) != "gray" {
		t.Errorf("DeviceGray canonical layout = %s, want gray", layout(out))
	}
	if out, _ := canonicalize(gray, "CalGray"); layout(out) != "rgb" {
		t.Errorf("CalGray canonical layout = %s, want rgb", layout(out))
	}
	pal := image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Black, color.NRGBA{255, 0, 0, 0}})
	out, _ := canonicalize(pal, "Indexed")
	p, ok := out.(*image.Paletted)
	if !ok {
		t.Fatalf("Indexed canonical image is %T, want *image.Paletted", out)
	}
	if _, _, _, a := p.Palette[1].RGBA(); a != 0xffff {
		t.Errorf("palette alpha = %#x, want opaque", a)
	}
	if _, err := canonicalize(image.NewRGBA(image.Rectangle{}), "DeviceRGB"); err == nil {
		t.Errorf("canonicalize(empty) = nil error, want error")
	}
}

func TestChooseFormat(t *testing.T) {
	opaque := pdfdoctest.Noise(10, 10, 4)
	transparent := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	pal := image.NewPaletted(image.Rect(0, 0, 10, 10), color.Palette{color.Black})
	tests := []struct {
		name string
		img  image.Image
		raw  int
		want Format
	}{
		{"large", opaque, 500*1024 + 1, FormatWebP},
		{"at webp threshold", opaque, 500 * 1024, FormatJPEG},
		{"palette", pal, 1000, FormatPNG},
		{"transparent", transparent, 1000, FormatPNG},
		{"opaque", opaque, 1000, FormatJPEG},
	}
	for _, tt := range tests {
		if got := ChooseFormat(tt.img, tt.raw); got != tt.want {
			t.Errorf("%s: ChooseFormat = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestRenderPages(t *testing.T) {
	e := New(nil)
	e.Renderer = pdfdoctest.Renderer{Same: true}
	doc := &pdfdoctest.Doc{Pages: []*pdfdoctest.Page{{}, {}}}
	var stats Stats
	seen := NewDeduper(&stats)

	var got []ExtractedImage
	err := e.RenderPages(context.Background(), doc, []int{0, 1, 5, -1}, seen, &stats, func(img ExtractedImage) error {
		got = append(got, img)
		return nil
	})
	if err != nil {
		t.Fatalf("RenderPages: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("rendered %d images, want 1", len(got))
	}
	img := got[0]
	if img.Method != MethodPageRender || img.Page != 1 || img.BBox != nil || img.FigureLabel != "" {
		t.Errorf("render = %+v", img)
	}
	if img.Width != 170 || img.Height != 220 {
		t.Errorf("render size = %dx%d, want 170x220", img.Width, img.Height)
	}
	if stats.Deduplicated != 1 || stats.TotalExtracted != 1 {
		t.Errorf("stats = %+v, want 1 extracted and 1 deduplicated", stats)
	}
}

func TestStoragePath(t *testing.T) {
	tests := []struct {
		slug string
		img  ExtractedImage
		want string
	}{
		{"phak/pilots-handbook", ExtractedImage{FigureLabel: "Figure 3-1", Format: FormatJPEG}, "phak/pilots-handbook/figure-3-1.jpeg"},
		{"phak/pilots-handbook", ExtractedImage{Page: 7, Format: FormatPNG}, "phak/pilots-handbook/page-0007.png"},
		{"AIM/Chapter 4", ExtractedImage{FigureLabel: "Fig. 4–2", Format: FormatWebP}, "aim/chapter-4/fig.-4-2.webp"},
	}
	for _, tt := range tests {
		if got := StoragePath(tt.slug, tt.img); got != tt.want {
			t.Errorf("StoragePath(%q, %q) = %q, want %q", tt.slug, tt.img.FigureLabel, got, tt.want)
		}
	}
}

func TestSanitizePath(t *testing.T) {
	tests := map[string]string{
		"PHAK/Ch03/Figure_3-1.png":   "phak/ch03/figure-3-1.png",
		"Weather Charts (2024).webp": "weather-charts--2024-.webp",
		"already/safe-path.png":      "already/safe-path.png",
	}
	for in, want := range tests {
		got := SanitizePath(in)
		if got != want {
			t.Errorf("SanitizePath(%q) = %q, want %q", in, got, want)
		}
		if again := SanitizePath(got); again != got {
			t.Errorf("SanitizePath not idempotent: %q -> %q", got, again)
		}
	}
}
