package extract

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

var errEmptyImage = errors.New("extract: image has no pixels")

// canonicalize reduces a decoded image to one of three pixel layouts:
// 8-bit gray, palette with opaque entries, or opaque RGB (stored as RGBA
// with alpha forced to 0xff). Gray and palette survive only when the source
// color space already was DeviceGray or Indexed.
func canonicalize(img image.Image, colorSpace string) (image.Image, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, errEmptyImage
	}
	switch src := img.(type) {
	case *image.Gray:
		if colorSpace == "DeviceGray" {
			return rebase(src, b), nil
		}
	case *image.Paletted:
		if colorSpace == "Indexed" {
			pal := make(color.Palette, len(src.Palette))
			for i, c := range src.Palette {
				r, g, bl, _ := c.RGBA()
				pal[i] = color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(bl >> 8), 0xff}
			}
			dst := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), pal)
			for y := 0; y < b.Dy(); y++ {
				copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()], src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):])
			}
			return dst, nil
		}
	}
	return opaqueRGB(img), nil
}

func rebase(src *image.Gray, b image.Rectangle) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()], src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):])
	}
	return dst
}

// opaqueRGB converts any image to RGBA, discarding alpha rather than
// compositing it.
func opaqueRGB(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := (y - b.Min.Y) * dst.Stride
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			dst.Pix[i+0] = c.R
			dst.Pix[i+1] = c.G
			dst.Pix[i+2] = c.B
			dst.Pix[i+3] = 0xff
			i += 4
		}
	}
	return dst
}

// pixelBytes returns the tightly packed samples of a canonical image:
// one byte per pixel for gray and palette, three for RGB.
func pixelBytes(img image.Image) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	switch m := img.(type) {
	case *image.Gray:
		out := make([]byte, 0, w*h)
		for y := 0; y < h; y++ {
			out = append(out, m.Pix[y*m.Stride:y*m.Stride+w]...)
		}
		return out
	case *image.Paletted:
		out := make([]byte, 0, len(m.Palette)*3+w*h)
		for _, c := range m.Palette {
			rgba := c.(color.RGBA)
			out = append(out, rgba.R, rgba.G, rgba.B)
		}
		for y := 0; y < h; y++ {
			out = append(out, m.Pix[y*m.Stride:y*m.Stride+w]...)
		}
		return out
	case *image.RGBA:
		out := make([]byte, 0, w*h*3)
		for y := 0; y < h; y++ {
			row := m.Pix[y*m.Stride : y*m.Stride+w*4]
			for x := 0; x < len(row); x += 4 {
				out = append(out, row[x], row[x+1], row[x+2])
			}
		}
		return out
	}
	return pixelBytes(opaqueRGB(img))
}

func layout(img image.Image) string {
	switch img.(type) {
	case *image.Gray:
		return "gray"
	case *image.Paletted:
		return "indexed"
	}
	return "rgb"
}

// ContentHash is the lowercase hex SHA-256 of data.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// canonicalHash identifies the decoded pixels of a canonical image,
// independent of how the PDF or the optimizer encoded them.
func canonicalHash(img image.Image) string {
	b := img.Bounds()
	h := sha256.New()
	fmt.Fprintf(h, "%s %d %d\n", layout(img), b.Dx(), b.Dy())
	h.Write(pixelBytes(img))
	return hex.EncodeToString(h.Sum(nil))
}

// canonicalPNG is the lossless reference encoding; its length is the byte
// size the quality filter sees.
func canonicalPNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
