package extract

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/chai2010/webp"
)

const (
	webpThreshold = 500 * 1024
	lossyQuality  = 85
)

// ChooseFormat decides the storage encoding: large images go to WebP,
// palette images stay lossless PNG, everything else becomes JPEG.
func ChooseFormat(img image.Image, rawSize int) Format {
	if rawSize > webpThreshold {
		return FormatWebP
	}
	if _, ok := img.(*image.Paletted); ok {
		return FormatPNG
	}
	if o, ok := img.(interface{ Opaque() bool }); ok && !o.Opaque() {
		return FormatPNG
	}
	return FormatJPEG
}

// Optimize re-encodes img for storage. rawSize is the canonical PNG length.
func Optimize(img image.Image, rawSize int) ([]byte, Format, error) {
	f := ChooseFormat(img, rawSize)
	var buf bytes.Buffer
	var err error
	switch f {
	case FormatWebP:
		err = webp.Encode(&buf, img, &webp.Options{Quality: lossyQuality})
	case FormatPNG:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(&buf, img)
	case FormatJPEG:
		if _, ok := img.(*image.RGBA); !ok {
			img = opaqueRGB(img)
		}
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: lossyQuality})
	}
	if err != nil {
		return nil, "", fmt.Errorf("encode %s: %w", f, err)
	}
	return buf.Bytes(), f, nil
}
