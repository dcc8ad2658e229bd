// Package extract pulls raster images out of PDF pages, filters and
// deduplicates them, annotates them with figure labels, captions and a
// category, and re-encodes them for storage.
package extract

import "fmt"

// Format is the storage encoding of an extracted image.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatWebP Format = "webp"
)

func (f Format) ContentType() string { return "image/" + string(f) }

// Method records how an image was obtained.
type Method string

const (
	MethodEmbedded   Method = "embedded"
	MethodPageRender Method = "page_render"
)

// Category is the coarse subject of an image.
type Category string

const (
	CategoryGeneral     Category = "general"
	CategoryDiagram     Category = "diagram"
	CategoryChart       Category = "chart"
	CategoryTable       Category = "table"
	CategoryInstrument  Category = "instrument"
	CategoryWeather     Category = "weather"
	CategoryPerformance Category = "performance"
	CategorySectional   Category = "sectional"
	CategoryAirport     Category = "airport"
)

// BBox is a bounding box normalized to the page: x0, y0, x1, y1 in [0,1].
type BBox [4]float64

// ExtractedImage is one image ready to be stored.
type ExtractedImage struct {
	Page        int // 1-based
	Data        []byte
	Width       int
	Height      int
	Format      Format
	Method      Method
	ContentHash string
	ByteSize    int
	BBox        *BBox
	FigureLabel string
	Caption     string
	Category    Category
	Quality     float64
	Relevant    bool
}

// Stats tallies one extraction run.
type Stats struct {
	TotalPages          int `json:"pages_scanned"`
	TotalExtracted      int `json:"images_extracted"`
	FilteredTooSmall    int `json:"filtered_too_small"`
	FilteredAspectRatio int `json:"filtered_aspect_ratio"`
	FilteredFileSize    int `json:"filtered_file_size"`
	Deduplicated        int `json:"deduplicated"`
	NoColorSpace        int `json:"no_color_space"`
	Undecodable         int `json:"undecodable"`
	ConversionFailed    int `json:"conversion_failed"`
}

// Add folds o into s.
func (s *Stats) Add(o Stats) {
	s.TotalPages += o.TotalPages
	s.TotalExtracted += o.TotalExtracted
	s.FilteredTooSmall += o.FilteredTooSmall
	s.FilteredAspectRatio += o.FilteredAspectRatio
	s.FilteredFileSize += o.FilteredFileSize
	s.Deduplicated += o.Deduplicated
	s.NoColorSpace += o.NoColorSpace
	s.Undecodable += o.Undecodable
	s.ConversionFailed += o.ConversionFailed
}

func (s Stats) String() string {
	return fmt.Sprintf(
		"Pages scanned: %d\nImages extracted: %d\nFiltered (too small): %d\n"+
			"Filtered (aspect ratio): %d\nFiltered (file size): %d\nDeduplicated: %d\n"+
			"No color space: %d\nUndecodable: %d\nColor conversion failed: %d",
		s.TotalPages, s.TotalExtracted, s.FilteredTooSmall,
		s.FilteredAspectRatio, s.FilteredFileSize, s.Deduplicated,
		s.NoColorSpace, s.Undecodable, s.ConversionFailed)
}
