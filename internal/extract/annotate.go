package extract

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/thywilljoshua/pdf-corpus/internal/pdfdoc"
)

// FigurePatterns match figure labels in priority order.
var FigurePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Figure\s+(\d+[-–]\d+)`),
	regexp.MustCompile(`(?i)Fig\.\s*(\d+[-–]\d+)`),
	regexp.MustCompile(`(?i)Table\s+(\d+[-–]\d+)`),
	regexp.MustCompile(`(?i)Chart\s+(\d+[-–]\d+)`),
	regexp.MustCompile(`(?i)Exhibit\s+(\d+)`),
}

type categoryKeywords struct {
	category Category
	keywords []string
}

// categoryTable is ordered; earlier categories win ties.
var categoryTable = []categoryKeywords{
	{CategoryDiagram, []string{"system", "schematic", "layout", "components", "flow", "cross-section"}},
	{CategoryChart, []string{"chart", "graph", "plot", "curve", "performance"}},
	{CategoryTable, []string{"table", "summary", "checklist", "reference", "minimum"}},
	{CategoryInstrument, []string{"instrument", "gauge", "indicator", "display", "altimeter", "airspeed"}},
	{CategoryWeather, []string{"weather", "metar", "taf", "front", "cloud", "prog", "pressure", "wind"}},
	{CategoryPerformance, []string{"takeoff", "landing", "distance", "density", "altitude", "weight", "balance"}},
	{CategorySectional, []string{"sectional", "airspace", "symbol", "legend", "navigation", "vfr"}},
	{CategoryAirport, []string{"airport", "runway", "taxiway", "sign", "marking", "light", "beacon"}},
}

const (
	labelMarginX   = 10.0
	labelMarginY   = 50.0
	captionMarginX = 20.0
	captionDepth   = 80.0
	captionMinLen  = 5
	captionMaxLen  = 200
)

// FigureLabel looks for a figure label in the text around bbox. The search
// window extends the box 10pt sideways and 50pt up and down.
func FigureLabel(page pdfdoc.Page, bbox pdfdoc.Rect) string {
	window := pdfdoc.Rect{
		X0: bbox.X0 - labelMarginX,
		Y0: bbox.Y0 - labelMarginY,
		X1: bbox.X1 + labelMarginX,
		Y1: bbox.Y1 + labelMarginY,
	}.Intersect(page.Rect())
	if window.Empty() {
		return ""
	}
	return MatchLabel(page.TextIn(window))
}

// MatchLabel returns the first match of the highest-priority pattern.
func MatchLabel(text string) string {
	for _, re := range FigurePatterns {
		if m := re.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

// Caption reads the text directly below bbox.
func Caption(page pdfdoc.Page, bbox pdfdoc.Rect) string {
	pr := page.Rect()
	window := pdfdoc.Rect{
		X0: bbox.X0 - captionMarginX,
		Y0: bbox.Y1,
		X1: bbox.X1 + captionMarginX,
		Y1: min(bbox.Y1+captionDepth, pr.Height()),
	}.Intersect(pr)
	if window.Empty() {
		return ""
	}
	return TrimCaption(page.TextIn(window))
}

// TrimCaption cleans raw caption text: too-short text is dropped, text is
// cut before a later figure label, and the result is capped at 200
// characters.
func TrimCaption(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < captionMinLen {
		return ""
	}
	for _, re := range FigurePatterns {
		loc := re.FindStringIndex(text)
		if loc != nil && loc[0] > 0 {
			text = strings.TrimSpace(text[:loc[0]])
			break
		}
	}
	if utf8.RuneCountInString(text) > captionMaxLen {
		text = string([]rune(text)[:captionMaxLen])
	}
	return text
}

// Classify picks the category with the most keyword hits in the label and
// caption.
func Classify(label, caption string) Category {
	var parts []string
	for _, s := range []string{label, caption} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	text := strings.ToLower(strings.Join(parts, " "))
	if text == "" {
		return CategoryGeneral
	}
	best, bestCount := CategoryGeneral, 0
	for _, ck := range categoryTable {
		n := 0
		for _, kw := range ck.keywords {
			if strings.Contains(text, kw) {
				n++
			}
		}
		if n > bestCount {
			best, bestCount = ck.category, n
		}
	}
	return best
}

// QualityScore favors resolution and penalizes heavy compression. The
// result is always in [0,1].
func QualityScore(width, height, byteSize int) float64 {
	pixels := float64(width) * float64(height)
	if byteSize <= 0 || pixels <= 0 {
		return 0
	}
	raw := (pixels / 1e6) * (1 - math.Min(float64(byteSize)/(pixels*3), 1))
	return math.Min(math.Max(raw, 0), 1)
}

// NormalizeBBox expresses r as fractions of the page size, rounded to four
// decimals.
func NormalizeBBox(r, page pdfdoc.Rect) BBox {
	pw, ph := page.Width(), page.Height()
	if pw == 0 || ph == 0 {
		return BBox{}
	}
	round := func(v float64) float64 { return math.Round(v*1e4) / 1e4 }
	return BBox{
		round((r.X0 - page.X0) / pw),
		round((r.Y0 - page.Y0) / ph),
		round((r.X1 - page.X0) / pw),
		round((r.Y1 - page.Y0) / ph),
	}
}
