package pdfdoc

import (
	"sort"
	"strings"

	rpdf "rsc.io/pdf"
)

// glyph is one run of text from the content stream, already moved into
// top-left page space. Y is the baseline.
type glyph struct {
	X, Y, W  float64
	FontSize float64
	S        string
}

func (g glyph) center() (float64, float64) {
	return g.X + g.W/2, g.Y - g.FontSize*0.35
}

// pageGlyphs reads the positioned text of p. Malformed content streams make
// rsc.io/pdf panic; such pages have no text.
func pageGlyphs(p rpdf.Page, box Rect) (out []glyph) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
		}
	}()
	for _, t := range p.Content().Text {
		if t.S == "" {
			continue
		}
		out = append(out, glyph{
			X:        t.X - box.X0,
			Y:        box.Y1 - t.Y,
			W:        t.W,
			FontSize: t.FontSize,
			S:        t.S,
		})
	}
	return out
}

type textLine struct {
	y      float64
	size   float64
	glyphs []glyph
}

// assembleText rebuilds reading-order text from the glyphs whose centers lie
// in r. Glyphs sharing a baseline (within half a font size) form a line.
func assembleText(glyphs []glyph, r Rect) string {
	var in []glyph
	for _, g := range glyphs {
		if r.Contains(g.center()) {
			in = append(in, g)
		}
	}
	if len(in) == 0 {
		return ""
	}
	sort.SliceStable(in, func(i, j int) bool { return in[i].Y < in[j].Y })

	var lines []*textLine
	for _, g := range in {
		var cur *textLine
		if n := len(lines); n > 0 {
			cur = lines[n-1]
		}
		tol := max(g.FontSize, 1) * 0.5
		if cur == nil || g.Y-cur.y > tol {
			cur = &textLine{y: g.Y, size: g.FontSize}
			lines = append(lines, cur)
		}
		cur.glyphs = append(cur.glyphs, g)
	}

	out := make([]string, 0, len(lines))
	for _, l := range lines {
		sort.SliceStable(l.glyphs, func(i, j int) bool { return l.glyphs[i].X < l.glyphs[j].X })
		var b strings.Builder
		end := l.glyphs[0].X
		for i, g := range l.glyphs {
			if i > 0 && g.X-end > max(g.FontSize, 1)*0.2 {
				b.WriteByte(' ')
			}
			b.WriteString(g.S)
			end = max(end, g.X+g.W)
		}
		if s := strings.Join(strings.Fields(b.String()), " "); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "\n")
}
