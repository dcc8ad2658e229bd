package extract

import (
	"regexp"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/thywilljoshua/pdf-corpus/internal/pdfdoc"
	"github.com/thywilljoshua/pdf-corpus/internal/pdfdoc/pdfdoctest"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		label, caption string
		want           Category
	}{
		{"", "surface weather front and cloud analysis", CategoryWeather},
		{"", "takeoff distance chart", CategoryPerformance},
		{"", "", CategoryGeneral},
		{"Figure 3-1", "", CategoryGeneral},
		{"Figure 2-7", "the pilot and the passenger", CategoryGeneral},
		{"Table 4-1", "", CategoryTable},
		// One hit each for chart and table; chart comes first.
		{"", "graph and checklist", CategoryChart},
		{"", "Altimeter and AIRSPEED indicator", CategoryInstrument},
	}
	for _, tt := range tests {
		if got := Classify(tt.label, tt.caption); got != tt.want {
			t.Errorf("Classify(%q, %q) = %q, want %q", tt.label, tt.caption, got, tt.want)
		}
	}
}

func TestMatchLabel(t *testing.T) {
	tests := map[string]string{
		"see table 2-1 and Figure 3–4 below": "Figure 3–4",
		"FIG. 12-3 Landing gear":             "FIG. 12-3",
		"Exhibit 7":                          "Exhibit 7",
		"Chart 1-1":                          "Chart 1-1",
		"figure three":                       "",
	}
	for in, want := range tests {
		if got := MatchLabel(in); got != want {
			t.Errorf("MatchLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTrimCaption(t *testing.T) {
	long := strings.Repeat("a", 250)
	tests := []struct {
		in, want string
	}{
		{"  Fig ", ""},
		{"", ""},
		{"Engine cooling system Figure 3-2 Oil system", "Engine cooling system"},
		{"Figure 3-1 Engine cooling", "Figure 3-1 Engine cooling"},
		{"Figure 3-1 Engine cooling, see Table 3-2", "Figure 3-1 Engine cooling, see"},
		{long, long[:200]},
	}
	for _, tt := range tests {
		if got := TrimCaption(tt.in); got != tt.want {
			t.Errorf("TrimCaption(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFigureLabelAndCaptionWindows(t *testing.T) {
	page := &pdfdoctest.Page{Texts: []pdfdoctest.Text{
		{X: 150, Y: 60, S: "Figure 5-1"},
		{X: 150, Y: 270, S: "Airspeed indicator markings"},
		{X: 150, Y: 400, S: "Unrelated paragraph far below"},
		{X: 500, Y: 150, S: "Figure 9-9"},
	}}
	bbox := pdfdoc.Rect{X0: 100, Y0: 100, X1: 300, Y1: 250}

	if got := FigureLabel(page, bbox); got != "Figure 5-1" {
		t.Errorf("FigureLabel = %q, want %q", got, "Figure 5-1")
	}
	if got := Caption(page, bbox); got != "Airspeed indicator markings" {
		t.Errorf("Caption = %q, want %q", got, "Airspeed indicator markings")
	}
}

func TestQualityScore(t *testing.T) {
	if got := QualityScore(1000, 1000, 0); got != 0 {
		t.Errorf("QualityScore(1000, 1000, 0) = %v, want 0", got)
	}
	if got := QualityScore(0, 0, 100); got != 0 {
		t.Errorf("QualityScore(0, 0, 100) = %v, want 0", got)
	}
	// 2000x1000 at 1.2MB: 2 * (1 - 0.2) clamps to 1.
	if got := QualityScore(2000, 1000, 1200000); got != 1 {
		t.Errorf("QualityScore(2000, 1000, 1200000) = %v, want 1", got)
	}
	// 500x400 at 120000 bytes: 0.2 * (1 - 0.2) = 0.16.
	if got := QualityScore(500, 400, 120000); got < 0.1599 || got > 0.1601 {
		t.Errorf("QualityScore(500, 400, 120000) = %v, want 0.16", got)
	}
}

func TestQualityScoreInRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		w := rapid.IntRange(0, 20000).Draw(rt, "width")
		h := rapid.IntRange(0, 20000).Draw(rt, "height")
		size := rapid.IntRange(0, 1<<30).Draw(rt, "byteSize")
		q := QualityScore(w, h, size)
		if q < 0 || q > 1 {
			rt.Fatalf("QualityScore(%d, %d, %d) = %v, outside [0,1]", w, h, size, q)
		}
		if size == 0 && q != 0 {
			rt.Fatalf("QualityScore(%d, %d, 0) = %v, want 0", w, h, q)
		}
	})
}

func TestNormalizeBBox(t *testing.T) {
	page := pdfdoc.Rect{X1: 612, Y1: 792}
	got := NormalizeBBox(pdfdoc.Rect{X0: 100, Y0: 100, X1: 300, Y1: 250}, page)
	want := BBox{0.1634, 0.1263, 0.4902, 0.3157}
	if got != want {
		t.Errorf("NormalizeBBox = %v, want %v", got, want)
	}
	if got := NormalizeBBox(pdfdoc.Rect{X1: 10, Y1: 10}, pdfdoc.Rect{}); got != (BBox{}) {
		t.Errorf("NormalizeBBox on empty page = %v, want zero", got)
	}
}

var hexHash = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestContentHash(t *testing.T) {
	a1 := ContentHash([]byte("image A"))
	a2 := ContentHash([]byte("image A"))
	b := ContentHash([]byte("image B"))
	if a1 != a2 {
		t.Errorf("ContentHash not deterministic: %s != %s", a1, a2)
	}
	if a1 == b {
		t.Errorf("ContentHash(image A) == ContentHash(image B) = %s", a1)
	}
	for _, h := range []string{a1, b} {
		if !hexHash.MatchString(h) {
			t.Errorf("ContentHash = %q, want 64 lowercase hex chars", h)
		}
	}
}
