package linker

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func intp(v int) *int { return &v }

func TestNormalizeLabel(t *testing.T) {
	tests := map[string]string{
		"Figure 3-1":   "figure 3-1",
		"Fig. 3–1":     "figure 3-1",
		"fig.3-1":      "figure 3-1",
		" TABLE  4-2 ": "table 4-2",
	}
	for in, want := range tests {
		if got := NormalizeLabel(in); got != want {
			t.Errorf("NormalizeLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFigureRefs(t *testing.T) {
	text := "As shown in Figure 3-1, the wing (see Fig. 3–1) meets Table 2-4. Refer to chart 9-9."
	got := FigureRefs(text)
	want := []string{"figure 3-1", "table 2-4", "chart 9-9"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FigureRefs mismatch (-want +got):\n%s", diff)
	}
}

func TestCaptionOverlap(t *testing.T) {
	// Words: airspeed, indicator, markings -> 2 of 3 present.
	got := CaptionOverlap("Airspeed indicator markings", "The AIRSPEED indicator shows ...")
	if got != 0.667 {
		t.Errorf("CaptionOverlap = %v, want 0.667", got)
	}
	if got := CaptionOverlap("a of to", "anything"); got != 0 {
		t.Errorf("CaptionOverlap(short words) = %v, want 0", got)
	}
}

func TestSupersedes(t *testing.T) {
	tests := []struct {
		incoming, existing LinkType
		want               bool
	}{
		{SamePage, FigureRef, false},
		{CaptionMatch, FigureRef, false},
		{SamePage, CaptionMatch, false},
		{FigureRef, SamePage, true},
		{CaptionMatch, CaptionMatch, true},
		{FigureRef, FigureRef, true},
	}
	for _, tt := range tests {
		if got := Supersedes(tt.incoming, tt.existing); got != tt.want {
			t.Errorf("Supersedes(%v, %v) = %v, want %v", tt.incoming, tt.existing, got, tt.want)
		}
	}
}

func fixture() *MemoryStore {
	m := NewMemoryStore()
	m.AddImages(
		Image{ID: "img-other", DocumentID: "doc-b", Page: 4, FigureLabel: "Figure 3-1"},
		Image{ID: "img-1", DocumentID: "doc-a", Page: 4, FigureLabel: "Figure 3-1", Caption: "Airspeed indicator markings"},
		Image{ID: "img-2", DocumentID: "doc-a", Page: 9, Caption: "Tiny"},
		Image{ID: "img-hidden", DocumentID: "doc-a", Page: 4, FigureLabel: "Figure 3-2"},
	)
	m.Irrelevant["img-hidden"] = true
	m.AddChunks(
		Chunk{ID: "c1", DocumentID: "doc-a", Content: "The airspeed indicator is shown in Figure 3-1 and Figure 3-2.", PageStart: intp(4)},
		Chunk{ID: "c2", DocumentID: "doc-a", Content: "Chapter text on page nine.", PageStart: intp(8), PageEnd: intp(10)},
		Chunk{ID: "c3", DocumentID: "doc-a", Content: "No page known for this chunk."},
		Chunk{ID: "c4", DocumentID: "doc-c", Content: "Figure 3-1 from another book."},
	)
	return m
}

func TestRunAll(t *testing.T) {
	m := fixture()
	res, err := New(m, false, nil).Run(context.Background(), Order)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	wantRes := Result{FigureRef: 2, CaptionMatch: 1, SamePage: 2}
	if res != wantRes {
		t.Errorf("Result = %+v, want %+v", res, wantRes)
	}

	want := []Link{
		{ChunkID: "c1", ImageID: "img-1", Type: FigureRef, Score: 0.9},
		{ChunkID: "c2", ImageID: "img-2", Type: SamePage, Score: 0.5},
		{ChunkID: "c4", ImageID: "img-other", Type: FigureRef, Score: 0.9},
	}
	if diff := cmp.Diff(want, m.Links()); diff != "" {
		t.Errorf("links mismatch (-want +got):\n%s", diff)
	}
}

func TestSamePageDoesNotDowngradeFigureRef(t *testing.T) {
	m := fixture()
	l := New(m, false, nil)
	ctx := context.Background()
	if _, err := l.Run(ctx, []LinkType{FigureRef}); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Run(ctx, []LinkType{SamePage}); err != nil {
		t.Fatal(err)
	}
	got, ok := m.Link("c1", "img-1")
	if !ok {
		t.Fatalf("link c1/img-1 missing")
	}
	if got.Type != FigureRef || got.Score != 0.9 {
		t.Errorf("link = %v/%v, want figure_ref/0.9", got.Type, got.Score)
	}
}

func TestSamePageThenFigureRefUpgrades(t *testing.T) {
	m := fixture()
	l := New(m, false, nil)
	ctx := context.Background()
	if _, err := l.Run(ctx, []LinkType{SamePage, FigureRef}); err != nil {
		t.Fatal(err)
	}
	if got, _ := m.Link("c1", "img-1"); got.Type != FigureRef {
		t.Errorf("link type = %v, want figure_ref", got.Type)
	}
}

func TestDryRunWritesNothing(t *testing.T) {
	m := fixture()
	res, err := New(m, true, nil).Run(context.Background(), Order)
	if err != nil {
		t.Fatal(err)
	}
	if res.Total() != 5 {
		t.Errorf("dry run Total = %d, want 5", res.Total())
	}
	if res.Stored != 3 {
		t.Errorf("dry run Stored = %d, want 3", res.Stored)
	}
	if n := len(m.Links()); n != 0 {
		t.Errorf("dry run stored %d links, want 0", n)
	}
}

type failingSink struct{ *MemoryStore }

func (failingSink) UpsertLink(context.Context, Link) error { return errors.New("boom") }

func TestUpsertErrorsAreCounted(t *testing.T) {
	m := fixture()
	l := New(m, false, nil)
	l.Sink = failingSink{m}
	res, err := l.Run(context.Background(), []LinkType{FigureRef})
	if err != nil {
		t.Fatalf("Run returned %v, want per-link errors only", err)
	}
	if res.FigureRef != 0 || res.Errors != 2 {
		t.Errorf("Result = %+v, want 0 links and 2 errors", res)
	}
}

func TestParseStrategy(t *testing.T) {
	got, err := ParseStrategy("all")
	if err != nil || len(got) != 3 || got[0] != FigureRef || got[2] != SamePage {
		t.Errorf("ParseStrategy(all) = %v, %v", got, err)
	}
	got, err = ParseStrategy("caption_match")
	if err != nil || len(got) != 1 || got[0] != CaptionMatch {
		t.Errorf("ParseStrategy(caption_match) = %v, %v", got, err)
	}
	if _, err := ParseStrategy("nearest"); err == nil {
		t.Errorf("ParseStrategy(nearest) = nil error, want error")
	}
}
