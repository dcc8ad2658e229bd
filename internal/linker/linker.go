package linker

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

const (
	figureRefScore = 0.9
	samePageScore  = 0.5
	captionMinLen  = 10
	captionOverlap = 0.3
)

var (
	chunkFigureRefs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:see|refer\s+to|shown\s+in|illustrated\s+in|depicted\s+in|as\s+in|per)?\s*((?:Figure|Fig\.|Table|Chart)\s+\d+[-–]\d+)`),
		regexp.MustCompile(`(?i)((?:Figure|Fig\.|Table|Chart)\s+\d+[-–]\d+)`),
	}
	figAbbrev   = regexp.MustCompile(`\bfig\.\s*`)
	captionWord = regexp.MustCompile(`\b\w{4,}\b`)
)

// NormalizeLabel canonicalizes a figure reference so that "Fig. 3–1" in a
// chunk and "Figure 3-1" under an image compare equal.
func NormalizeLabel(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	label = figAbbrev.ReplaceAllString(label, "figure ")
	label = strings.ReplaceAll(label, "–", "-")
	return strings.Join(strings.Fields(label), " ")
}

// FigureRefs returns the distinct normalized figure references in text, in
// order of first appearance.
func FigureRefs(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, re := range chunkFigureRefs {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			ref := NormalizeLabel(m[1])
			if !seen[ref] {
				seen[ref] = true
				out = append(out, ref)
			}
		}
	}
	return out
}

// CaptionOverlap is the share of the caption's distinct words of four or
// more letters that occur in content, rounded to three decimals.
func CaptionOverlap(caption, content string) float64 {
	words := make(map[string]struct{})
	for _, w := range captionWord.FindAllString(strings.ToLower(caption), -1) {
		words[w] = struct{}{}
	}
	if len(words) == 0 {
		return 0
	}
	content = strings.ToLower(content)
	hits := 0
	for w := range words {
		if strings.Contains(content, w) {
			hits++
		}
	}
	return math.Round(float64(hits)/float64(len(words))*1000) / 1000
}

// Result counts the links each strategy produced.
type Result struct {
	FigureRef    int `json:"figure_ref"`
	CaptionMatch int `json:"caption_match"`
	SamePage     int `json:"same_page"`
	Errors       int `json:"errors"`
	// Stored is the number of distinct pairs held after merging; only
	// reported for dry runs.
	Stored int `json:"stored,omitempty"`
}

func (r Result) Total() int { return r.FigureRef + r.CaptionMatch + r.SamePage }

func (r *Result) add(t LinkType, n int) {
	switch t {
	case FigureRef:
		r.FigureRef += n
	case CaptionMatch:
		r.CaptionMatch += n
	case SamePage:
		r.SamePage += n
	}
}

// Linker runs linking strategies against a Store. In dry-run mode links go
// to an in-memory store instead.
type Linker struct {
	Source Source
	Sink   Sink
	DryRun bool
	Log    *zap.Logger

	errors int
}

func New(store Store, dryRun bool, log *zap.Logger) *Linker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Linker{Source: store, Sink: store, DryRun: dryRun, Log: log}
}

// Run executes strategies in the given order.
func (l *Linker) Run(ctx context.Context, strategies []LinkType) (Result, error) {
	var res Result
	sink := l.Sink
	var mem *MemoryStore
	if l.DryRun {
		mem = NewMemoryStore()
		sink = mem
	}
	l.errors = 0
	for _, t := range strategies {
		var n int
		var err error
		switch t {
		case FigureRef:
			n, err = l.linkFigureRefs(ctx, sink)
		case CaptionMatch:
			n, err = l.linkCaptions(ctx, sink)
		case SamePage:
			n, err = l.linkSamePage(ctx, sink)
		default:
			err = fmt.Errorf("unknown strategy %v", t)
		}
		res.add(t, n)
		if err != nil {
			res.Errors = l.errors
			return res, fmt.Errorf("%s: %w", t, err)
		}
		l.Log.Info("strategy complete", zap.String("strategy", t.String()), zap.Int("links", n))
	}
	res.Errors = l.errors
	if mem != nil {
		res.Stored = len(mem.Links())
	}
	return res, nil
}

func (l *Linker) upsert(ctx context.Context, sink Sink, link Link) bool {
	if err := sink.UpsertLink(ctx, link); err != nil {
		l.errors++
		l.Log.Warn("upsert link",
			zap.String("chunk_id", link.ChunkID),
			zap.String("image_id", link.ImageID),
			zap.String("link_type", link.Type.String()),
			zap.Error(err))
		return false
	}
	return true
}

func (l *Linker) linkFigureRefs(ctx context.Context, sink Sink) (int, error) {
	images, err := l.Source.LabeledImages(ctx)
	if err != nil {
		return 0, err
	}
	if len(images) == 0 {
		return 0, nil
	}
	byLabel := make(map[string][]Image)
	for _, img := range images {
		key := NormalizeLabel(img.FigureLabel)
		byLabel[key] = append(byLabel[key], img)
	}
	chunks, err := l.Source.Chunks(ctx, nil)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, c := range chunks {
		for _, ref := range FigureRefs(c.Content) {
			candidates, ok := byLabel[ref]
			if !ok {
				continue
			}
			best := candidates[0]
			for _, img := range candidates {
				if img.DocumentID == c.DocumentID {
					best = img
					break
				}
			}
			link := Link{ChunkID: c.ID, ImageID: best.ID, Type: FigureRef, Score: figureRefScore}
			if l.upsert(ctx, sink, link) {
				n++
			}
		}
	}
	return n, nil
}

func (l *Linker) linkCaptions(ctx context.Context, sink Sink) (int, error) {
	images, err := l.Source.CaptionedImages(ctx)
	if err != nil {
		return 0, err
	}
	if len(images) == 0 {
		return 0, nil
	}
	chunks, err := l.Source.Chunks(ctx, documentIDs(images))
	if err != nil {
		return 0, err
	}
	byDoc := groupChunks(chunks)

	n := 0
	for _, img := range images {
		if len([]rune(img.Caption)) < captionMinLen {
			continue
		}
		for _, c := range byDoc[img.DocumentID] {
			overlap := CaptionOverlap(img.Caption, c.Content)
			if overlap < captionOverlap {
				continue
			}
			link := Link{ChunkID: c.ID, ImageID: img.ID, Type: CaptionMatch, Score: overlap}
			if l.upsert(ctx, sink, link) {
				n++
			}
		}
	}
	return n, nil
}

func (l *Linker) linkSamePage(ctx context.Context, sink Sink) (int, error) {
	images, err := l.Source.RelevantImages(ctx)
	if err != nil {
		return 0, err
	}
	if len(images) == 0 {
		return 0, nil
	}
	byDoc := make(map[string][]Image)
	for _, img := range images {
		byDoc[img.DocumentID] = append(byDoc[img.DocumentID], img)
	}
	chunks, err := l.Source.PagedChunks(ctx, documentIDs(images))
	if err != nil {
		return 0, err
	}

	n := 0
	for _, c := range chunks {
		if c.PageStart == nil {
			continue
		}
		start := *c.PageStart
		end := start
		if c.PageEnd != nil {
			end = *c.PageEnd
		}
		for _, img := range byDoc[c.DocumentID] {
			if img.Page < start || img.Page > end {
				continue
			}
			link := Link{ChunkID: c.ID, ImageID: img.ID, Type: SamePage, Score: samePageScore}
			if l.upsert(ctx, sink, link) {
				n++
			}
		}
	}
	return n, nil
}

func documentIDs(images []Image) []string {
	var out []string
	seen := make(map[string]bool)
	for _, img := range images {
		if !seen[img.DocumentID] {
			seen[img.DocumentID] = true
			out = append(out, img.DocumentID)
		}
	}
	return out
}

func groupChunks(chunks []Chunk) map[string][]Chunk {
	out := make(map[string][]Chunk)
	for _, c := range chunks {
		out[c.DocumentID] = append(out[c.DocumentID], c)
	}
	return out
}
