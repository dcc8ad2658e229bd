// Package linker associates text chunks with the images they talk about.
package linker

import (
	"context"
	"fmt"
)

// LinkType is the strategy that produced a link. Higher ranks are more
// trustworthy and are never overwritten by lower ones.
type LinkType int

const (
	SamePage LinkType = iota + 1
	CaptionMatch
	FigureRef
)

// Order is the sequence strategies run in for "all".
var Order = []LinkType{FigureRef, CaptionMatch, SamePage}

func (t LinkType) String() string {
	switch t {
	case FigureRef:
		return "figure_ref"
	case CaptionMatch:
		return "caption_match"
	case SamePage:
		return "same_page"
	}
	return fmt.Sprintf("LinkType(%d)", int(t))
}

func (t LinkType) Rank() int { return int(t) }

// ParseLinkType reads the database spelling of a link type.
func ParseLinkType(s string) (LinkType, error) {
	for _, t := range Order {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown link type %q", s)
}

// ParseStrategy maps a --strategy flag value to the strategies to run.
func ParseStrategy(s string) ([]LinkType, error) {
	if s == "" || s == "all" {
		return Order, nil
	}
	t, err := ParseLinkType(s)
	if err != nil {
		return nil, fmt.Errorf("strategy must be figure_ref, caption_match, same_page or all: %w", err)
	}
	return []LinkType{t}, nil
}

// Link ties a chunk to an image.
type Link struct {
	ChunkID string
	ImageID string
	Type    LinkType
	Score   float64
}

// Supersedes reports whether incoming may replace existing for the same
// (chunk, image) pair.
func Supersedes(incoming, existing LinkType) bool {
	return incoming.Rank() >= existing.Rank()
}

// Merge returns the link that should be stored for a pair that already has
// existing.
func Merge(existing, incoming Link) Link {
	if Supersedes(incoming.Type, existing.Type) {
		return incoming
	}
	return existing
}

// Image is the part of a stored image the strategies read.
type Image struct {
	ID          string
	DocumentID  string
	Page        int
	FigureLabel string
	Caption     string
}

// Chunk is the part of a stored text chunk the strategies read. Pages are
// 1-based and may be unknown.
type Chunk struct {
	ID         string
	DocumentID string
	Content    string
	PageStart  *int
	PageEnd    *int
}

// Source loads read-only inputs. Image queries only return images marked
// relevant; results come back in a stable order.
type Source interface {
	LabeledImages(ctx context.Context) ([]Image, error)
	CaptionedImages(ctx context.Context) ([]Image, error)
	RelevantImages(ctx context.Context) ([]Image, error)
	// Chunks returns chunks of the given documents, or of every document
	// when docIDs is nil.
	Chunks(ctx context.Context, docIDs []string) ([]Chunk, error)
	// PagedChunks is Chunks restricted to chunks with a known page_start.
	PagedChunks(ctx context.Context, docIDs []string) ([]Chunk, error)
}

// Sink stores links, keeping the higher-ranked link for a pair.
type Sink interface {
	UpsertLink(ctx context.Context, l Link) error
}

type Store interface {
	Source
	Sink
}
