package extract

// Rejection is the reason an image failed the quality filter.
type Rejection int

const (
	Accepted Rejection = iota
	TooSmall
	AspectRatio
	FileSize
)

func (r Rejection) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case TooSmall:
		return "too_small"
	case AspectRatio:
		return "aspect_ratio"
	case FileSize:
		return "file_size"
	}
	return "unknown"
}

// Filter drops icons, rules, bullets and other decoration.
type Filter struct {
	MinWidth       int
	MinHeight      int
	MaxAspectRatio float64
	MinByteSize    int
}

func DefaultFilter() Filter {
	return Filter{
		MinWidth:       100,
		MinHeight:      100,
		MaxAspectRatio: 10.0,
		MinByteSize:    5 * 1024,
	}
}

// Check returns the first rejection reason, in the order dimensions, aspect
// ratio, byte size. Values exactly at a threshold pass.
func (f Filter) Check(width, height, byteSize int) Rejection {
	if width < f.MinWidth || height < f.MinHeight {
		return TooSmall
	}
	aspect := float64(max(width, height)) / float64(max(min(width, height), 1))
	if aspect > f.MaxAspectRatio {
		return AspectRatio
	}
	if byteSize < f.MinByteSize {
		return FileSize
	}
	return Accepted
}

// Accepts runs Check and tallies any rejection into stats.
func (f Filter) Accepts(width, height, byteSize int, stats *Stats) bool {
	r := f.Check(width, height, byteSize)
	if stats != nil {
		switch r {
		case TooSmall:
			stats.FilteredTooSmall++
		case AspectRatio:
			stats.FilteredAspectRatio++
		case FileSize:
			stats.FilteredFileSize++
		}
	}
	return r == Accepted
}

// Deduper remembers the content hashes seen during one run.
type Deduper struct {
	seen  map[string]struct{}
	stats *Stats
}

// NewDeduper returns an empty tracker. Duplicates are counted into stats
// when it is non-nil.
func NewDeduper(stats *Stats) *Deduper {
	return &Deduper{seen: make(map[string]struct{}), stats: stats}
}

// Seen reports whether hash was already registered, registering it if not.
func (d *Deduper) Seen(hash string) bool {
	if _, ok := d.seen[hash]; ok {
		if d.stats != nil {
			d.stats.Deduplicated++
		}
		return true
	}
	d.seen[hash] = struct{}{}
	return false
}

func (d *Deduper) Len() int { return len(d.seen) }
