package linker

import (
	"context"
	"sort"
	"sync"
)

type pair struct{ chunk, image string }

// MemoryStore is a Store held in memory. It applies the same merge rule as
// the database.
type MemoryStore struct {
	mu     sync.Mutex
	images []Image
	chunks []Chunk
	links  map[pair]Link
	// Irrelevant hides images by ID from every image query.
	Irrelevant map[string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{links: make(map[pair]Link), Irrelevant: make(map[string]bool)}
}

func (m *MemoryStore) AddImages(imgs ...Image) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images = append(m.images, imgs...)
}

func (m *MemoryStore) AddChunks(chunks ...Chunk) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = append(m.chunks, chunks...)
}

func (m *MemoryStore) filterImages(keep func(Image) bool) []Image {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Image
	for _, img := range m.images {
		if !m.Irrelevant[img.ID] && keep(img) {
			out = append(out, img)
		}
	}
	return out
}

func (m *MemoryStore) LabeledImages(ctx context.Context) ([]Image, error) {
	return m.filterImages(func(img Image) bool { return img.FigureLabel != "" }), nil
}

func (m *MemoryStore) CaptionedImages(ctx context.Context) ([]Image, error) {
	return m.filterImages(func(img Image) bool { return img.Caption != "" }), nil
}

func (m *MemoryStore) RelevantImages(ctx context.Context) ([]Image, error) {
	return m.filterImages(func(Image) bool { return true }), nil
}

func (m *MemoryStore) filterChunks(docIDs []string, keep func(Chunk) bool) []Chunk {
	m.mu.Lock()
	defer m.mu.Unlock()
	var docs map[string]bool
	if docIDs != nil {
		docs = make(map[string]bool, len(docIDs))
		for _, id := range docIDs {
			docs[id] = true
		}
	}
	var out []Chunk
	for _, c := range m.chunks {
		if docs != nil && !docs[c.DocumentID] {
			continue
		}
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func (m *MemoryStore) Chunks(ctx context.Context, docIDs []string) ([]Chunk, error) {
	return m.filterChunks(docIDs, func(Chunk) bool { return true }), nil
}

func (m *MemoryStore) PagedChunks(ctx context.Context, docIDs []string) ([]Chunk, error) {
	return m.filterChunks(docIDs, func(c Chunk) bool { return c.PageStart != nil }), nil
}

func (m *MemoryStore) UpsertLink(ctx context.Context, l Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := pair{l.ChunkID, l.ImageID}
	if existing, ok := m.links[k]; ok {
		l = Merge(existing, l)
	}
	m.links[k] = l
	return nil
}

// Link returns the stored link for a pair.
func (m *MemoryStore) Link(chunkID, imageID string) (Link, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.links[pair{chunkID, imageID}]
	return l, ok
}

// Links returns every stored link ordered by chunk then image.
func (m *MemoryStore) Links() []Link {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Link, 0, len(m.links))
	for _, l := range m.links {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ChunkID != out[j].ChunkID {
			return out[i].ChunkID < out[j].ChunkID
		}
		return out[i].ImageID < out[j].ImageID
	})
	return out
}
