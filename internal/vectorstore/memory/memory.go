package memory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"ragchat/internal/domain"
)

// Storage is a simple in-memory vector store using brute-force cosine similarity.
type Storage struct {
	mu          sync.Mutex
	embedder    domain.Embedder
	collections map[string]*Collection
}

func NewStorage(embedder domain.Embedder) *Storage {
	return &Storage{embedder: embedder, collections: make(map[string]*Collection)}
}

func (s *Storage) Collection(name string) (domain.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	return c, nil
}

func (s *Storage) GetOrCreateCollection(name string) (domain.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		c = &Collection{name: name, embedder: s.embedder, index: make(map[string]int)}
		s.collections[name] = c
	}
	return c, nil
}

// Collection keeps documents and their L2-normalized vectors.
type Collection struct {
	mu       sync.RWMutex
	name     string
	embedder domain.Embedder
	docs     []domain.Document
	vectors  [][]float32
	index    map[string]int
}

func (c *Collection) Name() string { return c.name }

func (c *Collection) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

// Add upserts docs by ID. Documents without an embedding are embedded first.
func (c *Collection) Add(ctx context.Context, docs []domain.Document) error {
	vectors := make([][]float32, len(docs))
	for i, d := range docs {
		if d.ID == "" {
			return errors.New("document without id")
		}
		v := d.Embedding
		if len(v) == 0 {
			var err error
			if v, err = c.embedder.Embed(ctx, d.Content); err != nil {
				return fmt.Errorf("embed document %s: %w", d.ID, err)
			}
		}
		vectors[i] = normalize(v)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, d := range docs {
		if len(c.vectors) > 0 && len(vectors[i]) != len(c.vectors[0]) {
			return errors.New("vector dimension mismatch")
		}
		if j, ok := c.index[d.ID]; ok {
			c.docs[j] = d
			c.vectors[j] = vectors[i]
			continue
		}
		c.index[d.ID] = len(c.docs)
		c.docs = append(c.docs, d)
		c.vectors = append(c.vectors, vectors[i])
	}
	return nil
}

// Query embeds text and returns up to topK closest documents.
func (c *Collection) Query(ctx context.Context, text string, topK int) ([]domain.RetrievedDocument, error) {
	if topK <= 0 {
		topK = 5
	}
	q, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	q = normalize(q)

	c.mu.RLock()
	defer c.mu.RUnlock()
	scores := make([]float32, len(c.vectors))
	for i := range c.vectors {
		scores[i] = dot(c.vectors[i], q)
	}
	idxs := argsortDesc(scores)
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.RetrievedDocument, 0, topK)
	for i := 0; i < topK; i++ {
		j := idxs[i]
		d := c.docs[j]
		results = append(results, domain.RetrievedDocument{
			ID:         d.ID,
			Content:    d.Content,
			Metadata:   d.Metadata,
			Similarity: scores[j],
			Rank:       i + 1,
		})
	}
	return results, nil
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}
	n := float32(math.Sqrt(sum))
	for i, x := range v {
		out[i] = x / n
	}
	return out
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func argsortDesc(vals []float32) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	quicksort(idxs, vals, 0, len(idxs)-1)
	return idxs
}

func quicksort(idxs []int, vals []float32, lo, hi int) {
	if lo >= hi {
		return
	}
	i, j := lo, hi
	pivot := vals[idxs[(lo+hi)/2]]
	for i <= j {
		for vals[idxs[i]] > pivot { // desc order
			i++
		}
		for vals[idxs[j]] < pivot {
			j--
		}
		if i <= j {
			idxs[i], idxs[j] = idxs[j], idxs[i]
			i++
			j--
		}
	}
	if lo < j {
		quicksort(idxs, vals, lo, j)
	}
	if i < hi {
		quicksort(idxs, vals, i, hi)
	}
}
