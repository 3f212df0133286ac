package chromem

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/philippgille/chromem-go"

	"ragchat/internal/domain"
)

// Config configures the persistent chromem database.
type Config struct {
	Path     string
	Compress bool
}

// Storage is a persistent vector store backed by chromem-go.
type Storage struct {
	db       *chromem.DB
	embedFn  chromem.EmbeddingFunc
	embedder string
}

// NewStorage opens (or creates) the database directory at cfg.Path.
// Documents added without an embedding and all query texts are embedded with emb.
func NewStorage(cfg Config, emb domain.Embedder) (*Storage, error) {
	if cfg.Path == "" {
		return nil, errors.New("chromem path is required")
	}
	if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vector dir: %w", err)
	}
	db, err := chromem.NewPersistentDB(cfg.Path, cfg.Compress)
	if err != nil {
		return nil, fmt.Errorf("open vector db: %w", err)
	}
	return &Storage{db: db, embedFn: emb.Embed, embedder: emb.Name()}, nil
}

func (s *Storage) Collection(name string) (domain.Collection, error) {
	col := s.db.GetCollection(name, s.embedFn)
	if col == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	return &Collection{col: col}, nil
}

func (s *Storage) GetOrCreateCollection(name string) (domain.Collection, error) {
	col, err := s.db.GetOrCreateCollection(name, map[string]string{"embedder": s.embedder}, s.embedFn)
	if err != nil {
		return nil, fmt.Errorf("get or create collection %s: %w", name, err)
	}
	return &Collection{col: col}, nil
}

// Collection adapts a chromem collection to domain.Collection.
type Collection struct {
	col *chromem.Collection
}

func (c *Collection) Name() string { return c.col.Name }

func (c *Collection) Count() int { return c.col.Count() }

// Add upserts docs. chromem persists each document as it is added.
func (c *Collection) Add(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}
	out := make([]chromem.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, chromem.Document{
			ID:        d.ID,
			Metadata:  d.Metadata,
			Embedding: d.Embedding,
			Content:   d.Content,
		})
	}
	return c.col.AddDocuments(ctx, out, 1)
}

// Query returns up to topK documents closest to text. chromem rejects
// requests for more results than documents, so topK is clamped.
func (c *Collection) Query(ctx context.Context, text string, topK int) ([]domain.RetrievedDocument, error) {
	n := c.col.Count()
	if n == 0 {
		return nil, nil
	}
	if topK <= 0 || topK > n {
		topK = n
	}
	res, err := c.col.Query(ctx, text, topK, nil, nil)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RetrievedDocument, 0, len(res))
	for i, r := range res {
		out = append(out, domain.RetrievedDocument{
			ID:         r.ID,
			Content:    r.Content,
			Metadata:   r.Metadata,
			Similarity: r.Similarity,
			Rank:       i + 1,
		})
	}
	return out, nil
}
