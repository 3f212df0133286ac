package vectorstore

import (
	"fmt"

	"ragchat/internal/domain"
	"ragchat/internal/vectorstore/chromem"
	"ragchat/internal/vectorstore/memory"
)

// Config selects the vector store implementation.
type Config struct {
	Type     string
	Path     string
	Compress bool
}

// Open builds the configured store. Queries are embedded with emb.
func Open(cfg Config, emb domain.Embedder) (domain.VectorStore, error) {
	switch cfg.Type {
	case "chromem", "":
		return chromem.NewStorage(chromem.Config{Path: cfg.Path, Compress: cfg.Compress}, emb)
	case "memory":
		return memory.NewStorage(emb), nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.Type)
	}
}
