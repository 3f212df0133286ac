package populate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ragchat/internal/domain"
)

// Row is one entry of a collection source file.
type Row struct {
	ID        json.RawMessage `json:"id"`
	Document  string          `json:"document"`
	Metadata  map[string]any  `json:"metadata"`
	Embedding []float32       `json:"embedding"`
}

// Source names a collection and the file it is populated from.
type Source struct {
	Collection string
	File       string
}

// DefaultSources are the collections shipped with the demo data.
func DefaultSources(collectionsPath string) []Source {
	return []Source{
		{Collection: "services_collection", File: filepath.Join(collectionsPath, "services_with_embeddings.json")},
		{Collection: "bedrock_faqs_collection", File: filepath.Join(collectionsPath, "bedrock_faqs_with_embeddings.json")},
	}
}

// ReadRows parses a JSON array of rows into documents.
func ReadRows(path string) ([]domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows []Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	docs := make([]domain.Document, 0, len(rows))
	for i, r := range rows {
		id, err := rowID(r.ID)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i, err)
		}
		docs = append(docs, domain.Document{
			ID:        id,
			Content:   r.Document,
			Metadata:  stringify(r.Metadata),
			Embedding: r.Embedding,
		})
	}
	return docs, nil
}

// Initialize gets or creates the collection and, when it is empty, adds every
// row of file with its precomputed embedding. It returns the rows added.
func Initialize(ctx context.Context, store domain.VectorStore, src Source) (int, error) {
	col, err := store.GetOrCreateCollection(src.Collection)
	if err != nil {
		return 0, err
	}
	added := 0
	if col.Count() == 0 {
		docs, err := ReadRows(src.File)
		if err != nil {
			return 0, err
		}
		if err := col.Add(ctx, docs); err != nil {
			return 0, fmt.Errorf("add rows to %s: %w", src.Collection, err)
		}
		added = len(docs)
		slog.InfoContext(ctx, "Added rows to collection", "rows", added, "collection", src.Collection)
	}
	slog.InfoContext(ctx, "Initialized collection", "collection", src.Collection, "count", col.Count())
	return added, nil
}

// InitializeAll runs Initialize for every source in order.
func InitializeAll(ctx context.Context, store domain.VectorStore, sources []Source) error {
	for _, src := range sources {
		if _, err := Initialize(ctx, store, src); err != nil {
			return err
		}
	}
	return nil
}

func rowID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", fmt.Errorf("missing id")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("id must be a string or number: %s", raw)
	}
	return n.String(), nil
}

func stringify(m map[string]any) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		switch t := v.(type) {
		case string:
			out[k] = t
		case nil:
			out[k] = ""
		default:
			data, err := json.Marshal(t)
			if err != nil {
				out[k] = fmt.Sprint(t)
				continue
			}
			out[k] = string(data)
		}
	}
	return out
}
