package shopbackend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
)

// SearchIndex mirrors the product table into elasticsearch. It is
// best-effort: indexing failures are logged, never surfaced, and a
// nil SearchIndex disables the whole thing (the service falls back to
// a database query).
type SearchIndex struct {
	ES    *elasticsearch.Client
	index string
	Log   *slog.Logger
}

func NewSearchIndex(url, user, password string, log *slog.Logger) (*SearchIndex, error) {
	if url == "" {
		return nil, nil
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	return &SearchIndex{ES: client, index: "products", Log: log}, nil
}

func (s *SearchIndex) Index(ctx context.Context, prod *Product) {
	if s == nil {
		return
	}
	data, err := json.Marshal(prod)
	if err != nil {
		s.Log.Error("index product: marshal", "error", err)
		return
	}
	res, err := s.ES.Index(s.index, bytes.NewReader(data),
		s.ES.Index.WithContext(ctx),
		s.ES.Index.WithDocumentID(prod.ID),
	)
	if err != nil {
		s.Log.Error("index product", "id", prod.ID, "error", err)
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		s.Log.Error("index product", "id", prod.ID, "status", res.Status())
	}
}

func (s *SearchIndex) Remove(ctx context.Context, id string) {
	if s == nil {
		return
	}
	res, err := s.ES.Delete(s.index, id, s.ES.Delete.WithContext(ctx))
	if err != nil {
		s.Log.Error("remove product from index", "id", id, "error", err)
		return
	}
	res.Body.Close()
}

// Query returns matching product ids, best match first.
func (s *SearchIndex) Query(ctx context.Context, query string) ([]string, error) {
	if s == nil {
		return nil, fmt.Errorf("search index disabled")
	}
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(s.index),
		s.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search: %s", strings.TrimSpace(res.Status()))
	}

	var r struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]string, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		ids[i] = hit.ID
	}
	return ids, nil
}
