// Package meili mirrors the corpus into a Meilisearch index and queries it.
package meili

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/matheuskafuri/blogsearch/internal/article"
	"github.com/matheuskafuri/blogsearch/internal/logger"
	"github.com/matheuskafuri/blogsearch/internal/search"
	"github.com/meilisearch/meilisearch-go"
)

const (
	batchSize    = 500
	pollInterval = 50 * time.Millisecond
)

// SearchableAttributes are the document fields matched against a query, in
// ranking order.
var SearchableAttributes = []string{"title", "summary", "blog_name", "tags"}

type Client struct {
	client    meilisearch.ServiceManager
	index     meilisearch.IndexManager
	indexName string
	log       *slog.Logger
}

func New(host, apiKey, indexName string, log *slog.Logger) *Client {
	if log == nil {
		log = logger.Discard()
	}
	client := meilisearch.New(host, meilisearch.WithAPIKey(apiKey))
	return &Client{
		client:    client,
		index:     client.Index(indexName),
		indexName: indexName,
		log:       log,
	}
}

// Reindex drops the index and rebuilds it from corpus.
func (c *Client) Reindex(ctx context.Context, corpus []article.Article) error {
	if task, err := c.client.DeleteIndexWithContext(ctx, c.indexName); err == nil {
		// a missing index fails the task, which is fine
		if _, err := c.client.WaitForTaskWithContext(ctx, task.TaskUID, pollInterval); err != nil {
			return fmt.Errorf("waiting for index deletion: %w", err)
		}
	}

	task, err := c.client.CreateIndexWithContext(ctx, &meilisearch.IndexConfig{Uid: c.indexName, PrimaryKey: "id"})
	if err != nil {
		return fmt.Errorf("creating index %s: %w", c.indexName, err)
	}
	if err := c.wait(ctx, task.TaskUID, "index creation"); err != nil {
		return err
	}

	attrs := append([]string(nil), SearchableAttributes...)
	task, err = c.index.UpdateSearchableAttributesWithContext(ctx, &attrs)
	if err != nil {
		return fmt.Errorf("setting searchable attributes: %w", err)
	}
	if err := c.wait(ctx, task.TaskUID, "settings update"); err != nil {
		return err
	}

	docs := Documents(corpus)
	for start := 0; start < len(docs); start += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+batchSize, len(docs))
		task, err := c.index.AddDocumentsWithContext(ctx, docs[start:end], nil)
		if err != nil {
			return fmt.Errorf("adding documents %d-%d: %w", start, end, err)
		}
		if err := c.wait(ctx, task.TaskUID, "document batch"); err != nil {
			return err
		}
		c.log.Debug("indexed batch", "index", c.indexName, "from", start, "to", end)
	}

	c.log.Info("index rebuilt", "index", c.indexName, "documents", len(docs))
	return nil
}

func (c *Client) wait(ctx context.Context, taskUID int64, what string) error {
	t, err := c.index.WaitForTaskWithContext(ctx, taskUID, pollInterval)
	if err != nil {
		return fmt.Errorf("waiting for %s: %w", what, err)
	}
	if t.Status == meilisearch.TaskStatusFailed {
		return fmt.Errorf("%s failed: %s", what, t.Error.Message)
	}
	return nil
}

// Search queries the index. It follows the in-memory engine's contract: an
// empty query returns no results and a negative limit is ErrInvalidLimit.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]article.Article, error) {
	if strings.TrimSpace(query) == "" {
		return []article.Article{}, nil
	}
	if limit < 0 {
		return nil, search.ErrInvalidLimit
	}
	limit = min(limit, search.MaxLimit)
	if limit == 0 {
		return []article.Article{}, nil
	}

	res, err := c.index.SearchWithContext(ctx, query, &meilisearch.SearchRequest{
		Query: query,
		Limit: int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("meilisearch query: %w", err)
	}
	return decodeHits(res.Hits)
}

// Documents converts articles to index documents. Empty published, summary
// and author are sent as null.
func Documents(corpus []article.Article) []map[string]interface{} {
	docs := make([]map[string]interface{}, 0, len(corpus))
	for _, a := range corpus {
		tags := a.Tags
		if tags == nil {
			tags = []string{}
		}
		docs = append(docs, map[string]interface{}{
			"id":              a.ID,
			"blog_name":       a.BlogName,
			"blog_url":        a.BlogURL,
			"title":           a.Title,
			"link":            a.Link,
			"summary":         nullable(a.Summary),
			"published":       nullable(a.Published),
			"author":          nullable(a.Author),
			"tags":            tags,
			"quality_signals": a.QualitySignals,
			"fetched_at":      a.FetchedAt,
		})
	}
	return docs
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// decodeHits round-trips hits through JSON so null fields map back to the
// empty string.
func decodeHits(hits interface{}) ([]article.Article, error) {
	raw, err := json.Marshal(hits)
	if err != nil {
		return nil, fmt.Errorf("encoding hits: %w", err)
	}
	articles := []article.Article{}
	if err := json.Unmarshal(raw, &articles); err != nil {
		return nil, fmt.Errorf("decoding hits: %w", err)
	}
	if articles == nil {
		articles = []article.Article{}
	}
	return articles, nil
}
