package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/matheuskafuri/blogsearch/internal/article"
)

// FetchStats summarizes one ingestion run.
type FetchStats struct {
	BlogsProcessed  int `json:"blogs_processed"`
	BlogsFailed     int `json:"blogs_failed"`
	NewArticles     int `json:"new_articles"`
	UpdatedArticles int `json:"updated_articles"`
	SkippedArticles int `json:"skipped_articles"`
}

// Metadata describes the last ingestion run.
type Metadata struct {
	LastUpdated   string     `json:"last_updated"`
	TotalArticles int        `json:"total_articles"`
	TotalBlogs    int        `json:"total_blogs"`
	FetchStats    FetchStats `json:"fetch_stats"`
}

// Merge stores freshly fetched articles, deduplicated by id. An article whose
// id is already stored with the same published value is skipped and the
// stored copy kept; a changed published value counts as an update. The
// New/Updated/Skipped fields of the returned stats are filled in.
func (s *Store) Merge(fetched []article.Article) (FetchStats, error) {
	var stats FetchStats

	existing, err := s.publishedByID()
	if err != nil {
		return stats, err
	}

	var changed []article.Article
	seen := make(map[string]bool, len(fetched))
	for _, a := range fetched {
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true

		pub, ok := existing[a.ID]
		switch {
		case !ok:
			stats.NewArticles++
		case pub == a.Published:
			stats.SkippedArticles++
			continue
		default:
			stats.UpdatedArticles++
		}
		changed = append(changed, a)
	}

	if len(changed) == 0 {
		return stats, nil
	}
	if err := s.UpsertArticles(changed); err != nil {
		return stats, fmt.Errorf("merging articles: %w", err)
	}
	return stats, nil
}

func (s *Store) publishedByID() (map[string]string, error) {
	rows, err := s.readDB.Query("SELECT id, published FROM articles")
	if err != nil {
		return nil, fmt.Errorf("querying article ids: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var id, pub string
		if err := rows.Scan(&id, &pub); err != nil {
			return nil, fmt.Errorf("scanning article id: %w", err)
		}
		out[id] = pub
	}
	return out, rows.Err()
}

// SaveMetadata records the outcome of an ingestion run.
func (s *Store) SaveMetadata(stats FetchStats, totalBlogs int) error {
	var total int
	if err := s.readDB.QueryRow("SELECT COUNT(*) FROM articles").Scan(&total); err != nil {
		return fmt.Errorf("counting articles: %w", err)
	}
	md := Metadata{
		LastUpdated:   time.Now().UTC().Format(timeLayout),
		TotalArticles: total,
		TotalBlogs:    totalBlogs,
		FetchStats:    stats,
	}
	data, err := json.Marshal(md)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	return s.setMeta("metadata", string(data))
}

// Metadata returns the last recorded ingestion run, or ErrNotFound.
func (s *Store) Metadata() (Metadata, error) {
	value, err := s.getMeta("metadata")
	if err != nil {
		return Metadata{}, err
	}
	var md Metadata
	if err := json.Unmarshal([]byte(value), &md); err != nil {
		return Metadata{}, fmt.Errorf("decoding metadata: %w", err)
	}
	return md, nil
}
