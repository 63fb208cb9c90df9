package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matheuskafuri/blogsearch/internal/article"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a meta key or article does not exist.
var ErrNotFound = errors.New("store: not found")

const timeLayout = article.TimestampLayout

// Store persists the article corpus between fetch runs.
type Store struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

// QueryOpts filters Articles. Zero values mean no filter.
type QueryOpts struct {
	Since string
	Blogs []string
	Limit int
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	s := &Store{readDB: readDB, writeDB: writeDB}
	if err := s.init(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS articles (
			id              TEXT PRIMARY KEY,
			blog_name       TEXT NOT NULL DEFAULT '',
			blog_url        TEXT NOT NULL DEFAULT '',
			title           TEXT NOT NULL DEFAULT '',
			link            TEXT NOT NULL DEFAULT '',
			summary         TEXT NOT NULL DEFAULT '',
			published       TEXT NOT NULL DEFAULT '',
			author          TEXT NOT NULL DEFAULT '',
			tags            TEXT NOT NULL DEFAULT '[]',
			quality_signals TEXT NOT NULL DEFAULT '{}',
			fetched_at      TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(published DESC);
		CREATE INDEX IF NOT EXISTS idx_articles_blog ON articles(blog_name);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	var errs []error
	if s.readDB != nil {
		errs = append(errs, s.readDB.Close())
	}
	if s.writeDB != nil {
		errs = append(errs, s.writeDB.Close())
	}
	return errors.Join(errs...)
}

const upsertSQL = `
	INSERT INTO articles (id, blog_name, blog_url, title, link, summary, published, author, tags, quality_signals, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		blog_name = excluded.blog_name,
		blog_url = excluded.blog_url,
		title = excluded.title,
		link = excluded.link,
		summary = excluded.summary,
		published = excluded.published,
		author = excluded.author,
		tags = excluded.tags,
		quality_signals = excluded.quality_signals,
		fetched_at = excluded.fetched_at
`

func (s *Store) UpsertArticles(articles []article.Article) error {
	tx, err := s.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := upsert(tx, articles); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceAll swaps the stored corpus for articles in one transaction.
func (s *Store) ReplaceAll(articles []article.Article) error {
	tx, err := s.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM articles"); err != nil {
		return fmt.Errorf("clearing articles: %w", err)
	}
	if err := upsert(tx, articles); err != nil {
		return err
	}
	return tx.Commit()
}

func upsert(tx *sql.Tx, articles []article.Article) error {
	stmt, err := tx.Prepare(upsertSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range articles {
		tags, err := json.Marshal(nonNilTags(a.Tags))
		if err != nil {
			return fmt.Errorf("encoding tags of %s: %w", a.ID, err)
		}
		signals, err := json.Marshal(nonNilSignals(a.QualitySignals))
		if err != nil {
			return fmt.Errorf("encoding quality signals of %s: %w", a.ID, err)
		}
		_, err = stmt.Exec(a.ID, a.BlogName, a.BlogURL, a.Title, a.Link, a.Summary,
			a.Published, a.Author, string(tags), string(signals), a.FetchedAt)
		if err != nil {
			return fmt.Errorf("upserting article %s: %w", a.ID, err)
		}
	}
	return nil
}

// Articles returns stored articles, newest published first.
func (s *Store) Articles(opts QueryOpts) ([]article.Article, error) {
	var (
		where []string
		args  []interface{}
	)

	if opts.Since != "" {
		where = append(where, "published >= ?")
		args = append(args, opts.Since)
	}

	if len(opts.Blogs) > 0 {
		placeholders := make([]string, len(opts.Blogs))
		for i, b := range opts.Blogs {
			placeholders[i] = "?"
			args = append(args, b)
		}
		where = append(where, "blog_name IN ("+strings.Join(placeholders, ",")+")") //nolint:gosec
	}

	query := "SELECT id, blog_name, blog_url, title, link, summary, published, author, tags, quality_signals, fetched_at FROM articles"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY published DESC, id ASC"
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := s.readDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	articles := []article.Article{}
	for rows.Next() {
		var (
			a             article.Article
			tags, signals string
		)
		if err := rows.Scan(&a.ID, &a.BlogName, &a.BlogURL, &a.Title, &a.Link, &a.Summary,
			&a.Published, &a.Author, &tags, &signals, &a.FetchedAt); err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &a.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags of %s: %w", a.ID, err)
		}
		if err := json.Unmarshal([]byte(signals), &a.QualitySignals); err != nil {
			return nil, fmt.Errorf("decoding quality signals of %s: %w", a.ID, err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// Article returns one article by id.
func (s *Store) Article(id string) (article.Article, error) {
	var (
		a             article.Article
		tags, signals string
	)
	err := s.readDB.QueryRow(`SELECT id, blog_name, blog_url, title, link, summary, published, author, tags, quality_signals, fetched_at
		FROM articles WHERE id = ?`, id).Scan(&a.ID, &a.BlogName, &a.BlogURL, &a.Title, &a.Link, &a.Summary,
		&a.Published, &a.Author, &tags, &signals, &a.FetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return article.Article{}, ErrNotFound
	}
	if err != nil {
		return article.Article{}, fmt.Errorf("querying article %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(tags), &a.Tags); err != nil {
		return article.Article{}, fmt.Errorf("decoding tags of %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(signals), &a.QualitySignals); err != nil {
		return article.Article{}, fmt.Errorf("decoding quality signals of %s: %w", id, err)
	}
	return a, nil
}

// Prune deletes articles older than the retention window. Articles without a
// published date are aged by when they were fetched.
func (s *Store) Prune(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format(timeLayout)
	res, err := s.writeDB.Exec(`
		DELETE FROM articles
		WHERE COALESCE(NULLIF(published, ''), fetched_at) < ?
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning articles: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns the article count and the database file size in bytes.
func (s *Store) Stats(dbPath string) (int, int64, error) {
	var count int
	if err := s.readDB.QueryRow("SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return 0, 0, fmt.Errorf("counting articles: %w", err)
	}
	info, err := os.Stat(dbPath)
	if err != nil {
		return count, 0, fmt.Errorf("stat %s: %w", dbPath, err)
	}
	return count, info.Size(), nil
}

func (s *Store) NeedsRefresh(interval time.Duration) bool {
	value, err := s.getMeta("last_refresh")
	if err != nil {
		return true
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return true
	}
	return time.Since(t) > interval
}

func (s *Store) SetLastRefresh() error {
	return s.setMeta("last_refresh", time.Now().Format(time.RFC3339))
}

// LastRefresh returns when feeds were last fetched.
func (s *Store) LastRefresh() (time.Time, error) {
	value, err := s.getMeta("last_refresh")
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, value)
}

func (s *Store) getMeta(key string) (string, error) {
	var value string
	err := s.readDB.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

func (s *Store) setMeta(key, value string) error {
	_, err := s.writeDB.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func nonNilSignals(m map[string]float64) map[string]float64 {
	if m == nil {
		return map[string]float64{}
	}
	return m
}
