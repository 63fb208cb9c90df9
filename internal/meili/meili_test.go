package meili

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/matheuskafuri/blogsearch/internal/article"
	"github.com/matheuskafuri/blogsearch/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentsNullsEmptyFields(t *testing.T) {
	docs := Documents([]article.Article{
		{ID: "a", Title: "Full", Summary: "s", Published: "2024-01-01T00:00:00", Author: "me", Tags: []string{"go"}},
		{ID: "b", Title: "Sparse"},
	})
	require.Len(t, docs, 2)

	assert.Equal(t, "s", docs[0]["summary"])
	assert.Equal(t, "2024-01-01T00:00:00", docs[0]["published"])
	assert.Equal(t, "me", docs[0]["author"])

	assert.Nil(t, docs[1]["summary"])
	assert.Nil(t, docs[1]["published"])
	assert.Nil(t, docs[1]["author"])
	assert.Equal(t, []string{}, docs[1]["tags"])

	raw, err := json.Marshal(docs[1])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"published":null`)
}

func TestDecodeHits(t *testing.T) {
	hits := []interface{}{
		map[string]interface{}{
			"id":        "a",
			"title":     "Hello",
			"published": nil,
			"author":    nil,
			"summary":   "body",
			"tags":      []interface{}{"go"},
		},
	}

	got, err := decodeHits(hits)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "", got[0].Published)
	assert.Equal(t, "", got[0].Author)
	assert.Equal(t, []string{"go"}, got[0].Tags)
}

func TestDecodeHitsEmpty(t *testing.T) {
	got, err := decodeHits(nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearchShortCircuits(t *testing.T) {
	// host is never contacted for these inputs
	c := New("http://127.0.0.1:1", "", "articles", nil)

	got, err := c.Search(context.Background(), "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = c.Search(context.Background(), "go", -1)
	assert.ErrorIs(t, err, search.ErrInvalidLimit)

	got, err = c.Search(context.Background(), "go", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchAgainstServer(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"hits": [{"id": "a1", "blog_name": "Julia Evans", "title": "Debugging DNS", "summary": null, "published": null, "author": null, "tags": []}],
			"query": "dns",
			"processingTimeMs": 1,
			"limit": 5,
			"offset": 0,
			"estimatedTotalHits": 1
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "", "articles", nil)
	got, err := c.Search(context.Background(), "dns", 500)
	require.NoError(t, err)

	assert.Equal(t, "/indexes/articles/search", gotPath)
	assert.Equal(t, "dns", gotBody["q"])
	assert.EqualValues(t, search.MaxLimit, gotBody["limit"])
	require.Len(t, got, 1)
	assert.Equal(t, "a1", got[0].ID)
	assert.Empty(t, got[0].Published)
}

func TestSearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"boom","code":"internal","type":"internal","link":""}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "", "articles", nil)
	_, err := c.Search(context.Background(), "dns", 5)
	assert.Error(t, err)
}

// fakeMeili answers the index lifecycle calls Reindex makes and records what
// it was sent. Tasks of a kind listed in fail finish as failed.
type fakeMeili struct {
	mu       sync.Mutex
	calls    []string
	created  map[string]interface{}
	attrs    []string
	batches  []int
	tasks    map[int64]string
	nextTask int64
	fail     map[string]bool
}

func newFakeMeili(t *testing.T, fail ...string) (*fakeMeili, *httptest.Server) {
	f := &fakeMeili{tasks: map[int64]string{}, fail: map[string]bool{}}
	for _, kind := range fail {
		f.fail[kind] = true
	}
	srv := httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeMeili) enqueue(w http.ResponseWriter, kind string) {
	f.nextTask++
	f.tasks[f.nextTask] = kind
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintf(w, `{"taskUid":%d,"indexUid":"articles","status":"enqueued","type":%q}`, f.nextTask, kind)
}

func (f *fakeMeili) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)

	switch {
	case r.Method == http.MethodDelete && r.URL.Path == "/indexes/articles":
		f.enqueue(w, "indexDeletion")
	case r.Method == http.MethodPost && r.URL.Path == "/indexes":
		_ = json.NewDecoder(r.Body).Decode(&f.created)
		f.enqueue(w, "indexCreation")
	case r.Method == http.MethodPut && r.URL.Path == "/indexes/articles/settings/searchable-attributes":
		_ = json.NewDecoder(r.Body).Decode(&f.attrs)
		f.enqueue(w, "settingsUpdate")
	case r.Method == http.MethodPost && r.URL.Path == "/indexes/articles/documents":
		var docs []map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&docs)
		f.batches = append(f.batches, len(docs))
		f.enqueue(w, "documentAdditionOrUpdate")
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/tasks/"):
		uid, _ := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/tasks/"), 10, 64)
		kind := f.tasks[uid]
		w.Header().Set("Content-Type", "application/json")
		if f.fail[kind] {
			fmt.Fprintf(w, `{"uid":%d,"indexUid":"articles","status":"failed","type":%q,"error":{"message":"invalid document","code":"invalid_document_id","type":"invalid_request","link":""}}`, uid, kind)
			return
		}
		fmt.Fprintf(w, `{"uid":%d,"indexUid":"articles","status":"succeeded","type":%q}`, uid, kind)
	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"not found","code":"not_found","type":"invalid_request","link":""}`))
	}
}

func corpusOf(n int) []article.Article {
	out := make([]article.Article, n)
	for i := range n {
		out[i] = article.Article{ID: fmt.Sprintf("a%04d", i), BlogName: "Dan Luu", Title: fmt.Sprintf("Post %d", i)}
	}
	return out
}

func TestReindex(t *testing.T) {
	f, srv := newFakeMeili(t)
	c := New(srv.URL, "", "articles", nil)

	require.NoError(t, c.Reindex(context.Background(), corpusOf(1201)))

	f.mu.Lock()
	defer f.mu.Unlock()

	require.GreaterOrEqual(t, len(f.calls), 3)
	assert.Equal(t, "DELETE /indexes/articles", f.calls[0])
	assert.Equal(t, "articles", f.created["uid"])
	assert.Equal(t, "id", f.created["primaryKey"])
	assert.Equal(t, SearchableAttributes, f.attrs)
	assert.Equal(t, []int{500, 500, 201}, f.batches)

	// every enqueued task is awaited before the next write
	var writes, waits int
	for _, call := range f.calls {
		if strings.HasPrefix(call, "GET /tasks/") {
			waits++
		} else {
			writes++
		}
	}
	assert.Equal(t, 6, writes)
	assert.Equal(t, writes, waits)
}

func TestReindexFailedTask(t *testing.T) {
	f, srv := newFakeMeili(t, "documentAdditionOrUpdate")
	c := New(srv.URL, "", "articles", nil)

	err := c.Reindex(context.Background(), corpusOf(1201))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document batch failed")
	assert.Contains(t, err.Error(), "invalid document")

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, []int{500}, f.batches, "indexing should stop at the first failed batch")
}

func TestReindexFailedCreation(t *testing.T) {
	_, srv := newFakeMeili(t, "indexCreation")
	c := New(srv.URL, "", "articles", nil)

	err := c.Reindex(context.Background(), corpusOf(3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index creation failed")
}

func TestReindexCanceled(t *testing.T) {
	f, srv := newFakeMeili(t)
	c := New(srv.URL, "", "articles", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, c.Reindex(ctx, corpusOf(10)))

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Empty(t, f.batches)
}
