package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookcatalog/internal/catalog"
	"github.com/mrlokans/bookcatalog/internal/exporters"
)

// fakeQueue records enqueued tasks instead of running them.
type fakeQueue struct {
	tasks []backlite.Task
	err   error
}

func (q *fakeQueue) Enqueue(task backlite.Task) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.tasks = append(q.tasks, task)
	return fmt.Sprintf("task-%d", len(q.tasks)), nil
}

func (q *fakeQueue) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	for i := range q.tasks {
		if taskID == fmt.Sprintf("task-%d", i+1) {
			return backlite.TaskStatusPending, nil
		}
	}
	return backlite.TaskStatusNotFound, nil
}

type fakePinger struct {
	err error
}

func (p fakePinger) Ping() error { return p.err }

type testServer struct {
	router *gin.Engine
	repo   *catalog.Repository
	store  *catalog.MemoryStore
	queue  *fakeQueue
}

type serverOption func(*RouterConfig)

func withoutQueue() serverOption {
	return func(cfg *RouterConfig) { cfg.TaskQueue = nil }
}

func setupTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := catalog.NewMemoryStore()
	repo := catalog.NewRepository(store)
	queue := &fakeQueue{}

	cfg := RouterConfig{
		Catalog:       repo,
		Database:      fakePinger{},
		TaskQueue:     queue,
		TaskWorkers:   1,
		Exporter:      exporters.NewMarkdownExporter(t.TempDir()),
		MaxCoverBytes: 1 << 10,
		Version:       "test",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &testServer{router: NewRouter(cfg), repo: repo, store: store, queue: queue}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if _, raw := body.([]byte); !raw && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (s *testServer) createBook(t *testing.T, title, author string, year int, genreIDs ...string) *catalog.Book {
	t.Helper()
	book, err := s.repo.CreateBook(context.Background(), catalog.BookInput{
		Title:         title,
		Author:        author,
		PublishedYear: &year,
		Genres:        catalog.GenreRefs(genreIDs...),
	})
	require.NoError(t, err)
	return book
}

func (s *testServer) createGenre(t *testing.T, name string) *catalog.Genre {
	t.Helper()
	genre, err := s.repo.CreateGenre(context.Background(), name, nil)
	require.NoError(t, err)
	return genre
}

var errDiskFull = errors.New("disk full")

var pngData = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")
