package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anistark/crunchythread/internal/app"
	"github.com/anistark/crunchythread/internal/config"
	"github.com/anistark/crunchythread/internal/database"
	apihttp "github.com/anistark/crunchythread/internal/http"
	"github.com/gofiber/fiber/v2"
)

// fakeReddit serves canned search listings keyed by subreddit.
type fakeReddit struct {
	mu       sync.Mutex
	listings map[string]string
	statuses map[string]int
	requests []*http.Request
	server   *httptest.Server
}

func newFakeReddit(t *testing.T) *fakeReddit {
	t.Helper()

	fake := &fakeReddit{listings: map[string]string{}, statuses: map[string]int{}}
	fake.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fake.mu.Lock()
		fake.requests = append(fake.requests, r.Clone(r.Context()))
		community := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/r/"), "/search.json")
		status, hasStatus := fake.statuses[community]
		listing, hasListing := fake.listings[community]
		fake.mu.Unlock()

		if r.URL.Path == "/" {
			w.WriteHeader(http.StatusOK)
			return
		}
		if hasStatus {
			w.WriteHeader(status)
			return
		}
		if !hasListing {
			listing = `{"data":{"children":[]}}`
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(listing))
	}))
	t.Cleanup(fake.server.Close)
	return fake
}

func (f *fakeReddit) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeReddit) searchRequests() []*http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*http.Request, 0, len(f.requests))
	for _, req := range f.requests {
		if strings.HasSuffix(req.URL.Path, "/search.json") {
			out = append(out, req)
		}
	}
	return out
}

func setupTestApp(t *testing.T, reddit *fakeReddit, pushURL string) (*app.App, *fiber.App) {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	_, currentFile, _, _ := runtime.Caller(0)
	migrationsPath := filepath.Join(filepath.Dir(currentFile), "..", "..", "..", "migrations")
	if err := database.ApplyMigrations(db, migrationsPath); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if err := database.SeedDefaults(db); err != nil {
		t.Fatalf("seed defaults: %v", err)
	}

	cfg := config.Config{
		AppName:           "test-app",
		RedditBaseURL:     reddit.server.URL,
		UserAgent:         "crunchythread-test/1.0",
		SourceTimeout:     2 * time.Second,
		SourceConcurrency: 4,
		MappingCacheTTL:   time.Minute,
		MappingCacheSize:  16,
		PushWebhookURL:    pushURL,
	}
	wired := app.Wire(cfg, db, nil)
	server := apihttp.NewServer(wired)
	t.Cleanup(func() { _ = server.Shutdown() })

	return wired, server
}

func doJSON(t *testing.T, server *fiber.App, method string, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	switch value := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(value))
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	res, err := server.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}

	var payload map[string]any
	if res.Header.Get("Content-Type") != "" && strings.HasPrefix(res.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return res, payload
}

func listing(posts ...string) string {
	return `{"kind":"Listing","data":{"children":[` + strings.Join(posts, ",") + `]}}`
}

func post(id string, title string, subreddit string, ups int, createdUTC int64) string {
	encodedTitle, _ := json.Marshal(title)
	return `{"kind":"t3","data":{"id":"` + id + `","title":` + string(encodedTitle) + `,"subreddit":"` + subreddit +
		`","url":"https://www.reddit.com/r/` + subreddit + `/comments/` + id + `/","ups":` + strconv.Itoa(ups) +
		`,"num_comments":42,"created_utc":` + strconv.FormatInt(createdUTC, 10) + `}}`
}
