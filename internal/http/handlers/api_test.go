package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHealthEndpoints(t *testing.T) {
	reddit := newFakeReddit(t)
	_, server := setupTestApp(t, reddit, "")

	for _, path := range []string{"/health", "/v1/health"} {
		res, payload := doJSON(t, server, http.MethodGet, path, nil)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, res.StatusCode)
		}
		if payload["status"] != "ok" || payload["db"] != "up" {
			t.Fatalf("%s: unexpected payload %v", path, payload)
		}
	}

	res, payload := doJSON(t, server, http.MethodGet, "/v1/sources/health", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	items, _ := payload["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected one source, got %v", payload)
	}
	first, _ := items[0].(map[string]any)
	if first["key"] != "reddit" || first["healthy"] != true {
		t.Fatalf("unexpected source health %v", first)
	}
}

func TestExtractorsListsPriorityOrder(t *testing.T) {
	_, server := setupTestApp(t, newFakeReddit(t), "")

	res, payload := doJSON(t, server, http.MethodGet, "/v1/extractors", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	items, _ := payload["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("expected crunchyroll and generic, got %v", payload)
	}
	last, _ := items[len(items)-1].(map[string]any)
	if last["key"] != "generic" {
		t.Fatalf("expected generic extractor last, got %v", last)
	}
}

func TestCommunitiesLookup(t *testing.T) {
	_, server := setupTestApp(t, newFakeReddit(t), "")

	res, payload := doJSON(t, server, http.MethodGet, "/v1/communities?title=JJK", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	communities, _ := payload["communities"].([]any)
	if len(communities) != 2 || communities[0] != "JuJutsuKaisen" {
		t.Fatalf("unexpected communities %v", payload)
	}

	res, payload = doJSON(t, server, http.MethodGet, "/v1/communities?title=Unmapped+Show", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if communities, _ := payload["communities"].([]any); len(communities) != 0 {
		t.Fatalf("expected no communities, got %v", payload)
	}

	res, _ = doJSON(t, server, http.MethodGet, "/v1/communities", nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing title, got %d", res.StatusCode)
	}
}

func TestMappingsList(t *testing.T) {
	_, server := setupTestApp(t, newFakeReddit(t), "")

	res, payload := doJSON(t, server, http.MethodGet, "/v1/mappings", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if items, _ := payload["items"].([]any); len(items) == 0 {
		t.Fatalf("expected seeded mappings, got %v", payload)
	}
}

func TestThreadSearchPicksEpisodeMatch(t *testing.T) {
	reddit := newFakeReddit(t)
	reddit.listings["JuJutsuKaisen"] = listing(
		post("aaa111", "Jujutsu Kaisen Season 2 is peak", "JuJutsuKaisen", 800, 1_700_000_000),
		post("bbb222", "Jujutsu Kaisen - Episode 23 Discussion", "JuJutsuKaisen", 150, 1_700_000_100),
	)
	reddit.statuses["anime"] = http.StatusServiceUnavailable
	_, server := setupTestApp(t, reddit, "")

	res, payload := doJSON(t, server, http.MethodPost, "/v1/threads/search", map[string]any{
		"title":   "Jujutsu Kaisen",
		"query":   "Jujutsu Kaisen: Episode 23",
		"episode": 23,
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if _, hasError := payload["error"]; hasError {
		t.Fatalf("expected no error, got %v", payload)
	}
	threads, _ := payload["threads"].([]any)
	if len(threads) != 1 {
		t.Fatalf("expected exactly one thread, got %v", payload)
	}
	best, _ := threads[0].(map[string]any)
	if best["id"] != "bbb222" || best["subreddit"] != "JuJutsuKaisen" {
		t.Fatalf("expected episode discussion to win, got %v", best)
	}
	if best["upvotes"] != float64(150) || best["comments"] != float64(42) || best["createdAt"] != float64(1_700_000_100) {
		t.Fatalf("unexpected thread fields %v", best)
	}

	requests := reddit.searchRequests()
	if len(requests) != 2 {
		t.Fatalf("expected one search per mapped community, got %d", len(requests))
	}
	for _, req := range requests {
		query := req.URL.Query()
		if query.Get("q") != "Jujutsu Kaisen: Episode 23" {
			t.Fatalf("unexpected query %q", query.Get("q"))
		}
		if query.Get("restrict_sr") != "on" || query.Get("sort") != "relevance" || query.Get("t") != "week" || query.Get("limit") != "5" {
			t.Fatalf("unexpected search parameters %v", query)
		}
		if req.Header.Get("User-Agent") != "crunchythread-test/1.0" {
			t.Fatalf("unexpected user agent %q", req.Header.Get("User-Agent"))
		}
	}
}

func TestThreadSearchDerivesEpisodeFromQuery(t *testing.T) {
	reddit := newFakeReddit(t)
	reddit.listings["OnePiece"] = listing(
		post("old", "One Piece chapter talk", "OnePiece", 5000, 1_700_000_000),
		post("ep", "One Piece Episode 1148 Discussion", "OnePiece", 10, 1_700_000_000),
	)
	_, server := setupTestApp(t, reddit, "")

	_, payload := doJSON(t, server, http.MethodPost, "/v1/threads/search", map[string]any{
		"title": "One Piece",
		"query": "One Piece: Episode 1148",
	})
	threads, _ := payload["threads"].([]any)
	if len(threads) != 1 {
		t.Fatalf("expected one thread, got %v", payload)
	}
	if best, _ := threads[0].(map[string]any); best["id"] != "ep" {
		t.Fatalf("expected episode thread, got %v", best)
	}
	if q := reddit.searchRequests()[0].URL.Query().Get("q"); q != "One Piece: Episode 1148" {
		t.Fatalf("expected episode in outgoing query, got %q", q)
	}
}

func TestThreadSearchUnmappedTitleMakesNoRequests(t *testing.T) {
	reddit := newFakeReddit(t)
	_, server := setupTestApp(t, reddit, "")

	res, payload := doJSON(t, server, http.MethodPost, "/v1/threads/search", map[string]any{
		"title": "Some Obscure Show",
		"query": "Some Obscure Show: Episode 2",
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	threads, ok := payload["threads"].([]any)
	if !ok || len(threads) != 0 {
		t.Fatalf("expected empty threads list, got %v", payload)
	}
	if reddit.requestCount() != 0 {
		t.Fatalf("expected no outbound requests, got %d", reddit.requestCount())
	}
}

func TestThreadSearchAllSourcesDownIsEmpty(t *testing.T) {
	reddit := newFakeReddit(t)
	reddit.statuses["Frieren"] = http.StatusTooManyRequests
	reddit.statuses["anime"] = http.StatusInternalServerError
	_, server := setupTestApp(t, reddit, "")

	res, payload := doJSON(t, server, http.MethodPost, "/v1/threads/search", map[string]any{"title": "Frieren", "query": "Frieren"})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if threads, _ := payload["threads"].([]any); len(threads) != 0 {
		t.Fatalf("expected no threads, got %v", payload)
	}
}

func TestThreadSearchRejectsMalformedBody(t *testing.T) {
	_, server := setupTestApp(t, newFakeReddit(t), "")

	res, payload := doJSON(t, server, http.MethodPost, "/v1/threads/search", `{"title":`)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
	if payload["message"] != "invalid json body" {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestDetectWithHTMLPushesAnimeData(t *testing.T) {
	pushed := make(chan map[string]any, 1)
	listener := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var message map[string]any
		_ = json.NewDecoder(r.Body).Decode(&message)
		select {
		case pushed <- message:
		default:
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer listener.Close()

	_, server := setupTestApp(t, newFakeReddit(t), listener.URL)

	res, payload := doJSON(t, server, http.MethodPost, "/v1/detect", map[string]any{
		"url":  "https://www.crunchyroll.com/watch/GEVUZ1K3X/the-last-stand",
		"html": `<html><head><meta property="og:title" content="One Piece: Egghead Arc | E1148 - The Last Stand"></head></html>`,
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	signal, _ := payload["payload"].(map[string]any)
	if signal["title"] != "One Piece" || signal["episode"] != float64(1148) {
		t.Fatalf("unexpected signal %v", payload)
	}

	select {
	case message := <-pushed:
		if message["action"] != "ANIME_DATA" {
			t.Fatalf("unexpected push %v", message)
		}
		body, _ := message["payload"].(map[string]any)
		if body["title"] != "One Piece" {
			t.Fatalf("unexpected push payload %v", message)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("expected ANIME_DATA push")
	}
}

func TestDetectWithoutSignalReturnsNullPayload(t *testing.T) {
	_, server := setupTestApp(t, newFakeReddit(t), "")

	res, payload := doJSON(t, server, http.MethodPost, "/v1/detect", map[string]any{
		"url":  "https://example.com/",
		"html": "<html><body><p>hello</p></body></html>",
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	value, present := payload["payload"]
	if !present || value != nil {
		t.Fatalf("expected null payload, got %v", payload)
	}
}

func TestDetectValidatesInput(t *testing.T) {
	_, server := setupTestApp(t, newFakeReddit(t), "")

	res, _ := doJSON(t, server, http.MethodPost, "/v1/detect", map[string]any{"html": "<html></html>"})
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing url, got %d", res.StatusCode)
	}

	res, _ = doJSON(t, server, http.MethodPost, "/v1/detect", map[string]any{"url": "chrome://newtab", "html": "<html></html>"})
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unsupported address, got %d", res.StatusCode)
	}
}

func TestMessagesEnvelope(t *testing.T) {
	reddit := newFakeReddit(t)
	reddit.listings["Dandadan"] = listing(post("dd3", "Dandadan - Episode 3 discussion", "Dandadan", 300, 1_700_000_000))
	_, server := setupTestApp(t, reddit, "")

	_, payload := doJSON(t, server, http.MethodPost, "/v1/messages", map[string]any{
		"action": "GET_ANIME_DATA",
		"payload": map[string]any{
			"url":  "https://www.crunchyroll.com/watch/GG1U2Q5X/its-a-space-alien-isnt-it",
			"html": `<html><head><meta property="og:title" content="Dandadan | E3 - It's a Space Alien, Isn't It?!"></head></html>`,
		},
	})
	signal, _ := payload["payload"].(map[string]any)
	if signal["title"] != "Dandadan" || signal["episode"] != float64(3) {
		t.Fatalf("unexpected GET_ANIME_DATA response %v", payload)
	}

	_, payload = doJSON(t, server, http.MethodPost, "/v1/messages", map[string]any{
		"action":  "SEARCH_THREADS",
		"payload": map[string]any{"title": "Dandadan", "query": "Dandadan: Episode 3", "episode": 3},
	})
	threads, _ := payload["threads"].([]any)
	if len(threads) != 1 {
		t.Fatalf("unexpected SEARCH_THREADS response %v", payload)
	}

	_, payload = doJSON(t, server, http.MethodPost, "/v1/messages", map[string]any{"action": "OPEN_POPUP"})
	if payload["error"] != "unknown action" {
		t.Fatalf("expected unknown action error, got %v", payload)
	}

	_, payload = doJSON(t, server, http.MethodPost, "/v1/messages", map[string]any{"action": "SEARCH_THREADS", "payload": "not an object"})
	if threads, ok := payload["threads"].([]any); !ok || len(threads) != 0 || payload["error"] == nil {
		t.Fatalf("expected soft error response, got %v", payload)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, server := setupTestApp(t, newFakeReddit(t), "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	res, err := server.Test(req)
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
}
