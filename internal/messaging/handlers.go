package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/anistark/crunchythread/internal/detect"
	"github.com/anistark/crunchythread/internal/search"
)

var queryEpisodePattern = regexp.MustCompile(`[Ee]pisode\s+(\d+)`)

type Detector interface {
	Detect(ctx context.Context, rawURL string, html string) (*detect.Signal, error)
}

type ThreadFinder interface {
	Best(ctx context.Context, title string, episode *int) *search.Thread
}

type DetectPayload struct {
	URL  string `json:"url"`
	HTML string `json:"html,omitempty"`
}

type AnimeDataResponse struct {
	Payload *detect.Signal `json:"payload"`
	Error   string         `json:"error,omitempty"`
}

type SearchPayload struct {
	Title   string `json:"title"`
	Query   string `json:"query"`
	Episode *int   `json:"episode,omitempty"`
}

type ThreadsResponse struct {
	Threads []search.Thread `json:"threads"`
	Error   string          `json:"error,omitempty"`
}

func GetAnimeDataHandler(detector Detector) HandlerFunc {
	return func(ctx context.Context, raw json.RawMessage) any {
		var payload DetectPayload
		if err := decodePayload(raw, &payload); err != nil {
			return AnimeDataResponse{Error: "invalid payload"}
		}

		signal, err := detector.Detect(ctx, payload.URL, payload.HTML)
		if err != nil {
			return AnimeDataResponse{Error: err.Error()}
		}
		return AnimeDataResponse{Payload: signal}
	}
}

func SearchThreadsHandler(finder ThreadFinder) HandlerFunc {
	return func(ctx context.Context, raw json.RawMessage) any {
		var payload SearchPayload
		if err := decodePayload(raw, &payload); err != nil {
			return ThreadsResponse{Threads: []search.Thread{}, Error: "invalid payload"}
		}
		return SearchThreads(ctx, finder, payload)
	}
}

// SearchThreads answers with the single best thread, or none.
func SearchThreads(ctx context.Context, finder ThreadFinder, payload SearchPayload) ThreadsResponse {
	episode := payload.Episode
	if episode != nil && *episode <= 0 {
		episode = nil
	}
	if episode == nil {
		episode = EpisodeFromQuery(payload.Query)
	}

	best := finder.Best(ctx, strings.TrimSpace(payload.Title), episode)
	if best == nil {
		return ThreadsResponse{Threads: []search.Thread{}}
	}
	return ThreadsResponse{Threads: []search.Thread{*best}}
}

// EpisodeFromQuery reads "Episode N" out of a free-text query.
func EpisodeFromQuery(query string) *int {
	match := queryEpisodePattern.FindStringSubmatch(query)
	if len(match) < 2 {
		return nil
	}
	value, err := strconv.Atoi(match[1])
	if err != nil || value <= 0 {
		return nil
	}
	return &value
}

// NewDefaultRouter registers the actions the page and popup send.
func NewDefaultRouter(detector Detector, finder ThreadFinder, logger *slog.Logger) *Router {
	router := NewRouter(logger)
	_ = router.Handle(ActionGetAnimeData, GetAnimeDataHandler(detector))
	_ = router.Handle(ActionSearchThreads, SearchThreadsHandler(finder))
	return router
}

func decodePayload(raw json.RawMessage, target any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, target)
}
