package detect

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	episodeTokenPattern = regexp.MustCompile(`(?i)(?:\bs\d+\s*|\b)(?:episode|ep\.?|e)\s*(\d+)`)
	pathEpisodePattern  = regexp.MustCompile(`(?i)(?:^|[/_-])(?:episode|ep)[/_-]?(\d+)`)
	seasonPattern       = regexp.MustCompile(`(?i)\bseason\s*(\d+)|\bs(\d+)\s*e\d+`)
	integerPattern      = regexp.MustCompile(`\d+`)
)

// NewSignal returns nil unless title survives cleaning.
func NewSignal(title string, episode *int, season *int) *Signal {
	title = CleanText(title)
	if title == "" {
		return nil
	}
	return &Signal{Title: title, Episode: episode, SeasonNumber: season}
}

// Guard runs an extraction and turns a panic into a failed detection.
func Guard(key string, fn func() *Signal) (signal *Signal) {
	defer func() {
		if recovered := recover(); recovered != nil {
			slog.Warn("extractor panicked", "extractor", key, "panic", recovered)
			signal = nil
		}
	}()
	return fn()
}

func CleanText(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// MetaContent looks a meta tag up by property first, then by name.
func MetaContent(doc *goquery.Document, key string) string {
	if doc == nil {
		return ""
	}
	for _, attr := range []string{"property", "name"} {
		content, ok := doc.Find(`meta[` + attr + `="` + key + `"]`).First().Attr("content")
		if ok {
			if trimmed := strings.TrimSpace(content); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// FirstText returns the trimmed text of the first selector that yields any.
func FirstText(doc *goquery.Document, selectors []string) string {
	if doc == nil {
		return ""
	}
	for _, selector := range selectors {
		selection := doc.Find(selector).First()
		if selection.Length() == 0 {
			continue
		}
		if text := CleanText(selection.Text()); text != "" {
			return text
		}
	}
	return ""
}

// FirstInteger probes selectors for an element whose text holds a positive integer.
func FirstInteger(doc *goquery.Document, selectors []string) *int {
	if doc == nil {
		return nil
	}
	for _, selector := range selectors {
		selection := doc.Find(selector).First()
		if selection.Length() == 0 {
			continue
		}
		if value := positive(integerPattern.FindString(selection.Text())); value != nil {
			return value
		}
	}
	return nil
}

// EpisodeFromText finds "E12", "S2E12", "Ep. 12" or "Episode 12".
func EpisodeFromText(text string) *int {
	for _, match := range episodeTokenPattern.FindAllStringSubmatch(text, -1) {
		if value := positive(match[1]); value != nil {
			return value
		}
	}
	return nil
}

func EpisodeFromPath(path string) *int {
	for _, match := range pathEpisodePattern.FindAllStringSubmatch(path, -1) {
		if value := positive(match[1]); value != nil {
			return value
		}
	}
	return nil
}

// SeasonFromText reads "Season 2" or the season half of "S2E12".
func SeasonFromText(text string) *int {
	match := seasonPattern.FindStringSubmatch(text)
	if match == nil {
		return nil
	}
	if match[1] != "" {
		return positive(match[1])
	}
	return positive(match[2])
}

func positive(raw string) *int {
	if raw == "" {
		return nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return nil
	}
	return &value
}
