package crunchyroll

import (
	"net/url"
	"strings"

	"github.com/anistark/crunchythread/internal/detect"
)

// Structural hooks of the Crunchyroll player page. The bare h1 stays last:
// it exists on every page and is the least specific.
var (
	titleSelectors = []string{
		`[data-testid="episodeTitle"]`,
		`[class*="EpisodeTitle"]`,
		`.erc-heading-h1`,
		`[class*="SeriesTitle"]`,
		`h1`,
	}
	episodeSelectors = []string{
		`[data-testid="episodeNumber"]`,
		`[class*="episodeNumber"]`,
		`[class*="EpisodeNumber"]`,
	}
)

type Extractor struct {
	allowedHost []string
}

func NewExtractor() *Extractor {
	return &Extractor{allowedHost: []string{"crunchyroll.com"}}
}

func (e *Extractor) Key() string {
	return "crunchyroll"
}

func (e *Extractor) Name() string {
	return "Crunchyroll"
}

func (e *Extractor) Kind() string {
	return detect.KindSite
}

func (e *Extractor) CanHandle(pageURL *url.URL) bool {
	if pageURL == nil {
		return false
	}
	return e.isAllowedHost(pageURL.Hostname())
}

// Detect resolves title and episode independently. og:title reads like
// "One Piece: Egghead Island (1123-Current) | E1148 - The Lost History".
func (e *Extractor) Detect(page *detect.Page) *detect.Signal {
	return detect.Guard(e.Key(), func() *detect.Signal {
		if page == nil || page.Doc == nil {
			return nil
		}

		ogTitle := detect.MetaContent(page.Doc, "og:title")
		seriesPart, episodePart, _ := strings.Cut(ogTitle, "|")

		title := titleFromSeriesPart(seriesPart)
		if title == "" {
			title = detect.FirstText(page.Doc, titleSelectors)
		}
		if title == "" && page.URL != nil {
			title = titleFromWatchPath(page.URL)
		}

		episode := detect.EpisodeFromText(episodePart)
		if episode == nil {
			episode = detect.FirstInteger(page.Doc, episodeSelectors)
		}
		if episode == nil && page.URL != nil {
			episode = detect.EpisodeFromPath(page.URL.Path)
		}

		season := detect.SeasonFromText(seriesPart)
		if season == nil {
			season = detect.SeasonFromText(page.Doc.Find("title").First().Text())
		}

		return detect.NewSignal(title, episode, season)
	})
}

func (e *Extractor) isAllowedHost(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	for _, allowed := range e.allowedHost {
		allowed = strings.ToLower(strings.TrimSpace(allowed))
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

func titleFromSeriesPart(seriesPart string) string {
	seriesPart = strings.TrimSpace(seriesPart)
	if seriesPart == "" || strings.HasPrefix(seriesPart, ":") {
		return ""
	}
	name, _, _ := strings.Cut(seriesPart, ":")
	return detect.CleanText(name)
}

// titleFromWatchPath reads /watch/<slug> or /watch/<id>/<slug>.
func titleFromWatchPath(pageURL *url.URL) string {
	segments := strings.Split(strings.Trim(pageURL.EscapedPath(), "/"), "/")
	for index, segment := range segments {
		if segment != "watch" {
			continue
		}
		rest := segments[index+1:]
		if len(rest) == 0 {
			return ""
		}
		slug := rest[0]
		if len(rest) >= 2 && rest[1] != "" {
			slug = rest[1]
		}
		if decoded, err := url.PathUnescape(slug); err == nil {
			slug = decoded
		}
		return detect.CleanText(strings.ReplaceAll(slug, "-", " "))
	}
	return ""
}
