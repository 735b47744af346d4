package detect

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	titleSeparatorPattern = regexp.MustCompile(`[-|]`)
	titleEpisodeSuffix    = regexp.MustCompile(`(?i)\s*(?:\bs\d+\s*|\b)(?:episode|ep\.?|e)\s*\d+\b`)
)

var genericTitleMetaKeys = []string{"og:title", "title", "description"}

// Generic reads only signals every site has: meta tags, the document title,
// headings and the address path.
type Generic struct{}

func NewGeneric() *Generic {
	return &Generic{}
}

func (g *Generic) Key() string {
	return "generic"
}

func (g *Generic) Name() string {
	return "Generic"
}

func (g *Generic) Kind() string {
	return KindGeneric
}

func (g *Generic) CanHandle(*url.URL) bool {
	return true
}

func (g *Generic) Detect(page *Page) *Signal {
	return Guard(g.Key(), func() *Signal {
		if page == nil || page.Doc == nil {
			return nil
		}

		var title string
		for _, key := range genericTitleMetaKeys {
			if title = cleanMetaTitle(MetaContent(page.Doc, key)); title != "" {
				break
			}
		}

		documentTitle := CleanText(page.Doc.Find("title").First().Text())
		if title == "" {
			title = cleanMetaTitle(documentTitle)
		}

		return NewSignal(title, g.episode(page, documentTitle), SeasonFromText(documentTitle))
	})
}

func (g *Generic) episode(page *Page, documentTitle string) *int {
	if episode := EpisodeFromText(documentTitle); episode != nil {
		return episode
	}
	if episode := EpisodeFromText(MetaContent(page.Doc, "description")); episode != nil {
		return episode
	}
	if page.URL != nil {
		if episode := EpisodeFromPath(page.URL.Path); episode != nil {
			return episode
		}
	}

	var found *int
	page.Doc.Find("h1, h2, h3").EachWithBreak(func(_ int, heading *goquery.Selection) bool {
		found = EpisodeFromText(heading.Text())
		return found == nil
	})
	return found
}

func cleanMetaTitle(content string) string {
	if content == "" {
		return ""
	}
	cleaned := strings.TrimSpace(titleSeparatorPattern.Split(content, 2)[0])
	cleaned = titleEpisodeSuffix.ReplaceAllString(cleaned, "")
	return CleanText(cleaned)
}
