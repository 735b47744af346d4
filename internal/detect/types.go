package detect

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	KindSite    = "site"
	KindGeneric = "generic"
)

// Signal is what the page says is being watched. A nil *Signal means
// detection failed; a non-nil Signal always carries a non-empty Title.
type Signal struct {
	Title        string `json:"title"`
	Episode      *int   `json:"episode,omitempty"`
	SeasonNumber *int   `json:"seasonNumber,omitempty"`
}

// Page is the parsed document plus the address it was loaded from.
type Page struct {
	URL *url.URL
	Doc *goquery.Document
}

func NewPage(rawURL string, html string) (*Page, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return &Page{URL: parsed, Doc: doc}, nil
}

type Extractor interface {
	Key() string
	Name() string
	Kind() string
	CanHandle(pageURL *url.URL) bool
	Detect(page *Page) *Signal
}
