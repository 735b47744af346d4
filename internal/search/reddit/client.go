package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/anistark/crunchythread/internal/metrics"
	"github.com/anistark/crunchythread/internal/search"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://www.reddit.com"
	defaultUserAgent = "crunchythread/0.1.0"

	// Anonymous search only sees the first page; five results keep ranking cheap.
	resultLimit = 5
	timeWindow  = "week"
)

type Client struct {
	baseURL    string
	siteRoot   *url.URL
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

type Options struct {
	BaseURL           string
	UserAgent         string
	HTTPClient        *http.Client
	RequestsPerMinute int
	Logger            *slog.Logger
}

func NewClient() *Client {
	return NewClientWithOptions(Options{})
}

func NewClientWithOptions(opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	siteRoot, err := url.Parse(baseURL)
	if err != nil || !siteRoot.IsAbs() {
		siteRoot, _ = url.Parse(defaultBaseURL)
	}

	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	limit := rate.Inf
	burst := 1
	if opts.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(opts.RequestsPerMinute))
		burst = max(1, opts.RequestsPerMinute/10)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    baseURL,
		siteRoot:   siteRoot,
		userAgent:  userAgent,
		httpClient: client,
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logger,
	}
}

func (c *Client) Key() string {
	return "reddit"
}

func (c *Client) Name() string {
	return "Reddit"
}

func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request site root: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("unexpected status: %d", res.StatusCode)
	}

	return nil
}

// Search queries one subreddit. Every failure comes back as a
// *search.SourceUnavailableError; nothing is retried here.
func (c *Client) Search(ctx context.Context, community string, query string) ([]search.Thread, error) {
	community = strings.TrimSpace(community)
	started := time.Now()

	threads, err := c.search(ctx, community, query)

	metrics.SourceSearchDuration.WithLabelValues(community).Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.SourceSearches.WithLabelValues(community, "unavailable").Inc()
		return nil, err
	}
	metrics.SourceSearches.WithLabelValues(community, "ok").Inc()
	return threads, nil
}

func (c *Client) search(ctx context.Context, community string, query string) ([]search.Thread, error) {
	if community == "" {
		return nil, &search.SourceUnavailableError{Err: fmt.Errorf("community is required")}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &search.SourceUnavailableError{Community: community, Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	searchURL := c.searchURL(community, query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, &search.SourceUnavailableError{Community: community, Err: fmt.Errorf("create search request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("searching community", "community", community, "url", searchURL)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &search.SourceUnavailableError{Community: community, Err: fmt.Errorf("search request failed: %w", err)}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &search.SourceUnavailableError{Community: community, StatusCode: res.StatusCode}
	}

	var payload listingResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, &search.SourceUnavailableError{Community: community, Err: fmt.Errorf("decode search response: %w", err)}
	}

	threads := make([]search.Thread, 0, len(payload.Data.Children))
	for _, child := range payload.Data.Children {
		thread, ok := c.toThread(child.Data, community)
		if !ok {
			continue
		}
		threads = append(threads, thread)
	}

	return threads, nil
}

func (c *Client) searchURL(community string, query string) string {
	values := url.Values{}
	values.Set("q", query)
	values.Set("restrict_sr", "on")
	values.Set("sort", "relevance")
	values.Set("t", timeWindow)
	values.Set("limit", strconv.Itoa(resultLimit))

	return c.baseURL + "/r/" + url.PathEscape(community) + "/search.json?" + values.Encode()
}

func (c *Client) toThread(item *post, community string) (search.Thread, bool) {
	if item == nil {
		return search.Thread{}, false
	}

	id := strings.TrimSpace(item.ID)
	title := strings.TrimSpace(item.Title)
	link := c.absoluteURL(item.URL)
	if id == "" || title == "" || link == "" {
		return search.Thread{}, false
	}

	sourceName := strings.TrimSpace(item.Subreddit)
	if sourceName == "" {
		sourceName = community
	}

	return search.Thread{
		ID:                    id,
		Title:                 title,
		SourceName:            sourceName,
		URL:                   link,
		UpvoteCount:           nonNegative(item.Ups),
		CommentCount:          nonNegative(item.NumComments),
		CreatedAtEpochSeconds: int64(item.CreatedUTC),
	}, true
}

func (c *Client) absoluteURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	ref, err := url.Parse(trimmed)
	if err != nil {
		return ""
	}
	if !ref.IsAbs() {
		ref = c.siteRoot.ResolveReference(ref)
	}
	if ref.Host == "" {
		return ""
	}
	return ref.String()
}

func nonNegative(value *float64) int {
	if value == nil || *value < 0 {
		return 0
	}
	return int(*value)
}

type listingResponse struct {
	Data struct {
		Children []struct {
			Data *post `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type post struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Subreddit   string   `json:"subreddit"`
	URL         string   `json:"url"`
	Ups         *float64 `json:"ups"`
	NumComments *float64 `json:"num_comments"`
	CreatedUTC  float64  `json:"created_utc"`
}
