package search

import (
	"context"
	"errors"
	"fmt"
)

// Thread is one normalized discussion post.
type Thread struct {
	ID                    string `json:"id"`
	Title                 string `json:"title"`
	SourceName            string `json:"subreddit"`
	URL                   string `json:"url"`
	UpvoteCount           int    `json:"upvotes"`
	CommentCount          int    `json:"comments"`
	CreatedAtEpochSeconds int64  `json:"createdAt"`
}

// Client searches a single community.
type Client interface {
	Search(ctx context.Context, community string, query string) ([]Thread, error)
}

var ErrSourceUnavailable = errors.New("source unavailable")

// SourceUnavailableError covers every way one community search can fail.
// StatusCode is zero when no response was received.
type SourceUnavailableError struct {
	Community  string
	StatusCode int
	Err        error
}

func (e *SourceUnavailableError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("community %q unavailable: status %d", e.Community, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("community %q unavailable: %v", e.Community, e.Err)
	default:
		return fmt.Sprintf("community %q unavailable", e.Community)
	}
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Err
}

func (e *SourceUnavailableError) Is(target error) bool {
	return target == ErrSourceUnavailable
}
