package ranking

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/anistark/crunchythread/internal/search"
)

const (
	// EpisodeMatchBonus outweighs any realistic upvote count, so a thread
	// naming the episode beats an unrelated popular one.
	EpisodeMatchBonus = 10000
	// DiscussionBonus is below EpisodeMatchBonus and never overrides it.
	DiscussionBonus = 1000
)

var discussionPattern = regexp.MustCompile(`(?i)discussion|episode|thread|talk`)

type Scored struct {
	Thread search.Thread
	Score  int
}

func Score(thread search.Thread, episode *int) int {
	score := thread.UpvoteCount
	if episode != nil && strings.Contains(thread.Title, strconv.Itoa(*episode)) {
		score += EpisodeMatchBonus
	}
	if discussionPattern.MatchString(thread.Title) {
		score += DiscussionBonus
	}
	return score
}

// Rank returns the single best thread, or nil when there is nothing to rank.
// Equal scores go to the newer thread, then to the smaller id.
func Rank(threads []search.Thread, episode *int) *search.Thread {
	if len(threads) == 0 {
		return nil
	}

	scored := make([]Scored, 0, len(threads))
	for _, thread := range threads {
		scored = append(scored, Scored{Thread: thread, Score: Score(thread, episode)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		left, right := scored[i], scored[j]
		if left.Score != right.Score {
			return left.Score > right.Score
		}
		if left.Thread.CreatedAtEpochSeconds != right.Thread.CreatedAtEpochSeconds {
			return left.Thread.CreatedAtEpochSeconds > right.Thread.CreatedAtEpochSeconds
		}
		return left.Thread.ID < right.Thread.ID
	})

	best := scored[0].Thread
	return &best
}
