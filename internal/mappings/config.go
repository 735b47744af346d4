package mappings

import (
	"fmt"
	"strings"
)

type File struct {
	Mappings []Entry `yaml:"mappings"`
}

// Entry maps one show, plus its alternative titles, to the communities
// searched for it. Community order is preserved.
type Entry struct {
	Title       string   `yaml:"title"`
	Aliases     []string `yaml:"aliases"`
	Communities []string `yaml:"communities"`
	Enabled     *bool    `yaml:"enabled"`
}

func (e *Entry) normalizeAndValidate() error {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return fmt.Errorf("title is required")
	}

	e.Aliases = compact(e.Aliases)
	e.Communities = compact(e.Communities)
	for index, community := range e.Communities {
		e.Communities[index] = strings.TrimPrefix(community, "r/")
	}
	if len(e.Communities) == 0 {
		return fmt.Errorf("%s: communities are required", e.Title)
	}

	return nil
}

func (e *Entry) isEnabled() bool {
	if e.Enabled == nil {
		return true
	}
	return *e.Enabled
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
