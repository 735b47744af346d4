package detect

import (
	"fmt"
	"net/url"
	"sync"
)

// Registry picks the extractor for a page. Site extractors are probed in
// order; the generic extractor answers for every page nobody claims.
type Registry struct {
	mu         sync.RWMutex
	extractors []Extractor
	generic    Extractor
}

type Descriptor struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Priority int    `json:"priority"`
}

func NewRegistry(generic Extractor, extractors ...Extractor) *Registry {
	list := make([]Extractor, 0, len(extractors))
	for _, extractor := range extractors {
		if extractor != nil {
			list = append(list, extractor)
		}
	}
	return &Registry{extractors: list, generic: generic}
}

// Register inserts the extractor ahead of every existing one.
func (r *Registry) Register(extractor Extractor) error {
	if extractor == nil {
		return fmt.Errorf("extractor is nil")
	}

	key := extractor.Key()
	if key == "" {
		return fmt.Errorf("extractor key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.generic != nil && r.generic.Key() == key {
		return fmt.Errorf("extractor %q already registered", key)
	}
	for _, existing := range r.extractors {
		if existing.Key() == key {
			return fmt.Errorf("extractor %q already registered", key)
		}
	}

	r.extractors = append([]Extractor{extractor}, r.extractors...)
	return nil
}

func (r *Registry) ForURL(pageURL *url.URL) Extractor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if pageURL != nil {
		for _, extractor := range r.extractors {
			if extractor.CanHandle(pageURL) {
				return extractor
			}
		}
	}
	return r.generic
}

// Detect runs the extractor chosen for the page and reports which one ran.
func (r *Registry) Detect(page *Page) (*Signal, string) {
	if page == nil {
		return nil, ""
	}
	extractor := r.ForURL(page.URL)
	if extractor == nil {
		return nil, ""
	}
	return extractor.Detect(page), extractor.Key()
}

func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]Descriptor, 0, len(r.extractors)+1)
	for index, extractor := range r.extractors {
		items = append(items, Descriptor{
			Key:      extractor.Key(),
			Name:     extractor.Name(),
			Kind:     extractor.Kind(),
			Priority: index,
		})
	}
	if r.generic != nil {
		items = append(items, Descriptor{
			Key:      r.generic.Key(),
			Name:     r.generic.Name(),
			Kind:     r.generic.Kind(),
			Priority: len(r.extractors),
		})
	}

	return items
}
