package defaults

import (
	"github.com/anistark/crunchythread/internal/detect"
	"github.com/anistark/crunchythread/internal/detect/services/crunchyroll"
)

func NewRegistry() *detect.Registry {
	return detect.NewRegistry(
		detect.NewGeneric(),
		crunchyroll.NewExtractor(),
	)
}
