package pipeline

import (
	"context"
	"sort"

	"github.com/Nephrolytics-ai/polyglot-digest/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/model"
)

// Catalog filters the provider catalog down to models usable for
// structured generation, newest identifiers first.
type Catalog struct {
	source model.ModelCatalog
}

func NewCatalog(source model.ModelCatalog) *Catalog {
	return &Catalog{source: source}
}

func (c *Catalog) List(ctx context.Context) ([]model.ModelDescriptor, error) {
	log := logging.NewLogger(ctx)

	all, err := c.source.ListModels(ctx)
	if err != nil {
		log.Errorf("error: %v", err)
		return nil, model.NewError(model.KindUpstreamUnavailable, "Failed to list models.", err)
	}

	models := make([]model.ModelDescriptor, 0, len(all))
	for _, descriptor := range all {
		if !descriptor.SupportsStructuredGeneration {
			continue
		}
		models = append(models, descriptor)
	}
	sort.SliceStable(models, func(i, j int) bool {
		return models[i].ID > models[j].ID
	})

	log.Debugf("pipeline.Catalog.List total=%d usable=%d", len(all), len(models))
	return models, nil
}
