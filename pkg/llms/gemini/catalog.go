package gemini

import (
	"context"
	"errors"
	"strings"

	"github.com/Nephrolytics-ai/polyglot-digest/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/utils"
	"google.golang.org/genai"
)

const (
	generateContentAction = "generateContent"
	listModelsPageSize    = 100
)

// ListModels returns every model in the catalog, in provider order, with the
// structured-generation capability flag set from its supported actions.
func (p *Provider) ListModels(ctx context.Context) ([]model.ModelDescriptor, error) {
	log := logging.NewLogger(ctx)

	page, err := p.client.Models.List(ctx, &genai.ListModelsConfig{PageSize: listModelsPageSize})
	if err != nil {
		err = wrapAPIError(err)
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}

	descriptors := make([]model.ModelDescriptor, 0, len(page.Items))
	for {
		for _, item := range page.Items {
			if item == nil {
				continue
			}
			descriptors = append(descriptors, toModelDescriptor(item))
		}

		if page.NextPageToken == "" {
			break
		}
		page, err = page.Next(ctx)
		if errors.Is(err, genai.ErrPageDone) {
			break
		}
		if err != nil {
			err = wrapAPIError(err)
			log.Errorf("error: %v", err)
			return nil, utils.WrapIfNotNil(err)
		}
	}

	log.Debugf("gemini.ListModels models=%d", len(descriptors))
	return descriptors, nil
}

func toModelDescriptor(m *genai.Model) model.ModelDescriptor {
	id := strings.TrimPrefix(m.Name, "models/")
	name := strings.TrimSpace(m.DisplayName)
	if name == "" {
		name = m.Name
	}

	return model.ModelDescriptor{
		ID:                           id,
		Name:                         name,
		Description:                  m.Description,
		SupportsStructuredGeneration: supportsAction(m.SupportedActions, generateContentAction),
	}
}

func supportsAction(actions []string, action string) bool {
	for _, candidate := range actions {
		if candidate == action {
			return true
		}
	}
	return false
}
