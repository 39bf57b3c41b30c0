package gemini

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Nephrolytics-ai/polyglot-digest/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/utils"
	"google.golang.org/genai"
)

const jsonMIMEType = "application/json"

// GenerateJSON sends one user turn built from parts and returns the raw JSON
// text of the response. When schema is non-nil the response is constrained to
// it. Parsing is left to the caller.
func (p *Provider) GenerateJSON(
	ctx context.Context,
	parts []model.ContentPart,
	schema model.JSONSchema,
	opts ...model.GeneratorOption,
) (string, model.GenerationMetadata, error) {
	start := time.Now()
	cfg := model.ApplyGeneratorOpts(p.cfg, opts...)
	modelName := resolveGenerationModelName(cfg)
	meta := initMetadata(modelName)
	defer setLatencyMetadata(meta, start)

	log := logging.NewLogger(ctx)
	genParts, err := mapParts(parts)
	if err != nil {
		log.Errorf("error: %v", err)
		return "", meta, utils.WrapIfNotNil(err)
	}

	contents := []*genai.Content{genai.NewContentFromParts(genParts, genai.RoleUser)}
	config := buildGenerateContentConfig(cfg, schema)

	log.Infof(
		"gemini.GenerateJSON model=%q parts=%d schema=%t temperature=%v max_tokens=%v reasoning=%v",
		modelName,
		len(genParts),
		schema != nil,
		cfg.Temperature,
		cfg.MaxTokens,
		cfg.ReasoningLevel,
	)

	response, apiCalls, err := generateWithThinkingFallback(ctx, p.client, modelName, contents, config)
	applyGenerateMetadata(meta, response, apiCalls)
	if err != nil {
		err = wrapAPIError(err)
		log.Errorf("error: %v", err)
		return "", meta, utils.WrapIfNotNil(err)
	}

	text := strings.TrimSpace(response.Text())
	if text == "" {
		err = errors.New("response output is empty")
		log.Errorf("error: %v", err)
		return "", meta, utils.WrapIfNotNil(err)
	}
	return text, meta, nil
}

func mapParts(parts []model.ContentPart) ([]*genai.Part, error) {
	if len(parts) == 0 {
		return nil, utils.WrapIfNotNil(errors.New("at least one content part is required"))
	}

	mapped := make([]*genai.Part, 0, len(parts))
	for _, part := range parts {
		switch {
		case part.IsFile():
			mapped = append(mapped, genai.NewPartFromURI(part.FileURI, part.MIMEType))
		case strings.TrimSpace(part.Text) != "":
			mapped = append(mapped, genai.NewPartFromText(part.Text))
		}
	}
	if len(mapped) == 0 {
		return nil, utils.WrapIfNotNil(errors.New("content parts are empty"))
	}
	return mapped, nil
}

func buildGenerateContentConfig(cfg model.GeneratorConfig, schema model.JSONSchema) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: jsonMIMEType,
	}
	if schema != nil {
		config.ResponseJsonSchema = map[string]any(schema)
	}
	if cfg.Temperature != nil {
		temp := float32(*cfg.Temperature)
		config.Temperature = &temp
	}
	if cfg.MaxTokens != nil {
		config.MaxOutputTokens = int32(*cfg.MaxTokens)
	}
	if cfg.ReasoningLevel != nil {
		config.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingLevel: mapReasoningLevel(*cfg.ReasoningLevel),
		}
	}
	return config
}

func mapReasoningLevel(level model.ReasoningLevel) genai.ThinkingLevel {
	switch level {
	case model.ReasoningLevelNone:
		return genai.ThinkingLevelMinimal
	case model.ReasoningLevelLow:
		return genai.ThinkingLevelLow
	case model.ReasoningLevelMed:
		return genai.ThinkingLevelMedium
	case model.ReasoningLevelHigh:
		return genai.ThinkingLevelHigh
	default:
		return genai.ThinkingLevelMedium
	}
}

// generateWithThinkingFallback retries once without the thinking config when
// the model refuses it; any other failure is returned as is.
func generateWithThinkingFallback(
	ctx context.Context,
	client *genai.Client,
	modelName string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, int, error) {
	response, err := client.Models.GenerateContent(ctx, modelName, contents, config)
	if err == nil {
		return response, 1, nil
	}

	if config == nil || config.ThinkingConfig == nil || !utils.ContainsErrorSubstring(err, "Thinking level is not supported for this model") {
		return nil, 1, utils.WrapIfNotNil(err)
	}

	logging.NewLogger(ctx).Warnf(
		"thinking level unsupported for model %q; retrying without thinking config",
		modelName,
	)

	fallback := *config
	fallback.ThinkingConfig = nil

	response, err = client.Models.GenerateContent(ctx, modelName, contents, &fallback)
	if err != nil {
		return nil, 2, utils.WrapIfNotNil(err)
	}
	return response, 2, nil
}
