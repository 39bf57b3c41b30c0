package openai_response

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Nephrolytics-ai/polyglot-digest/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/utils"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
)

const (
	DefaultModelName = "gpt-5-mini"
	providerName     = "openai_response"
	schemaName       = "structured_output"
)

// Generator is a text-only model.JSONGenerator on the Responses API. It
// serves translations when OpenAI is configured as the translation
// provider. The model is pinned at construction: per-call model ids come
// from the Gemini catalog and are ignored.
type Generator struct {
	apiClient openai.Client
	cfg       model.GeneratorConfig
}

func NewGenerator(opts ...model.GeneratorOption) (*Generator, error) {
	cfg := model.ResolveGeneratorOpts(opts...)
	if strings.TrimSpace(cfg.AuthToken) == "" {
		return nil, utils.WrapIfNotNil(errors.New("openai api key is required"))
	}

	requestOpts := []option.RequestOption{option.WithAPIKey(cfg.AuthToken)}
	if cfg.URL != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(cfg.URL))
	}
	return &Generator{apiClient: openai.NewClient(requestOpts...), cfg: cfg}, nil
}

func (g *Generator) GenerateJSON(
	ctx context.Context,
	parts []model.ContentPart,
	schema model.JSONSchema,
	opts ...model.GeneratorOption,
) (string, model.GenerationMetadata, error) {
	start := time.Now()
	cfg := g.resolveConfig(opts...)
	modelName := resolveModelName(cfg)
	meta := initMetadata(modelName)
	defer setLatencyMetadata(meta, start)

	log := logging.NewLogger(ctx)
	prompt, err := joinTextParts(parts)
	if err != nil {
		log.Errorf("error: %v", err)
		return "", meta, utils.WrapIfNotNil(err)
	}

	params := buildParams(modelName, prompt, cfg, schema)
	log.Infof(
		"openai_response.GenerateJSON model=%q schema=%t temperature=%v max_tokens=%v reasoning=%v",
		modelName, schema != nil, cfg.Temperature, cfg.MaxTokens, cfg.ReasoningLevel,
	)

	response, err := g.apiClient.Responses.New(ctx, params)
	if err != nil {
		err = wrapAPIError(err)
		log.Errorf("error: %v", err)
		return "", meta, utils.WrapIfNotNil(err)
	}
	applyResponseMetadata(meta, response)

	output := strings.TrimSpace(response.OutputText())
	if output == "" {
		err = errors.New("response output is empty")
		log.Errorf("error: %v", err)
		return "", meta, utils.WrapIfNotNil(err)
	}
	return output, meta, nil
}

func (g *Generator) resolveConfig(opts ...model.GeneratorOption) model.GeneratorConfig {
	cfg := model.ApplyGeneratorOpts(g.cfg, opts...)
	cfg.Model = g.cfg.Model
	return cfg
}

// joinTextParts rejects file parts; the Responses API path here carries no
// uploaded media.
func joinTextParts(parts []model.ContentPart) (string, error) {
	texts := make([]string, 0, len(parts))
	for _, part := range parts {
		if part.IsFile() {
			return "", errors.New("file parts are not supported by the openai generator")
		}
		if strings.TrimSpace(part.Text) != "" {
			texts = append(texts, part.Text)
		}
	}
	if len(texts) == 0 {
		return "", errors.New("content parts are empty")
	}
	return strings.Join(texts, "\n\n"), nil
}

func buildParams(modelName string, prompt string, cfg model.GeneratorConfig, schema model.JSONSchema) responses.ResponseNewParams {
	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(modelName),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(prompt, responses.EasyInputMessageRoleUser),
			},
		},
	}

	reasoningModel := isReasoningModel(modelName)
	if cfg.Temperature != nil && !reasoningModel {
		params.Temperature = openai.Float(*cfg.Temperature)
	}
	if cfg.MaxTokens != nil {
		params.MaxOutputTokens = openai.Int(int64(*cfg.MaxTokens))
	}
	if cfg.ReasoningLevel != nil && reasoningModel {
		params.Reasoning = shared.ReasoningParam{Effort: mapReasoningLevel(*cfg.ReasoningLevel)}
	}
	if schema != nil {
		params.Text = responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:   schemaName,
					Schema: map[string]any(schema),
					Strict: openai.Bool(true),
				},
			},
		}
	}
	return params
}

func resolveModelName(cfg model.GeneratorConfig) string {
	if cfg.Model != nil && strings.TrimSpace(*cfg.Model) != "" {
		return strings.TrimSpace(*cfg.Model)
	}
	return DefaultModelName
}

func isReasoningModel(modelName string) bool {
	name := strings.ToLower(strings.TrimSpace(modelName))
	return strings.HasPrefix(name, "o1") ||
		strings.HasPrefix(name, "o3") ||
		strings.HasPrefix(name, "o4") ||
		strings.HasPrefix(name, "gpt-5")
}

func mapReasoningLevel(level model.ReasoningLevel) shared.ReasoningEffort {
	switch level {
	case model.ReasoningLevelNone:
		return shared.ReasoningEffortNone
	case model.ReasoningLevelLow:
		return shared.ReasoningEffortLow
	case model.ReasoningLevelMed:
		return shared.ReasoningEffortMedium
	case model.ReasoningLevelHigh:
		return shared.ReasoningEffortHigh
	default:
		return shared.ReasoningEffortMedium
	}
}

func initMetadata(modelName string) model.GenerationMetadata {
	return model.GenerationMetadata{
		model.MetadataKeyProvider: providerName,
		model.MetadataKeyModel:    modelName,
	}
}

func setLatencyMetadata(meta model.GenerationMetadata, start time.Time) {
	if meta == nil {
		return
	}
	meta[model.MetadataKeyLatencyMs] = strconv.FormatInt(time.Since(start).Milliseconds(), 10)
}

func applyResponseMetadata(meta model.GenerationMetadata, response *responses.Response) {
	if meta == nil || response == nil {
		return
	}
	meta[model.MetadataKeyAPICalls] = "1"
	meta[model.MetadataKeyInputTokens] = strconv.FormatInt(response.Usage.InputTokens, 10)
	meta[model.MetadataKeyOutputTokens] = strconv.FormatInt(response.Usage.OutputTokens, 10)
	meta[model.MetadataKeyTotalTokens] = strconv.FormatInt(response.Usage.TotalTokens, 10)
	meta[model.MetadataKeyCachedInputTokens] = strconv.FormatInt(response.Usage.InputTokensDetails.CachedTokens, 10)
	meta[model.MetadataKeyReasoningTokens] = strconv.FormatInt(response.Usage.OutputTokensDetails.ReasoningTokens, 10)
	if response.ID != "" {
		meta[model.MetadataKeyResponseID] = response.ID
	}
	if response.Status != "" {
		meta[model.MetadataKeyResponseStatus] = string(response.Status)
	}
}

// wrapAPIError converts an HTTP error response into a model.ProviderError.
func wrapAPIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr != nil {
		return &model.ProviderError{StatusCode: apiErr.StatusCode, Status: apiErr.Code, Err: err}
	}
	return err
}
