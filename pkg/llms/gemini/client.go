package gemini

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Nephrolytics-ai/polyglot-digest/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/utils"
	"google.golang.org/genai"
)

const (
	providerName               = "gemini"
	DefaultGenerationModelName = "gemini-2.5-flash"
)

// Provider talks to the Gemini API. It implements model.ModelCatalog,
// model.MediaStore and model.JSONGenerator. A single genai client is shared
// by all calls and is safe for concurrent use.
type Provider struct {
	client *genai.Client
	cfg    model.GeneratorConfig
}

func NewProvider(ctx context.Context, opts ...model.GeneratorOption) (*Provider, error) {
	cfg := model.ResolveGeneratorOpts(opts...)
	client, err := newAPIClient(ctx, cfg)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	return &Provider{client: client, cfg: cfg}, nil
}

func newAPIClient(ctx context.Context, cfg model.GeneratorConfig) (*genai.Client, error) {
	clientCfg := &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
	}

	token := strings.TrimSpace(cfg.AuthToken)
	if token == "" {
		token = strings.TrimSpace(os.Getenv("GEMINI_KEY"))
	}
	if token == "" {
		return nil, utils.WrapIfNotNil(errors.New("gemini api key is required"))
	}
	clientCfg.APIKey = token

	baseURL := strings.TrimSpace(cfg.URL)
	if baseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{
			BaseURL: baseURL,
		}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	return client, nil
}

func initMetadata(modelName string) model.GenerationMetadata {
	if strings.TrimSpace(modelName) == "" {
		modelName = "unknown"
	}

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

func resolveGenerationModelName(cfg model.GeneratorConfig) string {
	if cfg.Model != nil {
		name := strings.TrimSpace(*cfg.Model)
		if name != "" {
			return strings.TrimPrefix(name, "models/")
		}
	}
	return DefaultGenerationModelName
}

func applyGenerateMetadata(meta model.GenerationMetadata, response *genai.GenerateContentResponse, apiCalls int) {
	if meta == nil {
		return
	}

	meta[model.MetadataKeyAPICalls] = strconv.Itoa(apiCalls)
	if response == nil {
		return
	}
	if usage := response.UsageMetadata; usage != nil {
		meta[model.MetadataKeyInputTokens] = strconv.Itoa(int(usage.PromptTokenCount))
		meta[model.MetadataKeyOutputTokens] = strconv.Itoa(int(usage.CandidatesTokenCount))
		meta[model.MetadataKeyTotalTokens] = strconv.Itoa(int(usage.TotalTokenCount))
		meta[model.MetadataKeyCachedInputTokens] = strconv.Itoa(int(usage.CachedContentTokenCount))
		meta[model.MetadataKeyReasoningTokens] = strconv.Itoa(int(usage.ThoughtsTokenCount))
	}
	if strings.TrimSpace(response.ResponseID) != "" {
		meta[model.MetadataKeyResponseID] = response.ResponseID
	}
	if len(response.Candidates) > 0 && response.Candidates[0] != nil {
		meta[model.MetadataKeyResponseStatus] = string(response.Candidates[0].FinishReason)
	}
}

// wrapAPIError converts a genai API failure into a model.ProviderError so the
// pipeline can tell rejected requests from unreachable upstreams.
func wrapAPIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &model.ProviderError{StatusCode: apiErr.Code, Status: apiErr.Status, Err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &model.ProviderError{StatusCode: apiErrPtr.Code, Status: apiErrPtr.Status, Err: err}
	}
	return err
}
