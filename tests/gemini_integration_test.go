package tests

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Nephrolytics-ai/polyglot-digest/pkg/llms/gemini"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type GeminiIntegrationSuite struct {
	ExternalDependenciesSuite
	apiKey  string
	baseURL string
}

func (s *GeminiIntegrationSuite) SetupSuite() {
	s.ExternalDependenciesSuite.SetupSuite()

	s.apiKey = s.geminiKey()
	s.baseURL = strings.TrimSpace(os.Getenv("GEMINI_BASE_URL"))
}

func (s *GeminiIntegrationSuite) providerOpts() []model.GeneratorOption {
	opts := []model.GeneratorOption{
		model.WithAuthToken(s.apiKey),
		model.WithModel(gemini.DefaultGenerationModelName),
		model.WithMaxTokens(256),
		model.WithReasoningLevel(model.ReasoningLevelLow),
	}
	if s.baseURL != "" {
		opts = append(opts, model.WithURL(s.baseURL))
	}
	return opts
}

func (s *GeminiIntegrationSuite) TestListModels() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	provider, err := gemini.NewProvider(ctx, s.providerOpts()...)
	require.NoError(s.T(), err)

	models, err := provider.ListModels(ctx)
	require.NoError(s.T(), err)
	require.NotEmpty(s.T(), models)

	structured := 0
	for _, m := range models {
		assert.NotEmpty(s.T(), m.ID)
		assert.False(s.T(), strings.HasPrefix(m.ID, "models/"))
		if m.SupportsStructuredGeneration {
			structured++
		}
	}
	assert.Positive(s.T(), structured)
}

func (s *GeminiIntegrationSuite) TestGenerateJSONTranslation() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	provider, err := gemini.NewProvider(ctx, s.providerOpts()...)
	require.NoError(s.T(), err)

	schema, err := model.JSONSchemaFor[model.TranslationResult]()
	require.NoError(s.T(), err)

	raw, meta, err := provider.GenerateJSON(ctx, []model.ContentPart{
		model.TextPart("Translate the following text to Spanish. Return the result as a JSON object with the key 'translatedText'.\n\nText:\nGood morning"),
	}, schema)
	require.NoError(s.T(), err)

	var parsed model.TranslationResult
	require.NoError(s.T(), json.Unmarshal([]byte(raw), &parsed))
	assert.NotEmpty(s.T(), parsed.TranslatedText)
	assert.Equal(s.T(), "gemini", meta[model.MetadataKeyProvider])
	assert.NotEmpty(s.T(), meta[model.MetadataKeyLatencyMs])
}

func TestGeminiIntegrationSuite(t *testing.T) {
	suite.Run(t, new(GeminiIntegrationSuite))
}
