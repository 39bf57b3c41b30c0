package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Nephrolytics-ai/polyglot-digest/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/model"
)

const DefaultRules = "Summarize the key takeaways."

const generationPromptTemplate = `Transcribe this audio file verbatim in the language spoken in the audio.
Provide a summary in the same language based on the following rules:
Rules: %s`

// GenerationInvoker issues the single structured transcription call for an
// ACTIVE media asset.
type GenerationInvoker struct {
	generator    model.JSONGenerator
	defaultRules string
	opts         []model.GeneratorOption
}

// NewGenerationInvoker returns an invoker. opts are applied to every call
// before the per-request model choice.
func NewGenerationInvoker(generator model.JSONGenerator, defaultRules string, opts ...model.GeneratorOption) *GenerationInvoker {
	if strings.TrimSpace(defaultRules) == "" {
		defaultRules = DefaultRules
	}
	return &GenerationInvoker{generator: generator, defaultRules: defaultRules, opts: opts}
}

func (g *GenerationInvoker) Generate(ctx context.Context, asset *model.MediaAsset, req model.GenerationRequest) (model.GenerationResult, error) {
	log := logging.NewLogger(ctx)

	if asset == nil || asset.State != model.FileStateActive {
		err := model.NewError(model.KindGenerationRejected, "Audio is not ready for generation.", errors.New("media asset is not ACTIVE"))
		log.Errorf("error: %v", err)
		return model.GenerationResult{}, err
	}

	schema, err := model.JSONSchemaFor[model.GenerationResult]()
	if err != nil {
		log.Errorf("error: %v", err)
		return model.GenerationResult{}, model.NewError(model.KindGenerationRejected, "Failed to build the response schema.", err)
	}

	parts := []model.ContentPart{
		model.FilePart(asset),
		model.TextPart(g.buildPrompt(req.Rules)),
	}

	opts := append(append([]model.GeneratorOption{}, g.opts...), model.WithModel(req.Model))
	raw, meta, err := g.generator.GenerateJSON(ctx, parts, schema, opts...)
	if err != nil {
		log.Errorf("error: %v", err)
		return model.GenerationResult{}, model.NewError(model.KindGenerationRejected, "The provider failed to generate a transcript.", err)
	}

	result, err := parseGenerationResult(raw)
	if err != nil {
		log.Errorf("error: %v", err)
		return model.GenerationResult{}, model.NewError(model.KindMalformedResponse, "The provider returned an unreadable transcript.", err)
	}

	log.Infof(
		"pipeline.GenerationInvoker.Generate model=%q language=%q transcript_chars=%d latency_ms=%s",
		meta[model.MetadataKeyModel], result.Language, len(result.Transcript), meta[model.MetadataKeyLatencyMs],
	)
	return result, nil
}

func (g *GenerationInvoker) buildPrompt(rules string) string {
	rules = strings.TrimSpace(rules)
	if rules == "" {
		rules = g.defaultRules
	}
	return fmt.Sprintf(generationPromptTemplate, rules)
}

func parseGenerationResult(raw string) (model.GenerationResult, error) {
	payload := generationPayload{}
	if err := decodeJSONObject(raw, &payload); err != nil {
		return model.GenerationResult{}, err
	}
	missing := missingFields(map[string]*string{
		"transcript": payload.Transcript,
		"summary":    payload.Summary,
		"language":   payload.Language,
	}, "transcript", "summary", "language")
	if len(missing) > 0 {
		return model.GenerationResult{}, fmt.Errorf("response is missing required fields: %s", strings.Join(missing, ", "))
	}
	return model.GenerationResult{
		Transcript: *payload.Transcript,
		Summary:    *payload.Summary,
		Language:   *payload.Language,
	}, nil
}
