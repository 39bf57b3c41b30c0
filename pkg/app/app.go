package app

import (
	"context"
	"errors"

	"github.com/Nephrolytics-ai/polyglot-digest/pkg/config"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/llms/gemini"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/llms/openai_response"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/pipeline"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/utils"
)

var ErrMissingAPIKey = errors.New("gemini api key is missing; set GEMINI_API_KEY or GOOGLE_API_KEY")

// NewOrchestrator builds the Gemini provider, the optional OpenAI
// translation generator and the orchestrator from cfg.
func NewOrchestrator(ctx context.Context, cfg config.Config) (*pipeline.Orchestrator, error) {
	log := logging.NewLogger(ctx)
	if !cfg.HasAPIKey() {
		log.Errorf("error: %v", ErrMissingAPIKey)
		return nil, ErrMissingAPIKey
	}
	log.Infof("API key loaded: %s (length %d)", config.MaskSecret(cfg.Gemini.APIKey), len(cfg.Gemini.APIKey))

	provider, err := gemini.NewProvider(ctx,
		model.WithAuthToken(cfg.Gemini.APIKey),
		model.WithURL(cfg.Gemini.BaseURL),
		model.WithModel(cfg.Gemini.DefaultModel),
	)
	if err != nil {
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}

	pipelineCfg := PipelineConfig(cfg)
	if cfg.Translation.Provider == config.TranslationProviderOpenAI {
		translator, err := openai_response.NewGenerator(TranslatorOptions(cfg)...)
		if err != nil {
			log.Errorf("error: %v", err)
			return nil, utils.WrapIfNotNil(err)
		}
		pipelineCfg.TranslationGenerator = translator
		log.Infof("translations served by openai model=%q", cfg.OpenAI.Model)
	}

	return pipeline.NewOrchestrator(provider, pipelineCfg), nil
}

// PipelineConfig maps the loaded configuration onto the pipeline settings.
func PipelineConfig(cfg config.Config) pipeline.Config {
	opts := tuningOptions(cfg.Gemini.ReasoningLevel, cfg.Gemini.MaxOutputTokens)
	if cfg.Gemini.Temperature > 0 {
		opts = append(opts, model.WithTemperature(cfg.Gemini.Temperature))
	}
	return pipeline.Config{
		StagingDir:     cfg.Pipeline.StagingDir,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		Poll: pipeline.PollerConfig{
			Interval:    cfg.Pipeline.PollInterval,
			MaxAttempts: cfg.Pipeline.MaxPollAttempts,
			Timeout:     cfg.Pipeline.PollTimeout,
		},
		DefaultRules:      cfg.Pipeline.DefaultRules,
		DeleteRemoteMedia: cfg.Pipeline.DeleteRemoteMedia,
		GeneratorOptions:  opts,
	}
}

// TranslatorOptions are the construction options of the OpenAI translation
// generator.
func TranslatorOptions(cfg config.Config) []model.GeneratorOption {
	opts := []model.GeneratorOption{
		model.WithAuthToken(cfg.OpenAI.APIKey),
		model.WithURL(cfg.OpenAI.BaseURL),
		model.WithModel(cfg.OpenAI.Model),
	}
	return append(opts, tuningOptions(cfg.OpenAI.ReasoningLevel, cfg.OpenAI.MaxOutputTokens)...)
}

// tuningOptions skips a blank level and a non-positive token limit. The
// level was validated when the config was loaded.
func tuningOptions(reasoningLevel string, maxOutputTokens int) []model.GeneratorOption {
	var opts []model.GeneratorOption
	if reasoningLevel != "" {
		if level, err := model.ParseReasoningLevel(reasoningLevel); err == nil {
			opts = append(opts, model.WithReasoningLevel(level))
		}
	}
	if maxOutputTokens > 0 {
		opts = append(opts, model.WithMaxTokens(maxOutputTokens))
	}
	return opts
}
