package app

import (
	"context"
	"testing"
	"time"

	"github.com/Nephrolytics-ai/polyglot-digest/pkg/config"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/model"
	"github.com/stretchr/testify/suite"
)

type AppSuite struct {
	suite.Suite
	cfg config.Config
}

func TestAppSuite(t *testing.T) {
	suite.Run(t, new(AppSuite))
}

func (s *AppSuite) SetupTest() {
	s.cfg = config.Config{
		Server: config.ServerConfig{MaxUploadBytes: 1024},
		Gemini: config.GeminiConfig{APIKey: "AIzaTESTKEY0000", DefaultModel: "gemini-2.5-flash", BaseURL: "http://127.0.0.1:1"},
		OpenAI: config.OpenAIConfig{Model: "gpt-5-mini"},
		Translation: config.TranslationConfig{
			Provider: config.TranslationProviderGemini,
		},
		Pipeline: config.PipelineConfig{
			StagingDir:        "staging",
			PollInterval:      time.Second,
			MaxPollAttempts:   7,
			PollTimeout:       time.Minute,
			DeleteRemoteMedia: true,
			DefaultRules:      "Be brief.",
		},
	}
}

func (s *AppSuite) TestPipelineConfig() {
	pipelineCfg := PipelineConfig(s.cfg)
	s.Equal("staging", pipelineCfg.StagingDir)
	s.Equal(int64(1024), pipelineCfg.MaxUploadBytes)
	s.Equal(time.Second, pipelineCfg.Poll.Interval)
	s.Equal(7, pipelineCfg.Poll.MaxAttempts)
	s.Equal(time.Minute, pipelineCfg.Poll.Timeout)
	s.True(pipelineCfg.DeleteRemoteMedia)
	s.Equal("Be brief.", pipelineCfg.DefaultRules)
	s.Empty(pipelineCfg.GeneratorOptions)
	s.Nil(pipelineCfg.TranslationGenerator)
}

func (s *AppSuite) TestPipelineConfigTemperature() {
	s.cfg.Gemini.Temperature = 0.4
	opts := PipelineConfig(s.cfg).GeneratorOptions
	s.Require().Len(opts, 1)

	resolved := model.ResolveGeneratorOpts(opts...)
	s.Require().NotNil(resolved.Temperature)
	s.InDelta(0.4, *resolved.Temperature, 1e-9)
}

func (s *AppSuite) TestPipelineConfigTuning() {
	s.cfg.Gemini.ReasoningLevel = "high"
	s.cfg.Gemini.MaxOutputTokens = 2048
	opts := PipelineConfig(s.cfg).GeneratorOptions
	s.Require().Len(opts, 2)

	resolved := model.ResolveGeneratorOpts(opts...)
	s.Require().NotNil(resolved.ReasoningLevel)
	s.Equal(model.ReasoningLevelHigh, *resolved.ReasoningLevel)
	s.Require().NotNil(resolved.MaxTokens)
	s.Equal(2048, *resolved.MaxTokens)
	s.Nil(resolved.Temperature)
}

func (s *AppSuite) TestTranslatorOptions() {
	s.cfg.OpenAI.APIKey = "sk-test"
	s.cfg.OpenAI.ReasoningLevel = "low"
	s.cfg.OpenAI.MaxOutputTokens = 512
	s.cfg.Gemini.ReasoningLevel = "high"

	resolved := model.ResolveGeneratorOpts(TranslatorOptions(s.cfg)...)
	s.Equal("sk-test", resolved.AuthToken)
	s.Require().NotNil(resolved.Model)
	s.Equal("gpt-5-mini", *resolved.Model)
	s.Require().NotNil(resolved.ReasoningLevel)
	s.Equal(model.ReasoningLevelLow, *resolved.ReasoningLevel)
	s.Require().NotNil(resolved.MaxTokens)
	s.Equal(512, *resolved.MaxTokens)
}

func (s *AppSuite) TestTranslatorOptionsWithoutTuning() {
	resolved := model.ResolveGeneratorOpts(TranslatorOptions(s.cfg)...)
	s.Nil(resolved.ReasoningLevel)
	s.Nil(resolved.MaxTokens)
}

func (s *AppSuite) TestNewOrchestratorRequiresKey() {
	s.cfg.Gemini.APIKey = ""
	_, err := NewOrchestrator(context.Background(), s.cfg)
	s.ErrorIs(err, ErrMissingAPIKey)
}

func (s *AppSuite) TestNewOrchestrator() {
	orchestrator, err := NewOrchestrator(context.Background(), s.cfg)
	s.Require().NoError(err)
	s.NotNil(orchestrator)
}

func (s *AppSuite) TestNewOrchestratorWithOpenAITranslations() {
	s.cfg.Translation.Provider = config.TranslationProviderOpenAI
	s.cfg.OpenAI.APIKey = ""
	_, err := NewOrchestrator(context.Background(), s.cfg)
	s.Error(err)

	s.cfg.OpenAI.APIKey = "sk-test"
	orchestrator, err := NewOrchestrator(context.Background(), s.cfg)
	s.Require().NoError(err)
	s.NotNil(orchestrator)
}
