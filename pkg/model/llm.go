package model

import (
	"context"
	"fmt"
	"strings"
)

// These are the provider-facing contracts the pipeline is written against.

// ModelCatalog lists the generation models the provider exposes.
type ModelCatalog interface {
	ListModels(ctx context.Context) ([]ModelDescriptor, error)
}

// MediaStore is the provider's asynchronous file-processing subsystem.
type MediaStore interface {
	UploadFile(ctx context.Context, path string, mimeType string, displayName string) (*MediaAsset, error)
	GetFile(ctx context.Context, name string) (*MediaAsset, error)
	DeleteFile(ctx context.Context, name string) error
}

// JSONGenerator issues one generation call constrained to a JSON schema and
// returns the raw JSON text of the first candidate.
type JSONGenerator interface {
	GenerateJSON(ctx context.Context, parts []ContentPart, schema JSONSchema, opts ...GeneratorOption) (string, GenerationMetadata, error)
}

// ContentPart is one element of a generation request. Exactly one of Text or
// FileURI is set.
type ContentPart struct {
	Text     string
	FileURI  string
	MIMEType string
}

func TextPart(text string) ContentPart {
	return ContentPart{Text: text}
}

func FilePart(asset *MediaAsset) ContentPart {
	if asset == nil {
		return ContentPart{}
	}
	return ContentPart{FileURI: asset.URI, MIMEType: asset.MIMEType}
}

func (p ContentPart) IsFile() bool {
	return strings.TrimSpace(p.FileURI) != ""
}

type GenerationMetadata map[string]string

const (
	MetadataKeyProvider          = "provider"
	MetadataKeyModel             = "model"
	MetadataKeyLatencyMs         = "latency_ms"
	MetadataKeyInputTokens       = "input_tokens"
	MetadataKeyOutputTokens      = "output_tokens"
	MetadataKeyTotalTokens       = "total_tokens"
	MetadataKeyCachedInputTokens = "cached_input_tokens"
	MetadataKeyReasoningTokens   = "reasoning_tokens"
	MetadataKeyAPICalls          = "api_calls"
	MetadataKeyResponseID        = "response_id"
	MetadataKeyResponseStatus    = "response_status"
)

type GeneratorOption interface {
	apply(*GeneratorConfig)
}

type generatorOptionFunc func(*GeneratorConfig)

func (f generatorOptionFunc) apply(cfg *GeneratorConfig) {
	f(cfg)
}

type GeneratorConfig struct {
	URL            string
	AuthToken      string
	Temperature    *float64
	MaxTokens      *int
	Model          *string
	ReasoningLevel *ReasoningLevel
}

type ReasoningLevel string

const (
	ReasoningLevelNone ReasoningLevel = "none"
	ReasoningLevelLow  ReasoningLevel = "low"
	ReasoningLevelMed  ReasoningLevel = "med"
	ReasoningLevelHigh ReasoningLevel = "high"
)

// ParseReasoningLevel accepts the level names case-insensitively, plus
// "medium" and "minimal" as aliases.
func ParseReasoningLevel(value string) (ReasoningLevel, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "none", "minimal":
		return ReasoningLevelNone, nil
	case "low":
		return ReasoningLevelLow, nil
	case "med", "medium":
		return ReasoningLevelMed, nil
	case "high":
		return ReasoningLevelHigh, nil
	default:
		return "", fmt.Errorf("unknown reasoning level %q", value)
	}
}

type JSONSchema map[string]any

func ResolveGeneratorOpts(opts ...GeneratorOption) GeneratorConfig {
	cfg := GeneratorConfig{}
	return ApplyGeneratorOpts(cfg, opts...)
}

// ApplyGeneratorOpts layers opts over an existing config, so per-call options
// can override provider-wide defaults.
func ApplyGeneratorOpts(cfg GeneratorConfig, opts ...GeneratorOption) GeneratorConfig {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(&cfg)
		}
	}
	return cfg
}

func WithURL(value string) GeneratorOption {
	return generatorOptionFunc(func(cfg *GeneratorConfig) {
		cfg.URL = value
	})
}

func WithAuthToken(value string) GeneratorOption {
	return generatorOptionFunc(func(cfg *GeneratorConfig) {
		cfg.AuthToken = value
	})
}

func WithTemperature(value float64) GeneratorOption {
	return generatorOptionFunc(func(cfg *GeneratorConfig) {
		cfg.Temperature = &value
	})
}

func WithMaxTokens(value int) GeneratorOption {
	return generatorOptionFunc(func(cfg *GeneratorConfig) {
		cfg.MaxTokens = &value
	})
}

// WithModel sets the model id. Blank values are ignored so an empty form field
// never overrides a configured default.
func WithModel(value string) GeneratorOption {
	return generatorOptionFunc(func(cfg *GeneratorConfig) {
		if strings.TrimSpace(value) == "" {
			return
		}
		cfg.Model = &value
	})
}

func WithReasoningLevel(level ReasoningLevel) GeneratorOption {
	return generatorOptionFunc(func(cfg *GeneratorConfig) {
		cfg.ReasoningLevel = &level
	})
}
