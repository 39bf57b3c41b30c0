package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/Nephrolytics-ai/polyglot-digest/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Gemini      GeminiConfig      `mapstructure:"gemini"`
	OpenAI      OpenAIConfig      `mapstructure:"openai"`
	Translation TranslationConfig `mapstructure:"translation"`
	Pipeline    PipelineConfig    `mapstructure:"pipeline"`
	Rules       RulesConfig       `mapstructure:"rules"`
	Log         LogConfig         `mapstructure:"log"`
}

type ServerConfig struct {
	Port               int      `mapstructure:"port"`
	BasePath           string   `mapstructure:"base_path"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
	MaxUploadBytes     int64    `mapstructure:"max_upload_bytes"`
}

// GeminiConfig holds the provider settings. A zero Temperature or
// MaxOutputTokens and a blank ReasoningLevel leave the model default in place.
type GeminiConfig struct {
	APIKey          string  `mapstructure:"api_key"`
	BaseURL         string  `mapstructure:"base_url"`
	DefaultModel    string  `mapstructure:"default_model"`
	Temperature     float64 `mapstructure:"temperature"`
	ReasoningLevel  string  `mapstructure:"reasoning_level"`
	MaxOutputTokens int     `mapstructure:"max_output_tokens"`
}

type OpenAIConfig struct {
	APIKey          string `mapstructure:"api_key"`
	BaseURL         string `mapstructure:"base_url"`
	Model           string `mapstructure:"model"`
	ReasoningLevel  string `mapstructure:"reasoning_level"`
	MaxOutputTokens int    `mapstructure:"max_output_tokens"`
}

const (
	TranslationProviderGemini = "gemini"
	TranslationProviderOpenAI = "openai"
)

type TranslationConfig struct {
	Provider string `mapstructure:"provider"`
}

type PipelineConfig struct {
	StagingDir        string        `mapstructure:"staging_dir"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	MaxPollAttempts   int           `mapstructure:"max_poll_attempts"`
	PollTimeout       time.Duration `mapstructure:"poll_timeout"`
	DeleteRemoteMedia bool          `mapstructure:"delete_remote_media"`
	DefaultRules      string        `mapstructure:"default_rules"`
}

type RulesConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// envAliases are the conventional variable names accepted besides the
// derived SECTION_KEY form.
var envAliases = map[string][]string{
	"gemini.api_key": {"GEMINI_API_KEY", "GOOGLE_API_KEY", "GEMINI_KEY"},
	"server.port":    {"PORT"},
	"openai.api_key": {"OPENAI_API_KEY", "OPEN_API_TOKEN"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.base_path", "/api")
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("server.max_upload_bytes", int64(100<<20))

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.base_url", "")
	v.SetDefault("gemini.default_model", "gemini-2.5-flash")
	v.SetDefault("gemini.temperature", 0.0)
	v.SetDefault("gemini.reasoning_level", "")
	v.SetDefault("gemini.max_output_tokens", 0)

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model", "gpt-5-mini")
	v.SetDefault("openai.reasoning_level", "")
	v.SetDefault("openai.max_output_tokens", 0)

	v.SetDefault("translation.provider", TranslationProviderGemini)

	v.SetDefault("pipeline.staging_dir", "uploads")
	v.SetDefault("pipeline.poll_interval", 2*time.Second)
	v.SetDefault("pipeline.max_poll_attempts", 150)
	v.SetDefault("pipeline.poll_timeout", 5*time.Minute)
	v.SetDefault("pipeline.delete_remote_media", true)
	v.SetDefault("pipeline.default_rules", "Summarize the key takeaways.")

	v.SetDefault("rules.path", "rules.txt")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

type loaderConfig struct {
	envFile    string
	configFile string
	flags      map[string]*pflag.Flag
}

type Option func(*loaderConfig)

// WithEnvFile loads a .env file before reading the environment. A missing
// file is ignored.
func WithEnvFile(path string) Option {
	return func(lc *loaderConfig) { lc.envFile = path }
}

// WithConfigFile reads a YAML file as the base layer.
func WithConfigFile(path string) Option {
	return func(lc *loaderConfig) { lc.configFile = path }
}

// WithFlag binds a command-line flag to key. A flag only overrides other
// sources when it was set explicitly.
func WithFlag(key string, flag *pflag.Flag) Option {
	return func(lc *loaderConfig) {
		if flag == nil {
			return
		}
		if lc.flags == nil {
			lc.flags = map[string]*pflag.Flag{}
		}
		lc.flags[key] = flag
	}
}

// Load resolves configuration from defaults, the optional YAML file, the
// environment (after the optional .env file) and bound flags, in increasing
// precedence.
func Load(opts ...Option) (Config, error) {
	lc := loaderConfig{envFile: ".env"}
	for _, opt := range opts {
		if opt != nil {
			opt(&lc)
		}
	}

	if lc.envFile != "" {
		if err := godotenv.Load(lc.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, utils.WrapIfNotNil(err)
		}
	}

	v := viper.New()
	setDefaults(v)

	if lc.configFile != "" {
		v.SetConfigFile(lc.configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, utils.WrapIfNotNil(err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envAliases {
		bindings := append([]string{key}, derivedEnvName(key))
		bindings = append(bindings, names...)
		if err := v.BindEnv(bindings...); err != nil {
			return Config{}, utils.WrapIfNotNil(err)
		}
	}

	for key, flag := range lc.flags {
		if err := v.BindPFlag(key, flag); err != nil {
			return Config{}, utils.WrapIfNotNil(err)
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, utils.WrapIfNotNil(err)
	}
	cfg.Server.CORSAllowedOrigins = splitList(cfg.Server.CORSAllowedOrigins)
	cfg.Translation.Provider = strings.ToLower(strings.TrimSpace(cfg.Translation.Provider))
	switch cfg.Translation.Provider {
	case "", TranslationProviderGemini:
		cfg.Translation.Provider = TranslationProviderGemini
	case TranslationProviderOpenAI:
		if strings.TrimSpace(cfg.OpenAI.APIKey) == "" {
			return Config{}, utils.WrapIfNotNil(errors.New("translation.provider is openai but no openai api key is set"))
		}
	default:
		return Config{}, utils.WrapIfNotNil(fmt.Errorf("unknown translation.provider %q", cfg.Translation.Provider))
	}

	var err error
	if cfg.Gemini.ReasoningLevel, err = normalizeReasoningLevel(cfg.Gemini.ReasoningLevel); err != nil {
		return Config{}, utils.WrapIfNotNil(fmt.Errorf("gemini.reasoning_level: %w", err))
	}
	if cfg.OpenAI.ReasoningLevel, err = normalizeReasoningLevel(cfg.OpenAI.ReasoningLevel); err != nil {
		return Config{}, utils.WrapIfNotNil(fmt.Errorf("openai.reasoning_level: %w", err))
	}
	if cfg.Gemini.MaxOutputTokens < 0 || cfg.OpenAI.MaxOutputTokens < 0 {
		return Config{}, utils.WrapIfNotNil(errors.New("max_output_tokens must not be negative"))
	}
	return cfg, nil
}

// normalizeReasoningLevel keeps blank as unset and rewrites aliases to the
// canonical level name.
func normalizeReasoningLevel(value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	level, err := model.ParseReasoningLevel(value)
	if err != nil {
		return "", err
	}
	return string(level), nil
}

func derivedEnvName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// splitList accepts both YAML lists and a comma separated env value.
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, item := range strings.Split(value, ",") {
			item = strings.TrimSpace(item)
			if item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

// MaskSecret keeps the first and last four characters of a secret for logs.
func MaskSecret(secret string) string {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}

// HasAPIKey reports whether a provider key is configured.
func (c Config) HasAPIKey() bool {
	return strings.TrimSpace(c.Gemini.APIKey) != ""
}
