package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/Nephrolytics-ai/polyglot-digest/pkg/model"
	"github.com/gin-gonic/gin"
)

// Digester is the workflow surface the handlers call.
type Digester interface {
	ListModels(ctx context.Context) []model.ModelDescriptor
	Summarize(ctx context.Context, upload model.Upload, req model.GenerationRequest) (model.GenerationResult, error)
	TranslateText(ctx context.Context, text string, targetLanguage string, modelID string) (string, error)
	TranslateResult(ctx context.Context, original model.GenerationResult, targetLanguage string, modelID string) (model.ViewResult, error)
}

// RulesSource supplies the default summarization rules.
type RulesSource interface {
	Load(ctx context.Context) (string, error)
}

type Options struct {
	BasePath       string
	AllowedOrigins []string
	// MaxUploadBytes caps the multipart body. Zero disables the cap.
	MaxUploadBytes int64
}

// multipartOverhead is the slack allowed above MaxUploadBytes for form
// fields and part headers.
const multipartOverhead = 1 << 20

type Handler struct {
	digester Digester
	rules    RulesSource
	opts     Options
}

func NewHandler(digester Digester, rules RulesSource, opts Options) *Handler {
	return &Handler{digester: digester, rules: rules, opts: opts}
}

// NewRouter builds the gin engine with middleware and all routes mounted
// under opts.BasePath.
func NewRouter(digester Digester, rules RulesSource, opts Options) *gin.Engine {
	h := NewHandler(digester, rules, opts)

	router := gin.New()
	router.Use(RequestID())
	router.Use(Recovery())
	router.Use(CORS(opts.AllowedOrigins))
	router.Use(RequestLogger())

	router.GET("/healthz", h.Health)

	api := router.Group(normalizeBasePath(opts.BasePath))
	{
		api.GET("/models", h.ListModels)
		api.GET("/rules", h.GetRules)
		api.POST("/summarize", h.Summarize)
		api.POST("/translate", h.Translate)
		api.POST("/translate/result", h.TranslateResult)
	}
	return router
}

func normalizeBasePath(basePath string) string {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" || basePath == "/" {
		return "/"
	}
	return "/" + strings.Trim(basePath, "/")
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
