package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Nephrolytics-ai/polyglot-digest/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/model"
	"github.com/gin-gonic/gin"
)

type modelResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type rulesResponse struct {
	Rules string `json:"rules"`
}

type translateRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"targetLanguage"`
	Model          string `json:"model"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

type translateResultRequest struct {
	Transcript     string `json:"transcript"`
	Summary        string `json:"summary"`
	Language       string `json:"language"`
	TargetLanguage string `json:"targetLanguage"`
	Model          string `json:"model"`
}

// ListModels always answers 200; an unavailable catalog is an empty list.
func (h *Handler) ListModels(c *gin.Context) {
	models := h.digester.ListModels(c.Request.Context())

	out := make([]modelResponse, 0, len(models))
	for _, m := range models {
		out = append(out, modelResponse{ID: m.ID, Name: m.Name, Description: m.Description})
	}
	c.JSON(http.StatusOK, out)
}

// GetRules answers with empty rules when the rules file cannot be read.
func (h *Handler) GetRules(c *gin.Context) {
	if h.rules == nil {
		c.JSON(http.StatusOK, rulesResponse{})
		return
	}
	text, err := h.rules.Load(c.Request.Context())
	if err != nil {
		logging.NewLogger(c.Request.Context()).Warnf("rules unavailable: %v", err)
		c.JSON(http.StatusOK, rulesResponse{})
		return
	}
	c.JSON(http.StatusOK, rulesResponse{Rules: text})
}

func (h *Handler) Summarize(c *gin.Context) {
	log := logging.NewLogger(c.Request.Context())

	if h.opts.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes+multipartOverhead)
	}

	header, err := c.FormFile("audio")
	if err != nil {
		log.Errorf("error: %v", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeBadRequest(c, fmt.Sprintf("Audio file exceeds the %d byte limit.", h.opts.MaxUploadBytes), model.KindIngestionRejected)
			return
		}
		writeBadRequest(c, "No audio file uploaded.", model.KindIngestionRejected)
		return
	}

	file, err := header.Open()
	if err != nil {
		log.Errorf("error: %v", err)
		writeBadRequest(c, "Uploaded audio file could not be read.", model.KindIngestionRejected)
		return
	}
	defer file.Close()

	upload := model.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}
	req := model.GenerationRequest{
		Rules: c.PostForm("rules"),
		Model: c.PostForm("model"),
	}

	result, err := h.digester.Summarize(c.Request.Context(), upload, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) Translate(c *gin.Context) {
	body := translateRequest{}
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Text) == "" || strings.TrimSpace(body.TargetLanguage) == "" {
		writeBadRequest(c, "Text and targetLanguage are required.", "")
		return
	}

	translated, err := h.digester.TranslateText(c.Request.Context(), body.Text, body.TargetLanguage, body.Model)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, translateResponse{TranslatedText: translated})
}

func (h *Handler) TranslateResult(c *gin.Context) {
	body := translateResultRequest{}
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.TargetLanguage) == "" {
		writeBadRequest(c, "targetLanguage is required.", "")
		return
	}

	original := model.GenerationResult{
		Transcript: body.Transcript,
		Summary:    body.Summary,
		Language:   body.Language,
	}
	translated, err := h.digester.TranslateResult(c.Request.Context(), original, body.TargetLanguage, body.Model)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, translated)
}
