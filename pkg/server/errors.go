package server

import (
	"net/http"

	"github.com/Nephrolytics-ai/polyglot-digest/pkg/model"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// StatusForKind maps a workflow error kind to its HTTP status.
func StatusForKind(kind model.ErrorKind) int {
	switch kind {
	case model.KindIngestionRejected:
		return http.StatusBadRequest
	case model.KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case model.KindMediaProcessingFailed,
		model.KindGenerationRejected,
		model.KindMalformedResponse,
		model.KindTranslationFailed:
		return http.StatusBadGateway
	case model.KindProcessingTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	kind := model.KindOf(err)
	c.JSON(StatusForKind(kind), errorResponse{
		Error: model.UserMessage(err),
		Kind:  string(kind),
	})
}

// writeBadRequest reports a request the handler refused before reaching the
// pipeline. kind may be empty.
func writeBadRequest(c *gin.Context, message string, kind model.ErrorKind) {
	c.JSON(http.StatusBadRequest, errorResponse{
		Error: message,
		Kind:  string(kind),
	})
}
