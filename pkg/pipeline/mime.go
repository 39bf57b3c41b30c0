package pipeline

import (
	"errors"
	"mime"
	"path/filepath"
	"strings"

	"github.com/Nephrolytics-ai/polyglot-digest/pkg/utils"
)

var extensionMIMETypes = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".mp4":  "audio/mp4",
	".webm": "audio/webm",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".aac":  "audio/aac",
	".aiff": "audio/aiff",
}

// resolveMediaMIMEType prefers a declared audio/video type and otherwise
// derives one from the file extension.
func resolveMediaMIMEType(filename string, declared string) (string, error) {
	declared = normalizeMIMEType(declared)
	if isMediaMIMEType(declared) {
		return declared, nil
	}

	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	if ext == "" {
		return "", utils.WrapIfNotNil(errors.New("audio file extension is required to determine mime type"))
	}
	if mimeType, ok := extensionMIMETypes[ext]; ok {
		return mimeType, nil
	}

	mimeType := normalizeMIMEType(mime.TypeByExtension(ext))
	if mimeType == "" {
		return "", utils.WrapIfNotNil(errors.New("unsupported audio file extension: " + ext))
	}
	if !isMediaMIMEType(mimeType) {
		return "", utils.WrapIfNotNil(errors.New("unsupported audio mime type: " + mimeType))
	}
	return mimeType, nil
}

// normalizeMIMEType strips parameters such as "; charset=utf-8".
func normalizeMIMEType(value string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(value, ";")[0]))
}

func isMediaMIMEType(value string) bool {
	return strings.HasPrefix(value, "audio/") || strings.HasPrefix(value, "video/")
}
