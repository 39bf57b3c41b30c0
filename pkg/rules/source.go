package rules

import (
	"context"
	"os"

	"github.com/Nephrolytics-ai/polyglot-digest/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/utils"
)

// FileSource serves the default summarization rules from a text file. The
// file is read on every call so edits show up without a restart.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Path() string {
	return s.path
}

func (s *FileSource) Load(ctx context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		logging.NewLogger(ctx).Errorf("error: %v", err)
		return "", utils.WrapIfNotNil(err)
	}
	return string(data), nil
}
