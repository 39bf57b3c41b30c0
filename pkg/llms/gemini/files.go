package gemini

import (
	"context"
	"errors"
	"strings"

	"github.com/Nephrolytics-ai/polyglot-digest/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/utils"
	"google.golang.org/genai"
)

// UploadFile hands a staged local file to the Gemini Files API. The returned
// asset usually starts in PROCESSING.
func (p *Provider) UploadFile(ctx context.Context, path string, mimeType string, displayName string) (*model.MediaAsset, error) {
	log := logging.NewLogger(ctx)
	if strings.TrimSpace(path) == "" {
		err := errors.New("file path is required")
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}

	file, err := p.client.Files.UploadFromPath(ctx, path, &genai.UploadFileConfig{
		MIMEType:    mimeType,
		DisplayName: displayName,
	})
	if err != nil {
		err = wrapAPIError(err)
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}

	asset := toMediaAsset(file)
	log.Infof("gemini.UploadFile name=%q uri=%q state=%s", asset.Name, asset.URI, asset.State)
	return asset, nil
}

func (p *Provider) GetFile(ctx context.Context, name string) (*model.MediaAsset, error) {
	file, err := p.client.Files.Get(ctx, name, nil)
	if err != nil {
		err = wrapAPIError(err)
		logging.NewLogger(ctx).Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}
	return toMediaAsset(file), nil
}

func (p *Provider) DeleteFile(ctx context.Context, name string) error {
	_, err := p.client.Files.Delete(ctx, name, nil)
	if err != nil {
		err = wrapAPIError(err)
		logging.NewLogger(ctx).Errorf("error: %v", err)
		return utils.WrapIfNotNil(err)
	}
	return nil
}

func toMediaAsset(file *genai.File) *model.MediaAsset {
	if file == nil {
		return &model.MediaAsset{State: model.FileStatePending}
	}
	return &model.MediaAsset{
		Name:        file.Name,
		URI:         file.URI,
		MIMEType:    file.MIMEType,
		DisplayName: file.DisplayName,
		State:       mapFileState(file.State),
	}
}

func mapFileState(state genai.FileState) model.FileState {
	switch state {
	case genai.FileStateActive:
		return model.FileStateActive
	case genai.FileStateFailed:
		return model.FileStateFailed
	case genai.FileStateProcessing:
		return model.FileStateProcessing
	default:
		return model.FileStatePending
	}
}
