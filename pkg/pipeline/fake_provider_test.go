package pipeline

import (
	"context"
	"os"
	"sync"

	"github.com/Nephrolytics-ai/polyglot-digest/pkg/model"
)

type generateCall struct {
	Parts  []model.ContentPart
	Schema model.JSONSchema
	Config model.GeneratorConfig
}

// fakeProvider implements Provider. Each hook defaults to a successful
// response when nil.
type fakeProvider struct {
	mu sync.Mutex

	listFn     func(ctx context.Context) ([]model.ModelDescriptor, error)
	uploadFn   func(ctx context.Context, path, mimeType, displayName string) (*model.MediaAsset, error)
	getFn      func(ctx context.Context, name string, call int) (*model.MediaAsset, error)
	deleteFn   func(ctx context.Context, name string) error
	generateFn func(ctx context.Context, parts []model.ContentPart, cfg model.GeneratorConfig) (string, error)

	uploadedPaths []string
	uploadedBytes [][]byte
	getCalls      int
	deleted       []string
	generateCalls []generateCall
}

func (f *fakeProvider) ListModels(ctx context.Context) ([]model.ModelDescriptor, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

func (f *fakeProvider) UploadFile(ctx context.Context, path string, mimeType string, displayName string) (*model.MediaAsset, error) {
	body, _ := os.ReadFile(path)

	f.mu.Lock()
	f.uploadedPaths = append(f.uploadedPaths, path)
	f.uploadedBytes = append(f.uploadedBytes, body)
	f.mu.Unlock()

	if f.uploadFn != nil {
		return f.uploadFn(ctx, path, mimeType, displayName)
	}
	return &model.MediaAsset{
		Name:        "files/abc123",
		URI:         "https://example.test/files/abc123",
		MIMEType:    mimeType,
		DisplayName: displayName,
		State:       model.FileStateProcessing,
	}, nil
}

func (f *fakeProvider) GetFile(ctx context.Context, name string) (*model.MediaAsset, error) {
	f.mu.Lock()
	f.getCalls++
	call := f.getCalls
	f.mu.Unlock()

	if f.getFn != nil {
		return f.getFn(ctx, name, call)
	}
	return &model.MediaAsset{Name: name, State: model.FileStateActive}, nil
}

func (f *fakeProvider) DeleteFile(ctx context.Context, name string) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, name)
	f.mu.Unlock()

	if f.deleteFn != nil {
		return f.deleteFn(ctx, name)
	}
	return nil
}

func (f *fakeProvider) GenerateJSON(ctx context.Context, parts []model.ContentPart, schema model.JSONSchema, opts ...model.GeneratorOption) (string, model.GenerationMetadata, error) {
	cfg := model.ResolveGeneratorOpts(opts...)

	f.mu.Lock()
	f.generateCalls = append(f.generateCalls, generateCall{Parts: parts, Schema: schema, Config: cfg})
	f.mu.Unlock()

	meta := model.GenerationMetadata{model.MetadataKeyProvider: "fake"}
	if f.generateFn != nil {
		raw, err := f.generateFn(ctx, parts, cfg)
		return raw, meta, err
	}
	return `{"transcript":"hola","summary":"saludo","language":"es"}`, meta, nil
}

func (f *fakeProvider) GetCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCalls
}

func (f *fakeProvider) GenerateCalls() []generateCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]generateCall(nil), f.generateCalls...)
}

func (f *fakeProvider) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func (f *fakeProvider) UploadedPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.uploadedPaths...)
}
