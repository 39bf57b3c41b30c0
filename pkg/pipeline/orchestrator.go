package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/Nephrolytics-ai/polyglot-digest/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/view"
	"golang.org/x/sync/errgroup"
)

const remoteDeleteTimeout = 30 * time.Second

// Provider is the full provider surface the orchestrator needs.
type Provider interface {
	model.ModelCatalog
	model.MediaStore
	model.JSONGenerator
}

type Config struct {
	StagingDir        string
	MaxUploadBytes    int64
	Poll              PollerConfig
	DefaultRules      string
	DeleteRemoteMedia bool
	GeneratorOptions  []model.GeneratorOption
	// TranslationGenerator serves translation calls instead of the provider
	// when set. It carries its own tuning; GeneratorOptions are not applied
	// to it.
	TranslationGenerator model.JSONGenerator
}

// Orchestrator runs the summarize workflow and the translation fan-out.
// It keeps no state between calls.
type Orchestrator struct {
	catalog    *Catalog
	ingestor   *Ingestor
	poller     *Poller
	generator  *GenerationInvoker
	translator *TranslationInvoker
	store      model.MediaStore
	cfg        Config
}

func NewOrchestrator(provider Provider, cfg Config) *Orchestrator {
	var translationGenerator model.JSONGenerator = provider
	translationOpts := cfg.GeneratorOptions
	if cfg.TranslationGenerator != nil {
		translationGenerator = cfg.TranslationGenerator
		translationOpts = nil
	}
	return &Orchestrator{
		catalog:    NewCatalog(provider),
		ingestor:   NewIngestor(NewStager(cfg.StagingDir, cfg.MaxUploadBytes), provider),
		poller:     NewPoller(provider, cfg.Poll),
		generator:  NewGenerationInvoker(provider, cfg.DefaultRules, cfg.GeneratorOptions...),
		translator: NewTranslationInvoker(translationGenerator, translationOpts...),
		store:      provider,
		cfg:        cfg,
	}
}

// ListModels never fails; an unreachable catalog yields an empty list.
func (o *Orchestrator) ListModels(ctx context.Context) []model.ModelDescriptor {
	models, err := o.catalog.List(ctx)
	if err != nil {
		logging.NewLogger(ctx).Warnf("model catalog unavailable: %v", err)
		return []model.ModelDescriptor{}
	}
	return models
}

// Summarize ingests the upload, waits for the provider to finish processing
// it and runs the structured generation call. The first failing stage ends
// the workflow and its error kind is returned unchanged. The staged copy is
// removed on every path.
func (o *Orchestrator) Summarize(ctx context.Context, upload model.Upload, req model.GenerationRequest) (model.GenerationResult, error) {
	log := logging.NewLogger(ctx)
	start := time.Now()

	asset, staged, err := o.ingestor.Ingest(ctx, upload)
	if err != nil {
		return model.GenerationResult{}, err
	}
	defer func() {
		if removeErr := staged.Remove(); removeErr != nil {
			log.Warnf("staged file cleanup failed path=%q: %v", staged.Path, removeErr)
		}
	}()
	if o.cfg.DeleteRemoteMedia {
		defer o.deleteRemote(ctx, asset.Name)
	}

	ready, err := o.poller.WaitUntilActive(ctx, asset)
	if err != nil {
		return model.GenerationResult{}, err
	}

	result, err := o.generator.Generate(ctx, ready, req)
	if err != nil {
		return model.GenerationResult{}, err
	}

	log.Infof("pipeline.Orchestrator.Summarize file=%q language=%q elapsed=%s", ready.Name, result.Language, time.Since(start))
	return result, nil
}

// deleteRemote removes the provider copy. It outlives a cancelled request
// context and only logs failures.
func (o *Orchestrator) deleteRemote(ctx context.Context, name string) {
	deleteCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), remoteDeleteTimeout)
	defer cancel()

	if err := o.store.DeleteFile(deleteCtx, name); err != nil {
		logging.NewLogger(ctx).Warnf("remote media cleanup failed name=%q: %v", name, err)
	}
}

// TranslateText translates a single text. The original label returns text
// untouched.
func (o *Orchestrator) TranslateText(ctx context.Context, text string, targetLanguage string, modelID string) (string, error) {
	if view.IsOriginal(targetLanguage) {
		return text, nil
	}
	return o.translator.Translate(ctx, text, targetLanguage, modelID)
}

// TranslateResult renders original in targetLanguage. Transcript and summary
// are translated concurrently; if either fails the whole translation fails
// with TranslationFailed and no partial view is returned. original is never
// modified.
func (o *Orchestrator) TranslateResult(ctx context.Context, original model.GenerationResult, targetLanguage string, modelID string) (model.ViewResult, error) {
	log := logging.NewLogger(ctx)
	if view.IsOriginal(targetLanguage) {
		return original.View(), nil
	}

	translated := model.ViewResult{}
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		text, err := o.translateField(groupCtx, original.Transcript, targetLanguage, modelID)
		translated.Transcript = text
		return err
	})
	group.Go(func() error {
		text, err := o.translateField(groupCtx, original.Summary, targetLanguage, modelID)
		translated.Summary = text
		return err
	})

	if err := group.Wait(); err != nil {
		log.Errorf("error: %v", err)
		return model.ViewResult{}, model.NewError(model.KindTranslationFailed, "Translation failed.", err)
	}

	log.Infof("pipeline.Orchestrator.TranslateResult target=%q", targetLanguage)
	return translated, nil
}

// translateField skips blank fields so an empty summary needs no call.
func (o *Orchestrator) translateField(ctx context.Context, text string, targetLanguage string, modelID string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	return o.translator.Translate(ctx, text, targetLanguage, modelID)
}
