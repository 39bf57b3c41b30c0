package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Nephrolytics-ai/polyglot-digest/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/model"
)

const translationPromptTemplate = `Translate the following text to %s.
Return the result as a JSON object with the key 'translatedText'.

Text:
%s`

// TranslationInvoker translates one text into a target language. It has no
// side effects beyond the provider call.
type TranslationInvoker struct {
	generator model.JSONGenerator
	opts      []model.GeneratorOption
}

func NewTranslationInvoker(generator model.JSONGenerator, opts ...model.GeneratorOption) *TranslationInvoker {
	return &TranslationInvoker{generator: generator, opts: opts}
}

func (t *TranslationInvoker) Translate(ctx context.Context, text string, targetLanguage string, modelID string) (string, error) {
	log := logging.NewLogger(ctx)

	if strings.TrimSpace(text) == "" || strings.TrimSpace(targetLanguage) == "" {
		err := model.NewError(model.KindGenerationRejected, "Text and targetLanguage are required.", errors.New("empty translation input"))
		log.Errorf("error: %v", err)
		return "", err
	}

	schema, err := model.JSONSchemaFor[model.TranslationResult]()
	if err != nil {
		log.Errorf("error: %v", err)
		return "", model.NewError(model.KindGenerationRejected, "Failed to build the response schema.", err)
	}

	prompt := fmt.Sprintf(translationPromptTemplate, strings.TrimSpace(targetLanguage), text)
	opts := append(append([]model.GeneratorOption{}, t.opts...), model.WithModel(modelID))

	raw, meta, err := t.generator.GenerateJSON(ctx, []model.ContentPart{model.TextPart(prompt)}, schema, opts...)
	if err != nil {
		log.Errorf("error: %v", err)
		return "", model.NewError(model.KindGenerationRejected, "The provider failed to translate the text.", err)
	}

	translated, err := parseTranslationResult(raw)
	if err != nil {
		log.Errorf("error: %v", err)
		return "", model.NewError(model.KindMalformedResponse, "The provider returned an unreadable translation.", err)
	}

	log.Debugf("pipeline.TranslationInvoker.Translate target=%q model=%q chars=%d", targetLanguage, meta[model.MetadataKeyModel], len(translated))
	return translated, nil
}

func parseTranslationResult(raw string) (string, error) {
	payload := translationPayload{}
	if err := decodeJSONObject(raw, &payload); err != nil {
		return "", err
	}
	if payload.TranslatedText == nil {
		return "", fmt.Errorf("response is missing required fields: translatedText")
	}
	return *payload.TranslatedText, nil
}
