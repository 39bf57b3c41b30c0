package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/Nephrolytics-ai/polyglot-digest/pkg/model"
	"github.com/stretchr/testify/suite"
)

type TranslateSuite struct {
	suite.Suite
	ctx      context.Context
	provider *fakeProvider
	invoker  *TranslationInvoker
}

func TestTranslateSuite(t *testing.T) {
	suite.Run(t, new(TranslateSuite))
}

func (s *TranslateSuite) SetupTest() {
	s.ctx = context.Background()
	s.provider = &fakeProvider{
		generateFn: func(context.Context, []model.ContentPart, model.GeneratorConfig) (string, error) {
			return `{"translatedText":"hello"}`, nil
		},
	}
	s.invoker = NewTranslationInvoker(s.provider)
}

func (s *TranslateSuite) TestTranslate() {
	text, err := s.invoker.Translate(s.ctx, "hola", "English", "gemini-2.5-flash")
	s.Require().NoError(err)
	s.Equal("hello", text)

	calls := s.provider.GenerateCalls()
	s.Require().Len(calls, 1)
	s.Require().Len(calls[0].Parts, 1)
	s.Contains(calls[0].Parts[0].Text, "Translate the following text to English.")
	s.Contains(calls[0].Parts[0].Text, "hola")
	s.Contains(calls[0].Schema, "properties")
	s.Equal("gemini-2.5-flash", *calls[0].Config.Model)
}

func (s *TranslateSuite) TestEmptyInputRejectedWithoutCall() {
	_, err := s.invoker.Translate(s.ctx, "  ", "English", "")
	s.Equal(model.KindGenerationRejected, model.KindOf(err))

	_, err = s.invoker.Translate(s.ctx, "hola", "", "")
	s.Equal(model.KindGenerationRejected, model.KindOf(err))
	s.Empty(s.provider.GenerateCalls())
}

func (s *TranslateSuite) TestProviderFailure() {
	s.provider.generateFn = func(context.Context, []model.ContentPart, model.GeneratorConfig) (string, error) {
		return "", errors.New("quota exceeded")
	}
	_, err := s.invoker.Translate(s.ctx, "hola", "English", "")
	s.Equal(model.KindGenerationRejected, model.KindOf(err))
}

func (s *TranslateSuite) TestMalformedResponse() {
	s.provider.generateFn = func(context.Context, []model.ContentPart, model.GeneratorConfig) (string, error) {
		return `{"text":"hello"}`, nil
	}
	_, err := s.invoker.Translate(s.ctx, "hola", "English", "")
	s.Equal(model.KindMalformedResponse, model.KindOf(err))
}
