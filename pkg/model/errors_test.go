package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorsSuite struct {
	suite.Suite
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsSuite))
}

func (s *ErrorsSuite) TestKindOfSurvivesWrapping() {
	base := NewError(KindProcessingTimeout, "Audio processing timed out.", errors.New("deadline"))
	wrapped := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", base))

	s.Equal(KindProcessingTimeout, KindOf(wrapped))
	s.Equal("Audio processing timed out.", UserMessage(wrapped))
}

func (s *ErrorsSuite) TestKindOfUnclassified() {
	s.Equal(KindUnknown, KindOf(errors.New("boom")))
	s.Equal(ErrorKind(""), KindOf(nil))
}

func (s *ErrorsSuite) TestUserMessageFallsBackToErrorText() {
	s.Equal("boom", UserMessage(errors.New("boom")))
	s.Empty(UserMessage(nil))
}

func (s *ErrorsSuite) TestErrorsIsMatchesKind() {
	err := fmt.Errorf("wrap: %w", NewError(KindTranslationFailed, "Translation failed.", nil))

	s.True(errors.Is(err, &Error{Kind: KindTranslationFailed}))
	s.False(errors.Is(err, &Error{Kind: KindMalformedResponse}))
}

func (s *ErrorsSuite) TestErrorString() {
	s.Equal("IngestionRejected: empty", NewError(KindIngestionRejected, "empty", nil).Error())
	s.Equal(
		"GenerationRejected: rejected: boom",
		NewError(KindGenerationRejected, "rejected", errors.New("boom")).Error(),
	)
}

func (s *ErrorsSuite) TestProviderErrorClassification() {
	err := fmt.Errorf("upload: %w", &ProviderError{StatusCode: 413, Status: "Payload Too Large", Err: errors.New("too big")})

	providerErr, ok := AsProviderError(err)
	s.Require().True(ok)
	s.True(providerErr.IsClientError())

	providerErr.StatusCode = 503
	s.False(providerErr.IsClientError())

	_, ok = AsProviderError(errors.New("dial tcp: refused"))
	s.False(ok)
}
