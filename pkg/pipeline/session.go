package pipeline

import (
	"context"

	"github.com/Nephrolytics-ai/polyglot-digest/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/view"
)

// Session pairs an orchestrator with a view state for a single interactive
// user. Language switches always translate from the retained original.
type Session struct {
	orchestrator *Orchestrator
	state        *view.State
}

func NewSession(orchestrator *Orchestrator) *Session {
	return &Session{orchestrator: orchestrator, state: view.NewState()}
}

func (s *Session) View() *view.State {
	return s.state
}

// Summarize runs the workflow and, on success, replaces the view with the
// new result in the original language. A failure leaves the view as it was.
func (s *Session) Summarize(ctx context.Context, upload model.Upload, req model.GenerationRequest) (model.GenerationResult, error) {
	result, err := s.orchestrator.Summarize(ctx, upload, req)
	if err != nil {
		return model.GenerationResult{}, err
	}
	s.state.Reset(result)
	return result, nil
}

// SwitchLanguage shows the current result in language. A translation that
// finishes after a newer Summarize is dropped and view.ErrStale returned.
func (s *Session) SwitchLanguage(ctx context.Context, language string, modelID string) (model.ViewResult, error) {
	log := logging.NewLogger(ctx)

	if view.IsOriginal(language) {
		restored, err := s.state.ShowOriginal()
		if err != nil {
			log.Errorf("error: %v", err)
			return model.ViewResult{}, err
		}
		return restored, nil
	}

	original, epoch, ok := s.state.Original()
	if !ok {
		log.Errorf("error: %v", view.ErrNoResult)
		return model.ViewResult{}, view.ErrNoResult
	}

	translated, err := s.orchestrator.TranslateResult(ctx, original, language, modelID)
	if err != nil {
		return model.ViewResult{}, err
	}
	if err = s.state.Show(epoch, language, translated); err != nil {
		log.Warnf("discarding translation to %q: %v", language, err)
		return model.ViewResult{}, err
	}
	return translated, nil
}
