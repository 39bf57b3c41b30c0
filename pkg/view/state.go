package view

import (
	"errors"
	"strings"
	"sync"

	"github.com/Nephrolytics-ai/polyglot-digest/pkg/model"
)

// OriginalLanguage is the language label of the untranslated result.
const OriginalLanguage = "original"

var (
	ErrNoResult = errors.New("no generation result to display")
	ErrStale    = errors.New("view changed since the translation started")
)

// State holds the last generation result and the projection currently on
// display. The original is never modified after Reset; every Reset starts a
// new epoch so work begun against an older result can be discarded.
type State struct {
	mu       sync.RWMutex
	original *model.GenerationResult
	current  model.ViewResult
	language string
	epoch    uint64
}

func NewState() *State {
	return &State{language: OriginalLanguage}
}

// Snapshot is a consistent copy of the state.
type Snapshot struct {
	HasResult bool
	Original  model.GenerationResult
	Current   model.ViewResult
	Language  string
	Epoch     uint64
}

// Reset replaces the original with result, shows it in the original
// language and returns the new epoch.
func (s *State) Reset(result model.GenerationResult) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	original := result
	s.original = &original
	s.current = original.View()
	s.language = OriginalLanguage
	s.epoch++
	return s.epoch
}

// Original returns the retained result and the epoch it belongs to.
func (s *State) Original() (model.GenerationResult, uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.original == nil {
		return model.GenerationResult{}, s.epoch, false
	}
	return *s.original, s.epoch, true
}

// Current returns the displayed projection and its language label.
func (s *State) Current() (model.ViewResult, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.language
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		HasResult: s.original != nil,
		Current:   s.current,
		Language:  s.language,
		Epoch:     s.epoch,
	}
	if s.original != nil {
		snap.Original = *s.original
	}
	return snap
}

// ShowOriginal restores the original projection without any external call.
func (s *State) ShowOriginal() (model.ViewResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.original == nil {
		return model.ViewResult{}, ErrNoResult
	}
	s.current = s.original.View()
	s.language = OriginalLanguage
	return s.current, nil
}

// Show displays a translated projection computed against epoch. It fails
// with ErrStale if a newer result arrived in the meantime and leaves the view
// untouched.
func (s *State) Show(epoch uint64, language string, result model.ViewResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.original == nil {
		return ErrNoResult
	}
	if epoch != s.epoch {
		return ErrStale
	}
	if IsOriginal(language) {
		s.current = s.original.View()
		s.language = OriginalLanguage
		return nil
	}
	s.current = result
	s.language = strings.TrimSpace(language)
	return nil
}

// IsOriginal reports whether language selects the untranslated result.
func IsOriginal(language string) bool {
	return strings.EqualFold(strings.TrimSpace(language), OriginalLanguage)
}
