package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Nephrolytics-ai/polyglot-digest/pkg/model"
	"github.com/stretchr/testify/suite"
)

type PollerSuite struct {
	suite.Suite
	ctx      context.Context
	provider *fakeProvider
	clock    time.Time
	sleeps   []time.Duration
	asset    *model.MediaAsset
}

func TestPollerSuite(t *testing.T) {
	suite.Run(t, new(PollerSuite))
}

func (s *PollerSuite) SetupTest() {
	s.ctx = context.Background()
	s.provider = &fakeProvider{}
	s.clock = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.sleeps = nil
	s.asset = &model.MediaAsset{
		Name:     "files/abc123",
		URI:      "https://example.test/files/abc123",
		MIMEType: "audio/mpeg",
		State:    model.FileStateProcessing,
	}
}

// newPoller advances a fake clock on every sleep instead of waiting.
func (s *PollerSuite) newPoller(cfg PollerConfig) *Poller {
	poller := NewPoller(s.provider, cfg)
	poller.now = func() time.Time { return s.clock }
	poller.sleep = func(ctx context.Context, d time.Duration) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.sleeps = append(s.sleeps, d)
		s.clock = s.clock.Add(d)
		return nil
	}
	return poller
}

func (s *PollerSuite) statesThen(states ...model.FileState) {
	s.provider.getFn = func(_ context.Context, name string, call int) (*model.MediaAsset, error) {
		idx := call - 1
		if idx >= len(states) {
			idx = len(states) - 1
		}
		return &model.MediaAsset{Name: name, State: states[idx]}, nil
	}
}

func (s *PollerSuite) TestDefaults() {
	cfg := PollerConfig{}.withDefaults()
	s.Equal(DefaultPollInterval, cfg.Interval)
	s.Equal(DefaultMaxPollAttempts, cfg.MaxAttempts)
	s.Equal(time.Duration(0), cfg.Timeout)
}

func (s *PollerSuite) TestAlreadyActiveSkipsQuery() {
	s.asset.State = model.FileStateActive

	ready, err := s.newPoller(PollerConfig{}).WaitUntilActive(s.ctx, s.asset)
	s.Require().NoError(err)
	s.Same(s.asset, ready)
	s.Zero(s.provider.GetCalls())
}

func (s *PollerSuite) TestPollsUntilActive() {
	s.statesThen(model.FileStateProcessing, model.FileStateProcessing, model.FileStateActive)

	ready, err := s.newPoller(PollerConfig{Interval: time.Second, MaxAttempts: 10}).WaitUntilActive(s.ctx, s.asset)
	s.Require().NoError(err)
	s.Equal(model.FileStateActive, ready.State)
	s.Equal(s.asset.URI, ready.URI)
	s.Equal(s.asset.MIMEType, ready.MIMEType)
	s.Equal(3, s.provider.GetCalls())
	s.Equal([]time.Duration{time.Second, time.Second}, s.sleeps)
}

func (s *PollerSuite) TestPendingKeepsPolling() {
	s.statesThen(model.FileStatePending, model.FileStateActive)

	ready, err := s.newPoller(PollerConfig{MaxAttempts: 5}).WaitUntilActive(s.ctx, s.asset)
	s.Require().NoError(err)
	s.Equal(model.FileStateActive, ready.State)
	s.Equal(2, s.provider.GetCalls())
}

func (s *PollerSuite) TestFailedState() {
	s.statesThen(model.FileStateProcessing, model.FileStateFailed)

	ready, err := s.newPoller(PollerConfig{MaxAttempts: 5}).WaitUntilActive(s.ctx, s.asset)
	s.Nil(ready)
	s.Equal(model.KindMediaProcessingFailed, model.KindOf(err))
	s.Equal("Audio processing failed.", model.UserMessage(err))
	s.Equal(2, s.provider.GetCalls())
}

func (s *PollerSuite) TestAttemptBound() {
	s.statesThen(model.FileStateProcessing)

	ready, err := s.newPoller(PollerConfig{Interval: time.Second, MaxAttempts: 4}).WaitUntilActive(s.ctx, s.asset)
	s.Nil(ready)
	s.Equal(model.KindProcessingTimeout, model.KindOf(err))
	s.Equal(4, s.provider.GetCalls())
	s.Len(s.sleeps, 3)
}

func (s *PollerSuite) TestTimeoutBound() {
	s.statesThen(model.FileStateProcessing)

	cfg := PollerConfig{Interval: 2 * time.Second, MaxAttempts: 1000, Timeout: 5 * time.Second}
	ready, err := s.newPoller(cfg).WaitUntilActive(s.ctx, s.asset)
	s.Nil(ready)
	s.Equal(model.KindProcessingTimeout, model.KindOf(err))
	s.Equal(3, s.provider.GetCalls())
}

func (s *PollerSuite) TestStatusQueryFailure() {
	s.provider.getFn = func(context.Context, string, int) (*model.MediaAsset, error) {
		return nil, errors.New("503 unavailable")
	}

	_, err := s.newPoller(PollerConfig{}).WaitUntilActive(s.ctx, s.asset)
	s.Equal(model.KindUpstreamUnavailable, model.KindOf(err))
}

func (s *PollerSuite) TestCancelledContext() {
	s.statesThen(model.FileStateProcessing)
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.newPoller(PollerConfig{}).WaitUntilActive(ctx, s.asset)
	s.Equal(model.KindProcessingTimeout, model.KindOf(err))
	s.ErrorIs(err, context.Canceled)
	s.Equal(1, s.provider.GetCalls())
}

func (s *PollerSuite) TestMissingHandle() {
	_, err := s.newPoller(PollerConfig{}).WaitUntilActive(s.ctx, &model.MediaAsset{})
	s.Equal(model.KindMediaProcessingFailed, model.KindOf(err))
	s.Zero(s.provider.GetCalls())
}

func (s *PollerSuite) TestSleepContextHonoursCancel() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	s.ErrorIs(sleepContext(ctx, time.Hour), context.Canceled)
	s.NoError(sleepContext(s.ctx, time.Millisecond))
}
