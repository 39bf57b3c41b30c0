package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Nephrolytics-ai/polyglot-digest/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/model"
)

const (
	DefaultPollInterval    = 2 * time.Second
	DefaultMaxPollAttempts = 150
	DefaultPollTimeout     = 5 * time.Minute
)

// PollerConfig bounds the readiness wait. The wait ends at whichever of
// MaxAttempts or Timeout is hit first; a zero Timeout leaves only the
// attempt bound.
type PollerConfig struct {
	Interval    time.Duration
	MaxAttempts int
	Timeout     time.Duration
}

func (c PollerConfig) withDefaults() PollerConfig {
	if c.Interval <= 0 {
		c.Interval = DefaultPollInterval
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxPollAttempts
	}
	if c.Timeout < 0 {
		c.Timeout = 0
	}
	return c
}

// Poller waits for an uploaded file to leave PROCESSING.
type Poller struct {
	store model.MediaStore
	cfg   PollerConfig
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

func NewPoller(store model.MediaStore, cfg PollerConfig) *Poller {
	return &Poller{
		store: store,
		cfg:   cfg.withDefaults(),
		sleep: sleepContext,
		now:   time.Now,
	}
}

// WaitUntilActive issues one status query per iteration and sleeps the poll
// interval between queries. It returns only an ACTIVE asset.
func (p *Poller) WaitUntilActive(ctx context.Context, asset *model.MediaAsset) (*model.MediaAsset, error) {
	log := logging.NewLogger(ctx)
	if asset == nil || strings.TrimSpace(asset.Name) == "" {
		err := model.NewError(model.KindMediaProcessingFailed, "Audio processing failed.", errors.New("no media handle to poll"))
		log.Errorf("error: %v", err)
		return nil, err
	}
	if asset.State == model.FileStateActive {
		return asset, nil
	}

	start := p.now()
	for attempt := 1; ; attempt++ {
		current, err := p.store.GetFile(ctx, asset.Name)
		if err != nil {
			log.Errorf("error: %v", err)
			return nil, model.NewError(model.KindUpstreamUnavailable, "Could not check audio processing status.", err)
		}
		if current == nil {
			current = &model.MediaAsset{Name: asset.Name, State: model.FileStatePending}
		}

		switch current.State {
		case model.FileStateActive:
			ready := mergeAsset(asset, current)
			log.Infof("pipeline.Poller.WaitUntilActive name=%q attempts=%d elapsed=%s", ready.Name, attempt, p.now().Sub(start))
			return ready, nil
		case model.FileStateFailed:
			err = model.NewError(model.KindMediaProcessingFailed, "Audio processing failed.", fmt.Errorf("file %s reported FAILED", asset.Name))
			log.Errorf("error: %v", err)
			return nil, err
		}

		if attempt >= p.cfg.MaxAttempts {
			err = model.NewError(
				model.KindProcessingTimeout,
				"Audio processing did not finish in time.",
				fmt.Errorf("file %s still %s after %d attempts", asset.Name, current.State, attempt),
			)
			log.Errorf("error: %v", err)
			return nil, err
		}
		if p.cfg.Timeout > 0 && p.now().Sub(start)+p.cfg.Interval > p.cfg.Timeout {
			err = model.NewError(
				model.KindProcessingTimeout,
				"Audio processing did not finish in time.",
				fmt.Errorf("file %s still %s after %s", asset.Name, current.State, p.cfg.Timeout),
			)
			log.Errorf("error: %v", err)
			return nil, err
		}

		log.Debugf("pipeline.Poller.WaitUntilActive name=%q state=%s attempt=%d", asset.Name, current.State, attempt)
		if err = p.sleep(ctx, p.cfg.Interval); err != nil {
			log.Errorf("error: %v", err)
			return nil, model.NewError(model.KindProcessingTimeout, "Audio processing wait was cancelled.", err)
		}
	}
}

// mergeAsset keeps fields from the upload response that a status response
// left blank.
func mergeAsset(uploaded *model.MediaAsset, current *model.MediaAsset) *model.MediaAsset {
	merged := *current
	if merged.URI == "" {
		merged.URI = uploaded.URI
	}
	if merged.MIMEType == "" {
		merged.MIMEType = uploaded.MIMEType
	}
	if merged.DisplayName == "" {
		merged.DisplayName = uploaded.DisplayName
	}
	if merged.Name == "" {
		merged.Name = uploaded.Name
	}
	return &merged
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
