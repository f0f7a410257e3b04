package modelwatch

import (
	"time"

	"github.com/agentstation/modelwatch/internal/metrics"
	"github.com/agentstation/modelwatch/pkg/constants"
	"github.com/agentstation/modelwatch/pkg/errors"
	"github.com/agentstation/modelwatch/pkg/notify"
)

// Recorder receives run metrics. See internal/metrics for the Prometheus
// implementation.
type Recorder = metrics.Recorder

// Option configures a Detector.
type Option func(*config) error

type config struct {
	regions       []string
	notifier      notify.Notifier
	recorder      Recorder
	fetchTimeout  time.Duration
	notifyTimeout time.Duration
	dryRun        bool
	now           func() time.Time
}

func defaultConfig() *config {
	return &config{
		recorder:      metrics.NoopRecorder{},
		fetchTimeout:  constants.RegionFetchTimeout,
		notifyTimeout: constants.NotifyTimeout,
		now:           time.Now,
	}
}

// WithRegions sets the regions each run inspects, replacing any set by an
// earlier option. Blank and duplicate entries are dropped.
func WithRegions(regions ...string) Option {
	return func(c *config) error {
		c.regions = append([]string(nil), regions...)
		return nil
	}
}

// WithNotifier sets the notifier invoked when new items are found. Without
// one, runs log a warning and skip notification.
func WithNotifier(n notify.Notifier) Option {
	return func(c *config) error {
		c.notifier = n
		return nil
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *config) error {
		if r == nil {
			r = metrics.NoopRecorder{}
		}
		c.recorder = r
		return nil
	}
}

// WithFetchTimeout bounds each region's catalog listing.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *config) error {
		if d <= 0 {
			return &errors.ValidationError{Field: "fetch_timeout", Value: d, Message: "must be positive"}
		}
		c.fetchTimeout = d
		return nil
	}
}

// WithNotifyTimeout bounds the notifier call.
func WithNotifyTimeout(d time.Duration) Option {
	return func(c *config) error {
		if d <= 0 {
			return &errors.ValidationError{Field: "notify_timeout", Value: d, Message: "must be positive"}
		}
		c.notifyTimeout = d
		return nil
	}
}

// WithDryRun computes diffs without notifying or writing state.
func WithDryRun(enabled bool) Option {
	return func(c *config) error {
		c.dryRun = enabled
		return nil
	}
}

// withClock overrides the time source in tests.
func withClock(now func() time.Time) Option {
	return func(c *config) error {
		c.now = now
		return nil
	}
}
