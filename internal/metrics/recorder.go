// Package metrics records detection run metrics.
package metrics

import "time"

// Outcome labels for runs and notifications.
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// Recorder receives detection run observations. Implementations must be
// safe for concurrent use.
type Recorder interface {
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(outcome string)
	ObserveFetchDuration(region string, d time.Duration, success bool)
	AddNewItems(region string, n int)
	SetTrackedItems(region string, n int)
	IncPersistenceError(region, op string)
	IncNotification(outcome string)
}

// NoopRecorder discards everything. It is the default when metrics are not
// configured.
type NoopRecorder struct{}

var _ Recorder = NoopRecorder{}

func (NoopRecorder) ObserveRunDuration(time.Duration)                 {}
func (NoopRecorder) IncRunOutcome(string)                             {}
func (NoopRecorder) ObserveFetchDuration(string, time.Duration, bool) {}
func (NoopRecorder) AddNewItems(string, int)                          {}
func (NoopRecorder) SetTrackedItems(string, int)                      {}
func (NoopRecorder) IncPersistenceError(string, string)               {}
func (NoopRecorder) IncNotification(string)                           {}
