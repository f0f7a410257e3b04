package modelwatch

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/agentstation/modelwatch/internal/metrics"
	"github.com/agentstation/modelwatch/internal/tracing"
	"github.com/agentstation/modelwatch/pkg/catalog"
	"github.com/agentstation/modelwatch/pkg/differ"
	"github.com/agentstation/modelwatch/pkg/errors"
	"github.com/agentstation/modelwatch/pkg/itemset"
	"github.com/agentstation/modelwatch/pkg/logging"
	"github.com/agentstation/modelwatch/pkg/reconciler"
	"github.com/agentstation/modelwatch/pkg/state"
)

// Store is the state contract a Detector needs. *state.Store satisfies it.
type Store interface {
	Lookup(ctx context.Context, region string) state.Lookup
	Save(ctx context.Context, region string, items itemset.Set) error
}

// Detector runs detection passes over a fixed set of regions. A Detector
// is safe for sequential reuse; overlapping runs against the same store are
// the caller's concern.
type Detector struct {
	lister catalog.Lister
	store  Store
	config *config
	hooks
}

// New returns a Detector reading catalogs through lister and snapshots
// through store.
func New(lister catalog.Lister, store Store, opts ...Option) (*Detector, error) {
	if lister == nil {
		return nil, errors.NewConfigError("detector", "catalog lister is required", nil)
	}
	if store == nil {
		return nil, errors.NewConfigError("detector", "state store is required", nil)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	return &Detector{lister: lister, store: store, config: cfg}, nil
}

// Regions returns the normalized region list.
func (d *Detector) Regions() []string {
	return normalizeRegions(d.config.regions)
}

// Run performs one detection pass:
//
//  1. list every region concurrently, each under its own timeout
//  2. diff each listed region against its stored snapshot
//  3. notify once with every region's new items
//  4. store current ∪ previous for each listed region
//
// Regions whose listing fails are skipped entirely. Only configuration
// problems return an error; every other failure is recorded in the Result.
func (d *Detector) Run(ctx context.Context) (*Result, error) {
	regions := d.Regions()
	if len(regions) == 0 {
		return nil, errors.NewConfigError("detector", "no target regions configured", nil)
	}

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	ctx, span := tracing.Tracer().Start(ctx, "modelwatch.run")
	defer span.End()
	span.SetAttributes(
		attribute.String("modelwatch.run_id", runID),
		attribute.StringSlice("modelwatch.regions", regions),
		attribute.Bool("modelwatch.dry_run", d.config.dryRun),
	)

	started := d.config.now()
	result := newResult(runID, started, regions, d.config.dryRun)
	logger := logging.Ctx(ctx)
	logger.Info().
		Strs("regions", regions).
		Bool("dry_run", d.config.dryRun).
		Msg("Starting model detection")

	current := d.fetchAll(ctx, regions, result)

	previous := make(map[string]itemset.Set, len(current))
	for _, region := range regions {
		items, ok := current[region]
		if !ok {
			continue
		}
		previous[region] = d.diff(ctx, region, items, result)
	}

	d.notify(ctx, result)

	if !d.config.dryRun {
		for _, region := range regions {
			if items, ok := current[region]; ok {
				d.persist(ctx, region, reconciler.Merge(items, previous[region]), result)
			}
		}
	}

	result.Duration = d.config.now().Sub(started)
	d.config.recorder.ObserveRunDuration(result.Duration)
	d.config.recorder.IncRunOutcome(result.Outcome())

	span.SetAttributes(
		attribute.Int("modelwatch.new_count", result.NewItems.Total()),
		attribute.Bool("modelwatch.success", result.Success),
	)
	if !result.Success {
		span.SetStatus(codes.Error, strings.Join(result.Errors, "; "))
	}

	var event *zerolog.Event
	if result.Success {
		event = logger.Info()
	} else {
		event = logger.Warn().Strs("errors", result.Errors)
	}
	event.
		Bool("success", result.Success).
		Int("new_count", result.NewItems.Total()).
		Bool("notified", result.Notified).
		Dur("duration", result.Duration).
		Msg(result.Summary())

	return result, nil
}

type fetchResult struct {
	region   string
	items    itemset.Set
	err      error
	duration time.Duration
}

// fetchAll lists every region concurrently. Failed regions are recorded
// and left out of the returned map.
func (d *Detector) fetchAll(ctx context.Context, regions []string, result *Result) map[string]itemset.Set {
	var wg sync.WaitGroup
	results := make(chan fetchResult, len(regions))

	for _, region := range regions {
		wg.Add(1)
		go func(region string) {
			defer wg.Done()
			results <- d.fetch(ctx, region)
		}(region)
	}

	wg.Wait()
	close(results)

	current := make(map[string]itemset.Set, len(regions))
	for fr := range results {
		outcome := result.Regions[fr.region]
		d.config.recorder.ObserveFetchDuration(fr.region, fr.duration, fr.err == nil)

		if fr.err != nil {
			logging.Ctx(ctx).Error().
				Err(fr.err).
				Str("region", fr.region).
				Bool("timeout", errors.IsTimeout(fr.err)).
				Msg("Failed to list models, skipping region")
			outcome.Err = fr.err
			result.fail(fr.err)
			continue
		}

		outcome.Fetched = true
		outcome.CurrentCount = fr.items.Len()
		current[fr.region] = fr.items
	}

	// results arrive in completion order
	slices.Sort(result.Errors)
	return current
}

func (d *Detector) fetch(ctx context.Context, region string) fetchResult {
	ctx, cancel := context.WithTimeout(ctx, d.config.fetchTimeout)
	defer cancel()

	ctx, span := tracing.Tracer().Start(ctx, "modelwatch.fetch")
	defer span.End()
	span.SetAttributes(attribute.String("modelwatch.region", region))

	ctx = logging.WithRegion(ctx, region)
	start := time.Now()
	items, err := d.list(ctx, region)
	fr := fetchResult{region: region, items: items, duration: time.Since(start)}

	if err != nil {
		if !errors.IsUpstreamFetch(err) {
			err = errors.NewUpstreamFetchError(region, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		fr.err = err
		fr.items = nil
		return fr
	}
	if fr.items == nil {
		fr.items = itemset.New()
	}

	span.SetAttributes(attribute.Int("modelwatch.model_count", fr.items.Len()))
	logging.Ctx(ctx).Info().
		Int("model_count", fr.items.Len()).
		Msg("Listed models")
	return fr
}

type listing struct {
	items itemset.Set
	err   error
}

// list calls the lister but returns as soon as ctx is done, even when the
// lister ignores cancellation. A late listing is discarded.
func (d *Detector) list(ctx context.Context, region string) (itemset.Set, error) {
	done := make(chan listing, 1)
	go func() {
		items, err := d.lister.ListItems(ctx, region)
		done <- listing{items: items, err: err}
	}()

	select {
	case l := <-done:
		if l.err != nil && ctx.Err() != nil {
			return nil, errors.NewUpstreamFetchError(region, contextError(ctx.Err()))
		}
		return l.items, l.err
	case <-ctx.Done():
		return nil, errors.NewUpstreamFetchError(region, contextError(ctx.Err()))
	}
}

// contextError classifies a context error as ErrTimeout or ErrCanceled,
// keeping the original in the chain.
func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", errors.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", errors.ErrCanceled, err)
}

// diff compares a listed region with its snapshot and records new items.
// It returns the previous set for reconciliation.
func (d *Detector) diff(ctx context.Context, region string, items itemset.Set, result *Result) itemset.Set {
	ctx = logging.WithRegion(ctx, region)
	outcome := result.Regions[region]

	lookup := d.store.Lookup(ctx, region)
	if lookup.Err != nil {
		outcome.PreviousUnavailable = true
		d.config.recorder.IncPersistenceError(region, errors.OpRead)
	}
	outcome.PreviousCount = lookup.Items.Len()

	changes := differ.Compare(items, lookup.Items)
	outcome.New = changes.Added.Sorted()
	outcome.Missing = changes.Missing.Sorted()

	logger := logging.Ctx(ctx)
	if changes.Missing.Len() > 0 {
		logger.Debug().
			Strs("missing", outcome.Missing).
			Msg("Previously seen models absent from listing, keeping them")
	}
	if !changes.HasChanges() {
		logger.Debug().Bool("first_run", !lookup.Found).Msg("No new models")
		return lookup.Items
	}

	logger.Info().
		Int("new_count", len(outcome.New)).
		Strs("new_models", outcome.New).
		Bool("first_run", !lookup.Found && lookup.Err == nil).
		Msg("New models detected")

	result.NewItems.Add(region, changes.Added)
	d.config.recorder.AddNewItems(region, len(outcome.New))
	d.triggerNewItems(region, outcome.New)
	return lookup.Items
}

func (d *Detector) notify(ctx context.Context, result *Result) {
	logger := logging.Ctx(ctx)
	payload := result.NewItems

	switch {
	case payload.IsEmpty():
		logger.Info().Msg("No new models detected")
		return
	case d.config.dryRun:
		logger.Info().
			Strs("regions", payload.Regions()).
			Int("new_count", payload.Total()).
			Msg("Dry run, not notifying")
		d.config.recorder.IncNotification(metrics.OutcomeSkipped)
		return
	case d.config.notifier == nil:
		logger.Warn().
			Strs("regions", payload.Regions()).
			Int("new_count", payload.Total()).
			Msg("No notifier configured, skipping notification")
		d.config.recorder.IncNotification(metrics.OutcomeSkipped)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, d.config.notifyTimeout)
	defer cancel()

	if err := d.config.notifier.Notify(ctx, payload); err != nil {
		if !errors.IsNotification(err) {
			err = errors.NewNotificationError("", err)
		}
		logger.Error().Err(err).Msg("Notification failed, state will still be updated")
		result.fail(err)
		d.config.recorder.IncNotification(metrics.OutcomeFailed)
		return
	}

	result.Notified = true
	d.config.recorder.IncNotification(metrics.OutcomeSuccess)
	logger.Info().
		Strs("regions", payload.Regions()).
		Int("new_count", payload.Total()).
		Msg("Notification sent")
}

func (d *Detector) persist(ctx context.Context, region string, merged itemset.Set, result *Result) {
	ctx = logging.WithRegion(ctx, region)
	outcome := result.Regions[region]

	if err := d.store.Save(ctx, region, merged); err != nil {
		if !errors.IsPersistence(err) {
			err = errors.NewPersistenceWriteError(region, err)
		}
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to save snapshot")
		outcome.Err = err
		result.fail(err)
		d.config.recorder.IncPersistenceError(region, errors.OpWrite)
		return
	}

	outcome.Saved = true
	d.config.recorder.SetTrackedItems(region, merged.Len())
	logging.Ctx(ctx).Info().
		Int("model_count", merged.Len()).
		Msg("Saved snapshot")
}

// normalizeRegions trims, drops blanks and removes duplicates while keeping
// the first occurrence order.
func normalizeRegions(regions []string) []string {
	seen := make(map[string]struct{}, len(regions))
	out := make([]string, 0, len(regions))
	for _, r := range regions {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
