package modelwatch

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/agentstation/modelwatch/internal/metrics"
	"github.com/agentstation/modelwatch/pkg/notify"
)

// Result describes one detection run.
type Result struct {
	RunID     string
	Success   bool           // false when any fetch, write or notification failed
	NewItems  notify.Payload // region -> new IDs; empty when nothing is new
	Errors    []string       // one entry per failed step, in the order observed
	Regions   map[string]*RegionOutcome
	Notified  bool
	DryRun    bool
	StartedAt time.Time
	Duration  time.Duration
}

// RegionOutcome is the per-region detail of a run.
type RegionOutcome struct {
	Region              string
	Fetched             bool     // the catalog listing succeeded
	CurrentCount        int      // items listed this run
	PreviousCount       int      // items in the snapshot before this run
	PreviousUnavailable bool     // the snapshot could not be read and was treated as empty
	New                 []string // current - previous
	Missing             []string // previous - current; kept in state
	Saved               bool
	Err                 error // first failure for the region, if any
}

func newResult(runID string, started time.Time, regions []string, dryRun bool) *Result {
	r := &Result{
		RunID:     runID,
		Success:   true,
		NewItems:  notify.Payload{},
		Errors:    []string{},
		Regions:   make(map[string]*RegionOutcome, len(regions)),
		DryRun:    dryRun,
		StartedAt: started,
	}
	for _, region := range regions {
		r.Regions[region] = &RegionOutcome{Region: region}
	}
	return r
}

func (r *Result) fail(err error) {
	r.Success = false
	r.Errors = append(r.Errors, err.Error())
}

// HasNewItems reports whether any region had new items.
func (r *Result) HasNewItems() bool {
	return !r.NewItems.IsEmpty()
}

// FetchedRegions returns the regions whose listing succeeded, sorted.
func (r *Result) FetchedRegions() []string {
	var out []string
	for region, o := range r.Regions {
		if o.Fetched {
			out = append(out, region)
		}
	}
	slices.Sort(out)
	return out
}

// Outcome classifies the run as success, partial or failed. A run is
// failed when no region could be listed.
func (r *Result) Outcome() string {
	switch {
	case r.Success:
		return metrics.OutcomeSuccess
	case len(r.FetchedRegions()) == 0:
		return metrics.OutcomeFailed
	default:
		return metrics.OutcomePartial
	}
}

// Summary returns a one-line description of the run.
func (r *Result) Summary() string {
	var parts []string
	if r.DryRun {
		parts = append(parts, "(Dry run)")
	}
	if len(r.Errors) > 0 {
		parts = append(parts, fmt.Sprintf("(%d errors)", len(r.Errors)))
	}

	summary := "No new models detected"
	if r.HasNewItems() {
		summary = fmt.Sprintf("%d new models across %d regions", r.NewItems.Total(), len(r.NewItems))
	}
	if len(parts) > 0 {
		summary += " " + strings.Join(parts, " ")
	}
	return summary
}

// Summary returns a one-line description of the region.
func (o *RegionOutcome) Summary() string {
	if !o.Fetched {
		return fmt.Sprintf("%s: fetch failed", o.Region)
	}
	s := fmt.Sprintf("%s: %d listed, %d known, %d new", o.Region, o.CurrentCount, o.PreviousCount, len(o.New))
	if len(o.Missing) > 0 {
		s += fmt.Sprintf(", %d absent", len(o.Missing))
	}
	if o.PreviousUnavailable {
		s += " (previous snapshot unavailable)"
	}
	return s
}

// Report is the serializable form of a Result.
type Report struct {
	RunID     string                  `json:"run_id" yaml:"run_id"`
	Success   bool                    `json:"success" yaml:"success"`
	NewItems  map[string][]string     `json:"new_items_by_region" yaml:"new_items_by_region"`
	Errors    []string                `json:"errors" yaml:"errors"`
	Notified  bool                    `json:"notified" yaml:"notified"`
	DryRun    bool                    `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	StartedAt string                  `json:"started_at" yaml:"started_at"`
	Duration  string                  `json:"duration" yaml:"duration"`
	Regions   map[string]RegionReport `json:"regions" yaml:"regions"`
}

// RegionReport is the serializable form of a RegionOutcome.
type RegionReport struct {
	Fetched             bool     `json:"fetched" yaml:"fetched"`
	CurrentCount        int      `json:"current_count" yaml:"current_count"`
	PreviousCount       int      `json:"previous_count" yaml:"previous_count"`
	PreviousUnavailable bool     `json:"previous_unavailable,omitempty" yaml:"previous_unavailable,omitempty"`
	New                 []string `json:"new,omitempty" yaml:"new,omitempty"`
	Missing             []string `json:"missing,omitempty" yaml:"missing,omitempty"`
	Saved               bool     `json:"saved" yaml:"saved"`
	Error               string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report converts r for JSON or YAML output.
func (r *Result) Report() Report {
	rep := Report{
		RunID:     r.RunID,
		Success:   r.Success,
		NewItems:  map[string][]string(r.NewItems),
		Errors:    r.Errors,
		Notified:  r.Notified,
		DryRun:    r.DryRun,
		StartedAt: r.StartedAt.UTC().Format(time.RFC3339),
		Duration:  r.Duration.String(),
		Regions:   make(map[string]RegionReport, len(r.Regions)),
	}
	if rep.NewItems == nil {
		rep.NewItems = map[string][]string{}
	}
	if rep.Errors == nil {
		rep.Errors = []string{}
	}
	for region, o := range r.Regions {
		rr := RegionReport{
			Fetched:             o.Fetched,
			CurrentCount:        o.CurrentCount,
			PreviousCount:       o.PreviousCount,
			PreviousUnavailable: o.PreviousUnavailable,
			New:                 o.New,
			Missing:             o.Missing,
			Saved:               o.Saved,
		}
		if o.Err != nil {
			rr.Error = o.Err.Error()
		}
		rep.Regions[region] = rr
	}
	return rep
}
