// Package pipeline runs the three scrape stages end to end: directory walk,
// profile extraction, and contact resolution, then writes the result set.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/planner-contacts/internal/fanout"
	"github.com/sells-group/planner-contacts/internal/model"
	"github.com/sells-group/planner-contacts/internal/sink"
	"github.com/sells-group/planner-contacts/internal/store"
)

// Discoverer walks the listing directory.
type Discoverer interface {
	Discover(ctx context.Context, startPage, maxPage int) ([]model.ListingStub, error)
}

// Extractor turns a listing stub into a record. It never fails.
type Extractor interface {
	Extract(ctx context.Context, stub model.ListingStub) model.PlannerRecord
}

// Resolver fills in a record's email. It never fails.
type Resolver interface {
	Resolve(ctx context.Context, rec model.PlannerRecord) model.PlannerRecord
}

// Options configures a Pipeline.
type Options struct {
	StartPage          int
	MaxPage            int
	ProfileConcurrency int
	ContactConcurrency int
}

// Result is the outcome of a completed run.
type Result struct {
	RunID      string                `json:"run_id,omitempty"`
	Stubs      []model.ListingStub   `json:"-"`
	Records    []model.PlannerRecord `json:"-"`
	Summary    model.RunSummary      `json:"summary"`
	OutputPath string                `json:"output_path"`
	Duration   time.Duration         `json:"duration"`
}

// Pipeline orchestrates a scrape run.
type Pipeline struct {
	walker    Discoverer
	extractor Extractor
	resolver  Resolver
	sink      sink.Writer
	store     store.Store
	opts      Options
}

// New creates a Pipeline. st may be nil to skip run bookkeeping.
func New(walker Discoverer, extractor Extractor, resolver Resolver, out sink.Writer, st store.Store, opts Options) *Pipeline {
	if opts.ProfileConcurrency <= 0 {
		opts.ProfileConcurrency = 5
	}
	if opts.ContactConcurrency <= 0 {
		opts.ContactConcurrency = 5
	}
	return &Pipeline{
		walker:    walker,
		extractor: extractor,
		resolver:  resolver,
		sink:      out,
		store:     st,
		opts:      opts,
	}
}

// Run executes a full scrape. A directory failure aborts the run before any
// output is written; every other failure degrades a single record.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	log := zap.L().With(zap.Int("start_page", p.opts.StartPage), zap.Int("max_page", p.opts.MaxPage))
	log.Info("pipeline: starting run")

	runID := p.createRun(ctx)
	if runID != "" {
		log = log.With(zap.String("run_id", runID))
	}

	stubs, err := p.walker.Discover(ctx, p.opts.StartPage, p.opts.MaxPage)
	if err != nil {
		p.failRun(ctx, runID, err)
		return nil, eris.Wrap(err, "pipeline: discover")
	}
	log.Info("pipeline: directory walk complete", zap.Int("stubs", len(stubs)))

	extracted := p.ExtractAll(ctx, stubs)
	log.Info("pipeline: profile extraction complete",
		zap.Int("records", len(extracted)),
		zap.Int("websites", model.CountWebsites(extracted)),
	)

	records := p.ResolveAll(ctx, extracted)

	if err := ctx.Err(); err != nil {
		p.failRun(ctx, runID, err)
		return nil, eris.Wrap(err, "pipeline: cancelled")
	}

	summary := model.Summarize(len(stubs), records)
	log.Info("pipeline: contact resolution complete", zap.Int("emails_found", summary.EmailsFound))

	if err := p.sink.Write(records); err != nil {
		p.failRun(ctx, runID, err)
		return nil, eris.Wrap(err, "pipeline: write output")
	}
	log.Info("pipeline: wrote output", zap.String("path", p.sink.Path()))

	p.completeRun(ctx, runID, records, summary)

	res := &Result{
		RunID:      runID,
		Stubs:      stubs,
		Records:    records,
		Summary:    summary,
		OutputPath: p.sink.Path(),
		Duration:   time.Since(start),
	}
	log.Info("pipeline: run complete",
		zap.Int("records", summary.Records),
		zap.Int("emails_found", summary.EmailsFound),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

// ExtractAll runs the profile extractor over stubs with bounded
// concurrency. out[i] always corresponds to stubs[i].
func (p *Pipeline) ExtractAll(ctx context.Context, stubs []model.ListingStub) []model.PlannerRecord {
	return fanout.Map(ctx, stubs, p.opts.ProfileConcurrency, p.extractor.Extract)
}

// ResolveAll runs the contact resolver over records with bounded
// concurrency. out[i] always corresponds to records[i].
func (p *Pipeline) ResolveAll(ctx context.Context, records []model.PlannerRecord) []model.PlannerRecord {
	return fanout.Map(ctx, records, p.opts.ContactConcurrency, p.resolver.Resolve)
}

// Store bookkeeping never blocks the run: failures are logged and dropped.

func (p *Pipeline) createRun(ctx context.Context) string {
	if p.store == nil {
		return ""
	}
	run, err := p.store.CreateRun(ctx, p.opts.StartPage, p.opts.MaxPage)
	if err != nil {
		zap.L().Warn("pipeline: failed to create run", zap.Error(err))
		return ""
	}
	return run.ID
}

func (p *Pipeline) failRun(ctx context.Context, runID string, cause error) {
	if p.store == nil || runID == "" {
		return
	}
	if err := p.store.FailRun(context.WithoutCancel(ctx), runID, cause); err != nil {
		zap.L().Warn("pipeline: failed to mark run failed", zap.String("run_id", runID), zap.Error(err))
	}
}

func (p *Pipeline) completeRun(ctx context.Context, runID string, records []model.PlannerRecord, summary model.RunSummary) {
	if p.store == nil || runID == "" {
		return
	}
	if err := p.store.SaveRecords(ctx, runID, records); err != nil {
		zap.L().Warn("pipeline: failed to save records", zap.String("run_id", runID), zap.Error(err))
	}
	if err := p.store.CompleteRun(ctx, runID, summary); err != nil {
		zap.L().Warn("pipeline: failed to complete run", zap.String("run_id", runID), zap.Error(err))
	}
}
