// Package runner drives reconciliation passes: it acquires source
// records, fetches the previously known entities, runs the engine per
// mapping, and submits what it computed. At most one pass is in flight at
// a time; a run that finds another still going skips instead of queueing.
package runner

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tracksync/bridge/internal/transport"
	"github.com/tracksync/bridge/pkg/dhis2"
	"github.com/tracksync/bridge/pkg/errors"
	"github.com/tracksync/bridge/pkg/logging"
	"github.com/tracksync/bridge/pkg/reconcile"
	"github.com/tracksync/bridge/pkg/sources"
	"github.com/tracksync/bridge/pkg/types"
)

// watermarkLayout is the format date-filtered sources receive.
const watermarkLayout = "2006-01-02 15:04:05"

// Runner owns the pass lifecycle for one server.
type Runner struct {
	client       *dhis2.Client
	source       sources.Source
	mappingsFile string
	logger       *zerolog.Logger

	mu    sync.Mutex // overlap guard: held for the duration of a pass
	since string     // watermark, advanced after each completed pass
}

// Option configures a Runner.
type Option func(*Runner)

// WithSource sets a global record source used for every mapping. Without
// one, each mapping must name its own feed URL.
func WithSource(src sources.Source) Option {
	return func(r *Runner) { r.source = src }
}

// WithMappingsFile loads mappings from a local file instead of the
// server datastore.
func WithMappingsFile(path string) Option {
	return func(r *Runner) { r.mappingsFile = path }
}

// WithLogger sets the runner's logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithSince sets the initial watermark for date-filtered sources.
func WithSince(since string) Option {
	return func(r *Runner) { r.since = since }
}

// New creates a Runner over a server client.
func New(client *dhis2.Client, opts ...Option) *Runner {
	r := &Runner{
		client: client,
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunOnce executes one full pass over every mapping. It returns
// errors.ErrRunInProgress when another pass still holds the guard, and
// fails outright only when the server is unreachable or no mappings can
// be loaded; per-mapping failures are recorded on the report instead.
func (r *Runner) RunOnce(ctx context.Context) (*Report, error) {
	if !r.mu.TryLock() {
		return nil, errors.ErrRunInProgress
	}
	defer r.mu.Unlock()

	if err := r.client.Ping(ctx); err != nil {
		return nil, err
	}

	mappings, err := r.mappings(ctx)
	if err != nil {
		return nil, err
	}

	report := newReport(uuid.NewString())
	until := time.Now().Format(watermarkLayout)
	window := sources.Window{Since: r.since, Until: until}

	for i := range mappings {
		m := &mappings[i]
		result, err := r.pass(ctx, m, window)
		report.add(m, result, err)
		if err != nil {
			r.logger.Error().Err(err).Str("mapping", m.ID).Msg("Pass failed for mapping")
		}
	}

	r.since = until
	report.finish()
	return report, nil
}

func (r *Runner) mappings(ctx context.Context) ([]types.Mapping, error) {
	if r.mappingsFile != "" {
		return dhis2.LoadMappingsFile(r.mappingsFile)
	}
	return r.client.Mappings(ctx)
}

// pass reconciles and submits one mapping.
func (r *Runner) pass(ctx context.Context, m *types.Mapping, window sources.Window) (*reconcile.Result, error) {
	records, err := r.acquire(ctx, m, window)
	if err != nil {
		return nil, err
	}

	previous, err := r.previous(ctx, m, records)
	if err != nil {
		return nil, err
	}

	engine, err := reconcile.New(m, reconcile.WithLogger(r.logger))
	if err != nil {
		return nil, err
	}
	result := engine.Run(records, previous)

	return result, r.submit(ctx, result)
}

// acquire picks the record source for a mapping: the global source when
// configured, otherwise the mapping's own feed.
func (r *Runner) acquire(ctx context.Context, m *types.Mapping, window sources.Window) ([]types.Record, error) {
	src := r.source
	if src == nil {
		if m.URL == "" {
			return nil, errors.NewValidationError("url", nil, "mapping has no feed URL and no global source is configured")
		}
		feed, err := sources.NewAPISource(m.URL, &transport.NoAuth{}, m.DateFilter, m.DateEndFilter)
		if err != nil {
			return nil, err
		}
		src = feed
	}
	return src.Records(ctx, window)
}

// previous runs the batched entity lookup keyed by the unique attribute.
// Mappings without a unique attribute have no prior identities at all.
func (r *Runner) previous(ctx context.Context, m *types.Mapping, records []types.Record) ([]types.TrackedEntityInstance, error) {
	column, ok := m.UniqueColumn()
	attribute, aok := m.UniqueAttribute()
	if !ok || !aok {
		return nil, nil
	}

	seen := make(map[string]struct{}, len(records))
	var ids []string
	for _, rec := range records {
		v := rec[column]
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		ids = append(ids, v)
	}
	return r.client.TrackedEntityInstances(ctx, attribute, ids)
}

// submit hands the result to the server, creates and updates together.
func (r *Runner) submit(ctx context.Context, result *reconcile.Result) error {
	instances := make([]types.TrackedEntityInstance, 0, len(result.NewEntities)+len(result.EntityUpdates))
	instances = append(instances, result.NewEntities...)
	instances = append(instances, result.EntityUpdates...)
	if err := r.client.SubmitTrackedEntityInstances(ctx, instances); err != nil {
		return err
	}

	if err := r.client.SubmitEnrollments(ctx, result.NewEnrollments); err != nil {
		return err
	}

	events := make([]types.Event, 0, len(result.NewEvents)+len(result.EventUpdates))
	events = append(events, result.NewEvents...)
	events = append(events, result.EventUpdates...)
	return r.client.SubmitEvents(ctx, events)
}
