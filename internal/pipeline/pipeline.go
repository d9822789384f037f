package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/crimson-sun/spfeed/internal/alerts"
	"github.com/crimson-sun/spfeed/internal/model"
	"github.com/crimson-sun/spfeed/internal/output"
	"github.com/crimson-sun/spfeed/internal/payload"
	"github.com/crimson-sun/spfeed/internal/source"
	"github.com/crimson-sun/spfeed/internal/taxonomy"
)

// Pipeline connects a source, the decoders, and an output.
type Pipeline struct {
	source source.Source
	cfg    source.Config
	output output.Output
	log    *zap.Logger
	norm   *alerts.Normalizer
	store  *taxonomy.Store
	now    func() time.Time

	skipped atomic.Int64 // items and payload versions that could not be used
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Default: zap.L() at construction time.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithClock replaces time.Now for window evaluation.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithStore sets the store RunTaxonomy fills. Default: a store without expiry.
func WithStore(s *taxonomy.Store) Option {
	return func(p *Pipeline) { p.store = s }
}

// New creates a Pipeline reading from src with cfg and writing to out.
func New(src source.Source, cfg source.Config, out output.Output, opts ...Option) *Pipeline {
	p := &Pipeline{
		source: src,
		cfg:    cfg,
		output: out,
		log:    zap.L(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.store == nil {
		p.store = taxonomy.NewStore(0)
	}
	p.log = p.log.Named("pipeline")
	p.norm = alerts.NewNormalizer(p.log).WithClock(p.now)
	return p
}

// Store returns the term set store filled by RunTaxonomy.
func (p *Pipeline) Store() *taxonomy.Store {
	return p.store
}

// RunAlerts reads one alert list payload and writes every resulting alert.
func (p *Pipeline) RunAlerts(ctx context.Context, opts alerts.Options) (alerts.Result, error) {
	data, err := p.source.Read(ctx, p.cfg)
	if err != nil {
		return alerts.Result{}, fmt.Errorf("pipeline read: %w", err)
	}
	items, err := payload.AlertItems(data)
	if err != nil {
		return alerts.Result{}, fmt.Errorf("pipeline decode: %w", err)
	}
	res, err := p.norm.Normalize(items, opts)
	if err != nil {
		return alerts.Result{}, fmt.Errorf("pipeline normalize: %w", err)
	}
	p.skipped.Add(int64(res.Skipped))
	for _, a := range res.Alerts {
		if err := p.output.Write(ctx, a); err != nil {
			return res, fmt.Errorf("pipeline output: %w", err)
		}
	}
	p.log.Info("alerts written",
		zap.Int("items", len(items)),
		zap.Int("written", len(res.Alerts)),
		zap.Int("skipped", res.Skipped),
		zap.Int("inactive", res.Inactive),
		zap.Int("duplicates", res.Duplicates))
	return res, nil
}

// TaxonomyOptions controls RunTaxonomy.
type TaxonomyOptions struct {
	Validate      taxonomy.ValidateOptions
	Lenient       bool // log violations and continue instead of failing
	AnnotateDepth bool
	Flatten       bool // write one taxonomy.Label per term instead of the term sets
}

// RunTaxonomy reads one term set payload, validates it, stores it and
// writes it out. It returns the (possibly annotated) term sets.
func (p *Pipeline) RunTaxonomy(ctx context.Context, opts TaxonomyOptions) (model.TermSets, error) {
	data, err := p.source.Read(ctx, p.cfg)
	if err != nil {
		return model.TermSets{}, fmt.Errorf("pipeline read: %w", err)
	}
	sets, err := payload.TermSets(data)
	if err != nil {
		return model.TermSets{}, fmt.Errorf("pipeline decode: %w", err)
	}

	if err := taxonomy.Validate(sets, opts.Validate); err != nil {
		if !opts.Lenient {
			return model.TermSets{}, fmt.Errorf("pipeline validate: %w", err)
		}
		var merr *multierror.Error
		if errors.As(err, &merr) {
			for _, e := range merr.Errors {
				p.log.Warn("term set violation", zap.Error(e))
			}
		} else {
			p.log.Warn("term set violation", zap.Error(err))
		}
	}

	if opts.AnnotateDepth {
		sets = taxonomy.AnnotateDepth(sets)
	}
	p.store.Put(sets)

	written := 0
	if opts.Flatten {
		for _, set := range sets.ChildItems {
			for _, l := range taxonomy.Flatten(set) {
				if err := p.output.Write(ctx, l); err != nil {
					return sets, fmt.Errorf("pipeline output: %w", err)
				}
				written++
			}
		}
	} else {
		if err := p.output.Write(ctx, sets); err != nil {
			return sets, fmt.Errorf("pipeline output: %w", err)
		}
		written = 1
	}
	p.log.Info("term sets written",
		zap.Int("sets", len(sets.ChildItems)),
		zap.Int("records", written))
	return sets, nil
}

// WatchOptions controls WatchAlerts.
type WatchOptions struct {
	Alerts   alerts.Options // ActiveOnly is implied; At is ignored
	Debounce time.Duration  // 0 evaluates every payload version at once
	Recheck  string         // cron schedule for periodic re-evaluation; empty disables
}

// Snapshot is one emission of WatchAlerts: the full set of active alerts.
type Snapshot struct {
	At     time.Time     `json:"at" yaml:"at"`
	Reason string        `json:"reason" yaml:"reason"` // "payload", "schedule" or "window"
	Alerts []model.Alert `json:"alerts" yaml:"alerts"`
}

// WatchAlerts follows the source and writes a Snapshot whenever the set of
// active alerts changes, either because a new payload arrived or because an
// alert window opened or closed. Bad payload versions are logged and
// skipped; the last good version stays in effect.
//
// Returns nil when the source is exhausted and no schedule is set,
// ctx.Err() on cancellation, or the first output error.
func (p *Pipeline) WatchAlerts(ctx context.Context, opts WatchOptions) error {
	ticks := make(chan struct{}, 1)
	if opts.Recheck != "" {
		c := cron.New()
		if _, err := c.AddFunc(opts.Recheck, func() {
			select {
			case ticks <- struct{}{}:
			default:
			}
		}); err != nil {
			return fmt.Errorf("pipeline watch: schedule %q: %w", opts.Recheck, err)
		}
		c.Start()
		defer c.Stop()
	}

	ch, err := p.source.Watch(ctx, p.cfg)
	if err != nil {
		return fmt.Errorf("pipeline watch: %w", err)
	}

	w := &watcher{p: p, opts: opts.Alerts}
	w.opts.ActiveOnly = true
	w.opts.At = time.Time{}
	defer w.stop()

	buf := newPayloadBuffer(opts.Debounce)
	defer buf.take()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case data, ok := <-ch:
			if !ok {
				if err := ctx.Err(); err != nil {
					return err
				}
				ch = nil
				if pending, ok := buf.take(); ok {
					if err := w.load(ctx, pending); err != nil {
						return err
					}
				}
				if opts.Recheck == "" {
					return nil
				}
				continue
			}
			if opts.Debounce <= 0 {
				if err := w.load(ctx, data); err != nil {
					return err
				}
				continue
			}
			buf.add(data)

		case <-buf.flushCh():
			if n := buf.superseded(); n > 0 {
				p.log.Debug("payload versions superseded", zap.Int("count", n))
			}
			if data, ok := buf.take(); ok {
				if err := w.load(ctx, data); err != nil {
					return err
				}
			}

		case <-ticks:
			if err := w.recheck(ctx, "schedule"); err != nil {
				return err
			}

		case <-w.changeCh():
			if err := w.recheck(ctx, "window"); err != nil {
				return err
			}
		}
	}
}

// watcher is the state of one WatchAlerts run.
type watcher struct {
	p    *Pipeline
	opts alerts.Options

	items   []model.AlertItem // last version that normalized cleanly
	loaded  bool
	next    time.Time // NextChange of items
	last    []model.Alert
	emitted bool
	change  *time.Timer // fires at the nearest window bound
}

// load decodes a payload version and evaluates it.
func (w *watcher) load(ctx context.Context, data []byte) error {
	items, err := payload.AlertItems(data)
	if err != nil {
		w.p.skipped.Add(1)
		w.p.log.Warn("skipping payload version", zap.Error(err))
		return nil
	}
	return w.evaluate(ctx, items, "payload")
}

// recheck evaluates the current version again.
func (w *watcher) recheck(ctx context.Context, reason string) error {
	if !w.loaded {
		return nil
	}
	return w.evaluate(ctx, w.items, reason)
}

// evaluate computes the active set of items and emits it if it changed.
// A rejected version leaves the previous one in effect.
func (w *watcher) evaluate(ctx context.Context, items []model.AlertItem, reason string) error {
	now := w.p.now()
	res, err := w.p.norm.Normalize(items, w.opts)
	if err != nil {
		w.p.skipped.Add(1)
		w.p.log.Warn("payload version rejected", zap.String("reason", reason), zap.Error(err))
		w.schedule(w.next, now)
		return nil
	}
	w.items, w.loaded, w.next = items, true, res.NextChange
	w.p.skipped.Add(int64(res.Skipped))
	w.schedule(res.NextChange, now)

	if w.emitted && slices.Equal(w.last, res.Alerts) {
		w.p.log.Debug("active alerts unchanged", zap.String("reason", reason))
		return nil
	}
	active := res.Alerts
	if active == nil {
		active = []model.Alert{}
	}
	if err := w.p.output.Write(ctx, Snapshot{At: now, Reason: reason, Alerts: active}); err != nil {
		return fmt.Errorf("pipeline output: %w", err)
	}
	w.last, w.emitted = active, true
	w.p.log.Info("active alerts emitted",
		zap.String("reason", reason),
		zap.Int("alerts", len(active)),
		zap.Time("next_change", res.NextChange))
	return nil
}

// schedule arms the change timer for next, or disarms it when next is zero.
func (w *watcher) schedule(next, now time.Time) {
	if next.IsZero() {
		w.stop()
		return
	}
	d := max(next.Sub(now), 0)
	if w.change == nil {
		w.change = time.NewTimer(d)
		return
	}
	w.change.Stop()
	w.change.Reset(d)
}

func (w *watcher) changeCh() <-chan time.Time {
	if w.change == nil {
		return nil
	}
	return w.change.C
}

func (w *watcher) stop() {
	if w.change != nil {
		w.change.Stop()
		w.change = nil
	}
}

// Skipped returns how many alert items and payload versions were skipped
// since the Pipeline was created.
func (p *Pipeline) Skipped() int64 {
	return p.skipped.Load()
}

// Close reports the skip count and shuts down the output.
func (p *Pipeline) Close() error {
	if n := p.skipped.Load(); n > 0 {
		p.log.Warn("skipped input during run", zap.Int64("count", n))
	}
	return p.output.Close()
}
