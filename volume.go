package rvt

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/rvt/feedback"
	"github.com/gogpu/rvt/internal/parallel"
	"github.com/gogpu/rvt/page"
)

// Volume runs the per-frame virtual texture loop: read back feedback,
// analyze it, resolve the requests against the page table and hand the
// resulting batch to the page-table writer.
//
// A Volume starts enabled. It is driven from a single goroutine; only the
// feedback completion arrives elsewhere.
type Volume struct {
	cfg  Config
	opts options

	pool     *parallel.WorkerPool
	table    *page.Table
	reader   *feedback.Reader
	analyzer *feedback.Analyzer
	coord    *Coordinator

	// pending holds the latest analyzed requests until they are applied.
	pending []page.ID

	frame   int
	enabled bool
	closed  bool
}

// New creates an enabled Volume. A FeedbackSource must be supplied with
// WithFeedbackSource.
func New(cfg Config, opts ...Option) (*Volume, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.source == nil {
		return nil, ErrNoFeedbackSource
	}

	v := &Volume{
		opts:    o,
		pool:    parallel.NewWorkerPool(o.workers),
		enabled: true,
	}
	v.build(cfg)

	l := Logger()
	propagateLogger(o.renderer, l)
	propagateLogger(o.writer, l)
	l.Info("rvt: volume created",
		"tileNum", cfg.TileNum,
		"pageNum", cfg.PageNum,
		"mipCount", cfg.MipCount(),
		"feedback", fmt.Sprintf("%dx%d", cfg.FeedbackWidth, cfg.FeedbackHeight),
		"workers", v.pool.Workers())
	return v, nil
}

// build creates the per-configuration state. The worker pool and
// collaborators are kept.
func (v *Volume) build(cfg Config) {
	if v.reader != nil {
		v.reader.Close()
	}
	v.cfg = cfg
	v.table = page.NewTable(cfg.TileNum)
	v.reader = feedback.NewReader(v.opts.source, cfg.FeedbackSize())
	v.analyzer = feedback.NewAnalyzer(cfg.FeedbackSegments, v.pool)
	v.coord = NewCoordinator(cfg, v.table, v.opts.renderer)
	v.pending = make([]page.ID, 0, cfg.Capacity())
}

// Config returns the active configuration.
func (v *Volume) Config() Config { return v.cfg }

// Table returns the page table. It must only be read between updates.
func (v *Volume) Table() *page.Table { return v.table }

// Frame returns the frame counter of the last update.
func (v *Volume) Frame() int { return v.frame }

// Enabled reports whether updates run.
func (v *Volume) Enabled() bool { return v.enabled }

// ReadbackState returns the state of the feedback readback.
func (v *Volume) ReadbackState() feedback.State { return v.reader.State() }

// Pending returns the analyzed requests waiting to be applied.
// The slice is owned by the Volume.
func (v *Volume) Pending() []page.ID { return v.pending }

// Update advances one frame.
//
// While a readback is in flight the most recent analyzed requests are
// applied. Otherwise any requests still pending are applied, fresh samples
// are analyzed into the pending list, and the next readback is issued.
// Finally the feedback source is cleared for the next frame.
func (v *Volume) Update() (FrameStats, error) {
	if v.closed {
		return FrameStats{}, ErrClosed
	}
	v.frame++
	st := FrameStats{Frame: v.frame}
	if !v.enabled {
		return st, nil
	}
	st.Enabled = true

	if v.reader.State() == feedback.InFlight {
		v.apply(&st)
	} else {
		if len(v.pending) > 0 {
			v.apply(&st)
		}
		if samples := v.reader.Samples(); samples != nil {
			v.pending = v.analyzer.AnalyzeInto(v.pending[:0], samples)
			v.reader.Consume()
			st.Analyzed = len(v.pending)
		}
		if err := v.reader.Capture(); err != nil {
			Logger().Debug("rvt: capture not issued", "err", err)
		}
	}
	v.reader.Clear()

	st.Readback = v.reader.State()
	st.Resident = v.table.Len()
	Logger().Debug("rvt: frame updated", "stats", st)
	return st, nil
}

// apply resolves the pending requests and commits the batch.
func (v *Volume) apply(st *FrameStats) {
	if len(v.pending) == 0 {
		return
	}
	b := v.coord.Resolve(v.pending, v.frame)
	st.Requests = len(v.pending)
	st.addBatch(b)

	written, err := v.coord.Commit(b, v.frame, v.opts.writer)
	if err != nil {
		st.WriteFailed = true
		Logger().Warn("rvt: page table update failed", "frame", v.frame, "err", err)
	}
	st.Rewritten = written
	v.pending = v.pending[:0]
}

// Disable stops updates and discards all residency.
func (v *Volume) Disable() {
	if v.closed || !v.enabled {
		return
	}
	v.enabled = false
	v.discard()
	Logger().Info("rvt: volume disabled", "frame", v.frame)
}

// Enable resumes updates after Disable and blocks until a fresh feedback
// capture is available, so the next Update has data to analyze. It returns
// the capture error, if any; the volume is enabled either way.
func (v *Volume) Enable(ctx context.Context) error {
	if v.closed {
		return ErrClosed
	}
	if v.enabled {
		return nil
	}
	v.enabled = true
	v.discard()
	Logger().Info("rvt: volume enabled", "frame", v.frame)
	return v.resync(ctx)
}

// Reconfigure replaces the configuration, discarding all residency, and
// forces a blocking capture if the volume is enabled.
func (v *Volume) Reconfigure(ctx context.Context, cfg Config) error {
	if v.closed {
		return ErrClosed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	v.build(cfg)
	v.resetWriter()
	Logger().Info("rvt: volume reconfigured",
		"tileNum", cfg.TileNum,
		"pageNum", cfg.PageNum,
		"mipCount", cfg.MipCount())
	if !v.enabled {
		return nil
	}
	return v.resync(ctx)
}

// discard clears residency and invalidates any readback in flight.
func (v *Volume) discard() {
	v.table.Clear()
	v.coord.Reset()
	v.reader.Reset()
	v.pending = v.pending[:0]
	v.resetWriter()
}

func (v *Volume) resetWriter() {
	if r, ok := v.opts.writer.(Resetter); ok {
		r.Reset()
	}
}

func (v *Volume) resync(ctx context.Context) error {
	err := v.reader.CaptureSync(ctx)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		Logger().Warn("rvt: forced capture failed", "err", err)
	}
	if err != nil {
		return fmt.Errorf("rvt: forced capture: %w", err)
	}
	return nil
}

// Close invalidates any readback in flight and stops the worker pool.
// Close is safe to call multiple times.
func (v *Volume) Close() {
	if v.closed {
		return
	}
	v.closed = true
	v.enabled = false
	v.reader.Close()
	v.pool.Close()
	Logger().Info("rvt: volume closed", "frame", v.frame)
}
