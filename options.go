package rvt

import "github.com/gogpu/rvt/feedback"

// FeedbackSource produces the per-pixel feedback samples a Volume reads back.
type FeedbackSource = feedback.Source

// Option configures a Volume during creation.
//
// Example:
//
//	v, err := rvt.New(rvt.DefaultConfig(),
//	    rvt.WithFeedbackSource(src),
//	    rvt.WithTileRenderer(renderer),
//	    rvt.WithPageTableWriter(pageTable),
//	)
type Option func(*options)

// options holds optional configuration for Volume creation.
type options struct {
	source   FeedbackSource
	renderer TileRenderer
	writer   PageTableWriter
	workers  int
}

// defaultOptions returns the default volume options.
func defaultOptions() options {
	return options{
		renderer: nopRenderer{},
		writer:   nopWriter{},
	}
}

// WithFeedbackSource sets the source the feedback buffer is read back from.
// It is required.
func WithFeedbackSource(src FeedbackSource) Option {
	return func(o *options) {
		o.source = src
	}
}

// WithTileRenderer sets the collaborator that renders missing tiles.
// Without it tiles are allocated but never rendered.
func WithTileRenderer(r TileRenderer) Option {
	return func(o *options) {
		if r != nil {
			o.renderer = r
		}
	}
}

// WithPageTableWriter sets the collaborator that receives page-table
// update batches. Without it batches are discarded.
func WithPageTableWriter(w PageTableWriter) Option {
	return func(o *options) {
		if w != nil {
			o.writer = w
		}
	}
}

// WithWorkers sets the number of goroutines used for feedback analysis.
// Zero or negative uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}
