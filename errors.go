package rvt

import "errors"

var (
	// ErrInvalidConfig is returned by Config.Validate and wrapped with the
	// offending field.
	ErrInvalidConfig = errors.New("rvt: invalid config")

	// ErrNoFeedbackSource is returned by New when no FeedbackSource was given.
	ErrNoFeedbackSource = errors.New("rvt: no feedback source")

	// ErrClosed is returned by operations on a closed Volume.
	ErrClosed = errors.New("rvt: volume closed")
)
