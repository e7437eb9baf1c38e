// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package synthetic

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/gogpu/rvt"
	"github.com/gogpu/rvt/page"
)

// ErrReadback is delivered by a capture chosen to fail.
var ErrReadback = errors.New("synthetic: readback failed")

// Camera is the viewer position and heading in page units.
type Camera struct {
	X, Y float64
	// Heading is the view direction in radians, 0 looking along +Y.
	Heading float64
	// Height above the terrain. Distance to a sample is never less.
	Height float64
}

// SceneOption configures a Scene.
type SceneOption func(*Scene)

// WithAsync delivers captures on a separate goroutine after latency.
func WithAsync(latency time.Duration) SceneOption {
	return func(s *Scene) {
		s.async = true
		s.latency = latency
	}
}

// WithFailEvery makes every n-th capture fail. Zero disables failures.
func WithFailEvery(n int) SceneOption {
	return func(s *Scene) {
		s.failEvery = n
	}
}

// WithDetail sets the view distance, in pages, covered by mip 0.
func WithDetail(d float64) SceneOption {
	return func(s *Scene) {
		if d > 0 {
			s.detail = d
		}
	}
}

// WithViewDistance sets how far ahead of the camera, in pages, the terrain
// is sampled.
func WithViewDistance(d float64) SceneOption {
	return func(s *Scene) {
		if d > 0 {
			s.view = d
		}
	}
}

// Scene is a feedback source for a camera over a flat terrain that spans
// the whole virtual texture.
//
// Each call to Render fills the sample buffer the way the feedback pass
// would: one page ID per screen sample, with the mip level chosen from the
// distance to the camera. Samples that fall outside the terrain are 0.
//
// Scene implements feedback.Source.
type Scene struct {
	width, height int
	pageNum       int
	mipCount      int

	detail    float64
	view      float64
	async     bool
	latency   time.Duration
	failEvery int

	mu       sync.Mutex
	samples  []uint32
	captures int
	wg       sync.WaitGroup
}

// NewScene creates a scene sized for cfg's feedback buffer.
func NewScene(cfg rvt.Config, opts ...SceneOption) *Scene {
	s := &Scene{
		width:    cfg.FeedbackWidth,
		height:   cfg.FeedbackHeight,
		pageNum:  cfg.PageNum,
		mipCount: cfg.MipCount(),
		detail:   2,
		view:     float64(cfg.PageNum) / 2,
		samples:  make([]uint32, cfg.FeedbackSize()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Render samples the terrain seen from cam into the sample buffer.
func (s *Scene) Render(cam Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sin, cos := math.Sincos(cam.Heading)
	for j := range s.height {
		// Rows run from the camera (j = 0) to the view distance.
		fwd := s.view * float64(j+1) / float64(s.height)
		for i := range s.width {
			side := fwd * (float64(i)/float64(s.width) - 0.5)
			px := cam.X + side*cos + fwd*sin
			py := cam.Y - side*sin + fwd*cos
			s.samples[j*s.width+i] = s.sample(cam, px, py)
		}
	}
}

func (s *Scene) sample(cam Camera, px, py float64) uint32 {
	if px < 0 || py < 0 || px >= float64(s.pageNum) || py >= float64(s.pageNum) {
		return 0
	}
	dist := math.Max(math.Hypot(math.Hypot(px-cam.X, py-cam.Y), cam.Height), 1e-6)
	mip := MipForDistance(dist, s.detail, s.mipCount)
	region := 1 << mip
	x := int(px) &^ (region - 1)
	y := int(py) &^ (region - 1)
	return uint32(page.MustEncode(mip, x, y))
}

// MipForDistance returns the mip level for a sample dist pages away when
// mip 0 covers distances up to detail. The result is in [0, mipCount).
func MipForDistance(dist, detail float64, mipCount int) int {
	if dist <= detail {
		return 0
	}
	mip := int(math.Log2(dist / detail))
	return min(max(mip, 0), mipCount-1)
}

// Samples returns a copy of the current sample buffer.
func (s *Scene) Samples() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint32(nil), s.samples...)
}

// Captures returns the number of captures issued.
func (s *Scene) Captures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.captures
}

// Capture snapshots the sample buffer and hands it to done, either
// immediately or from a goroutine when the scene is asynchronous.
func (s *Scene) Capture(done func(samples []uint32, err error)) {
	s.mu.Lock()
	s.captures++
	fail := s.failEvery > 0 && s.captures%s.failEvery == 0
	snapshot := append([]uint32(nil), s.samples...)
	s.mu.Unlock()

	deliver := func() {
		if fail {
			done(nil, ErrReadback)
			return
		}
		done(snapshot, nil)
	}
	if !s.async {
		deliver()
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if s.latency > 0 {
			time.Sleep(s.latency)
		}
		deliver()
	}()
}

// Clear zeroes the sample buffer.
func (s *Scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.samples)
}

// Wait blocks until every asynchronous capture has been delivered.
func (s *Scene) Wait() {
	s.wg.Wait()
}

// Flyover moves a camera across the terrain on a closed loop, one step per
// frame.
type Flyover struct {
	Center Camera
	Radius float64
	// Period is the number of frames per loop.
	Period int
}

// NewFlyover returns a loop around the middle of a pageNum terrain.
func NewFlyover(pageNum int) Flyover {
	c := float64(pageNum) / 2
	return Flyover{
		Center: Camera{X: c, Y: c, Height: 1},
		Radius: c / 2,
		Period: 600,
	}
}

// At returns the camera for frame, heading along the loop.
func (f Flyover) At(frame int) Camera {
	period := max(f.Period, 1)
	a := 2 * math.Pi * float64(frame%period) / float64(period)
	sin, cos := math.Sincos(a)
	return Camera{
		X:       f.Center.X + f.Radius*cos,
		Y:       f.Center.Y + f.Radius*sin,
		Heading: -a,
		Height:  f.Center.Height,
	}
}
