// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package monitor serves the state of a running virtual texture over HTTP.
package monitor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"golang.org/x/text/language"

	"github.com/gogpu/rvt"
	"github.com/gogpu/rvt/texture"
)

const defaultHistory = 256

// Monitor keeps recent frame statistics and exposes them, together with the
// page-table image and process resources, through a small JSON API.
//
// The frame loop calls Record after every update and WaitIfPaused before
// the next one; HTTP handlers run on the server's goroutines.
type Monitor struct {
	portNumber int
	history    int

	mu     sync.Mutex
	frames []rvt.FrameStats
	totals Totals
	image  *texture.PageTableImage
	resume chan struct{} // non-nil while paused

	server *http.Server
}

// Totals accumulates counters over every recorded frame.
type Totals struct {
	Frames       int `json:"frames"`
	Requests     int `json:"requests"`
	Misses       int `json:"misses"`
	Deferred     int `json:"deferred"`
	Evictions    int `json:"evictions"`
	RenderErrors int `json:"render_errors"`
	Rewrites     int `json:"rewrites"`
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{history: defaultHistory}
}

// WithPortNumber sets the port number of the monitor. Ports below 1000
// select a random port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		rvt.Logger().Warn("monitor: port not allowed, using a random port", "port", portNumber)
		portNumber = 0
	}
	m.portNumber = portNumber
	return m
}

// WithHistory sets how many recent frames are kept.
func (m *Monitor) WithHistory(n int) *Monitor {
	if n > 0 {
		m.history = n
	}
	return m
}

// RegisterPageTable exposes img at /api/pagetable.bmp.
func (m *Monitor) RegisterPageTable(img *texture.PageTableImage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.image = img
}

// Record stores the statistics of one frame.
func (m *Monitor) Record(st rvt.FrameStats) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.frames) == m.history {
		copy(m.frames, m.frames[1:])
		m.frames = m.frames[:len(m.frames)-1]
	}
	m.frames = append(m.frames, st)

	m.totals.Frames++
	m.totals.Requests += st.Requests
	m.totals.Misses += st.Misses
	m.totals.Deferred += st.Deferred
	m.totals.Evictions += st.Evictions
	m.totals.RenderErrors += st.RenderErrors
	if st.Rewritten {
		m.totals.Rewrites++
	}
}

// Pause makes WaitIfPaused block until Continue.
func (m *Monitor) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resume == nil {
		m.resume = make(chan struct{})
	}
}

// Continue releases a pause.
func (m *Monitor) Continue() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resume != nil {
		close(m.resume)
		m.resume = nil
	}
}

// Paused reports whether the monitor is paused.
func (m *Monitor) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resume != nil
}

// WaitIfPaused blocks while the monitor is paused or until ctx is done.
func (m *Monitor) WaitIfPaused(ctx context.Context) error {
	m.mu.Lock()
	resume := m.resume
	m.mu.Unlock()
	if resume == nil {
		return nil
	}
	select {
	case <-resume:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Handler returns the API router.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/stats", m.listStats).Methods(http.MethodGet)
	r.HandleFunc("/api/stats/{frame:[0-9]+}", m.frameStats).Methods(http.MethodGet)
	r.HandleFunc("/api/hud", m.hud).Methods(http.MethodGet)
	r.HandleFunc("/api/pagetable.bmp", m.pageTable).Methods(http.MethodGet)
	r.HandleFunc("/api/pause", m.pause)
	r.HandleFunc("/api/continue", m.cont)
	r.HandleFunc("/api/resource", m.listResources).Methods(http.MethodGet)
	r.HandleFunc("/api/profile", m.collectProfile).Methods(http.MethodGet)
	return r
}

// StartServer starts serving the API and returns the address it listens
// on.
func (m *Monitor) StartServer() (string, error) {
	addr := ":0"
	if m.portNumber > 1000 {
		addr = ":" + strconv.Itoa(m.portNumber)
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("monitor: %w", err)
	}

	m.server = &http.Server{
		Handler:           m.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	port := listener.Addr().(*net.TCPAddr).Port
	url := fmt.Sprintf("http://localhost:%d", port)
	rvt.Logger().Info("monitor: serving", "url", url)

	go func() {
		if err := m.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rvt.Logger().Error("monitor: server stopped", "err", err)
		}
	}()
	return url, nil
}

// Close stops the server and releases a pause.
func (m *Monitor) Close() error {
	m.Continue()
	if m.server == nil {
		return nil
	}
	return m.server.Close()
}

type statsRsp struct {
	Latest  *rvt.FrameStats  `json:"latest"`
	Totals  Totals           `json:"totals"`
	History []rvt.FrameStats `json:"history"`
	Paused  bool             `json:"paused"`
}

func (m *Monitor) listStats(w http.ResponseWriter, _ *http.Request) {
	m.mu.Lock()
	rsp := statsRsp{
		Totals:  m.totals,
		History: append([]rvt.FrameStats(nil), m.frames...),
		Paused:  m.resume != nil,
	}
	m.mu.Unlock()
	if n := len(rsp.History); n > 0 {
		rsp.Latest = &rsp.History[n-1]
	}
	writeJSON(w, rsp)
}

func (m *Monitor) frameStats(w http.ResponseWriter, r *http.Request) {
	frame, err := strconv.Atoi(mux.Vars(r)["frame"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	st, ok := m.find(frame)
	if !ok {
		http.Error(w, fmt.Sprintf("frame %d not in history", frame), http.StatusNotFound)
		return
	}
	writeJSON(w, st)
}

func (m *Monitor) find(frame int) (rvt.FrameStats, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.frames) - 1; i >= 0; i-- {
		if m.frames[i].Frame == frame {
			return m.frames[i], true
		}
	}
	return rvt.FrameStats{}, false
}

func (m *Monitor) hud(w http.ResponseWriter, r *http.Request) {
	tag := language.English
	if lang := r.URL.Query().Get("lang"); lang != "" {
		t, err := language.Parse(lang)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		tag = t
	}

	m.mu.Lock()
	var st rvt.FrameStats
	if n := len(m.frames); n > 0 {
		st = m.frames[n-1]
	}
	m.mu.Unlock()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(st.HUD(tag)))
}

func (m *Monitor) pageTable(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	img := m.image
	m.mu.Unlock()
	if img == nil {
		http.Error(w, "no page table registered", http.StatusNotFound)
		return
	}

	scale := 1
	if s := r.URL.Query().Get("scale"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		scale = v
	}

	var buf bytes.Buffer
	if err := img.WriteDebugBMP(&buf, scale); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, texture.ErrInvalidScale) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "image/bmp")
	_, _ = w.Write(buf.Bytes())
}

func (m *Monitor) pause(w http.ResponseWriter, _ *http.Request) {
	m.Pause()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) cont(w http.ResponseWriter, _ *http.Request) {
	m.Continue()
	w.WriteHeader(http.StatusOK)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid())) //nolint:gosec // pid fits
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	mem, err := proc.MemoryInfo()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, resourceRsp{CPUPercent: cpuPercent, MemorySize: mem.RSS})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, r *http.Request) {
	duration := time.Second
	if d := r.URL.Query().Get("duration"); d != "" {
		v, err := time.ParseDuration(d)
		if err != nil || v <= 0 {
			http.Error(w, "invalid duration", http.StatusBadRequest)
			return
		}
		duration = v
	}

	var buf bytes.Buffer
	if err := pprof.StartCPUProfile(&buf); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	select {
	case <-time.After(duration):
	case <-r.Context().Done():
	}
	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}
