package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/gogpu/rvt"
	"github.com/gogpu/rvt/internal/monitor"
	"github.com/gogpu/rvt/internal/parallel"
	"github.com/gogpu/rvt/internal/synthetic"
	"github.com/gogpu/rvt/internal/trace"
	"github.com/gogpu/rvt/texture"
)

// configFlags binds a Config field to a flag and its environment variable.
var configFlags = []struct {
	flag, env, usage string
	field            func(*rvt.Config) *int
}{
	{"tile-num", "RVT_TILE_NUM", "tiles per side of the physical pool", func(c *rvt.Config) *int { return &c.TileNum }},
	{"tile-size", "RVT_TILE_SIZE", "tile edge in texels", func(c *rvt.Config) *int { return &c.TileSize }},
	{"tile-border", "RVT_TILE_BORDER", "tile padding in texels on each side", func(c *rvt.Config) *int { return &c.TileBorder }},
	{"page-num", "RVT_PAGE_NUM", "virtual texture edge in pages", func(c *rvt.Config) *int { return &c.PageNum }},
	{"budget", "RVT_BUDGET", "tile renders per frame", func(c *rvt.Config) *int { return &c.MaxTileRenderPerFrame }},
	{"segments", "RVT_SEGMENTS", "feedback analysis segments", func(c *rvt.Config) *int { return &c.FeedbackSegments }},
	{"feedback-width", "RVT_FEEDBACK_WIDTH", "feedback buffer width", func(c *rvt.Config) *int { return &c.FeedbackWidth }},
	{"feedback-height", "RVT_FEEDBACK_HEIGHT", "feedback buffer height", func(c *rvt.Config) *int { return &c.FeedbackHeight }},
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the frame loop over a synthetic flyover.",
		Long: "Run the frame loop over a synthetic flyover. Configuration flags " +
			"default to the RVT_* environment variables, then to built-in defaults.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			opts, err := resolveRunOptions(cmd)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, opts, cmd.OutOrStdout())
		},
	}

	def := rvt.DefaultConfig()
	for _, f := range configFlags {
		cmd.Flags().Int(f.flag, *f.field(&def), f.usage+" ($"+f.env+")")
	}
	cmd.Flags().Int("frames", 600, "number of frames to simulate")
	cmd.Flags().Int("workers", 0, "analysis workers, 0 for GOMAXPROCS")
	cmd.Flags().Duration("latency", 0, "asynchronous readback latency, 0 for synchronous")
	cmd.Flags().Int("fail-every", 0, "fail every n-th readback")
	cmd.Flags().Float64("detail", 2, "view distance in pages covered by mip 0")
	cmd.Flags().String("trace", "", "write per-frame statistics: csv or sqlite")
	cmd.Flags().String("trace-path", "", "trace file, default a unique name")
	cmd.Flags().Bool("monitor", false, "serve statistics over HTTP")
	cmd.Flags().Int("port", 0, "monitor port, default random")
	cmd.Flags().Bool("open", false, "open the monitor in a browser")
	cmd.Flags().String("dump", "", "write the final page table as BMP")
	cmd.Flags().Int("dump-scale", 4, "BMP texels per page")
	cmd.Flags().String("lang", "en", "language of the HUD summary")
	return cmd
}

// resolveConfig reads configuration flags, falling back to the environment
// for flags not given on the command line.
func resolveConfig(cmd *cobra.Command) (rvt.Config, error) {
	cfg := rvt.DefaultConfig()
	for _, f := range configFlags {
		v, err := cmd.Flags().GetInt(f.flag)
		if err != nil {
			return cfg, err
		}
		if !cmd.Flags().Changed(f.flag) {
			if v, err = envInt(f.env, v); err != nil {
				return cfg, err
			}
		}
		*f.field(&cfg) = v
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

type runOptions struct {
	frames    int
	workers   int
	latency   time.Duration
	failEvery int
	detail    float64

	trace     string
	tracePath string

	monitor bool
	port    int
	open    bool

	dump      string
	dumpScale int
	lang      language.Tag
}

func resolveRunOptions(cmd *cobra.Command) (runOptions, error) {
	f := cmd.Flags()
	var o runOptions
	o.frames, _ = f.GetInt("frames")
	o.workers, _ = f.GetInt("workers")
	o.latency, _ = f.GetDuration("latency")
	o.failEvery, _ = f.GetInt("fail-every")
	o.detail, _ = f.GetFloat64("detail")
	o.trace, _ = f.GetString("trace")
	o.tracePath, _ = f.GetString("trace-path")
	o.monitor, _ = f.GetBool("monitor")
	o.port, _ = f.GetInt("port")
	o.open, _ = f.GetBool("open")
	o.dump, _ = f.GetString("dump")
	o.dumpScale, _ = f.GetInt("dump-scale")

	if o.frames <= 0 {
		return o, fmt.Errorf("frames must be positive, got %d", o.frames)
	}
	if o.open && !o.monitor {
		return o, errors.New("--open requires --monitor")
	}
	lang, _ := f.GetString("lang")
	tag, err := language.Parse(lang)
	if err != nil {
		return o, fmt.Errorf("lang: %w", err)
	}
	o.lang = tag
	return o, nil
}

// summary aggregates a run.
type summary struct {
	Frames    int
	Requests  int
	Misses    int
	Deferred  int
	Evictions int
	Rewrites  int
	Captures  int
	Rendered  int
	Resident  int
	Instances int
	Last      rvt.FrameStats
}

func (s *summary) add(st rvt.FrameStats) {
	s.Frames++
	s.Requests += st.Requests
	s.Misses += st.Misses
	s.Deferred += st.Deferred
	s.Evictions += st.Evictions
	if st.Rewritten {
		s.Rewrites++
	}
	s.Last = st
}

func run(ctx context.Context, cfg rvt.Config, o runOptions, out io.Writer) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	sceneOpts := []synthetic.SceneOption{synthetic.WithDetail(o.detail), synthetic.WithFailEvery(o.failEvery)}
	if o.latency > 0 {
		sceneOpts = append(sceneOpts, synthetic.WithAsync(o.latency))
	}
	scene := synthetic.NewScene(cfg, sceneOpts...)
	recorder := synthetic.NewRecorder(cfg)
	img := texture.NewPageTableImage(cfg)
	pool := parallel.NewWorkerPool(o.workers)
	defer pool.Close()
	draw := texture.NewInstanceWriter(cfg, img, pool)

	v, err := rvt.New(cfg,
		rvt.WithFeedbackSource(scene),
		rvt.WithTileRenderer(recorder),
		rvt.WithPageTableWriter(draw),
		rvt.WithWorkers(o.workers))
	if err != nil {
		return err
	}
	defer func() {
		v.Close()
		scene.Wait()
	}()

	var tw trace.Writer
	if o.trace != "" {
		if tw, err = trace.New(o.trace, o.tracePath); err != nil {
			return err
		}
		if err := tw.Init(); err != nil {
			return err
		}
		defer func() {
			if cerr := tw.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
	}

	var mon *monitor.Monitor
	if o.monitor {
		mon = monitor.NewMonitor().WithPortNumber(o.port)
		mon.RegisterPageTable(img)
		url, err := mon.StartServer()
		if err != nil {
			return err
		}
		defer mon.Close()
		fmt.Fprintf(out, "Monitoring with %s\n", url)
		if o.open {
			if err := browser.OpenURL(url + "/api/stats"); err != nil {
				rvt.Logger().Warn("rvtsim: open browser", "err", err)
			}
		}
	}

	fly := synthetic.NewFlyover(cfg.PageNum)
	var sum summary
	for i := range o.frames {
		if mon != nil {
			if err := mon.WaitIfPaused(ctx); err != nil {
				return err
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		scene.Render(fly.At(i))
		st, err := v.Update()
		if err != nil {
			return err
		}
		sum.add(st)
		if tw != nil {
			if err := tw.Write(st); err != nil {
				return err
			}
		}
		if mon != nil {
			mon.Record(st)
		}
	}

	if tw != nil {
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	sum.Captures = scene.Captures()
	sum.Rendered = recorder.Count()
	sum.Resident = v.Table().Len()
	sum.Instances = draw.Total()
	printSummary(out, sum, o.lang)

	if o.dump != "" {
		if err := dumpPageTable(o.dump, img, o.dumpScale); err != nil {
			return err
		}
		fmt.Fprintf(out, "Page table written to %s\n", o.dump)
	}
	if tw != nil {
		fmt.Fprintf(out, "Trace written to %s\n", tw.Path())
	}
	return nil
}
