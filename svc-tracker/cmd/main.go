package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	api "github.com/etesami/multi-object-tracking/api"
	"github.com/etesami/multi-object-tracking/pkg/boxsink"
	"github.com/etesami/multi-object-tracking/pkg/logger"
	metric "github.com/etesami/multi-object-tracking/pkg/metric"
	utils "github.com/etesami/multi-object-tracking/pkg/utils"

	"github.com/etesami/multi-object-tracking/svc-tracker/internal"
	"github.com/pkg/errors"
)

// options holds the flags that are not part of internal.Config
type options struct {
	configPath string
	debug      bool
}

// registerFlags defines the command line on fs. Config flags only carry
// their default for -help; applyOverrides copies the ones actually passed.
func registerFlags(fs *flag.FlagSet) *options {
	def := internal.DefaultConfig()
	opts := &options{}
	videoUsage := "path to input video file, camera when empty"
	trackerUsage := fmt.Sprintf("tracker algorithm (%s)", strings.Join(internal.Algorithms(), ", "))

	fs.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	fs.BoolVar(&opts.debug, "debug", false, "development logging")
	fs.String("video", "", videoUsage)
	fs.String("v", "", videoUsage+" (shorthand)")
	fs.String("tracker", def.Tracker, trackerUsage)
	fs.String("t", def.Tracker, trackerUsage+" (shorthand)")
	fs.Int("device", def.Device, "camera device used when no video file is given")
	fs.Int("width", def.ImageWidth, "width frames are resized to")
	fs.Int("key-delay", def.KeyDelayMs, "key poll timeout in ms")
	fs.Bool("labels", def.ShowLabels, "draw the object index above each box")
	fs.String("metrics-addr", def.MetricAddr, "address of the prometheus endpoint, disabled when empty")
	fs.String("sink-addr", def.SinkAddr, "host:port of a box sink to publish results to")
	fs.String("source-id", def.SourceId, "source id attached to published results")
	return opts
}

// applyOverrides layers the flags set on fs and the bucket env variables over
// cfg. Flags that were not passed leave the file values alone.
func applyOverrides(cfg *internal.Config, fs *flag.FlagSet, getenv func(string) string) error {
	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		v := f.Value.String()
		switch f.Name {
		case "video", "v":
			cfg.VideoSource = v
		case "tracker", "t":
			cfg.Tracker = v
		case "device":
			cfg.Device, err = strconv.Atoi(v)
		case "width":
			cfg.ImageWidth, err = strconv.Atoi(v)
		case "key-delay":
			cfg.KeyDelayMs, err = strconv.Atoi(v)
		case "labels":
			cfg.ShowLabels, err = strconv.ParseBool(v)
		case "metrics-addr":
			cfg.MetricAddr = v
		case "sink-addr":
			cfg.SinkAddr = v
		case "source-id":
			cfg.SourceId = v
		}
		if err != nil {
			err = errors.Wrapf(err, "flag -%s", f.Name)
		}
	})
	if err != nil {
		return err
	}
	if b := utils.ParseBuckets(getenv("PROC_TIME_BUCKETS")); b != nil {
		cfg.ProcTimeBuckets = b
	}
	if b := utils.ParseBuckets(getenv("RTT_TIME_BUCKETS")); b != nil {
		cfg.RttTimeBuckets = b
	}
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := registerFlags(flag.CommandLine)
	flag.Parse()

	if err := logger.Init("svc-tracker", opts.debug); err != nil {
		fmt.Fprintf(os.Stderr, "error initializing logger: %v\n", err)
		return 1
	}
	defer logger.Sync()
	log := logger.S()

	cfg, err := internal.LoadConfig(opts.configPath)
	if err != nil {
		log.Errorw("error loading config", "error", err)
		return 1
	}
	if err := applyOverrides(cfg, flag.CommandLine, os.Getenv); err != nil {
		log.Errorw("invalid command line", "error", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		log.Errorw("invalid configuration", "error", err)
		return 1
	}
	factory, _ := internal.NewTrackerFactory(cfg.Tracker)

	// installed before the source is opened so a signal also ends the camera warm-up
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metric.NewMetric(cfg.ProcTimeBuckets, cfg.RttTimeBuckets)
	if cfg.MetricAddr != "" {
		mlog := logger.Named("metrics")
		server := &http.Server{
			Addr:    cfg.MetricAddr,
			Handler: metricsMux(m),
		}
		go func() {
			mlog.Infof("starting metrics server on %s", server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				mlog.Errorw("metrics server failed", "error", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				mlog.Warnw("error shutting down metrics server", "error", err)
			}
		}()
	}

	var sink *boxsink.Client
	if cfg.SinkAddr != "" {
		slog := logger.Named("sink")
		svc, err := api.ParseService(cfg.SinkAddr)
		if err != nil {
			slog.Errorw("invalid sink address", "error", err)
			return 1
		}
		if err := svc.ServiceReachable(); err != nil {
			slog.Warnw("box sink is not reachable yet", "target", svc.Target(), "error", err)
		}
		sink, err = boxsink.Dial(svc.Target(), time.Duration(cfg.SinkTimeout)*time.Millisecond)
		if err != nil {
			slog.Errorw("error creating box sink client", "error", err)
			return 1
		}
		defer sink.Close()
	}

	source, err := internal.OpenFrameSource(ctx, cfg)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("interrupted while opening video source")
			return 0
		}
		log.Errorw("error opening video source", "error", err)
		return 1
	}

	c := internal.NewController(cfg, source, internal.NewWindowDisplay(cfg.WindowName), factory)
	c.Metric = m
	if sink != nil {
		c.Sink = sink
	}

	log.Infow("tracking started",
		"tracker", cfg.Tracker,
		"width", cfg.ImageWidth,
		"keys", "s: mark object, q: quit",
	)
	if err := c.Run(ctx); err != nil {
		log.Errorw("tracking loop failed", "error", err)
		return 1
	}
	log.Infow("tracking finished", "objects", len(c.Objects()))
	return 0
}

func metricsMux(m *metric.Metric) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return mux
}
