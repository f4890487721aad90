package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	api "github.com/etesami/multi-object-tracking/api"
	"github.com/etesami/multi-object-tracking/pkg/boxsink"
	"github.com/etesami/multi-object-tracking/pkg/logger"
	metric "github.com/etesami/multi-object-tracking/pkg/metric"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
)

func main() {

	if err := logger.Init("svc-sink", os.Getenv("DEBUG") == "true"); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.S()

	// the sink only counts received frames, RTT is measured by the publisher
	m := metric.NewMetric(nil, nil)

	// Local service initialization (sink) to receive tracked boxes
	svcHost := os.Getenv("SVC_SINK_HOST")
	svcPort := os.Getenv("SVC_SINK_PORT")
	if svcPort == "" || svcHost == "" {
		panic("SVC_SINK_HOST or SVC_SINK_PORT environment variable is not set")
	}
	localSvc := &api.Service{
		Address: svcHost,
		Port:    svcPort,
	}

	// We listen on all interfaces
	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", localSvc.Port))
	if err != nil {
		log.Fatalf("Failed to listen: %v", err)
	}

	slog := logger.Named("sink")
	grpcServer := grpc.NewServer()
	boxsink.RegisterBoxSinkServer(grpcServer, boxsink.HandlerFunc(func(ctx context.Context, frame api.FrameResult) error {
		m.AddFrameCount("received", 1)
		slog.Infow("received frame",
			"source", frame.SourceId,
			"frame", frame.FrameId,
			"boxes", len(frame.Boxes),
			"drawn", len(frame.Drawn()),
		)
		return nil
	}))

	go func() {
		log.Infof("starting gRPC server on port %s", localSvc.Target())
		if err := grpcServer.Serve(listener); err != nil {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	metricAddr := os.Getenv("METRIC_ADDR")
	metricPort := os.Getenv("METRIC_PORT")
	mlog := logger.Named("metrics")
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", metricAddr, metricPort),
		Handler: mux,
	}

	// Start server in a goroutine
	go func() {
		mlog.Infof("Starting metrics server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			mlog.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	// Set up channel to listen for interrupt or terminate signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan // Wait for signal
	log.Info("Received shutdown signal")
	grpcServer.GracefulStop()
	if err := server.Shutdown(context.Background()); err != nil {
		log.Warnf("Error shutting down server: %v", err)
	}
	log.Info("Server shut down gracefully")
}
