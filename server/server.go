// Package server exposes the generator to the desktop UI over a local HTTP
// API: generation jobs with pollable progress, single-polygon previews,
// point-to-row lookups and parameter profiles.
package server

import (
	"context"
	"fmt"
	stdlog "log"
	"log/slog"
	"net/http"
	"time"

	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/sourcegraph/conc"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/vegepoly/vegepoly/internal/telemetry"
	"github.com/vegepoly/vegepoly/rowindex"
	"github.com/vegepoly/vegepoly/settings"
)

const MaxBodySize = 32 * 1000 * 1000 // 32MB

var meter = otel.Meter("github.com/vegepoly/vegepoly/server")

// Run serves the API until the context is canceled.
func Run(ctx context.Context, address string, store *settings.Store) error {
	tel, err := telemetry.Setup(ctx, "vegepoly")
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer tel.Shutdown(context.Background())

	log := slog.Default()

	metricJobsStarted, err := meter.Int64Counter("generation_jobs_started_total")
	if err != nil {
		return err
	}
	metricPointsGenerated, err := meter.Int64Counter("points_generated_total")
	if err != nil {
		return err
	}
	metricPreviewCalls, err := meter.Int64Counter("preview_call_total")
	if err != nil {
		return err
	}

	s := &server{
		store:   store,
		jobs:    xsync.NewMapOf[string, *job](),
		indexes: xsync.NewMapOf[string, *rowindex.Index](),
		log:     log,

		metricJobsStarted:     metricJobsStarted,
		metricPointsGenerated: metricPointsGenerated,
		metricPreviewCalls:    metricPreviewCalls,
	}

	r := router.New()
	r.POST("/vegetation/jobs", s.StartJobHandler)
	r.GET("/vegetation/jobs/{id}", s.JobProgressHandler)
	r.POST("/vegetation/preview", s.PreviewHandler)
	r.POST("/vegetation/locate", s.LocateHandler)
	r.GET("/vegetation/params/{type}", s.ParamsHandler)
	r.Handle(http.MethodGet, "/metrics", fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler()))

	httpServer := &fasthttp.Server{
		ReadTimeout:        time.Second,
		MaxRequestBodySize: MaxBodySize,
		Handler:            r.Handler,
	}

	go func() {
		log.Info("Server listening", "address", address)
		if err := httpServer.ListenAndServe(address); err != http.ErrServerClosed {
			stdlog.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	<-ctx.Done()
	s.wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return httpServer.ShutdownWithContext(shutdownCtx)
}

type server struct {
	store   *settings.Store
	jobs    *xsync.MapOf[string, *job]
	indexes *xsync.MapOf[string, *rowindex.Index]
	log     *slog.Logger
	wg      conc.WaitGroup

	metricJobsStarted     metric.Int64Counter
	metricPointsGenerated metric.Int64Counter
	metricPreviewCalls    metric.Int64Counter
}
