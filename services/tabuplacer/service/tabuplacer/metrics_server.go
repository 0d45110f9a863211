package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"contrib.go.opencensus.io/exporter/prometheus"
	"github.com/xinkaiwang/tabuplacer/libs/xklib/kerror"
	"github.com/xinkaiwang/tabuplacer/libs/xklib/klogging"
	"github.com/xinkaiwang/tabuplacer/libs/xklib/kmetrics"
	"github.com/xinkaiwang/tabuplacer/libs/xklib/ksysmetrics"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/common"
	"go.opencensus.io/metric/metricproducer"
)

// startMetricsServer exposes kmetrics and process metrics on :port/metrics. The returned func shuts the server down.
func startMetricsServer(ctx context.Context, port int) (func(), error) {
	if port <= 0 {
		return func() {}, nil
	}
	pe, err := prometheus.NewExporter(prometheus.Options{
		Namespace: "tabuplacer",
	})
	if err != nil {
		return nil, kerror.Wrap(err, "MetricsExporterError", "failed to create prometheus exporter", false)
	}
	registry := kmetrics.GetKmetricsRegistry()
	metricproducer.GlobalManager().AddProducer(registry)
	metricproducer.GlobalManager().AddProducer(ksysmetrics.GetRegistry())
	stopSysMetrics := ksysmetrics.StartSysMetricsCollector(ctx, 5*time.Second, common.GetVersion())

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", pe)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: metricsMux,
	}
	go func() {
		klogging.Info(ctx).With("port", port).Log("MetricsServerStarting", "")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			klogging.Error(ctx).WithError(err).With("port", port).Log("MetricsServerError", "")
		}
	}()
	return func() {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			klogging.Warning(ctx).WithError(err).Log("MetricsServerShutdownError", "")
		}
		stopSysMetrics()
		metricproducer.GlobalManager().DeleteProducer(registry)
		metricproducer.GlobalManager().DeleteProducer(ksysmetrics.GetRegistry())
	}, nil
}
