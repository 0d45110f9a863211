package ksysmetrics

import (
	"context"
	"math"
	"runtime"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/xinkaiwang/tabuplacer/libs/xklib/klogging"
	"go.opencensus.io/metric"
	"go.opencensus.io/metric/metricdata"
)

// processSample is the latest snapshot; gauges read it lazily at scrape time.
type processSample struct {
	userCPUSeconds   float64
	systemCPUSeconds float64
	heapBytes        int64
	sysBytes         int64
	goroutines       int64
	gcPauseTotalNs   int64
	gcCount          int64
}

var (
	registry = metric.NewRegistry()
	latest   atomic.Pointer[processSample]
	// one upsert per gauge, run once the version label is known
	upserts []func(version metricdata.LabelValue)
)

func init() {
	latest.Store(&processSample{})
	addFloat("process_user_cpu_seconds", "User CPU time spent in seconds", metricdata.UnitDimensionless, func(s *processSample) float64 { return s.userCPUSeconds })
	addFloat("process_system_cpu_seconds", "System CPU time spent in seconds", metricdata.UnitDimensionless, func(s *processSample) float64 { return s.systemCPUSeconds })
	addInt("process_heap_bytes", "Heap bytes allocated and in use", metricdata.UnitBytes, func(s *processSample) int64 { return s.heapBytes })
	addInt("process_sys_bytes", "Bytes obtained from the OS by the Go runtime", metricdata.UnitBytes, func(s *processSample) int64 { return s.sysBytes })
	addInt("process_goroutines", "Number of goroutines", metricdata.UnitDimensionless, func(s *processSample) int64 { return s.goroutines })
	addInt("process_gc_pause_total_ns", "Total GC pause time in nanoseconds", metricdata.UnitDimensionless, func(s *processSample) int64 { return s.gcPauseTotalNs })
	addInt("process_gc_count", "Completed GC cycles", metricdata.UnitDimensionless, func(s *processSample) int64 { return s.gcCount })
}

func addFloat(name, desc string, unit metricdata.Unit, read func(*processSample) float64) {
	gauge, err := registry.AddFloat64DerivedGauge(name, metric.WithDescription(desc), metric.WithUnit(unit), metric.WithLabelKeys("version"))
	if err != nil {
		panic(err)
	}
	upserts = append(upserts, func(v metricdata.LabelValue) {
		_ = gauge.UpsertEntry(func() float64 { return read(latest.Load()) }, v)
	})
}

func addInt(name, desc string, unit metricdata.Unit, read func(*processSample) int64) {
	gauge, err := registry.AddInt64DerivedGauge(name, metric.WithDescription(desc), metric.WithUnit(unit), metric.WithLabelKeys("version"))
	if err != nil {
		panic(err)
	}
	upserts = append(upserts, func(v metricdata.LabelValue) {
		_ = gauge.UpsertEntry(func() int64 { return read(latest.Load()) }, v)
	})
}

// GetRegistry is the opencensus producer to hand to metricproducer.GlobalManager().
func GetRegistry() *metric.Registry {
	return registry
}

// Collect takes one snapshot right away.
func Collect(ctx context.Context) {
	sample := &processSample{}
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err == nil {
		sample.userCPUSeconds = timevalSeconds(rusage.Utime)
		sample.systemCPUSeconds = timevalSeconds(rusage.Stime)
	} else {
		klogging.Warning(ctx).WithError(err).Log("CPUMetricsError", "failed to read rusage")
	}
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	sample.heapBytes = clampInt64(memStats.HeapAlloc)
	sample.sysBytes = clampInt64(memStats.Sys)
	sample.gcPauseTotalNs = clampInt64(memStats.PauseTotalNs)
	sample.gcCount = int64(memStats.NumGC)
	sample.goroutines = int64(runtime.NumGoroutine())
	latest.Store(sample)
}

// StartSysMetricsCollector labels every gauge with version and refreshes the snapshot every interval
// until the returned stop func is called.
func StartSysMetricsCollector(ctx context.Context, interval time.Duration, version string) (stop func()) {
	label := metricdata.NewLabelValue(version)
	for _, upsert := range upserts {
		upsert(label)
	}
	Collect(ctx)
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				Collect(ctx)
			}
		}
	}()
	return func() {
		close(done)
		<-exited
	}
}

func timevalSeconds(tv syscall.Timeval) float64 {
	return float64(tv.Sec) + float64(tv.Usec)/1e6
}

func clampInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}
