package main

import (
	"context"
	"strconv"

	"github.com/xinkaiwang/tabuplacer/libs/xklib/kmetrics"
)

var (
	LogSizeBytesMetrics  = kmetrics.CreateKmetric(context.Background(), "klogging_volume_byte", "log size in byte (don't include skipped events)", []string{"level", "event"})
	LogErrorCountMetrics = kmetrics.CreateKmetric(context.Background(), "klogging_brief_count", "log event count (include those skipped)", []string{"level", "event", "logged"}).CountOnly()
)

// LoggerMetricsReporter implements klogging.LoggerMetrcsReporter on top of kmetrics.
type LoggerMetricsReporter struct {
}

func NewLoggerMetricsReporter() *LoggerMetricsReporter {
	return &LoggerMetricsReporter{}
}

func (lmr *LoggerMetricsReporter) ReportLogSizeBytes(ctx context.Context, size int, logLevel, eventType string) {
	LogSizeBytesMetrics.GetTimeSequence(ctx, logLevel, eventType).Add(int64(size))
}

func (lmr *LoggerMetricsReporter) ReportLogErrorCount(ctx context.Context, count int, logLevel, eventType string, isLogged bool) {
	LogErrorCountMetrics.GetTimeSequence(ctx, logLevel, eventType, strconv.FormatBool(isLogged)).Add(int64(count))
}
