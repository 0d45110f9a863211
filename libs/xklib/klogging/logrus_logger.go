package klogging

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xinkaiwang/tabuplacer/libs/xklib/kerror"
)

// TimestampFormat keeps ms resolution and the zone, and sorts lexically.
const TimestampFormat = "2006-01-02T15:04:05.999Z07:00"

type LogFormat uint32

const (
	TextFormat LogFormat = iota + 1
	JsonFormat
	SimpleFormat
)

func (e LogFormat) String() string {
	switch e {
	case TextFormat:
		return "Text"
	case JsonFormat:
		return "Json"
	case SimpleFormat:
		return "Simple"
	default:
		return fmt.Sprintf("%d", int(e))
	}
}

func ParseLogFormat(str string) LogFormat {
	switch {
	case strings.EqualFold("text", str):
		return TextFormat
	case strings.EqualFold("json", str):
		return JsonFormat
	case strings.EqualFold("simple", str):
		return SimpleFormat
	}
	panic(kerror.Create("UnknownLogFormat", "parse log format failed").With("str", str).WithErrorCode(kerror.EC_INVALID_PARAMETER))
}

type LoggerMetrcsReporter interface {
	ReportLogSizeBytes(ctx context.Context, size int, logLevel, eventType string)
	ReportLogErrorCount(ctx context.Context, count int, logLevel, eventType string, isLogged bool)
}

// LogrusLogger implements Logger on top of logrus. Level filtering happens here, logrus itself accepts everything.
type LogrusLogger struct {
	ctx             context.Context
	RusLogger       *logrus.Logger
	logLevel        Level
	logFormat       LogFormat
	metricsReporter LoggerMetrcsReporter
}

func NewLogrusLogger(ctx context.Context) *LogrusLogger {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logrus.New()
	log.SetLevel(logrus.TraceLevel)
	logger := &LogrusLogger{
		ctx:       ctx,
		RusLogger: log,
		logLevel:  InfoLevel,
	}
	logger.setFormat(TextFormat)
	return logger
}

func (logger *LogrusLogger) WithMetricsReporter(reporter LoggerMetrcsReporter) *LogrusLogger {
	logger.metricsReporter = reporter
	return logger
}

func (logger *LogrusLogger) WithOutput(out io.Writer) *LogrusLogger {
	logger.RusLogger.SetOutput(out)
	return logger
}

// SetConfig accepts level fatal/error/warning/info/debug/verbose and format text/json/simple.
// A bad value is logged and the previous setting kept.
func (logger *LogrusLogger) SetConfig(ctx context.Context, levelStr string, formatStr string) *LogrusLogger {
	defer func() {
		if r := recover(); r != nil {
			Warning(ctx).WithPanic(r).Log("UpdateLogConfigFailed", "log config update failed")
		}
	}()
	newLevel := ParseLogLevel(levelStr)
	newFormat := ParseLogFormat(formatStr)
	logger.logLevel = newLevel
	if logger.logFormat != newFormat {
		logger.setFormat(newFormat)
	}
	return logger
}

func (logger *LogrusLogger) setFormat(format LogFormat) {
	switch format {
	case JsonFormat:
		logger.RusLogger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: TimestampFormat})
	case SimpleFormat:
		logger.RusLogger.SetFormatter(NewSimpleFormatter())
	default:
		logger.RusLogger.SetFormatter(&logrus.TextFormatter{
			DisableColors:   true,
			TimestampFormat: TimestampFormat,
			FullTimestamp:   true,
		})
		format = TextFormat
	}
	logger.logFormat = format
}

// Log: skipped entries still reach the metrics reporter as counts.
func (logger *LogrusLogger) Log(entry *LogEntry, shouldLog bool) {
	if logger.metricsReporter != nil && NeedLog(entry.Level, DebugLevel) {
		logger.metricsReporter.ReportLogErrorCount(logger.ctx, 1, entry.Level.String(), entry.LogType, shouldLog)
	}
	if !shouldLog {
		return
	}
	fields := make(logrus.Fields, len(entry.Details)+1)
	logSize := len(entry.Msg) + len(entry.LogType)
	for _, item := range entry.Details {
		fields[item.K] = item.V
		logSize += len(item.K) + len(fmt.Sprint(item.V))
	}
	fields["event"] = entry.LogType
	if logger.metricsReporter != nil {
		logger.metricsReporter.ReportLogSizeBytes(logger.ctx, logSize, entry.Level.String(), entry.LogType)
	}
	ent := logger.RusLogger.WithFields(fields)
	ent.Time = entry.Timestamp
	ent.Log(kloggingLevel2Logrus(entry.Level), entry.Msg)
}

// klogging levels share logrus numbering (logrus has PanicLevel=0 which we don't use).
func kloggingLevel2Logrus(level Level) logrus.Level {
	return logrus.Level(int(level))
}

func (logger *LogrusLogger) Level() Level {
	return logger.logLevel
}

func (logger *LogrusLogger) Format() LogFormat {
	return logger.logFormat
}
