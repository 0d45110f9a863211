package klogging

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// SimpleFormatter implements logrus.Formatter: "time LEVEL event=.. msg=.. k=v ..", keys sorted.
type SimpleFormatter struct {
}

func NewSimpleFormatter() logrus.Formatter {
	return &SimpleFormatter{}
}

func (f *SimpleFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var sb strings.Builder
	sb.WriteString(entry.Time.Format("2006-01-02 15:04:05.000"))
	sb.WriteString(" ")
	sb.WriteString(strings.ToUpper(entry.Level.String()))
	if event, ok := entry.Data["event"]; ok {
		sb.WriteString(" event=")
		sb.WriteString(fmt.Sprint(event))
	}
	sb.WriteString(" msg=")
	sb.WriteString(quoteIfNeeded(entry.Message))

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k == "event" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(" ")
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(formatValue(entry.Data[k]))
	}
	sb.WriteString("\n")
	return []byte(sb.String()), nil
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return quoteIfNeeded(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case fmt.Stringer:
		return quoteIfNeeded(val.String())
	default:
		return fmt.Sprintf("%v", v)
	}
}

func quoteIfNeeded(v string) string {
	v = strings.ReplaceAll(v, "\n", "")
	if v == "" || strings.Contains(v, " ") {
		return "'" + strings.ReplaceAll(v, "'", "\\'") + "'"
	}
	return v
}
