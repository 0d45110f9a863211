package ksysmetrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestCollectorExportsVersionedGauges(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()

	stop := StartSysMetricsCollector(ctx, 10*time.Millisecond, "v-test")
	time.Sleep(30 * time.Millisecond)
	stop()

	assert.True(t, latest.Load().goroutines > 0)
	assert.True(t, latest.Load().heapBytes > 0)

	names := map[string]bool{}
	for _, m := range GetRegistry().Read() {
		names[m.Descriptor.Name] = true
		require.NotEmpty(t, m.TimeSeries)
		assert.Equal(t, "v-test", m.TimeSeries[0].LabelValues[0].Value)
	}
	assert.True(t, names["process_goroutines"])
	assert.True(t, names["process_user_cpu_seconds"])
	assert.True(t, names["process_gc_count"])
}
