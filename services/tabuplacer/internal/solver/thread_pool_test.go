package solver

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

type countTask struct {
	counter *int64
}

func (task *countTask) GetName() string {
	return "count"
}

func (task *countTask) Execute() {
	atomic.AddInt64(task.counter, 1)
}

func TestThreadPoolRunBatch(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()
	pool := NewThreadPool(ctx, 4, "test_pool")
	var counter int64
	tasks := make([]Task, 100)
	for i := range tasks {
		tasks[i] = &countTask{counter: &counter}
	}
	pool.RunBatch(tasks)
	assert.Equal(t, int64(100), atomic.LoadInt64(&counter))

	pool.RunBatch(tasks[:10])
	assert.Equal(t, int64(110), atomic.LoadInt64(&counter))
	pool.StopAndWaitForExit()

	count, _ := ThreadPoolElapsedMsMetrics.GetTimeSequence(ctx, "test_pool", "count").Get()
	assert.Equal(t, int64(110), count)
}

func TestThreadPoolEmptyBatch(t *testing.T) {
	defer goleak.VerifyNone(t)
	pool := NewThreadPool(context.Background(), 2, "test_empty")
	pool.RunBatch(nil)
	pool.StopAndWaitForExit()
}
