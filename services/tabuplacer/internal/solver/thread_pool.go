package solver

import (
	"context"
	"sync"

	"github.com/xinkaiwang/tabuplacer/libs/xklib/kcommon"
	"github.com/xinkaiwang/tabuplacer/libs/xklib/klogging"
	"github.com/xinkaiwang/tabuplacer/libs/xklib/kmetrics"
)

var (
	ThreadPoolElapsedMsMetrics = kmetrics.CreateKmetric(context.Background(), "thread_pool_elapsed_ms", "time spent per task", []string{"name", "event"})
)

type Task interface {
	GetName() string
	Execute()
}

// ThreadPool runs tasks on a fixed set of goroutines. name is used for logging/metrics only.
type ThreadPool struct {
	name         string
	agentThreads []*AgentThread
	ch           chan Task
}

func NewThreadPool(ctx context.Context, threadNum int, name string) *ThreadPool {
	tp := &ThreadPool{
		name: name,
		ch:   make(chan Task, 1000),
	}
	tp.agentThreads = make([]*AgentThread, threadNum)
	for i := 0; i < threadNum; i++ {
		tp.agentThreads[i] = NewAgentThread(ctx, tp)
	}
	return tp
}

func (tp *ThreadPool) EnqueueTask(task Task) {
	tp.ch <- task
}

// RunBatch enqueues every task and blocks until all of them have executed.
func (tp *ThreadPool) RunBatch(tasks []Task) {
	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for _, task := range tasks {
		tp.EnqueueTask(&batchTask{inner: task, wg: &wg})
	}
	wg.Wait()
}

func (tp *ThreadPool) StopAndWaitForExit() {
	for _, td := range tp.agentThreads {
		td.Stop()
	}
	for _, td := range tp.agentThreads {
		td.WaitForExit()
	}
}

type batchTask struct {
	inner Task
	wg    *sync.WaitGroup
}

func (bt *batchTask) GetName() string {
	return bt.inner.GetName()
}

func (bt *batchTask) Execute() {
	defer bt.wg.Done()
	bt.inner.Execute()
}

type AgentThread struct {
	parent  *ThreadPool
	cancel  context.CancelFunc
	stopped chan struct{}
}

func NewAgentThread(ctx context.Context, parent *ThreadPool) *AgentThread {
	ctx, cancel := context.WithCancel(ctx)
	td := &AgentThread{
		parent:  parent,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	go td.Run(ctx)
	return td
}

func (td *AgentThread) Run(ctx context.Context) {
	defer close(td.stopped)
	ke := kcommon.TryCatchRun(ctx, func() {
		td.run(ctx)
	})
	if ke != nil {
		klogging.Fatal(ctx).WithError(ke).With("pool", td.parent.name).Log("AgentThreadRun", "exit with panic")
	}
}

func (td *AgentThread) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-td.parent.ch:
			startTime := kcommon.GetMonoTimeMs()
			task.Execute()
			elapsedMs := kcommon.GetMonoTimeMs() - startTime
			ThreadPoolElapsedMsMetrics.GetTimeSequence(ctx, td.parent.name, task.GetName()).Add(elapsedMs)
		}
	}
}

func (td *AgentThread) Stop() {
	td.cancel()
}

func (td *AgentThread) WaitForExit() {
	<-td.stopped
}
