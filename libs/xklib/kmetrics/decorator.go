package kmetrics

import (
	"context"

	"github.com/xinkaiwang/tabuplacer/libs/xklib/kcommon"
	"github.com/xinkaiwang/tabuplacer/libs/xklib/kerror"
)

var (
	OpsLatencyMetric = CreateKmetric(context.Background(), "op_latency_ms", "latency of instrumented operations", []string{"method", "status", "error"})
)

// FuncTypeError is a function being decorated. It reports failure by returning an error.
type FuncTypeError func(ctx context.Context) error

// InstrumentSummaryRunError times fn into op_latency_ms{method,status,error} and returns fn's error unchanged.
// A panic in fn is recorded as an error and then re-raised.
func InstrumentSummaryRunError(ctx context.Context, method string, fn FuncTypeError) (err error) {
	tagStatus := "OK"
	tagError := ""
	start := kcommon.GetMonoTimeMs()
	var ke *kerror.Kerror
	defer func() {
		if ke != nil {
			tagStatus = "ERROR"
			tagError = ke.Type
		}
		OpsLatencyMetric.GetTimeSequence(ctx, method, tagStatus, tagError).Add(kcommon.GetMonoTimeMs() - start)
		if ke != nil && err == nil {
			panic(ke)
		}
	}()
	ke = kcommon.TryCatchRun(ctx, func() {
		err = fn(ctx)
	})
	if ke == nil && err != nil {
		ke = kerror.Wrap(err, errorType(err), "", false)
	}
	return err
}

func errorType(err error) string {
	if ke, ok := err.(*kerror.Kerror); ok {
		return ke.Type
	}
	return "UnknownError"
}
