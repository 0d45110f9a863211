package kcommon

import (
	"context"

	"github.com/xinkaiwang/tabuplacer/libs/xklib/kerror"
	"github.com/xinkaiwang/tabuplacer/libs/xklib/klogging"
)

// TryCatchRun turns a panic inside fn into a *kerror.Kerror. A non-error panic is fatal.
func TryCatchRun(ctx context.Context, fn func()) (ret *kerror.Kerror) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if ke, ok := r.(*kerror.Kerror); ok {
			ret = ke
		} else if err, ok := r.(error); ok {
			ret = kerror.Wrap(err, "UnknownError", "", true)
		} else {
			klogging.Fatal(ctx).WithPanic(r).Log("NonErrorPanic", "")
			ret = kerror.Create("NonErrorPanic", "panic with non-error value").With("panic", r)
		}
	}()
	fn()
	return
}
