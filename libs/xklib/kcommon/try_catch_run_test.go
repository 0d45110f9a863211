package kcommon

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xinkaiwang/tabuplacer/libs/xklib/kerror"
	"github.com/xinkaiwang/tabuplacer/libs/xklib/klogging"
)

func TestTryCatchRun_RuntimeError(t *testing.T) {
	ctx := context.Background()
	div := func(x int, y int) int {
		return x / y
	}
	ke := TryCatchRun(ctx, func() {
		div(1, 0)
	})
	assert.NotNil(t, ke)
	assert.Equal(t, "UnknownError", ke.Type)
	assert.NotEqual(t, "", ke.Stack)
	assert.Regexp(t, "divide by zero", ke.CausedByString())
}

func TestTryCatchRun_Kerror(t *testing.T) {
	ke := TryCatchRun(context.Background(), func() {
		panic(kerror.Create("ConfigurationInconsistency", "unknown workload").With("workloadId", "w9"))
	})
	assert.NotNil(t, ke)
	assert.Equal(t, "ConfigurationInconsistency", ke.Type)
}

func TestTryCatchRun_NoPanic(t *testing.T) {
	called := false
	ke := TryCatchRun(context.Background(), func() { called = true })
	assert.Nil(t, ke)
	assert.True(t, called)
}

func TestTryCatchRun_PlainError(t *testing.T) {
	sentinel := errors.New("boom")
	ke := TryCatchRun(context.Background(), func() { panic(sentinel) })
	assert.True(t, errors.Is(ke, sentinel))
}

func TestTryCatchRun_NonErrorPanicIsFatal(t *testing.T) {
	mock := klogging.NewMockOsProvider().SetAsDefault()
	defer klogging.RestoreOsProvider()
	var ke *kerror.Kerror
	klogging.RunWithLogger(klogging.NewNullLogger(), func() {
		ke = TryCatchRun(context.Background(), func() { panic("not an error") })
	})
	assert.Equal(t, []int{1}, mock.ExitCodes)
	assert.Equal(t, "NonErrorPanic", ke.Type)
}
