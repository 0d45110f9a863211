package klogging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCtxInfoBasic(t *testing.T) {
	ctx := context.Background()
	_, info := GetOrCreateCtxInfo(ctx)
	info.With("runId", "ABC123").With("instance", "example")

	assert.Equal(t, ", instance=example, runId=ABC123", info.String())
}

func withPhase(ctx context.Context) string {
	ctx, info := CreateCtxInfo(ctx)
	info.With("phase", "search")
	return GetCurrentCtxInfo(ctx).String()
}

func TestCtxInfoMultiLevel(t *testing.T) {
	ctx, info := CreateCtxInfo(context.TODO())
	info.With("runId", "R1")
	assert.Equal(t, ", runId=R1, phase=search", withPhase(ctx))
	// parent is untouched by the child
	assert.Equal(t, ", runId=R1", GetCurrentCtxInfo(ctx).String())
}

func TestCtxInfoFindByKey(t *testing.T) {
	ctx, info := CreateCtxInfo(context.TODO())
	info.With("runId", "R1").With("empty", "")
	_, child := CreateCtxInfo(ctx)
	assert.Equal(t, "R1", child.FindByKey("runId", "none"))
	assert.Equal(t, "none", child.FindByKey("empty", "none"))
	assert.Equal(t, "none", child.FindByKey("missing", "none"))
	var nilInfo *CtxInfo
	assert.Equal(t, "x", nilInfo.FindByKey("runId", "x"))
}
