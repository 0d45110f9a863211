package klogging

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

type ctxKey int

var ctxInfoKey ctxKey

// CtxInfo carries key/values that every log entry written under the ctx picks up.
type CtxInfo struct {
	Parent  *CtxInfo
	Details map[string]string
}

func GetCurrentCtxInfo(ctx context.Context) *CtxInfo {
	if ctx == nil {
		return nil
	}
	info, _ := ctx.Value(ctxInfoKey).(*CtxInfo)
	return info
}

// CreateCtxInfo creates a child info, using the info already in ctx (if any) as parent.
func CreateCtxInfo(ctx context.Context) (context.Context, *CtxInfo) {
	info := &CtxInfo{
		Parent:  GetCurrentCtxInfo(ctx),
		Details: map[string]string{},
	}
	return context.WithValue(ctx, ctxInfoKey, info), info
}

func GetOrCreateCtxInfo(ctx context.Context) (context.Context, *CtxInfo) {
	if info := GetCurrentCtxInfo(ctx); info != nil {
		return ctx, info
	}
	return CreateCtxInfo(ctx)
}

func (info *CtxInfo) With(k string, v string) *CtxInfo {
	info.Details[k] = v
	return info
}

// VisitForward visits parents first, keys of one level in sorted order, empty values skipped.
func (info *CtxInfo) VisitForward(visitor func(k string, v string)) {
	if info == nil {
		return
	}
	info.Parent.VisitForward(visitor)
	keys := make([]string, 0, len(info.Details))
	for k := range info.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := info.Details[k]; v != "" {
			visitor(k, v)
		}
	}
}

// FindByKey returns fallback when neither this info nor any parent has k.
func (info *CtxInfo) FindByKey(k string, fallback string) string {
	if info == nil {
		return fallback
	}
	if v, ok := info.Details[k]; ok && v != "" {
		return v
	}
	return info.Parent.FindByKey(k, fallback)
}

func (info *CtxInfo) String() string {
	var b strings.Builder
	info.VisitForward(func(k, v string) {
		fmt.Fprintf(&b, ", %s=%v", k, v)
	})
	return b.String()
}
