package common

import (
	"context"
	"sync"

	"github.com/xinkaiwang/tabuplacer/libs/xklib/kcommon"
)

var (
	// overridden at build time: -ldflags "-X github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/common.version=..."
	version     = "unknown"
	sessionId   string
	sessionOnce sync.Once
	startTimeMs = kcommon.GetWallTimeMs()
)

func GetVersion() string {
	return version
}

// GetSessionId identifies this process in logs and metrics.
func GetSessionId() string {
	sessionOnce.Do(func() {
		sessionId = kcommon.RandomString(context.Background(), 8)
	})
	return sessionId
}

func GetStartTimeMs() int64 {
	return startTimeMs
}
