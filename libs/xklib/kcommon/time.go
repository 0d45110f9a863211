package kcommon

import (
	"time"
)

var (
	currentTimeProvider TimeProvider = NewSystemTimeProvider()
)

type TimeProvider interface {
	GetWallTimeMs() int64
	GetMonoTimeMs() int64
}

func RunWithTimeProvider(tp TimeProvider, fn func()) {
	old := currentTimeProvider
	currentTimeProvider = tp
	defer func() {
		currentTimeProvider = old
	}()
	fn()
}

func GetWallTimeMs() int64 {
	return currentTimeProvider.GetWallTimeMs()
}

func GetMonoTimeMs() int64 {
	return currentTimeProvider.GetMonoTimeMs()
}

// SystemTimeProvider: implements TimeProvider interface
type SystemTimeProvider struct {
	startTime time.Time
}

func NewSystemTimeProvider() *SystemTimeProvider {
	return &SystemTimeProvider{
		startTime: time.Now(),
	}
}

func (provider *SystemTimeProvider) GetWallTimeMs() int64 {
	return time.Now().UnixMilli()
}

func (provider *SystemTimeProvider) GetMonoTimeMs() int64 {
	return time.Since(provider.startTime).Milliseconds()
}

// MockTimeProvider: implements TimeProvider interface, time only moves when told to.
type MockTimeProvider struct {
	WallTime int64
	MonoTime int64
}

func NewMockTimeProvider() *MockTimeProvider {
	return &MockTimeProvider{}
}

func (provider *MockTimeProvider) GetWallTimeMs() int64 {
	return provider.WallTime
}

func (provider *MockTimeProvider) GetMonoTimeMs() int64 {
	return provider.MonoTime
}

func (provider *MockTimeProvider) AddTimeMs(diffMs int64) *MockTimeProvider {
	provider.MonoTime += diffMs
	provider.WallTime += diffMs
	return provider
}
