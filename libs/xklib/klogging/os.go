package klogging

import "os"

var (
	currentOsProvider OsProvider = &SystemOsProvider{}
)

type OsProvider interface {
	Exit(code int)
}

func OsExit(code int) {
	currentOsProvider.Exit(code)
}

type SystemOsProvider struct {
}

func (provider *SystemOsProvider) Exit(code int) {
	os.Exit(code)
}

// MockOsProvider records the exit instead of exiting, for Fatal paths under test.
type MockOsProvider struct {
	ExitCodes []int
}

func NewMockOsProvider() *MockOsProvider {
	return &MockOsProvider{}
}

func (provider *MockOsProvider) SetAsDefault() *MockOsProvider {
	currentOsProvider = provider
	return provider
}

func (provider *MockOsProvider) Exit(code int) {
	provider.ExitCodes = append(provider.ExitCodes, code)
}

func RestoreOsProvider() {
	currentOsProvider = &SystemOsProvider{}
}
