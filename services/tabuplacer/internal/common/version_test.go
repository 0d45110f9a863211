package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionIdIsStable(t *testing.T) {
	id := GetSessionId()
	assert.Len(t, id, 8)
	assert.Equal(t, id, GetSessionId())
	assert.Equal(t, "unknown", GetVersion())
	assert.True(t, GetStartTimeMs() > 0)
}
