package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRequestIDIsUnique(t *testing.T) {
	a, b := NewRequestID(), NewRequestID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestNewEventIDIsUniqueKSUID(t *testing.T) {
	a, b := NewEventID(), NewEventID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 27) // ksuid's canonical base62 encoding length
}
