package flowerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindMatching(t *testing.T) {
	err := ExecutionFailed("n1", fmt.Errorf("boom"))

	assert.True(t, Is(err, KindExecutionFailed))
	assert.False(t, Is(err, KindDependencyFailed))
	assert.Equal(t, KindExecutionFailed, KindOf(err))
	assert.Equal(t, "n1", NodeOf(err))
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := CycleDetected("a -> b -> a")
	wrapped := fmt.Errorf("trigger aborted: %w", inner)

	assert.True(t, Is(wrapped, KindCycleDetected))
	assert.Equal(t, "", NodeOf(wrapped))
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("schema says no")
	err := ValidationFailed("payload", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "payload")
	assert.Contains(t, err.Error(), "validation_failed")
}

func TestPinNotReadyCarriesContext(t *testing.T) {
	err := PinNotReady("divide", "a")
	assert.Contains(t, err.Error(), "divide")
	assert.Contains(t, err.Error(), "a")
	assert.Equal(t, KindPinNotReady, KindOf(err))
}

func TestNonEngineErrors(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(fmt.Errorf("plain")))
	assert.False(t, Is(nil, KindCancelled))
}
