package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(LevelWarn, &buf)

	log.Debug("hidden", nil)
	log.Info("also hidden", nil)
	log.Warn("shown", nil)
	log.Error("also shown", nil)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "[ERROR]")
}

func TestStickyFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(LevelInfo, &buf)
	log.Opts(map[string]interface{}{"nodeId": "n1"})

	log.Info("message", map[string]interface{}{"extra": 2})

	line := buf.String()
	assert.Contains(t, line, "nodeId=n1")
	assert.Contains(t, line, "extra=2")
}

func TestFieldsAreSorted(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(LevelInfo, &buf)
	log.Info("m", map[string]interface{}{"b": 1, "a": 2})

	line := buf.String()
	assert.Less(t, strings.Index(line, "a=2"), strings.Index(line, "b=1"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("anything-else"))
}
