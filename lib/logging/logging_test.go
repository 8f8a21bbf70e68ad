package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLogLevel("debug"))
	assert.Equal(t, WARN, ParseLogLevel("WARNING"))
	assert.Equal(t, ERROR, ParseLogLevel("Error"))
	// Unknown levels fall back to INFO
	assert.Equal(t, INFO, ParseLogLevel("loud"))
}

func TestLevelOrdering(t *testing.T) {
	assert.True(t, DEBUG < INFO)
	assert.True(t, INFO < WARN)
	assert.True(t, WARN < ERROR)
	assert.True(t, ERROR < FATAL)
}
