package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestApplyLevel(t *testing.T) {
	t.Cleanup(func() { Level.SetLevel(zap.InfoLevel) })

	ApplyLevel("WARN")
	assert.Equal(t, zap.WarnLevel, Level.Level())

	ApplyLevel(" debug ")
	assert.Equal(t, zap.DebugLevel, Level.Level())

	ApplyLevel("verbose")
	assert.Equal(t, zap.InfoLevel, Level.Level())
}
