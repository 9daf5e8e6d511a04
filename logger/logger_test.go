package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestZapLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, LogConf{Level: "debug"}.ZapLevel())
	assert.Equal(t, zapcore.WarnLevel, LogConf{Level: "WARN"}.ZapLevel())
	assert.Equal(t, zapcore.InfoLevel, LogConf{Level: ""}.ZapLevel())
	assert.Equal(t, zapcore.InfoLevel, LogConf{Level: "loud"}.ZapLevel())
}
