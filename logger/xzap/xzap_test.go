package xzap

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	logging "github.com/DarkHorse0725/NFT-marketplace/logger"
)

func restoreGlobal(t *testing.T) {
	prev := global.Load()
	t.Cleanup(func() { global.Store(prev) })
}

func TestSetUpFileMode(t *testing.T) {
	restoreGlobal(t)
	dir := t.TempDir()

	_, err := SetUp(logging.LogConf{ServiceName: "moondeploy", Mode: logging.ModeFile, Path: dir, Level: "debug", MaxSize: 1})
	require.NoError(t, err)

	ctx := NewContext(context.Background(), zap.String("run_id", "r1"))
	ctx = NewContext(ctx, zap.String("network", "mumbai"))
	WithContext(ctx).Info("MOON Contract Address: 0x1", zap.String("alias", "MOON"))
	Sync()

	data, err := os.ReadFile(filepath.Join(dir, "moondeploy.log"))
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry))
	assert.Equal(t, "MOON Contract Address: 0x1", entry["msg"])
	assert.Equal(t, "moondeploy", entry["service"])
	assert.Equal(t, "r1", entry["run_id"])
	assert.Equal(t, "mumbai", entry["network"])
	assert.Equal(t, "MOON", entry["alias"])
}

func TestSetUpLevelFilters(t *testing.T) {
	restoreGlobal(t)
	dir := t.TempDir()

	_, err := SetUp(logging.LogConf{Mode: logging.ModeFile, Path: dir, Level: "warn"})
	require.NoError(t, err)
	WithContext(context.Background()).Info("hidden")
	WithContext(context.Background()).Warn("shown")
	Sync()

	data, err := os.ReadFile(filepath.Join(dir, "moondeploy.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestSetUpErrors(t *testing.T) {
	restoreGlobal(t)

	_, err := SetUp(logging.LogConf{Mode: logging.ModeFile})
	require.Error(t, err)

	_, err = SetUp(logging.LogConf{Mode: "syslog"})
	require.Error(t, err)
}

func TestWithContextNil(t *testing.T) {
	//nolint:staticcheck
	assert.NotNil(t, WithContext(nil))
}
