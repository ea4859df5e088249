package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medeiros-dev/notification-dispatch/configs"
	"github.com/medeiros-dev/notification-dispatch/pkg/logger"
)

func TestConfigureLogger_FromDotEnv(t *testing.T) {
	t.Setenv(configs.KeyLogLevel, "")
	t.Setenv(configs.KeyLogFile, "")
	t.Cleanup(logger.SetTestLogger(logger.L()))

	dir := t.TempDir()
	logPath := filepath.Join(dir, "dispatch.log")
	dotEnv := "LOG_LEVEL=warn\nLOG_FILE=" + logPath + "\nEMAIL_PORT=2525\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(dotEnv), 0o600))

	root, err := configs.GetBasePath("")
	require.NoError(t, err)
	rel, err := filepath.Rel(root, dir)
	require.NoError(t, err)

	cfg, err := configs.NewConfig(rel, nil)
	require.NoError(t, err)
	require.Equal(t, 2525, cfg.Email.Port)

	require.NoError(t, configureLogger(cfg))
	logger.L().Info("below configured level")
	logger.L().Warn("written by configured logger")
	_ = logger.Sync()

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written by configured logger")
	assert.NotContains(t, string(data), "below configured level")
}
