package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "memory", cfg.Cache.Type)
	assert.False(t, cfg.Queue.Enable)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 4, cfg.Extractor.ExportIndent)

	_, err = os.Stat(path)
	assert.NoError(t, err, "default config file should be written")
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
  mode: debug
storage:
  type: minio
  bucket: banks
  secret_key: ${QB_TEST_SECRET}
queue:
  enable: true
  concurrency: 2
extractor:
  export_indent: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv("QB_TEST_SECRET", "s3cr3t")
	t.Setenv("QUEUE_REDIS_ADDR", "redis:6380")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, "minio", cfg.Storage.Type)
	assert.Equal(t, "banks", cfg.Storage.Bucket)
	assert.Equal(t, "s3cr3t", cfg.Storage.SecretKey)
	assert.True(t, cfg.Queue.Enable)
	assert.Equal(t, 2, cfg.Queue.Concurrency)
	assert.Equal(t, "redis:6380", cfg.Queue.RedisAddr)
	assert.Equal(t, 2, cfg.Extractor.ExportIndent)
	// 未配置的项保留默认值
	assert.Equal(t, 3, cfg.Queue.RetryLimit)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("QB_TEST_VALUE", "value")

	assert.Equal(t, "value", expandEnv("${QB_TEST_VALUE}"))
	assert.Equal(t, "${QB_TEST_UNSET}", expandEnv("${QB_TEST_UNSET}"))
	assert.Equal(t, "plain", expandEnv("plain"))
}

func TestDefault(t *testing.T) {
	t.Setenv("SERVER_PORT", "7070")

	cfg, err := Default()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "data/questions.db", cfg.Database.DSN)
	assert.Equal(t, 300, cfg.Extractor.ProcessTimeout)
}
