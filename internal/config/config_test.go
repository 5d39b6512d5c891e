package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOverlaysOnlySpecifiedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  region: eu-west-1
server:
  listen_addr: ":9090"
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", cfg.LLM.Region)
	assert.Equal(t, "anthropic.claude-3-haiku-20240307-v1:0", cfg.LLM.ModelID)
	assert.Equal(t, ":9090", cfg.Server.ListenAddr)
	assert.Equal(t, "/metrics", cfg.Server.MetricsPath)
}

func TestLoadMalformedFileErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not: valid: yaml: at: all:"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLLMConfigTimeoutConversions(t *testing.T) {
	c := LLMConfig{TimeoutSeconds: 8, CacheTTLSeconds: 900}
	assert.Equal(t, int64(8), c.Timeout().Nanoseconds()/1e9)
	assert.Equal(t, int64(900), c.CacheTTL().Nanoseconds()/1e9)
}
