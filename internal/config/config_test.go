package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/pipeline"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	require.Equal(t, pipeline.PlatformVercel, cfg.Pipeline.Platform)
	require.False(t, cfg.Pipeline.VibeMode)
	require.Equal(t, "sitegen.db", cfg.Store.Path)
	require.Equal(t, "./sites", cfg.Output.Directory)
	require.False(t, cfg.NATS.Enabled)
	require.Equal(t, 24*time.Hour, cfg.Janitor.MaxAge)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitegen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
pipeline:
  vibe_mode: true
  platform: netlify
  domain: acme.dev
store:
  path: /tmp/runs.db
output:
  directory: /tmp/sites
  commit_export: true
janitor:
  enabled: true
  max_age: 48h
  every: 30m
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.True(t, cfg.Pipeline.VibeMode)
	require.Equal(t, pipeline.PlatformNetlify, cfg.Pipeline.Platform)
	require.Equal(t, "acme.dev", cfg.Pipeline.Domain)
	require.Equal(t, "/tmp/runs.db", cfg.Store.Path)
	require.True(t, cfg.Output.CommitExport)
	require.True(t, cfg.Janitor.Enabled)
	require.Equal(t, 48*time.Hour, cfg.Janitor.MaxAge)
	require.Equal(t, 30*time.Minute, cfg.Janitor.Every)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("SITEGEN_PLATFORM", "cloudflare")
	t.Setenv("SITEGEN_VIBE_MODE", "true")
	t.Setenv("SITEGEN_NATS_URL", "nats://broker:4222")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	require.Equal(t, pipeline.PlatformCloudflare, cfg.Pipeline.Platform)
	require.True(t, cfg.Pipeline.VibeMode)
	require.True(t, cfg.NATS.Enabled)
	require.Equal(t, "nats://broker:4222", cfg.NATS.URL)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Pipeline.Platform = "ftp"
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Store.Path = ""
	require.Error(t, cfg.Validate())
}
