package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JulianoL13/app-config-aggregator/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Len(t, cfg.Sources, 2)
	assert.Equal(t, 200, cfg.MaxOutput)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, config.PolicyDrop, cfg.Probe.Policy)
	assert.Equal(t, 40, cfg.Probe.Concurrency)
	assert.Equal(t, "Index.html", cfg.Artifact.Path)
	assert.Equal(t, []string{"<script"}, cfg.Artifact.TailMarkers)
	assert.Equal(t, config.DefaultHeader(config.DefaultRemark), cfg.Artifact.DefaultHeader)
	assert.Equal(t, 30, cfg.Scoring.Protocol["vless"])
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, `
sources:
  - " https://a.example.com/sub.txt "
  - https://b.example.com/sub.txt
  - https://a.example.com/sub.txt
  - ""
remark: "Free Nodes"
max_output: 50
fetch:
  timeout: 10s
probe:
  policy: penalize
  timeout: 2s
  rate_per_second: 25
artifact:
  path: out/index.html
  tail_markers: ["<script", "<meta http-equiv"]
scoring:
  protocol:
    vless: 99
  ports:
    3389: 0
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example.com/sub.txt", "https://b.example.com/sub.txt"}, cfg.Sources)
	assert.Equal(t, "Free Nodes", cfg.Remark)
	assert.Equal(t, 50, cfg.MaxOutput)
	assert.Equal(t, 10*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 8, cfg.Fetch.Concurrency, "unset fields keep defaults")
	assert.Equal(t, config.PolicyPenalize, cfg.Probe.Policy)
	assert.Equal(t, 2*time.Second, cfg.Probe.Timeout)
	assert.Equal(t, 25.0, cfg.Probe.RatePerSecond)
	assert.Equal(t, "out/index.html", cfg.Artifact.Path)
	assert.Equal(t, []string{"<script", "<meta http-equiv"}, cfg.Artifact.TailMarkers)
	assert.Equal(t, config.DefaultHeader("Free Nodes"), cfg.Artifact.DefaultHeader)

	assert.Equal(t, 99, cfg.Scoring.Protocol["vless"])
	assert.Equal(t, 28, cfg.Scoring.Protocol["trojan"], "weights merge with defaults")
	assert.Equal(t, 0, cfg.Scoring.Ports[3389])
	assert.Equal(t, 15, cfg.Scoring.Ports[443])
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "remark: from-file\nmax_output: 10\n")

	t.Setenv("REMARK", "from-env")
	t.Setenv("SOURCES", "https://x.example.com/a, https://y.example.com/b")
	t.Setenv("PROBE_ENABLED", "false")
	t.Setenv("PROBE_TIMEOUT_SECONDS", "7")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("SNAPSHOT_TTL_MINUTES", "15")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Remark)
	assert.Equal(t, 10, cfg.MaxOutput)
	assert.Equal(t, []string{"https://x.example.com/a", "https://y.example.com/b"}, cfg.Sources)
	assert.False(t, cfg.Probe.Enabled)
	assert.Equal(t, 7*time.Second, cfg.Probe.Timeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 15*time.Minute, cfg.Redis.TTL)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := config.Load(writeFile(t, "sources: [unterminated"))
		assert.Error(t, err)
	})

	t.Run("unknown probe policy", func(t *testing.T) {
		_, err := config.Load(writeFile(t, "probe:\n  policy: retry\n"))
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("non-positive output cap", func(t *testing.T) {
		for _, v := range []string{"0", "-5"} {
			_, err := config.Load(writeFile(t, "max_output: "+v+"\n"))
			assert.ErrorIs(t, err, config.ErrInvalidConfig, "max_output %s", v)
		}
	})

	t.Run("no sources", func(t *testing.T) {
		_, err := config.Load(writeFile(t, "sources: []\n"))
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})
}

func TestLoad_PolicyCaseInsensitive(t *testing.T) {
	t.Setenv("PROBE_POLICY", "")

	cfg, err := config.Load(writeFile(t, "probe:\n  policy: Penalize\n"))
	require.NoError(t, err)
	assert.Equal(t, config.PolicyPenalize, cfg.Probe.Policy)

	t.Setenv("PROBE_POLICY", "DROP")
	cfg, err = config.Load(writeFile(t, "probe:\n  policy: penalize\n"))
	require.NoError(t, err)
	assert.Equal(t, config.PolicyDrop, cfg.Probe.Policy)
}

func TestValidate_MaxOutput(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	cfg.MaxOutput = 0
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidConfig)

	cfg.MaxOutput = -5
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidConfig)
}

func TestDefault_IndependentMaps(t *testing.T) {
	a := config.Default()
	a.Scoring.Protocol["vless"] = 1

	b := config.Default()
	assert.Equal(t, 30, b.Scoring.Protocol["vless"])
}
