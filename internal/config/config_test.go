package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "knowledge_base", cfg.BaseDir)
	assert.Equal(t, "kb_extraction.log", cfg.LogFile)
	assert.True(t, cfg.SavePDF)
	assert.True(t, cfg.SaveText)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("domain: acme\napi_key: secret\nbase_dir: out\nsave_pdf: false\nrequest_timeout: 5s\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "acme", cfg.Domain)
	assert.Equal(t, "out", cfg.BaseDir)
	assert.False(t, cfg.SavePDF)
	assert.True(t, cfg.SaveHTML) // untouched default survives
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestResolveAPIKeyEnvFallback(t *testing.T) {
	t.Setenv("FRESHKB_API_KEY", "from-env")
	cfg := Default()
	assert.Equal(t, "from-env", cfg.ResolveAPIKey())

	cfg.APIKey = "explicit"
	assert.Equal(t, "explicit", cfg.ResolveAPIKey())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Validate())

	cfg.Domain = "acme"
	t.Setenv("FRESHKB_API_KEY", "")
	assert.Error(t, cfg.Validate())

	cfg.APIKey = "k"
	assert.NoError(t, cfg.Validate())
}

func TestTimeoutBadInput(t *testing.T) {
	cfg := Default()
	cfg.RequestTimeout = "not-a-duration"
	assert.Equal(t, 30*time.Second, cfg.Timeout())
}
