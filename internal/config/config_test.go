package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultMaxResults, cfg.MaxResults)
	assert.Equal(t, DefaultMinSimilarity, cfg.MinSimilarity)
	assert.True(t, cfg.Local.Enabled)
	assert.False(t, cfg.Remote.Enabled)
	assert.False(t, cfg.OpenTran.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tmatch.toml")
	content := `
max_results = 3
target_lang = "fr"

[remote]
enabled = true
host = "tm.example.org"
port = 8080
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxResults)
	assert.Equal(t, "fr", cfg.TargetLang)
	assert.True(t, cfg.Remote.Enabled)
	assert.Equal(t, "tm.example.org", cfg.Remote.Host)
	assert.Equal(t, 8080, cfg.Remote.Port)

	// Omitted fields keep defaults
	assert.Equal(t, DefaultMinSimilarity, cfg.MinSimilarity)
	assert.True(t, cfg.Local.Enabled)
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tmatch.toml")
	require.NoError(t, os.WriteFile(path, []byte("min_similarity = 150\n"), 0644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tmatch.toml")
	content := `
target_lang = "fr"

[remote]
enabled = true
host = "tm.example.org"
port = 8080
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv("TMATCH_TARGET_LANG", "de")
	t.Setenv("TMATCH_REMOTE_HOST", "tm2.example.org")
	t.Setenv("TMATCH_REMOTE_PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "de", cfg.TargetLang)
	assert.Equal(t, "tm2.example.org", cfg.Remote.Host)
	assert.Equal(t, 9090, cfg.Remote.Port)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tmatch.toml")

	cfg := Default()
	cfg.TargetLang = "pt_BR"
	cfg.OpenTran.Enabled = true
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
