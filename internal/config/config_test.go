package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LISTEN_ADDR", "LOG_LEVEL", "ENV", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
		"CORS_ALLOWED_ORIGINS", "PBITDOC_AUTHOR", "PBITDOC_LETTERHEAD",
		"PBITDOC_FINGERPRINT_QR", "PBITDOC_PAGE_NUMBERS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":5001", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.InDelta(t, 5.0, cfg.RateLimitRPS, 1e-9)
	assert.Equal(t, 10, cfg.RateLimitBurst)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.PageNumbers)
	assert.False(t, cfg.FingerprintQR)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv_AllVarsSet(t *testing.T) {
	clearEnv(t)
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "4")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("PBITDOC_AUTHOR", "BI team")
	t.Setenv("PBITDOC_FINGERPRINT_QR", "yes")
	t.Setenv("PBITDOC_PAGE_NUMBERS", "off")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.InDelta(t, 2.5, cfg.RateLimitRPS, 1e-9)
	assert.Equal(t, 4, cfg.RateLimitBurst)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "BI team", cfg.Author)
	assert.True(t, cfg.FingerprintQR)
	assert.False(t, cfg.PageNumbers)
	assert.Len(t, cfg.ProcessOptions(slog.Default()), 3)
}

func TestLoadFromEnv_BadNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT_RPS", "fast")
	_, err := LoadFromEnv()
	assert.ErrorContains(t, err, "RATE_LIMIT_RPS")

	t.Setenv("RATE_LIMIT_RPS", "")
	t.Setenv("RATE_LIMIT_BURST", "many")
	_, err = LoadFromEnv()
	assert.ErrorContains(t, err, "RATE_LIMIT_BURST")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{RateLimitRPS: 1, RateLimitBurst: 1, CORSAllowedOrigins: []string{"*"}}
	}

	cfg := valid()
	cfg.RateLimitRPS = -1
	assert.ErrorContains(t, cfg.Validate(), "RATE_LIMIT_RPS")

	cfg = valid()
	cfg.RateLimitBurst = 0
	assert.ErrorContains(t, cfg.Validate(), "RATE_LIMIT_BURST")

	cfg = valid()
	cfg.Letterhead = filepath.Join(t.TempDir(), "missing.pdf")
	assert.ErrorContains(t, cfg.Validate(), "PBITDOC_LETTERHEAD")

	cfg = valid()
	cfg.Env = "production"
	assert.ErrorContains(t, cfg.Validate(), "CORS wildcard")
	cfg.CORSAllowedOrigins = []string{"https://bi.example"}
	assert.NoError(t, cfg.Validate())
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		cfg := &Config{LogLevel: in}
		assert.Equal(t, want, cfg.SlogLevel(), in)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv only fills variables that are unset, so drop the cleared ones.
	require.NoError(t, os.Unsetenv("LISTEN_ADDR"))
	require.NoError(t, os.Unsetenv("PBITDOC_AUTHOR"))
	t.Setenv("LOG_LEVEL", "error")

	path := filepath.Join(t.TempDir(), ".env")
	content := "LISTEN_ADDR=:7000\nPBITDOC_AUTHOR=\"Data Team\"\nLOG_LEVEL=debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("LISTEN_ADDR")
		os.Unsetenv("PBITDOC_AUTHOR")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.ListenAddr)
	assert.Equal(t, "Data Team", cfg.Author)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
	assert.NoError(t, LoadDotEnv(""))
}
