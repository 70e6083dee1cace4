package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	require.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, PlatformWeb, cfg.Platform)
	assert.False(t, cfg.IsNative())
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "TimetablePrefs:subjects", cfg.Widget.RedisKey)
	assert.Equal(t, 500*time.Millisecond, cfg.Widget.RetryDelay)
	assert.Equal(t, time.Hour, cfg.Export.CacheTTL)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("PLATFORM", " Android ")
	v.Set("ALLOWED_ORIGINS", "http://localhost:5173, capacitor://localhost,")
	v.Set("EXPORT_SIGNED_URL_TTL", "not-a-duration")

	cfg := fromViper(v)
	assert.Equal(t, PlatformAndroid, cfg.Platform)
	assert.True(t, cfg.IsNative())
	assert.Equal(t, []string{"http://localhost:5173", "capacitor://localhost"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 15*time.Minute, cfg.Export.SignedURLTTL)
}

func TestNormalizePlatformUnknownFallsBackToWeb(t *testing.T) {
	assert.Equal(t, PlatformWeb, normalizePlatform("desktop"))
	assert.Equal(t, PlatformIOS, normalizePlatform("ios"))
}
