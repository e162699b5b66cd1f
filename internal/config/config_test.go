package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c := Load()
	require.NotNil(t, c)

	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, EnvDevelopment, c.Env)
	assert.False(t, c.IsProduction())
	assert.Equal(t, 24*time.Hour, c.AccessTokenTTL)
	assert.Equal(t, 90*24*time.Hour, c.RefreshTokenTTL)
	assert.Equal(t, 24*time.Hour, c.CookieTTL)
	assert.Equal(t, 10, c.BcryptCost)
	assert.Equal(t, UserStoreMongo, c.UserStore)
	assert.Equal(t, ImageStoreMinio, c.ImageStore)
	assert.Equal(t, 20*time.Second, c.MongoConnectTimeout)
	assert.Equal(t, 100, c.RateLimitPerMinute)
	assert.Equal(t, int64(1<<20), c.MaxUploadBytes)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, c.CORSOrigins)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("REFRESH_TOKEN_TTL", "720h")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")

	c := Load()

	assert.True(t, c.IsProduction())
	assert.Equal(t, 15*time.Minute, c.AccessTokenTTL)
	assert.Equal(t, 720*time.Hour, c.RefreshTokenTTL)
	assert.Equal(t, 12, c.BcryptCost)
	assert.True(t, c.MinioUseSSL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSOrigins)
}

func TestLoad_BadNumbersFallBack(t *testing.T) {
	t.Setenv("BCRYPT_COST", "ten")
	t.Setenv("COOKIE_TTL", "one day")

	c := Load()

	assert.Equal(t, 10, c.BcryptCost)
	assert.Equal(t, 24*time.Hour, c.CookieTTL)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		c := Load()
		c.SecretKey = "s"
		c.CookieSecretKey = "c"
		return c
	}

	require.NoError(t, base().Validate())

	c := base()
	c.Env = EnvProduction
	c.SecretKey = ""
	assert.ErrorContains(t, c.Validate(), "SECRET_KEY")

	c = base()
	c.UserStore = UserStorePostgres
	assert.ErrorContains(t, c.Validate(), "POSTGRES_DSN")

	c = base()
	c.ImageStore = "cloudinary"
	assert.ErrorContains(t, c.Validate(), "IMAGE_STORE")

	c = base()
	c.AccessTokenTTL = 0
	assert.ErrorContains(t, c.Validate(), "TTL")
}
