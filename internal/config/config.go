package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	UserStoreMongo    = "mongo"
	UserStorePostgres = "postgres"

	ImageStoreMinio = "minio"
	ImageStoreS3    = "s3"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port string
	Env  string

	SecretKey       string
	CookieSecretKey string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	CookieTTL       time.Duration
	BcryptCost      int
	CORSOrigins     []string

	UserStore           string
	MongoURI            string
	MongoDB             string
	MongoConnectTimeout time.Duration
	PostgresDSN         string

	ImageStore         string
	ImagePublicBaseURL string
	MinioEndpoint      string
	MinioAccessKey     string
	MinioSecretKey     string
	MinioBucket        string
	MinioUseSSL        bool
	S3Region           string
	S3Endpoint         string
	S3AccessKey        string
	S3SecretKey        string
	S3Bucket           string

	RedisAddr          string
	RedisPassword      string
	RateLimitPerMinute int
	MaxUploadBytes     int64
}

func Load() *Config {
	return &Config{
		Port:                getenv("PORT", "8080"),
		Env:                 getenv("APP_ENV", EnvDevelopment),
		SecretKey:           getenv("SECRET_KEY", ""),
		CookieSecretKey:     getenv("COOKIE_SECRET_KEY", ""),
		AccessTokenTTL:      getduration("ACCESS_TOKEN_TTL", 24*time.Hour),
		RefreshTokenTTL:     getduration("REFRESH_TOKEN_TTL", 90*24*time.Hour),
		CookieTTL:           getduration("COOKIE_TTL", 24*time.Hour),
		BcryptCost:          getint("BCRYPT_COST", 10),
		CORSOrigins:         splitList(getenv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		UserStore:           getenv("USER_STORE", UserStoreMongo),
		MongoURI:            getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:             getenv("MONGO_DB", "portfolio"),
		MongoConnectTimeout: getduration("MONGO_CONNECT_TIMEOUT", 20*time.Second),
		PostgresDSN:         getenv("POSTGRES_DSN", ""),
		ImageStore:          getenv("IMAGE_STORE", ImageStoreMinio),
		ImagePublicBaseURL:  getenv("IMAGE_PUBLIC_BASE_URL", "http://localhost:9000"),
		MinioEndpoint:       getenv("MINIO_ENDPOINT", "minio:9000"),
		MinioAccessKey:      getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:      getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:         getenv("MINIO_BUCKET", "portfolio-images"),
		MinioUseSSL:         getenv("MINIO_USE_SSL", "false") == "true",
		S3Region:            getenv("S3_REGION", "us-east-1"),
		S3Endpoint:          getenv("S3_ENDPOINT", ""),
		S3AccessKey:         getenv("S3_ACCESS_KEY", ""),
		S3SecretKey:         getenv("S3_SECRET_KEY", ""),
		S3Bucket:            getenv("S3_BUCKET", "portfolio-images"),
		RedisAddr:           getenv("REDIS_ADDR", ""),
		RedisPassword:       getenv("REDIS_PASSWORD", ""),
		RateLimitPerMinute:  getint("RATE_LIMIT_PER_MINUTE", 100),
		MaxUploadBytes:      int64(getint("MAX_UPLOAD_BYTES", 1<<20)),
	}
}

// IsProduction reports whether cookies and error bodies should use their
// production settings.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Validate checks the settings that cannot be defaulted safely.
func (c *Config) Validate() error {
	var errs []error
	if c.IsProduction() {
		if c.SecretKey == "" {
			errs = append(errs, errors.New("SECRET_KEY is required in production"))
		}
		if c.CookieSecretKey == "" {
			errs = append(errs, errors.New("COOKIE_SECRET_KEY is required in production"))
		}
	}
	switch c.UserStore {
	case UserStoreMongo:
	case UserStorePostgres:
		if c.PostgresDSN == "" {
			errs = append(errs, errors.New("POSTGRES_DSN is required for the postgres user store"))
		}
	default:
		errs = append(errs, errors.New("USER_STORE must be mongo or postgres"))
	}
	switch c.ImageStore {
	case ImageStoreMinio, ImageStoreS3:
	default:
		errs = append(errs, errors.New("IMAGE_STORE must be minio or s3"))
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}
	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getduration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
