package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Algorithm names accepted by the token codec.
const (
	SigningAlgHS256 = "HS256"
	SigningAlgHS512 = "HS512"

	EncryptionAlgA256GCM = "A256GCM"
	EncryptionAlgXChaCha = "XCHACHA20POLY1305"
)

type Config struct {
	Env      string
	HTTPPort string

	DatabaseURL string

	TokenIssuer        string
	TokenSigningKey    string
	TokenEncryptionKey string
	TokenSigningAlg    string
	TokenEncryptionAlg string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration

	OTPIssuer   string
	OTPNonceTTL time.Duration

	LockoutThreshold     int
	LockoutDuration      time.Duration
	LoginNotifyThreshold int

	BootstrapAdminUsername string

	AuthRateLimitPerMin int
	APIRateLimitPerMin  int

	RateLimitRedisEnabled bool
	RateLimitRedisPrefix  string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int

	CORSAllowedOrigins []string

	ReadinessProbeTimeout  time.Duration
	ServerStartGracePeriod time.Duration

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsExportInterval time.Duration
	OTELTraceSamplingRatio    float64
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool
	OTELLogLevel              string
}

func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")

	cfg := &Config{
		Env:         env,
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		TokenIssuer:        getEnv("TOKEN_ISSUER", "brightclass-backoffice"),
		TokenSigningKey:    os.Getenv("TOKEN_SIGNING_KEY"),
		TokenEncryptionKey: os.Getenv("TOKEN_ENCRYPTION_KEY"),
		TokenSigningAlg:    strings.ToUpper(getEnv("TOKEN_SIGNING_ALG", SigningAlgHS256)),
		TokenEncryptionAlg: strings.ToUpper(getEnv("TOKEN_ENCRYPTION_ALG", EncryptionAlgA256GCM)),

		OTPIssuer: getEnv("OTP_ISSUER", "BrightClass"),

		LockoutThreshold:     getEnvInt("LOCKOUT_THRESHOLD", 5),
		LoginNotifyThreshold: getEnvInt("LOGIN_NOTIFY_THRESHOLD", 3),

		BootstrapAdminUsername: strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_USERNAME")),

		AuthRateLimitPerMin: getEnvInt("AUTH_RATE_LIMIT_PER_MIN", 30),
		APIRateLimitPerMin:  getEnvInt("API_RATE_LIMIT_PER_MIN", 120),

		RateLimitRedisEnabled: getEnvBool("RATE_LIMIT_REDIS_ENABLED", false),
		RateLimitRedisPrefix:  getEnv("RATE_LIMIT_REDIS_PREFIX", "backoffice:rl"),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               getEnvInt("REDIS_DB", 0),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "brightclass-backoffice"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", env),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELTraceSamplingRatio:   getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", true),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", true),
		OTELLogsEnabled:          getEnvBool("OTEL_LOGS_ENABLED", true),
		OTELLogLevel:             strings.ToLower(getEnv("OTEL_LOG_LEVEL", "info")),
	}

	var err error
	if cfg.AccessTokenTTL, err = parseDurationEnv("ACCESS_TOKEN_TTL", "30m"); err != nil {
		return nil, err
	}
	if cfg.RefreshTokenTTL, err = parseDurationEnv("REFRESH_TOKEN_TTL", "168h"); err != nil {
		return nil, err
	}
	if cfg.OTPNonceTTL, err = parseDurationEnv("OTP_NONCE_TTL", "5m"); err != nil {
		return nil, err
	}
	if cfg.LockoutDuration, err = parseDurationEnv("LOCKOUT_DURATION", "15m"); err != nil {
		return nil, err
	}
	if cfg.ReadinessProbeTimeout, err = parseDurationEnv("READINESS_PROBE_TIMEOUT", "2s"); err != nil {
		return nil, err
	}
	if cfg.ServerStartGracePeriod, err = parseDurationEnv("SERVER_START_GRACE_PERIOD", "10s"); err != nil {
		return nil, err
	}
	if cfg.OTELMetricsExportInterval, err = parseDurationEnv("OTEL_METRICS_EXPORT_INTERVAL", "10s"); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if len(c.TokenSigningKey) < 32 {
		errs = append(errs, "TOKEN_SIGNING_KEY must be at least 32 bytes")
	}
	if len(c.TokenEncryptionKey) != 32 {
		errs = append(errs, "TOKEN_ENCRYPTION_KEY must be exactly 32 bytes")
	}
	if c.TokenSigningKey != "" && c.TokenSigningKey == c.TokenEncryptionKey {
		errs = append(errs, "TOKEN_SIGNING_KEY and TOKEN_ENCRYPTION_KEY must differ")
	}
	if isPlaceholderSecret(c.TokenSigningKey) {
		errs = append(errs, "TOKEN_SIGNING_KEY is a placeholder value")
	}
	if isPlaceholderSecret(c.TokenEncryptionKey) {
		errs = append(errs, "TOKEN_ENCRYPTION_KEY is a placeholder value")
	}
	switch c.TokenSigningAlg {
	case SigningAlgHS256, SigningAlgHS512:
	default:
		errs = append(errs, "TOKEN_SIGNING_ALG must be HS256 or HS512")
	}
	switch c.TokenEncryptionAlg {
	case EncryptionAlgA256GCM, EncryptionAlgXChaCha:
	default:
		errs = append(errs, "TOKEN_ENCRYPTION_ALG must be A256GCM or XCHACHA20POLY1305")
	}
	if c.AccessTokenTTL <= 0 || c.AccessTokenTTL > 12*time.Hour {
		errs = append(errs, "ACCESS_TOKEN_TTL must be between 1s and 12h")
	}
	if c.RefreshTokenTTL <= 0 || c.RefreshTokenTTL > 30*24*time.Hour {
		errs = append(errs, "REFRESH_TOKEN_TTL must be between 1s and 30d")
	}
	if c.OTPNonceTTL <= 0 || c.OTPNonceTTL > time.Hour {
		errs = append(errs, "OTP_NONCE_TTL must be between 1s and 1h")
	}
	if c.LockoutThreshold <= 0 {
		errs = append(errs, "LOCKOUT_THRESHOLD must be > 0")
	}
	if c.LockoutDuration <= 0 {
		errs = append(errs, "LOCKOUT_DURATION must be > 0")
	}
	if c.LoginNotifyThreshold <= 0 || c.LoginNotifyThreshold >= c.LockoutThreshold {
		errs = append(errs, "LOGIN_NOTIFY_THRESHOLD must be > 0 and < LOCKOUT_THRESHOLD")
	}
	if c.AuthRateLimitPerMin <= 0 {
		errs = append(errs, "AUTH_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.APIRateLimitPerMin <= 0 {
		errs = append(errs, "API_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.RateLimitRedisEnabled && c.RedisAddr == "" {
		errs = append(errs, "REDIS_ADDR is required when RATE_LIMIT_REDIS_ENABLED=true")
	}
	if (c.OTELMetricsEnabled || c.OTELTracingEnabled || c.OTELLogsEnabled) && c.OTELExporterOTLPEndpoint == "" {
		errs = append(errs, "OTEL_EXPORTER_OTLP_ENDPOINT is required when OTel is enabled")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be between 0 and 1")
	}
	if c.OTELMetricsExportInterval <= 0 {
		errs = append(errs, "OTEL_METRICS_EXPORT_INTERVAL must be > 0")
	}
	if !isValidLogLevel(c.OTELLogLevel) {
		errs = append(errs, "OTEL_LOG_LEVEL must be one of debug, info, warn, error")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func isPlaceholderSecret(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "change-me", "changeme", "placeholder", "secret", "insecure":
		return true
	default:
		return false
	}
}

func isValidLogLevel(v string) bool {
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func parseDurationEnv(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, def))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
