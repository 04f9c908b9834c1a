package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

const (
	BlobModeLocal = "local"
	BlobModeS3    = "s3"
	BlobModeAuto  = "auto"
)

// S3Config describes the bucket that holds rendered exports. Region falls
// back to us-east-1 in the blob store. PublicBaseURL is only needed when
// downloads prefer public links over presigned ones.
type S3Config struct {
	Endpoint          string
	Region            string
	Bucket            string
	AccessKeyID       string
	SecretAccessKey   string
	PublicBaseURL     string
	PresignTTLSeconds int
	PreferPublicURL   bool
}

// MissingRequired lists the env names that must still be set before the
// exports bucket can be used.
func (c S3Config) MissingRequired() []string {
	missing := make([]string, 0, 5)
	if strings.TrimSpace(c.Endpoint) == "" {
		missing = append(missing, "S3_ENDPOINT")
	}
	if strings.TrimSpace(c.Bucket) == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if strings.TrimSpace(c.AccessKeyID) == "" {
		missing = append(missing, "S3_ACCESS_KEY_ID")
	}
	if strings.TrimSpace(c.SecretAccessKey) == "" {
		missing = append(missing, "S3_SECRET_ACCESS_KEY")
	}
	if c.PreferPublicURL && strings.TrimSpace(c.PublicBaseURL) == "" {
		missing = append(missing, "S3_PUBLIC_BASE_URL")
	}
	return missing
}

func (c S3Config) IsConfigured() bool {
	return len(c.MissingRequired()) == 0
}

func (c S3Config) Diagnostics() (level string, code string, msg string) {
	allEmpty := strings.TrimSpace(c.Endpoint) == "" &&
		strings.TrimSpace(c.Region) == "" &&
		strings.TrimSpace(c.Bucket) == "" &&
		strings.TrimSpace(c.AccessKeyID) == "" &&
		strings.TrimSpace(c.SecretAccessKey) == "" &&
		strings.TrimSpace(c.PublicBaseURL) == ""

	if allEmpty {
		return "INFO", "s3_not_configured", "not configured (all empty)"
	}

	missing := c.MissingRequired()
	if len(missing) > 0 {
		return "WARN", "s3_partial_config", fmt.Sprintf("partial config, missing=%v", missing)
	}

	return "INFO", "s3_ready", "ready"
}

// DiagnosticsSummary returns a detailed summary for logging (no secrets)
func (c S3Config) DiagnosticsSummary() string {
	accessKeyStatus := "not set"
	if strings.TrimSpace(c.AccessKeyID) != "" {
		accessKeyStatus = "set"
	}
	secretKeyStatus := "not set"
	if strings.TrimSpace(c.SecretAccessKey) != "" {
		secretKeyStatus = "set"
	}

	return fmt.Sprintf("endpoint=%s region=%s bucket=%s public_base_url=%s presign_ttl=%ds prefer_public_url=%t access_key_id=%s secret_access_key=%s",
		nonEmptyOrDash(c.Endpoint),
		nonEmptyOrDash(c.Region),
		nonEmptyOrDash(c.Bucket),
		nonEmptyOrDash(c.PublicBaseURL),
		c.PresignTTLSeconds,
		c.PreferPublicURL,
		accessKeyStatus,
		secretKeyStatus,
	)
}

func nonEmptyOrDash(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "-"
	}
	return v
}

type BlobConfig struct {
	Mode           string // local|s3|auto
	ExportsMode    string // local|s3|auto (override)
	ExportsModeSet bool
	S3             S3Config
}

// EffectiveExportsMode is EXPORTS_MODE when set, else BLOB_MODE.
func (c BlobConfig) EffectiveExportsMode() string {
	if c.ExportsModeSet {
		return c.ExportsMode
	}
	return c.Mode
}

// ValidateExports fails when exports are pinned to S3 but the bucket
// settings are incomplete. Local and auto modes always pass.
func (c BlobConfig) ValidateExports() error {
	if c.EffectiveExportsMode() != BlobModeS3 {
		return nil
	}
	if missing := c.S3.MissingRequired(); len(missing) > 0 {
		return fmt.Errorf("exports mode is 's3' but S3 config is incomplete, missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

const (
	AuthModeNone = "none"
	AuthModeDev  = "dev"
	AuthModeJWT  = "jwt"
)

// Config holds the application configuration.
type Config struct {
	Env      string // local | staging | prod
	Port     int
	LogLevel string

	// Database
	DatabaseURL       string // runtime connection (resolved: pooled > url > direct)
	DatabaseURLRaw    string // DATABASE_URL as provided
	DatabaseURLPooled string // DATABASE_URL_POOLED as provided
	DatabaseURLDirect string // for migrations / DDL (may be empty)

	// Redis day cache (empty = singleflight only)
	RedisURL           string
	DayCacheTTLSeconds int

	// CORS
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// Rate Limiting
	RateLimitRPS   int
	RateLimitBurst int

	Blob BlobConfig

	// Limits
	JournalMaxRangeDays   int
	ExportsMaxRangeDays   int
	CatalogSearchMaxLimit int
	MenuMaxItemsPerSlot   int
	DayMaxEntries         int

	// Authentication & Authorization
	AuthMode      string // none | dev | jwt
	AuthRequired  bool
	JWTSecret     string
	JWTIssuer     string
	JWTTTLMinutes int

	RunMigrationsOnStartup bool
	MigrationsDir          string // empty: migrations compiled into the binary
}

func Load() *Config {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = os.Getenv("ENV")
	}
	if env == "" {
		env = "local"
	}

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "debug"
	}

	dbPooled := strings.TrimSpace(os.Getenv("DATABASE_URL_POOLED"))
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	dbDirect := strings.TrimSpace(os.Getenv("DATABASE_URL_DIRECT"))

	runtimeDB := dbPooled
	if runtimeDB == "" {
		runtimeDB = dbURL
	}
	if runtimeDB == "" {
		runtimeDB = dbDirect
	}

	// DAY_CACHE_TTL_SECONDS (default: 60, enforce > 0)
	dayCacheTTL := envInt("DAY_CACHE_TTL_SECONDS", 60)
	if dayCacheTTL <= 0 {
		dayCacheTTL = 60
	}

	blobMode := parseBlobMode("BLOB_MODE", BlobModeLocal)
	exportsModeRaw := strings.ToLower(strings.TrimSpace(os.Getenv("EXPORTS_MODE")))
	exportsModeSet := exportsModeRaw != ""
	exportsMode := exportsModeRaw
	if exportsMode == "" {
		exportsMode = BlobModeLocal
	}
	if exportsMode != BlobModeLocal && exportsMode != BlobModeS3 && exportsMode != BlobModeAuto {
		log.Printf("WARNING: unknown EXPORTS_MODE=%q, fallback to %s", exportsMode, BlobModeLocal)
		exportsMode = BlobModeLocal
	}

	// S3_PRESIGN_TTL_SECONDS (default: 900, enforce > 0)
	s3PresignTTL := envInt("S3_PRESIGN_TTL_SECONDS", 900)
	if s3PresignTTL <= 0 {
		s3PresignTTL = 900
	}

	s3Cfg := S3Config{
		Endpoint:          strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
		Region:            strings.TrimSpace(os.Getenv("S3_REGION")),
		Bucket:            strings.TrimSpace(os.Getenv("S3_BUCKET")),
		AccessKeyID:       strings.TrimSpace(os.Getenv("S3_ACCESS_KEY_ID")),
		SecretAccessKey:   strings.TrimSpace(os.Getenv("S3_SECRET_ACCESS_KEY")),
		PublicBaseURL:     strings.TrimSpace(os.Getenv("S3_PUBLIC_BASE_URL")),
		PresignTTLSeconds: s3PresignTTL,
		PreferPublicURL:   parseBoolEnv("S3_PREFER_PUBLIC_URL"),
	}

	// AUTH_MODE (default: none)
	authMode := strings.ToLower(strings.TrimSpace(os.Getenv("AUTH_MODE")))
	if authMode == "" {
		authMode = AuthModeNone
	}
	if authMode != AuthModeNone && authMode != AuthModeDev && authMode != AuthModeJWT {
		log.Printf("WARNING: unknown AUTH_MODE=%q, fallback to none", authMode)
		authMode = AuthModeNone
	}
	authRequired := authMode != AuthModeNone && parseBoolEnv("AUTH_REQUIRED")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "change_me"
	}
	if jwtSecret == "change_me" && env != "local" {
		log.Println("WARNING: JWT_SECRET is set to 'change_me' in non-local environment!")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "nutridesk"
	}

	return &Config{
		Env:      env,
		Port:     port,
		LogLevel: logLevel,

		DatabaseURL:       runtimeDB,
		DatabaseURLRaw:    dbURL,
		DatabaseURLPooled: dbPooled,
		DatabaseURLDirect: dbDirect,

		RedisURL:           strings.TrimSpace(os.Getenv("REDIS_URL")),
		DayCacheTTLSeconds: dayCacheTTL,

		CORSAllowedOrigins:   parseCORSOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"), env),
		CORSAllowCredentials: os.Getenv("CORS_ALLOW_CREDENTIALS") == "1",

		RateLimitRPS:   envInt("RATE_LIMIT_RPS", 0),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 0),

		Blob: BlobConfig{
			Mode:           blobMode,
			ExportsMode:    exportsMode,
			ExportsModeSet: exportsModeSet,
			S3:             s3Cfg,
		},

		JournalMaxRangeDays:   envInt("JOURNAL_MAX_RANGE_DAYS", 31),
		ExportsMaxRangeDays:   envInt("EXPORTS_MAX_RANGE_DAYS", 90),
		CatalogSearchMaxLimit: envInt("CATALOG_SEARCH_MAX_LIMIT", 50),
		MenuMaxItemsPerSlot:   envInt("MENU_MAX_ITEMS_PER_SLOT", 30),
		DayMaxEntries:         envInt("DAY_MAX_ENTRIES", 200),

		AuthMode:      authMode,
		AuthRequired:  authRequired,
		JWTSecret:     jwtSecret,
		JWTIssuer:     jwtIssuer,
		JWTTTLMinutes: envInt("JWT_TTL_MINUTES", 10080),

		RunMigrationsOnStartup: parseBoolEnv("RUN_MIGRATIONS_ON_STARTUP"),
		MigrationsDir:          strings.TrimSpace(os.Getenv("MIGRATIONS_DIR")),
	}
}

// parseCORSOrigins parses CORS_ALLOWED_ORIGINS env var.
// In local mode, defaults to localhost origins if empty.
func parseCORSOrigins(raw, env string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if env == "local" {
			return []string{"http://localhost:3000", "http://localhost:5173"}
		}
		return nil // prod: deny by default
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

func parseBlobMode(key string, defaultVal string) string {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if mode == "" {
		return defaultVal
	}
	switch mode {
	case BlobModeLocal, BlobModeS3, BlobModeAuto:
		return mode
	default:
		log.Printf("WARNING: unknown %s=%q, fallback to %s", key, mode, defaultVal)
		return defaultVal
	}
}

// envInt reads an int env var with a default value.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

func parseBoolEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}
