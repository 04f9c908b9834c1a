package main

import (
	"fmt"
	"log"
	"strings"

	_ "github.com/joho/godotenv/autoload"

	"github.com/fdg312/nutridesk/internal/config"
	"github.com/fdg312/nutridesk/internal/dbmigrate"
	"github.com/fdg312/nutridesk/internal/httpserver"
)

func main() {
	cfg := config.Load()

	printStartupBanner(cfg)

	if cfg.RunMigrationsOnStartup {
		target, err := dbmigrate.SelectTarget(cfg, true)
		if err != nil {
			log.Fatalf("FATAL startup migrations: %v", err)
		}

		log.Printf("startup migrations: command=up using=%s migrations=%s", target.Source, dbmigrate.DescribeDir(cfg.MigrationsDir))
		if err := dbmigrate.Run("up", target.URL, cfg.MigrationsDir); err != nil {
			log.Fatalf("FATAL startup migrations failed: %v", err)
		}
		log.Printf("startup migrations: completed")
	}

	validateProductionConfig(cfg)

	server := httpserver.New(cfg)
	defer server.Close()

	log.Fatal(server.Start())
}

// printStartupBanner logs the resolved configuration once. Secrets are only
// reported as set or not set.
func printStartupBanner(cfg *config.Config) {
	log.Println("========== NutriDesk API ==========")
	log.Printf("  env              = %s", cfg.Env)
	log.Printf("  port             = %d", cfg.Port)

	log.Println("---- database ----")
	log.Printf("  runtime_url      = %s", describeDBURL(cfg.DatabaseURL, cfg.DatabaseURLPooled))
	log.Printf("  pooled           = %s", setOrNot(cfg.DatabaseURLPooled))
	log.Printf("  direct           = %s", setOrNot(cfg.DatabaseURLDirect))
	log.Printf("  migrations_on_startup = %t", cfg.RunMigrationsOnStartup)
	if cfg.RunMigrationsOnStartup {
		if cfg.DatabaseURLDirect != "" {
			log.Printf("  migrations_via   = DATABASE_URL_DIRECT")
		} else {
			log.Printf("  migrations_via   = (will fail, DATABASE_URL_DIRECT not set)")
		}
	}

	log.Println("---- day cache ----")
	log.Printf("  redis_url        = %s", setOrNot(cfg.RedisURL))
	log.Printf("  ttl_seconds      = %d", cfg.DayCacheTTLSeconds)

	log.Println("---- auth ----")
	log.Printf("  auth_mode        = %s", cfg.AuthMode)
	log.Printf("  auth_required    = %t", cfg.AuthRequired)
	log.Printf("  jwt_secret       = %s", secretStatus(cfg.JWTSecret, "change_me"))
	log.Printf("  jwt_issuer       = %s", nonEmptyOrDash(cfg.JWTIssuer))

	log.Println("---- blob ----")
	log.Printf("  blob_mode        = %s", cfg.Blob.Mode)
	log.Printf("  exports_mode     = %s (effective=%s)", displayExportsMode(cfg), cfg.Blob.EffectiveExportsMode())
	if cfg.Blob.EffectiveExportsMode() != config.BlobModeLocal {
		log.Printf("  s3: %s", cfg.Blob.S3.DiagnosticsSummary())
	}

	log.Println("---- limits ----")
	log.Printf("  journal_max_range_days  = %d", cfg.JournalMaxRangeDays)
	log.Printf("  exports_max_range_days  = %d", cfg.ExportsMaxRangeDays)
	log.Printf("  catalog_search_max      = %d", cfg.CatalogSearchMaxLimit)
	log.Printf("  menu_max_items_per_slot = %d", cfg.MenuMaxItemsPerSlot)
	log.Printf("  day_max_entries         = %d", cfg.DayMaxEntries)
	log.Printf("  rate_limit              = %d rps, burst %d", cfg.RateLimitRPS, cfg.RateLimitBurst)

	log.Println("===================================")
}

// validateProductionConfig performs fatal checks that only matter outside
// local development.
func validateProductionConfig(cfg *config.Config) {
	isProd := cfg.Env == "production" || cfg.Env == "prod" || cfg.Env == "staging"

	if err := cfg.Blob.ValidateExports(); err != nil {
		log.Fatalf("FATAL blob: %v", err)
	}

	if isProd && cfg.AuthMode != config.AuthModeJWT {
		log.Fatalf("FATAL auth: AUTH_MODE must be 'jwt' in %s (got %q)", cfg.Env, cfg.AuthMode)
	}

	if isProd && cfg.AuthRequired && cfg.JWTSecret == "change_me" {
		log.Fatalf("FATAL auth: JWT_SECRET must not be 'change_me' in %s with AUTH_REQUIRED=1", cfg.Env)
	}

	if isProd && cfg.DatabaseURL == "" {
		log.Fatalf("FATAL db: no DATABASE_URL configured in %s", cfg.Env)
	}
}

func setOrNot(v string) string {
	if strings.TrimSpace(v) == "" {
		return "not set"
	}
	return "set"
}

func nonEmptyOrDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func secretStatus(v, insecureDefault string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "not set"
	}
	if v == insecureDefault {
		return fmt.Sprintf("set (DEFAULT, insecure '%s')", insecureDefault)
	}
	return "set (custom)"
}

func describeDBURL(runtime, pooled string) string {
	if runtime == "" {
		return "not set (will use in-memory storage)"
	}
	if pooled != "" && runtime == pooled {
		return "set (via DATABASE_URL_POOLED)"
	}
	return "set"
}

func displayExportsMode(cfg *config.Config) string {
	if cfg.Blob.ExportsModeSet {
		return cfg.Blob.ExportsMode
	}
	return fmt.Sprintf("(inherits BLOB_MODE=%s)", cfg.Blob.Mode)
}
