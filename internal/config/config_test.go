package config

import (
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "ENV", "PORT", "AUTH_MODE", "REDIS_URL", "DAY_CACHE_TTL_SECONDS", "EXPORTS_MODE", "BLOB_MODE", "CORS_ALLOWED_ORIGINS", "JOURNAL_MAX_RANGE_DAYS", "EXPORTS_MAX_RANGE_DAYS"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.Env != "local" || cfg.Port != 8080 {
		t.Fatalf("expected local:8080, got %s:%d", cfg.Env, cfg.Port)
	}
	if cfg.AuthMode != AuthModeNone || cfg.AuthRequired {
		t.Fatalf("expected auth none/not required, got %s/%t", cfg.AuthMode, cfg.AuthRequired)
	}
	if cfg.DayCacheTTLSeconds != 60 {
		t.Fatalf("expected day cache ttl 60, got %d", cfg.DayCacheTTLSeconds)
	}
	if cfg.JournalMaxRangeDays != 31 || cfg.ExportsMaxRangeDays != 90 {
		t.Fatalf("unexpected range limits: journal=%d exports=%d", cfg.JournalMaxRangeDays, cfg.ExportsMaxRangeDays)
	}
	if cfg.Blob.EffectiveExportsMode() != BlobModeLocal {
		t.Fatalf("expected local exports mode, got %s", cfg.Blob.EffectiveExportsMode())
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		t.Fatal("expected localhost CORS defaults in local env")
	}
}

func TestLoadAuthAndCache(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("AUTH_MODE", "JWT")
	t.Setenv("AUTH_REQUIRED", "true")
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("REDIS_URL", " redis://localhost:6379/0 ")
	t.Setenv("DAY_CACHE_TTL_SECONDS", "-5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg := Load()
	if cfg.AuthMode != AuthModeJWT || !cfg.AuthRequired {
		t.Fatalf("expected jwt/required, got %s/%t", cfg.AuthMode, cfg.AuthRequired)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Fatalf("expected trimmed redis url, got %q", cfg.RedisURL)
	}
	if cfg.DayCacheTTLSeconds != 60 {
		t.Fatalf("expected ttl fallback to 60, got %d", cfg.DayCacheTTLSeconds)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, want) {
		t.Fatalf("expected %v, got %v", want, cfg.CORSAllowedOrigins)
	}
}

func TestLoadUnknownAuthModeFallsBack(t *testing.T) {
	t.Setenv("AUTH_MODE", "siwa")
	t.Setenv("AUTH_REQUIRED", "1")

	cfg := Load()
	if cfg.AuthMode != AuthModeNone {
		t.Fatalf("expected fallback to none, got %s", cfg.AuthMode)
	}
	if cfg.AuthRequired {
		t.Fatal("auth cannot be required when mode is none")
	}
}

func TestExportsModeOverride(t *testing.T) {
	t.Setenv("BLOB_MODE", "s3")
	t.Setenv("EXPORTS_MODE", "local")

	cfg := Load()
	if cfg.Blob.Mode != BlobModeS3 {
		t.Fatalf("expected blob mode s3, got %s", cfg.Blob.Mode)
	}
	if cfg.Blob.EffectiveExportsMode() != BlobModeLocal {
		t.Fatalf("expected exports override local, got %s", cfg.Blob.EffectiveExportsMode())
	}
}
