package blob

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	appcfg "github.com/fdg312/nutridesk/internal/config"
)

func completeBucket() appcfg.S3Config {
	return appcfg.S3Config{
		Endpoint:        "http://minio:9000",
		Bucket:          "nutridesk-exports",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
	}
}

func TestNewExportsStoreLocal(t *testing.T) {
	var buf bytes.Buffer

	store, mode, err := NewExportsStore(appcfg.BlobConfig{Mode: appcfg.BlobModeLocal}, log.New(&buf, "", 0))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mode != appcfg.BlobModeLocal {
		t.Fatalf("expected mode=local, got %s", mode)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("expected MemoryStore, got %T", store)
	}
	if !strings.Contains(buf.String(), "exports mode=local") {
		t.Fatalf("expected local mode log, got: %s", buf.String())
	}
}

func TestNewExportsStoreExportsModeOverridesBlobMode(t *testing.T) {
	// BLOB_MODE=s3 with no bucket would fail; EXPORTS_MODE=local wins.
	store, mode, err := NewExportsStore(appcfg.BlobConfig{
		Mode:           appcfg.BlobModeS3,
		ExportsMode:    appcfg.BlobModeLocal,
		ExportsModeSet: true,
	}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mode != appcfg.BlobModeLocal {
		t.Fatalf("expected mode=local, got %s", mode)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("expected MemoryStore, got %T", store)
	}
}

func TestNewExportsStoreAutoFallsBackToLocal(t *testing.T) {
	var buf bytes.Buffer

	store, mode, err := NewExportsStore(appcfg.BlobConfig{Mode: appcfg.BlobModeAuto}, log.New(&buf, "", 0))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mode != appcfg.BlobModeLocal {
		t.Fatalf("expected mode=local fallback, got %s", mode)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("expected MemoryStore on auto fallback, got %T", store)
	}

	logOut := buf.String()
	if !strings.Contains(logOut, "code=s3_not_configured") {
		t.Fatalf("expected s3_not_configured diagnostics, got: %s", logOut)
	}
	if !strings.Contains(logOut, "exports mode=local (auto") {
		t.Fatalf("expected auto fallback log, got: %s", logOut)
	}
}

func TestNewExportsStoreAutoUsesCompleteBucket(t *testing.T) {
	store, mode, err := NewExportsStore(appcfg.BlobConfig{Mode: appcfg.BlobModeAuto, S3: completeBucket()}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mode != appcfg.BlobModeS3 {
		t.Fatalf("expected mode=s3, got %s", mode)
	}
	if _, ok := store.(*S3Store); !ok {
		t.Fatalf("expected S3Store, got %T", store)
	}
}

func TestNewExportsStoreS3Incomplete(t *testing.T) {
	var buf bytes.Buffer

	store, mode, err := NewExportsStore(appcfg.BlobConfig{
		Mode:           appcfg.BlobModeLocal,
		ExportsMode:    appcfg.BlobModeS3,
		ExportsModeSet: true,
		S3:             appcfg.S3Config{Endpoint: "http://minio:9000"},
	}, log.New(&buf, "", 0))
	if !errors.Is(err, ErrS3NotConfigured) {
		t.Fatalf("expected ErrS3NotConfigured, got %v", err)
	}
	if store != nil || mode != "" {
		t.Fatalf("expected nil store and empty mode on error, got store=%v mode=%q", store, mode)
	}
	if !strings.Contains(err.Error(), "S3_BUCKET") {
		t.Fatalf("expected missing env names in error, got: %v", err)
	}
	if !strings.Contains(buf.String(), "code=s3_partial_config") {
		t.Fatalf("expected partial config diagnostics, got: %s", buf.String())
	}
}

func TestNewExportsStoreUnsupportedMode(t *testing.T) {
	_, _, err := NewExportsStore(appcfg.BlobConfig{Mode: "ftp"}, nil)
	if err == nil || !strings.Contains(err.Error(), "unsupported exports mode") {
		t.Fatalf("expected unsupported mode error, got %v", err)
	}
}
