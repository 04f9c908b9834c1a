package blob

import (
	"errors"
	"fmt"
	"strings"

	appcfg "github.com/fdg312/nutridesk/internal/config"
)

// ErrS3NotConfigured is returned when exports are pinned to S3 without a
// complete bucket configuration.
var ErrS3NotConfigured = errors.New("s3 exports storage not configured")

type Logger interface {
	Printf(format string, v ...any)
}

// NewExportsStore builds the store for rendered exports from the effective
// exports mode (EXPORTS_MODE, else BLOB_MODE) and returns the mode in use.
//
//	local  in-process MemoryStore, the API streams downloads
//	auto   S3 when the bucket is fully configured, else local
//	s3     S3, or ErrS3NotConfigured naming the missing env vars
func NewExportsStore(cfg appcfg.BlobConfig, logger Logger) (Store, string, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.EffectiveExportsMode()))
	if mode == "" {
		mode = appcfg.BlobModeLocal
	}

	switch mode {
	case appcfg.BlobModeLocal:
		logf(logger, "INFO blob: exports mode=local (in memory)")
		return NewMemoryStore(), appcfg.BlobModeLocal, nil

	case appcfg.BlobModeAuto, appcfg.BlobModeS3:
		store, err := s3FromConfig(cfg.S3, logger)
		if err == nil {
			logf(logger, "INFO blob: exports mode=s3 bucket=%s (requested %s)", cfg.S3.Bucket, mode)
			return store, appcfg.BlobModeS3, nil
		}
		if mode == appcfg.BlobModeS3 {
			logf(logger, "FATAL blob.s3: %v", err)
			return nil, "", err
		}
		logf(logger, "INFO blob: exports mode=local (auto, %v)", err)
		return NewMemoryStore(), appcfg.BlobModeLocal, nil

	default:
		return nil, "", fmt.Errorf("unsupported exports mode: %s", mode)
	}
}

func s3FromConfig(c appcfg.S3Config, logger Logger) (*S3Store, error) {
	if missing := c.MissingRequired(); len(missing) > 0 {
		level, code, msg := c.Diagnostics()
		logf(logger, "%s blob.s3: code=%s %s", level, code, msg)
		return nil, fmt.Errorf("%w: missing %s", ErrS3NotConfigured, strings.Join(missing, ", "))
	}

	logf(logger, "INFO blob.s3: code=s3_ready %s", c.DiagnosticsSummary())
	store, err := NewS3Store(c.Endpoint, c.Region, c.Bucket, c.AccessKeyID, c.SecretAccessKey)
	if err != nil {
		return nil, fmt.Errorf("s3 init failed: %w", err)
	}
	return store, nil
}

func logf(logger Logger, format string, v ...any) {
	if logger == nil {
		return
	}
	logger.Printf(format, v...)
}
