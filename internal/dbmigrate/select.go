package dbmigrate

import (
	"fmt"
	"slices"

	"github.com/fdg312/nutridesk/internal/config"
)

// DefaultMigrationsDir is the directory of the embedded migrations.
const DefaultMigrationsDir = "migrations"

// Commands lists the goose commands cmd/migrate accepts.
var Commands = []string{"up", "up-by-one", "down", "redo", "status", "version"}

// IsCommand reports whether command is one of Commands.
func IsCommand(command string) bool {
	return slices.Contains(Commands, command)
}

// Target is the database a migration run connects to.
type Target struct {
	URL     string
	Source  string // env var the URL was taken from
	Warning string
}

// SelectTarget picks the URL for DDL: DATABASE_URL_DIRECT, then
// DATABASE_URL, then DATABASE_URL_POOLED with a warning. With requireDirect
// only DATABASE_URL_DIRECT is accepted.
func SelectTarget(cfg *config.Config, requireDirect bool) (Target, error) {
	if cfg.DatabaseURLDirect != "" {
		return Target{URL: cfg.DatabaseURLDirect, Source: "DATABASE_URL_DIRECT"}, nil
	}
	if requireDirect {
		return Target{}, fmt.Errorf("DATABASE_URL_DIRECT is required for startup migrations")
	}
	if cfg.DatabaseURLRaw != "" {
		return Target{URL: cfg.DatabaseURLRaw, Source: "DATABASE_URL"}, nil
	}
	if cfg.DatabaseURLPooled != "" {
		return Target{
			URL:     cfg.DatabaseURLPooled,
			Source:  "DATABASE_URL_POOLED",
			Warning: "running DDL through the pooler; set DATABASE_URL_DIRECT",
		}, nil
	}
	return Target{}, fmt.Errorf("no database URL configured (set DATABASE_URL_DIRECT or DATABASE_URL)")
}

// DescribeDir names where migrations are read from, for logs.
func DescribeDir(dir string) string {
	if dir == "" {
		return "embedded"
	}
	return dir
}
