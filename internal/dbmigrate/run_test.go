package dbmigrate

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(embedded, DefaultMigrationsDir+"/*.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no embedded migrations")
	}

	for _, name := range files {
		raw, err := fs.ReadFile(embedded, name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		body := string(raw)
		if !strings.Contains(body, "-- +goose Up") || !strings.Contains(body, "-- +goose Down") {
			t.Errorf("%s: missing goose Up/Down markers", name)
		}
	}
}

func TestRunRequiresURL(t *testing.T) {
	if err := Run("up", "", ""); err == nil {
		t.Fatal("expected error for empty database URL")
	}
}
