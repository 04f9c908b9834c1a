package blob

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	data := []byte("date,calories\n2024-05-01,1800\n")
	n, err := store.PutObject(ctx, "exports/u1/a.csv", data, "text/csv")
	if err != nil || n != int64(len(data)) {
		t.Fatalf("put: n=%d err=%v", n, err)
	}

	// Mutating the caller's slice must not change the stored object.
	data[0] = 'X'

	got, err := store.GetObject(ctx, "exports/u1/a.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got[:4]) != "date" {
		t.Fatalf("stored object was aliased: %q", got)
	}

	url, err := store.PresignGet(ctx, "exports/u1/a.csv", 60)
	if err != nil || url != "" {
		t.Fatalf("expected empty presign url, got %q err=%v", url, err)
	}

	if err := store.DeleteObject(ctx, "exports/u1/a.csv"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetObject(ctx, "exports/u1/a.csv"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}
