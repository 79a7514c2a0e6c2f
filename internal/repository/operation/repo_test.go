package operation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/cymbalsearch/internal/db"
	"github.com/kailas-cloud/cymbalsearch/internal/domain"
	domop "github.com/kailas-cloud/cymbalsearch/internal/domain/operation"
)

func TestRepo_SaveGetRoundTrip(t *testing.T) {
	s := newMockStore()
	r := New(s, 72*time.Hour)
	ctx := context.Background()

	src, err := domop.GCS("gs://bucket/a.json")
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	op := domop.New("projects/p/locations/global/operations/import-1", src, now)
	op.RecordName = "a.json"
	op.RecordURL = "https://storage.googleapis.com/bucket/a.json"

	if err := r.Save(ctx, op); err != nil {
		t.Fatalf("Save: %v", err)
	}

	key := "cymbalsearch:operation:projects/p/locations/global/operations/import-1"
	if s.ttls[key] != 72*time.Hour {
		t.Errorf("ttl = %v, want 72h", s.ttls[key])
	}

	got, err := r.Get(ctx, op.Name)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.RecordName != "a.json" || got.Source.GCSURI != "gs://bucket/a.json" {
		t.Errorf("unexpected operation: %+v", got)
	}
	if got.State != domop.Running || !got.SubmittedAt.Equal(now) {
		t.Errorf("state/time not preserved: %+v", got)
	}
}

func TestRepo_GetNotFound(t *testing.T) {
	r := New(newMockStore(), time.Hour)

	_, err := r.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrOperationNotFound) {
		t.Errorf("expected ErrOperationNotFound, got %v", err)
	}
}

func TestRepo_GetStoreError(t *testing.T) {
	s := newMockStore()
	s.getErr = &db.Error{Op: db.OpGet, Err: context.DeadlineExceeded}
	r := New(s, time.Hour)

	_, err := r.Get(context.Background(), "op")
	if !errors.Is(err, domain.ErrLedger) {
		t.Errorf("expected ErrLedger, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("cause must be preserved, got %v", err)
	}
}

func TestRepo_GetCorrupt(t *testing.T) {
	s := newMockStore()
	s.data["cymbalsearch:operation:op"] = []byte("{not json")
	r := New(s, time.Hour)

	if _, err := r.Get(context.Background(), "op"); !errors.Is(err, domain.ErrLedger) {
		t.Errorf("expected ErrLedger, got %v", err)
	}
}

func TestRepo_SaveErrors(t *testing.T) {
	s := newMockStore()
	r := New(s, time.Hour)

	if err := r.Save(context.Background(), domop.Operation{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty name, got %v", err)
	}

	s.setErr = errors.New("READONLY")
	if err := r.Save(context.Background(), domop.Operation{Name: "op"}); !errors.Is(err, domain.ErrLedger) {
		t.Errorf("expected ErrLedger, got %v", err)
	}
}
