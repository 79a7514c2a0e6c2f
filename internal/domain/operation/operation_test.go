package operation

import (
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/cymbalsearch/internal/domain"
)

func TestNewSource(t *testing.T) {
	tests := []struct {
		name    string
		gcs     string
		dataset string
		table   string
		want    SourceKind
		wantErr error
	}{
		{"gcs", "gs://b/a.json", "", "", SourceGCS, nil},
		{"bigquery", "", "ds", "tbl", SourceBigQuery, nil},
		{"both", "gs://b/a.json", "ds", "tbl", "", domain.ErrConflictingSources},
		{"both partial bq", "gs://b/a.json", "ds", "", "", domain.ErrConflictingSources},
		{"neither", "", "", "", "", domain.ErrMissingSource},
		{"bq without table", "", "ds", "", "", domain.ErrInvalidInput},
		{"bad scheme", "s3://b/a.json", "", "", "", domain.ErrInvalidInput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src, err := NewSource(tc.gcs, tc.dataset, tc.table)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if src.Kind != tc.want {
				t.Errorf("Kind = %q, want %q", src.Kind, tc.want)
			}
		})
	}
}

func TestSource_Validate(t *testing.T) {
	tests := []struct {
		name    string
		src     Source
		wantErr error
	}{
		{"gcs", Source{Kind: SourceGCS, GCSURI: "gs://b/a.json"}, nil},
		{"bigquery", Source{Kind: SourceBigQuery, BigQueryDataset: "ds", BigQueryTable: "tbl"}, nil},
		{"zero", Source{}, domain.ErrMissingSource},
		{
			"both fields",
			Source{Kind: SourceGCS, GCSURI: "gs://b/a.json", BigQueryDataset: "ds", BigQueryTable: "tbl"},
			domain.ErrConflictingSources,
		},
		{"kind mismatch", Source{Kind: SourceBigQuery, GCSURI: "gs://b/a.json"}, domain.ErrInvalidInput},
		{"kind without fields", Source{Kind: SourceGCS}, domain.ErrMissingSource},
		{"bad scheme", Source{Kind: SourceGCS, GCSURI: "https://b/a.json"}, domain.ErrInvalidInput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.src.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestOperation_Apply(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	src, _ := GCS("gs://b/a.json")
	op := New("operations/import-1", src, t0)

	if op.State != Running || op.Done() {
		t.Fatalf("new operation should be running, got %q", op.State)
	}

	op.Apply(Status{Done: false, TotalCount: 1}, t0.Add(time.Second))
	if op.State != Running {
		t.Errorf("State = %q, want running", op.State)
	}

	op.Apply(Status{Done: true, SuccessCount: 1, TotalCount: 1}, t0.Add(2*time.Second))
	if op.State != Succeeded || !op.Done() {
		t.Errorf("State = %q, want succeeded", op.State)
	}
	if op.SuccessCount != 1 || op.TotalCount != 1 {
		t.Errorf("counts = %d/%d", op.SuccessCount, op.TotalCount)
	}
	if !op.UpdatedAt.Equal(t0.Add(2 * time.Second)) {
		t.Errorf("UpdatedAt = %v", op.UpdatedAt)
	}
	if !op.SubmittedAt.Equal(t0) {
		t.Errorf("SubmittedAt changed: %v", op.SubmittedAt)
	}
}

func TestOperation_ApplyFailure(t *testing.T) {
	src, _ := BigQuery("ds", "tbl")
	op := New("operations/import-2", src, time.Now())

	op.Apply(Status{Done: true, FailureCount: 3, Failure: "permission denied"}, time.Now())
	if op.State != Failed {
		t.Errorf("State = %q, want failed", op.State)
	}
	if op.Error != "permission denied" {
		t.Errorf("Error = %q", op.Error)
	}
}
