package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"bonitx-quiz-service/internal/domain"
	"github.com/google/go-cmp/cmp"
)

func TestLeadStoreRoundTrip(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "leads", "quiz.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	path := domain.CollectionPath("holabonitx")
	uid := "u-9"
	records := []domain.SubmissionRecord{
		{
			Email:       "a@b.com",
			Timestamp:   time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC),
			TestAnswers: map[int]string{1: "A", 2: "B"},
			ResultMode:  domain.ModeTransicion,
			UserID:      &uid,
		},
		{
			Email:       "c@d.org",
			Timestamp:   time.Date(2025, 3, 9, 11, 30, 0, 0, time.UTC),
			TestAnswers: map[int]string{1: "C"},
			ResultMode:  domain.ModeConexion,
		},
	}
	for _, r := range records {
		if err := store.Append(ctx, path, r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := store.Append(ctx, domain.CollectionPath("other"), records[0]); err != nil {
		t.Fatalf("append other: %v", err)
	}

	got, err := store.Records(ctx, path)
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if diff := cmp.Diff(records, got); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}
