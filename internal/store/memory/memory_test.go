package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ckaratas/cebibak/internal/domain"
	"github.com/ckaratas/cebibak/internal/store"
)

func day(d int) time.Time {
	return time.Date(2025, 4, d, 0, 0, 0, 0, time.UTC)
}

func TestAddAssignsID(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	id, err := s.Add(ctx, &domain.Record{Type: "Income", Amount: 100, Date: day(1)})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected a non-empty id")
	}

	rec, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.ID != id || rec.Amount != 100 {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestGetNotFound(t *testing.T) {
	s := NewStore()

	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListAllOrderedByDate(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	// Inserted out of date order on purpose.
	for _, d := range []int{10, 3, 7} {
		if _, err := s.Add(ctx, &domain.Record{Type: "Expense", Amount: float64(d), Date: day(d)}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	records, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].Date.Before(records[i-1].Date) {
			t.Errorf("records out of order: %v before %v", records[i-1].Date, records[i].Date)
		}
	}
}

func TestDeleteRemovesFromListing(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	id, _ := s.Add(ctx, &domain.Record{Type: "Expense", Amount: 50, Date: day(5)})
	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := s.Get(ctx, id); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	records, _ := s.ListAll(ctx)
	if len(records) != 0 {
		t.Errorf("expected empty listing, got %d records", len(records))
	}

	// Deleting again is a no-op.
	if err := s.Delete(ctx, id); err != nil {
		t.Errorf("second Delete should be a no-op, got %v", err)
	}
}
