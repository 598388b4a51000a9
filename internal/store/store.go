// Package store defines the persistence boundary for transaction documents:
// a collection keyed by opaque ids with append, point lookup, delete, and a
// date-ordered scan. The ledger and analytics layers depend only on the
// TransactionStore interface; Firestore and in-memory implementations live
// below it.
package store

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ckaratas/cebibak/internal/domain"
)

// ErrNotFound is returned by Get when no document has the given id.
var ErrNotFound = errors.New("transaction not found")

// TransactionStore is the minimal document-store surface the ledger needs.
type TransactionStore interface {
	// Add appends a new document and returns the store-assigned id.
	Add(ctx context.Context, rec *domain.Record) (string, error)
	// Get returns the document with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Record, error)
	// Delete removes the document with the given id.
	Delete(ctx context.Context, id string) error
	// ListAll returns every document ordered ascending by date.
	ListAll(ctx context.Context) ([]domain.Record, error)
	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
}

// IsNetworkError reports whether err looks like a connectivity failure rather
// than a store-side rejection. Used only for user-facing messaging; control
// flow treats both the same.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded:
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"network", "connection", "timeout"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
