package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ckaratas/cebibak/internal/domain"
)

// document is the Firestore field schema. It is a separate type so the domain
// Record does not carry persistence tags.
type document struct {
	OwnerEmail  string    `firestore:"owner_email"`
	Date        time.Time `firestore:"date"`
	Category    string    `firestore:"category"`
	Amount      float64   `firestore:"amount"`
	Type        string    `firestore:"type"`
	Description string    `firestore:"description"`
	Source      string    `firestore:"source"`
	IsRecurring bool      `firestore:"is_recurring"`
	IsMandatory bool      `firestore:"is_mandatory"`
}

func toDocument(rec *domain.Record) document {
	return document{
		OwnerEmail:  rec.OwnerEmail,
		Date:        rec.Date,
		Category:    rec.Category,
		Amount:      rec.Amount,
		Type:        rec.Type,
		Description: rec.Description,
		Source:      rec.Source,
		IsRecurring: rec.IsRecurring,
		IsMandatory: rec.IsMandatory,
	}
}

func (d document) toRecord(id string) domain.Record {
	return domain.Record{
		ID:          id,
		OwnerEmail:  d.OwnerEmail,
		Date:        d.Date,
		Category:    d.Category,
		Amount:      d.Amount,
		Type:        d.Type,
		Description: d.Description,
		Source:      d.Source,
		IsRecurring: d.IsRecurring,
		IsMandatory: d.IsMandatory,
	}
}

// FirestoreStore is the Firestore-backed TransactionStore. It holds a shared
// client so each operation does not open a new connection.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreStore creates a FirestoreStore for the given project and
// collection with a shared Firestore client.
func NewFirestoreStore(ctx context.Context, projectID, collection string) (*FirestoreStore, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewFirestoreStore: creating client: %w", err)
	}
	return &FirestoreStore{client: client, collection: collection}, nil
}

// Close closes the Firestore client connection.
func (s *FirestoreStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// Add implements TransactionStore.
func (s *FirestoreStore) Add(ctx context.Context, rec *domain.Record) (string, error) {
	ref, _, err := s.client.Collection(s.collection).Add(ctx, toDocument(rec))
	if err != nil {
		return "", fmt.Errorf("firestore: adding document: %w", err)
	}
	return ref.ID, nil
}

// Get implements TransactionStore.
func (s *FirestoreStore) Get(ctx context.Context, id string) (*domain.Record, error) {
	snap, err := s.client.Collection(s.collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("firestore: getting document %s: %w", id, err)
	}

	var doc document
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore: decoding document %s: %w", id, err)
	}
	rec := doc.toRecord(snap.Ref.ID)
	return &rec, nil
}

// Delete implements TransactionStore.
func (s *FirestoreStore) Delete(ctx context.Context, id string) error {
	if _, err := s.client.Collection(s.collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("firestore: deleting document %s: %w", id, err)
	}
	return nil
}

// ListAll implements TransactionStore. Documents come back ordered ascending
// by date, which is the replay order the ledger relies on.
func (s *FirestoreStore) ListAll(ctx context.Context) ([]domain.Record, error) {
	iter := s.client.Collection(s.collection).OrderBy("date", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var records []domain.Record
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore: listing documents: %w", err)
		}

		var doc document
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("firestore: decoding document %s: %w", snap.Ref.ID, err)
		}
		records = append(records, doc.toRecord(snap.Ref.ID))
	}
	return records, nil
}

// Ping implements TransactionStore with a single-document probe query.
func (s *FirestoreStore) Ping(ctx context.Context) error {
	iter := s.client.Collection(s.collection).Limit(1).Documents(ctx)
	defer iter.Stop()

	if _, err := iter.Next(); err != nil && err != iterator.Done {
		return fmt.Errorf("firestore: ping: %w", err)
	}
	return nil
}

var _ TransactionStore = (*FirestoreStore)(nil)
