package docstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// firestoreStore implements Store on a Cloud Firestore client.
type firestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore wraps an initialized Firestore client.
func NewFirestoreStore(client *firestore.Client) Store {
	return &firestoreStore{client: client}
}

func (s *firestoreStore) doc(collection, id string) *firestore.DocumentRef {
	return s.client.Collection(collection).Doc(id)
}

func (s *firestoreStore) NewID(collection string) string {
	return s.client.Collection(collection).NewDoc().ID
}

func (s *firestoreStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	snap, err := s.doc(collection, id).Get(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return snapshotDocument(snap), nil
}

func (s *firestoreStore) Set(ctx context.Context, collection, id string, data any) error {
	_, err := s.doc(collection, id).Set(ctx, toFirestoreData(data))
	return mapError(err)
}

func (s *firestoreStore) Merge(ctx context.Context, collection, id string, data map[string]any) error {
	_, err := s.doc(collection, id).Set(ctx, toFirestoreData(data), firestore.MergeAll)
	return mapError(err)
}

func (s *firestoreStore) Update(ctx context.Context, collection, id string, updates ...Update) error {
	_, err := s.doc(collection, id).Update(ctx, toFirestoreUpdates(updates))
	return mapError(err)
}

func (s *firestoreStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.doc(collection, id).Delete(ctx)
	return mapError(err)
}

func (s *firestoreStore) Query(ctx context.Context, q Query) ([]*Document, error) {
	query := s.client.Collection(q.Collection).Query
	for _, f := range q.Filters {
		query = query.Where(f.Path, f.Op, toFirestoreValue(f.Value))
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Direction == Desc {
			dir = firestore.Desc
		}
		query = query.OrderBy(q.OrderBy, dir)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var docs []*Document
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", q.Collection, mapError(err))
		}
		docs = append(docs, snapshotDocument(snap))
	}
	return docs, nil
}

func (s *firestoreStore) Commit(ctx context.Context, writes ...Write) error {
	if len(writes) == 0 {
		return nil
	}

	batch := s.client.Batch()
	for _, w := range writes {
		ref := s.doc(w.Collection, w.ID)
		switch w.Kind {
		case WriteSet:
			batch.Set(ref, toFirestoreData(w.Data))
		case WriteMerge:
			batch.Set(ref, toFirestoreData(w.Data), firestore.MergeAll)
		case WriteUpdate:
			batch.Update(ref, toFirestoreUpdates(w.Updates))
		case WriteDelete:
			batch.Delete(ref)
		}
	}
	_, err := batch.Commit(ctx)
	return mapError(err)
}

func (s *firestoreStore) Transact(ctx context.Context, collection, id string, fn TxFunc) error {
	ref := s.doc(collection, id)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		updates, err := fn(snapshotDocument(snap))
		if err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Update(ref, toFirestoreUpdates(updates))
	})
	return mapError(err)
}

func snapshotDocument(snap *firestore.DocumentSnapshot) *Document {
	return NewDocument(snap.Ref.ID, snap.DataTo)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

func toFirestoreUpdates(updates []Update) []firestore.Update {
	out := make([]firestore.Update, 0, len(updates))
	for _, u := range updates {
		out = append(out, firestore.Update{Path: u.Path, Value: toFirestoreValue(u.Value)})
	}
	return out
}

// toFirestoreData passes structs through untouched and rewrites transform
// sentinels inside maps.
func toFirestoreData(data any) any {
	fields, ok := data.(map[string]any)
	if !ok {
		return data
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = toFirestoreValue(v)
	}
	return out
}

func toFirestoreValue(v any) any {
	switch x := v.(type) {
	case arrayUnion:
		return firestore.ArrayUnion([]any(x)...)
	case arrayRemove:
		return firestore.ArrayRemove([]any(x)...)
	case increment:
		return firestore.Increment(int64(x))
	case serverTimestamp:
		return firestore.ServerTimestamp
	default:
		return v
	}
}
