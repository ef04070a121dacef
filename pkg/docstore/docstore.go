// Package docstore is a thin document-database abstraction over Firestore.
//
// Collections are addressed by slash-separated paths ("users",
// "users/abc/notifications"). Field transforms (ArrayUnion, ArrayRemove,
// Increment, ServerTimestamp) are applied atomically by the backing store.
// The in-memory implementation mirrors Firestore semantics closely enough for
// tests and local development.
package docstore

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by Get and Update when the document does not exist.
var ErrNotFound = errors.New("docstore: document not found")

// Store is the document database used by every repository.
type Store interface {
	// NewID allocates a document ID in collection without writing anything.
	NewID(collection string) string
	Get(ctx context.Context, collection, id string) (*Document, error)
	// Set replaces the whole document.
	Set(ctx context.Context, collection, id string, data any) error
	// Merge writes only the given fields, creating the document if needed.
	Merge(ctx context.Context, collection, id string, data map[string]any) error
	// Update modifies fields of an existing document.
	Update(ctx context.Context, collection, id string, updates ...Update) error
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, q Query) ([]*Document, error)
	// Commit applies all writes atomically.
	Commit(ctx context.Context, writes ...Write) error
	// Transact reads one document, passes it to fn and applies the updates
	// fn returns only if the document has not changed in between. fn may run
	// more than once and must not touch the store; returning no updates
	// writes nothing. A missing document fails with ErrNotFound.
	Transact(ctx context.Context, collection, id string, fn TxFunc) error
}

// TxFunc computes the updates of a single-document transaction.
type TxFunc func(doc *Document) ([]Update, error)

// Path joins path segments into a collection path.
func Path(segments ...string) string {
	return strings.Join(segments, "/")
}

// Update is a single field update.
type Update struct {
	Path  string
	Value any
}

// Document is a read snapshot.
type Document struct {
	ID     string
	decode func(v any) error
}

// NewDocument builds a Document whose DataTo delegates to decode.
func NewDocument(id string, decode func(v any) error) *Document {
	return &Document{ID: id, decode: decode}
}

// DataTo decodes the document into v, a pointer to a struct or map.
func (d *Document) DataTo(v any) error {
	return d.decode(v)
}

// Direction is a sort direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// Filter is a single where clause.
type Filter struct {
	Path  string
	Op    string
	Value any
}

// Query describes a filtered, ordered read of a collection.
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    string
	Direction  Direction
	Limit      int
}

// Collection starts a query over every document in path.
func Collection(path string) Query {
	return Query{Collection: path}
}

// Where adds a filter. Supported ops: ==, !=, <, <=, >, >=, array-contains, in.
func (q Query) Where(path, op string, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Path: path, Op: op, Value: value})
	return q
}

func (q Query) Order(path string, dir Direction) Query {
	q.OrderBy = path
	q.Direction = dir
	return q
}

func (q Query) Take(n int) Query {
	q.Limit = n
	return q
}

// WriteKind identifies the operation of a batched write.
type WriteKind int

const (
	WriteSet WriteKind = iota
	WriteMerge
	WriteUpdate
	WriteDelete
)

// Write is one operation inside Commit.
type Write struct {
	Kind       WriteKind
	Collection string
	ID         string
	Data       any
	Updates    []Update
}

func SetOp(collection, id string, data any) Write {
	return Write{Kind: WriteSet, Collection: collection, ID: id, Data: data}
}

func MergeOp(collection, id string, data map[string]any) Write {
	return Write{Kind: WriteMerge, Collection: collection, ID: id, Data: data}
}

func UpdateOp(collection, id string, updates ...Update) Write {
	return Write{Kind: WriteUpdate, Collection: collection, ID: id, Updates: updates}
}

func DeleteOp(collection, id string) Write {
	return Write{Kind: WriteDelete, Collection: collection, ID: id}
}

// maxBatchWrites is the Firestore limit on writes per commit.
const maxBatchWrites = 500

// DeleteCollection removes every document in collection, in chunks that fit
// one commit each.
func DeleteCollection(ctx context.Context, s Store, collection string) (int, error) {
	docs, err := s.Query(ctx, Collection(collection))
	if err != nil {
		return 0, err
	}

	deleted := 0
	for start := 0; start < len(docs); start += maxBatchWrites {
		end := start + maxBatchWrites
		if end > len(docs) {
			end = len(docs)
		}
		writes := make([]Write, 0, end-start)
		for _, doc := range docs[start:end] {
			writes = append(writes, DeleteOp(collection, doc.ID))
		}
		if err := s.Commit(ctx, writes...); err != nil {
			return deleted, err
		}
		deleted += len(writes)
	}
	return deleted, nil
}

// Field transforms

type arrayUnion []any

type arrayRemove []any

type increment int64

type serverTimestamp struct{}

// ArrayUnion adds elements not already present in an array field.
func ArrayUnion(elems ...any) any { return arrayUnion(elems) }

// ArrayRemove removes every instance of elems from an array field.
func ArrayRemove(elems ...any) any { return arrayRemove(elems) }

// Increment adds n to a numeric field, treating a missing field as zero.
func Increment(n int64) any { return increment(n) }

// ServerTimestamp is replaced by the commit time of the write.
var ServerTimestamp any = serverTimestamp{}
