package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Op names a store operation for failure injection.
type Op string

const (
	OpGet    Op = "get"
	OpSet    Op = "set"
	OpMerge  Op = "merge"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpQuery  Op = "query"
)

type failure struct {
	op         Op
	collection string
	id         string
	err        error
}

// MemoryStore is an in-process Store. It is safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	docs     map[string]map[string]map[string]any
	failures []failure
	lastTS   time.Time
	now      func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]map[string]map[string]any),
		now:  time.Now,
	}
}

// InjectFailure makes every matching operation fail with err until
// ClearFailures is called. An empty id matches any document in collection.
// Batched writes fail as a whole when any of their writes match.
func (m *MemoryStore) InjectFailure(op Op, collection, id string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, failure{op: op, collection: collection, id: id, err: err})
}

// ClearFailures removes every injected failure.
func (m *MemoryStore) ClearFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = nil
}

func (m *MemoryStore) failureFor(op Op, collection, id string) error {
	for _, f := range m.failures {
		if f.op == op && f.collection == collection && (f.id == "" || f.id == id) {
			return f.err
		}
	}
	return nil
}

// NewID returns a random ID.
func (m *MemoryStore) NewID(collection string) string {
	return uuid.NewString()
}

func (m *MemoryStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.failureFor(OpGet, collection, id); err != nil {
		return nil, err
	}
	data, ok := m.docs[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return memoryDocument(id, data), nil
}

func (m *MemoryStore) Set(ctx context.Context, collection, id string, data any) error {
	return m.Commit(ctx, SetOp(collection, id, data))
}

func (m *MemoryStore) Merge(ctx context.Context, collection, id string, data map[string]any) error {
	return m.Commit(ctx, MergeOp(collection, id, data))
}

func (m *MemoryStore) Update(ctx context.Context, collection, id string, updates ...Update) error {
	return m.Commit(ctx, UpdateOp(collection, id, updates...))
}

func (m *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	return m.Commit(ctx, DeleteOp(collection, id))
}

// Commit validates every write before applying any of them.
func (m *MemoryStore) Commit(ctx context.Context, writes ...Write) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commitLocked(writes)
}

// Transact holds the write lock from the read to the write, so fn always
// sees the latest version of the document.
func (m *MemoryStore) Transact(ctx context.Context, collection, id string, fn TxFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failureFor(OpGet, collection, id); err != nil {
		return err
	}
	data, ok := m.docs[collection][id]
	if !ok {
		return fmt.Errorf("transact %s/%s: %w", collection, id, ErrNotFound)
	}

	updates, err := fn(memoryDocument(id, data))
	if err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}
	return m.commitLocked([]Write{UpdateOp(collection, id, updates...)})
}

func (m *MemoryStore) commitLocked(writes []Write) error {
	staged := make(map[string]map[string]map[string]any)
	deleted := make(map[string]map[string]bool)
	lookup := func(collection, id string) (map[string]any, bool) {
		if deleted[collection][id] {
			return nil, false
		}
		if doc, ok := staged[collection][id]; ok {
			return doc, true
		}
		doc, ok := m.docs[collection][id]
		return doc, ok
	}
	stage := func(collection, id string, doc map[string]any) {
		if staged[collection] == nil {
			staged[collection] = make(map[string]map[string]any)
		}
		staged[collection][id] = doc
		if deleted[collection] != nil {
			delete(deleted[collection], id)
		}
	}

	ts := m.timestamp()
	for _, w := range writes {
		if err := m.failureFor(writeOp(w.Kind), w.Collection, w.ID); err != nil {
			return err
		}

		switch w.Kind {
		case WriteSet:
			fields, err := toFields(w.Data)
			if err != nil {
				return err
			}
			doc := make(map[string]any, len(fields))
			if err := applyFields(doc, fields, ts); err != nil {
				return err
			}
			stage(w.Collection, w.ID, doc)

		case WriteMerge:
			fields, err := toFields(w.Data)
			if err != nil {
				return err
			}
			existing, _ := lookup(w.Collection, w.ID)
			doc := cloneMap(existing)
			if err := applyFields(doc, fields, ts); err != nil {
				return err
			}
			stage(w.Collection, w.ID, doc)

		case WriteUpdate:
			existing, ok := lookup(w.Collection, w.ID)
			if !ok {
				return fmt.Errorf("update %s/%s: %w", w.Collection, w.ID, ErrNotFound)
			}
			doc := cloneMap(existing)
			fields := make(map[string]any, len(w.Updates))
			for _, u := range w.Updates {
				fields[u.Path] = u.Value
			}
			if err := applyFields(doc, fields, ts); err != nil {
				return err
			}
			stage(w.Collection, w.ID, doc)

		case WriteDelete:
			if staged[w.Collection] != nil {
				delete(staged[w.Collection], w.ID)
			}
			if deleted[w.Collection] == nil {
				deleted[w.Collection] = make(map[string]bool)
			}
			deleted[w.Collection][w.ID] = true
		}
	}

	for collection, ids := range deleted {
		for id := range ids {
			delete(m.docs[collection], id)
		}
	}
	for collection, docs := range staged {
		if m.docs[collection] == nil {
			m.docs[collection] = make(map[string]map[string]any)
		}
		for id, doc := range docs {
			m.docs[collection][id] = doc
		}
	}
	return nil
}

func (m *MemoryStore) Query(ctx context.Context, q Query) ([]*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.failureFor(OpQuery, q.Collection, ""); err != nil {
		return nil, err
	}

	type entry struct {
		id   string
		data map[string]any
	}
	var matched []entry
	for id, data := range m.docs[q.Collection] {
		ok, err := matchesAll(data, q.Filters)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, entry{id: id, data: data})
		}
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].id < matched[j].id })
	if q.OrderBy != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			c := compareValues(matched[i].data[q.OrderBy], matched[j].data[q.OrderBy])
			if q.Direction == Desc {
				return c > 0
			}
			return c < 0
		})
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	docs := make([]*Document, 0, len(matched))
	for _, e := range matched {
		docs = append(docs, memoryDocument(e.id, e.data))
	}
	return docs, nil
}

// timestamp returns a strictly increasing commit time so ordering by
// server timestamps is deterministic.
func (m *MemoryStore) timestamp() time.Time {
	ts := m.now().UTC()
	if !ts.After(m.lastTS) {
		ts = m.lastTS.Add(time.Microsecond)
	}
	m.lastTS = ts
	return ts
}

func writeOp(kind WriteKind) Op {
	switch kind {
	case WriteMerge:
		return OpMerge
	case WriteUpdate:
		return OpUpdate
	case WriteDelete:
		return OpDelete
	default:
		return OpSet
	}
}

func memoryDocument(id string, data map[string]any) *Document {
	snapshot := cloneMap(data)
	return NewDocument(id, func(v any) error {
		if out, ok := v.(*map[string]any); ok {
			*out = cloneMap(snapshot)
			return nil
		}
		raw, err := json.Marshal(snapshot)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, v)
	})
}

// toFields converts a map or struct into top-level fields. Structs go through
// their json tags, which share names with their firestore tags.
func toFields(data any) (map[string]any, error) {
	if data == nil {
		return map[string]any{}, nil
	}
	if fields, ok := data.(map[string]any); ok {
		return fields, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return fields, nil
}

func applyFields(doc, fields map[string]any, ts time.Time) error {
	for path, value := range fields {
		switch v := value.(type) {
		case serverTimestamp:
			doc[path] = ts
		case increment:
			current, _ := toFloat(doc[path])
			doc[path] = current + float64(v)
		case arrayUnion:
			arr := toSlice(doc[path])
			for _, elem := range v {
				elem = normalize(elem)
				if !containsValue(arr, elem) {
					arr = append(arr, elem)
				}
			}
			doc[path] = arr
		case arrayRemove:
			arr := toSlice(doc[path])
			kept := make([]any, 0, len(arr))
			for _, existing := range arr {
				if !containsValue(normalizeSlice(v), existing) {
					kept = append(kept, existing)
				}
			}
			doc[path] = kept
		default:
			doc[path] = normalize(value)
		}
	}
	return nil
}

// normalize converts Go values into the JSON-like shapes stored in memory,
// keeping time.Time intact so ordering by timestamps works.
func normalize(v any) any {
	switch x := v.(type) {
	case nil, string, bool, float64, time.Time:
		return x
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case float32:
		return float64(x)
	case []any:
		return normalizeSlice(x)
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = normalize(val)
		}
		return out
	default:
		raw, err := json.Marshal(x)
		if err != nil {
			return x
		}
		var out any
		if err := json.Unmarshal(raw, &out); err != nil {
			return x
		}
		return out
	}
}

func normalizeSlice(in []any) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = normalize(v)
	}
	return out
}

func toSlice(v any) []any {
	switch x := v.(type) {
	case []any:
		return append([]any(nil), x...)
	case nil:
		return []any{}
	default:
		n, ok := normalize(x).([]any)
		if !ok {
			return []any{}
		}
		return n
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}

func containsValue(arr []any, v any) bool {
	for _, existing := range arr {
		if reflect.DeepEqual(existing, v) {
			return true
		}
	}
	return false
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if arr, ok := v.([]any); ok {
			v = append([]any(nil), arr...)
		}
		out[k] = v
	}
	return out
}

func matchesAll(data map[string]any, filters []Filter) (bool, error) {
	for _, f := range filters {
		ok, err := matches(data, f)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matches(data map[string]any, f Filter) (bool, error) {
	value, present := data[f.Path]
	want := normalize(f.Value)

	switch f.Op {
	case "==":
		return present && compareValues(value, want) == 0, nil
	case "!=":
		return present && compareValues(value, want) != 0, nil
	case "<":
		return present && sameType(value, want) && compareValues(value, want) < 0, nil
	case "<=":
		return present && sameType(value, want) && compareValues(value, want) <= 0, nil
	case ">":
		return present && sameType(value, want) && compareValues(value, want) > 0, nil
	case ">=":
		return present && sameType(value, want) && compareValues(value, want) >= 0, nil
	case "array-contains":
		arr, ok := value.([]any)
		return ok && containsValue(arr, want), nil
	case "in":
		candidates, ok := want.([]any)
		if !ok {
			return false, fmt.Errorf("docstore: 'in' filter on %s needs a slice", f.Path)
		}
		return present && containsValue(candidates, value), nil
	default:
		return false, fmt.Errorf("docstore: unsupported operator %q", f.Op)
	}
}

func sameType(a, b any) bool {
	return reflect.TypeOf(a) == reflect.TypeOf(b)
}

// compareValues orders values of the same type; mismatched or missing values
// sort by type rank (nil first).
func compareValues(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return ra - rb
	}
	switch x := a.(type) {
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case float64:
		y := b.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	case string:
		y := b.(string)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	case time.Time:
		return x.Compare(b.(time.Time))
	default:
		if reflect.DeepEqual(a, b) {
			return 0
		}
		return -1
	}
}

func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64:
		return 2
	case time.Time:
		return 3
	case string:
		return 4
	default:
		return 5
	}
}
