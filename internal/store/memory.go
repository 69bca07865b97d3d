package store

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

// Memory is an in-process Store used by tests. Documents are normalized
// through JSON so filter matching and decoding behave like the Postgres
// implementation.
type Memory struct {
	mu   sync.RWMutex
	docs map[string][]map[string]any
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]map[string]any)}
}

func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func matches(doc map[string]any, filter Filter) bool {
	for k, want := range filter {
		norm, err := normalize(want)
		if err != nil {
			return false
		}
		if !reflect.DeepEqual(doc[k], norm) {
			return false
		}
	}
	return true
}

func applySort(docs []map[string]any, s *Sort) {
	if s == nil {
		return
	}
	less := func(a, b any) bool {
		switch av := a.(type) {
		case float64:
			bv, _ := b.(float64)
			return av < bv
		case string:
			bv, _ := b.(string)
			at, aerr := time.Parse(time.RFC3339Nano, av)
			bt, berr := time.Parse(time.RFC3339Nano, bv)
			if aerr == nil && berr == nil {
				return at.Before(bt)
			}
			return av < bv
		default:
			return fmt.Sprint(a) < fmt.Sprint(b)
		}
	}
	sort.SliceStable(docs, func(i, j int) bool {
		if s.Desc {
			return less(docs[j][s.Field], docs[i][s.Field])
		}
		return less(docs[i][s.Field], docs[j][s.Field])
	})
}

func (m *Memory) matching(collection string, filter Filter, s *Sort) []map[string]any {
	var out []map[string]any
	for _, doc := range m.docs[collection] {
		if matches(doc, filter) {
			out = append(out, doc)
		}
	}
	applySort(out, s)
	return out
}

func decode(doc any, out any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (m *Memory) FindOne(_ context.Context, collection string, filter Filter, sort *Sort, out any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := m.matching(collection, filter, sort)
	if len(docs) == 0 {
		return ErrNotFound
	}
	return decode(docs[0], out)
}

func (m *Memory) Find(_ context.Context, collection string, filter Filter, sort *Sort, out any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := m.matching(collection, filter, sort)
	if docs == nil {
		docs = []map[string]any{}
	}
	return decode(docs, out)
}

func (m *Memory) Count(_ context.Context, collection string, filter Filter) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.matching(collection, filter, nil))), nil
}

func (m *Memory) Distinct(_ context.Context, collection, field string, filter Filter) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	var values []string
	for _, doc := range m.matching(collection, filter, nil) {
		v, ok := doc[field].(string)
		if !ok || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	return values, nil
}

func (m *Memory) Create(_ context.Context, collection string, doc any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	norm, err := normalize(doc)
	if err != nil {
		return "", err
	}
	fields, ok := norm.(map[string]any)
	if !ok {
		return "", fmt.Errorf("create %s: document must be an object", collection)
	}

	id := uuid.NewString()
	fields["_id"] = id
	m.docs[collection] = append(m.docs[collection], fields)
	return id, nil
}

func (m *Memory) UpdateByFilter(_ context.Context, collection string, filter Filter, set map[string]any) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, doc := range m.docs[collection] {
		if !matches(doc, filter) {
			continue
		}
		for k, v := range set {
			norm, err := normalize(v)
			if err != nil {
				return n, err
			}
			doc[k] = norm
		}
		n++
	}
	return n, nil
}
