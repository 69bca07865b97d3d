package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	ID        string    `json:"_id,omitempty"`
	Name      string    `json:"name"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

func TestMemoryCreateAndFindOne(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id, err := m.Create(ctx, "things", &testDoc{Name: "alpha", Size: 3})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	var got testDoc
	require.NoError(t, m.FindOne(ctx, "things", Filter{"name": "alpha"}, nil, &got))
	assert.Equal(t, id, got.ID)
	assert.Equal(t, 3, got.Size)
}

func TestMemoryFindOneNotFound(t *testing.T) {
	m := NewMemory()
	var got testDoc
	err := m.FindOne(context.Background(), "things", Filter{"name": "ghost"}, nil, &got)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryFilterMatchesNumericFields(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_, err := m.Create(ctx, "things", &testDoc{Name: "alpha", Size: 42})
	require.NoError(t, err)

	// Filter values are Go ints while stored values decoded as float64;
	// both sides are normalized through JSON so they still match.
	n, err := m.Count(ctx, "things", Filter{"size": 42})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryFindSortsByField(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for _, d := range []testDoc{
		{Name: "second", CreatedAt: base.Add(time.Hour)},
		{Name: "third", CreatedAt: base.Add(2 * time.Hour)},
		{Name: "first", CreatedAt: base},
	} {
		_, err := m.Create(ctx, "things", &d)
		require.NoError(t, err)
	}

	var asc []testDoc
	require.NoError(t, m.Find(ctx, "things", nil, &Sort{Field: "created_at"}, &asc))
	require.Len(t, asc, 3)
	assert.Equal(t, "first", asc[0].Name)
	assert.Equal(t, "third", asc[2].Name)

	var desc testDoc
	require.NoError(t, m.FindOne(ctx, "things", nil, &Sort{Field: "created_at", Desc: true}, &desc))
	assert.Equal(t, "third", desc.Name)
}

func TestMemorySortComparesTimestampsChronologically(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	base := time.Date(2026, 8, 30, 10, 0, 5, 0, time.UTC)

	// 500ms marshals as ".5", 510ms as ".51": the shorter string compares
	// greater lexically even though it is the earlier instant.
	for _, d := range []testDoc{
		{Name: "older", CreatedAt: base.Add(500 * time.Millisecond)},
		{Name: "newer", CreatedAt: base.Add(510 * time.Millisecond)},
	} {
		_, err := m.Create(ctx, "things", &d)
		require.NoError(t, err)
	}

	var latest testDoc
	require.NoError(t, m.FindOne(ctx, "things", nil, &Sort{Field: "created_at", Desc: true}, &latest))
	assert.Equal(t, "newer", latest.Name)

	var asc []testDoc
	require.NoError(t, m.Find(ctx, "things", nil, &Sort{Field: "created_at"}, &asc))
	require.Len(t, asc, 2)
	assert.Equal(t, "older", asc[0].Name)
}

func TestMemoryFindEmptyDecodesEmptySlice(t *testing.T) {
	m := NewMemory()
	var out []testDoc
	require.NoError(t, m.Find(context.Background(), "things", nil, nil, &out))
	assert.Empty(t, out)
}

func TestMemoryDistinctDeduplicates(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for _, name := range []string{"a", "b", "a", "c", "b"} {
		_, err := m.Create(ctx, "things", &testDoc{Name: name})
		require.NoError(t, err)
	}

	values, err := m.Distinct(ctx, "things", "name", nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, values)
}

func TestMemoryUpdateByFilterMergesFields(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_, err := m.Create(ctx, "things", &testDoc{Name: "alpha", Size: 1})
	require.NoError(t, err)
	_, err = m.Create(ctx, "things", &testDoc{Name: "beta", Size: 1})
	require.NoError(t, err)

	n, err := m.UpdateByFilter(ctx, "things", Filter{"name": "alpha"}, map[string]any{"size": 9})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var got testDoc
	require.NoError(t, m.FindOne(ctx, "things", Filter{"name": "alpha"}, nil, &got))
	assert.Equal(t, 9, got.Size)

	var other testDoc
	require.NoError(t, m.FindOne(ctx, "things", Filter{"name": "beta"}, nil, &other))
	assert.Equal(t, 1, other.Size)
}

func TestMemoryUpdateByFilterNilFilterMatchesAll(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_, err := m.Create(ctx, "things", &testDoc{Name: "alpha"})
	require.NoError(t, err)
	_, err = m.Create(ctx, "things", &testDoc{Name: "beta"})
	require.NoError(t, err)

	n, err := m.UpdateByFilter(ctx, "things", nil, map[string]any{"size": 5})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
