package kv

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "blogPosts", []byte(`[{"id":"1"}]`)))
	got, err := s.Get(ctx, "blogPosts")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1"}]`, string(got))

	require.NoError(t, s.Set(ctx, "blogPosts", []byte(`[]`)))
	got, err = s.Get(ctx, "blogPosts")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
}

func TestMemoryStore(t *testing.T) {
	testStoreContract(t, NewMemory())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	value := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", value))
	value[0] = 'x'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'y'
	again, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "data", "folio.db"))
	require.NoError(t, err)
	defer s.Close()

	testStoreContract(t, s)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.db")
	ctx := context.Background()

	s, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "blogPosts", []byte(`["kept"]`)))
	require.NoError(t, s.Close())

	reopened, err := NewSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Get(ctx, "blogPosts")
	require.NoError(t, err)
	assert.Equal(t, `["kept"]`, string(got))
}

func TestZstdStore(t *testing.T) {
	inner := NewMemory()
	z, err := Zstd(inner)
	require.NoError(t, err)
	defer z.Close()

	testStoreContract(t, z)

	raw, err := inner.Get(context.Background(), "blogPosts")
	require.NoError(t, err)
	assert.NotEqual(t, "[]", string(raw), "inner store should hold compressed bytes")
}

func TestZstdStoreReadsUncompressedValue(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()
	plain := []byte(`[{"id":"1","title":"Before compression"}]`)
	require.NoError(t, inner.Set(ctx, "blogPosts", plain))
	z, err := Zstd(inner)
	require.NoError(t, err)
	defer z.Close()

	got, err := z.Get(ctx, "blogPosts")
	require.NoError(t, err)
	assert.Equal(t, plain, got)

	require.NoError(t, z.Set(ctx, "blogPosts", got))
	stored, err := inner.Get(ctx, "blogPosts")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(stored, zstdMagic), "rewrite should be compressed")
}

func TestZstdStoreRejectsCorruptFrame(t *testing.T) {
	inner := NewMemory()
	corrupt := append(append([]byte{}, zstdMagic...), 0xff, 0xff, 0xff)
	require.NoError(t, inner.Set(context.Background(), "blogPosts", corrupt))
	z, err := Zstd(inner)
	require.NoError(t, err)
	defer z.Close()

	_, err = z.Get(context.Background(), "blogPosts")
	assert.Error(t, err)
}

func TestPostgresQueries(t *testing.T) {
	sb := newPostgresBuilder()

	query, args, err := getQuery(sb, "blogPosts")
	require.NoError(t, err)
	assert.Equal(t, "SELECT value FROM folio_kv WHERE key = $1", query)
	assert.Equal(t, []any{"blogPosts"}, args)

	query, args, err = setQuery(sb, "blogPosts", []byte("[]"))
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO folio_kv (key,value,updated_at) VALUES ($1,$2,now()) "+
			"ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at",
		query)
	assert.Equal(t, []any{"blogPosts", []byte("[]")}, args)
}

func TestS3ObjectKey(t *testing.T) {
	s := &S3{bucket: "b", prefix: "folio"}
	assert.Equal(t, "folio/blogPosts.json", s.objectKey("blogPosts"))

	s.prefix = ""
	assert.Equal(t, "blogPosts.json", s.objectKey("blogPosts"))
}
