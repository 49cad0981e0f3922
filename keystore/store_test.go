package keystore_test

import (
	"path/filepath"
	"testing"

	"github.com/named-data/lvs/keystore"
	"github.com/named-data/lvs/ndn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *keystore.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keys.db")
	s, err := keystore.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreAddAndList(t *testing.T) {
	s := openTestStore(t)

	names := []string{
		"/ndn/blog/admin/000001/KEY/1/root/1",
		"/ndn/blog/author/alice/KEY/1/admin/1",
	}
	for _, n := range names {
		require.NoError(t, s.Add(ndn.MustParseName(n)))
	}

	got, err := s.Names()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, names[0], got[0].String())
	assert.Equal(t, names[1], got[1].String())
}

func TestStoreAddIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	n := ndn.MustParseName("/ndn/blog/admin/000001/KEY/1/root/1")

	require.NoError(t, s.Add(n))
	require.NoError(t, s.Add(n))

	got, err := s.Names()
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestStoreRemove(t *testing.T) {
	s := openTestStore(t)
	n := ndn.MustParseName("/ndn/blog/admin/000001/KEY/1/root/1")

	require.NoError(t, s.Add(n))
	require.NoError(t, s.Remove(n))

	got, err := s.Names()
	require.NoError(t, err)
	assert.Empty(t, got)
}
