// Package modelcache is a small bbolt-backed cache mapping LVS source
// text to its already-compiled binary encoding, so a long-running
// producer or consumer process does not re-run the compiler (C1-C4)
// every time it reloads a schema it has seen before. It is pure
// plumbing around lvs.Compile/lvs.Encode/lvs.Decode — it has no
// opinion about freshness beyond "same source bytes, same model".
package modelcache

import (
	"github.com/cespare/xxhash"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/named-data/lvs/lvs"
)

var modelsBucket = []byte("models")

// Cache is a handle to an open bbolt database used as a compiled-model
// cache. The zero value is not usable; construct with Open.
type Cache struct {
	db *bolt.DB
}

// Open opens (creating if necessary) a cache database at path.
func Open(path string) (*Cache, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, errors.Wrap(err, "modelcache: open")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(modelsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "modelcache: migrate")
	}
	return &Cache{db: db}, nil
}

// Close closes the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

func cacheKey(source string) []byte {
	h := xxhash.Sum64String(source)
	key := make([]byte, 8)
	for i := 0; i < 8; i++ {
		key[i] = byte(h >> (8 * (7 - i)))
	}
	return key
}

// CompileCached returns the compiled model for source, decoding it
// from cache on a hit and compiling plus populating the cache on a
// miss. The cache key is the source text's xxhash, so any byte change
// to the schema — including whitespace or comments — is a miss.
func (c *Cache) CompileCached(source string) (*lvs.Model, error) {
	key := cacheKey(source)

	var cached []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(modelsBucket).Get(key); v != nil {
			cached = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "modelcache: read")
	}
	if cached != nil {
		m, err := lvs.Decode(cached)
		if err == nil {
			return m, nil
		}
		// A corrupt or stale cache entry falls back to recompiling
		// rather than failing the caller outright.
	}

	m, err := lvs.Compile(source)
	if err != nil {
		return nil, err
	}
	wire, err := lvs.Encode(m)
	if err != nil {
		return nil, errors.Wrap(err, "modelcache: encode")
	}
	err = c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(modelsBucket).Put(key, wire)
	})
	if err != nil {
		return nil, errors.Wrap(err, "modelcache: write")
	}
	return m, nil
}

// Invalidate removes any cached entry for source.
func (c *Cache) Invalidate(source string) error {
	key := cacheKey(source)
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(modelsBucket).Delete(key)
	})
}
