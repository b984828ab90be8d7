// Package image stores named flash-image fixtures — whole-device
// snapshots — in a single-file
// go.etcd.io/bbolt database, one key per name, each value prefixed
// with a github.com/minio/sha256-simd digest of the uncompressed
// image so a corrupted fixture fails loudly at Get rather than
// feeding bad bytes into a restore test. Only this package's own
// tests use it; the restore tests and the ffsrestore CLI do not.
//
// This is adapted from the teacher's storage/bolt backend, which used
// bbolt the same way (one small embedded KV store per backend
// instance) but keyed by content-addressed block id; here the key is
// a human-given fixture name and the value is a whole erased-flash
// image, which is why the backend collapses to a single bucket
// instead of bolt's three (metadata/data/name).
package image

import (
	"bytes"
	"fmt"

	"github.com/golang/snappy"
	sha256 "github.com/minio/sha256-simd"
	bolt "go.etcd.io/bbolt"

	"github.com/go-ffs/ffs/mlog"
)

const digestSize = sha256.Size

var imagesBucket = []byte("images")

// Store is a bbolt-backed repository of named flash images.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) the fixture database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("image: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(imagesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("image: init %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Put stores raw under name, snappy-compressed. Flash-image fixtures
// are mostly erased (0xff) bytes and compress well, which keeps a
// fixture database of many multi-kilobyte images small without
// inventing a new dependency — snappy is already exercised by this
// module's teacher for exactly this "compress before persisting"
// role.
func (s *Store) Put(name string, raw []byte) error {
	mlog.Printf2("flashdev/image/image", "Store.Put"+mlog.Fields("name", name, "bytes", len(raw)))
	digest := sha256.Sum256(raw)
	compressed := snappy.Encode(nil, raw)
	value := make([]byte, 0, digestSize+len(compressed))
	value = append(value, digest[:]...)
	value = append(value, compressed...)
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(imagesBucket).Put([]byte(name), value)
	})
}

// Get retrieves, decompresses, and integrity-checks the image stored
// under name. It returns (nil, nil) if no such image exists, and an
// error if the stored digest no longer matches the decompressed
// bytes — catching on-disk fixture corruption before it confuses a
// test with an inscrutable restore failure instead.
func (s *Store) Get(name string) ([]byte, error) {
	var stored []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(imagesBucket).Get([]byte(name))
		if v != nil {
			stored = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, nil
	}
	if len(stored) < digestSize {
		return nil, fmt.Errorf("image: %s: truncated entry", name)
	}
	wantDigest, compressed := stored[:digestSize], stored[digestSize:]
	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("image: decompress %s: %w", name, err)
	}
	gotDigest := sha256.Sum256(raw)
	if !bytes.Equal(gotDigest[:], wantDigest) {
		return nil, fmt.Errorf("image: %s: digest mismatch, fixture corrupt", name)
	}
	return raw, nil
}

// Names lists every fixture name currently stored.
func (s *Store) Names() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(imagesBucket).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}
