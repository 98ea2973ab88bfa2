// Package bc stores ledger records in a bitcask database on local
// disk.
package bc

import (
	"bytes"
	"errors"
	"sort"

	"git.mills.io/prologic/bitcask"
	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/scbuild/pkg/storage"
)

const (
	maxKeySize   = 1024
	maxValueSize = 32 << 20
)

type bcStore struct {
	l  hclog.Logger
	db *bitcask.Bitcask
}

func init() {
	storage.RegisterCallback(func() {
		storage.RegisterFactory("bitcask", open)
	})
}

// open creates or reopens the database in dir.  Writes are synced
// so that a recorded verification survives a crash of the service.
func open(l hclog.Logger, dir string) (storage.Storage, error) {
	l = l.Named("bitcask")
	if dir == "" {
		l.Error("A ledger path must be set")
		return nil, errors.New("bitcask: no path configured")
	}

	db, err := bitcask.Open(dir,
		bitcask.WithMaxKeySize(maxKeySize),
		bitcask.WithMaxValueSize(maxValueSize),
		bitcask.WithSync(true),
	)
	if err != nil {
		l.Error("Error opening ledger database", "path", dir, "error", err)
		return nil, err
	}
	l.Debug("Opened ledger database", "path", dir, "keys", db.Len())
	return &bcStore{l: l, db: db}, nil
}

func (s *bcStore) Get(k []byte) ([]byte, error) {
	v, err := s.db.Get(k)
	if errors.Is(err, bitcask.ErrKeyNotFound) {
		return nil, nil
	}
	return v, err
}

func (s *bcStore) Put(k, v []byte) error {
	if len(v) > maxValueSize {
		s.l.Warn("Value exceeds the database limit", "key", string(k), "size", len(v))
	}
	return s.db.Put(k, v)
}

func (s *bcStore) Del(k []byte) error {
	return s.db.Delete(k)
}

func (s *bcStore) Keys(prefix []byte) ([][]byte, error) {
	var keys [][]byte
	err := s.db.Scan(prefix, func(k []byte) error {
		keys = append(keys, append([]byte(nil), k...))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i], keys[j]) < 0 })
	return keys, nil
}

func (s *bcStore) Close() error {
	return s.db.Close()
}
