// Package mem provides a storage backend that lives only as long as
// the process.  It is used for one-off runs and in tests.
package mem

import (
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/scbuild/pkg/storage"
)

type memStore struct {
	mu sync.Mutex
	m  map[string][]byte
}

func init() {
	storage.RegisterCallback(newFactory)
}

func newFactory() {
	storage.RegisterFactory("memory", func(hclog.Logger, string) (storage.Storage, error) {
		return New(), nil
	})
}

// New returns an empty in-memory store.
func New() storage.Storage {
	return &memStore{m: make(map[string][]byte)}
}

func (s *memStore) Get(k []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[string(k)]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (s *memStore) Put(k, v []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[string(k)] = append([]byte(nil), v...)
	return nil
}

func (s *memStore) Del(k []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, string(k))
	return nil
}

func (s *memStore) Keys(prefix []byte) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for k := range s.m {
		if strings.HasPrefix(k, string(prefix)) {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	keys := make([][]byte, len(names))
	for i, k := range names {
		keys[i] = []byte(k)
	}
	return keys, nil
}

func (s *memStore) Close() error { return nil }
