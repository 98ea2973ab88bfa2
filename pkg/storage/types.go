// Package storage holds the key/value backends the ledger persists
// into.  Backends register a factory by name and are selected by
// configuration.
package storage

// Storage is a flat key/value store.  Get returns a nil value and no
// error for keys that are not present.  Keys lists, in byte order,
// every key that starts with prefix.
type Storage interface {
	Get([]byte) ([]byte, error)
	Put([]byte, []byte) error
	Del([]byte) error
	Keys(prefix []byte) ([][]byte, error)

	Close() error
}
