// Package ledger records verified builds: which contract version
// produced which code hash, and the packaged sources it was built
// from.
package ledger

import (
	"encoding/json"
	"path"
	"sort"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/klauspost/compress/zstd"

	"github.com/the-maldridge/scbuild/pkg/packaged"
	"github.com/the-maldridge/scbuild/pkg/storage"
)

var (
	encoder, _ = zstd.NewWriter(nil)
	decoder, _ = zstd.NewReader(nil)
)

// An Entry is the outcome of one verification.
type Entry struct {
	Contract     string
	Version      string
	CodeHash     string
	PackagedHash string
	Reproducible bool
	VerifiedAt   time.Time
}

// Ledger persists entries and sources into a storage backend.
type Ledger struct {
	l hclog.Logger
	s storage.Storage
}

// New returns a ledger backed by s.
func New(l hclog.Logger, s storage.Storage) *Ledger {
	return &Ledger{
		l: l.Named("ledger"),
		s: s,
	}
}

// Record stores the entry.  Only a reproducible entry becomes the
// contract's latest, and only then are the packaged sources, if given,
// stored under the code hash: sources that did not rebuild to the
// same hash are not the sources of that code.
func (lg *Ledger) Record(e Entry, src *packaged.Project) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if err := lg.s.Put(entryKey(e.Contract, e.CodeHash), data); err != nil {
		return err
	}
	if !e.Reproducible {
		lg.l.Warn("Recorded unreproducible build", "contract", e.Contract, "version", e.Version,
			"hash", e.CodeHash, "packaged", e.PackagedHash)
		return nil
	}

	if err := lg.s.Put(latestKey(e.Contract), []byte(e.CodeHash)); err != nil {
		return err
	}
	if src != nil {
		raw, err := src.Encode()
		if err != nil {
			return err
		}
		compressed := encoder.EncodeAll(raw, nil)
		if err := lg.s.Put(sourceKey(e.CodeHash), compressed); err != nil {
			return err
		}
		lg.l.Debug("Stored sources", "hash", e.CodeHash, "size", len(raw), "compressed", len(compressed))
	}
	lg.l.Info("Recorded verification", "contract", e.Contract, "version", e.Version, "hash", e.CodeHash)
	return nil
}

// Lookup returns the entry of a contract for a code hash.
func (lg *Ledger) Lookup(contract, hash string) (*Entry, bool, error) {
	data, err := lg.s.Get(entryKey(contract, hash))
	if err != nil || data == nil {
		return nil, false, err
	}
	e := new(Entry)
	if err := json.Unmarshal(data, e); err != nil {
		return nil, false, err
	}
	return e, true, nil
}

// Latest returns the most recently recorded entry of a contract.
func (lg *Ledger) Latest(contract string) (*Entry, bool, error) {
	hash, err := lg.s.Get(latestKey(contract))
	if err != nil || hash == nil {
		return nil, false, err
	}
	return lg.Lookup(contract, string(hash))
}

// History returns every entry recorded for a contract, oldest first.
func (lg *Ledger) History(contract string) ([]Entry, error) {
	keys, err := lg.s.Keys(entryKey(contract, ""))
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(keys))
	for _, k := range keys {
		data, err := lg.s.Get(k)
		if err != nil {
			return nil, err
		}
		if data == nil {
			continue
		}
		var e Entry
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].VerifiedAt.Before(out[j].VerifiedAt) })
	return out, nil
}

// Source returns the packaged sources stored for a code hash.
func (lg *Ledger) Source(hash string) (*packaged.Project, bool, error) {
	compressed, err := lg.s.Get(sourceKey(hash))
	if err != nil || compressed == nil {
		return nil, false, err
	}
	raw, err := decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, false, err
	}
	p, err := packaged.Decode(raw)
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}

// Entries live under verify/<contract>/<hash>, so the trailing slash
// of an empty hash gives the prefix of all of a contract's entries.
func entryKey(contract, hash string) []byte {
	return []byte(path.Join("verify", contract) + "/" + hash)
}

func latestKey(contract string) []byte {
	return []byte(path.Join("latest", contract))
}

func sourceKey(hash string) []byte {
	return []byte(path.Join("source", hash))
}
