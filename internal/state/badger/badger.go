// Package badger stores region snapshots in an embedded Badger database.
package badger

import (
	"context"
	"encoding/json"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/agentstation/modelwatch/pkg/constants"
	"github.com/agentstation/modelwatch/pkg/errors"
	"github.com/agentstation/modelwatch/pkg/state"
)

const keyPrefix = "model_state/"

// Backend keeps one JSON value per region under model_state/<region>.
type Backend struct {
	db *badger.DB
}

var _ state.Backend = (*Backend)(nil)

// Open opens or creates a database in dir.
func Open(dir string) (*Backend, error) {
	if dir == "" {
		return nil, errors.NewConfigError("badger", "directory is required", nil)
	}
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", dir, err)
	}
	return open(badger.DefaultOptions(dir))
}

// OpenInMemory opens a database that lives only in memory.
func OpenInMemory() (*Backend, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) (*Backend, error) {
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.WrapResource("open", "badger", opts.Dir, err)
	}
	return &Backend{db: db}, nil
}

// Load implements state.Backend.
func (b *Backend) Load(_ context.Context, region string) (*state.Record, error) {
	var doc state.Document
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + region))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, errors.NewNotFoundError("state record", region)
	}
	if err != nil {
		return nil, errors.WrapResource("get", "state record", region, err)
	}
	return doc.Record(), nil
}

// Put implements state.Backend.
func (b *Backend) Put(_ context.Context, rec state.Record) error {
	data, err := json.Marshal(rec.Document())
	if err != nil {
		return errors.WrapParse("json", rec.Region, err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+rec.Region), data)
	})
}

// Regions lists every region with a stored record.
func (b *Backend) Regions() ([]string, error) {
	var regions []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			regions = append(regions, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	return regions, err
}

// Close implements state.Backend.
func (b *Backend) Close() error {
	return b.db.Close()
}
