package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const combinationsKey = "picker/combinations"

// BadgerDB keeps the whole saved list as one JSON array under a single key.
type BadgerDB struct {
	db  *badger.DB
	now func() time.Time
}

// NewBadgerDB opens a Badger store at path, or an in-memory one when path is
// empty.
func NewBadgerDB(path string) (*BadgerDB, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &BadgerDB{db: db, now: time.Now}, nil
}

func (b *BadgerDB) Close() error {
	return b.db.Close()
}

// Migrate is a no-op; the list key is created on first save.
func (b *BadgerDB) Migrate() error {
	return nil
}

func readList(txn *badger.Txn) ([]Combination, error) {
	item, err := txn.Get([]byte(combinationsKey))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return []Combination{}, nil
		}
		return nil, err
	}
	var list []Combination
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &list)
	}); err != nil {
		return nil, fmt.Errorf("decode combinations: %w", err)
	}
	if list == nil {
		list = []Combination{}
	}
	return list, nil
}

func writeList(txn *badger.Txn, list []Combination) error {
	if len(list) > MaxCombinations {
		list = list[:MaxCombinations]
	}
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return txn.Set([]byte(combinationsKey), data)
}

func (b *BadgerDB) Save(c *Combination) error {
	if err := prepare(c, b.now()); err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		list, err := readList(txn)
		if err != nil {
			return err
		}
		if slices.ContainsFunc(list, func(x Combination) bool { return x.ID == c.ID }) {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidCombination, c.ID)
		}
		return writeList(txn, append([]Combination{*c}, list...))
	})
}

func (b *BadgerDB) Get(id string) (*Combination, error) {
	var found *Combination
	err := b.db.View(func(txn *badger.Txn) error {
		list, err := readList(txn)
		if err != nil {
			return err
		}
		for i := range list {
			if list[i].ID == id {
				found = &list[i]
				return nil
			}
		}
		return ErrNotFound
	})
	return found, err
}

func (b *BadgerDB) Delete(id string) (bool, error) {
	var deleted bool
	err := b.db.Update(func(txn *badger.Txn) error {
		list, err := readList(txn)
		if err != nil {
			return err
		}
		before := len(list)
		list = slices.DeleteFunc(list, func(c Combination) bool { return c.ID == id })
		if len(list) == before {
			return nil
		}
		deleted = true
		return writeList(txn, list)
	})
	return deleted, err
}

func (b *BadgerDB) List() ([]Combination, error) {
	var list []Combination
	err := b.db.View(func(txn *badger.Txn) error {
		var err error
		list, err = readList(txn)
		return err
	})
	return list, err
}

func (b *BadgerDB) Count() (int, error) {
	list, err := b.List()
	return len(list), err
}

func (b *BadgerDB) Clear() error {
	return b.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(combinationsKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

func (b *BadgerDB) Import(doc ExportDocument) (int, error) {
	var added int
	err := b.db.Update(func(txn *badger.Txn) error {
		list, err := readList(txn)
		if err != nil {
			return err
		}
		fresh, err := importable(doc, list)
		if err != nil {
			return err
		}
		if len(fresh) == 0 {
			return nil
		}
		added = len(fresh)
		return writeList(txn, append(fresh, list...))
	})
	return added, err
}
