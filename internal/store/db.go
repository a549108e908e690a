// Package store persists saved number combinations.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// MaxCombinations is the number of saved combinations kept; older ones are
// dropped on save and import.
const MaxCombinations = 50

// ExportVersion is written into every export document.
const ExportVersion = "1.0"

// Supported drivers.
const (
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
)

var (
	ErrNotFound           = errors.New("combination not found")
	ErrInvalidCombination = errors.New("invalid combination")
	ErrInvalidImport      = errors.New("invalid import document")
)

// DB represents the combination store. Lists are ordered newest first.
type DB interface {
	Close() error
	Migrate() error
	Save(c *Combination) error
	Get(id string) (*Combination, error)
	Delete(id string) (bool, error)
	List() ([]Combination, error)
	Count() (int, error)
	Clear() error
	Import(doc ExportDocument) (int, error)
}

// Combination is a saved number set.
type Combination struct {
	ID        string    `json:"id"`
	Main      []int     `json:"main"`
	Powerball int       `json:"powerball"`
	Entropy   string    `json:"entropy,omitempty"`
	Quality   float64   `json:"synthetic_quality,omitempty"`
	CreatedAt time.Time `json:"date"`
}

// ExportDocument is the portable form of the saved list.
type ExportDocument struct {
	ExportDate   time.Time     `json:"exportDate"`
	Version      string        `json:"version"`
	Combinations []Combination `json:"combinations"`
	Total        int           `json:"total"`
}

// Info describes the storage footprint.
type Info struct {
	Combinations int    `json:"combinations"`
	SizeBytes    int    `json:"sizeBytes"`
	SizeKB       string `json:"sizeKB"`
	Max          int    `json:"maxCombinations"`
}

// Open returns a migrated store for driver at path. An empty badger path
// opens an in-memory store.
func Open(driver, path string) (DB, error) {
	var (
		db  DB
		err error
	)
	switch driver {
	case DriverSQLite, "":
		db, err = NewSQLiteDB(path)
	case DriverBadger:
		db, err = NewBadgerDB(path)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Export snapshots db into an export document.
func Export(db DB, now time.Time) (*ExportDocument, error) {
	list, err := db.List()
	if err != nil {
		return nil, err
	}
	return &ExportDocument{
		ExportDate:   now.UTC(),
		Version:      ExportVersion,
		Combinations: list,
		Total:        len(list),
	}, nil
}

// StorageInfo reports the serialized size of the saved list.
func StorageInfo(db DB) (Info, error) {
	list, err := db.List()
	if err != nil {
		return Info{}, err
	}
	var size int
	if len(list) > 0 {
		data, err := json.Marshal(list)
		if err != nil {
			return Info{}, err
		}
		size = len(data)
	}
	return Info{
		Combinations: len(list),
		SizeBytes:    size,
		SizeKB:       fmt.Sprintf("%.2f", float64(size)/1024),
		Max:          MaxCombinations,
	}, nil
}

// prepare validates c and fills in the id and creation time when missing.
func prepare(c *Combination, now time.Time) error {
	if len(c.Main) == 0 {
		return fmt.Errorf("%w: no main numbers", ErrInvalidCombination)
	}
	if c.Powerball < 1 {
		return fmt.Errorf("%w: powerball %d", ErrInvalidCombination, c.Powerball)
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.Main = slices.Clone(c.Main)
	slices.Sort(c.Main)
	return nil
}

// importable filters doc down to well-formed records not already in existing,
// preserving document order.
func importable(doc ExportDocument, existing []Combination) ([]Combination, error) {
	if doc.Combinations == nil {
		return nil, fmt.Errorf("%w: missing combinations", ErrInvalidImport)
	}
	seen := make(map[string]struct{}, len(existing)+len(doc.Combinations))
	for _, c := range existing {
		seen[c.ID] = struct{}{}
	}

	var out []Combination
	for _, c := range doc.Combinations {
		if c.ID == "" || c.CreatedAt.IsZero() || len(c.Main) == 0 || c.Powerball < 1 {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		c.CreatedAt = c.CreatedAt.UTC()
		c.Main = slices.Clone(c.Main)
		slices.Sort(c.Main)
		out = append(out, c)
	}
	return out, nil
}
