package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteDB implements the DB interface using SQLite
type SQLiteDB struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteDB creates a new SQLite database connection
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// :memory: databases are per connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return &SQLiteDB{db: db, now: time.Now}, nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Migrate runs database migrations
func (s *SQLiteDB) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS combinations (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			main_json TEXT NOT NULL,
			powerball INTEGER NOT NULL,
			entropy TEXT NOT NULL DEFAULT '',
			quality REAL NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_combinations_created_at ON combinations(created_at DESC)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Save stores c as the newest combination and prunes the oldest beyond
// MaxCombinations.
func (s *SQLiteDB) Save(c *Combination) error {
	if err := prepare(c, s.now()); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertCombination(tx, c); err != nil {
		return err
	}
	if err := prune(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func insertCombination(tx *sql.Tx, c *Combination) error {
	mainJSON, err := json.Marshal(c.Main)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`INSERT INTO combinations (id, main_json, powerball, entropy, quality, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, string(mainJSON), c.Powerball, c.Entropy, c.Quality, c.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert combination %s: %w", c.ID, err)
	}
	return nil
}

func prune(tx *sql.Tx) error {
	_, err := tx.Exec(`DELETE FROM combinations WHERE seq NOT IN (
		SELECT seq FROM combinations ORDER BY seq DESC LIMIT ?)`, MaxCombinations)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCombination(row rowScanner) (*Combination, error) {
	var (
		c         Combination
		mainJSON  string
		createdAt string
	)
	if err := row.Scan(&c.ID, &mainJSON, &c.Powerball, &c.Entropy, &c.Quality, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(mainJSON), &c.Main); err != nil {
		return nil, fmt.Errorf("decode main numbers for %s: %w", c.ID, err)
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("decode created_at for %s: %w", c.ID, err)
	}
	c.CreatedAt = t
	return &c, nil
}

const selectColumns = `SELECT id, main_json, powerball, entropy, quality, created_at FROM combinations`

// Get retrieves a combination by ID
func (s *SQLiteDB) Get(id string) (*Combination, error) {
	c, err := scanCombination(s.db.QueryRow(selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

// Delete removes a combination, reporting whether it existed.
func (s *SQLiteDB) Delete(id string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM combinations WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns every saved combination, newest first.
func (s *SQLiteDB) List() ([]Combination, error) {
	rows, err := s.db.Query(selectColumns + ` ORDER BY seq DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []Combination{}
	for rows.Next() {
		c, err := scanCombination(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *c)
	}
	return list, rows.Err()
}

// Count returns the number of saved combinations.
func (s *SQLiteDB) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM combinations`).Scan(&n)
	return n, err
}

// Clear removes every combination.
func (s *SQLiteDB) Clear() error {
	_, err := s.db.Exec(`DELETE FROM combinations`)
	return err
}

// Import adds the valid, previously unseen combinations of doc ahead of the
// existing ones and returns how many were added.
func (s *SQLiteDB) Import(doc ExportDocument) (int, error) {
	existing, err := s.List()
	if err != nil {
		return 0, err
	}
	fresh, err := importable(doc, existing)
	if err != nil {
		return 0, err
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	// oldest first so the document's first record ends up newest
	for i := len(fresh) - 1; i >= 0; i-- {
		if err := insertCombination(tx, &fresh[i]); err != nil {
			return 0, err
		}
	}
	if err := prune(tx); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(fresh), nil
}
