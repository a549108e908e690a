package store

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// forEachDriver runs fn against a fresh SQLite file and an in-memory Badger
// store.
func forEachDriver(t *testing.T, fn func(t *testing.T, db DB)) {
	t.Helper()
	drivers := map[string]func(t *testing.T) string{
		DriverSQLite: func(t *testing.T) string { return filepath.Join(t.TempDir(), "picker.db") },
		DriverBadger: func(*testing.T) string { return "" },
	}
	for name, path := range drivers {
		t.Run(name, func(t *testing.T) {
			db, err := Open(name, path(t))
			require.NoError(t, err)
			t.Cleanup(func() { db.Close() })
			fn(t, db)
		})
	}
}

func combo(i int) *Combination {
	return &Combination{
		Main:      []int{i%60 + 5, i%60 + 1, i%60 + 3, i%60 + 2, i%60 + 4},
		Powerball: i%26 + 1,
		Entropy:   "crypto",
		Quality:   87.5,
	}
}

func TestSaveAndGet(t *testing.T) {
	forEachDriver(t, func(t *testing.T, db DB) {
		c := combo(1)
		require.NoError(t, db.Save(c))
		require.NotEmpty(t, c.ID)
		assert.Equal(t, []int{2, 3, 4, 5, 6}, c.Main)
		assert.False(t, c.CreatedAt.IsZero())

		got, err := db.Get(c.ID)
		require.NoError(t, err)
		assert.Equal(t, c.ID, got.ID)
		assert.Equal(t, c.Main, got.Main)
		assert.Equal(t, c.Powerball, got.Powerball)
		assert.Equal(t, "crypto", got.Entropy)
		assert.Equal(t, 87.5, got.Quality)
		assert.True(t, c.CreatedAt.Equal(got.CreatedAt))

		_, err = db.Get("missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSaveRejectsInvalid(t *testing.T) {
	forEachDriver(t, func(t *testing.T, db DB) {
		assert.ErrorIs(t, db.Save(&Combination{Powerball: 3}), ErrInvalidCombination)
		assert.ErrorIs(t, db.Save(&Combination{Main: []int{1}, Powerball: 0}), ErrInvalidCombination)
	})
}

func TestListNewestFirstAndCapped(t *testing.T) {
	forEachDriver(t, func(t *testing.T, db DB) {
		var ids []string
		for i := 0; i < MaxCombinations+5; i++ {
			c := combo(i)
			require.NoError(t, db.Save(c))
			ids = append(ids, c.ID)
		}

		list, err := db.List()
		require.NoError(t, err)
		require.Len(t, list, MaxCombinations)
		assert.Equal(t, ids[len(ids)-1], list[0].ID)
		assert.Equal(t, ids[5], list[len(list)-1].ID)

		n, err := db.Count()
		require.NoError(t, err)
		assert.Equal(t, MaxCombinations, n)

		_, err = db.Get(ids[0])
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeleteAndClear(t *testing.T) {
	forEachDriver(t, func(t *testing.T, db DB) {
		a, b := combo(1), combo(2)
		require.NoError(t, db.Save(a))
		require.NoError(t, db.Save(b))

		ok, err := db.Delete(a.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = db.Delete(a.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		n, _ := db.Count()
		assert.Equal(t, 1, n)

		require.NoError(t, db.Clear())
		list, err := db.List()
		require.NoError(t, err)
		assert.Empty(t, list)
		require.NoError(t, db.Clear())
	})
}

func TestExportImport(t *testing.T) {
	forEachDriver(t, func(t *testing.T, db DB) {
		existing := combo(1)
		require.NoError(t, db.Save(existing))

		now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		doc := ExportDocument{
			Version: ExportVersion,
			Combinations: []Combination{
				{ID: "a", Main: []int{9, 1, 2, 3, 4}, Powerball: 7, CreatedAt: now},
				{ID: "b", Main: []int{5, 6, 7, 8, 9}, Powerball: 8, CreatedAt: now},
				{ID: existing.ID, Main: []int{1, 2, 3, 4, 5}, Powerball: 1, CreatedAt: now},
				{ID: "", Main: []int{1, 2, 3, 4, 5}, Powerball: 1, CreatedAt: now},
				{ID: "no-main", Powerball: 1, CreatedAt: now},
				{ID: "no-date", Main: []int{1, 2, 3, 4, 5}, Powerball: 1},
				{ID: "no-ball", Main: []int{1, 2, 3, 4, 5}, CreatedAt: now},
			},
		}

		added, err := db.Import(doc)
		require.NoError(t, err)
		assert.Equal(t, 2, added)

		list, err := db.List()
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "a", list[0].ID)
		assert.Equal(t, []int{1, 2, 3, 4, 9}, list[0].Main)
		assert.Equal(t, "b", list[1].ID)
		assert.Equal(t, existing.ID, list[2].ID)

		again, err := db.Import(doc)
		require.NoError(t, err)
		assert.Zero(t, again)

		_, err = db.Import(ExportDocument{Version: ExportVersion})
		assert.ErrorIs(t, err, ErrInvalidImport)

		exported, err := Export(db, now)
		require.NoError(t, err)
		assert.Equal(t, ExportVersion, exported.Version)
		assert.Equal(t, 3, exported.Total)
		assert.Equal(t, now, exported.ExportDate)
	})
}

func TestImportTruncates(t *testing.T) {
	forEachDriver(t, func(t *testing.T, db DB) {
		require.NoError(t, db.Save(combo(0)))

		now := time.Now().UTC()
		doc := ExportDocument{Version: ExportVersion}
		for i := 0; i < MaxCombinations; i++ {
			doc.Combinations = append(doc.Combinations, Combination{
				ID: fmt.Sprintf("imp-%02d", i), Main: []int{1, 2, 3, 4, 5}, Powerball: 1, CreatedAt: now,
			})
		}

		added, err := db.Import(doc)
		require.NoError(t, err)
		assert.Equal(t, MaxCombinations, added)

		list, err := db.List()
		require.NoError(t, err)
		require.Len(t, list, MaxCombinations)
		assert.Equal(t, "imp-00", list[0].ID)
		assert.Equal(t, "imp-49", list[MaxCombinations-1].ID)
	})
}

func TestStorageInfo(t *testing.T) {
	forEachDriver(t, func(t *testing.T, db DB) {
		info, err := StorageInfo(db)
		require.NoError(t, err)
		assert.Zero(t, info.Combinations)
		assert.Zero(t, info.SizeBytes)
		assert.Equal(t, "0.00", info.SizeKB)
		assert.Equal(t, MaxCombinations, info.Max)

		require.NoError(t, db.Save(combo(3)))
		info, err = StorageInfo(db)
		require.NoError(t, err)
		assert.Equal(t, 1, info.Combinations)
		assert.Positive(t, info.SizeBytes)
	})
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("postgres", "")
	assert.Error(t, err)
}
