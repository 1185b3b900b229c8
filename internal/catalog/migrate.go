package catalog

import (
	"database/sql"
	"embed"
	"fmt"
	"sort"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies every embedded migration in filename order inside a
// single transaction, then seeds the 72-slot weekly grid (I5) if it is
// not already present. There is no migration framework dependency here:
// the migration set is small, append-only, and never needs down
// migrations, so a plain ordered exec loop is simpler than pulling in a
// tool built for branching schema histories (see DESIGN.md).
func Migrate(db *sql.DB) error {
	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading embedded migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning migration transaction: %w", err)
	}
	defer tx.Rollback()

	for _, name := range names {
		body, err := migrationFiles.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(body)); err != nil {
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing migrations: %w", err)
	}
	return seedTimeSlots(db)
}

// seedTimeSlots populates the 72 weekly slots on first run. It is a
// no-op if the table is already populated, since I5 forbids mutating
// the grid after initialization.
func seedTimeSlots(db *sql.DB) error {
	var count int
	if err := db.QueryRow(`SELECT count(*) FROM time_slots`).Scan(&count); err != nil {
		return fmt.Errorf("checking time_slots: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO time_slots (day, start_minute, end_minute, grid_index)
		VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	index := 0
	for day := 0; day < 3; day++ {
		for slot := 0; slot < SlotsPerDay; slot++ {
			start := 7*60 + slot*30
			end := start + 30
			if _, err := stmt.Exec(day, start, end, index); err != nil {
				return fmt.Errorf("seeding slot day=%d slot=%d: %w", day, slot, err)
			}
			index++
		}
	}
	return tx.Commit()
}
