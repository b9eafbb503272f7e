package query

import "fmt"

// IsPopulatedToday reports whether the one-time daily initialization
// already ran for the current date.
func (db *Database) IsPopulatedToday() (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var populated bool
	err := db.Get(&populated,
		"SELECT is_populated FROM is_data_populated_today WHERE date = ?",
		db.today(),
	)
	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("IsPopulatedToday: %w", err)
	}
	return populated, nil
}

// PopulateToday runs the daily bootstrap: pre-create zero-duration
// timing rows for every known game, clear the violation log so the
// escalation state machine starts over, and mark the date done.
func (db *Database) PopulateToday() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	games, err := db.gameNames()
	if err != nil {
		return fmt.Errorf("PopulateToday: %w", err)
	}

	date := db.today()
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("PopulateToday: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, exeName := range games {
		_, err = tx.Exec(`
			INSERT INTO timings (exe_name, date, duration)
			VALUES (?, ?, 0)
			ON CONFLICT(exe_name, date) DO NOTHING`,
			exeName, date,
		)
		if err != nil {
			return fmt.Errorf("PopulateToday: %w", err)
		}
	}

	// Fresh start for the day.
	if _, err = tx.Exec(`DELETE FROM violations`); err != nil {
		return fmt.Errorf("PopulateToday: %w", err)
	}
	_, err = tx.Exec(`
		INSERT INTO is_data_populated_today (date, is_populated)
		VALUES (?, 1)
		ON CONFLICT(date) DO UPDATE SET is_populated = 1`,
		date,
	)
	if err != nil {
		return fmt.Errorf("PopulateToday: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("PopulateToday: %w", err)
	}
	return nil
}
