package query

import (
	"fmt"

	"github.com/generalpy101/fix-life/entity"
)

// AddDuration adds delta seconds to today's row for the exe, creating
// the row when absent. daily_usage is kept in step in the same
// transaction.
func (db *Database) AddDuration(exeName string, delta int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	date := db.today()
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("AddDuration: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.Exec(`
		INSERT INTO timings (exe_name, date, duration)
		VALUES (?, ?, ?)
		ON CONFLICT(exe_name, date) DO UPDATE SET
		duration = duration + excluded.duration`,
		exeName, date, delta,
	)
	if err != nil {
		return fmt.Errorf("AddDuration: %w", err)
	}
	_, err = tx.Exec(`
		INSERT INTO daily_usage (date, total_time)
		VALUES (?, ?)
		ON CONFLICT(date) DO UPDATE SET
		total_time = total_time + excluded.total_time`,
		date, delta,
	)
	if err != nil {
		return fmt.Errorf("AddDuration: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("AddDuration: %w", err)
	}
	return nil
}

// SetDuration overwrites today's duration for the exe with an absolute
// value. Used only by the accounting loop's backfill path.
func (db *Database) SetDuration(exeName string, value int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	date := db.today()
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("SetDuration: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.Exec(`
		INSERT INTO timings (exe_name, date, duration)
		VALUES (?, ?, ?)
		ON CONFLICT(exe_name, date) DO UPDATE SET
		duration = excluded.duration`,
		exeName, date, value,
	)
	if err != nil {
		return fmt.Errorf("SetDuration: %w", err)
	}
	// Recompute the daily total rather than overwrite it, so a backfill
	// for one game cannot clobber time already booked to others.
	_, err = tx.Exec(`
		INSERT INTO daily_usage (date, total_time)
		VALUES (?, (SELECT COALESCE(SUM(duration), 0) FROM timings WHERE date = ?))
		ON CONFLICT(date) DO UPDATE SET
		total_time = excluded.total_time`,
		date, date,
	)
	if err != nil {
		return fmt.Errorf("SetDuration: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("SetDuration: %w", err)
	}
	return nil
}

// GetTimingForExe returns today's accumulated seconds for the exe, zero
// when no row exists yet.
func (db *Database) GetTimingForExe(exeName string) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var duration int64
	err := db.Get(&duration,
		"SELECT duration FROM timings WHERE exe_name = ? AND date = ?",
		exeName, db.today(),
	)
	if err != nil {
		if isNoRows(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("GetTimingForExe: %w", err)
	}
	return duration, nil
}

// GetTimingsToday lists every timing row for the current date.
func (db *Database) GetTimingsToday() ([]entity.DailyTiming, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.timingsToday()
}

func (db *Database) timingsToday() ([]entity.DailyTiming, error) {
	timings := []entity.DailyTiming{}
	err := db.Select(&timings,
		"SELECT exe_name, date, duration FROM timings WHERE date = ? ORDER BY duration DESC",
		db.today(),
	)
	if err != nil {
		return nil, fmt.Errorf("timingsToday: %w", err)
	}
	return timings, nil
}

// GetTotalTimeToday sums today's durations across all exes.
func (db *Database) GetTotalTimeToday() (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var total int64
	err := db.Get(&total,
		"SELECT COALESCE(SUM(duration), 0) FROM timings WHERE date = ?",
		db.today(),
	)
	if err != nil {
		return 0, fmt.Errorf("GetTotalTimeToday: %w", err)
	}
	return total, nil
}

// GetDailyTimings returns the full timing history, newest dates first.
func (db *Database) GetDailyTimings() ([]entity.DailyTiming, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	timings := []entity.DailyTiming{}
	err := db.Select(&timings,
		"SELECT exe_name, date, duration FROM timings ORDER BY date DESC, duration DESC")
	if err != nil {
		return nil, fmt.Errorf("GetDailyTimings: %w", err)
	}
	return timings, nil
}
