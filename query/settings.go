package query

import (
	"fmt"
	"strconv"

	"github.com/generalpy101/fix-life/entity"
)

const globalTimingLimitKey = "global_timing_limit"

// GetSetting reads a value from the key/value settings table. The
// second return reports whether the key exists.
func (db *Database) GetSetting(key string) (string, bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var value string
	err := db.Get(&value, "SELECT value FROM settings WHERE key = ?", key)
	if err != nil {
		if isNoRows(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("GetSetting: %w", err)
	}
	return value, true, nil
}

// SetSetting upserts a key/value pair.
func (db *Database) SetSetting(key, value string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.Exec(`
		INSERT INTO settings (key, value)
		VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("SetSetting: %w", err)
	}
	return nil
}

// GetGlobalTimingLimit returns the global limit in minutes, with a
// 60-minute default when unset or unparsable.
func (db *Database) GetGlobalTimingLimit() (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var value string
	err := db.Get(&value, "SELECT value FROM settings WHERE key = ?", globalTimingLimitKey)
	if err != nil {
		if isNoRows(err) {
			return DefaultGlobalTimingLimit, nil
		}
		return 0, fmt.Errorf("GetGlobalTimingLimit: %w", err)
	}
	limit, err := strconv.Atoi(value)
	if err != nil {
		return DefaultGlobalTimingLimit, nil
	}
	return limit, nil
}

// SetGlobalTimingLimit stores the global limit in minutes.
func (db *Database) SetGlobalTimingLimit(limit int) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.Exec(`
		INSERT INTO settings (key, value)
		VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		globalTimingLimitKey, strconv.Itoa(limit),
	)
	if err != nil {
		return fmt.Errorf("SetGlobalTimingLimit: %w", err)
	}
	return nil
}

// GetTimingSetting returns the limit row for one exe, zero values when
// none exists.
func (db *Database) GetTimingSetting(exeName string) (entity.TimingSetting, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	setting := entity.TimingSetting{ExeName: exeName}
	err := db.Get(&setting,
		"SELECT exe_name, max_time, notify_limit FROM timing_settings WHERE exe_name = ?",
		exeName,
	)
	if err != nil {
		if isNoRows(err) {
			return entity.TimingSetting{ExeName: exeName}, nil
		}
		return entity.TimingSetting{}, fmt.Errorf("GetTimingSetting: %w", err)
	}
	return setting, nil
}

// HasTimingSetting reports whether a limit row exists for the exe.
func (db *Database) HasTimingSetting(exeName string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var exists bool
	err := db.Get(&exists, "SELECT EXISTS(SELECT 1 FROM timing_settings WHERE exe_name = ?)", exeName)
	if err != nil {
		return false, fmt.Errorf("HasTimingSetting: %w", err)
	}
	return exists, nil
}

// SetTimingSetting upserts the limit for an exe. Only exes classified
// as games may carry a limit.
func (db *Database) SetTimingSetting(exeName string, maxTime, notifyLimit int) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	var isGame bool
	err := db.Get(&isGame, "SELECT is_game FROM is_game WHERE exe_name = ?", exeName)
	if err != nil {
		if isNoRows(err) {
			return fmt.Errorf("SetTimingSetting: %q is not classified as a game", exeName)
		}
		return fmt.Errorf("SetTimingSetting: %w", err)
	}
	if !isGame {
		return fmt.Errorf("SetTimingSetting: %q is not classified as a game", exeName)
	}

	_, err = db.Exec(`
		INSERT INTO timing_settings (exe_name, max_time, notify_limit)
		VALUES (?, ?, ?)
		ON CONFLICT(exe_name) DO UPDATE SET
		max_time = excluded.max_time, notify_limit = excluded.notify_limit`,
		exeName, maxTime, notifyLimit,
	)
	if err != nil {
		return fmt.Errorf("SetTimingSetting: %w", err)
	}
	return nil
}

// GetAllTimingSettings lists every per-game limit.
func (db *Database) GetAllTimingSettings() ([]entity.TimingSetting, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	settings := []entity.TimingSetting{}
	err := db.Select(&settings,
		"SELECT exe_name, max_time, notify_limit FROM timing_settings ORDER BY exe_name COLLATE NOCASE")
	if err != nil {
		return nil, fmt.Errorf("GetAllTimingSettings: %w", err)
	}
	return settings, nil
}

// RefreshTimeLimitList gives every classified game a default limit if
// it has none, leaving existing limits alone.
func (db *Database) RefreshTimeLimitList() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	games, err := db.gameNames()
	if err != nil {
		return fmt.Errorf("RefreshTimeLimitList: %w", err)
	}
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("RefreshTimeLimitList: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, exeName := range games {
		_, err = tx.Exec(`
			INSERT INTO timing_settings (exe_name, max_time, notify_limit)
			VALUES (?, ?, 0)
			ON CONFLICT(exe_name) DO NOTHING`,
			exeName, DefaultTimeLimit,
		)
		if err != nil {
			return fmt.Errorf("RefreshTimeLimitList: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("RefreshTimeLimitList: %w", err)
	}
	return nil
}
