package query

import (
	"fmt"

	"github.com/generalpy101/fix-life/entity"
)

// UpsertClassification creates or replaces the classification row for an
// exe. Classifying something as a game also gives it a default time
// limit; reclassifying as non-game removes any limit it had. Both
// happen in the same transaction.
func (db *Database) UpsertClassification(exeName string, isGame, userMarked bool) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("UpsertClassification: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.Exec(`
		INSERT INTO is_game (exe_name, is_game, user_marked)
		VALUES (?, ?, ?)
		ON CONFLICT(exe_name) DO UPDATE SET
		is_game=excluded.is_game, user_marked=excluded.user_marked`,
		exeName, boolToInt(isGame), boolToInt(userMarked),
	)
	if err != nil {
		return fmt.Errorf("UpsertClassification: %w", err)
	}

	if isGame {
		_, err = tx.Exec(`
			INSERT INTO timing_settings (exe_name, max_time, notify_limit)
			VALUES (?, ?, 0)
			ON CONFLICT(exe_name) DO NOTHING`,
			exeName, DefaultTimeLimit,
		)
	} else {
		_, err = tx.Exec(`DELETE FROM timing_settings WHERE exe_name = ?`, exeName)
	}
	if err != nil {
		return fmt.Errorf("UpsertClassification: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("UpsertClassification: %w", err)
	}
	return nil
}

// IsClassified reports whether the exe already has a classification row.
func (db *Database) IsClassified(exeName string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var exists bool
	err := db.Get(&exists, "SELECT EXISTS(SELECT 1 FROM is_game WHERE exe_name = ?)", exeName)
	if err != nil {
		return false, fmt.Errorf("IsClassified: %w", err)
	}
	return exists, nil
}

// GetIsGame returns the stored verdict for an exe. Unknown exes are not
// games.
func (db *Database) GetIsGame(exeName string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var isGame bool
	err := db.Get(&isGame, "SELECT is_game FROM is_game WHERE exe_name = ?", exeName)
	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("GetIsGame: %w", err)
	}
	return isGame, nil
}

// GetClassifiedNames lists every exe name with a classification row.
// The tracker seeds its seen-set from this at startup.
func (db *Database) GetClassifiedNames() ([]string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var names []string
	if err := db.Select(&names, "SELECT exe_name FROM is_game"); err != nil {
		return nil, fmt.Errorf("GetClassifiedNames: %w", err)
	}
	return names, nil
}

// GetGameNames lists exe names currently classified as games.
func (db *Database) GetGameNames() ([]string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.gameNames()
}

func (db *Database) gameNames() ([]string, error) {
	var names []string
	if err := db.Select(&names, "SELECT exe_name FROM is_game WHERE is_game = 1"); err != nil {
		return nil, fmt.Errorf("gameNames: %w", err)
	}
	return names, nil
}

// GetAllProcesses returns every classification row for the dashboard.
func (db *Database) GetAllProcesses() ([]entity.ClassificationRecord, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	records := []entity.ClassificationRecord{}
	err := db.Select(&records, "SELECT exe_name, is_game, user_marked FROM is_game ORDER BY is_game DESC, exe_name COLLATE NOCASE")
	if err != nil {
		return nil, fmt.Errorf("GetAllProcesses: %w", err)
	}
	return records, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
