package query

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const (
	TableDatabaseVersion = "database_version"

	// DefaultTimeLimit is the per-game limit (minutes) assigned when an
	// exe is first classified as a game.
	DefaultTimeLimit = 60
	// DefaultGlobalTimingLimit is the fallback global limit in minutes.
	DefaultGlobalTimingLimit = 60
)

// Database wraps the sqlite store. Every exported method takes the
// storage-wide mutex for its whole duration: the three tracker loops
// and the web server all serialize through it. Each call is a single
// transaction; there is no isolation across calls.
type Database struct {
	*sqlx.DB
	mu    sync.Mutex
	clock clockwork.Clock
}

func NewDatabase(db *sqlx.DB) *Database {
	return &Database{DB: db, clock: clockwork.NewRealClock()}
}

// today returns the current tracking date as YYYY-MM-DD.
func (db *Database) today() string {
	return db.clock.Now().Format("2006-01-02")
}

func dataDir() string {
	dir := filepath.Join(xdg.DataHome, "fix-life")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Error().Err(err).Str("dir", dir).Msg("cannot create data directory")
	}
	return dir
}

// InitDatabase opens (or creates) the tracker database. An empty path
// places game_tracker.db in the user data directory.
func InitDatabase(path string) (*Database, error) {
	if path == "" {
		path = filepath.Join(dataDir(), "game_tracker.db")
	}
	dbTemp, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("InitDatabase: %w", err)
	}

	db := NewDatabase(dbTemp)

	exist, err := db.tableExists(TableDatabaseVersion)
	if err != nil {
		return nil, fmt.Errorf("InitDatabase: %w", err)
	}
	if exist {
		if err := db.updateDb(); err != nil {
			return nil, err
		}
		return db, nil
	}

	if err := db.createSchema(); err != nil {
		return nil, err
	}
	return db, nil
}

func (db *Database) tableExists(tableName string) (bool, error) {
	query := `
		SELECT count(name)
		FROM sqlite_master
		WHERE type='table' AND name=?
	`
	var count int
	if err := db.QueryRow(query, tableName).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (db *Database) createSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS is_game (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			exe_name TEXT UNIQUE,
			is_game INTEGER DEFAULT 0,
			user_marked INTEGER DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS timings (
			exe_name TEXT NOT NULL,
			date TEXT NOT NULL,
			duration INTEGER DEFAULT 0,
			PRIMARY KEY (exe_name, date)
		)`,
		`CREATE TABLE IF NOT EXISTS violations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			exe_name TEXT,
			timestamp TEXT,
			reason TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS daily_usage (
			date TEXT PRIMARY KEY,
			total_time INTEGER DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS timing_settings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			exe_name TEXT UNIQUE,
			max_time INTEGER DEFAULT 0,
			notify_limit INTEGER DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS is_data_populated_today (
			date TEXT PRIMARY KEY,
			is_populated INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS database_version (
			db_version INTEGER DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_timings_date ON timings(date)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("createSchema: %w", err)
		}
	}
	if _, err := db.Exec(`INSERT INTO database_version VALUES(1)`); err != nil {
		return fmt.Errorf("createSchema: %w", err)
	}
	return nil
}

func (db *Database) GetDbVersion() (int, error) {
	var dbVersion int
	query := "SELECT db_version FROM database_version LIMIT 1"
	if err := db.Get(&dbVersion, query); err != nil {
		return 0, fmt.Errorf("GetDbVersion: %w", err)
	}
	return dbVersion, nil
}

func (db *Database) updateDb() error {
	dbVersion, err := db.GetDbVersion()
	if err != nil {
		return fmt.Errorf("updateDb: %w", err)
	}
	if dbVersion >= 1 {
		return nil
	}
	tx := db.MustBegin().Tx
	if dbVersion < 1 {
		_, err = tx.Exec(`CREATE TABLE IF NOT EXISTS is_data_populated_today (
			date TEXT PRIMARY KEY,
			is_populated INTEGER
		)`)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("updateDb: %w", err)
		}
		if _, err = tx.Exec(`UPDATE database_version SET db_version=1`); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("updateDb: %w", err)
		}
		log.Info().Msg("db version up to 1")
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("updateDb: error at commit: %w", err)
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
