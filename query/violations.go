package query

import (
	"fmt"
	"time"

	"github.com/generalpy101/fix-life/entity"
)

// AddViolation appends one violation row for the exe.
func (db *Database) AddViolation(exeName, reason string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.addViolation(exeName, reason)
}

func (db *Database) addViolation(exeName, reason string) error {
	_, err := db.Exec(`
		INSERT INTO violations (exe_name, timestamp, reason)
		VALUES (?, ?, ?)`,
		exeName, db.clock.Now().Format(time.RFC3339), reason,
	)
	if err != nil {
		return fmt.Errorf("addViolation: %w", err)
	}
	return nil
}

// ViolationsFor detects limit breaches among the given running exe
// names and returns the current violation list. It also writes: every
// running exe whose today-duration has reached its positive limit gets
// exactly one new violation row per call, which is what advances the
// warn/kill escalation. Exes already flagged earlier today but no
// longer running are reported without new rows. Callers must treat
// this as non-idempotent.
func (db *Database) ViolationsFor(runningNames []string) ([]entity.TimeViolation, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	running := make(map[string]struct{}, len(runningNames))
	for _, name := range runningNames {
		running[name] = struct{}{}
	}

	timings, err := db.timingsToday()
	if err != nil {
		return nil, fmt.Errorf("ViolationsFor: %w", err)
	}
	durations := make(map[string]int64, len(timings))
	for _, t := range timings {
		durations[t.ExeName] = t.Duration
	}

	settings := []entity.TimingSetting{}
	err = db.Select(&settings, "SELECT exe_name, max_time, notify_limit FROM timing_settings")
	if err != nil {
		return nil, fmt.Errorf("ViolationsFor: %w", err)
	}

	var flagged []string
	err = db.Select(&flagged, "SELECT DISTINCT exe_name FROM violations")
	if err != nil {
		return nil, fmt.Errorf("ViolationsFor: %w", err)
	}
	alreadyFlagged := make(map[string]struct{}, len(flagged))
	for _, name := range flagged {
		alreadyFlagged[name] = struct{}{}
	}

	violations := []entity.TimeViolation{}
	seen := make(map[string]struct{})
	for _, s := range settings {
		if _, dup := seen[s.ExeName]; dup {
			continue
		}
		_, isRunning := running[s.ExeName]
		_, wasFlagged := alreadyFlagged[s.ExeName]

		if wasFlagged && !isRunning {
			violations = append(violations, entity.TimeViolation{
				ExeName: s.ExeName,
				MaxTime: s.MaxTime,
			})
			seen[s.ExeName] = struct{}{}
			continue
		}

		duration := durations[s.ExeName]
		if s.MaxTime > 0 && isRunning && duration >= int64(s.MaxTime)*60 {
			violations = append(violations, entity.TimeViolation{
				ExeName:  s.ExeName,
				Duration: duration,
				MaxTime:  s.MaxTime,
			})
			seen[s.ExeName] = struct{}{}
			reason := fmt.Sprintf(
				"Exceeded time limit of %d minutes. Current duration: %d minutes.",
				s.MaxTime, duration/60,
			)
			if err := db.addViolation(s.ExeName, reason); err != nil {
				return nil, fmt.Errorf("ViolationsFor: %w", err)
			}
		}
	}
	return violations, nil
}

// GetAllViolations returns the violation log, newest first.
func (db *Database) GetAllViolations() ([]entity.Violation, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	violations := []entity.Violation{}
	err := db.Select(&violations,
		"SELECT exe_name, timestamp, reason FROM violations ORDER BY timestamp DESC")
	if err != nil {
		return nil, fmt.Errorf("GetAllViolations: %w", err)
	}
	return violations, nil
}

// GetViolationCount counts recorded violations for one exe.
func (db *Database) GetViolationCount(exeName string) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var count int
	err := db.Get(&count, "SELECT COUNT(*) FROM violations WHERE exe_name = ?", exeName)
	if err != nil {
		return 0, fmt.Errorf("GetViolationCount: %w", err)
	}
	return count, nil
}
