package entity

// ClassificationRecord stores the game/non-game verdict for one executable
// name. UserMarked records suppress automatic reclassification.
type ClassificationRecord struct {
	ExeName    string `db:"exe_name" json:"exe_name"`
	IsGame     bool   `db:"is_game" json:"is_game"`
	UserMarked bool   `db:"user_marked" json:"user_marked"`
}

// DailyTiming is the accumulated run time of one executable on one day.
type DailyTiming struct {
	ExeName  string `db:"exe_name" json:"exe_name"`
	Date     string `db:"date" json:"date"`
	Duration int64  `db:"duration" json:"duration"` // seconds
}

// TimingSetting holds the per-game limit. MaxTime is in minutes.
type TimingSetting struct {
	ExeName     string `db:"exe_name" json:"exe_name"`
	MaxTime     int    `db:"max_time" json:"max_time"`
	NotifyLimit int    `db:"notify_limit" json:"notify_limit"`
}

// Violation is one recorded limit breach. Rows are append-only and
// cleared on the daily bootstrap.
type Violation struct {
	ExeName   string `db:"exe_name" json:"exe_name"`
	Timestamp string `db:"timestamp" json:"timestamp"`
	Reason    string `db:"reason" json:"reason"`
}

// TimeViolation is what the violation check returns to the enforcement
// loop: the offending exe with its current duration and its limit.
type TimeViolation struct {
	ExeName  string `json:"exe_name"`
	Duration int64  `json:"duration"` // seconds
	MaxTime  int    `json:"max_time"` // minutes
}
