package classify

import "strings"

const (
	// ScoreThreshold is the minimum heuristic score for the "game" label.
	ScoreThreshold = 3.0

	LabelGame    = "game"
	LabelNonGame = "non-game"
)

// DefaultExcluded are common processes that look like games to the
// scorer (high CPU, fullscreen windows) but never are.
var DefaultExcluded = []string{
	"chrome.exe",
	"teams.exe",
	"explorer.exe",
	"discord.exe",
	"steam.exe",
}

var pathKeywords = []string{"games", "steamapps", "epic"}

// Sample holds the runtime signals the heuristic scorer works from.
type Sample struct {
	ExePath    string
	CPUPercent float64 // normalized per-core
	GPUPercent float64
	MemoryMB   float64
	Fullscreen bool
}

// Score computes the heuristic game score for a sample. Deterministic
// given fixed inputs; the point weights are part of the contract.
func Score(s Sample) float64 {
	score := 0.0

	if s.CPUPercent > 15 {
		score += 1.5
	} else if s.CPUPercent > 5 {
		score += 0.5
	}

	if s.GPUPercent > 50 {
		score += 1.5
	}

	if s.MemoryMB > 700 {
		score += 1.5
	} else if s.MemoryMB > 300 {
		score += 0.5
	}

	exe := strings.ToLower(s.ExePath)
	for _, kw := range pathKeywords {
		if strings.Contains(exe, kw) {
			score += 1.0
			break
		}
	}

	if s.Fullscreen {
		score += 1.0
	}

	return score
}

// Label maps a score to its verdict.
func Label(score float64) string {
	if score >= ScoreThreshold {
		return LabelGame
	}
	return LabelNonGame
}
