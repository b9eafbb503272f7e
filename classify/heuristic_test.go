package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreKnownGameProfile(t *testing.T) {
	s := Sample{
		CPUPercent: 20,
		GPUPercent: 60,
		MemoryMB:   800,
		ExePath:    `c:\program files\steamapps\common\hades\hades.exe`,
		Fullscreen: true,
	}
	assert.InDelta(t, 6.5, Score(s), 0.001)
	assert.Equal(t, LabelGame, Label(Score(s)))
}

func TestScoreIdleUtilityProfile(t *testing.T) {
	s := Sample{
		CPUPercent: 10,
		GPUPercent: 0,
		MemoryMB:   100,
		ExePath:    `c:\windows\system32\svchost.exe`,
		Fullscreen: false,
	}
	assert.InDelta(t, 0.5, Score(s), 0.001)
	assert.Equal(t, LabelNonGame, Label(Score(s)))
}

func TestScoreBands(t *testing.T) {
	tests := []struct {
		name     string
		sample   Sample
		expected float64
	}{
		{"cpu mid band", Sample{CPUPercent: 10}, 0.5},
		{"cpu high band", Sample{CPUPercent: 16}, 1.5},
		{"cpu at lower bound not counted", Sample{CPUPercent: 5}, 0},
		{"gpu at threshold not counted", Sample{GPUPercent: 50}, 0},
		{"gpu above threshold", Sample{GPUPercent: 51}, 1.5},
		{"memory mid band", Sample{MemoryMB: 400}, 0.5},
		{"memory high band", Sample{MemoryMB: 701}, 1.5},
		{"single path keyword", Sample{ExePath: "/home/me/games/thing"}, 1.0},
		{"multiple path keywords count once", Sample{ExePath: "/games/steamapps/epic/thing"}, 1.0},
		{"fullscreen", Sample{Fullscreen: true}, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Score(tt.sample), 0.001)
		})
	}
}

func TestLabelThreshold(t *testing.T) {
	assert.Equal(t, LabelGame, Label(3.0))
	assert.Equal(t, LabelNonGame, Label(2.5))
}
