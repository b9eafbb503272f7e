package classify

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/generalpy101/fix-life/query"
	"github.com/generalpy101/fix-life/snapshot"
)

type fakeProc struct {
	created time.Time
	name    string
	exe     string
	pid     int32
}

func (f *fakeProc) Pid() int32                   { return f.pid }
func (f *fakeProc) Name() string                 { return f.name }
func (f *fakeProc) Exe() string                  { return f.exe }
func (f *fakeProc) CreateTime() time.Time        { return f.created }
func (f *fakeProc) CPUPercent() (float64, error) { return 0, nil }
func (f *fakeProc) MemoryMB() (float64, error)   { return 0, nil }
func (f *fakeProc) Kill() error                  { return nil }

type fakeSampler struct {
	err    error
	sample Sample
}

func (f *fakeSampler) Sample(_ snapshot.Process) (Sample, error) {
	return f.sample, f.err
}

var gameSample = Sample{CPUPercent: 20, GPUPercent: 60, MemoryMB: 800, Fullscreen: true}

func newTestClassifier(t *testing.T, sampler Sampler, titles []string) (*Classifier, *query.Database) {
	t.Helper()
	db, err := query.InitDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewClassifier(db, titles, sampler, nil), db
}

func TestClassifyStoresHeuristicVerdict(t *testing.T) {
	c, db := newTestClassifier(t, &fakeSampler{sample: gameSample}, nil)

	c.Classify([]snapshot.Process{
		&fakeProc{pid: 1, name: "hades.exe", exe: `c:\games\hades.exe`},
	})

	isGame, err := db.GetIsGame("hades.exe")
	require.NoError(t, err)
	assert.True(t, isGame)

	// Classification side effect: the game got a default limit.
	has, err := db.HasTimingSetting("hades.exe")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestHeuristicOverridesTitleMatch(t *testing.T) {
	// The corpus contains the exact title, so similarity alone says
	// game. The heuristic says otherwise and its verdict must win.
	c, db := newTestClassifier(t, &fakeSampler{sample: Sample{}}, []string{"Hades"})

	c.Classify([]snapshot.Process{&fakeProc{pid: 1, name: "hades.exe"}})

	isGame, err := db.GetIsGame("hades.exe")
	require.NoError(t, err)
	assert.False(t, isGame, "similarity match must not override the heuristic verdict")
}

func TestExcludedProcessesAreNeverGames(t *testing.T) {
	c, db := newTestClassifier(t, &fakeSampler{sample: gameSample}, nil)

	c.Classify([]snapshot.Process{&fakeProc{pid: 1, name: "steam.exe"}})

	isGame, err := db.GetIsGame("steam.exe")
	require.NoError(t, err)
	assert.False(t, isGame)
}

func TestClassifySkipsAlreadyClassified(t *testing.T) {
	c, db := newTestClassifier(t, &fakeSampler{sample: Sample{}}, nil)

	// The user marked this one by hand; re-running the classifier must
	// not touch it even though the heuristic would now disagree.
	require.NoError(t, db.UpsertClassification("hades.exe", true, true))

	c.Classify([]snapshot.Process{&fakeProc{pid: 1, name: "hades.exe"}})

	records, err := db.GetAllProcesses()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].IsGame)
	assert.True(t, records[0].UserMarked)
}

func TestClassifySamplerFailureMeansNonGame(t *testing.T) {
	c, db := newTestClassifier(t, &fakeSampler{err: errors.New("access denied")}, nil)

	c.Classify([]snapshot.Process{&fakeProc{pid: 1, name: "mystery.exe"}})

	isGame, err := db.GetIsGame("mystery.exe")
	require.NoError(t, err)
	assert.False(t, isGame)
}

func TestIsGame(t *testing.T) {
	c, db := newTestClassifier(t, &fakeSampler{}, nil)
	require.NoError(t, db.UpsertClassification("hades.exe", true, false))

	isGame, err := c.IsGame(&fakeProc{pid: 1, name: "hades.exe"})
	require.NoError(t, err)
	assert.True(t, isGame)

	isGame, err = c.IsGame(&fakeProc{pid: 2, name: "other.exe"})
	require.NoError(t, err)
	assert.False(t, isGame)
}

func TestIsGameRejectsNilHandle(t *testing.T) {
	c, _ := newTestClassifier(t, &fakeSampler{}, nil)

	_, err := c.IsGame(nil)
	assert.ErrorIs(t, err, ErrNotAProcess)
}

func TestNormalizeExeName(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"Hades.exe", "hades"},
		{"Counter-Strike.exe", "counter strike"},
		{"stardew_valley.exe", "stardew valley"},
		{"ACUnity-Win64-Shipping.exe", "acunity"},
		{"Some.Game.x64.exe", "some game"},
		{"notepad", "notepad"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, normalizeExeName(tt.in), "input %q", tt.in)
	}
}

func TestSimilarTitle(t *testing.T) {
	c, _ := newTestClassifier(t, &fakeSampler{}, []string{"Hades", "Stardew Valley", "Dota 2"})

	kind, match, score := c.similarTitle("hades.exe")
	assert.Equal(t, matchTitle, kind)
	assert.Equal(t, "hades", match)
	assert.GreaterOrEqual(t, score, MatchThreshold)

	kind, _, _ = c.similarTitle("epicgameslauncher.exe")
	assert.Equal(t, matchKeyword, kind)

	kind, _, score = c.similarTitle("svchost.exe")
	assert.Equal(t, matchNone, kind)
	assert.Less(t, score, MatchThreshold)
}
