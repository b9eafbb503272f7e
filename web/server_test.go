package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/generalpy101/fix-life/query"
	"github.com/generalpy101/fix-life/snapshot"
)

type stubProc struct {
	name string
	pid  int32
}

func (s *stubProc) Pid() int32                   { return s.pid }
func (s *stubProc) Name() string                 { return s.name }
func (s *stubProc) Exe() string                  { return s.name }
func (s *stubProc) CreateTime() time.Time        { return time.Time{} }
func (s *stubProc) CPUPercent() (float64, error) { return 0, nil }
func (s *stubProc) MemoryMB() (float64, error)   { return 0, nil }
func (s *stubProc) Kill() error                  { return nil }

type stubProvider struct {
	procs []snapshot.Process
}

func (s *stubProvider) Snapshot() []snapshot.Process { return s.procs }

func newTestServer(t *testing.T, provider snapshot.Provider) (*httptest.Server, *query.Database) {
	t.Helper()
	db, err := query.InitDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	if provider == nil {
		provider = &stubProvider{}
	}
	ts := httptest.NewServer(NewServer(db, provider).router())
	t.Cleanup(ts.Close)
	return ts, db
}

func getJSON(t *testing.T, ts *httptest.Server, path string, out any) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func postJSON(t *testing.T, ts *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestTimingsEndpoint(t *testing.T) {
	ts, db := newTestServer(t, nil)
	require.NoError(t, db.AddDuration("hades.exe", 300))

	var timings []map[string]any
	getJSON(t, ts, "/api/timings", &timings)
	require.Len(t, timings, 1)
	assert.Equal(t, "hades.exe", timings[0]["exe_name"])
	assert.EqualValues(t, 300, timings[0]["duration"])
}

func TestTotalTimeIncludesDisplayString(t *testing.T) {
	ts, db := newTestServer(t, nil)
	require.NoError(t, db.AddDuration("hades.exe", 3725))

	var body map[string]any
	getJSON(t, ts, "/api/total_time", &body)
	assert.EqualValues(t, 3725, body["total_seconds"])
	assert.Equal(t, "01:02:05", body["display"])
}

func TestUpdateClassificationMarksUser(t *testing.T) {
	ts, db := newTestServer(t, nil)

	resp := postJSON(t, ts, "/api/update_exe_classification",
		map[string]any{"exe_name": "hades.exe", "is_game": true})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	records, err := db.GetAllProcesses()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].IsGame)
	assert.True(t, records[0].UserMarked, "dashboard edits are user decisions")
}

func TestUpdateClassificationRequiresFields(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp := postJSON(t, ts, "/api/update_exe_classification",
		map[string]any{"exe_name": "hades.exe"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, ts, "/api/update_exe_classification",
		map[string]any{"is_game": true})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateTimeLimit(t *testing.T) {
	ts, db := newTestServer(t, nil)
	require.NoError(t, db.UpsertClassification("hades.exe", true, false))

	resp := postJSON(t, ts, "/api/update_time_limit",
		map[string]any{"exe_name": "hades.exe", "max_time": 45})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	setting, err := db.GetTimingSetting("hades.exe")
	require.NoError(t, err)
	assert.Equal(t, 45, setting.MaxTime)
}

func TestUpdateTimeLimitRejectsOutOfRange(t *testing.T) {
	ts, db := newTestServer(t, nil)
	require.NoError(t, db.UpsertClassification("hades.exe", true, false))

	resp := postJSON(t, ts, "/api/update_time_limit",
		map[string]any{"exe_name": "hades.exe", "max_time": 181})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, ts, "/api/update_time_limit",
		map[string]any{"exe_name": "hades.exe", "max_time": -1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateTimeLimitRejectsNonGames(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp := postJSON(t, ts, "/api/update_time_limit",
		map[string]any{"exe_name": "browser.exe", "max_time": 45})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGlobalTimingRoundTrip(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	var body map[string]int
	getJSON(t, ts, "/api/global_timing", &body)
	assert.Equal(t, query.DefaultGlobalTimingLimit, body["limit"])

	resp := postJSON(t, ts, "/api/update_global_timing", map[string]any{"limit": 90})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	getJSON(t, ts, "/api/global_timing", &body)
	assert.Equal(t, 90, body["limit"])

	resp = postJSON(t, ts, "/api/update_global_timing", map[string]any{"limit": 200})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRefreshTimeLimitList(t *testing.T) {
	ts, db := newTestServer(t, nil)
	require.NoError(t, db.UpsertClassification("hades.exe", true, false))
	_, err := db.Exec("DELETE FROM timing_settings")
	require.NoError(t, err)

	resp := postJSON(t, ts, "/api/refresh_time_limit_list", map[string]any{})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	has, err := db.HasTimingSetting("hades.exe")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestAreGamesRunning(t *testing.T) {
	provider := &stubProvider{procs: []snapshot.Process{
		&stubProc{pid: 1, name: "hades.exe"},
	}}
	ts, _ := newTestServer(t, provider)

	resp := postJSON(t, ts, "/api/are_games_running",
		map[string]any{"games": []string{"hades.exe", "celeste.exe"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		RunningGames map[string]bool `json:"running_games"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.RunningGames["hades.exe"])
	assert.False(t, body.RunningGames["celeste.exe"])
}
