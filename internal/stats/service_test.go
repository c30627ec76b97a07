package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tylerea12/trash-panda-pickup/internal/players"
)

type fakeStats struct {
	stats map[string]*players.PlayerStats
}

func (f *fakeStats) GetStats(ctx context.Context, username string) (*players.PlayerStats, error) {
	s, ok := f.stats[username]
	if !ok {
		return nil, fmt.Errorf("%w: %s", players.ErrNotFound, username)
	}
	return s, nil
}

type fakePickups struct {
	counts   map[string]map[string]int64
	reported map[string][]string
}

func (f *fakePickups) ReportPickups(ctx context.Context, username string, items []string) error {
	if _, ok := f.counts[username]; !ok {
		return fmt.Errorf("%w: %s", players.ErrNotFound, username)
	}
	if f.reported == nil {
		f.reported = make(map[string][]string)
	}
	f.reported[username] = append(f.reported[username], items...)
	return nil
}

func (f *fakePickups) GetItemStats(ctx context.Context, username string) (map[string]int64, error) {
	counts, ok := f.counts[username]
	if !ok {
		return nil, fmt.Errorf("%w: %s", players.ErrNotFound, username)
	}
	return counts, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *fakePickups) {
	t.Helper()

	statsApp := &fakeStats{stats: map[string]*players.PlayerStats{
		"rocky": {Username: "rocky", Wins: 3, Losses: 1},
	}}
	pickupsApp := &fakePickups{counts: map[string]map[string]int64{
		"rocky": {"soda_can": 2, "straw": 1},
	}}

	mux := http.NewServeMux()
	NewService(statsApp, pickupsApp).RegisterRoutes(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, pickupsApp
}

func TestGetStats(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/stats/rocky")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats players.PlayerStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, "rocky", stats.Username)
	assert.Equal(t, 3, stats.Wins)
	assert.Equal(t, 1, stats.Losses)
}

func TestGetStatsNotFound(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/stats/nobody")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetItemStats(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/stats/rocky/items")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var counts map[string]int64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&counts))
	assert.Equal(t, int64(2), counts["soda_can"])
	assert.Equal(t, int64(1), counts["straw"])
}

func TestReportPickups(t *testing.T) {
	server, pickupsApp := newTestServer(t)

	body := `{"account":"rocky","items":["soda_can","napkin"]}`
	resp, err := http.Post(server.URL+"/pickups", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"soda_can", "napkin"}, pickupsApp.reported["rocky"])
}

func TestReportPickupsValidation(t *testing.T) {
	server, _ := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"missing account", `{"items":["soda_can"]}`, http.StatusBadRequest},
		{"malformed body", `{`, http.StatusBadRequest},
		{"unknown account", `{"account":"nobody","items":["soda_can"]}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(server.URL+"/pickups", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
