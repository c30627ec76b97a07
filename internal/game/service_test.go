package game

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tylerea12/trash-panda-pickup/internal/catalog"
)

func newTestService(t *testing.T) (*httptest.Server, *App) {
	t.Helper()

	app, _, _, _ := newTestApp(t)
	mux := http.NewServeMux()
	NewService(app).RegisterRoutes(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, app
}

func TestCreateGameHandler(t *testing.T) {
	server, _ := newTestService(t)

	tests := []struct {
		name     string
		body     string
		status   int
		items    int
		duration int
	}{
		{"solo default", `{"username":"rocky"}`, http.StatusCreated, 10, 300},
		{"challenge snack", `{"username":"rocky","mode":"challenge","size":"snack"}`, http.StatusCreated, 5, 300},
		{"untimed feast", `{"username":"rocky","size":"feast","durationSeconds":-1}`, http.StatusCreated, 15, -1},
		{"missing username", `{"size":"snack"}`, http.StatusBadRequest, 0, 0},
		{"malformed body", `{`, http.StatusBadRequest, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(server.URL+"/games", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()

			require.Equal(t, tt.status, resp.StatusCode)
			if tt.status != http.StatusCreated {
				return
			}

			var view PlayView
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
			assert.Equal(t, "rocky", view.AccountName)
			assert.Len(t, view.Items, tt.items)
			assert.Equal(t, tt.duration, view.DurationSeconds)
			assert.NotEmpty(t, view.SessionID)
		})
	}
}

func TestGetGameHandler(t *testing.T) {
	server, app := newTestService(t)

	g, err := app.StartSolo(context.Background(), "rocky", catalog.TierMedium, 300)
	require.NoError(t, err)

	resp, err := http.Get(server.URL + "/games/" + g.ID.String() + "?username=rocky")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view PlayView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, g.ID.String(), view.SessionID)
	assert.Equal(t, g.Items, view.Items)
}

func TestGetGameHandlerNotFound(t *testing.T) {
	server, _ := newTestService(t)

	resp, err := http.Get(server.URL + "/games/" + uuid.NewString())
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestJoinGameHandler(t *testing.T) {
	server, app := newTestService(t)
	ctx := context.Background()

	g, err := app.StartChallenge(ctx, "rocky", catalog.TierMedium, 300)
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/games/"+g.ID.String()+"/join",
		"application/json", strings.NewReader(`{"username":"bandit"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view PlayView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, "bandit", view.AccountName)
	assert.Equal(t, g.Items, view.Items)

	// The room is now full for anyone else.
	resp2, err := http.Post(server.URL+"/games/"+g.ID.String()+"/join",
		"application/json", strings.NewReader(`{"username":"dumpster_dan"}`))
	require.NoError(t, err)
	defer resp2.Body.Close()

	assert.Equal(t, http.StatusConflict, resp2.StatusCode)
}
