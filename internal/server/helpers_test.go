package server

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Cryborg/sugoroku/internal/config"
	"github.com/Cryborg/sugoroku/internal/game"
	"github.com/Cryborg/sugoroku/internal/server/session"
	"github.com/Cryborg/sugoroku/internal/server/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	*Server
	store storage.Store
	http  *httptest.Server
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()

	cfg := config.Default()
	cfg.Server.RateLimit = 1000
	cfg.Server.RateBurst = 1000
	for _, fn := range mutate {
		fn(cfg)
	}

	store := storage.NewMemoryStore()
	manager := session.NewManager(store, session.Options{Rand: rand.New(rand.NewPCG(11, 12))})
	srv := NewServer(cfg, manager)

	ctx, cancel := context.WithCancel(context.Background())
	go srv.Hub().Run(ctx)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		cancel()
		srv.Hub().CloseAll()
		ts.Close()
	})
	return &testServer{Server: srv, store: store, http: ts}
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

// call performs a request and decodes the envelope.
func (ts *testServer) call(t *testing.T, method, path string, body any) (int, apiResponse) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)

	var res apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res), "body: %s", rec.Body.String())
	return rec.Code, res
}

func decode[T any](t *testing.T, res apiResponse) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(res.Data, &v))
	return v
}

// startedGame creates and starts a three player game over HTTP.
func (ts *testServer) startedGame(t *testing.T) *game.Snapshot {
	t.Helper()

	code, res := ts.call(t, http.MethodPost, "/game/create", map[string]any{"players": []string{"Ann", "Ben", "Cid"}})
	require.Equal(t, http.StatusCreated, code, res.Error)
	created := decode[createGameResponse](t, res)

	code, res = ts.call(t, http.MethodPost, "/game/"+created.SessionID+"/start", nil)
	require.Equal(t, http.StatusOK, code, res.Error)
	snap := decode[game.Snapshot](t, res)
	return &snap
}

// startDoors returns the doors of the start room.
func startDoors(snap *game.Snapshot) []game.DoorView {
	for _, r := range snap.Rooms {
		if r.IsStart {
			return r.Doors
		}
	}
	return nil
}
