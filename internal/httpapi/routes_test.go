package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/DoyleJ11/tetris-server/internal/engine"
	"github.com/DoyleJ11/tetris-server/internal/hub"
	"github.com/DoyleJ11/tetris-server/internal/room"
	"github.com/DoyleJ11/tetris-server/internal/types"
	"github.com/DoyleJ11/tetris-server/internal/ws"
	wire "github.com/DoyleJ11/tetris-server/pkg/types"
	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*httptest.Server, *hub.Hub) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := hub.NewHub(ctx, room.Config{MoveThreshold: 5, Seed: 3}, zap.NewNop())
	srv := httptest.NewServer(SetupRoutes(h, ws.Options{}, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv, h
}

func createGame(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, err := http.Post(srv.URL+"/games", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Code, 6)
	return body.Code
}

func getGame(t *testing.T, srv *httptest.Server, code string) (int, gameView) {
	t.Helper()
	resp, err := http.Get(srv.URL + "/games/" + code)
	require.NoError(t, err)
	defer resp.Body.Close()

	var v gameView
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	}
	return resp.StatusCode, v
}

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode()
	require.NoError(t, err)
	assert.Regexp(t, `^[A-Z0-9]{6}$`, code)

	for range 200 {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.NotContainsf(t, code, "0", "code %s", code)
		assert.NotContainsf(t, code, "O", "code %s", code)
		assert.NotContainsf(t, code, "1", "code %s", code)
		assert.NotContainsf(t, code, "I", "code %s", code)
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGames_CreateListGetDelete(t *testing.T) {
	srv, _ := newTestServer(t)
	code := createGame(t, srv)

	resp, err := http.Get(srv.URL + "/games")
	require.NoError(t, err)
	var list struct {
		Codes []string `json:"codes"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	resp.Body.Close()
	assert.Equal(t, []string{code}, list.Codes)

	status, view := getGame(t, srv, code)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, code, view.Code)
	assert.Equal(t, engine.SpawnPos, view.State.Pos)
	assert.False(t, view.State.GameOver)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/games/"+code, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	status, _ = getGame(t, srv, code)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGames_PressKey(t *testing.T) {
	srv, _ := newTestServer(t)
	code := createGame(t, srv)

	cases := []struct {
		name string
		code string
		body string
		want int
	}{
		{name: "move left", code: code, body: `{"key":"left"}`, want: http.StatusAccepted},
		{name: "unknown key", code: code, body: `{"key":"hold"}`, want: http.StatusBadRequest},
		{name: "bad json", code: code, body: `{`, want: http.StatusBadRequest},
		{name: "unknown game", code: "NOPE00", body: `{"key":"left"}`, want: http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/games/"+tc.code+"/keys", "application/json", strings.NewReader(tc.body))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}

	status, view := getGame(t, srv, code)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, engine.SpawnPos.X-1, view.State.Pos.X)
	assert.Equal(t, 1, view.Version)
}

func TestWebsocket_MissingAndUnknownCode(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/ws?code=NOPE00")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func readServerMessage(t *testing.T, ctx context.Context, conn *websocket.Conn) types.ServerMessage {
	t.Helper()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var msg types.ServerMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestWebsocket_KeyRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)
	code := createGame(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?code=" + code
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	first := readServerMessage(t, ctx, conn)
	require.Equal(t, wire.MsgFrame, first.Type)
	require.NotNil(t, first.State)
	assert.Equal(t, 0, first.Version)

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"type":"Key","key":"right"}`)))
	next := readServerMessage(t, ctx, conn)
	assert.Equal(t, wire.MsgFrame, next.Type)
	assert.Equal(t, 1, next.Version)
	assert.Equal(t, engine.SpawnPos.X+1, next.State.Pos.X)
	assert.NotEmpty(t, next.Changes)
	assert.Contains(t, next.Events, string(engine.EvtPieceMoved))

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"type":"Jump"}`)))
	bad := readServerMessage(t, ctx, conn)
	assert.Equal(t, wire.MsgError, bad.Type)
	assert.Equal(t, ws.ErrUnknownType.Error(), bad.Error)

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`not json`)))
	bad = readServerMessage(t, ctx, conn)
	assert.Equal(t, "bad json", bad.Error)
}

func TestWebsocket_DisconnectReleasesClient(t *testing.T) {
	srv, h := newTestServer(t)
	code := createGame(t, srv)
	rm := h.Get(context.Background(), code)
	require.NotNil(t, rm)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?code=" + code
	dial := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		conn, _, err := websocket.Dial(ctx, url, nil)
		require.NoError(t, err)
		_ = readServerMessage(t, ctx, conn)
		require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
	}

	dial()
	require.Eventually(t, func() bool {
		v, ok := rm.View(context.Background())
		return ok && v.NumClients == 0
	}, time.Second, 10*time.Millisecond)
	before := runtime.NumGoroutine()

	for range 20 {
		dial()
	}

	assert.Eventually(t, func() bool {
		v, ok := rm.View(context.Background())
		return ok && v.NumClients == 0
	}, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before+2
	}, 2*time.Second, 20*time.Millisecond, "per-connection goroutines should exit after close")
}
