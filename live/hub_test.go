package live

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(testWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestBroadcastReachesOnlyRoomClients(t *testing.T) {
	hub := NewHub(newTestLogger())
	go hub.Run()

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		room := strings.TrimPrefix(r.URL.Path, "/")
		client := NewClient(hub, conn, room)
		hub.Register <- client
		go client.WritePump()
		go client.ReadPump()
	}))
	defer server.Close()

	dial := func(room string) *websocket.Conn {
		url := "ws" + strings.TrimPrefix(server.URL, "http") + "/" + room
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		return conn
	}

	inRoom := dial("7")
	defer inRoom.Close()
	otherRoom := dial("8")
	defer otherRoom.Close()

	// Registration races the broadcast without this.
	time.Sleep(50 * time.Millisecond)

	hub.BroadcastToLeague(7, TypeStandingsUpdated, map[string]int{"league_id": 7})

	require.NoError(t, inRoom.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := inRoom.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, TypeStandingsUpdated, msg.Type)
	assert.Equal(t, "7", msg.RoomID)

	require.NoError(t, otherRoom.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = otherRoom.ReadMessage()
	assert.Error(t, err, "client in another room must not receive the message")
}
