package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PiusTetteh/301-GroupProject/internal/events"
	"github.com/PiusTetteh/301-GroupProject/internal/state"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) (string, map[string]interface{}) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var f struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg, &f))

	var data map[string]interface{}
	if len(f.Data) > 0 {
		require.NoError(t, json.Unmarshal(f.Data, &data))
	}
	return f.Event, data
}

func TestServeWS_SendsStatusOnConnect(t *testing.T) {
	store := state.NewStore()
	store.MarkStarted()
	conn := dialHub(t, NewHub(store))

	event, data := readFrame(t, conn)
	assert.Equal(t, "status", event)
	assert.Equal(t, true, data["running"])
}

func TestPublish_BroadcastsToConnectedClients(t *testing.T) {
	store := state.NewStore()
	hub := NewHub(store)
	conn := dialHub(t, hub)
	readFrame(t, conn) // connect status

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	hub.Publish(events.ProcessCreated{Pid: 7, Core: 2, Load: 40})

	event, data := readFrame(t, conn)
	assert.Equal(t, "process_created", event)
	assert.Equal(t, float64(7), data["pid"])
	assert.Equal(t, float64(2), data["core"])
	assert.Equal(t, float64(40), data["load"])
}

func TestRequestStats_AnsweredWithStatsUpdate(t *testing.T) {
	store := state.NewStore()
	store.Apply(events.ProcessCreated{Pid: 7, Core: 2, Load: 40})
	hub := NewHub(store)
	conn := dialHub(t, hub)
	readFrame(t, conn) // connect status

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"request_stats"}`)))

	event, data := readFrame(t, conn)
	assert.Equal(t, "stats_update", event)

	cores, ok := data["cores"].(map[string]interface{})
	require.True(t, ok)
	core2, ok := cores["2"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(40), core2["load"])
	assert.Contains(t, data, "stats")
}

func TestMalformedClientMessageIsIgnored(t *testing.T) {
	store := state.NewStore()
	hub := NewHub(store)
	conn := dialHub(t, hub)
	readFrame(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	// Connection stays usable; broadcasts still arrive.
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)
	hub.Publish(events.LogLine{Message: "still here", Timestamp: time.Now()})

	event, data := readFrame(t, conn)
	assert.Equal(t, "log", event)
	assert.Equal(t, "still here", data["message"])
}

func TestPublish_DropsForSlowClientWithoutBlocking(t *testing.T) {
	store := state.NewStore()
	hub := NewHub(store)

	// A client with a tiny buffer and no pumps stands in for a stalled peer.
	c := &Client{id: "stalled", hub: hub, send: make(chan []byte, 1)}
	hub.register(c)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			hub.Publish(events.LogLine{Message: "x", Timestamp: time.Now()})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow client")
	}
	assert.Len(t, c.send, 1, "excess frames are dropped")

	hub.unregister(c)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestClientDisconnectUnregisters(t *testing.T) {
	store := state.NewStore()
	hub := NewHub(store)
	conn := dialHub(t, hub)
	readFrame(t, conn)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		2*time.Second, 10*time.Millisecond, "client stayed registered after disconnect")
}
