package realtime

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadence-scheduler-server/modules/common/model"
)

func dialHub(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(message, &event))
	return event
}

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	hub := NewHub()
	router := mux.NewRouter()
	hub.RegisterRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return hub, server
}

func TestCheckoutReadyBroadcast(t *testing.T) {
	hub, server := newTestHub(t)
	conn := dialHub(t, server, "")
	waitForClients(t, hub, 1)

	hub.CheckoutReady("https://pay.example/s1")

	event := readEvent(t, conn)
	assert.Equal(t, EventCheckoutReady, event.Type)
	assert.Equal(t, "https://pay.example/s1", event.URL)
}

func TestContentUpdateFiltersBySubscription(t *testing.T) {
	hub, server := newTestHub(t)

	subscribed := dialHub(t, server, "?content=item-1")
	other := dialHub(t, server, "?content=item-2")

	// Give the hub time to register both clients.
	waitForClients(t, hub, 2)

	hub.ContentUpdate("item-1", &model.ContentItem{ID: "item-1"}, nil)
	hub.CheckoutReady("https://pay.example/s2")

	event := readEvent(t, subscribed)
	assert.Equal(t, EventContentUpdate, event.Type)
	assert.Equal(t, "item-1", event.ContentItemID)
	require.NotNil(t, event.Item)
	assert.Equal(t, "item-1", event.Item.ID)

	// The other subscriber never sees item-1 but does get the global event.
	event = readEvent(t, other)
	assert.Equal(t, EventCheckoutReady, event.Type)
}

func TestContentUpdateWithError(t *testing.T) {
	hub, server := newTestHub(t)
	conn := dialHub(t, server, "?content=item-1")
	waitForClients(t, hub, 1)

	hub.ContentUpdate("item-1", nil, errors.New("fetch failed"))

	event := readEvent(t, conn)
	assert.Equal(t, EventContentError, event.Type)
	assert.Equal(t, "item-1", event.ContentItemID)
	assert.Contains(t, event.Message, "fetch failed")
}

func TestNotifyErrorBroadcast(t *testing.T) {
	hub, server := newTestHub(t)
	conn := dialHub(t, server, "")
	waitForClients(t, hub, 1)

	hub.NotifyError("Failed to start checkout. Please try again.")

	event := readEvent(t, conn)
	assert.Equal(t, EventNotifyError, event.Type)
	assert.Contains(t, event.Message, "Failed to start checkout")
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		count := len(hub.clients)
		hub.mu.RUnlock()
		if count >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d connected clients", want)
}
