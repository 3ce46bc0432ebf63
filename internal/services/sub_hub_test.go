package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, hub *SubHub, userID string) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(userID, conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.IsOnline(userID) }, time.Second, 10*time.Millisecond)
	return conn
}

func TestSubHubPublishDeliversToSubscriber(t *testing.T) {
	hub := NewSubHub()
	conn := dialHub(t, hub, "user-a")

	hub.Publish("user-a", Event{Collection: CollectionFoundCards, Op: OpAdded, ID: "f1"})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var event Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, CollectionFoundCards, event.Collection)
	assert.Equal(t, OpAdded, event.Op)
	assert.Equal(t, "f1", event.ID)
}

func TestSubHubPublishToOfflineUserIsNoop(t *testing.T) {
	hub := NewSubHub()
	hub.Publish("nobody", Event{Collection: CollectionQuestCards, Op: OpRemoved, ID: "q1"})
	assert.False(t, hub.IsOnline("nobody"))
}

func TestSubHubUnregister(t *testing.T) {
	hub := NewSubHub()
	dialHub(t, hub, "user-a")

	hub.Unregister("user-a")
	assert.False(t, hub.IsOnline("user-a"))
}
