package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialTestConn returns a client-side websocket connection whose server side
// just drains inbound frames.
func dialTestConn(t *testing.T) (*websocket.Conn, func()) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func TestHubJoinAndLeave(t *testing.T) {
	hub := NewHub()

	hub.Join("chat_1_2", nil, ConnInfo{ConnID: "c1", UserID: 1})
	assert.Equal(t, 1, hub.Members("chat_1_2"))

	hub.Leave("chat_1_2", nil)
	assert.Equal(t, 0, hub.Members("chat_1_2"))
	assert.Empty(t, hub.groups)
}

func TestHubLeaveIsIdempotent(t *testing.T) {
	hub := NewHub()

	hub.Join("chat_1_2", nil, ConnInfo{ConnID: "c1", UserID: 1})
	hub.Leave("chat_1_2", nil)
	hub.Leave("chat_1_2", nil)
	hub.Leave("chat_3_4", nil)

	assert.Equal(t, 0, hub.Members("chat_1_2"))
}

func TestHubGroupsAreIsolated(t *testing.T) {
	hub := NewHub()

	hub.Join("chat_1_2", nil, ConnInfo{ConnID: "c1", UserID: 1})
	assert.Equal(t, 1, hub.Members("chat_1_2"))
	assert.Equal(t, 0, hub.Members("chat_1_3"))
}

// Concurrent publishers into the same group must serialize their writes per
// connection; gorilla/websocket panics on concurrent writers otherwise.
func TestHubConcurrentPublish(t *testing.T) {
	conn, cleanup := dialTestConn(t)
	defer cleanup()

	hub := NewHub()
	hub.Join("chat_1_2", conn, ConnInfo{ConnID: "c1", UserID: 1})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				hub.Publish("chat_1_2", map[string]string{"message": "hi"})
			}
		}()
	}
	wg.Wait()

	// The connection survived every write and was not evicted.
	assert.Equal(t, 1, hub.Members("chat_1_2"))
}
