package realtime

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

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// dialSession upgrades one websocket, attaches it to the registry as userID
// and returns the client side plus the attached connection.
func dialSession(t *testing.T, registry *Registry, userID string) (*websocket.Conn, *Connection) {
	t.Helper()

	attached := make(chan *Connection, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := NewConnection(userID, ws)
		registry.Attach(conn)
		attached <- conn
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client, <-attached
}

func TestRegistry_NotifyUserDeliversToLiveSession(t *testing.T) {
	registry := NewRegistry()
	defer registry.Close()

	client, _ := dialSession(t, registry, "user-1")

	require.True(t, registry.NotifyUser("user-1", []byte(`{"type":"unread","unread":3}`)))

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := client.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"unread","unread":3}`, string(payload))

	assert.False(t, registry.NotifyUser("ghost", []byte("x")))
}

func TestRegistry_SecondAttachReplacesSession(t *testing.T) {
	registry := NewRegistry()
	defer registry.Close()

	first, _ := dialSession(t, registry, "user-1")
	second, _ := dialSession(t, registry, "user-1")

	// the first socket is told it was replaced
	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := first.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, 4001, closeErr.Code)

	// pushes land on the replacement only
	require.True(t, registry.NotifyUser("user-1", []byte("after-swap")))
	require.NoError(t, second.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := second.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "after-swap", string(payload))
}

func TestRegistry_DetachStopsDelivery(t *testing.T) {
	registry := NewRegistry()
	defer registry.Close()

	_, conn := dialSession(t, registry, "user-1")
	registry.Detach(conn)

	assert.False(t, registry.NotifyUser("user-1", []byte("x")))
}
