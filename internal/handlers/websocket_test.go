package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"social-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialWS(t *testing.T, srv *httptest.Server, token string, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	return websocket.DefaultDialer.Dial(url, header)
}

func readWS(t *testing.T, conn *websocket.Conn) services.WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg services.WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocket(t *testing.T) {
	api := newTestAPI(t)
	alice := api.signup("alice")
	bob := api.signup("bob")
	postID := api.createPost(alice, "hello")
	api.do(http.MethodPut, "/api/posts/"+postID+"/like", bob.Token, nil)

	srv := httptest.NewServer(api.handler)
	defer srv.Close()

	conn, _, err := dialWS(t, srv, alice.Token, nil)
	require.NoError(t, err)
	defer conn.Close()

	msg := readWS(t, conn)
	assert.Equal(t, services.WSTypeUnreadCount, msg.Type)
	require.NotNil(t, msg.Count)
	assert.Equal(t, 1, *msg.Count)

	require.NoError(t, conn.WriteJSON(services.WSMessage{Type: services.WSTypePing}))
	assert.Equal(t, services.WSTypePong, readWS(t, conn).Type)

	require.NoError(t, conn.WriteJSON(services.WSMessage{Type: "dance"}))
	msg = readWS(t, conn)
	assert.Equal(t, services.WSTypeError, msg.Type)
	assert.Equal(t, "Unknown message type", msg.Message)

	// a new notification is pushed live
	api.do(http.MethodPost, "/api/users/"+alice.ID+"/follow", bob.Token, nil)
	msg = readWS(t, conn)
	assert.Equal(t, services.WSTypeNotification, msg.Type)
	data := msg.Data.(map[string]interface{})
	assert.Equal(t, "follow", data["type"])
}

func TestWebSocket_Rejects(t *testing.T) {
	api := newTestAPI(t)
	alice := api.signup("alice")

	srv := httptest.NewServer(api.handler)
	defer srv.Close()

	_, resp, err := dialWS(t, srv, "", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = dialWS(t, srv, "garbage", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = dialWS(t, srv, alice.Token, http.Header{"Origin": {"https://evil.example.com"}})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestOriginAllowed(t *testing.T) {
	assert.True(t, originAllowed("", []string{testOrigin}))
	assert.True(t, originAllowed(testOrigin, []string{testOrigin}))
	assert.True(t, originAllowed("https://any.example.com", []string{"*"}))
	assert.False(t, originAllowed("https://any.example.com", []string{testOrigin}))
}

func TestMarkAllRead_LogsFailedUnreadCountPush(t *testing.T) {
	api := newTestAPI(t)
	alice := api.signup("alice")

	var logs bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&logs)
	t.Cleanup(func() { log.Logger = prev })

	// register a server-side connection that is already closed
	registered := make(chan struct{})
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		api.hub.Register(alice.ID, conn)
		conn.Close()
		close(registered)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	<-registered
	require.True(t, api.hub.IsOnline(alice.ID))

	rec := api.do(http.MethodPut, "/api/notifications/read", alice.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, logs.String(), "Failed to send unread_count message")
	assert.Contains(t, logs.String(), alice.ID)
}
