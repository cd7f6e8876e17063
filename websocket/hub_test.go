package websocket

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishWithoutRunningHubDoesNotBlock(t *testing.T) {
	h := NewHub()
	for i := 0; i < broadcastQueue+10; i++ {
		h.Publish(EventOrderCreated, i)
	}
	assert.Equal(t, 0, h.ClientCount())
}

func TestDashboardReceivesPublishedEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	go hub.Run(ctx)

	e := echo.New()
	e.GET("/ws", func(c echo.Context) error { return HandleWebSocket(c, hub, "admin@example.com") })
	srv := httptest.NewServer(e)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var hello Event
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, "connected", hello.Type)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	hub.Publish(EventOrderUpdated, map[string]string{"_id": "abc"})

	var got Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, EventOrderUpdated, got.Type)
	assert.Equal(t, map[string]interface{}{"_id": "abc"}, got.Data)
}

func TestStoppedHubDoesNotBlockRegistration(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	returned := make(chan bool, 1)
	go func() {
		client := &Client{send: make(chan Event, 1)}
		ok := hub.Register(client)
		hub.Unregister(client)
		returned <- ok
	}()
	select {
	case ok := <-returned:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("register on a stopped hub blocked")
	}

	e := echo.New()
	e.GET("/ws", func(c echo.Context) error { return HandleWebSocket(c, hub, "admin@example.com") })
	srv := httptest.NewServer(e)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, hub.ClientCount())
}
