package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quoteServer(t *testing.T, frames []string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, frame := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		}
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestQuoteListenerDeliversTicks(t *testing.T) {
	srv := quoteServer(t, []string{
		`{"s":"EURUSD","b":"1.1000","a":"1.1002"}`,
		`not json at all`,
		`{"s":"EURUSD","b":"1.1001","a":"1.1003"}`,
	})
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	l := NewQuoteListener(wsURL(srv), 16, nil)
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	first := <-l.Ticks()
	assert.Equal(t, "EURUSD", first.Symbol)
	assert.True(t, first.Bid.Equal(decimal.RequireFromString("1.1000")))
	assert.True(t, first.Ask.Equal(decimal.RequireFromString("1.1002")))

	// The unparseable frame is skipped, not fatal.
	second := <-l.Ticks()
	assert.True(t, second.Bid.Equal(decimal.RequireFromString("1.1001")))

	cancel()
	require.NoError(t, <-done)

	// The queue closes once Run returns.
	_, open := <-l.Ticks()
	assert.False(t, open)
}

func TestQuoteListenerDialFailure(t *testing.T) {
	l := NewQuoteListener("ws://127.0.0.1:1/stream", 16, nil)
	err := l.Run(context.Background())
	require.Error(t, err)

	_, open := <-l.Ticks()
	assert.False(t, open)
}
