// Package live listens for server invalidations and refreshes the matching
// client stores
package live

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"perfsuite/dashboard/dashboard-backend/internal/notifications"
)

const wsPath = "/api/ws"

// Invalidator is a store that can drop and reload its data
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Listener receives invalidation messages over a websocket
type Listener struct {
	url    string
	dialer *websocket.Dialer
	logger *zap.Logger

	mu     sync.RWMutex
	stores map[string]Invalidator
}

// NewListener creates a listener for the API at base, authenticating with
// the cookies in jar
func NewListener(base *url.URL, jar http.CookieJar, logger *zap.Logger) *Listener {
	u := *base
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = wsPath

	return &Listener{
		url: u.String(),
		dialer: &websocket.Dialer{
			Jar:              jar,
			HandshakeTimeout: 10 * time.Second,
		},
		logger: logger,
		stores: make(map[string]Invalidator),
	}
}

// Register routes invalidations of resource to store
func (l *Listener) Register(resource string, store Invalidator) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stores[resource] = store
}

// Run reads messages until ctx is done or the connection drops
func (l *Listener) Run(ctx context.Context) error {
	conn, resp, err := l.dialer.DialContext(ctx, l.url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("dial %s: %w", l.url, err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			conn.Close()
		case <-stop:
		}
	}()

	l.logger.Info("Listening for invalidations", zap.String("url", l.url))
	for {
		var msg notifications.Message
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read invalidation: %w", err)
		}
		l.handle(ctx, msg)
	}
}

func (l *Listener) handle(ctx context.Context, msg notifications.Message) {
	if msg.Type != notifications.MessageTypeInvalidate {
		return
	}
	l.mu.RLock()
	store, ok := l.stores[msg.Resource]
	l.mu.RUnlock()
	if !ok {
		l.logger.Debug("No store for invalidated resource", zap.String("resource", msg.Resource))
		return
	}
	if err := store.Invalidate(ctx); err != nil {
		l.logger.Warn("Failed to refresh invalidated store", zap.String("resource", msg.Resource), zap.Error(err))
	}
}
