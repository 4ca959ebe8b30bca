package websocket

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"perfsuite/dashboard/dashboard-backend/internal/auth"
	"perfsuite/dashboard/dashboard-backend/internal/notifications"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 16
)

var ErrUserNotConnected = errors.New("user not connected")

// Manager tracks websocket connections per user and fans invalidations out to them
type Manager struct {
	connections map[string]*Connection
	mu          sync.RWMutex
	upgrader    websocket.Upgrader
	logger      *zap.Logger
}

// Connection represents a WebSocket client connection
type Connection struct {
	ID        string
	UserID    string
	Conn      *websocket.Conn
	Send      chan notifications.Message
	closeOnce sync.Once
}

// NewManager creates a new WebSocket manager
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		connections: make(map[string]*Connection),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
	}
}

// ServeWS handles GET /api/ws for an authenticated user
func (m *Manager) ServeWS(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	if _, err := m.HandleConnection(c.Writer, c.Request, userID); err != nil {
		m.logger.Warn("WebSocket upgrade failed", zap.Error(err), zap.String("user_id", userID))
	}
}

// HandleConnection upgrades the request and starts the connection pumps
func (m *Manager) HandleConnection(w http.ResponseWriter, r *http.Request, userID string) (*Connection, error) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:     uuid.New().String(),
		UserID: userID,
		Conn:   conn,
		Send:   make(chan notifications.Message, sendBuffer),
	}

	m.mu.Lock()
	m.connections[connection.ID] = connection
	m.mu.Unlock()

	m.logger.Debug("Connection registered", zap.String("connection_id", connection.ID), zap.String("user_id", userID))

	go m.readPump(connection)
	go m.writePump(connection)

	return connection, nil
}

// readPump drains client frames so pongs and close frames are processed
func (m *Manager) readPump(conn *Connection) {
	defer m.unregister(conn)

	conn.Conn.SetReadLimit(512)
	conn.Conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.Conn.SetPongHandler(func(string) error {
		conn.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				m.logger.Debug("WebSocket read failed", zap.Error(err), zap.String("connection_id", conn.ID))
			}
			return
		}
	}
}

// writePump pumps messages to the WebSocket connection
func (m *Manager) writePump(conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.Conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			conn.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (m *Manager) unregister(conn *Connection) {
	m.mu.Lock()
	delete(m.connections, conn.ID)
	m.mu.Unlock()

	conn.closeOnce.Do(func() { close(conn.Send) })
	m.logger.Debug("Connection unregistered", zap.String("connection_id", conn.ID), zap.String("user_id", conn.UserID))
}

// SendToUser sends a message to every connection of a user
func (m *Manager) SendToUser(userID string, message notifications.Message) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sent := 0
	for _, conn := range m.connections {
		if conn.UserID != userID {
			continue
		}
		select {
		case conn.Send <- message:
			sent++
		default:
			// Connection buffer full, skip
		}
	}

	if sent == 0 {
		return ErrUserNotConnected
	}
	return nil
}

// Invalidate implements notifications.Publisher
func (m *Manager) Invalidate(userID, resource string) {
	err := m.SendToUser(userID, notifications.Message{
		Type:      notifications.MessageTypeInvalidate,
		Resource:  resource,
		Timestamp: time.Now(),
	})
	if err != nil && !errors.Is(err, ErrUserNotConnected) {
		m.logger.Warn("Failed to publish invalidation", zap.Error(err), zap.String("user_id", userID))
	}
}

// GetConnectionCount returns the number of active connections
func (m *Manager) GetConnectionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections)
}

// Close closes all connections
func (m *Manager) Close() {
	m.mu.Lock()
	connections := m.connections
	m.connections = make(map[string]*Connection)
	m.mu.Unlock()

	for _, conn := range connections {
		conn.Conn.Close()
	}
}
