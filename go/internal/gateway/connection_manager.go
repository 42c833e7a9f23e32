package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/triviahub/go/internal/trivia"
)

// ClientHandler consumes decoded client traffic. The router implements it.
type ClientHandler interface {
	HandleMessage(connID string, data []byte)
	HandleDisconnect(connID string)
}

// ConnectionManager tracks WebSocket connections and their session rooms,
// and implements trivia.Broadcaster on top of them.
type ConnectionManager struct {
	mu          sync.RWMutex
	connections map[string]*Connection            // conn id -> connection
	rooms       map[string]map[string]*Connection // session id -> conn id -> connection

	upgrader websocket.Upgrader
	config   ConnectionConfig
	handler  ClientHandler

	broadcastCh chan outbound
}

// Connection represents a WebSocket connection to a client.
type Connection struct {
	ID      string
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	ConnectedAt time.Time
	LastPing    time.Time
}

// ConnectionConfig holds configuration for WebSocket connections.
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// outbound is one queued delivery: to a room, a single connection, or all.
type outbound struct {
	sessionID string
	connID    string
	all       bool
	event     trivia.Event
}

// DefaultConnectionConfig returns default WebSocket configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins in development - restrict in production
			return true
		},
	}
}

// NewConnectionManager creates a new WebSocket connection manager.
func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*Connection),
		rooms:       make(map[string]map[string]*Connection),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan outbound, 1000),
	}
}

// SetHandler installs the consumer of inbound client traffic. Must be set
// before the first connection is accepted.
func (cm *ConnectionManager) SetHandler(h ClientHandler) {
	cm.handler = h
}

// Start begins processing queued deliveries.
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			return
		case msg := <-cm.broadcastCh:
			cm.deliver(msg)
		}
	}
}

// UpgradeConnection upgrades an HTTP connection to WebSocket and starts its
// read/write pumps. Session membership is established later via messages.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade WebSocket connection")
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		Conn:        conn,
		Send:        make(chan []byte, 256),
		Manager:     cm,
		ConnectedAt: time.Now(),
		LastPing:    time.Now(),
	}

	cm.registerConnection(connection)

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("conn_id", connection.ID).
		Msg("WebSocket connection established")

	return nil
}

func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.connections[conn.ID] = conn

	log.Debug().
		Str("conn_id", conn.ID).
		Int("total_connections", len(cm.connections)).
		Msg("connection registered")
}

func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if _, exists := cm.connections[conn.ID]; !exists {
		return
	}
	delete(cm.connections, conn.ID)
	close(conn.Send)

	for sessionID, room := range cm.rooms {
		if _, ok := room[conn.ID]; ok {
			delete(room, conn.ID)
			if len(room) == 0 {
				delete(cm.rooms, sessionID)
			}
		}
	}

	log.Info().
		Str("conn_id", conn.ID).
		Msg("connection unregistered")
}

// AddToGroup places a connection into a session room.
func (cm *ConnectionManager) AddToGroup(sessionID, connID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	conn, ok := cm.connections[connID]
	if !ok {
		return
	}
	if cm.rooms[sessionID] == nil {
		cm.rooms[sessionID] = make(map[string]*Connection)
	}
	cm.rooms[sessionID][connID] = conn
}

// RemoveFromGroup removes a connection from a session room.
func (cm *ConnectionManager) RemoveFromGroup(sessionID, connID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	room, ok := cm.rooms[sessionID]
	if !ok {
		return
	}
	delete(room, connID)
	if len(room) == 0 {
		delete(cm.rooms, sessionID)
	}
}

// ToGroup queues an event for every connection in a session room.
func (cm *ConnectionManager) ToGroup(sessionID string, event trivia.Event) {
	cm.enqueue(outbound{sessionID: sessionID, event: event})
}

// ToConnection queues an event for a single connection.
func (cm *ConnectionManager) ToConnection(connID string, event trivia.Event) {
	cm.enqueue(outbound{connID: connID, event: event})
}

// ToAll queues an event for every live connection.
func (cm *ConnectionManager) ToAll(event trivia.Event) {
	cm.enqueue(outbound{all: true, event: event})
}

func (cm *ConnectionManager) enqueue(msg outbound) {
	select {
	case cm.broadcastCh <- msg:
	default:
		log.Warn().
			Str("event_type", string(msg.event.Type)).
			Msg("broadcast channel full, dropping message")
	}
}

func (cm *ConnectionManager) deliver(msg outbound) {
	cm.mu.RLock()
	var targets []*Connection
	switch {
	case msg.all:
		for _, conn := range cm.connections {
			targets = append(targets, conn)
		}
	case msg.connID != "":
		if conn, ok := cm.connections[msg.connID]; ok {
			targets = append(targets, conn)
		}
	default:
		for _, conn := range cm.rooms[msg.sessionID] {
			targets = append(targets, conn)
		}
	}
	cm.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	data, err := json.Marshal(msg.event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for broadcast")
		return
	}

	for _, conn := range targets {
		select {
		case conn.Send <- data:
		default:
			// Connection is slow/dead, close it
			log.Warn().
				Str("conn_id", conn.ID).
				Msg("connection send buffer full, closing connection")
			cm.unregisterConnection(conn)
			conn.Conn.Close()
		}
	}

	log.Debug().
		Str("event_type", string(msg.event.Type)).
		Int("connections", len(targets)).
		Msg("event delivered")
}

// Stats returns counts of active connections and rooms.
func (cm *ConnectionManager) Stats() (totalConnections, activeRooms int) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections), len(cm.rooms)
}

// writePump handles sending messages to the WebSocket connection.
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.unregisterConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				// Channel was closed
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("conn_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("conn_id", c.ID).
					Msg("failed to send ping")
				return
			}
			c.LastPing = time.Now()
		}
	}
}

// readPump handles reading messages from the WebSocket connection and feeds
// them to the client handler. On exit the handler sees the disconnect so
// session membership is cleaned up.
func (c *Connection) readPump() {
	defer func() {
		if c.Manager.handler != nil {
			c.Manager.handler.HandleDisconnect(c.ID)
		}
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		c.LastPing = time.Now()
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("conn_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		if c.Manager.handler != nil {
			c.Manager.handler.HandleMessage(c.ID, message)
		}
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}
