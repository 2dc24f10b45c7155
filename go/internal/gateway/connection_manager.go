package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ktbartholomew/karate-scoreboard/go/internal/match/keys"
	"github.com/ktbartholomew/karate-scoreboard/go/internal/scoreboard"
	"github.com/rs/zerolog/log"
)

var (
	// ErrPromptTimeout is returned when no display answers a duration prompt in time.
	ErrPromptTimeout = errors.New("duration prompt timed out")
	// ErrPromptCancelled is returned when the operator dismisses the prompt.
	ErrPromptCancelled = errors.New("duration prompt cancelled")
	// ErrNoDisplays is returned when a prompt is requested with nobody connected.
	ErrNoDisplays = errors.New("no scoreboard displays connected")
)

// ConnectionManager manages the display sockets. It is the engine's input source, presenter
// and duration prompter at once.
type ConnectionManager struct {
	connections map[*Connection]bool
	latest      []byte
	mu          sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig

	broadcastCh chan []byte
	keyCh       chan keys.KeyEvent

	promptMu sync.Mutex
	prompts  map[string]chan DurationAnswerPayload
}

// Connection is one display socket.
type Connection struct {
	ID      string
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	ConnectedAt time.Time
}

// ConnectionConfig holds socket and prompt settings.
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	KeyBufferSize   int
	PromptTimeout   time.Duration
	CheckOrigin     func(r *http.Request) bool
}

// ConnectionStats is served on /ws/stats.
type ConnectionStats struct {
	TotalConnections int `json:"total_connections"`
	PendingPrompts   int `json:"pending_prompts"`
}

// DefaultConnectionConfig returns default socket settings.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		KeyBufferSize:   64,
		PromptTimeout:   60 * time.Second,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// NewConnectionManager creates a connection manager. Call Start to begin broadcasting.
func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan []byte, 256),
		keyCh:       make(chan keys.KeyEvent, config.KeyBufferSize),
		prompts:     make(map[string]chan DurationAnswerPayload),
	}
}

// Start processes broadcasts until ctx is cancelled.
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			return
		case data := <-cm.broadcastCh:
			cm.handleBroadcast(data)
		}
	}
}

// Keys delivers key-down frames from every display.
func (cm *ConnectionManager) Keys() <-chan keys.KeyEvent {
	return cm.keyCh
}

// Present broadcasts snap to every display. It never blocks; a full queue drops the frame.
func (cm *ConnectionManager) Present(snap scoreboard.Snapshot) {
	msg, err := NewMessage(MessageTypeSnapshot, snap)
	if err != nil {
		log.Error().Err(err).Msg("failed to build snapshot message")
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal snapshot message")
		return
	}

	cm.mu.Lock()
	cm.latest = data
	cm.mu.Unlock()

	cm.broadcast(data)
}

// PromptDuration asks the displays for a new duration and waits for the first answer.
func (cm *ConnectionManager) PromptDuration(ctx context.Context, current string) (string, error) {
	if cm.GetConnectionStats().TotalConnections == 0 {
		return "", ErrNoDisplays
	}

	promptID := uuid.New().String()
	answerCh := make(chan DurationAnswerPayload, 1)
	cm.promptMu.Lock()
	cm.prompts[promptID] = answerCh
	cm.promptMu.Unlock()
	defer func() {
		cm.promptMu.Lock()
		delete(cm.prompts, promptID)
		cm.promptMu.Unlock()
	}()

	msg, err := NewMessage(MessageTypePromptDuration, PromptDurationPayload{PromptID: promptID, Default: current})
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal prompt message: %w", err)
	}
	cm.broadcast(data)

	log.Info().Str("prompt_id", promptID).Str("default", current).Msg("waiting for match duration")

	timeout := time.NewTimer(cm.config.PromptTimeout)
	defer timeout.Stop()

	select {
	case answer := <-answerCh:
		if answer.Cancelled {
			return "", ErrPromptCancelled
		}
		return answer.Value, nil
	case <-timeout.C:
		return "", ErrPromptTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// UpgradeConnection upgrades an HTTP request to a display socket.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		Conn:        conn,
		Send:        make(chan []byte, 256),
		Manager:     cm,
		ConnectedAt: time.Now(),
	}

	cm.registerConnection(connection)

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("remote_addr", r.RemoteAddr).
		Msg("display connected")

	return nil
}

// registerConnection adds a connection and queues the latest snapshot for it.
func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.connections[conn] = true
	if cm.latest != nil {
		conn.Send <- cm.latest
	}

	log.Debug().
		Str("connection_id", conn.ID).
		Int("total_connections", len(cm.connections)).
		Msg("connection registered")
}

func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if _, exists := cm.connections[conn]; !exists {
		return
	}
	delete(cm.connections, conn)
	close(conn.Send)

	log.Info().Str("connection_id", conn.ID).Msg("display disconnected")
}

func (cm *ConnectionManager) broadcast(data []byte) {
	select {
	case cm.broadcastCh <- data:
	default:
		log.Warn().Msg("broadcast channel full, dropping message")
	}
}

func (cm *ConnectionManager) handleBroadcast(data []byte) {
	var slow []*Connection

	// sends happen under the read lock so unregister cannot close a channel mid-send
	cm.mu.RLock()
	for conn := range cm.connections {
		select {
		case conn.Send <- data:
		default:
			slow = append(slow, conn)
		}
	}
	delivered := len(cm.connections) - len(slow)
	cm.mu.RUnlock()

	for _, conn := range slow {
		log.Warn().
			Str("connection_id", conn.ID).
			Msg("connection send buffer full, closing connection")
		cm.unregisterConnection(conn)
		conn.Conn.Close()
	}

	log.Trace().Int("connections", delivered).Msg("message broadcasted")
}

// GetConnectionStats returns statistics about active connections.
func (cm *ConnectionManager) GetConnectionStats() ConnectionStats {
	cm.mu.RLock()
	total := len(cm.connections)
	cm.mu.RUnlock()

	cm.promptMu.Lock()
	pending := len(cm.prompts)
	cm.promptMu.Unlock()

	return ConnectionStats{TotalConnections: total, PendingPrompts: pending}
}

func (cm *ConnectionManager) deliverKey(conn *Connection, ev keys.KeyEvent) {
	select {
	case cm.keyCh <- ev:
	default:
		log.Warn().
			Str("connection_id", conn.ID).
			Str("code", ev.Code).
			Msg("key buffer full, dropping key")
	}
}

func (cm *ConnectionManager) deliverAnswer(conn *Connection, answer DurationAnswerPayload) {
	cm.promptMu.Lock()
	answerCh, ok := cm.prompts[answer.PromptID]
	if ok {
		delete(cm.prompts, answer.PromptID)
	}
	cm.promptMu.Unlock()

	if !ok {
		log.Debug().
			Str("connection_id", conn.ID).
			Str("prompt_id", answer.PromptID).
			Msg("answer for unknown or settled prompt")
		return
	}
	answerCh <- answer
}

// writePump sends queued frames and pings to the socket.
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
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump reads client frames until the socket closes.
func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		c.handleClientMessage(message)
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}

func (c *Connection) handleClientMessage(message []byte) {
	var msg Message
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Warn().Err(err).Str("connection_id", c.ID).Msg("malformed client message")
		return
	}

	payload, err := ParseClientMessage(&msg)
	if err != nil {
		log.Warn().
			Err(err).
			Str("connection_id", c.ID).
			Str("type", string(msg.Type)).
			Msg("malformed client payload")
		return
	}

	switch p := payload.(type) {
	case keys.KeyEvent:
		c.Manager.deliverKey(c, p)
	case DurationAnswerPayload:
		c.Manager.deliverAnswer(c, p)
	default:
		log.Debug().
			Str("connection_id", c.ID).
			Str("type", string(msg.Type)).
			Msg("ignoring client message")
	}
}
