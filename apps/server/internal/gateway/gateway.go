package gateway

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"mahjong-lite/apps/server/internal/codec"
	"mahjong-lite/apps/server/internal/lobby"
	"mahjong-lite/apps/server/internal/table"
	"mahjong-lite/tile"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: Restrict in production
	},
}

// Connection represents a WebSocket client connection
type Connection struct {
	ID       string
	UserID   uint64
	Nickname string
	Conn     *websocket.Conn
	Send     chan []byte
	Gateway  *Gateway
	LastPing time.Time

	// Current table association
	TableID string
	Table   *table.Table
}

// Gateway manages WebSocket connections
type Gateway struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	userConns   map[uint64]*Connection // userID -> connection
	nextConnID  uint64
	errorSeq    uint64
	lobby       *lobby.Lobby
}

// New creates a new Gateway instance
func New(lby *lobby.Lobby) *Gateway {
	return &Gateway{
		connections: make(map[string]*Connection),
		userConns:   make(map[uint64]*Connection),
		lobby:       lby,
	}
}

// HandleWebSocket handles WebSocket upgrade and connection
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Gateway] Upgrade error: %v", err)
		return
	}

	g.mu.Lock()
	g.nextConnID++
	connID := fmt.Sprintf("conn_%d", g.nextConnID)
	// For demo: assign userID based on connID (in production, use auth)
	userID := g.nextConnID

	c := &Connection{
		ID:       connID,
		UserID:   userID,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Gateway:  g,
		LastPing: time.Now(),
	}
	g.connections[connID] = c
	g.userConns[userID] = c
	g.mu.Unlock()

	log.Printf("[Gateway] Client connected: %s (userID=%d), total: %d", connID, userID, len(g.connections))

	go c.readPump()
	go c.writePump()
}

func (c *Connection) readPump() {
	defer func() {
		c.notifyConnLost()
		c.Gateway.removeConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(65536)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		c.LastPing = time.Now()
		return nil
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Gateway] Read error: %v", err)
			}
			break
		}

		if messageType == websocket.TextMessage {
			c.handleMessage(message)
		}
	}
}

func (c *Connection) handleMessage(data []byte) {
	env, err := codec.DecodeClient(data)
	if err != nil {
		log.Printf("[Gateway] Failed to decode: %v", err)
		c.sendError(1, "invalid message format")
		return
	}

	log.Printf("[Gateway] Received from user %d: type=%s table=%s", c.UserID, env.Type, env.TableID)

	switch env.Type {
	case codec.ClientJoinTable:
		c.handleJoinTable(env)
	case codec.ClientStandUp:
		c.handleStandUp()
	case codec.ClientAction:
		c.handleAction(env.Action)
	default:
		log.Printf("[Gateway] Unknown envelope type: %s", env.Type)
	}
}

func (c *Connection) handleJoinTable(env *codec.ClientEnvelope) {
	if env.JoinTable != nil {
		c.Nickname = env.JoinTable.Nickname
	}

	var t *table.Table
	if env.TableID != "" {
		// Explicit rejoin after a reconnect.
		existing, ok := c.Gateway.lobby.GetTable(env.TableID)
		if !ok {
			c.sendError(2, "table not found")
			return
		}
		t = existing
	} else {
		// Quick start: find or create a table
		found, err := c.Gateway.lobby.QuickStart(c.Gateway.broadcastToUser)
		if err != nil {
			c.sendError(2, err.Error())
			return
		}
		t = found
	}

	c.TableID = t.ID
	c.Table = t

	err := t.SubmitEvent(table.Event{
		Type:     table.EventJoinTable,
		UserID:   c.UserID,
		Nickname: c.Nickname,
	})
	if err != nil {
		c.TableID = ""
		c.Table = nil
		c.sendError(2, err.Error())
		return
	}

	log.Printf("[Gateway] User %d joined table %s", c.UserID, t.ID)
}

func (c *Connection) handleStandUp() {
	if c.Table == nil {
		return
	}

	c.Table.SubmitEvent(table.Event{
		Type:   table.EventStandUp,
		UserID: c.UserID,
	})
	c.TableID = ""
	c.Table = nil
}

func (c *Connection) handleAction(req *codec.ActionRequest) {
	if c.Table == nil {
		c.sendError(3, "not in a table")
		return
	}
	if req == nil {
		c.sendError(4, "missing action payload")
		return
	}

	action, err := decodeAction(req)
	if err != nil {
		c.sendError(4, err.Error())
		return
	}

	if err := c.Table.SubmitEvent(table.Event{
		Type:   table.EventAction,
		UserID: c.UserID,
		Action: action,
	}); err != nil {
		c.sendError(5, err.Error())
	}
}

// decodeAction validates the wire action into an engine-typed one.
func decodeAction(req *codec.ActionRequest) (table.PlayerAction, error) {
	action := table.PlayerAction{Kind: req.Type}
	switch req.Type {
	case codec.ActionDiscard, codec.ActionKong:
		t, err := tile.Parse(req.Tile)
		if err != nil {
			return table.PlayerAction{}, fmt.Errorf("bad tile %q: %w", req.Tile, err)
		}
		action.Tile = t
	case codec.ActionClaim:
		kind, ok := codec.ParseClaimKind(req.Claim)
		if !ok {
			return table.PlayerAction{}, fmt.Errorf("bad claim %q", req.Claim)
		}
		action.Claim = kind
	case codec.ActionDraw, codec.ActionWin, codec.ActionPass:
	default:
		return table.PlayerAction{}, fmt.Errorf("unknown action %q", req.Type)
	}
	return action, nil
}

func (c *Connection) notifyConnLost() {
	if c.Table == nil {
		return
	}
	c.Table.SubmitEvent(table.Event{
		Type:   table.EventConnLost,
		UserID: c.UserID,
	})
}

func (c *Connection) sendError(code int32, msg string) {
	env := &codec.ServerEnvelope{
		TableID:    c.TableID,
		ServerSeq:  atomic.AddUint64(&c.Gateway.errorSeq, 1),
		ServerTsMs: time.Now().UnixMilli(),
		Type:       codec.ServerError,
		Error: &codec.ErrorResponse{
			Code:    code,
			Message: msg,
		},
	}
	data, err := codec.Encode(env)
	if err != nil {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (g *Gateway) removeConnection(c *Connection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.connections, c.ID)
	delete(g.userConns, c.UserID)
	log.Printf("[Gateway] Client disconnected: %s, total: %d", c.ID, len(g.connections))
}

// broadcastToUser sends a message to a specific user
func (g *Gateway) broadcastToUser(userID uint64, data []byte) {
	g.mu.RLock()
	c := g.userConns[userID]
	g.mu.RUnlock()

	if c != nil {
		select {
		case c.Send <- data:
		default:
			// Drop if buffer full
		}
	}
}

// Broadcast sends a message to all connections
func (g *Gateway) Broadcast(message []byte) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, c := range g.connections {
		select {
		case c.Send <- message:
		default:
			// Drop message if buffer full
		}
	}
}
