package broadcast

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	domain "github.com/V1per16/an0n-chat-render/domain/chat"
	"github.com/gofiber/contrib/websocket"
)

// Conn is the subset of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	WriteJSON(v interface{}) error
	Close() error
}

var _ Conn = (*websocket.Conn)(nil)

// Client represents a connected, authenticated WebSocket client. User is the
// session snapshot resolved at handshake; it is attached for the connection's
// lifetime and never re-validated per message.
type Client struct {
	ID   string
	User domain.User
	Conn Conn
}

type registration struct {
	client      *Client
	loadBacklog func() []MessagePayload
}

type delivery struct {
	targetID  string // deliver to this connection only; "" fans out
	excludeID string // skip this connection on fan-out
	frame     Frame
}

type typingSignal struct {
	clientID  string
	isTyping  bool
	fromTimer bool
	gen       uint64
}

// Hub is the central dispatcher. A single run loop owns every connection
// write and serializes register/unregister/fan-out, so the presence snapshot
// broadcast after each change exactly matches the set of open connections
// and every observer sees events in the same relative order.
type Hub struct {
	presence *PresenceTracker
	typing   *TypingTracker

	clients    map[string]*Client
	register   chan registration
	unregister chan *Client
	deliver    chan delivery
	typingCh   chan typingSignal
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	h := &Hub{
		presence:   NewPresenceTracker(),
		clients:    make(map[string]*Client),
		register:   make(chan registration),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, 256),
		typingCh:   make(chan typingSignal, 64),
		done:       make(chan struct{}),
	}
	h.typing = NewTypingTracker(DefaultTypingTimeout, h.expireTyping)
	return h
}

// Run starts the hub's main loop. It accepts a context for graceful shutdown.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Println("[broadcast] Hub shutting down...")
			h.closeAllClients()
			close(h.done)
			return
		case reg := <-h.register:
			h.handleRegister(reg)
		case client := <-h.unregister:
			h.handleUnregister(client)
		case d := <-h.deliver:
			h.handleDeliver(d)
		case sig := <-h.typingCh:
			h.handleTyping(sig)
		}
	}
}

// Wait blocks until the hub has stopped.
func (h *Hub) Wait() {
	<-h.done
}

// Register attaches an authenticated client. The run loop broadcasts the
// updated presence snapshot to everyone (joiner included), a user_joined
// frame to all others, and replays the backlog to the joiner only.
// loadBacklog runs inside the same loop iteration, so a message committed
// while it runs is delivered on the live stream rather than lost between
// backlog and registration.
func (h *Hub) Register(client *Client, loadBacklog func() []MessagePayload) {
	select {
	case h.register <- registration{client: client, loadBacklog: loadBacklog}:
	case <-h.done:
	}
}

// Unregister detaches a client after its transport closed. The run loop
// clears any typing entry, broadcasts the updated presence snapshot to the
// remaining connections and a user_left frame to all others.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast fans a frame out to every connected client.
func (h *Hub) Broadcast(frame Frame) {
	h.enqueue(delivery{frame: frame})
}

// SendTo delivers a frame to a single connection, used for per-connection
// error and denial frames.
func (h *Hub) SendTo(clientID string, frame Frame) {
	h.enqueue(delivery{targetID: clientID, frame: frame})
}

// Typing relays a typing signal from a connection.
func (h *Hub) Typing(clientID string, isTyping bool) {
	select {
	case h.typingCh <- typingSignal{clientID: clientID, isTyping: isTyping}:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Presence returns the presence tracker.
func (h *Hub) Presence() *PresenceTracker {
	return h.presence
}

func (h *Hub) enqueue(d delivery) {
	select {
	case h.deliver <- d:
	case <-h.done:
	}
}

// expireTyping runs on a timer goroutine; it re-enters the run loop so the
// coalesced clear broadcast is ordered like any other typing signal.
func (h *Hub) expireTyping(clientID string, gen uint64) {
	select {
	case h.typingCh <- typingSignal{clientID: clientID, isTyping: false, fromTimer: true, gen: gen}:
	case <-h.done:
	}
}

func (h *Hub) handleRegister(reg registration) {
	client := reg.client

	var backlog []MessagePayload
	if reg.loadBacklog != nil {
		backlog = reg.loadBacklog()
	}

	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()
	h.presence.Register(client.ID, client.User)

	h.fanOut(Frame{Type: FramePresence, Users: h.presence.Snapshot()}, "")
	user := client.User.Snapshot()
	h.fanOut(Frame{Type: FrameUserJoined, User: &user}, client.ID)
	h.sendToClient(client, Frame{Type: FrameHistory, Messages: backlog})

	log.Printf("[broadcast] Client %s (%s) registered", client.ID, client.User.Name)
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client.ID]
	if ok {
		delete(h.clients, client.ID)
	}
	h.mu.Unlock()
	if !ok {
		return
	}

	if user, wasTyping := h.typing.Clear(client.ID); wasTyping {
		h.fanOut(TypingFrame(user, false), client.ID)
	}
	h.presence.Unregister(client.ID)

	h.fanOut(Frame{Type: FramePresence, Users: h.presence.Snapshot()}, "")
	user := client.User.Snapshot()
	h.fanOut(Frame{Type: FrameUserLeft, User: &user}, client.ID)

	log.Printf("[broadcast] Client %s (%s) unregistered", client.ID, client.User.Name)
}

func (h *Hub) handleDeliver(d delivery) {
	if d.targetID != "" {
		h.mu.RLock()
		client, ok := h.clients[d.targetID]
		h.mu.RUnlock()
		if ok {
			h.sendToClient(client, d.frame)
		}
		return
	}
	h.fanOut(d.frame, d.excludeID)
}

func (h *Hub) handleTyping(sig typingSignal) {
	h.mu.RLock()
	client, ok := h.clients[sig.clientID]
	h.mu.RUnlock()

	if !ok {
		if sig.fromTimer {
			return
		}
		// Disconnect already cleared the entry.
		h.typing.Clear(sig.clientID)
		return
	}

	if sig.fromTimer {
		if user, cleared := h.typing.ClearExpired(sig.clientID, sig.gen); cleared {
			h.fanOut(TypingFrame(user, false), sig.clientID)
		}
		return
	}

	if h.typing.Set(sig.clientID, client.User, sig.isTyping) {
		h.fanOut(TypingFrame(client.User, sig.isTyping), sig.clientID)
	}
}

// fanOut writes a frame to every client except excludeID ("" excludes none).
func (h *Hub) fanOut(frame Frame, excludeID string) {
	data, err := json.Marshal(frame)
	if err != nil {
		log.Printf("[broadcast] Failed to marshal %s frame: %v", frame.Type, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, client := range h.clients {
		if id == excludeID {
			continue
		}
		if err := client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("[broadcast] Failed to send to client %s: %v", id, err)
		}
	}
}

func (h *Hub) sendToClient(client *Client, frame Frame) {
	if err := client.Conn.WriteJSON(frame); err != nil {
		log.Printf("[broadcast] Failed to send to client %s: %v", client.ID, err)
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, client := range h.clients {
		_ = client.Conn.Close()
	}
	h.clients = make(map[string]*Client)
}
