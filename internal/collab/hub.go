package collab

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

const (
	// syncTimeout bounds the state lookup done for a joining client.
	syncTimeout = 5 * time.Second

	// Cursors not refreshed for presenceTTL are dropped from their room.
	presenceTTL   = 2 * time.Minute
	presenceSweep = 30 * time.Second
)

type Room struct {
	boardID  string
	clients  map[string]*Client // clientID -> client
	presence *PresenceManager
	seq      int64
}

func NewRoom(boardID string) *Room {
	return &Room{
		boardID:  boardID,
		clients:  make(map[string]*Client),
		presence: NewPresenceManager(),
	}
}

// Hub groups connected clients into one room per board and relays presence,
// operations and change notifications between them.
type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // boardID -> room
	handler    OpHandler
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
}

func NewHub(handler OpHandler) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		handler:    handler,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes joins and leaves until Stop is called.
func (h *Hub) Run() {
	ticker := time.NewTicker(presenceSweep)
	defer ticker.Stop()
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-ticker.C:
			h.expirePresence(presenceTTL)
		case <-h.done:
			return
		}
	}
}

// Stop ends Run. Clients still connected keep their pumps until their
// connections close.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// RoomSize returns the number of clients connected to boardID.
func (h *Hub) RoomSize(boardID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if room, ok := h.rooms[boardID]; ok {
		return len(room.clients)
	}
	return 0
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.BoardID]
	if !ok {
		room = NewRoom(client.BoardID)
		h.rooms[client.BoardID] = room
	}
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	welcome, _ := json.Marshal(WelcomePayload{
		ClientID: client.ClientID,
		UserID:   client.UserID,
		BoardID:  client.BoardID,
	})
	client.Send(&Message{Type: TypeWelcome, BoardID: client.BoardID, Payload: welcome})

	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	state, err := h.handler.Sync(ctx, client.BoardID)
	cancel()
	if err != nil {
		slog.Error("sync board", "board", client.BoardID, "error", err)
		client.SendError("board unavailable")
	} else {
		client.Send(&Message{Type: TypeDocSync, BoardID: client.BoardID, Payload: state})
	}

	// Send current presence state to new client
	if stateMsg, err := room.presence.StateMessage(); err != nil {
		slog.Error("presence state", "board", client.BoardID, "error", err)
	} else {
		client.Send(stateMsg)
	}

	joinPayload, _ := json.Marshal(PresenceJoinPayload{
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	})
	joinMsg := &Message{
		Type:    TypePresenceJoin,
		UserID:  client.UserID,
		Payload: joinPayload,
	}
	h.Broadcast(client.BoardID, joinMsg, client.ClientID)

	slog.Info("client joined", "user", client.UserID, "board", client.BoardID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.BoardID]
	if !ok || room.clients[client.ClientID] != client {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	client.close()
	room.presence.Remove(client.ClientID)

	if len(room.clients) == 0 {
		delete(h.rooms, client.BoardID)
	}
	h.mu.Unlock()

	leavePayload, _ := json.Marshal(PresenceLeavePayload{
		UserID:   client.UserID,
		ClientID: client.ClientID,
	})
	leaveMsg := &Message{
		Type:    TypePresenceLeave,
		UserID:  client.UserID,
		Payload: leavePayload,
	}
	h.Broadcast(client.BoardID, leaveMsg, "")

	slog.Info("client left", "user", client.UserID, "board", client.BoardID)
}

func (h *Hub) handleMessage(ctx context.Context, sender *Client, msg *Message) {
	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	case TypeOpSubmit:
		h.handleOpSubmit(ctx, sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
		sender.SendError("unknown message type " + msg.Type)
	}
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	presence.UserID = sender.UserID
	presence.DisplayName = sender.DisplayName

	h.mu.RLock()
	room, ok := h.rooms[sender.BoardID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	room.presence.Update(sender.ClientID, &presence)

	outPayload, _ := json.Marshal(presence)
	outMsg := &Message{
		Type:    TypePresenceUpdate,
		UserID:  sender.UserID,
		Payload: outPayload,
	}
	h.Broadcast(sender.BoardID, outMsg, sender.ClientID)
}

// expirePresence drops cursors older than maxAge and announces each one
// with presence.idle.
func (h *Hub) expirePresence(maxAge time.Duration) {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, room := range h.rooms {
		rooms = append(rooms, room)
	}
	h.mu.RUnlock()

	for _, room := range rooms {
		for _, clientID := range room.presence.Expire(maxAge) {
			payload, _ := json.Marshal(PresenceLeavePayload{ClientID: clientID})
			h.Broadcast(room.boardID, &Message{Type: TypePresenceIdle, ClientID: clientID, Payload: payload}, "")
		}
	}
}

// Broadcast sends msg to every client on boardID except excludeClientID.
func (h *Hub) Broadcast(boardID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[boardID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}

// nextSeq returns the next server sequence number for boardID's room.
func (h *Hub) nextSeq(boardID string) int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[boardID]
	if !ok {
		return 0
	}
	room.seq++
	return room.seq
}
