package live

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
)

// Message types pushed to league rooms.
const (
	TypeStandingsUpdated  = "STANDINGS_UPDATED"
	TypeBracketUpdated    = "BRACKET_UPDATED"
	TypeMatchUpdated      = "MATCH_UPDATED"
	TypePlayoffsCompleted = "PLAYOFFS_COMPLETED"
)

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"room_id,omitempty"`
}

// Hub fans out league events to connected websocket clients. Each league is
// one room, keyed by its ID.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	rooms  map[string]map[*Client]bool
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			h.logger.Debug("client joined room",
				slog.String("room", client.Room),
				slog.Int("clients", len(h.rooms[client.Room])))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.Room]; ok {
				if _, okClient := room[client]; okClient {
					client.close()
					delete(room, client)
					if len(room) == 0 {
						delete(h.rooms, client.Room)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToLeague sends a typed message to every client watching the league.
// A slow client gets skipped rather than blocking the hub.
func (h *Hub) BroadcastToLeague(leagueID int, msgType string, payload interface{}) {
	room := strconv.Itoa(leagueID)

	msg := Message{Type: msgType, Payload: payload, RoomID: room}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal broadcast message",
			slog.String("type", msgType), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.rooms[room]
	if !ok {
		return
	}
	for client := range clients {
		client.mu.Lock()
		if client.closed {
			client.mu.Unlock()
			continue
		}
		select {
		case client.send <- data:
		default:
			h.logger.Warn("client send buffer full, dropping message", slog.String("room", room))
		}
		client.mu.Unlock()
	}
}
