package websocket

import (
	"log"
	"sync"
	"time"

	"tubescribe/types"
)

// allJobs is the pseudo job ID used by clients that want every job's
// events.
const allJobs = "all"

// Hub interface defines the methods for fanning job progress out to
// WebSocket clients.
type Hub interface {
	Run()
	Broadcast(jobID string, ev types.ProgressEvent)
	RegisterClient(client *Client)
	UnregisterClient(client *Client)
}

// hub maintains the set of active clients keyed by job ID and
// broadcasts events to them. Delivery is best-effort: a client that
// cannot keep up is dropped rather than stalling the coordinator.
type hub struct {
	clients map[string]map[*Client]bool

	broadcast  chan Message
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex
}

// NewHub creates a new WebSocket hub.
func NewHub() Hub {
	return &hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan Message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's main event loop.
func (h *hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.jobID] == nil {
				h.clients[client.jobID] = make(map[*Client]bool)
			}
			h.clients[client.jobID][client] = true
			h.mu.Unlock()
			log.Printf("WebSocket client connected for job %s", client.jobID)

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.jobID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.clients, client.jobID)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("WebSocket client disconnected for job %s", client.jobID)

		case message := <-h.broadcast:
			h.mu.RLock()
			h.deliver(h.clients[message.JobID], message)
			h.deliver(h.clients[allJobs], message)
			h.mu.RUnlock()
		}
	}
}

// deliver sends to every client in the set, dropping clients whose
// send buffer is full.
func (h *hub) deliver(clients map[*Client]bool, message Message) {
	for client := range clients {
		select {
		case client.send <- message:
		default:
			close(client.send)
			delete(clients, client)
		}
	}
}

// Broadcast publishes a job event to its WebSocket listeners. Never
// blocks the caller: when the hub is saturated the message is dropped.
func (h *hub) Broadcast(jobID string, ev types.ProgressEvent) {
	msg := Message{
		JobID:         jobID,
		Timestamp:     time.Now(),
		ProgressEvent: ev,
	}

	select {
	case h.broadcast <- msg:
	default:
		log.Printf("WebSocket broadcast channel full, dropping message for job %s", jobID)
	}
}

// RegisterClient registers a new client with the hub.
func (h *hub) RegisterClient(client *Client) {
	h.register <- client
}

// UnregisterClient unregisters a client from the hub.
func (h *hub) UnregisterClient(client *Client) {
	h.unregister <- client
}
