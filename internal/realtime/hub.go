package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"quickclean/internal/domain"
	applog "quickclean/internal/log"
)

// Subscriber is one live connection. *websocket.Conn satisfies it.
type Subscriber interface {
	WriteJSON(v any) error
	Close() error
}

type membership struct {
	Sub       Subscriber
	BookingID string
}

// Hub routes booking events to the subscribers of each booking's room. All
// room bookkeeping and all writes happen on the Run goroutine; writes run
// without holding mu.
type Hub struct {
	rooms map[string]map[Subscriber]bool
	mu    sync.RWMutex

	join   chan membership
	leave  chan membership
	drop   chan Subscriber
	events chan domain.BookingEvent
	done   chan struct{}
}

const eventBuffer = 256

func NewHub() *Hub {
	return &Hub{
		rooms:  make(map[string]map[Subscriber]bool),
		join:   make(chan membership),
		leave:  make(chan membership),
		drop:   make(chan Subscriber),
		events: make(chan domain.BookingEvent, eventBuffer),
		done:   make(chan struct{}),
	}
}

// Run serves the hub until ctx is cancelled, then closes every subscriber.
// Join, Leave and Drop become no-ops once Run has returned.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, subs := range h.rooms {
				for s := range subs {
					_ = s.Close()
				}
				delete(h.rooms, id)
			}
			h.mu.Unlock()
			return

		case m := <-h.join:
			h.mu.Lock()
			if h.rooms[m.BookingID] == nil {
				h.rooms[m.BookingID] = make(map[Subscriber]bool)
			}
			h.rooms[m.BookingID][m.Sub] = true
			h.mu.Unlock()

		case m := <-h.leave:
			h.mu.Lock()
			h.remove(m.BookingID, m.Sub)
			h.mu.Unlock()

		case s := <-h.drop:
			h.mu.Lock()
			for id := range h.rooms {
				h.remove(id, s)
			}
			h.mu.Unlock()

		case ev := <-h.events:
			h.deliver(ev)
		}
	}
}

// remove must be called with mu held.
func (h *Hub) remove(id string, s Subscriber) {
	subs := h.rooms[id]
	if subs == nil {
		return
	}
	delete(subs, s)
	if len(subs) == 0 {
		delete(h.rooms, id)
	}
}

// deadliner is implemented by connections that support write timeouts.
type deadliner interface {
	SetWriteDeadline(t time.Time) error
}

const writeWait = 5 * time.Second

// deliver writes ev to a snapshot of its room outside the lock. Each write is
// bounded by writeWait so a stalled client cannot hold up the hub for long.
func (h *Hub) deliver(ev domain.BookingEvent) {
	h.mu.RLock()
	subs := make([]Subscriber, 0, len(h.rooms[ev.BookingID]))
	for s := range h.rooms[ev.BookingID] {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	for _, s := range subs {
		if d, ok := s.(deadliner); ok {
			_ = d.SetWriteDeadline(time.Now().Add(writeWait))
		}
		if err := s.WriteJSON(ev); err != nil {
			applog.Error(nil, "ws.write", err, map[string]any{"booking_id": ev.BookingID})
			_ = s.Close()
			h.mu.Lock()
			for id := range h.rooms {
				h.remove(id, s)
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues ev for delivery and never blocks. When the queue is full
// the event is dropped.
func (h *Hub) Publish(ev domain.BookingEvent) {
	select {
	case h.events <- ev:
	default:
		applog.Error(nil, "ws.publish.drop", errors.New("event queue full"), map[string]any{
			"booking_id": ev.BookingID,
			"type":       ev.Type,
		})
	}
}

func (h *Hub) Join(s Subscriber, bookingID string) {
	select {
	case h.join <- membership{Sub: s, BookingID: bookingID}:
	case <-h.done:
	}
}

func (h *Hub) Leave(s Subscriber, bookingID string) {
	select {
	case h.leave <- membership{Sub: s, BookingID: bookingID}:
	case <-h.done:
	}
}

func (h *Hub) Drop(s Subscriber) {
	select {
	case h.drop <- s:
	case <-h.done:
	}
}

// Subscribers reports how many connections watch bookingID.
func (h *Hub) Subscribers(bookingID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[bookingID])
}

// frame is what clients send over the socket.
type frame struct {
	Action    string `json:"action"` // join | leave
	BookingID string `json:"bookingId"`
}

// Serve joins c to the room named by the :id route param and then follows
// join/leave frames until the client goes away. Malformed frames are ignored.
func (h *Hub) Serve(c *websocket.Conn) {
	if id := strings.TrimSpace(c.Params("id")); id != "" {
		h.Join(c, id)
	}
	defer h.Drop(c)

	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			return
		}
		var f frame
		if json.Unmarshal(raw, &f) != nil {
			continue
		}
		id := strings.TrimSpace(f.BookingID)
		if id == "" {
			continue
		}
		switch f.Action {
		case "join":
			h.Join(c, id)
		case "leave":
			h.Leave(c, id)
		}
	}
}
