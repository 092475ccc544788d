// Package realtime pushes booking events to websocket clients watching a
// date, so open booking forms can drop slots that were just taken.
package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/harentsoaR/doctors-portal-api/internal/metrics"
	"github.com/harentsoaR/doctors-portal-api/internal/models"
)

const (
	EventBookingCreated = "booking.created"

	sendBuffer = 16
	writeWait  = 10 * time.Second
)

type Event struct {
	Type          string `json:"type"`
	TreatmentName string `json:"treatmentName"`
	Date          string `json:"date"`
	Slot          string `json:"slot"`
}

type client struct {
	send chan []byte
}

// Hub keeps websocket subscribers grouped by date.
type Hub struct {
	mu       sync.Mutex
	subs     map[string]map[*client]struct{}
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewHub accepts websocket upgrades from the given origins. An empty list or
// "*" allows any origin, matching the CORS settings of the HTTP routes.
func NewHub(log zerolog.Logger, origins []string) *Hub {
	return &Hub{
		subs: make(map[string]map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: checkOrigin(origins),
		},
		log: log,
	}
}

func checkOrigin(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = struct{}{}
	}
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// Non-browser clients send no Origin.
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}

// BookingAdmitted broadcasts b to the subscribers of b.Date. A client whose
// buffer is full misses the event rather than blocking the booking request.
func (h *Hub) BookingAdmitted(b models.Booking) {
	payload, err := json.Marshal(Event{
		Type:          EventBookingCreated,
		TreatmentName: b.TreatmentName,
		Date:          b.Date,
		Slot:          b.Slot,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("encode booking event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.subs[b.Date] {
		select {
		case c.send <- payload:
		default:
			h.log.Warn().Str("date", b.Date).Msg("dropping booking event for slow subscriber")
		}
	}
}

// Subscribers returns how many clients watch date.
func (h *Hub) Subscribers(date string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[date])
}

func (h *Hub) subscribe(date string) *client {
	c := &client{send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	if h.subs[date] == nil {
		h.subs[date] = make(map[*client]struct{})
	}
	h.subs[date][c] = struct{}{}
	h.mu.Unlock()
	metrics.RealtimeSubscribers.Inc()
	return c
}

func (h *Hub) unsubscribe(date string, c *client) {
	h.mu.Lock()
	if set, ok := h.subs[date]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			metrics.RealtimeSubscribers.Dec()
		}
		if len(set) == 0 {
			delete(h.subs, date)
		}
	}
	h.mu.Unlock()
}

// ServeHTTP upgrades GET /ws/availability?date=... and streams events until
// the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		http.Error(w, "date query parameter is required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := h.subscribe(date)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer func() {
		h.unsubscribe(date, c)
		conn.Close()
	}()
	for {
		select {
		case msg := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
