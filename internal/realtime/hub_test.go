package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/harentsoaR/doctors-portal-api/internal/models"
)

func TestBookingAdmittedReachesSubscribersOfDate(t *testing.T) {
	hub := NewHub(zerolog.Nop(), nil)
	jan1 := hub.subscribe("2024-01-01")
	jan2 := hub.subscribe("2024-01-02")
	defer hub.unsubscribe("2024-01-01", jan1)
	defer hub.unsubscribe("2024-01-02", jan2)

	hub.BookingAdmitted(models.Booking{TreatmentName: "Cleaning", Date: "2024-01-01", Slot: "9am"})

	select {
	case raw := <-jan1.send:
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			t.Fatal(err)
		}
		want := Event{Type: EventBookingCreated, TreatmentName: "Cleaning", Date: "2024-01-01", Slot: "9am"}
		if ev != want {
			t.Errorf("event = %+v, want %+v", ev, want)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	select {
	case raw := <-jan2.send:
		t.Errorf("subscriber of another date got %s", raw)
	default:
	}
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub(zerolog.Nop(), nil)
	c := hub.subscribe("2024-01-01")
	defer hub.unsubscribe("2024-01-01", c)

	done := make(chan struct{})
	go func() {
		for i := 0; i < sendBuffer*2; i++ {
			hub.BookingAdmitted(models.Booking{Date: "2024-01-01"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("BookingAdmitted blocked on a full subscriber")
	}
	if len(c.send) != sendBuffer {
		t.Errorf("buffered %d events, want %d", len(c.send), sendBuffer)
	}
}

func TestServeHTTP(t *testing.T) {
	hub := NewHub(zerolog.Nop(), nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("no date: status = %d, want 400", resp.StatusCode)
	}

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?date=2024-01-01"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for hub.Subscribers("2024-01-01") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.BookingAdmitted(models.Booking{TreatmentName: "Cleaning", Date: "2024-01-01", Slot: "10am"})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var ev Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	if ev.Slot != "10am" || ev.Type != EventBookingCreated {
		t.Errorf("event = %+v", ev)
	}

	conn.Close()
	deadline = time.Now().Add(time.Second)
	for hub.Subscribers("2024-01-01") != 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber not removed after close")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		origin  string
		want    bool
	}{
		{"no list allows any", nil, "https://evil.example", true},
		{"wildcard allows any", []string{"*"}, "https://evil.example", true},
		{"listed origin", []string{"https://portal.example"}, "https://portal.example", true},
		{"unlisted origin", []string{"https://portal.example"}, "https://evil.example", false},
		{"no origin header", []string{"https://portal.example"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/?date=2024-01-01", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := checkOrigin(tt.origins)(r); got != tt.want {
				t.Errorf("checkOrigin(%v) for %q = %v, want %v", tt.origins, tt.origin, got, tt.want)
			}
		})
	}
}

func TestServeHTTPRejectsUnlistedOrigin(t *testing.T) {
	hub := NewHub(zerolog.Nop(), []string{"https://portal.example"})
	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?date=2024-01-01"
	header := http.Header{"Origin": []string{"https://evil.example"}}
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		conn.Close()
		t.Fatal("dial from unlisted origin succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %v, want 403", resp)
	}
	if n := hub.Subscribers("2024-01-01"); n != 0 {
		t.Errorf("subscribers = %d, want 0", n)
	}
}
