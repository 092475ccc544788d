package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

func TestNotificationSend(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	s := NewNotificationService("key-123", zerolog.Nop())
	s.endpoint = srv.URL

	msg := confirmationText(booking("Cleaning", "2024-01-01", "9am", "a@x.com"))
	if err := s.send(context.Background(), "+15550001", msg); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got["phone"] != "+15550001" || got["key"] != "key-123" {
		t.Errorf("request body = %v", got)
	}
	if !strings.Contains(got["message"], "Cleaning") || !strings.Contains(got["message"], "a@x.com") {
		t.Errorf("message = %q", got["message"])
	}
}

func TestNotificationSendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"Out of quota"}`))
	}))
	defer srv.Close()

	s := NewNotificationService("key", zerolog.Nop())
	s.endpoint = srv.URL

	err := s.send(context.Background(), "+15550001", "hi")
	if err == nil || !strings.Contains(err.Error(), "Out of quota") {
		t.Errorf("err = %v, want provider error", err)
	}
}

func TestBookingAdmittedSkipsWithoutPhoneOrKey(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	withKey := NewNotificationService("key", zerolog.Nop())
	withKey.endpoint = srv.URL
	withKey.BookingAdmitted(booking("Cleaning", "2024-01-01", "9am", "a@x.com"))

	noKey := NewNotificationService("", zerolog.Nop())
	noKey.endpoint = srv.URL
	b := booking("Cleaning", "2024-01-01", "9am", "a@x.com")
	b.Phone = "+15550001"
	noKey.BookingAdmitted(b)

	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("provider called %d times, want 0", n)
	}
}
