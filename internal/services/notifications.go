package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/harentsoaR/doctors-portal-api/internal/models"
)

const textbeltEndpoint = "https://textbelt.com/text"

// NotificationService sends booking confirmations by SMS through Textbelt.
// Without an API key it only logs.
type NotificationService struct {
	apiKey   string
	endpoint string
	client   *http.Client
	log      zerolog.Logger
}

func NewNotificationService(apiKey string, log zerolog.Logger) *NotificationService {
	return &NotificationService{
		apiKey:   apiKey,
		endpoint: textbeltEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      log,
	}
}

// BookingAdmitted sends the confirmation in the background so the booking
// response is not held up by the SMS provider.
func (s *NotificationService) BookingAdmitted(b models.Booking) {
	if b.Phone == "" {
		s.log.Debug().Str("userEmail", b.UserEmail).Msg("SMS not sent: booking has no phone number")
		return
	}
	if s.apiKey == "" {
		s.log.Debug().Msg("SMS not sent: TEXTBELT_API_KEY is not set")
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.send(ctx, b.Phone, confirmationText(b)); err != nil {
			s.log.Error().Err(err).Str("phone", b.Phone).Msg("failed to send booking confirmation SMS")
			return
		}
		s.log.Info().Str("phone", b.Phone).Msg("booking confirmation SMS sent")
	}()
}

func confirmationText(b models.Booking) string {
	name := b.PatientName
	if name == "" {
		name = b.UserEmail
	}
	return fmt.Sprintf("Appointment Confirmed: %s for %s on %s at %s.", b.TreatmentName, name, b.Date, b.Slot)
}

func (s *NotificationService) send(ctx context.Context, phone, message string) error {
	body, err := json.Marshal(map[string]string{
		"phone":   phone,
		"message": message,
		"key":     s.apiKey,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("textbelt request: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode textbelt response (status %d): %w", resp.StatusCode, err)
	}
	if !result.Success {
		return fmt.Errorf("textbelt rejected message: %s", result.Error)
	}
	return nil
}
