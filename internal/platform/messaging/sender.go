package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ErrPermissionDenied is returned when the device gateway refuses to send
// because the user has not granted the SMS permission.
var ErrPermissionDenied = errors.New("messaging: send permission denied")

// Sender delivers an SMS to a phone number. Implementations must not retry
// internally; the caller decides whether a failure is fatal.
type Sender interface {
	Send(ctx context.Context, number, body string) error
}

// GatewaySender posts send commands to the companion device gateway.
type GatewaySender struct {
	endpoint string
	client   *http.Client
	logger   zerolog.Logger
}

func NewGatewaySender(endpoint string, logger zerolog.Logger) *GatewaySender {
	return &GatewaySender{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

type sendCommand struct {
	Number string `json:"number"`
	Body   string `json:"body"`
}

func (s *GatewaySender) Send(ctx context.Context, number, body string) error {
	if number == "" {
		return fmt.Errorf("number is required")
	}

	payload, err := json.Marshal(sendCommand{Number: number, Body: body})
	if err != nil {
		return fmt.Errorf("marshal send command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver send command: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return ErrPermissionDenied
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		s.logger.Debug().Str("number", number).Msg("sms dispatched")
		return nil
	default:
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
}
