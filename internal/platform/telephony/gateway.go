package telephony

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const eventBufferSize = 64

// DeviceGateway bridges the server and the companion device: outbound dial
// commands are posted to the device endpoint, and inbound call-state
// transitions arrive on a webhook and are republished on a channel.
type DeviceGateway struct {
	dialEndpoint string
	client       *http.Client
	logger       zerolog.Logger
	events       chan CallEvent
}

func NewDeviceGateway(dialEndpoint string, logger zerolog.Logger) *DeviceGateway {
	return &DeviceGateway{
		dialEndpoint: dialEndpoint,
		client:       &http.Client{Timeout: 10 * time.Second},
		logger:       logger,
		events:       make(chan CallEvent, eventBufferSize),
	}
}

type dialCommand struct {
	Number string `json:"number"`
}

// Dial posts a dial command to the device gateway.
func (g *DeviceGateway) Dial(ctx context.Context, number string) error {
	if number == "" {
		return fmt.Errorf("number is required")
	}

	payload, err := json.Marshal(dialCommand{Number: number})
	if err != nil {
		return fmt.Errorf("marshal dial command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.dialEndpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build dial request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver dial command: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return ErrPermissionDenied
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		g.logger.Debug().Str("number", number).Msg("dial command dispatched")
		return nil
	default:
		return fmt.Errorf("dial gateway returned status %d", resp.StatusCode)
	}
}

// Events returns the stream of call-state transitions.
func (g *DeviceGateway) Events() <-chan CallEvent {
	return g.events
}

type callEventPayload struct {
	State  string `json:"state"`
	Number string `json:"number"`
}

// HandleCallEvent receives a call-state transition from the device.
// Malformed payloads are acknowledged and dropped so a misbehaving device
// cannot wedge the webhook.
func (g *DeviceGateway) HandleCallEvent(c echo.Context) error {
	var payload callEventPayload
	if err := c.Bind(&payload); err != nil {
		g.logger.Warn().Err(err).Msg("dropping malformed call event")
		return c.NoContent(http.StatusAccepted)
	}
	if !ValidState(payload.State) {
		g.logger.Warn().Str("state", payload.State).Msg("dropping call event with unknown state")
		return c.NoContent(http.StatusAccepted)
	}

	evt := CallEvent{
		State:  CallState(payload.State),
		Number: payload.Number,
		At:     time.Now(),
	}

	select {
	case g.events <- evt:
	default:
		g.logger.Warn().Str("state", payload.State).Msg("call event buffer full, dropping")
	}

	return c.NoContent(http.StatusAccepted)
}

// RegisterRoutes registers the device webhook.
func (g *DeviceGateway) RegisterRoutes(group *echo.Group) {
	group.POST("/call-events", g.HandleCallEvent)
}
