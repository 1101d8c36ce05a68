package escalation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/movicare/movicare/internal/domain/contacts"
	"github.com/movicare/movicare/internal/platform/messaging"
)

// ErrNotArming is returned when a panic release arrives with no countdown
// in progress for that senior.
var ErrNotArming = errors.New("escalation: no panic countdown in progress")

// ContactDirectory resolves a senior's emergency contacts. Satisfied by
// contacts.Service.
type ContactDirectory interface {
	DialOrder(ctx context.Context, seniorID uuid.UUID) ([]*contacts.EmergencyContact, error)
	Primary(ctx context.Context, seniorID uuid.UUID) (*contacts.EmergencyContact, error)
}

// PanicState is the controller's view of one senior's panic button.
type PanicState string

const (
	PanicIdle   PanicState = "idle"
	PanicArming PanicState = "arming"
)

// Controller implements the hold-to-arm panic button. Pressing starts a
// countdown; releasing before it expires turns the press into a check-in
// SMS, while holding through expiry confirms the emergency and starts the
// call sequence. Countdown expiry and release race against each other, so
// both resolve under the controller mutex.
type Controller struct {
	contacts ContactDirectory
	sms      messaging.Sender
	seq      *Sequencer
	notifier Notifier
	logger   zerolog.Logger
	hold     time.Duration

	mu     sync.Mutex
	arming map[uuid.UUID]*time.Timer
}

func NewController(dir ContactDirectory, sms messaging.Sender, seq *Sequencer, notifier Notifier, hold time.Duration, logger zerolog.Logger) *Controller {
	return &Controller{
		contacts: dir,
		sms:      sms,
		seq:      seq,
		notifier: notifier,
		logger:   logger,
		hold:     hold,
		arming:   make(map[uuid.UUID]*time.Timer),
	}
}

// PressStart arms the countdown for the senior. A press while a countdown
// is already running is ignored; the original expiry stands.
func (c *Controller) PressStart(seniorID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, armed := c.arming[seniorID]; armed {
		return
	}
	c.arming[seniorID] = time.AfterFunc(c.hold, func() {
		c.confirm(seniorID)
	})
	c.logger.Info().Str("senior_id", seniorID.String()).Msg("panic countdown armed")
}

// confirm runs when the countdown expires without a release. It removes the
// arming entry and launches the call sequence.
func (c *Controller) confirm(seniorID uuid.UUID) {
	c.mu.Lock()
	// A release that won the race already removed the entry; the emergency
	// was cancelled and nothing should be dialed.
	if _, armed := c.arming[seniorID]; !armed {
		c.mu.Unlock()
		return
	}
	delete(c.arming, seniorID)
	c.mu.Unlock()

	ctx := context.Background()
	c.logger.Warn().Str("senior_id", seniorID.String()).Msg("panic confirmed")
	if c.notifier != nil {
		c.notifier.PanicEvent(ctx, seniorID, "Panic button held: emergency calls starting")
	}

	ordered, err := c.contacts.DialOrder(ctx, seniorID)
	if err != nil {
		c.logger.Error().Err(err).Str("senior_id", seniorID.String()).Msg("failed to load emergency contacts")
		return
	}
	queue := make([]Contact, 0, len(ordered))
	for _, ec := range ordered {
		queue = append(queue, Contact{Name: ec.Name, Number: ec.Phone})
	}

	if err := c.seq.Start(ctx, seniorID, queue); err != nil {
		if errors.Is(err, ErrEmptyContacts) && c.notifier != nil {
			c.notifier.PanicEvent(ctx, seniorID, "Panic confirmed but no emergency contacts are configured")
		}
		c.logger.Error().Err(err).Str("senior_id", seniorID.String()).Msg("call sequence failed to start")
	}
}

// PressEnd releases the button. If the countdown is still running it is
// cancelled and the primary contact gets a check-in SMS instead. A release
// after the countdown fired is a no-op; the emergency is already underway.
func (c *Controller) PressEnd(ctx context.Context, seniorID uuid.UUID) error {
	c.mu.Lock()
	timer, armed := c.arming[seniorID]
	if !armed {
		c.mu.Unlock()
		return ErrNotArming
	}
	if !timer.Stop() {
		// Expiry fired first; confirm owns this press now.
		c.mu.Unlock()
		return nil
	}
	delete(c.arming, seniorID)
	c.mu.Unlock()

	return c.checkIn(ctx, seniorID)
}

func (c *Controller) checkIn(ctx context.Context, seniorID uuid.UUID) error {
	primary, err := c.contacts.Primary(ctx, seniorID)
	if err != nil {
		return err
	}
	if primary == nil {
		return fmt.Errorf("no emergency contact to notify")
	}

	body := "Just checking in. Everything is fine."
	if err := c.sms.Send(ctx, primary.Phone, body); err != nil {
		return fmt.Errorf("send check-in: %w", err)
	}

	c.logger.Info().
		Str("senior_id", seniorID.String()).
		Str("contact", primary.Name).
		Msg("check-in sent")
	if c.notifier != nil {
		c.notifier.CheckInEvent(ctx, seniorID, fmt.Sprintf("Check-in sent to %s", primary.Name))
	}
	return nil
}

// State reports whether the senior's countdown is running.
func (c *Controller) State(seniorID uuid.UUID) PanicState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, armed := c.arming[seniorID]; armed {
		return PanicArming
	}
	return PanicIdle
}
