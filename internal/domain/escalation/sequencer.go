package escalation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/movicare/movicare/internal/platform/telephony"
)

// ErrEmptyContacts is returned when a call sequence is started for a senior
// with no emergency contacts.
var ErrEmptyContacts = errors.New("escalation: no emergency contacts")

// Outcome is the terminal state of a call sequence.
type Outcome string

const (
	// OutcomeSustained means a contact stayed on the call long enough to
	// count as reached.
	OutcomeSustained Outcome = "sustained"
	// OutcomeExhausted means every contact was tried without a sustained
	// call. Informational, not an error.
	OutcomeExhausted Outcome = "exhausted"
	OutcomeCancelled Outcome = "cancelled"
	// OutcomeDenied means the device refused the call permission.
	OutcomeDenied Outcome = "denied"
)

// Contact is one dial target in the escalation order.
type Contact struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

// Notifier fans escalation events out to the notification feed.
type Notifier interface {
	PanicEvent(ctx context.Context, seniorID uuid.UUID, message string)
	CheckInEvent(ctx context.Context, seniorID uuid.UUID, message string)
}

// session is the state of one in-flight call sequence. It is owned by the
// Sequencer and only touched under its mutex.
type session struct {
	seniorID  uuid.UUID
	contacts  []Contact
	index     int
	dialStart time.Time
}

// Status is a point-in-time snapshot of the sequencer for API responses.
type Status struct {
	Active    bool       `json:"active"`
	SeniorID  uuid.UUID  `json:"senior_id,omitempty"`
	Contact   *Contact   `json:"contact,omitempty"`
	Position  int        `json:"position,omitempty"`
	Total     int        `json:"total,omitempty"`
	DialStart *time.Time `json:"dial_start,omitempty"`
}

// Sequencer walks a senior's emergency contacts, dialing one at a time and
// reacting to device call-state transitions. At most one sequence is active;
// starting a new one replaces the old. Event handling, Start and Cancel are
// serialized under one mutex.
type Sequencer struct {
	dialer         telephony.Dialer
	notifier       Notifier
	logger         zerolog.Logger
	sustainedAfter time.Duration

	mu      sync.Mutex
	current *session
}

func NewSequencer(dialer telephony.Dialer, notifier Notifier, sustainedAfter time.Duration, logger zerolog.Logger) *Sequencer {
	return &Sequencer{
		dialer:         dialer,
		notifier:       notifier,
		logger:         logger,
		sustainedAfter: sustainedAfter,
	}
}

// Start begins a call sequence for the senior, dialing the first contact.
// Any in-flight sequence is dropped first, whoever it belonged to.
func (s *Sequencer) Start(ctx context.Context, seniorID uuid.UUID, contacts []Contact) error {
	if len(contacts) == 0 {
		return ErrEmptyContacts
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.logger.Warn().
			Str("senior_id", s.current.seniorID.String()).
			Msg("replacing in-flight call sequence")
	}
	s.current = &session{seniorID: seniorID, contacts: contacts}

	return s.dialLocked(ctx)
}

// dialLocked dials the session's current contact. Caller holds s.mu.
func (s *Sequencer) dialLocked(ctx context.Context) error {
	sess := s.current
	for sess.index < len(sess.contacts) {
		contact := sess.contacts[sess.index]
		sess.dialStart = time.Now()

		err := s.dialer.Dial(ctx, contact.Number)
		if err == nil {
			s.logger.Info().
				Str("senior_id", sess.seniorID.String()).
				Str("contact", contact.Name).
				Int("position", sess.index).
				Msg("dialing emergency contact")
			return nil
		}
		if errors.Is(err, telephony.ErrPermissionDenied) {
			s.finishLocked(ctx, OutcomeDenied)
			return err
		}
		s.logger.Error().Err(err).
			Str("contact", contact.Name).
			Msg("dial failed, trying next contact")
		sess.index++
	}

	s.finishLocked(ctx, OutcomeExhausted)
	return nil
}

// Run consumes call-state transitions until the context ends or the channel
// closes. Intended to run on its own goroutine for the life of the server.
func (s *Sequencer) Run(ctx context.Context, events <-chan telephony.CallEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			s.handleEvent(ctx, evt)
		}
	}
}

func (s *Sequencer) handleEvent(ctx context.Context, evt telephony.CallEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Events arriving with no active session are stale; drop them.
	if s.current == nil {
		return
	}
	if evt.State != telephony.StateIdle {
		return
	}

	duration := time.Since(s.current.dialStart)
	if s.decide(duration) == stepStop {
		s.finishLocked(ctx, OutcomeSustained)
		return
	}

	s.current.index++
	if s.current.index >= len(s.current.contacts) {
		s.finishLocked(ctx, OutcomeExhausted)
		return
	}
	_ = s.dialLocked(ctx)
}

type step int

const (
	stepAdvance step = iota
	stepStop
)

// decide maps a finished call's duration to the next action. A call shorter
// than the sustained threshold advances to the next contact; only a call
// that lasted the full threshold ends the sequence. Short answered calls
// therefore also advance; change the comparison here if that is ever
// revisited.
func (s *Sequencer) decide(duration time.Duration) step {
	if duration >= s.sustainedAfter {
		return stepStop
	}
	return stepAdvance
}

// finishLocked ends the session and fans out the outcome. Caller holds s.mu.
func (s *Sequencer) finishLocked(ctx context.Context, outcome Outcome) {
	sess := s.current
	s.current = nil

	s.logger.Info().
		Str("senior_id", sess.seniorID.String()).
		Str("outcome", string(outcome)).
		Msg("call sequence finished")

	if s.notifier == nil {
		return
	}
	var msg string
	switch outcome {
	case OutcomeSustained:
		msg = fmt.Sprintf("Emergency call reached %s", sess.contacts[sess.index].Name)
	case OutcomeExhausted:
		msg = "Emergency call sequence ended: no contact could be reached"
	case OutcomeCancelled:
		msg = "Emergency call sequence cancelled"
	case OutcomeDenied:
		msg = "Emergency call blocked: call permission not granted"
	}
	s.notifier.PanicEvent(ctx, sess.seniorID, msg)
}

// Cancel deactivates the senior's sequence. Later call events are ignored.
func (s *Sequencer) Cancel(ctx context.Context, seniorID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.seniorID != seniorID {
		return
	}
	s.finishLocked(ctx, OutcomeCancelled)
}

// StatusFor reports the sequence running for one senior, if any. A session
// belonging to another senior is invisible to the caller.
func (s *Sequencer) StatusFor(seniorID uuid.UUID) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.seniorID != seniorID {
		return Status{}
	}
	contact := s.current.contacts[s.current.index]
	dialStart := s.current.dialStart
	return Status{
		Active:    true,
		SeniorID:  s.current.seniorID,
		Contact:   &contact,
		Position:  s.current.index,
		Total:     len(s.current.contacts),
		DialStart: &dialStart,
	}
}
