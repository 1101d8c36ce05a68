package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/movicare/movicare/internal/platform/websocket"
)

// Fanout records care events as notifications and pushes them to connected
// dashboards. It satisfies the Notifier interfaces of the medication,
// appointment and escalation packages. Delivery failures are logged, never
// propagated: a broken feed must not fail the care operation itself.
type Fanout struct {
	svc    *Service
	hub    *websocket.Hub
	logger zerolog.Logger
}

func NewFanout(svc *Service, hub *websocket.Hub, logger zerolog.Logger) *Fanout {
	return &Fanout{svc: svc, hub: hub, logger: logger}
}

func (f *Fanout) MedicationEvent(ctx context.Context, seniorID uuid.UUID, message string) {
	f.emit(ctx, seniorID, KindMedication, message)
}

func (f *Fanout) AppointmentEvent(ctx context.Context, seniorID uuid.UUID, message string) {
	f.emit(ctx, seniorID, KindAppointment, message)
}

func (f *Fanout) CheckInEvent(ctx context.Context, seniorID uuid.UUID, message string) {
	f.emit(ctx, seniorID, KindCheckIn, message)
}

func (f *Fanout) PanicEvent(ctx context.Context, seniorID uuid.UUID, message string) {
	f.emit(ctx, seniorID, KindPanic, message)
}

// MedicationSnapshot pushes a senior's full medication list to subscribed
// dashboards. Snapshots are push-only; nothing is recorded in the feed.
func (f *Fanout) MedicationSnapshot(ctx context.Context, seniorID uuid.UUID, snapshot any) {
	f.broadcastSnapshot(seniorID, websocket.KindMedications, snapshot)
}

// AppointmentSnapshot pushes a senior's timeline partition to subscribed
// dashboards.
func (f *Fanout) AppointmentSnapshot(ctx context.Context, seniorID uuid.UUID, snapshot any) {
	f.broadcastSnapshot(seniorID, websocket.KindAppointments, snapshot)
}

func (f *Fanout) broadcastSnapshot(seniorID uuid.UUID, kind string, snapshot any) {
	if f.hub == nil {
		return
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		f.logger.Error().Err(err).Str("kind", kind).Msg("failed to marshal snapshot")
		return
	}
	f.hub.Broadcast(websocket.SeniorTopic(seniorID.String()), websocket.Event{
		Type:      "snapshot",
		Topic:     websocket.SeniorTopic(seniorID.String()),
		Kind:      kind,
		SeniorID:  seniorID.String(),
		Timestamp: time.Now(),
		Data:      data,
	})
}

func (f *Fanout) emit(ctx context.Context, seniorID uuid.UUID, kind Kind, message string) {
	n := &Notification{SeniorID: seniorID, Kind: kind, Message: message}
	if err := f.svc.Create(ctx, n); err != nil {
		f.logger.Error().Err(err).
			Str("senior_id", seniorID.String()).
			Str("kind", string(kind)).
			Msg("failed to record notification")
		return
	}

	if f.hub == nil {
		return
	}
	data, err := json.Marshal(n)
	if err != nil {
		f.logger.Error().Err(err).Msg("failed to marshal notification event")
		return
	}
	f.hub.Broadcast(websocket.SeniorTopic(seniorID.String()), websocket.Event{
		Type:      "notification",
		Topic:     websocket.SeniorTopic(seniorID.String()),
		Kind:      websocket.KindNotifications,
		SeniorID:  seniorID.String(),
		Timestamp: time.Now(),
		Data:      data,
	})
}
