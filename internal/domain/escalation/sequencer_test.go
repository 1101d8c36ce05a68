package escalation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/movicare/movicare/internal/platform/telephony"
)

type fakeDialer struct {
	mu     sync.Mutex
	dialed []string
	fail   map[string]error
}

func (f *fakeDialer) Dial(_ context.Context, number string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.fail[number]; ok {
		return err
	}
	f.dialed = append(f.dialed, number)
	return nil
}

func (f *fakeDialer) numbers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.dialed...)
}

type recordingNotifier struct {
	mu       sync.Mutex
	panics   []string
	checkIns []string
}

func (r *recordingNotifier) PanicEvent(_ context.Context, _ uuid.UUID, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.panics = append(r.panics, message)
}

func (r *recordingNotifier) CheckInEvent(_ context.Context, _ uuid.UUID, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkIns = append(r.checkIns, message)
}

func (r *recordingNotifier) panicMessages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.panics...)
}

const sustainedThreshold = 45 * time.Second

func newTestSequencer(dialer *fakeDialer, notifier *recordingNotifier) *Sequencer {
	return NewSequencer(dialer, notifier, sustainedThreshold, zerolog.Nop())
}

func idleEvent() telephony.CallEvent {
	return telephony.CallEvent{State: telephony.StateIdle, At: time.Now()}
}

// backdate moves the active session's dial start into the past so a call
// appears to have lasted the given duration.
func backdate(s *Sequencer, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.dialStart = time.Now().Add(-d)
}

func TestStart_EmptyContacts(t *testing.T) {
	seq := newTestSequencer(&fakeDialer{}, &recordingNotifier{})
	if err := seq.Start(context.Background(), uuid.New(), nil); err != ErrEmptyContacts {
		t.Fatalf("expected ErrEmptyContacts, got %v", err)
	}
}

func TestStart_DialsFirstContact(t *testing.T) {
	dialer := &fakeDialer{}
	seq := newTestSequencer(dialer, &recordingNotifier{})

	seniorID := uuid.New()
	queue := []Contact{{Name: "Ana", Number: "111"}, {Name: "Ben", Number: "222"}}
	if err := seq.Start(context.Background(), seniorID, queue); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := dialer.numbers(); len(got) != 1 || got[0] != "111" {
		t.Fatalf("expected first contact dialed, got %v", got)
	}
	st := seq.StatusFor(seniorID)
	if !st.Active || st.Contact.Name != "Ana" || st.Total != 2 {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestShortCall_AdvancesToNextContact(t *testing.T) {
	dialer := &fakeDialer{}
	seq := newTestSequencer(dialer, &recordingNotifier{})

	seniorID := uuid.New()
	queue := []Contact{{Name: "Ana", Number: "111"}, {Name: "Ben", Number: "222"}}
	seq.Start(context.Background(), seniorID, queue)

	// Hang-up right after dialing counts as unreachable.
	seq.handleEvent(context.Background(), idleEvent())

	if got := dialer.numbers(); len(got) != 2 || got[1] != "222" {
		t.Fatalf("expected advance to second contact, got %v", got)
	}
	if st := seq.StatusFor(seniorID); !st.Active || st.Position != 1 {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestSustainedCall_EndsSequence(t *testing.T) {
	dialer := &fakeDialer{}
	notifier := &recordingNotifier{}
	seq := newTestSequencer(dialer, notifier)

	seniorID := uuid.New()
	queue := []Contact{{Name: "Ana", Number: "111"}, {Name: "Ben", Number: "222"}}
	seq.Start(context.Background(), seniorID, queue)

	backdate(seq, sustainedThreshold)
	seq.handleEvent(context.Background(), idleEvent())

	if got := dialer.numbers(); len(got) != 1 {
		t.Fatalf("expected no further dial after sustained call, got %v", got)
	}
	if seq.StatusFor(seniorID).Active {
		t.Fatal("expected session ended")
	}
	msgs := notifier.panicMessages()
	if len(msgs) != 1 || msgs[0] != "Emergency call reached Ana" {
		t.Fatalf("unexpected outcome notifications %v", msgs)
	}
}

func TestCallJustUnderThreshold_Advances(t *testing.T) {
	dialer := &fakeDialer{}
	seq := newTestSequencer(dialer, &recordingNotifier{})

	seq.Start(context.Background(), uuid.New(), []Contact{{Name: "Ana", Number: "111"}, {Name: "Ben", Number: "222"}})
	backdate(seq, sustainedThreshold-time.Second)
	seq.handleEvent(context.Background(), idleEvent())

	if got := dialer.numbers(); len(got) != 2 {
		t.Fatalf("expected advance for call under threshold, got %v", got)
	}
}

func TestExhaustion(t *testing.T) {
	dialer := &fakeDialer{}
	notifier := &recordingNotifier{}
	seq := newTestSequencer(dialer, notifier)

	seniorID := uuid.New()
	seq.Start(context.Background(), seniorID, []Contact{{Name: "Ana", Number: "111"}, {Name: "Ben", Number: "222"}})
	seq.handleEvent(context.Background(), idleEvent())
	seq.handleEvent(context.Background(), idleEvent())

	if seq.StatusFor(seniorID).Active {
		t.Fatal("expected session ended after exhausting contacts")
	}
	msgs := notifier.panicMessages()
	if len(msgs) != 1 || msgs[0] != "Emergency call sequence ended: no contact could be reached" {
		t.Fatalf("unexpected notifications %v", msgs)
	}
}

func TestNonIdleEventsIgnored(t *testing.T) {
	dialer := &fakeDialer{}
	seq := newTestSequencer(dialer, &recordingNotifier{})

	seniorID := uuid.New()
	seq.Start(context.Background(), seniorID, []Contact{{Name: "Ana", Number: "111"}})
	seq.handleEvent(context.Background(), telephony.CallEvent{State: telephony.StateConnecting})
	seq.handleEvent(context.Background(), telephony.CallEvent{State: telephony.StateActive})

	if got := dialer.numbers(); len(got) != 1 {
		t.Fatalf("expected no reaction to non-idle events, got %v", got)
	}
	if !seq.StatusFor(seniorID).Active {
		t.Fatal("expected session still active")
	}
}

func TestEventWithoutSessionIgnored(t *testing.T) {
	seq := newTestSequencer(&fakeDialer{}, &recordingNotifier{})
	seq.handleEvent(context.Background(), idleEvent())
	if seq.StatusFor(uuid.New()).Active {
		t.Fatal("expected no session")
	}
}

func TestDialPermissionDenied_EndsSequence(t *testing.T) {
	dialer := &fakeDialer{fail: map[string]error{"111": telephony.ErrPermissionDenied}}
	notifier := &recordingNotifier{}
	seq := newTestSequencer(dialer, notifier)

	seniorID := uuid.New()
	err := seq.Start(context.Background(), seniorID, []Contact{{Name: "Ana", Number: "111"}, {Name: "Ben", Number: "222"}})
	if err != telephony.ErrPermissionDenied {
		t.Fatalf("expected permission error, got %v", err)
	}
	if seq.StatusFor(seniorID).Active {
		t.Fatal("expected session deactivated")
	}
	if got := dialer.numbers(); len(got) != 0 {
		t.Fatalf("expected no fallback dial after permission denial, got %v", got)
	}
}

func TestDialFailure_SkipsToNextContact(t *testing.T) {
	dialer := &fakeDialer{fail: map[string]error{"111": fmt.Errorf("device offline")}}
	seq := newTestSequencer(dialer, &recordingNotifier{})

	if err := seq.Start(context.Background(), uuid.New(), []Contact{{Name: "Ana", Number: "111"}, {Name: "Ben", Number: "222"}}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := dialer.numbers(); len(got) != 1 || got[0] != "222" {
		t.Fatalf("expected skip to second contact, got %v", got)
	}
}

func TestCancel(t *testing.T) {
	dialer := &fakeDialer{}
	notifier := &recordingNotifier{}
	seq := newTestSequencer(dialer, notifier)

	seniorID := uuid.New()
	seq.Start(context.Background(), seniorID, []Contact{{Name: "Ana", Number: "111"}, {Name: "Ben", Number: "222"}})
	seq.Cancel(context.Background(), seniorID)

	if seq.StatusFor(seniorID).Active {
		t.Fatal("expected session cancelled")
	}

	// Late hang-up events from the cancelled call must not redial.
	seq.handleEvent(context.Background(), idleEvent())
	if got := dialer.numbers(); len(got) != 1 {
		t.Fatalf("expected no dial after cancel, got %v", got)
	}
	msgs := notifier.panicMessages()
	if len(msgs) != 1 || msgs[0] != "Emergency call sequence cancelled" {
		t.Fatalf("unexpected notifications %v", msgs)
	}
}

func TestCancel_WrongSeniorIgnored(t *testing.T) {
	seq := newTestSequencer(&fakeDialer{}, &recordingNotifier{})
	seniorID := uuid.New()
	seq.Start(context.Background(), seniorID, []Contact{{Name: "Ana", Number: "111"}})
	seq.Cancel(context.Background(), uuid.New())
	if !seq.StatusFor(seniorID).Active {
		t.Fatal("expected session untouched by foreign cancel")
	}
}

func TestStart_ReplacesInFlightSession(t *testing.T) {
	dialer := &fakeDialer{}
	seq := newTestSequencer(dialer, &recordingNotifier{})

	first := uuid.New()
	seq.Start(context.Background(), first, []Contact{{Name: "Ana", Number: "111"}})
	other := uuid.New()
	seq.Start(context.Background(), other, []Contact{{Name: "Ben", Number: "222"}})

	st := seq.StatusFor(other)
	if st.SeniorID != other || st.Contact.Number != "222" {
		t.Fatalf("expected replacement session, got %+v", st)
	}
	if seq.StatusFor(first).Active {
		t.Fatal("expected replaced session invisible to its senior")
	}
}

func TestRun_ConsumesEvents(t *testing.T) {
	dialer := &fakeDialer{}
	seq := newTestSequencer(dialer, &recordingNotifier{})

	events := make(chan telephony.CallEvent, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go seq.Run(ctx, events)

	seq.Start(context.Background(), uuid.New(), []Contact{{Name: "Ana", Number: "111"}, {Name: "Ben", Number: "222"}})
	events <- idleEvent()

	deadline := time.After(2 * time.Second)
	for {
		if got := dialer.numbers(); len(got) == 2 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for advance, dialed %v", dialer.numbers())
		case <-time.After(10 * time.Millisecond):
		}
	}
}
