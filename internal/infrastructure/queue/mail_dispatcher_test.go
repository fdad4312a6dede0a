package queue

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/trackercrm/tracker-api/internal/core/ports"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []ports.Email
	errs map[string]error
	done chan struct{}
	want int
}

func newRecordingSender(want int) *recordingSender {
	return &recordingSender{done: make(chan struct{}), want: want, errs: map[string]error{}}
}

func (s *recordingSender) Send(_ context.Context, msg ports.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.errs[msg.To]; err != nil {
		return err
	}
	s.sent = append(s.sent, msg)
	if len(s.sent) == s.want {
		close(s.done)
	}
	return nil
}

func (s *recordingSender) wait(t *testing.T) []ports.Email {
	t.Helper()
	select {
	case <-s.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for deliveries")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.Email(nil), s.sent...)
}

func TestMailDispatcherDeliversEnqueuedMail(t *testing.T) {
	sender := newRecordingSender(2)
	d := NewMailDispatcher(2, sender, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(ports.Email{To: "a@trackercrm.io", Subject: "one"})
	d.Enqueue(ports.Email{To: "b@trackercrm.io", Subject: "two"})

	sent := sender.wait(t)
	if len(sent) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(sent))
	}
}

func TestMailDispatcherSameRecipientKeepsOrder(t *testing.T) {
	sender := newRecordingSender(3)
	d := NewMailDispatcher(4, sender, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for _, subject := range []string{"first", "second", "third"} {
		d.Enqueue(ports.Email{To: "a@trackercrm.io", Subject: subject})
	}

	sent := sender.wait(t)
	for i, want := range []string{"first", "second", "third"} {
		if sent[i].Subject != want {
			t.Fatalf("delivery %d: got %q, want %q", i, sent[i].Subject, want)
		}
	}
}

type logBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}

func waitForLog(t *testing.T, buf *logBuffer, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(buf.String(), want) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("log does not contain %q:\n%s", want, buf.String())
}

func TestMailDispatcherFailedDeliveryLogsBody(t *testing.T) {
	sender := newRecordingSender(0)
	sender.errs["ana@trackercrm.io"] = errors.New("connection refused")

	buf := &logBuffer{}
	d := NewMailDispatcher(1, sender, zerolog.New(buf))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(ports.Email{
		To:       "ana@trackercrm.io",
		Subject:  "Password Recovery - Tracker",
		TextBody: "Follow this link: http://localhost:8080/reset-password?token=abc123",
	})

	// The body carries the recovery link, so a failed delivery must still
	// surface it in the logs.
	waitForLog(t, buf, "reset-password?token=abc123")
}

func TestMailDispatcherEnqueueNeverBlocks(t *testing.T) {
	buf := &logBuffer{}
	// Never started: the single shard buffer fills up and overflow must be
	// dropped, not block the caller.
	d := NewMailDispatcher(1, newRecordingSender(0), zerolog.New(buf))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i <= channelBuffer; i++ {
			d.Enqueue(ports.Email{
				To:       "a@trackercrm.io",
				TextBody: "http://localhost:8080/reset-password?token=overflow",
			})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue blocked on a full shard buffer")
	}
	waitForLog(t, buf, "reset-password?token=overflow")
}

func TestMailDispatcherDefaultsWorkerCount(t *testing.T) {
	d := NewMailDispatcher(0, newRecordingSender(0), zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
}
