package mail

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"
)

// recordingSender captures sent messages and optionally fails.
type recordingSender struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (r *recordingSender) Send(msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return r.err
}

func (r *recordingSender) messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.sent...)
}

func TestDispatchDeliversDetached(t *testing.T) {
	sender := &recordingSender{}
	dispatcher := NewDispatcher(sender, log.New(&bytes.Buffer{}, "", 0))

	dispatcher.Dispatch(Message{To: "a@example.com", Subject: "hi"})
	dispatcher.Wait()

	sent := sender.messages()
	if len(sent) != 1 {
		t.Fatalf("expected one delivery, got %d", len(sent))
	}
	if sent[0].To != "a@example.com" {
		t.Fatalf("unexpected recipient %q", sent[0].To)
	}
}

func TestDispatchFailureOnlyLogs(t *testing.T) {
	var buf bytes.Buffer
	sender := &recordingSender{err: errors.New("provider down")}
	dispatcher := NewDispatcher(sender, log.New(&buf, "", 0))

	dispatcher.Dispatch(Message{To: "a@example.com", Subject: "Verify"})
	dispatcher.Wait()

	if !strings.Contains(buf.String(), "mail delivery failed") {
		t.Fatalf("expected failure log, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "provider down") {
		t.Fatalf("expected cause in log, got %q", buf.String())
	}
}

func TestDispatchNilSenderIsNoOp(t *testing.T) {
	dispatcher := NewDispatcher(nil, nil)
	dispatcher.Dispatch(Message{To: "a@example.com"})
	dispatcher.Wait()
}

func TestOTPMessage(t *testing.T) {
	msg := OTPMessage("a@example.com", "Ada <script>", "123456")

	if msg.To != "a@example.com" {
		t.Fatalf("unexpected recipient %q", msg.To)
	}
	if msg.Subject != "Verify Your DevSphere Admin Account" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "123456") {
		t.Fatal("expected code in body")
	}
	if !strings.Contains(msg.HTML, "10 minutes") {
		t.Fatal("expected expiry wording in body")
	}
	if strings.Contains(msg.HTML, "<script>") {
		t.Fatal("expected name to be escaped")
	}
}

func TestWelcomeMessage(t *testing.T) {
	msg := WelcomeMessage("a@example.com", "Ada")
	if msg.Subject != "Welcome to DevSphere" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "Ada") {
		t.Fatal("expected name in body")
	}
}

func TestNewSMTPSenderValidatesConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "missing host", cfg: Config{Port: 587, From: "x@example.com"}},
		{name: "missing port", cfg: Config{Host: "smtp.example.com", From: "x@example.com"}},
		{name: "missing from", cfg: Config{Host: "smtp.example.com", Port: 587}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewSMTPSender(tc.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSMTPSenderRequiresRecipient(t *testing.T) {
	sender, err := NewSMTPSender(Config{Host: "smtp.example.com", Port: 587, From: "x@example.com"})
	if err != nil {
		t.Fatalf("new sender: %v", err)
	}
	if err := sender.Send(Message{Subject: "no recipient"}); err == nil {
		t.Fatal("expected error for missing recipient")
	}
}
