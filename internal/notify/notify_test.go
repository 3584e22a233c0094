package notify

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewMailer_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  MailerConfig
	}{
		{name: "missing host", cfg: MailerConfig{From: "pipeline@example.com"}},
		{name: "missing sender", cfg: MailerConfig{Host: "smtp.example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewMailer(tt.cfg); err == nil {
				t.Fatalf("NewMailer: want error")
			}
		})
	}

	m, err := NewMailer(MailerConfig{Host: "smtp.example.com", From: "pipeline@example.com"})
	if err != nil {
		t.Fatalf("NewMailer: %v", err)
	}
	if m.cfg.Port == 0 {
		t.Fatalf("NewMailer should default the port")
	}
}

func TestMailer_RejectsBadAddresses(t *testing.T) {
	m, err := NewMailer(MailerConfig{Host: "smtp.example.com", From: "pipeline@example.com"})
	if err != nil {
		t.Fatalf("NewMailer: %v", err)
	}

	if err := m.Notify(context.Background(), "s", "b", "not-an-address"); err == nil {
		t.Fatalf("Notify with malformed recipient: want error")
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	n := NewLogNotifier(log)
	err := n.Notify(context.Background(), "Pipeline Completed", "all good", "ops@example.com")
	if err != nil {
		t.Fatalf("Notify error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Pipeline Completed", "ops@example.com"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output should contain %q: %s", want, out)
		}
	}
}
