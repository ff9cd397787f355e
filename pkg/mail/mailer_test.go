package mail

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestNewSMTPMailerValidatesConfig(t *testing.T) {
	_, err := NewSMTPMailer(SMTPSettings{
		Enabled: true,
	})
	if err == nil || !strings.Contains(err.Error(), "host is required") {
		t.Fatalf("expected host validation error, got %v", err)
	}

	mailer, err := NewSMTPMailer(SMTPSettings{
		Enabled: false,
	})
	if err != nil {
		t.Fatalf("expected disabled configuration to succeed: %v", err)
	}

	if mailer == nil {
		t.Fatal("expected mailer to be returned")
	}
}

func TestSMTPMailerSendDisabled(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{
		Enabled: false,
	})
	if err != nil {
		t.Fatalf("unexpected error creating mailer: %v", err)
	}

	err = mailer.Send(context.Background(), Message{
		To:      []string{"test@example.edu"},
		Subject: "Test",
		Body:    "Hello",
	})
	if err != ErrSMTPDisabled {
		t.Fatalf("expected ErrSMTPDisabled, got %v", err)
	}
}

func TestSMTPMailerSendRequiresRecipients(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{
		Enabled: true,
		Host:    "smtp.example.com",
		Port:    587,
		From:    "no-reply@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error creating mailer: %v", err)
	}

	err = mailer.Send(context.Background(), Message{
		To:      []string{"   ", "\t"},
		Subject: "No recipients",
		Body:    "Body",
	})
	if err == nil || !strings.Contains(err.Error(), "at least one recipient") {
		t.Fatalf("expected missing recipient error, got %v", err)
	}
}

func TestFormatMessageSanitisesSubject(t *testing.T) {
	content := formatMessage("from@example.com", []string{"to@example.com"}, "Subject\r\nBreak", "Body")
	if !strings.Contains(content, "From: from@example.com") {
		t.Fatalf("expected from header, got %q", content)
	}
	if !strings.Contains(content, "Subject: Subject  Break") {
		t.Fatalf("expected sanitised subject, got %q", content)
	}
	if !strings.HasSuffix(content, "Body") {
		t.Fatalf("expected body suffix, got %q", content)
	}
}

func TestVerificationMessage(t *testing.T) {
	msg := VerificationMessage("student@uni.edu", "State University", "123456", 10*time.Minute)
	if msg.To[0] != "student@uni.edu" {
		t.Fatalf("unexpected recipient: %v", msg.To)
	}
	if !strings.Contains(msg.Subject, "State University") {
		t.Fatalf("expected university name in subject, got %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "123456") {
		t.Fatalf("expected code in body, got %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "10 minutes") {
		t.Fatalf("expected expiry in body, got %q", msg.Body)
	}
}

func TestPasswordResetMessage(t *testing.T) {
	msg := PasswordResetMessage("user@uni.edu", "https://app.example.com/reset?token=abc", 30*time.Minute)
	if !strings.Contains(msg.Body, "https://app.example.com/reset?token=abc") {
		t.Fatalf("expected reset link in body, got %q", msg.Body)
	}
}

func TestPasskeyMessage(t *testing.T) {
	msg := PasskeyMessage("hr@acme.com", "Acme Corp", "pk-abc123")
	if !strings.Contains(msg.Body, "Acme Corp") || !strings.Contains(msg.Body, "pk-abc123") {
		t.Fatalf("expected company and passkey in body, got %q", msg.Body)
	}
}
