package utils

import (
	"fmt"
	"net/smtp"
	"os"
)

// SMTPSender delivers mail through the configured SMTP relay. It satisfies
// the task service's EmailSender interface.
type SMTPSender struct {
	From     string
	Password string
	Host     string
	Port     string
}

// NewSMTPSenderFromEnv reads EMAIL_FROM, EMAIL_PASSWORD, SMTP_HOST and
// SMTP_PORT, falling back to Gmail's relay.
func NewSMTPSenderFromEnv() *SMTPSender {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	return &SMTPSender{
		From:     os.Getenv("EMAIL_FROM"),
		Password: os.Getenv("EMAIL_PASSWORD"),
		Host:     host,
		Port:     port,
	}
}

// Send sends an email with the given subject and HTML body.
func (s *SMTPSender) Send(to, subject, body string) error {
	if s.Password == "" {
		return fmt.Errorf("EMAIL_PASSWORD is not set")
	}

	message := []byte("Subject: " + subject + "\r\n" +
		"From: " + s.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n" +
		body + "\r\n")

	auth := smtp.PlainAuth("", s.From, s.Password, s.Host)

	err := smtp.SendMail(s.Host+":"+s.Port, auth, s.From, []string{to}, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}

	return nil
}
