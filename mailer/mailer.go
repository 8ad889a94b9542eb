package mailer

import (
	"fmt"
	"net/smtp"
	"os"
	"time"

	"github.com/sony/gobreaker"

	"github.com/mohammedh897/graduation-backend/logging"
)

// Service delivers invite and reminder messages. Sends are fire-and-forget
// from the caller's point of view; a failed send must not fail the mutation
// that triggered it.
type Service interface {
	SendProjectInvite(to, projectName, teamCode string) error
	SendTaskReminder(to, taskTitle string, dueDate *time.Time) error
}

// SMTPMailer sends mail through a plain SMTP relay. Sends go through a
// circuit breaker so a dead relay stops burning connection timeouts.
type SMTPMailer struct {
	from     string
	password string
	host     string
	port     string
	breaker  *gobreaker.CircuitBreaker
}

func NewSMTPMailer() *SMTPMailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "smtp-cb",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})

	return &SMTPMailer{
		from:     os.Getenv("EMAIL_USER"),
		password: os.Getenv("EMAIL_PASSWORD"),
		host:     host,
		port:     port,
		breaker:  breaker,
	}
}

func (m *SMTPMailer) SendProjectInvite(to, projectName, teamCode string) error {
	subject := fmt.Sprintf("You have been invited to join \"%s\"", projectName)
	body := fmt.Sprintf("You have been invited to join the project \"%s\".<br>Use team code <b>%s</b> to join.", projectName, teamCode)
	return m.send(to, subject, body)
}

func (m *SMTPMailer) SendTaskReminder(to, taskTitle string, dueDate *time.Time) error {
	subject := fmt.Sprintf("Reminder: \"%s\" is due soon!", taskTitle)
	body := fmt.Sprintf("Don't forget! Your task \"%s\" is coming up.", taskTitle)
	if dueDate != nil {
		body += fmt.Sprintf("<br>Due on: %s", dueDate.Format("Mon Jan 2 2006"))
	}
	return m.send(to, subject, body)
}

func (m *SMTPMailer) send(to, subject, body string) error {
	if m.password == "" {
		return fmt.Errorf("EMAIL_PASSWORD is not set")
	}

	message := []byte("Subject: " + subject + "\r\n" +
		"From: " + m.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n" +
		body + "\r\n")

	auth := smtp.PlainAuth("", m.from, m.password, m.host)

	_, err := m.breaker.Execute(func() (interface{}, error) {
		return nil, smtp.SendMail(m.host+":"+m.port, auth, m.from, []string{to}, message)
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}

// NoopMailer swallows all sends. Used in development when no SMTP relay is
// configured.
type NoopMailer struct{}

func (NoopMailer) SendProjectInvite(to, projectName, teamCode string) error {
	logging.Logger.Infof("Event ID: MAIL_SKIPPED, Description: Invite for %s to %s not sent, mailer disabled", projectName, to)
	return nil
}

func (NoopMailer) SendTaskReminder(to, taskTitle string, dueDate *time.Time) error {
	logging.Logger.Infof("Event ID: MAIL_SKIPPED, Description: Reminder for %q to %s not sent, mailer disabled", taskTitle, to)
	return nil
}
