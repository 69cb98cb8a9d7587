package email

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/Dan9191/task-tracker/internal/config"
	"github.com/Dan9191/task-tracker/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg     *config.Config
	logger  *logrus.Logger
	deliver func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		deliver: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// SendWelcome greets a freshly registered user
func (s *Sender) SendWelcome(to, username string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Welcome to Task Tracker"
	e.Text = []byte(fmt.Sprintf(
		"Hi %s,\n\n"+
			"Your account is ready. Sign in at %s/auth/login to start tracking your tasks.\n"+
			"\nBest regards,\nTask Tracker",
		username, strings.TrimRight(s.cfg.BaseURL, "/"),
	))
	return s.send(e, to)
}

// SendOverdueDigest lists the user's overdue tasks in a single message
func (s *Sender) SendOverdueDigest(to, username string, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("You have %d overdue task(s)", len(tasks))

	var body strings.Builder
	fmt.Fprintf(&body, "Hi %s,\n\nThe following tasks are past their due date:\n\n", username)
	for _, t := range tasks {
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(&body, "  - %s (due %s)\n", t.Title, due)
	}
	fmt.Fprintf(&body, "\nReview them at %s/tasks?filter=overdue\n", strings.TrimRight(s.cfg.BaseURL, "/"))
	body.WriteString("\nBest regards,\nTask Tracker")
	e.Text = []byte(body.String())

	return s.send(e, to)
}

func (s *Sender) send(e *email.Email, to string) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	start := time.Now()
	if err := s.deliver(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.WithField("elapsed", time.Since(start)).Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
