package services

import (
	"fmt"
	"html"
	"strings"

	"creditapproval/config"

	"gopkg.in/gomail.v2"
)

// Notifier отправляет отчеты об импорте
type Notifier interface {
	SendIngestionReport(to string, run IngestionRun) error
}

// EmailService предоставляет методы для отправки email
type EmailService struct {
	dialer *gomail.Dialer
	from   string
}

// NewEmailService создает новый экземпляр EmailService
func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
	)

	return &EmailService{
		dialer: dialer,
		from:   cfg.SMTP.From,
	}
}

// SendEmail отправляет email
func (s *EmailService) SendEmail(to, subject, body string) error {
	if err := s.dialer.DialAndSend(s.newMessage(to, subject, body)); err != nil {
		return fmt.Errorf("ошибка отправки email: %w", err)
	}
	return nil
}

func (s *EmailService) newMessage(to, subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return m
}

// SendIngestionReport отправляет итоги импорта
func (s *EmailService) SendIngestionReport(to string, run IngestionRun) error {
	subject := "Ingestion report: " + run.Status
	return s.SendEmail(to, subject, ingestionReportBody(run))
}

func ingestionReportBody(run IngestionRun) string {
	var b strings.Builder
	b.WriteString("<h2>Ingestion report</h2>\n")
	fmt.Fprintf(&b, "<p>Status: %s</p>\n", html.EscapeString(run.Status))
	fmt.Fprintf(&b, "<p>Started: %s</p>\n", run.StartedAt.Format("02.01.2006 15:04:05"))
	fmt.Fprintf(&b, "<p>Finished: %s</p>\n", run.FinishedAt.Format("02.01.2006 15:04:05"))
	for _, r := range run.Reports {
		fmt.Fprintf(&b, "<p><b>%s</b>: %s</p>\n", html.EscapeString(r.Kind), html.EscapeString(r.Message))
	}
	if run.Error != "" {
		fmt.Fprintf(&b, "<p>Error: %s</p>\n", html.EscapeString(run.Error))
	}
	return b.String()
}
