package utils

import (
	"fmt"
	"log"
	"net/smtp"

	"magazin-backend/config"
)

// Mailer sends one-time codes over SMTP. Without an SMTP_HOST it logs
// the message instead, which is enough for local development.
type Mailer struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func NewMailerFromEnv() *Mailer {
	return &Mailer{
		Host:     config.GetEnv("SMTP_HOST", ""),
		Port:     config.GetEnv("SMTP_PORT", "587"),
		Username: config.GetEnv("SMTP_USER", ""),
		Password: config.GetEnv("SMTP_PASS", ""),
		From:     config.GetEnv("SMTP_FROM", "no-reply@magazin.local"),
	}
}

func (m *Mailer) Send(to, subject, body string) error {
	if m.Host == "" {
		log.Printf("mail (not sent) to=%s subject=%q body=%q", to, subject, body)
		return nil
	}

	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.From, to, subject, body))
	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	return smtp.SendMail(m.Host+":"+m.Port, auth, m.From, []string{to}, msg)
}

func (m *Mailer) SendResetCode(to, code string) error {
	body := fmt.Sprintf("Your password reset code is: %s\n\nThe code expires in 3 minutes.", code)
	return m.Send(to, "Password reset code", body)
}

func (m *Mailer) SendDeleteCode(to, code string) error {
	body := fmt.Sprintf("Your account deletion code is: %s\n\nThe code expires in 5 minutes.", code)
	return m.Send(to, "Account deletion code", body)
}
