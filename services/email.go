package services

import (
	"fmt"
	"net/smtp"
	"strings"

	"gardenia/backend/config"
	"gardenia/backend/utils"
)

// EmailService sends plant-care notification mails over SMTP. Send failures
// are logged and swallowed; a missed reminder never fails a request.
type EmailService struct {
	host     string
	port     string
	username string
	password string
	from     string
	logger   *utils.Logger
}

func NewEmailService(cfg *config.Config, logger *utils.Logger) *EmailService {
	return &EmailService{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.EmailFrom,
		logger:   logger,
	}
}

// SendNotification delivers a notification mail with the standard footer.
func (e *EmailService) SendNotification(to, subject, text string) {
	if e.username == "" || e.password == "" {
		e.logger.Debug("email not configured, skipping notification", "to", to, "subject", subject)
		return
	}

	body := buildMessage(e.from, to, subject, text)

	auth := smtp.PlainAuth("", e.username, e.password, e.host)
	addr := e.host + ":" + e.port

	if err := smtp.SendMail(addr, auth, e.from, []string{to}, body); err != nil {
		e.logger.Error("failed to send email", "to", to, "subject", subject, "error", err)
		return
	}

	e.logger.Info("email sent", "to", to, "subject", subject)
}

func buildMessage(from, to, subject, text string) []byte {
	var msg strings.Builder

	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	fmt.Fprintf(&msg, "<div><h2>%s</h2><p>%s</p><p>Happy Gardening!</p></div>\r\n", subject, text)

	return []byte(msg.String())
}
