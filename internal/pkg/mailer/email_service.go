package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendSessionCancelled(toEmail, sessionTitle, reason string) error
	SendSessionStarting(toEmail, sessionTitle, meetingURL string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

func (s *emailService) send(toEmail, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send %q to %s: %v\n", subject, toEmail, err)
		return err
	}
	return nil
}

func (s *emailService) SendSessionCancelled(toEmail, sessionTitle, reason string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Session cancelled</h2>
			<p>Your session <strong>%s</strong> has been cancelled.</p>
			<p>Reason: %s</p>
		</div>
	`, sessionTitle, reason)

	return s.send(toEmail, "Session cancelled", body)
}

func (s *emailService) SendSessionStarting(toEmail, sessionTitle, meetingURL string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Your session is live</h2>
			<p><strong>%s</strong> has started.</p>
			<p><a href="%s">Join the room</a></p>
		</div>
	`, sessionTitle, meetingURL)

	return s.send(toEmail, "Session starting", body)
}
