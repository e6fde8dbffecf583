package service

import (
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer is the outbound email collaborator. Sends are best-effort, a
// failure never fails the flow that triggered it.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

type SMTPMailer struct{}

func NewSMTPMailer() *SMTPMailer {
	return &SMTPMailer{}
}

func (s *SMTPMailer) Send(to, subject, htmlBody string) error {
	from := viper.GetString("mail.sender")

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(
		viper.GetString("mail.host"),
		viper.GetInt("mail.port"),
		from,
		viper.GetString("mail.password"),
	)

	return d.DialAndSend(m)
}

// Dispatch fires a send on its own goroutine. The caller's response never
// waits on SMTP, failures only show up in the logs.
func Dispatch(m Mailer, to, subject, htmlBody string) {
	go func() {
		if err := m.Send(to, subject, htmlBody); err != nil {
			zap.L().Error("Failed to send mail",
				zap.String("to", to),
				zap.String("subject", subject),
				zap.Error(err),
			)
		}
	}()
}
