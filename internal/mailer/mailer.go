package mailer

import (
	"context"
	"fmt"
	"log/slog"

	gomail "gopkg.in/gomail.v2"
)

// SMTPMailerは確認・リセットメールをSMTPで送る。
// usecase側のMailerインターフェースを満たす。
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	feURL  string // リンクの飛び先（フロント）
	log    *slog.Logger
}

func NewSMTPMailer(host string, port int, user, pass, from, feURL string, log *slog.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
		feURL:  feURL,
		log:    log,
	}
}

func (m *SMTPMailer) SendConfirmation(ctx context.Context, email, username, token string) error {
	link := fmt.Sprintf("%s/confirm?token=%s", m.feURL, token)
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nPlease confirm your email address by opening the link below:\r\n%s\r\n\r\nThe link expires in one hour.\r\n",
		username, link,
	)
	return m.send(ctx, email, "Confirm your email", body)
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, email, username, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", m.feURL, token)
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nA password reset was requested for your account. Open the link below to choose a new password:\r\n%s\r\n\r\nThe link expires in 30 minutes. If you didn't request this, ignore this email.\r\n",
		username, link,
	)
	return m.send(ctx, email, "Reset your password", body)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	// gomailはcontextを受けないので、ここではキャンセル済みだけ見る
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.log.Error("mail send failed", "to", to, "subject", subject, "error", err)
		return err
	}
	return nil
}
