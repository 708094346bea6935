package mailer

import (
	"context"
	"log/slog"
)

// LogMailerはSMTP未設定のとき（dev）の代わり。
// 実際には送らず内容をログに出すだけ。
type LogMailer struct {
	log *slog.Logger
}

func NewLogMailer(log *slog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendConfirmation(ctx context.Context, email, username, token string) error {
	m.log.Info("confirmation mail (not sent, SMTP disabled)", "to", email, "username", username, "token", token)
	return nil
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, email, username, token string) error {
	m.log.Info("password reset mail (not sent, SMTP disabled)", "to", email, "username", username, "token", token)
	return nil
}
