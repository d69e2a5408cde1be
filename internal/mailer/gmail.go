// Package mailer sends transactional mail through the Gmail API.
package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Message is one outbound email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

// GmailSender sends messages as the configured account using domain-wide
// delegation. Sends are throttled to stay inside the Gmail per-user quota.
type GmailSender struct {
	svc     *gmail.Service
	from    string
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewGmailSender builds a sender from service-account credentials JSON,
// impersonating the from address.
func NewGmailSender(ctx context.Context, credentialsJSON []byte, from string, logger zerolog.Logger) (*GmailSender, error) {
	cfg, err := google.JWTConfigFromJSON(credentialsJSON, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("parse gmail credentials: %w", err)
	}
	cfg.Subject = from

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}

	return &GmailSender{
		svc:     svc,
		from:    from,
		limiter: rate.NewLimiter(rate.Limit(2), 4),
		logger:  logger.With().Str("component", "mailer").Logger(),
	}, nil
}

// Send delivers a single HTML message. No retries: a failed send surfaces to
// the caller immediately.
func (s *GmailSender) Send(ctx context.Context, msg Message) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("mail rate limiter: %w", err)
	}

	raw := base64.URLEncoding.EncodeToString([]byte(buildMIME(s.from, msg)))
	_, err := s.svc.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}

	s.logger.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("email sent")
	return nil
}

func buildMIME(from string, msg Message) string {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTMLBody)
	return b.String()
}
