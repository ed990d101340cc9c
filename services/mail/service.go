package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/NehaTanti-afk/Neha-Notes/config"
	"github.com/NehaTanti-afk/Neha-Notes/services/logging"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Client is the part of *mail.Client the service uses.
type Client interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type Service struct {
	config *config.MailConfig
	client Client
	logger *logging.Service
}

// MessageOption customises an outgoing message.
type MessageOption func(*mail.Msg) error

func WithReplyTo(address string) MessageOption {
	return func(m *mail.Msg) error {
		return m.ReplyTo(address)
	}
}

func NewService(cfg *config.MailConfig, logger *logging.Service) (*Service, error) {
	logger.Info("initializing mail service",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("encryption", cfg.Encryption),
		zap.String("from_address", cfg.FromAddress))

	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("MAIL_FROM_ADDRESS is required")
	}

	clientOpts := []mail.Option{
		mail.WithPort(cfg.Port),
	}

	switch cfg.Encryption {
	case "ssl":
		clientOpts = append(clientOpts, mail.WithSSL())
	case "none":
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.NoTLS))
	default:
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}

	if cfg.Username != "" {
		clientOpts = append(clientOpts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password))
	}

	client, err := mail.NewClient(cfg.Host, clientOpts...)
	if err != nil {
		logger.Error("failed to create mail client",
			zap.Error(err),
			zap.String("host", cfg.Host),
			zap.Int("port", cfg.Port))
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return NewServiceWithClient(cfg, logger, client)
}

func NewServiceWithClient(cfg *config.MailConfig, logger *logging.Service, client Client) (*Service, error) {
	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("MAIL_FROM_ADDRESS is required")
	}
	if client == nil {
		return nil, fmt.Errorf("mail client is required")
	}

	return &Service{
		config: cfg,
		client: client,
		logger: logger.Named("mail"),
	}, nil
}

func (s *Service) NewMessage() (*mail.Msg, error) {
	message := mail.NewMsg()

	if s.config.FromName != "" {
		if err := message.FromFormat(s.config.FromName, s.config.FromAddress); err != nil {
			return nil, fmt.Errorf("failed to set FROM address: %w", err)
		}
		return message, nil
	}

	if err := message.From(s.config.FromAddress); err != nil {
		return nil, fmt.Errorf("failed to set FROM address: %w", err)
	}
	return message, nil
}

func (s *Service) Send(ctx context.Context, message *mail.Msg) error {
	startTime := time.Now()
	err := s.client.DialAndSendWithContext(ctx, message)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("failed to send email",
			zap.Error(err),
			zap.Duration("attempt_duration", duration))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent", zap.Duration("send_duration", duration))
	return nil
}

func (s *Service) SendPlain(ctx context.Context, to []string, subject, body string, opts ...MessageOption) error {
	message, err := s.NewMessage()
	if err != nil {
		return err
	}

	if err := message.To(to...); err != nil {
		return fmt.Errorf("failed to set TO addresses: %w", err)
	}

	for _, opt := range opts {
		if err := opt(message); err != nil {
			return fmt.Errorf("failed to apply message option: %w", err)
		}
	}

	message.Subject(subject)
	message.SetBodyString(mail.TypeTextPlain, body)

	s.logger.Debug("sending plain text email",
		zap.Strings("recipients", to),
		zap.String("subject", subject),
		zap.Int("body_length", len(body)))

	return s.Send(ctx, message)
}
