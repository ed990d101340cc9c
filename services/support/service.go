package support

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/NehaTanti-afk/Neha-Notes/config"
	"github.com/NehaTanti-afk/Neha-Notes/services/logging"
	"github.com/NehaTanti-afk/Neha-Notes/services/mail"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const MinDescriptionLength = 20

var (
	ErrFieldsRequired      = errors.New("all fields are required")
	ErrDescriptionTooShort = fmt.Errorf("please describe your issue in at least %d characters", MinDescriptionLength)
	ErrInvalidIssueType    = errors.New("unknown issue type")
)

type Mailer interface {
	SendPlain(ctx context.Context, to []string, subject, body string, opts ...mail.MessageOption) error
}

type TicketInput struct {
	Name        string    `json:"name" form:"name"`
	Email       string    `json:"email" form:"email"`
	IssueType   IssueType `json:"issue_type" form:"issue_type"`
	Description string    `json:"description" form:"description"`
}

type Service struct {
	config *config.Config
	db     *gorm.DB
	mailer Mailer
	logger *logging.Service
}

func NewService(cfg *config.Config, db *gorm.DB, logger *logging.Service) *Service {
	return &Service{
		config: cfg,
		db:     db,
		logger: logger.Named("support"),
	}
}

func (s *Service) SetMailer(mailer Mailer) {
	s.mailer = mailer
}

// Submit records a ticket. accountID is attached when the sender is signed in
// and may be empty for guests.
func (s *Service) Submit(ctx context.Context, in TicketInput, accountID string) (*Ticket, error) {
	ticket := &Ticket{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.TrimSpace(in.Email),
		IssueType:   IssueType(strings.TrimSpace(string(in.IssueType))),
		Description: strings.TrimSpace(in.Description),
	}

	if ticket.Name == "" || ticket.Email == "" || ticket.IssueType == "" || ticket.Description == "" {
		return nil, ErrFieldsRequired
	}
	if utf8.RuneCountInString(ticket.Description) < MinDescriptionLength {
		return nil, ErrDescriptionTooShort
	}
	if !ticket.IssueType.Valid() {
		return nil, ErrInvalidIssueType
	}
	if accountID != "" {
		ticket.UserID = &accountID
	}

	if err := s.db.WithContext(ctx).Create(ticket).Error; err != nil {
		s.logger.Error("failed to store support ticket", zap.Error(err))
		return nil, fmt.Errorf("failed to submit ticket: %w", err)
	}

	s.logger.Info("support ticket submitted",
		zap.String("ticket_id", ticket.ID),
		zap.String("issue_type", string(ticket.IssueType)))

	s.notify(ctx, ticket)
	return ticket, nil
}

// notify forwards the ticket to the support inbox. A failed e-mail leaves
// the ticket stored.
func (s *Service) notify(ctx context.Context, ticket *Ticket) {
	if s.mailer == nil || s.config.Support.Inbox == "" {
		return
	}

	subject := fmt.Sprintf("[%s] %s ticket from %s", s.config.App.Name, ticket.IssueType, ticket.Name)
	body := fmt.Sprintf("Ticket: %s\nFrom: %s <%s>\nIssue: %s\n\n%s\n",
		ticket.ID, ticket.Name, ticket.Email, ticket.IssueType, ticket.Description)

	err := s.mailer.SendPlain(ctx, []string{s.config.Support.Inbox}, subject, body, mail.WithReplyTo(ticket.Email))
	if err != nil {
		s.logger.Warn("failed to notify support inbox",
			zap.String("ticket_id", ticket.ID),
			zap.Error(err))
	}
}
