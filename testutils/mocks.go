package testutils

import (
	"context"

	"github.com/NehaTanti-afk/Neha-Notes/services/mail"
	"github.com/stretchr/testify/mock"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendPlain(ctx context.Context, to []string, subject, body string, opts ...mail.MessageOption) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}
