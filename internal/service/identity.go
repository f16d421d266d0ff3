package service

import (
	"context"
	"strconv"
	"time"

	"github.com/spec-kit/ticket-desk/internal/clock"
	"github.com/spec-kit/ticket-desk/internal/domain"
	apperrors "github.com/spec-kit/ticket-desk/pkg/util/errorutil"
)

// IdentityProvider resolves credentials into a user. Implementations may
// block; they must return ctx.Err() when ctx ends first.
type IdentityProvider interface {
	Authenticate(ctx context.Context, email, password string) (domain.User, error)
	Register(ctx context.Context, name, email, password string) (domain.User, error)
}

// MockUser is the account every successful mock sign-in resolves to.
func MockUser() domain.User {
	return domain.User{
		ID:    "1",
		Name:  "John Doe",
		Email: "john.doe@example.com",
		Role:  domain.UserRoleAdmin,
	}
}

// MockIdentityProvider accepts any non-empty credentials after a fixed
// delay. It performs no credential checks.
type MockIdentityProvider struct {
	clock clock.Clock
	delay time.Duration
}

// NewMockIdentityProvider builds the provider.
func NewMockIdentityProvider(clk clock.Clock, delay time.Duration) *MockIdentityProvider {
	return &MockIdentityProvider{clock: clk, delay: delay}
}

func (p *MockIdentityProvider) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	if err := p.wait(ctx); err != nil {
		return domain.User{}, err
	}
	if email == "" || password == "" {
		return domain.User{}, apperrors.NewUnauthorized("Invalid credentials")
	}
	return MockUser(), nil
}

func (p *MockIdentityProvider) Register(ctx context.Context, name, email, password string) (domain.User, error) {
	if err := p.wait(ctx); err != nil {
		return domain.User{}, err
	}
	if name == "" || email == "" || password == "" {
		return domain.User{}, apperrors.NewValidationError("All fields are required", nil)
	}
	return domain.User{
		ID:    strconv.FormatInt(p.clock.Now().UnixMilli(), 10),
		Name:  name,
		Email: email,
		Role:  domain.UserRoleUser,
	}, nil
}

func (p *MockIdentityProvider) wait(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.clock.After(p.delay):
		return nil
	}
}
