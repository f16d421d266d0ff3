package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-desk/internal/auth"
	"github.com/spec-kit/ticket-desk/internal/clock"
	"github.com/spec-kit/ticket-desk/internal/domain"
	"github.com/spec-kit/ticket-desk/internal/events"
	"github.com/spec-kit/ticket-desk/internal/persistence"
	"github.com/spec-kit/ticket-desk/internal/store"
)

// AuthKey is the storage key of the session.
const AuthKey = "auth"

// Session is returned by a successful sign-in.
type Session struct {
	User      domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthService holds the single persisted session.
type AuthService struct {
	state      *store.Value[domain.AuthState]
	identity   IdentityProvider
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	clock      clock.Clock
	logger     *zap.Logger
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	Store      persistence.KV
	Identity   IdentityProvider
	Tokens     *auth.TokenManager
	Dispatcher events.Dispatcher
	Clock      clock.Clock
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		state:      store.Bind(deps.Store, AuthKey, domain.SignedOut(), logger),
		identity:   deps.Identity,
		tokenMgr:   deps.Tokens,
		dispatcher: deps.Dispatcher,
		clock:      deps.Clock,
		logger:     logger,
	}
}

// Current returns the session as stored.
func (s *AuthService) Current(ctx context.Context) domain.AuthState {
	return s.state.Get(ctx).Normalize()
}

// Login signs in through the identity provider.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.identity.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.signIn(ctx, user, events.EventSessionLoggedIn)
}

// Register creates a user through the identity provider and signs it in.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*Session, error) {
	user, err := s.identity.Register(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	return s.signIn(ctx, user, events.EventSessionRegistered)
}

// Logout resets the session to its signed-out default.
func (s *AuthService) Logout(ctx context.Context) {
	prev := s.Current(ctx)
	s.state.Set(ctx, domain.SignedOut())
	s.publish(ctx, events.EventSessionLoggedOut, events.ActorFromUser(prev.User), nil)
}

// UpdateProfile merges patch into the current user. It reports false and
// changes nothing when nobody is signed in.
func (s *AuthService) UpdateProfile(ctx context.Context, patch domain.UserPatch) (domain.AuthState, bool) {
	updated := false
	next := s.state.Update(ctx, func(cur domain.AuthState) domain.AuthState {
		cur = cur.Normalize()
		if cur.User == nil {
			return cur
		}
		user := *cur.User
		patch.Apply(&user)
		updated = true
		return domain.SignedIn(user)
	})
	if updated {
		s.publish(ctx, events.EventProfileUpdated, events.ActorFromUser(next.User), nil)
	}
	return next, updated
}

func (s *AuthService) signIn(ctx context.Context, user domain.User, eventType events.EventType) (*Session, error) {
	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	s.state.Set(ctx, domain.SignedIn(user))
	s.publish(ctx, eventType, events.ActorFromUser(&user), nil)
	return &Session{User: user, Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, actor events.Actor, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.New(eventType, "", actor, s.clock.Now(), payload)
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}
