package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-desk/internal/api/dto"
	"github.com/spec-kit/ticket-desk/internal/auth"
	"github.com/spec-kit/ticket-desk/internal/domain"
	"github.com/spec-kit/ticket-desk/internal/service"
	"github.com/spec-kit/ticket-desk/internal/timefmt"
	apperrors "github.com/spec-kit/ticket-desk/pkg/util/errorutil"
)

// UsersHandler exposes session and profile endpoints.
type UsersHandler struct {
	auth      *service.AuthService
	tickets   *service.TicketService
	formatter timefmt.Formatter
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, ticketService *service.TicketService, formatter timefmt.Formatter) *UsersHandler {
	return &UsersHandler{auth: authService, tickets: ticketService, formatter: formatter}
}

// Register handles POST /auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	session, err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": sessionPayload(session)})
}

// Login handles POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	session, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessionPayload(session)})
}

// Logout handles POST /auth/logout.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	h.auth.Logout(c.UserContext())
	return c.SendStatus(http.StatusNoContent)
}

// Session handles GET /auth/session.
func (h *UsersHandler) Session(c *fiber.Ctx) error {
	state := h.auth.Current(c.UserContext())
	resp := dto.SessionResponse{IsAuthenticated: state.IsAuthenticated}
	if state.User != nil {
		user := userResponse(*state.User)
		resp.User = &user
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Profile handles GET /profile.
func (h *UsersHandler) Profile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	profile := h.tickets.Profile(c.UserContext(), principal.User)

	now := h.formatter.Now()
	activity := make([]dto.ActivityResponse, 0, len(profile.RecentActivity))
	for _, a := range profile.RecentActivity {
		activity = append(activity, dto.ActivityResponse{
			Action:   a.Action,
			TicketID: a.TicketID,
			TimeAgo:  timefmt.DetailedAgo(a.Time, now),
		})
	}
	return c.JSON(fiber.Map{"data": dto.ProfileResponse{
		User:            userResponse(profile.User),
		Assigned:        ticketResponses(h.formatter, profile.Assigned),
		TicketsCreated:  profile.TicketsCreated,
		TicketsResolved: profile.TicketsResolved,
		RecentActivity:  activity,
	}})
}

// UpdateProfile handles PATCH /profile.
func (h *UsersHandler) UpdateProfile(c *fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	state, ok := h.auth.UpdateProfile(c.UserContext(), domain.UserPatch{
		Name:   req.Name,
		Email:  req.Email,
		Avatar: req.Avatar,
	})
	if !ok {
		return apperrors.NewUnauthorized("no active session")
	}
	return c.JSON(fiber.Map{"data": userResponse(*state.User)})
}

func sessionPayload(session *service.Session) fiber.Map {
	return fiber.Map{
		"user": userResponse(session.User),
		"auth": dto.AuthResponse{Token: session.Token, ExpiresAt: session.ExpiresAt},
	}
}

func userResponse(u domain.User) dto.UserResponse {
	return dto.UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar, Role: u.Role}
}
