package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-desk/internal/repository"
	apperrors "github.com/spec-kit/ticket-desk/pkg/util/errorutil"
)

// PreferencesHandler exposes the persisted UI preferences.
type PreferencesHandler struct {
	prefs repository.PreferencesRepository
}

// NewPreferencesHandler constructs handler.
func NewPreferencesHandler(prefs repository.PreferencesRepository) *PreferencesHandler {
	return &PreferencesHandler{prefs: prefs}
}

// List GET /preferences.
func (h *PreferencesHandler) List(c *fiber.Ctx) error {
	out := fiber.Map{}
	for _, key := range h.prefs.Keys() {
		val, err := h.prefs.Get(c.UserContext(), key)
		if err != nil {
			return preferenceError(key, err)
		}
		out[key] = val
	}
	return c.JSON(fiber.Map{"data": out})
}

// Get GET /preferences/:key.
func (h *PreferencesHandler) Get(c *fiber.Ctx) error {
	key := c.Params("key")
	val, err := h.prefs.Get(c.UserContext(), key)
	if err != nil {
		return preferenceError(key, err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"key": key, "value": val}})
}

// Put PUT /preferences/:key. The body is the raw JSON value.
func (h *PreferencesHandler) Put(c *fiber.Ctx) error {
	key := c.Params("key")
	body := c.Body()
	if len(body) == 0 {
		return apperrors.NewValidationError("value required", map[string]any{"key": key})
	}
	val, err := h.prefs.Set(c.UserContext(), key, append([]byte(nil), body...))
	if err != nil {
		return preferenceError(key, err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"key": key, "value": val}})
}

// Delete DELETE /preferences/:key restores the default.
func (h *PreferencesHandler) Delete(c *fiber.Ctx) error {
	key := c.Params("key")
	val, err := h.prefs.Reset(c.UserContext(), key)
	if err != nil {
		return preferenceError(key, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": fiber.Map{"key": key, "value": val}})
}

func preferenceError(key string, err error) error {
	switch {
	case errors.Is(err, repository.ErrUnknownPreference):
		return apperrors.NewNotFound("preference", map[string]any{"key": key})
	case errors.Is(err, repository.ErrInvalidPreference):
		return apperrors.NewValidationError(err.Error(), map[string]any{"key": key})
	}
	return err
}
