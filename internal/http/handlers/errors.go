package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "expressbuy/internal/log"
	"expressbuy/internal/services"
)

const internalMsg = "Something went wrong. Please try again."

// publicReason is the client-facing message for err, safe to put in log fields.
func publicReason(err error) string {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		return svcErr.Msg
	}
	return internalMsg
}

// ErrorHandler maps service error kinds to status codes. Only the client-safe message
// of a services.Error reaches the response; causes are logged.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status, msg := fiber.StatusInternalServerError, internalMsg

	var svcErr *services.Error
	var fe *fiber.Error
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrUpstream):
		status = fiber.StatusInternalServerError
	case errors.As(err, &fe):
		status, msg = fe.Code, fe.Message
	}
	if errors.As(err, &svcErr) {
		msg = svcErr.Msg
	}

	c.Status(status)
	if status >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
	} else {
		applog.Info(c, "request.rejected", map[string]any{"reason": msg})
	}
	return reply(c, status, msg, nil)
}
