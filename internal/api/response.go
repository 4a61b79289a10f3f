package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Checker-Finance/bonds-service/internal/bonds"
)

// Envelope is the uniform response body: status is "success" or "error",
// data carries the operation result on success.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func success(c *fiber.Ctx, code int, data any) error {
	return c.Status(code).JSON(Envelope{Status: "success", Data: data})
}

func successMsg(c *fiber.Ctx, code int, msg string, data any) error {
	return c.Status(code).JSON(Envelope{Status: "success", Message: msg, Data: data})
}

func failure(c *fiber.Ctx, code int, msg string) error {
	return c.Status(code).JSON(Envelope{Status: "error", Message: msg})
}

// failureFor maps the domain error taxonomy onto HTTP status codes.
func failureFor(c *fiber.Ctx, err error) error {
	switch {
	case bonds.IsValidation(err):
		return failure(c, fiber.StatusBadRequest, err.Error())
	case bonds.IsNotFound(err):
		return failure(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, bonds.ErrSyncInProgress):
		return failure(c, fiber.StatusConflict, err.Error())
	case bonds.IsUpstream(err):
		return failure(c, fiber.StatusBadGateway, err.Error())
	default:
		return failure(c, fiber.StatusInternalServerError, "internal server error")
	}
}
