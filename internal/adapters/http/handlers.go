package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/checkout/internal/core/usecases"
)

// HeaderIdempotencyKey lets clients retry a checkout without creating a second order.
const HeaderIdempotencyKey = "Idempotency-Key"

// CheckoutHandler validates the payload, runs the checkout and returns the new order.
func CheckoutHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := deps.Checkout.Submit(c.UserContext(), c.Body(), c.Get(HeaderIdempotencyKey))
		switch {
		case errors.Is(err, usecases.ErrInvalidPayload):
			return errBadRequest(c, "Invalid payload")
		case errors.Is(err, context.DeadlineExceeded):
			return errTimeout(c, "checkout timed out")
		case err != nil:
			return errInternal(c, err.Error())
		}

		if res.Replayed {
			c.Set("Idempotent-Replayed", "true")
		}
		return c.Status(fiber.StatusCreated).JSON(res.Order)
	}
}

// ListOrdersHandler returns the most recent orders.
func ListOrdersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orders, err := deps.Orders.List(c.UserContext())
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(orders)
	}
}

// ErrorBudgetHandler serves the current error-budget snapshot.
func ErrorBudgetHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.JSON(deps.Budget.Snapshot())
	}
}
