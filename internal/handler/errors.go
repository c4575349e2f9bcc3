package handler

import (
	"errors"
	"log"
	"strconv"

	"go-storefront/internal/service"
	"go-storefront/pkg/imagestore"
	"go-storefront/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

// errorStatus maps service errors to HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, validator.ErrValidation),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrUnknownProduct),
		errors.Is(err, service.ErrPickupPointNotFound),
		errors.Is(err, service.ErrPurchaserNotFound),
		errors.Is(err, service.ErrPasswordTooShort),
		errors.Is(err, service.ErrWrongPassword),
		errors.Is(err, imagestore.ErrInvalidName),
		errors.Is(err, imagestore.ErrUnsupportedImage):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrSessionExpired):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrArticleExists),
		errors.Is(err, service.ErrProductInOrder),
		errors.Is(err, service.ErrLoginExists),
		errors.Is(err, service.ErrUserHasOrders):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// fail writes {"error": ...}. Internal faults are logged and hidden.
func fail(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Method(), c.Path(), err)
		return c.Status(status).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 0)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
