package selection

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Put("/:id/selection/:slot", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			PointIndex int `json:"point_index"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		sel, err := svc.Set(c.Context(), c.Params("id"), c.Params("slot"), body.PointIndex)
		if errors.Is(err, ErrInvalidSlot) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if errors.Is(err, ErrIndexOutOfRange) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(sel)
	})

	r.Get("/:id/selection", func(c *fiber.Ctx) error {
		selections, err := svc.List(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(selections)
	})
}
