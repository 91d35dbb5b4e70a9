package track

import (
	"errors"
	"io"

	"backend-traceview/internal/gpx"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if userID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "user_id missing")
		}

		data := c.Body()
		if fh, err := c.FormFile("file"); err == nil {
			f, err := fh.Open()
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			defer f.Close()
			if data, err = io.ReadAll(f); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}
		if len(data) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "gpx file required")
		}

		name, points, err := gpx.Parse(data)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if form := c.FormValue("name"); form != "" {
			name = form
		}
		if name == "" {
			name = "Uploaded track"
		}

		trk, err := svc.Create(c.Context(), userID, name, points)
		if errors.Is(err, ErrTooFewPoints) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(trk)
	})

	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if userID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "user_id missing")
		}
		tracks, err := svc.ListByUser(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(tracks)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		trk, err := svc.Get(c.Context(), c.Params("id"))
		if errors.Is(err, pgx.ErrNoRows) {
			return fiber.NewError(fiber.StatusNotFound, "track not found")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(trk)
	})

	r.Get("/:id/points", func(c *fiber.Ctx) error {
		points, err := svc.Points(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(points)
	})

	r.Get("/:id/stats", func(c *fiber.Ctx) error {
		stats, err := svc.Stats(c.Context(), c.Params("id"))
		if errors.Is(err, ErrTooFewPoints) {
			return fiber.NewError(fiber.StatusNotFound, "track has no statistics")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(stats)
	})

	r.Get("/:id/geojson", func(c *fiber.Ctx) error {
		feature, err := svc.GeoJSON(c.Context(), c.Params("id"))
		if errors.Is(err, pgx.ErrNoRows) {
			return fiber.NewError(fiber.StatusNotFound, "track not found")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(feature)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if userID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "user_id missing")
		}
		err := svc.Delete(c.Context(), c.Params("id"), userID)
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
