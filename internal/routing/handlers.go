package routing

import (
	"errors"

	"backend-traceview/internal/trace"

	"github.com/gofiber/fiber/v2"
)

type coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type routeRequest struct {
	From *coordinate `json:"from"`
	To   *coordinate `json:"to"`
}

func RegisterRoutes(r fiber.Router, svc *Service, endpoints EndpointSource, authMiddleware fiber.Handler) {
	r.Post("/:provider/route", authMiddleware, func(c *fiber.Ctx) error {
		var from, to trace.Point

		if trackID := c.Query("track"); trackID != "" {
			var err error
			from, to, err = endpoints.Endpoints(c.Context(), trackID)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		} else {
			var req routeRequest
			if err := c.BodyParser(&req); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			if req.From == nil || req.To == nil {
				return fiber.NewError(fiber.StatusBadRequest, "from and to required")
			}
			if !validCoordinate(*req.From) || !validCoordinate(*req.To) {
				return fiber.NewError(fiber.StatusBadRequest, "coordinates out of range")
			}
			from = trace.Point{Lat: req.From.Lat, Lng: req.From.Lng}
			to = trace.Point{Lat: req.To.Lat, Lng: req.To.Lng}
		}

		route, err := svc.Route(c.Context(), c.Params("provider"), from, to)
		if errors.Is(err, ErrUnknownProvider) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		var providerErr *ProviderError
		if errors.As(err, &providerErr) {
			return fiber.NewError(fiber.StatusBadGateway, providerErr.Message)
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(route)
	})
}

func validCoordinate(c coordinate) bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}
