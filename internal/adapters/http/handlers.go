package http

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/transitcat/internal/core/domain"
	"github.com/samirrijal/transitcat/internal/core/usecases"
)

// RequireNetwork rejects data requests until a snapshot is available.
func RequireNetwork(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Network == nil {
			return errUnavailable(c, "network not loaded")
		}
		return c.Next()
	}
}

// NetworkHandler returns the summary of the loaded snapshot.
func NetworkHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Network.Summary())
	}
}

// ListStopsHandler returns stops in name order.
func ListStopsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		if offset < 0 {
			offset = 0
		}
		limit := usecases.PageLimit(c.QueryInt("limit", 0))

		stops, total := deps.Network.ListStops(c.UserContext(), offset, limit)

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: stops, Pagination: pg})
	}
}

// pathParam returns a route parameter with percent-escapes decoded.
func pathParam(c *fiber.Ctx, key string) (string, error) {
	return url.PathUnescape(c.Params(key))
}

// GetStopHandler returns a stop with the sorted routes serving it.
func GetStopHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, err := pathParam(c, "name")
		if err != nil {
			return errBadRequest(c, "invalid stop name")
		}
		if name == "" {
			return errBadRequest(c, "stop name is required")
		}

		stop, err := deps.Network.Stop(c.UserContext(), name)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errNotFound(c, "stop not found")
			}
			return errInternal(c, err.Error())
		}
		return c.JSON(stop)
	}
}

// ListRoutesHandler returns routes in number order with their statistics.
func ListRoutesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		if offset < 0 {
			offset = 0
		}
		limit := usecases.PageLimit(c.QueryInt("limit", 0))

		routes, total, err := deps.Network.ListRoutes(c.UserContext(), offset, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: routes, Pagination: pg})
	}
}

// GetRouteHandler returns a route with its statistics.
func GetRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		number, err := pathParam(c, "number")
		if err != nil {
			return errBadRequest(c, "invalid route number")
		}
		if number == "" {
			return errBadRequest(c, "route number is required")
		}

		route, err := deps.Network.Route(c.UserContext(), number)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errNotFound(c, "route not found")
			}
			return errInternal(c, err.Error())
		}
		return c.JSON(route)
	}
}

type itineraryResponse struct {
	domain.Itinerary
	Duration  string `json:"duration"`
	Transfers int    `json:"transfers"`
}

// ItineraryHandler plans the fastest trip between two stops.
func ItineraryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from := strings.TrimSpace(c.Query("from"))
		to := strings.TrimSpace(c.Query("to"))
		if from == "" || to == "" {
			return errBadRequest(c, "from and to query parameters are required")
		}

		it, err := deps.Network.PlanItinerary(c.UserContext(), from, to)
		switch {
		case errors.Is(err, domain.ErrStopNotFound):
			return errNotFound(c, err.Error())
		case errors.Is(err, domain.ErrNoRoute):
			return errNoRoute(c, "no route between "+from+" and "+to)
		case err != nil:
			return errInternal(c, err.Error())
		}

		return c.JSON(itineraryResponse{
			Itinerary: it,
			Duration:  it.Duration().String(),
			Transfers: it.Transfers(),
		})
	}
}

// MapHandler renders the network as a GeoJSON FeatureCollection.
func MapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		settings := deps.Render
		settings.Width = c.QueryFloat("width", settings.Width)
		settings.Height = c.QueryFloat("height", settings.Height)
		settings.Padding = c.QueryFloat("padding", settings.Padding)
		if err := settings.Validate(); err != nil {
			return errBadRequest(c, err.Error())
		}

		data, err := deps.Network.RenderMap(c.UserContext(), settings)
		if err != nil {
			return errInternal(c, err.Error())
		}

		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(data)
	}
}

// BatchHandler answers a JSON array of statistics requests in order.
func BatchHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var reqs []domain.StatRequest
		if err := c.BodyParser(&reqs); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if len(reqs) > usecases.MaxBatch {
			return errBadRequest(c, fmt.Sprintf("too many requests (max %d)", usecases.MaxBatch))
		}

		return c.JSON(deps.Requests.Process(c.UserContext(), reqs))
	}
}
