package outage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"outage-checker/internal/logger"
	"outage-checker/internal/models"
)

// ScheduleCache stores built schedules per address. addr may point into
// request buffers; implementations must copy whatever they keep.
type ScheduleCache interface {
	GetSchedule(ctx context.Context, addr models.Address) ([]models.DaySchedule, bool, error)
	SetSchedule(ctx context.Context, addr models.Address, days []models.DaySchedule) error
}

// errMissingParam is a required query parameter left empty.
var errMissingParam = errors.New("missing query parameter")

// AppConfig is the Fiber configuration the service runs with.
func AppConfig() fiber.Config {
	return fiber.Config{DisableStartupMessage: true}
}

// Handlers serves provider data over HTTP. Every request opens its own Client.
type Handlers struct {
	Options Options
	Cache   ScheduleCache // optional
	Log     logger.Logger
}

// RegisterRoutes registers outage API routes on the given Fiber app group.
func (h *Handlers) RegisterRoutes(api fiber.Router) {
	outage := api.Group("/outage")
	outage.Get("/cities", h.GetCities)
	outage.Get("/dates", h.GetDates)
	outage.Get("/streets", h.GetStreets)
	outage.Get("/houses", h.GetHouses)
	outage.Get("/group", h.GetGroup)
	outage.Get("/schedule", h.GetSchedule)
}

func (h *Handlers) logger() logger.Logger {
	if h.Log == nil {
		return logger.NopLogger{}
	}
	return h.Log
}

// errorStatus maps provider errors to HTTP statuses.
func errorStatus(err error) int {
	var (
		notFound   *AddressNotFoundError
		fetchErr   *FetchError
		extractErr *ExtractionError
		parseErr   *ParseError
	)
	switch {
	case errors.Is(err, models.ErrInvalidAddress), errors.Is(err, errMissingParam):
		return fiber.StatusBadRequest
	case errors.As(err, &notFound):
		return fiber.StatusNotFound
	case errors.As(err, &fetchErr), errors.As(err, &extractErr), errors.As(err, &parseErr):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

func (h *Handlers) fail(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	if status >= fiber.StatusInternalServerError {
		h.logger().Errorf("%s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func requireQuery(c *fiber.Ctx, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	var missing []string
	for _, k := range keys {
		v := strings.TrimSpace(c.Query(k))
		if v == "" {
			missing = append(missing, k)
		}
		out[k] = v
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", errMissingParam, strings.Join(missing, ", "))
	}
	return out, nil
}

// GetCities returns the cities of the street directory.
func (h *Handlers) GetCities(c *fiber.Ctx) error {
	var cities []string
	err := WithClient(h.Options, func(cl *Client) error {
		var err error
		cities, err = cl.FetchCities(c.UserContext())
		return err
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(cities)
}

// GetDates returns the days the provider currently publishes, earliest first.
func (h *Handlers) GetDates(c *fiber.Ctx) error {
	var page *Page
	err := WithClient(h.Options, func(cl *Client) error {
		var err error
		page, err = cl.FetchSchedulePage(c.UserContext())
		return err
	})
	if err != nil {
		return h.fail(c, err)
	}
	loc := h.Options.Location
	if loc == nil {
		loc = time.Local
	}
	dates := []string{}
	for _, d := range page.Schedule.AvailableDates(loc) {
		dates = append(dates, d.Format("02.01.2006"))
	}
	return c.JSON(fiber.Map{"dates": dates, "update": page.Schedule.UpdateTime})
}

// GetStreets returns the streets of ?city=.
func (h *Handlers) GetStreets(c *fiber.Ctx) error {
	q, err := requireQuery(c, "city")
	if err != nil {
		return h.fail(c, err)
	}
	var (
		streets []string
		found   bool
	)
	err = WithClient(h.Options, func(cl *Client) error {
		var err error
		streets, found, err = cl.FetchStreets(c.UserContext(), q["city"])
		return err
	})
	if err != nil {
		return h.fail(c, err)
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "city not found: " + q["city"]})
	}
	return c.JSON(streets)
}

// GetHouses returns the house numbers of ?city=&street=.
func (h *Handlers) GetHouses(c *fiber.Ctx) error {
	q, err := requireQuery(c, "city", "street")
	if err != nil {
		return h.fail(c, err)
	}
	var houses []string
	err = WithClient(h.Options, func(cl *Client) error {
		var err error
		houses, err = cl.FetchHouses(c.UserContext(), q["city"], q["street"])
		return err
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(houses)
}

// GetGroup resolves ?city=&street=&house= to a power group.
func (h *Handlers) GetGroup(c *fiber.Ctx) error {
	q, err := requireQuery(c, "city", "street", "house")
	if err != nil {
		return h.fail(c, err)
	}
	addr := models.Address{City: q["city"], Street: q["street"], House: q["house"]}
	var (
		group string
		found bool
	)
	err = WithClient(h.Options, func(cl *Client) error {
		var err error
		group, found, err = cl.FetchAddressGroup(c.UserContext(), addr.City, addr.Street, addr.House)
		return err
	})
	if err != nil {
		return h.fail(c, err)
	}
	if !found {
		return h.fail(c, &AddressNotFoundError{Address: addr})
	}
	return c.JSON(fiber.Map{"address": addr, "group": group})
}

// DayReport is the JSON view of a day: the schedule plus its formatted date
// and merged outage periods.
type DayReport struct {
	models.DaySchedule
	DateString string                `json:"date_string"`
	Outages    []models.OutagePeriod `json:"outages"`
}

// Reports converts days to their JSON view. Outages is never null.
func Reports(days []models.DaySchedule) []DayReport {
	out := make([]DayReport, 0, len(days))
	for _, d := range days {
		outages := d.OutagePeriods()
		if outages == nil {
			outages = []models.OutagePeriod{}
		}
		out = append(out, DayReport{DaySchedule: d, DateString: d.DateString(), Outages: outages})
	}
	return out
}

// GetSchedule returns the schedule of ?address= or ?city=&street=&house=.
func (h *Handlers) GetSchedule(c *fiber.Ctx) error {
	addr, err := addressFromQuery(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx := c.UserContext()

	days, cached := h.cachedSchedule(ctx, addr)
	if !cached {
		err = WithClient(h.Options, func(cl *Client) error {
			var err error
			days, err = cl.GetScheduleForAddress(ctx, addr)
			return err
		})
		if err != nil {
			return h.fail(c, err)
		}
		if h.Cache != nil {
			if err := h.Cache.SetSchedule(ctx, addr, days); err != nil {
				h.logger().Warnf("cache schedule for %q: %v", addr.String(), err)
			}
		}
	}

	return c.JSON(fiber.Map{"address": addr, "cached": cached, "days": Reports(days)})
}

func (h *Handlers) cachedSchedule(ctx context.Context, addr models.Address) ([]models.DaySchedule, bool) {
	if h.Cache == nil {
		return nil, false
	}
	days, ok, err := h.Cache.GetSchedule(ctx, addr)
	if err != nil {
		h.logger().Warnf("read cached schedule for %q: %v", addr.String(), err)
		return nil, false
	}
	return days, ok
}

func addressFromQuery(c *fiber.Ctx) (models.Address, error) {
	if s := c.Query("address"); s != "" {
		return models.ParseAddress(s)
	}
	addr := models.Address{
		City:   strings.TrimSpace(c.Query("city")),
		Street: strings.TrimSpace(c.Query("street")),
		House:  strings.TrimSpace(c.Query("house")),
	}
	if !addr.IsComplete() {
		return models.Address{}, models.ErrInvalidAddress
	}
	return addr, nil
}
