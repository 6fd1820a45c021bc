package outage

import (
	"context"
	"sort"
	"strconv"
	"time"

	"outage-checker/internal/logger"
	"outage-checker/internal/models"
)

// GetScheduleForAddress returns the per-day schedule of the address's power
// group, earliest date first.
func (c *Client) GetScheduleForAddress(ctx context.Context, addr models.Address) ([]models.DaySchedule, error) {
	page, err := c.FetchSchedulePage(ctx)
	if err != nil {
		return nil, err
	}
	group, ok, err := c.FetchAddressGroup(ctx, addr.City, addr.Street, addr.House)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &AddressNotFoundError{Address: addr}
	}
	c.log.Infof("address %q resolved to group %s", addr.String(), group)
	return BuildSchedules(page.Schedule, page.Preset, group, c.opts.Location, c.log)
}

// BuildSchedules turns raw fact data into one DaySchedule per day for group.
// Hours missing from the data count as powered and ranges missing from the
// preset get a computed "hh-hh" label; both are logged at debug level since
// they can hide upstream schema changes.
func BuildSchedules(data models.ScheduleData, preset models.SchedulePreset, group string, loc *time.Location, log logger.Logger) ([]models.DaySchedule, error) {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	days := make([]models.DaySchedule, 0, len(data.Data))
	for key := range data.Data {
		ts, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, &ParseError{What: "schedule timestamp " + strconv.Quote(key), Err: err}
		}
		date := time.Unix(ts, 0).In(loc)

		codes := data.ScheduleForGroup(group, ts)
		if len(codes) == 0 {
			log.Debugf("group %s missing on %s, assuming power on", group, key)
		}

		hours := make([]models.HourStatus, 0, 24)
		var defaulted, computed int
		for h := 1; h <= 24; h++ {
			code, ok := codes[strconv.Itoa(h)]
			if !ok {
				code = string(models.StatusYes)
				defaulted++
			}
			status, err := models.ParsePowerStatus(code)
			if err != nil {
				return nil, &ParseError{What: "hour " + strconv.Itoa(h) + " of " + key, Err: err}
			}
			rng, fromPreset := preset.HourRange(h)
			if !fromPreset {
				computed++
			}
			hours = append(hours, models.HourStatus{Hour: h, Status: status, TimeRange: rng})
		}
		if defaulted > 0 || computed > 0 {
			log.Debugf("%s: %d hours defaulted to yes, %d ranges computed", key, defaulted, computed)
		}

		days = append(days, models.DaySchedule{
			Date:    date,
			DayName: preset.DayName(date),
			Group:   group,
			Hours:   hours,
		})
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days, nil
}
