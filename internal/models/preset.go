package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Streets maps a city or settlement to its street names.
type Streets map[string][]string

// TimeZone is a preset entry for one hour. The provider publishes a list whose
// first element is the display range ("08-09"); a bare string is also accepted.
type TimeZone []string

func (tz *TimeZone) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*tz = TimeZone{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*tz = list
	return nil
}

// SchedulePreset holds the provider's display tables for one page fetch.
type SchedulePreset struct {
	Days          map[string]string   `json:"days"`      // ISO weekday -> name
	DaysMini      map[string]string   `json:"days_mini"` // ISO weekday -> short name
	ScheduleNames map[string]string   `json:"sch_names"` // group -> display name
	TimeZones     map[string]TimeZone `json:"time_zone"` // hour -> display range
	TimeTypes     map[string]string   `json:"time_type"` // status code -> display text
}

// Normalize replaces missing tables with empty ones.
func (p *SchedulePreset) Normalize() {
	if p.Days == nil {
		p.Days = map[string]string{}
	}
	if p.DaysMini == nil {
		p.DaysMini = map[string]string{}
	}
	if p.ScheduleNames == nil {
		p.ScheduleNames = map[string]string{}
	}
	if p.TimeZones == nil {
		p.TimeZones = map[string]TimeZone{}
	}
	if p.TimeTypes == nil {
		p.TimeTypes = map[string]string{}
	}
}

// HourRange returns the display range for hour, falling back to "07-08" style
// when the preset has no usable entry.
func (p SchedulePreset) HourRange(hour int) (string, bool) {
	if tz := p.TimeZones[strconv.Itoa(hour)]; len(tz) > 0 && tz[0] != "" {
		return tz[0], true
	}
	return fmt.Sprintf("%02d-%02d", hour-1, hour), false
}

// DayName returns the localized name for t's ISO weekday, or "".
func (p SchedulePreset) DayName(t time.Time) string {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return p.Days[strconv.Itoa(wd)]
}

// GroupName returns the display name of a group, or the group id itself.
func (p SchedulePreset) GroupName(group string) string {
	if n, ok := p.ScheduleNames[group]; ok && n != "" {
		return n
	}
	return group
}

// ScheduleData is the raw fact table of one page fetch.
type ScheduleData struct {
	// Data is keyed by unix timestamp string, then group id, then hour (1-24).
	Data           map[string]map[string]map[string]string `json:"data"`
	UpdateTime     string                                  `json:"update"`
	TodayTimestamp int64                                   `json:"today"`
}

// Normalize replaces a missing data table with an empty one.
func (d *ScheduleData) Normalize() {
	if d.Data == nil {
		d.Data = map[string]map[string]map[string]string{}
	}
}

// AvailableDates returns the dates present in the data, earliest first.
// Keys that are not unix timestamps are skipped.
func (d ScheduleData) AvailableDates(loc *time.Location) []time.Time {
	dates := make([]time.Time, 0, len(d.Data))
	for key := range d.Data {
		ts, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		dates = append(dates, time.Unix(ts, 0).In(loc))
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// ScheduleForGroup returns the hour -> status map of group on the day keyed by
// ts. The result is empty, never nil, when either is absent.
func (d ScheduleData) ScheduleForGroup(group string, ts int64) map[string]string {
	if hours, ok := d.Data[strconv.FormatInt(ts, 10)][group]; ok && hours != nil {
		return hours
	}
	return map[string]string{}
}
