package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidAddress is returned when an address string is not "city, street, house".
var ErrInvalidAddress = errors.New("invalid address format")

// Address identifies a house in the provider's street directory.
type Address struct {
	City   string `json:"city"`
	Street string `json:"street"`
	House  string `json:"house"`
}

// ParseAddress parses an address in the form "city, street, house".
func ParseAddress(s string) (Address, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Address{}, fmt.Errorf("%w: %q, expected 'city, street, house'", ErrInvalidAddress, s)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
		if parts[i] == "" {
			return Address{}, fmt.Errorf("%w: %q has an empty part", ErrInvalidAddress, s)
		}
	}
	return Address{City: parts[0], Street: parts[1], House: parts[2]}, nil
}

func (a Address) String() string {
	return a.City + ", " + a.Street + ", " + a.House
}

// IsComplete reports whether all three parts are set.
func (a Address) IsComplete() bool {
	return a.City != "" && a.Street != "" && a.House != ""
}

// HourStatus is the power status of one hour slot. Hour runs 1-24, so hour 1
// covers 00:00-01:00.
type HourStatus struct {
	Hour      int         `json:"hour"`
	Status    PowerStatus `json:"status"`
	TimeRange string      `json:"time_range"`
}

// StartTime returns the clock time the slot begins at.
func (h HourStatus) StartTime() string {
	return fmt.Sprintf("%02d:00", h.Hour-1)
}

// EndTime returns the clock time the slot ends at. The last slot ends at "24:00".
func (h HourStatus) EndTime() string {
	if h.Hour >= 24 {
		return "24:00"
	}
	return fmt.Sprintf("%02d:00", h.Hour)
}

// OutagePeriod is a contiguous run of hours without guaranteed power.
type OutagePeriod struct {
	Start  string      `json:"start"`
	End    string      `json:"end"`
	Status PowerStatus `json:"status"`
}

// DaySchedule is the hourly schedule of one group for one day.
type DaySchedule struct {
	Date    time.Time    `json:"date"`
	DayName string       `json:"day_name"`
	Group   string       `json:"group"`
	Hours   []HourStatus `json:"hours"`
}

// DateString formats the date as dd.mm.yyyy.
func (d DaySchedule) DateString() string {
	return d.Date.Format("02.01.2006")
}

// OutagePeriods merges consecutive hours without power into periods. The
// status of a period is the status of its first hour.
func (d DaySchedule) OutagePeriods() []OutagePeriod {
	var (
		periods []OutagePeriod
		open    *OutagePeriod
	)
	for i, h := range d.Hours {
		if !h.Status.HasPower() {
			if open == nil {
				open = &OutagePeriod{Start: h.StartTime(), Status: h.Status}
			}
			continue
		}
		if open != nil {
			open.End = d.Hours[i-1].EndTime()
			periods = append(periods, *open)
			open = nil
		}
	}
	if open != nil {
		open.End = "24:00"
		periods = append(periods, *open)
	}
	return periods
}
