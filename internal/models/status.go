package models

import "fmt"

// PowerStatus is a raw hour status code as published by the provider.
type PowerStatus string

const (
	StatusYes         PowerStatus = "yes"     // power is available
	StatusNo          PowerStatus = "no"      // scheduled outage
	StatusMaybe       PowerStatus = "maybe"   // possible outage
	StatusFirst       PowerStatus = "first"   // off for the first 30 minutes
	StatusSecond      PowerStatus = "second"  // off for the second 30 minutes
	StatusMaybeFirst  PowerStatus = "mfirst"  // possibly off for the first 30 minutes
	StatusMaybeSecond PowerStatus = "msecond" // possibly off for the second 30 minutes
)

var defaultStatusText = map[PowerStatus]string{
	StatusYes:         "Power ON",
	StatusNo:          "Power OFF",
	StatusMaybe:       "Maybe OFF",
	StatusFirst:       "OFF first 30 min",
	StatusSecond:      "OFF second 30 min",
	StatusMaybeFirst:  "Maybe OFF first 30 min",
	StatusMaybeSecond: "Maybe OFF second 30 min",
}

// ParsePowerStatus validates a raw status code.
func ParsePowerStatus(code string) (PowerStatus, error) {
	s := PowerStatus(code)
	if !s.Valid() {
		return "", fmt.Errorf("unknown power status %q", code)
	}
	return s, nil
}

// Valid reports whether s is one of the known codes.
func (s PowerStatus) Valid() bool {
	_, ok := defaultStatusText[s]
	return ok
}

// HasPower reports whether power is definitely available.
func (s PowerStatus) HasPower() bool { return s == StatusYes }

// NoPower reports whether power is definitely off.
func (s PowerStatus) NoPower() bool { return s == StatusNo }

// IsPartial reports a half-hour outage.
func (s PowerStatus) IsPartial() bool {
	switch s {
	case StatusFirst, StatusSecond, StatusMaybeFirst, StatusMaybeSecond:
		return true
	}
	return false
}

// IsUncertain reports a "maybe" status.
func (s PowerStatus) IsUncertain() bool {
	switch s {
	case StatusMaybe, StatusMaybeFirst, StatusMaybeSecond:
		return true
	}
	return false
}

// DisplayText returns the provider's translation for s when present, otherwise
// an English default.
func (s PowerStatus) DisplayText(translations map[string]string) string {
	if t, ok := translations[string(s)]; ok && t != "" {
		return t
	}
	if t, ok := defaultStatusText[s]; ok {
		return t
	}
	return string(s)
}
