package outage

import (
	"fmt"

	"outage-checker/internal/models"
)

// FetchError is a transport failure or a non-2xx response.
type FetchError struct {
	Op         string
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s returned HTTP %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractionError means a named object is missing or malformed in the page.
type ExtractionError struct {
	Name   string
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %s", e.Name, e.Reason)
}

// ParseError is a decoding failure of provider data.
type ParseError struct {
	What string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.What, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// AddressNotFoundError means the provider has no group for a valid address.
type AddressNotFoundError struct {
	Address models.Address
}

func (e *AddressNotFoundError) Error() string {
	return fmt.Sprintf("could not find power group for address: %s", e.Address)
}
