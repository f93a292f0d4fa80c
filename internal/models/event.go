package models

import (
	"errors"
	"strings"
	"time"
)

// eventDateLayout matches the day/month/year form printed on tickets
const eventDateLayout = "02/01/2006"

// Event carries the metadata printed on every issued ticket
type Event struct {
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Venue     string    `json:"venue"`
}

// Validate validates the event data
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return errors.New("event name is required")
	}

	if len(e.Name) > 200 {
		return errors.New("event name must be less than 200 characters")
	}

	if e.StartDate.IsZero() {
		return errors.New("start date is required")
	}

	if !e.EndDate.IsZero() && e.EndDate.Before(e.StartDate) {
		return errors.New("end date must be after start date")
	}

	if strings.TrimSpace(e.Venue) == "" {
		return errors.New("venue is required")
	}

	return nil
}

// DateRange formats the event dates as "dd/mm/yyyy - dd/mm/yyyy".
// Single-day events print only the start date.
func (e *Event) DateRange() string {
	start := e.StartDate.Format(eventDateLayout)
	if e.EndDate.IsZero() {
		return start
	}
	end := e.EndDate.Format(eventDateLayout)
	if end == start {
		return start
	}
	return start + " - " + end
}

// IsMultiDay returns true if the event spans more than one calendar day
func (e *Event) IsMultiDay() bool {
	return e.DateRange() != e.StartDate.Format(eventDateLayout)
}
