package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared across the domain.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrPublicIDCollision is returned when a freshly generated public ID
	// already exists. With the configured alphabet and length this is
	// vanishingly rare; it is surfaced rather than retried.
	ErrPublicIDCollision = errors.New("public id already in use")
)

// Event schedule validation errors. Each corresponds to exactly one rule in
// ValidateEventSchedule.
var (
	ErrUnknownEventType = errors.New("unknown event type")
	ErrMissingFromDate  = errors.New("from_date is required for SpecificDate events")
	ErrMissingDateRange = errors.New("DateRange events require both from_date and to_date")
	ErrInvertedRange    = errors.New("from_date must be before to_date")
	ErrRangeTooShort    = errors.New("date range must span at least one day")
	ErrRangeTooLong     = errors.New("date range must not span more than 14 days")
)

// IsValidation reports whether err is one of the event schedule validation
// errors, so the delivery layer can map the whole family to a bad request.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrUnknownEventType,
		ErrMissingFromDate,
		ErrMissingDateRange,
		ErrInvertedRange,
		ErrRangeTooShort,
		ErrRangeTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// EventType classifies how an event's proposed dates are interpreted.
type EventType string

const (
	EventTypeSpecificDate EventType = "SpecificDate"
	EventTypeDateRange    EventType = "DateRange"
	EventTypeDay          EventType = "Day"
	EventTypeWeek         EventType = "Week"
	EventTypeMonth        EventType = "Month"

	// EventTypeUnknown is the fallback for unrecognized input. It fails
	// validation and is never persisted.
	EventTypeUnknown EventType = "Unknown"
)

// ParseEventType maps an open client string onto the closed EventType set.
// Unrecognized values yield EventTypeUnknown.
func ParseEventType(s string) EventType {
	switch t := EventType(s); t {
	case EventTypeSpecificDate, EventTypeDateRange, EventTypeDay, EventTypeWeek, EventTypeMonth:
		return t
	default:
		return EventTypeUnknown
	}
}

// Span bounds for DateRange events.
const (
	MinDateRangeSpan = 24 * time.Hour
	MaxDateRangeSpan = 14 * 24 * time.Hour
)

// ValidateEventSchedule enforces the per-type structural rules on an event's
// proposed dates. Pure function; rules are checked in order and the first
// violation wins.
func ValidateEventSchedule(t EventType, from, to *time.Time) error {
	switch t {
	case EventTypeSpecificDate:
		if from == nil {
			return ErrMissingFromDate
		}
	case EventTypeDateRange:
		if from == nil || to == nil {
			return ErrMissingDateRange
		}
		if !from.Before(*to) {
			return ErrInvertedRange
		}
		if span := to.Sub(*from); span < MinDateRangeSpan {
			return ErrRangeTooShort
		} else if span > MaxDateRangeSpan {
			return ErrRangeTooLong
		}
	case EventTypeDay, EventTypeWeek, EventTypeMonth:
		// Dates are optional; interpretation is left to the client.
	default:
		return ErrUnknownEventType
	}
	return nil
}

// Event represents a schedulable event created by an organizer. ID is the
// internal storage identity; PublicID is the externally visible handle.
// swagger:model Event
type Event struct {
	ID          int64      `json:"-"`
	PublicID    string     `json:"public_id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	FromDate    *time.Time `json:"from_date,omitempty"`
	ToDate      *time.Time `json:"to_date,omitempty"`
	EventType   EventType  `json:"event_type"`
	Duration    int        `json:"duration"`
	CreatedAt   time.Time  `json:"created_at"`
}

// EventRepository defines storage operations for events. Methods run against
// the connection or transaction the repository was constructed with; Create
// sets the storage-assigned ID on the event.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id int64) (*Event, error)
	GetByPublicID(ctx context.Context, publicID string) (*Event, error)
	// GetByPublicIDForUpdate additionally locks the event row until the
	// enclosing transaction ends, serializing concurrent submissions
	// against the same event.
	GetByPublicIDForUpdate(ctx context.Context, publicID string) (*Event, error)
}
