package domain

import (
	"context"
	"time"
)

// CreateEventInput carries the organizer-supplied fields for a new event.
// EventType is the raw client string; the service parses and validates it.
type CreateEventInput struct {
	Name        string
	Description *string
	EventType   string
	FromDate    *time.Time
	ToDate      *time.Time
	Duration    int
}

// AvailabilityWindow is one proposed time window in a submission batch.
type AvailabilityWindow struct {
	FromDate time.Time
	ToDate   time.Time
}

// AvailabilitySubmission is one participant's batch of proposed windows.
// Every accepted window is stored with the same email/IP/name identity.
// UserIP is resolved from the network origin of the request, never from the
// request body.
type AvailabilitySubmission struct {
	Windows   []AvailabilityWindow
	UserEmail *string
	UserName  string
	UserIP    string
}

// ScheduleService defines the inbound commands exposed to the delivery
// layer. Each call is one atomic unit of work.
type ScheduleService interface {
	CreateEvent(ctx context.Context, in CreateEventInput) (*Event, error)
	GetEvent(ctx context.Context, publicID string) (*Event, error)
	SubmitAvailabilities(ctx context.Context, publicID string, sub AvailabilitySubmission) error
	ListAvailabilities(ctx context.Context, publicID string) ([]*Availability, error)
}
