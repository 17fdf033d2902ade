package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrDuplicateSubmission is returned when a participant identity already has
// availability rows recorded for the event.
var ErrDuplicateSubmission = errors.New("availability already submitted for this event")

// Availability is one proposed time window submitted by a participant.
// Email and IP identify the submitter for deduplication and are never
// exposed in API responses.
// swagger:model Availability
type Availability struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"-"`
	FromDate  time.Time `json:"from_date"`
	ToDate    time.Time `json:"to_date"`
	UserEmail *string   `json:"-"`
	UserIP    string    `json:"-"`
	UserName  string    `json:"user_name"`
	CreatedAt time.Time `json:"-"`
}

// SubmitterIdentity is the tuple used to decide whether a submission is a
// repeat: participant email (optional), request origin IP, and display name.
type SubmitterIdentity struct {
	Email *string
	IP    string
	Name  string
}

// HasSubmissionConflict reports whether any prior availability row for the
// event was recorded by the same participant. A match on any single
// dimension blocks the whole batch: equal non-empty emails
// (case-insensitive), equal source IP, or equal display name.
func HasSubmissionConflict(existing []*Availability, id SubmitterIdentity) bool {
	for _, a := range existing {
		if emailsMatch(a.UserEmail, id.Email) || a.UserIP == id.IP || a.UserName == id.Name {
			return true
		}
	}
	return false
}

func emailsMatch(a, b *string) bool {
	if a == nil || b == nil || *a == "" || *b == "" {
		return false
	}
	return strings.EqualFold(*a, *b)
}

// AvailabilityRepository defines storage operations for availability rows.
// Methods run against the connection or transaction the repository was
// constructed with.
type AvailabilityRepository interface {
	Create(ctx context.Context, availability *Availability) error
	ListByEventID(ctx context.Context, eventID int64) ([]*Availability, error)
	ListByEventPublicID(ctx context.Context, publicID string) ([]*Availability, error)
}
