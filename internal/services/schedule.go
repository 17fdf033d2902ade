package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"whenworks/internal/domain"
)

type scheduleService struct {
	txm            domain.TxManager
	publicIDLength int
	contextTimeout time.Duration
}

// NewScheduleService creates a ScheduleService. publicIDLength is the length
// of generated event public IDs; timeout bounds each unit of work.
func NewScheduleService(txm domain.TxManager, publicIDLength int, timeout time.Duration) domain.ScheduleService {
	return &scheduleService{
		txm:            txm,
		publicIDLength: publicIDLength,
		contextTimeout: timeout,
	}
}

var publicIDAlphabet = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789")

// generatePublicID returns a uniformly random alphanumeric string of the
// given length. Collision resistance relies on alphabet size and length;
// there is no uniqueness retry.
func generatePublicID(length int) (string, error) {
	b := make([]rune, length)
	max := big.NewInt(int64(len(publicIDAlphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = publicIDAlphabet[n.Int64()]
	}
	return string(b), nil
}

func (s *scheduleService) CreateEvent(ctx context.Context, in domain.CreateEventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var created *domain.Event
	err := s.txm.WithinTx(ctx, func(tx domain.Tx) error {
		publicID, err := generatePublicID(s.publicIDLength)
		if err != nil {
			return fmt.Errorf("generate public id: %w", err)
		}

		if strings.TrimSpace(in.Name) == "" {
			return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
		}
		eventType := domain.ParseEventType(in.EventType)
		if err := domain.ValidateEventSchedule(eventType, in.FromDate, in.ToDate); err != nil {
			return err
		}

		event := &domain.Event{
			PublicID:    publicID,
			Name:        in.Name,
			Description: in.Description,
			FromDate:    toUTC(in.FromDate),
			ToDate:      toUTC(in.ToDate),
			EventType:   eventType,
			Duration:    in.Duration,
		}
		if err := tx.Events().Create(ctx, event); err != nil {
			return fmt.Errorf("create event: %w", err)
		}

		// Re-read by internal id so the caller gets the stored canonical
		// representation (normalized timestamps, created_at).
		created, err = tx.Events().GetByID(ctx, event.ID)
		if err != nil {
			return fmt.Errorf("reload event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *scheduleService) GetEvent(ctx context.Context, publicID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var event *domain.Event
	err := s.txm.WithinTx(ctx, func(tx domain.Tx) error {
		var err error
		event, err = tx.Events().GetByPublicID(ctx, publicID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (s *scheduleService) SubmitAvailabilities(ctx context.Context, publicID string, sub domain.AvailabilitySubmission) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if strings.TrimSpace(sub.UserName) == "" {
		return fmt.Errorf("%w: user_name is required", domain.ErrInvalidInput)
	}
	if len(sub.Windows) == 0 {
		return fmt.Errorf("%w: at least one availability window is required", domain.ErrInvalidInput)
	}

	return s.txm.WithinTx(ctx, func(tx domain.Tx) error {
		// Lock the event row so concurrent submissions for the same event
		// serialize; otherwise two identical identities could both pass the
		// duplicate check before either writes.
		event, err := tx.Events().GetByPublicIDForUpdate(ctx, publicID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get event: %w", err)
		}

		existing, err := tx.Availabilities().ListByEventID(ctx, event.ID)
		if err != nil {
			return fmt.Errorf("list availabilities: %w", err)
		}

		identity := domain.SubmitterIdentity{Email: sub.UserEmail, IP: sub.UserIP, Name: sub.UserName}
		if domain.HasSubmissionConflict(existing, identity) {
			return domain.ErrDuplicateSubmission
		}

		for _, w := range sub.Windows {
			a := &domain.Availability{
				EventID:   event.ID,
				FromDate:  w.FromDate.UTC(),
				ToDate:    w.ToDate.UTC(),
				UserEmail: sub.UserEmail,
				UserIP:    sub.UserIP,
				UserName:  sub.UserName,
			}
			if err := tx.Availabilities().Create(ctx, a); err != nil {
				return fmt.Errorf("create availability: %w", err)
			}
		}
		return nil
	})
}

func (s *scheduleService) ListAvailabilities(ctx context.Context, publicID string) ([]*domain.Availability, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var out []*domain.Availability
	err := s.txm.WithinTx(ctx, func(tx domain.Tx) error {
		if _, err := tx.Events().GetByPublicID(ctx, publicID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get event: %w", err)
		}
		var err error
		out, err = tx.Availabilities().ListByEventPublicID(ctx, publicID)
		if err != nil {
			return fmt.Errorf("list availabilities: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*domain.Availability{}
	}
	return out, nil
}

func toUTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
