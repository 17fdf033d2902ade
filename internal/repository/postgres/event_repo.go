package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"whenworks/internal/domain"
)

type eventRepository struct {
	DB DBTX
}

func NewEventRepository(db DBTX) domain.EventRepository {
	return &eventRepository{DB: db}
}

const eventColumns = "id, public_id, name, description, from_date, to_date, event_type, duration, created_at"

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (public_id, name, description, from_date, to_date, event_type, duration)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.PublicID, e.Name, e.Description, e.FromDate, e.ToDate, string(e.EventType), e.Duration,
	).Scan(&e.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrPublicIDCollision
		}
		return err
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1
	`
	return r.scanEvent(r.DB.QueryRowContext(ctx, query, id))
}

func (r *eventRepository) GetByPublicID(ctx context.Context, publicID string) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE public_id = $1
	`
	return r.scanEvent(r.DB.QueryRowContext(ctx, query, publicID))
}

func (r *eventRepository) GetByPublicIDForUpdate(ctx context.Context, publicID string) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE public_id = $1
		FOR UPDATE
	`
	return r.scanEvent(r.DB.QueryRowContext(ctx, query, publicID))
}

func (r *eventRepository) scanEvent(row *sql.Row) (*domain.Event, error) {
	e := &domain.Event{}
	var descNull sql.NullString
	var fromNull, toNull sql.NullTime
	var eventType string
	err := row.Scan(
		&e.ID, &e.PublicID, &e.Name, &descNull, &fromNull, &toNull,
		&eventType, &e.Duration, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if descNull.Valid {
		e.Description = &descNull.String
	}
	if fromNull.Valid {
		from := fromNull.Time.UTC()
		e.FromDate = &from
	}
	if toNull.Valid {
		to := toNull.Time.UTC()
		e.ToDate = &to
	}
	e.EventType = domain.ParseEventType(eventType)
	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}
