package postgres

import (
	"context"
	"database/sql"

	"whenworks/internal/domain"
)

type availabilityRepository struct {
	DB DBTX
}

func NewAvailabilityRepository(db DBTX) domain.AvailabilityRepository {
	return &availabilityRepository{DB: db}
}

func (r *availabilityRepository) Create(ctx context.Context, a *domain.Availability) error {
	query := `
		INSERT INTO availabilities (event_id, from_date, to_date, user_email, user_ip, user_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		a.EventID, a.FromDate, a.ToDate, a.UserEmail, a.UserIP, a.UserName,
	).Scan(&a.ID)
}

func (r *availabilityRepository) ListByEventID(ctx context.Context, eventID int64) ([]*domain.Availability, error) {
	query := `
		SELECT id, event_id, from_date, to_date, user_email, user_ip, user_name, created_at
		FROM availabilities
		WHERE event_id = $1
		ORDER BY id ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	return scanAvailabilities(rows)
}

func (r *availabilityRepository) ListByEventPublicID(ctx context.Context, publicID string) ([]*domain.Availability, error) {
	query := `
		SELECT a.id, a.event_id, a.from_date, a.to_date, a.user_email, a.user_ip, a.user_name, a.created_at
		FROM availabilities a
		JOIN events e ON e.id = a.event_id
		WHERE e.public_id = $1
		ORDER BY a.id ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, publicID)
	if err != nil {
		return nil, err
	}
	return scanAvailabilities(rows)
}

func scanAvailabilities(rows *sql.Rows) ([]*domain.Availability, error) {
	defer rows.Close()
	out := make([]*domain.Availability, 0)
	for rows.Next() {
		a := &domain.Availability{}
		var emailNull sql.NullString
		if err := rows.Scan(
			&a.ID, &a.EventID, &a.FromDate, &a.ToDate,
			&emailNull, &a.UserIP, &a.UserName, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		if emailNull.Valid {
			a.UserEmail = &emailNull.String
		}
		a.FromDate = a.FromDate.UTC()
		a.ToDate = a.ToDate.UTC()
		a.CreatedAt = a.CreatedAt.UTC()
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
