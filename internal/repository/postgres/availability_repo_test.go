package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"whenworks/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var availabilityCols = []string{"id", "event_id", "from_date", "to_date", "user_email", "user_ip", "user_name", "created_at"}

func TestAvailabilityRepository_Create(t *testing.T) {
	ctx := context.Background()
	from := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 2, 11, 0, 0, 0, time.UTC)
	email := "a@x.com"

	tests := []struct {
		name         string
		availability *domain.Availability
		mock         func(mock sqlmock.Sqlmock)
		wantID       int64
		wantErr      bool
	}{
		{
			name: "success with email",
			availability: &domain.Availability{
				EventID:   7,
				FromDate:  from,
				ToDate:    to,
				UserEmail: &email,
				UserIP:    "1.2.3.4",
				UserName:  "Alice",
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO availabilities \(event_id, from_date, to_date, user_email, user_ip, user_name\)`).
					WithArgs(int64(7), from, to, &email, "1.2.3.4", "Alice").
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(21)))
			},
			wantID: 21,
		},
		{
			name: "success without email",
			availability: &domain.Availability{
				EventID:  7,
				FromDate: from,
				ToDate:   to,
				UserIP:   "1.2.3.4",
				UserName: "Alice",
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO availabilities`).
					WithArgs(int64(7), from, to, nil, "1.2.3.4", "Alice").
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(22)))
			},
			wantID: 22,
		},
		{
			name: "db error",
			availability: &domain.Availability{
				EventID:  7,
				FromDate: from,
				ToDate:   to,
				UserIP:   "1.2.3.4",
				UserName: "Alice",
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO availabilities`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewAvailabilityRepository(db)
			err = repo.Create(ctx, tt.availability)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, tt.availability.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAvailabilityRepository_ListByEventID(t *testing.T) {
	ctx := context.Background()
	from := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 2, 11, 0, 0, 0, time.UTC)
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, event_id, from_date, to_date, user_email, user_ip, user_name, created_at\s+FROM availabilities\s+WHERE event_id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(availabilityCols).
			AddRow(int64(1), int64(7), from, to, "a@x.com", "1.2.3.4", "Alice", created).
			AddRow(int64(2), int64(7), from, to, nil, "5.6.7.8", "Bob", created))

	repo := NewAvailabilityRepository(db)
	got, err := repo.ListByEventID(ctx, 7)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].UserEmail)
	assert.Equal(t, "a@x.com", *got[0].UserEmail)
	assert.Nil(t, got[1].UserEmail)
	assert.Equal(t, "Bob", got[1].UserName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepository_ListByEventID_Empty(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, event_id, from_date, to_date, user_email, user_ip, user_name, created_at`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(availabilityCols))

	repo := NewAvailabilityRepository(db)
	got, err := repo.ListByEventID(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepository_ListByEventPublicID(t *testing.T) {
	ctx := context.Background()
	from := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 2, 11, 0, 0, 0, time.UTC)
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM availabilities a\s+JOIN events e ON e.id = a.event_id\s+WHERE e.public_id = \$1`).
		WithArgs("Ab3dEf9hIj2k").
		WillReturnRows(sqlmock.NewRows(availabilityCols).
			AddRow(int64(1), int64(7), from, to, nil, "1.2.3.4", "Alice", created))

	repo := NewAvailabilityRepository(db)
	got, err := repo.ListByEventPublicID(ctx, "Ab3dEf9hIj2k")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(7), got[0].EventID)
	require.NoError(t, mock.ExpectationsWereMet())
}
