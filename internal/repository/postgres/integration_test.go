package postgres

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"whenworks/internal/domain"

	"github.com/brianvoe/gofakeit/v7"
	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	host     = "localhost"
	user     = "user"
	password = "password"
	dbname   = "test_db"
	port     = "5436"
	dsn      = "host=%s port=%s user=%s password=%s dbname=%s sslmode=disable"
)

var resource *dockertest.Resource
var pool *dockertest.Pool
var testDB *sql.DB

func cleanup() {
	if resource != nil {
		if err := pool.Purge(resource); err != nil {
			log.Printf("Could not purge resource: %s", err)
		}
	}
	if testDB != nil {
		if err := testDB.Close(); err != nil {
			log.Printf("Could not close testDB: %s", err)
		}
	}
}

// TestMain spins up a throwaway Postgres container for the integration tests.
// With -short the container is skipped and only the sqlmock tests run.
func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	var code int
	defer func() {
		cleanup()
		os.Exit(code)
	}()

	var err error
	pool, err = dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not connect to docker: %s", err)
	}

	opts := dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15",
		Env: []string{
			"POSTGRES_USER=" + user,
			"POSTGRES_PASSWORD=" + password,
			"POSTGRES_DB=" + dbname,
		},
		ExposedPorts: []string{"5432"},
		PortBindings: map[docker.Port][]docker.PortBinding{
			"5432": {
				{HostIP: "", HostPort: port},
			},
		},
	}

	if resource, err = pool.RunWithOptions(&opts, func(conf *docker.HostConfig) {
		conf.AutoRemove = true
	}); err != nil {
		log.Fatalf("Could not start resource: %s", err)
	}

	if err := pool.Retry(func() error {
		var err error
		testDB, err = sql.Open("postgres", fmt.Sprintf(dsn, host, port, user, password, dbname))
		if err != nil {
			return err
		}
		return testDB.Ping()
	}); err != nil {
		log.Fatalf("Could not connect to docker: %s", err)
	}

	if err = RunMigrations(testDB); err != nil {
		log.Fatal(err.Error())
	}

	code = m.Run()
}

func requireTestDB(t *testing.T) {
	t.Helper()
	if testDB == nil {
		t.Skip("integration database not available")
	}
}

func fakeEvent() *domain.Event {
	from := gofakeit.DateRange(time.Now(), time.Now().AddDate(0, 1, 0)).UTC().Truncate(time.Second)
	return &domain.Event{
		PublicID:  gofakeit.LetterN(12),
		Name:      gofakeit.Sentence(3),
		EventType: domain.EventTypeSpecificDate,
		FromDate:  &from,
		Duration:  60,
	}
}

func TestIntegration_EventRoundTrip(t *testing.T) {
	requireTestDB(t)
	ctx := context.Background()
	repo := NewEventRepository(testDB)

	event := fakeEvent()
	require.NoError(t, repo.Create(ctx, event))
	require.NotZero(t, event.ID)

	got, err := repo.GetByPublicID(ctx, event.PublicID)
	require.NoError(t, err)
	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, event.Name, got.Name)
	assert.Equal(t, domain.EventTypeSpecificDate, got.EventType)
	require.NotNil(t, got.FromDate)
	assert.True(t, event.FromDate.Equal(*got.FromDate))
	assert.False(t, got.CreatedAt.IsZero())

	_, err = repo.GetByPublicID(ctx, "does-not-exist")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIntegration_PublicIDUniqueConstraint(t *testing.T) {
	requireTestDB(t)
	ctx := context.Background()
	repo := NewEventRepository(testDB)

	event := fakeEvent()
	require.NoError(t, repo.Create(ctx, event))

	dup := fakeEvent()
	dup.PublicID = event.PublicID
	err := repo.Create(ctx, dup)
	assert.ErrorIs(t, err, domain.ErrPublicIDCollision)
}

func TestIntegration_SubmitFlow(t *testing.T) {
	requireTestDB(t)
	ctx := context.Background()
	txm := NewTxManager(testDB)
	events := NewEventRepository(testDB)

	event := fakeEvent()
	require.NoError(t, events.Create(ctx, event))

	email := gofakeit.Email()
	name := gofakeit.Name()
	ip := gofakeit.IPv4Address()
	from := time.Now().UTC().Truncate(time.Second)
	to := from.Add(2 * time.Hour)

	submit := func(identity domain.SubmitterIdentity, windows int) error {
		return txm.WithinTx(ctx, func(tx domain.Tx) error {
			locked, err := tx.Events().GetByPublicIDForUpdate(ctx, event.PublicID)
			if err != nil {
				return err
			}
			existing, err := tx.Availabilities().ListByEventID(ctx, locked.ID)
			if err != nil {
				return err
			}
			if domain.HasSubmissionConflict(existing, identity) {
				return domain.ErrDuplicateSubmission
			}
			for i := 0; i < windows; i++ {
				a := &domain.Availability{
					EventID:   locked.ID,
					UserEmail: identity.Email,
					UserIP:    identity.IP,
					UserName:  identity.Name,
					FromDate:  from.Add(time.Duration(i) * 24 * time.Hour),
					ToDate:    to.Add(time.Duration(i) * 24 * time.Hour),
				}
				if err := tx.Availabilities().Create(ctx, a); err != nil {
					return err
				}
			}
			return nil
		})
	}

	require.NoError(t, submit(domain.SubmitterIdentity{Email: &email, IP: ip, Name: name}, 2))

	rows, err := NewAvailabilityRepository(testDB).ListByEventPublicID(ctx, event.PublicID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, name, rows[0].UserName)

	// Same IP with a different name and email is still blocked, and the
	// rejected batch must leave no rows behind.
	otherEmail := gofakeit.Email()
	err = submit(domain.SubmitterIdentity{Email: &otherEmail, IP: ip, Name: gofakeit.Name()}, 3)
	assert.ErrorIs(t, err, domain.ErrDuplicateSubmission)

	rows, err = NewAvailabilityRepository(testDB).ListByEventPublicID(ctx, event.PublicID)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	// A fully fresh identity goes through.
	freshEmail := gofakeit.Email()
	require.NoError(t, submit(domain.SubmitterIdentity{Email: &freshEmail, IP: gofakeit.IPv4Address(), Name: gofakeit.Name()}, 1))

	rows, err = NewAvailabilityRepository(testDB).ListByEventPublicID(ctx, event.PublicID)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestIntegration_RollbackLeavesNoRows(t *testing.T) {
	requireTestDB(t)
	ctx := context.Background()
	txm := NewTxManager(testDB)
	events := NewEventRepository(testDB)

	event := fakeEvent()
	require.NoError(t, events.Create(ctx, event))

	boom := errors.New("boom")
	err := txm.WithinTx(ctx, func(tx domain.Tx) error {
		a := &domain.Availability{
			EventID:  event.ID,
			UserIP:   gofakeit.IPv4Address(),
			UserName: gofakeit.Name(),
			FromDate: time.Now().UTC(),
			ToDate:   time.Now().UTC().Add(time.Hour),
		}
		if err := tx.Availabilities().Create(ctx, a); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	rows, err := NewAvailabilityRepository(testDB).ListByEventID(ctx, event.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
