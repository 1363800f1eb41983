package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versoindustries/verso-backend-sub001/internal/models"
)

func waitlistRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "appointment_type_id", "customer_name", "customer_email", "status",
		"priority", "offered_start", "offer_expires_at", "booked_appointment_id",
		"created_at", "updated_at",
	})
}

func TestWaitlistRepositoryNextWaitingOrdering(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWaitlistRepository(db)

	rows := waitlistRows().
		AddRow("entry-2", "type-1", "Grace", "grace@example.com", "waiting", 10, nil, nil, nil, time.Now(), time.Now())
	mock.ExpectQuery(`ORDER BY priority DESC, created_at ASC LIMIT 1`).
		WithArgs("type-1").
		WillReturnRows(rows)

	entry, err := repo.NextWaiting(context.Background(), "type-1")
	require.NoError(t, err)
	assert.Equal(t, "entry-2", entry.ID)
	assert.Equal(t, 10, entry.Priority)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWaitlistRepositoryNextWaitingEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWaitlistRepository(db)

	mock.ExpectQuery(`ORDER BY priority DESC, created_at ASC LIMIT 1`).
		WithArgs("type-1").
		WillReturnRows(waitlistRows())

	_, err := repo.NextWaiting(context.Background(), "type-1")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestWaitlistRepositoryExpireOffers(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWaitlistRepository(db)

	now := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE waitlist_entries SET status = 'expired'`).
		WithArgs("type-1", now, now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	affected, err := repo.ExpireOffers(context.Background(), "type-1", now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWaitlistRepositoryMarkOfferedAlreadyTransitioned(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWaitlistRepository(db)

	mock.ExpectExec(`UPDATE waitlist_entries SET status = 'offered'`).
		WithArgs("entry-1", nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkOffered(context.Background(), "entry-1", nil, time.Now().Add(time.Hour))
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestWaitlistRepositoryFindMatchWithTxPrefersOffered(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWaitlistRepository(db)

	rows := waitlistRows().
		AddRow("entry-9", "type-1", "Grace", "grace@example.com", "offered", 0, nil, nil, nil, time.Now(), time.Now())
	mock.ExpectQuery(`status IN \('offered', 'waiting'\) ORDER BY CASE status`).
		WithArgs("grace@example.com", "type-1").
		WillReturnRows(rows)

	entry, err := repo.FindMatchWithTx(context.Background(), db, "grace@example.com", "type-1")
	require.NoError(t, err)
	assert.Equal(t, models.WaitlistOffered, entry.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWaitlistRepositoryCreateDefaultsToWaiting(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWaitlistRepository(db)

	mock.ExpectExec("INSERT INTO waitlist_entries").
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.WaitlistEntry{
		AppointmentTypeID: "type-1",
		CustomerName:      "Grace",
		CustomerEmail:     "grace@example.com",
	}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.Equal(t, models.WaitlistWaiting, entry.Status)
	assert.NotEmpty(t, entry.ID)
}
