package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versoindustries/verso-backend-sub001/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestAppointmentRepositoryBookedRanges(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	dayStart := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	apptRows := sqlmock.NewRows([]string{"start", "end"}).
		AddRow(dayStart.Add(10*time.Hour), dayStart.Add(11*time.Hour))
	mock.ExpectQuery(`SELECT start_at AS "start", end_at AS "end" FROM appointments`).
		WithArgs("res-1", dayStart, dayEnd).
		WillReturnRows(apptRows)

	bookingRows := sqlmock.NewRows([]string{"start", "end"}).
		AddRow(dayStart.Add(14*time.Hour), dayStart.Add(15*time.Hour))
	mock.ExpectQuery(`SELECT start_at AS "start", end_at AS "end" FROM resource_bookings`).
		WithArgs("res-1", dayStart, dayEnd).
		WillReturnRows(bookingRows)

	ranges, err := repo.BookedRanges(context.Background(), "res-1", dayStart, dayEnd)
	require.NoError(t, err)
	require.Len(t, ranges, 2)
	assert.Equal(t, dayStart.Add(10*time.Hour), ranges[0].Start)
	assert.Equal(t, dayStart.Add(15*time.Hour), ranges[1].End)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryCountOverlapping(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	start := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	mock.ExpectQuery(`SELECT \(SELECT COUNT\(\*\) FROM appointments`).
		WithArgs("res-1", start, end, 30, 30, "").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(1))

	total, err := repo.CountOverlapping(context.Background(), db, "res-1", start, end, 30, 30, "")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryCreateWithTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO appointments").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := repo.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	appt := &models.Appointment{
		ResourceID:      "res-1",
		CustomerName:    "Ada",
		CustomerEmail:   "ada@example.com",
		StartAt:         time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC),
		EndAt:           time.Date(2024, 3, 4, 11, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		Status:          models.AppointmentConfirmed,
	}
	require.NoError(t, repo.CreateWithTx(context.Background(), tx, appt))
	assert.NotEmpty(t, appt.ID)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryUpdateStatusNoRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	mock.ExpectExec("UPDATE appointments SET status").
		WithArgs("missing", models.AppointmentCancelled, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", models.AppointmentCancelled)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryCancelResourceBookings(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	mock.ExpectExec("UPDATE resource_bookings SET status = 'cancelled'").
		WithArgs("appt-1").
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.CancelResourceBookings(context.Background(), "appt-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
