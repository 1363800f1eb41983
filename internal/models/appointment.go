package models

import "time"

// AppointmentStatus enumerates the appointment lifecycle.
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentNoShow    AppointmentStatus = "no_show"
)

// CountsTowardConflicts reports whether a booking in this status occupies time.
func (s AppointmentStatus) CountsTowardConflicts() bool {
	return s != AppointmentCancelled
}

// RecurrenceType enumerates supported recurring-appointment cadences.
type RecurrenceType string

const (
	RecurrenceWeekly   RecurrenceType = "weekly"
	RecurrenceBiweekly RecurrenceType = "biweekly"
	// RecurrenceMonthly uses a fixed 30-day step rather than calendar-month
	// arithmetic; documented behaviour of the booking flow.
	RecurrenceMonthly RecurrenceType = "monthly"
)

// Valid reports whether the recurrence type is one of the supported cadences.
func (r RecurrenceType) Valid() bool {
	switch r {
	case RecurrenceWeekly, RecurrenceBiweekly, RecurrenceMonthly:
		return true
	}
	return false
}

// Interval returns the distance between successive occurrences.
func (r RecurrenceType) Interval() time.Duration {
	switch r {
	case RecurrenceWeekly:
		return 7 * 24 * time.Hour
	case RecurrenceBiweekly:
		return 14 * 24 * time.Hour
	case RecurrenceMonthly:
		return 30 * 24 * time.Hour
	}
	return 0
}

// Appointment is a committed (or draft) booking against a staff resource.
// DurationMinutes is snapshotted at booking time so later catalog edits do
// not retroactively alter past bookings; EndAt is derived from it.
type Appointment struct {
	ID                string            `db:"id" json:"id"`
	ResourceID        string            `db:"resource_id" json:"resource_id"`
	AppointmentTypeID *string           `db:"appointment_type_id" json:"appointment_type_id,omitempty"`
	ServiceID         *string           `db:"service_id" json:"service_id,omitempty"`
	CustomerName      string            `db:"customer_name" json:"customer_name"`
	CustomerEmail     string            `db:"customer_email" json:"customer_email"`
	StartAt           time.Time         `db:"start_at" json:"start_at"`
	EndAt             time.Time         `db:"end_at" json:"end_at"`
	DurationMinutes   int               `db:"duration_minutes" json:"duration_minutes"`
	Status            AppointmentStatus `db:"status" json:"status"`
	Notes             string            `db:"notes" json:"notes"`
	IsRecurring       bool              `db:"is_recurring" json:"is_recurring"`
	RecurringParentID *string           `db:"recurring_parent_id" json:"recurring_parent_id,omitempty"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updated_at"`
}

// ResourceBookingStatus enumerates resource reservation states.
type ResourceBookingStatus string

const (
	ResourceBookingConfirmed ResourceBookingStatus = "confirmed"
	ResourceBookingCancelled ResourceBookingStatus = "cancelled"
)

// ResourceBooking reserves a shared resource instance for an appointment.
type ResourceBooking struct {
	ID            string                `db:"id" json:"id"`
	AppointmentID string                `db:"appointment_id" json:"appointment_id"`
	ResourceID    string                `db:"resource_id" json:"resource_id"`
	StartAt       time.Time             `db:"start_at" json:"start_at"`
	EndAt         time.Time             `db:"end_at" json:"end_at"`
	Status        ResourceBookingStatus `db:"status" json:"status"`
	CreatedAt     time.Time             `db:"created_at" json:"created_at"`
}

// BookingConflictError is returned when a booking collides with committed time.
type BookingConflictError struct {
	ResourceID string `json:"resource_id"`
	Reason     string `json:"reason"`
}

// Error implements the error interface for conflict errors.
func (e *BookingConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Reason
}
