package models

import "time"

// WaitlistStatus enumerates waitlist entry states. The lifecycle is
// waiting -> offered -> booked | expired, with booked and expired terminal.
type WaitlistStatus string

const (
	WaitlistWaiting WaitlistStatus = "waiting"
	WaitlistOffered WaitlistStatus = "offered"
	WaitlistBooked  WaitlistStatus = "booked"
	WaitlistExpired WaitlistStatus = "expired"
)

// WaitlistEntry tracks a customer waiting for an appointment type to open up.
// Selection order for the next offer is priority descending, then created_at
// ascending.
type WaitlistEntry struct {
	ID                  string         `db:"id" json:"id"`
	AppointmentTypeID   string         `db:"appointment_type_id" json:"appointment_type_id"`
	CustomerName        string         `db:"customer_name" json:"customer_name"`
	CustomerEmail       string         `db:"customer_email" json:"customer_email"`
	Status              WaitlistStatus `db:"status" json:"status"`
	Priority            int            `db:"priority" json:"priority"`
	OfferedStart        *time.Time     `db:"offered_start" json:"offered_start,omitempty"`
	OfferExpiresAt      *time.Time     `db:"offer_expires_at" json:"offer_expires_at,omitempty"`
	BookedAppointmentID *string        `db:"booked_appointment_id" json:"booked_appointment_id,omitempty"`
	CreatedAt           time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at" json:"updated_at"`
}
