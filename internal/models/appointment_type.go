package models

import "time"

// AppointmentType is the advanced booking model's catalog entry: it governs
// slot width, asymmetric spacing, and any shared resource the appointment
// needs alongside the staff member.
type AppointmentType struct {
	ID                   string        `db:"id" json:"id"`
	Name                 string        `db:"name" json:"name"`
	DurationMinutes      int           `db:"duration_minutes" json:"duration_minutes"`
	BufferBeforeMinutes  int           `db:"buffer_before_minutes" json:"buffer_before_minutes"`
	BufferAfterMinutes   int           `db:"buffer_after_minutes" json:"buffer_after_minutes"`
	RequiredResourceType *ResourceType `db:"required_resource_type" json:"required_resource_type,omitempty"`
	LocationID           *string       `db:"location_id" json:"location_id,omitempty"`
	Active               bool          `db:"active" json:"active"`
	CreatedAt            time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time     `db:"updated_at" json:"updated_at"`
}

/// ServiceOffering is the simple booking model's catalog entry: it only
// contributes a duration.
type ServiceOffering struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
