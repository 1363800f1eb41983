package models

import "time"

// Setting is a flat key/value business configuration entry. The scheduling
// engine only reads these; mutation happens through the admin surface.
type Setting struct {
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Well-known setting keys consumed by the scheduling engine.
const (
	SettingBufferMinutes      = "buffer_time_minutes"
	SettingSlotStepMinutes    = "slot_step_minutes"
	SettingWaitlistOfferTTL   = "waitlist_offer_ttl_minutes"
	SettingDefaultDurationMin = "default_appointment_duration_minutes"
)
