package models

import "time"

// ResourceType classifies a schedulable entity: a staff member or a shared
// physical asset such as a room or a piece of equipment.
type ResourceType string

const (
	ResourceTypeStaff     ResourceType = "staff"
	ResourceTypeRoom      ResourceType = "room"
	ResourceTypeEquipment ResourceType = "equipment"
	ResourceTypeVehicle   ResourceType = "vehicle"
)

// Resource is anything that can carry bookings: estimators, rooms, equipment.
// Timezone is the IANA zone the resource's wall-clock availability is
// expressed in; day boundaries are computed in that zone.
type Resource struct {
	ID         string       `db:"id" json:"id"`
	Name       string       `db:"name" json:"name"`
	Type       ResourceType `db:"type" json:"type"`
	LocationID *string      `db:"location_id" json:"location_id,omitempty"`
	Timezone   string       `db:"timezone" json:"timezone"`
	Active     bool         `db:"active" json:"active"`
	SortOrder  int          `db:"sort_order" json:"sort_order"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updated_at"`
}

// Location returns the resource's time.Location, falling back to UTC when
// the zone name is missing or unknown.
func (r *Resource) Location() *time.Location {
	if r == nil || r.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
