package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Telemetry is a point-in-time position and status report from a vehicle's
// edge unit, used as the best-effort source of session start/end locations.
type Telemetry struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BusinessID   string             `bson:"business_id" json:"business_id"`
	VehicleID    string             `bson:"vehicle_id" json:"vehicle_id"`
	Timestamp    time.Time          `bson:"timestamp" json:"timestamp"`
	Location     Location           `bson:"location" json:"location"`
	Speed        float64            `bson:"speed" json:"speed"`
	BatteryLevel *float64           `bson:"battery_level,omitempty" json:"battery_level,omitempty"`
	Hours        float64            `bson:"hours" json:"hours"`
}
