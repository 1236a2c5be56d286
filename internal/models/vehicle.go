package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VehicleStatus is the operational status of a vehicle.
type VehicleStatus string

const (
	VehicleAvailable    VehicleStatus = "AVAILABLE"
	VehicleInUse        VehicleStatus = "IN_USE"
	VehicleOutOfService VehicleStatus = "OUT_OF_SERVICE"
	VehicleBlocked      VehicleStatus = "BLOCKED"
	VehicleUnknown      VehicleStatus = "UNKNOWN"
)

var vehicleStatusWire = map[VehicleStatus]string{
	VehicleAvailable:    "AVAILABLE",
	VehicleInUse:        "IN_USE",
	VehicleOutOfService: "OUT_OF_SERVICE",
	VehicleBlocked:      "BLOCKED",
	VehicleUnknown:      "UNKNOWN",
}

// IsValidVehicleStatus checks if a vehicle status is a known wire value.
func IsValidVehicleStatus(s VehicleStatus) bool {
	_, ok := vehicleStatusWire[s]
	return ok
}

// ParseVehicleStatus converts a wire string into a VehicleStatus,
// mapping anything unrecognized to VehicleUnknown.
func ParseVehicleStatus(s string) VehicleStatus {
	status := VehicleStatus(s)
	if !IsValidVehicleStatus(status) {
		return VehicleUnknown
	}
	return status
}

// Usable reports whether an operator may start a session on the vehicle.
func (s VehicleStatus) Usable() bool {
	return s == VehicleAvailable
}

// Vehicle represents a forklift in a business's fleet.
type Vehicle struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BusinessID      string             `bson:"business_id" json:"business_id"`
	SerialNumber    string             `bson:"serial_number" json:"serial_number"`
	Make            string             `bson:"make" json:"make"`
	Model           string             `bson:"model" json:"model"`
	Year            int                `bson:"year" json:"year"`
	Status          VehicleStatus      `bson:"status" json:"status"`
	CurrentLocation Location           `bson:"current_location" json:"current_location"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}
