package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Incident represents a safety incident reported by an operator.
type Incident struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BusinessID  string             `bson:"business_id" json:"business_id"`
	VehicleID   string             `bson:"vehicle_id" json:"vehicle_id"`
	SessionID   string             `bson:"session_id,omitempty" json:"session_id,omitempty"`
	ReportedBy  string             `bson:"reported_by" json:"reported_by"`
	Severity    string             `bson:"severity" json:"severity"` // "low", "medium", "high", "critical"
	Description string             `bson:"description" json:"description"`
	Location    *Location          `bson:"location,omitempty" json:"location,omitempty"`
	OccurredAt  time.Time          `bson:"occurred_at" json:"occurred_at"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
