package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CheckStatus is the outcome of a pre-shift inspection.
type CheckStatus string

const (
	CheckPending  CheckStatus = "PENDING"
	CheckApproved CheckStatus = "APPROVED"
	CheckRejected CheckStatus = "REJECTED"
)

var checkStatusWire = map[CheckStatus]string{
	CheckPending:  "PENDING",
	CheckApproved: "APPROVED",
	CheckRejected: "REJECTED",
}

// IsValidCheckStatus checks if a check status is a known wire value.
func IsValidCheckStatus(s CheckStatus) bool {
	_, ok := checkStatusWire[s]
	return ok
}

// CheckItem is one line of a pre-shift checklist.
type CheckItem struct {
	Name    string `bson:"name" json:"name"`
	Passed  bool   `bson:"passed" json:"passed"`
	Comment string `bson:"comment,omitempty" json:"comment,omitempty"`
}

// Check is a pre-shift inspection record for a vehicle. A session can only
// be started against a check whose status is APPROVED.
type Check struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BusinessID  string             `bson:"business_id" json:"business_id"`
	VehicleID   string             `bson:"vehicle_id" json:"vehicle_id"`
	UserID      string             `bson:"user_id" json:"user_id"`
	Status      CheckStatus        `bson:"status" json:"status"`
	Items       []CheckItem        `bson:"items,omitempty" json:"items,omitempty"`
	CompletedAt time.Time          `bson:"completed_at" json:"completed_at"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// Outcome derives the check status from its items: every item must pass.
func (c *Check) Outcome() CheckStatus {
	if len(c.Items) == 0 {
		return CheckPending
	}
	for _, item := range c.Items {
		if !item.Passed {
			return CheckRejected
		}
	}
	return CheckApproved
}
