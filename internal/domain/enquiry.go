package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EnquiryStatus is the lifecycle state of an enquiry.
type EnquiryStatus string

const (
	StatusPending    EnquiryStatus = "pending"
	StatusInProgress EnquiryStatus = "in_progress"
	StatusCompleted  EnquiryStatus = "completed"
	StatusCancelled  EnquiryStatus = "cancelled"
)

// EnquiryStatuses lists every valid status value.
var EnquiryStatuses = []EnquiryStatus{
	StatusPending,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
}

// ValidEnquiryStatus reports whether s is a member of the status enum.
func ValidEnquiryStatus(s string) bool {
	for _, es := range EnquiryStatuses {
		if string(es) == s {
			return true
		}
	}
	return false
}

// Enquiry is a customer's expressed interest in a product. Created by the
// intake service with status pending; never deleted in normal operation.
type Enquiry struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID    primitive.ObjectID `bson:"productId" json:"productId"`
	CustomerID   primitive.ObjectID `bson:"customerId" json:"customerId"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	Phone        string             `bson:"phone" json:"phone"`
	Message      string             `bson:"message" json:"message"`
	Status       EnquiryStatus      `bson:"status" json:"status"`
	Notes        []Note             `bson:"notes" json:"notes"`
	FollowUpDate *time.Time         `bson:"followUpDate,omitempty" json:"followUpDate,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// EnquiryFilter holds the admin listing filters. Search matches
// name/email/phone case-insensitively.
type EnquiryFilter struct {
	Status string
	Search string
}

// EnquiryRequest is the public intake payload for POST /api/enquiries.
type EnquiryRequest struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Message   string `json:"message"`
}
