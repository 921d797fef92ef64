package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CustomerTags is the closed set of segmentation labels.
var CustomerTags = []string{
	"Potential Lead",
	"High Priority",
	"Regular Customer",
	"VIP",
}

// ValidCustomerTag reports whether tag belongs to the tag enum.
func ValidCustomerTag(tag string) bool {
	for _, t := range CustomerTags {
		if t == tag {
			return true
		}
	}
	return false
}

// Note is a timestamped free-text annotation attributed to an admin user.
type Note struct {
	Content   string             `bson:"content" json:"content"`
	CreatedBy primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Customer is a contact record, created implicitly on first enquiry with a
// given email or explicitly by an admin. Email is unique, stored lower-case.
//
// Enquiries is a denormalized back-reference list maintained by the intake
// service; it is not derived by query, so it can drift if the append write
// fails after the enquiry insert.
type Customer struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name         string               `bson:"name" json:"name"`
	Email        string               `bson:"email" json:"email"`
	Phone        string               `bson:"phone" json:"phone"`
	Company      string               `bson:"company,omitempty" json:"company,omitempty"`
	Enquiries    []primitive.ObjectID `bson:"enquiries" json:"enquiries"`
	Tags         []string             `bson:"tags" json:"tags"`
	Notes        []Note               `bson:"notes" json:"notes"`
	FollowUpDate *time.Time           `bson:"followUpDate,omitempty" json:"followUpDate,omitempty"`
	LastContact  *time.Time           `bson:"lastContact,omitempty" json:"lastContact,omitempty"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// HasTag reports whether the customer already carries tag.
func (c *Customer) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// CustomerFilter holds the admin listing filters. Search matches
// name/email/phone/company case-insensitively; Tags is an any-of match.
type CustomerFilter struct {
	Search string
	Tags   []string
}

// CustomerUpdate carries partial updates for an admin customer edit.
type CustomerUpdate struct {
	Name         *string    `json:"name,omitempty"`
	Email        *string    `json:"email,omitempty"`
	Phone        *string    `json:"phone,omitempty"`
	Company      *string    `json:"company,omitempty"`
	Tags         *[]string  `json:"tags,omitempty"`
	FollowUpDate *time.Time `json:"followUpDate,omitempty"`
}
