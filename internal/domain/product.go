package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductType is the equipment category of a catalog product.
type ProductType string

const (
	ProductTypeUPS        ProductType = "UPS"
	ProductTypeInverter   ProductType = "Inverter"
	ProductTypeStabilizer ProductType = "Stabilizer"
	ProductTypeBattery    ProductType = "Battery"
	ProductTypeOther      ProductType = "Other"
)

// ProductTypes lists every valid product type, in display order.
var ProductTypes = []ProductType{
	ProductTypeUPS,
	ProductTypeInverter,
	ProductTypeStabilizer,
	ProductTypeBattery,
	ProductTypeOther,
}

// ValidProductType reports whether t is a member of the product type enum.
func ValidProductType(t string) bool {
	for _, pt := range ProductTypes {
		if string(pt) == t {
			return true
		}
	}
	return false
}

// Product is a catalog item offered for enquiry.
type Product struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Type           ProductType        `bson:"type" json:"type"`
	Brand          string             `bson:"brand" json:"brand"`
	KVARating      float64            `bson:"kvaRating" json:"kvaRating"`
	Specifications map[string]string  `bson:"specifications,omitempty" json:"specifications,omitempty"`
	ImageURL       string             `bson:"imageURL" json:"imageURL"`
	Description    string             `bson:"description" json:"description"`
	Price          float64            `bson:"price" json:"price"`
	Stock          int                `bson:"stock" json:"stock"`
	IsActive       bool               `bson:"isActive" json:"isActive"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Product sort orders accepted by the catalog listing.
const (
	SortNameAsc   = "name_asc"
	SortNameDesc  = "name_desc"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// ProductFilter holds the optional, independently combinable catalog filters.
// Zero values mean "no constraint".
type ProductFilter struct {
	Type     string
	Brand    string
	Search   string
	MinPrice *float64
	MaxPrice *float64
	IsActive *bool
	Sort     string
}

// ProductUpdate carries partial updates for an admin product edit.
// Nil fields are left untouched.
type ProductUpdate struct {
	Name           *string            `json:"name,omitempty"`
	Type           *string            `json:"type,omitempty"`
	Brand          *string            `json:"brand,omitempty"`
	KVARating      *float64           `json:"kvaRating,omitempty"`
	Specifications *map[string]string `json:"specifications,omitempty"`
	ImageURL       *string            `json:"imageURL,omitempty"`
	Description    *string            `json:"description,omitempty"`
	Price          *float64           `json:"price,omitempty"`
	Stock          *int               `json:"stock,omitempty"`
	IsActive       *bool              `json:"isActive,omitempty"`
}

// CatalogFilters is the distinct brand/type value lists used by the
// storefront to build its filter UI.
type CatalogFilters struct {
	Brands []string `json:"brands"`
	Types  []string `json:"types"`
}
