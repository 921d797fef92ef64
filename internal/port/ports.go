// Package port defines the interfaces (ports) for the persistence layer.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from the concrete MongoDB adapter.
package port

import (
	"context"
	"time"

	"github.com/angtech/catalog-api/internal/domain"
)

// ProductStore defines the data operations for the catalog.
type ProductStore interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, id string, update domain.ProductUpdate) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	DistinctBrands(ctx context.Context) ([]string, error)
	DistinctTypes(ctx context.Context) ([]string, error)
}

// CustomerStore defines the data operations for customer records.
// GetByEmail returns (nil, nil) when no customer carries the email.
type CustomerStore interface {
	List(ctx context.Context, filter domain.CustomerFilter) ([]domain.Customer, error)
	Get(ctx context.Context, id string) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	Create(ctx context.Context, c *domain.Customer) (*domain.Customer, error)
	Update(ctx context.Context, id string, update domain.CustomerUpdate) (*domain.Customer, error)
	AppendEnquiry(ctx context.Context, customerID, enquiryID string) error
	AddNote(ctx context.Context, id string, note domain.Note) (*domain.Customer, error)
	AddTag(ctx context.Context, id, tag string) (*domain.Customer, error)
	RemoveTag(ctx context.Context, id, tag string) (*domain.Customer, error)
	SetTags(ctx context.Context, id string, tags []string) (*domain.Customer, error)
	SetFollowUpDate(ctx context.Context, id string, date *time.Time) (*domain.Customer, error)
	SetLastContact(ctx context.Context, id string, at time.Time) (*domain.Customer, error)
}

// EnquiryStore defines the data operations for enquiries.
type EnquiryStore interface {
	List(ctx context.Context, filter domain.EnquiryFilter) ([]domain.Enquiry, error)
	Get(ctx context.Context, id string) (*domain.Enquiry, error)
	Create(ctx context.Context, e *domain.Enquiry) (*domain.Enquiry, error)
	SetStatus(ctx context.Context, id string, status domain.EnquiryStatus) (*domain.Enquiry, error)
	AddNote(ctx context.Context, id string, note domain.Note) (*domain.Enquiry, error)
	SetFollowUpDate(ctx context.Context, id string, date *time.Time) (*domain.Enquiry, error)
}

// UserStore defines the data operations for back-office accounts.
// GetByEmail returns (nil, nil) when no user carries the email.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
}
