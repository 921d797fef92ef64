package service

import (
	"context"
	"fmt"
	"time"

	"github.com/angtech/catalog-api/internal/domain"
	"github.com/angtech/catalog-api/internal/port"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var customerTracer = otel.Tracer("service/customers")

// CustomerService covers the back-office management of customer records:
// listing, edits, tags, notes and contact stamps.
type CustomerService struct {
	customers port.CustomerStore
	logger    *zap.Logger
}

// NewCustomerService creates the customer management service.
func NewCustomerService(customers port.CustomerStore, logger *zap.Logger) *CustomerService {
	return &CustomerService{customers: customers, logger: logger}
}

// List returns customers for the admin listing, most recently contacted first.
func (s *CustomerService) List(ctx context.Context, filter domain.CustomerFilter) ([]domain.Customer, error) {
	ctx, span := customerTracer.Start(ctx, "CustomerService.List")
	defer span.End()

	return s.customers.List(ctx, filter)
}

// Get returns one customer by id.
func (s *CustomerService) Get(ctx context.Context, id string) (*domain.Customer, error) {
	ctx, span := customerTracer.Start(ctx, "CustomerService.Get")
	defer span.End()

	return s.customers.Get(ctx, id)
}

// Update applies an admin edit. Tags, when present, must all belong to the
// tag enum.
func (s *CustomerService) Update(ctx context.Context, id string, update domain.CustomerUpdate) (*domain.Customer, error) {
	ctx, span := customerTracer.Start(ctx, "CustomerService.Update")
	defer span.End()

	if update.Tags != nil {
		if err := validateTags(*update.Tags); err != nil {
			return nil, err
		}
	}
	if update.Email != nil && *update.Email == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "email must not be empty"}
	}
	return s.customers.Update(ctx, id, update)
}

// AddNote appends a timestamped note attributed to the acting admin.
func (s *CustomerService) AddNote(ctx context.Context, id, content string, authorID primitive.ObjectID) (*domain.Customer, error) {
	ctx, span := customerTracer.Start(ctx, "CustomerService.AddNote")
	defer span.End()

	return s.customers.AddNote(ctx, id, domain.Note{
		Content:   content,
		CreatedBy: authorID,
		CreatedAt: time.Now().UTC(),
	})
}

// AddTag attaches a tag with set semantics: adding a tag the customer
// already carries is a no-op success, not an error.
func (s *CustomerService) AddTag(ctx context.Context, id, tag string) (*domain.Customer, error) {
	ctx, span := customerTracer.Start(ctx, "CustomerService.AddTag")
	defer span.End()

	if !domain.ValidCustomerTag(tag) {
		return nil, &domain.ErrValidation{Field: "tag", Message: fmt.Sprintf("%q is not a valid tag", tag)}
	}

	customer, err := s.customers.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer.HasTag(tag) {
		return customer, nil
	}
	return s.customers.AddTag(ctx, id, tag)
}

// RemoveTag detaches a tag; removing an absent tag is a no-op success.
func (s *CustomerService) RemoveTag(ctx context.Context, id, tag string) (*domain.Customer, error) {
	ctx, span := customerTracer.Start(ctx, "CustomerService.RemoveTag")
	defer span.End()

	if !domain.ValidCustomerTag(tag) {
		return nil, &domain.ErrValidation{Field: "tag", Message: fmt.Sprintf("%q is not a valid tag", tag)}
	}

	customer, err := s.customers.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !customer.HasTag(tag) {
		return customer, nil
	}
	return s.customers.RemoveTag(ctx, id, tag)
}

// SetTags replaces the whole tag list after validating and deduplicating it.
func (s *CustomerService) SetTags(ctx context.Context, id string, tags []string) (*domain.Customer, error) {
	ctx, span := customerTracer.Start(ctx, "CustomerService.SetTags")
	defer span.End()

	if err := validateTags(tags); err != nil {
		return nil, err
	}
	return s.customers.SetTags(ctx, id, dedupeTags(tags))
}

// SetFollowUpDate sets (or clears, when date is nil) the follow-up date.
func (s *CustomerService) SetFollowUpDate(ctx context.Context, id string, date *time.Time) (*domain.Customer, error) {
	ctx, span := customerTracer.Start(ctx, "CustomerService.SetFollowUpDate")
	defer span.End()

	return s.customers.SetFollowUpDate(ctx, id, date)
}

// TouchLastContact stamps the customer's last-contact timestamp with now.
func (s *CustomerService) TouchLastContact(ctx context.Context, id string) (*domain.Customer, error) {
	ctx, span := customerTracer.Start(ctx, "CustomerService.TouchLastContact")
	defer span.End()

	customer, err := s.customers.SetLastContact(ctx, id, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	s.logger.Debug("last contact stamped", zap.String("customer_id", id))
	return customer, nil
}

func validateTags(tags []string) error {
	for _, t := range tags {
		if !domain.ValidCustomerTag(t) {
			return &domain.ErrValidation{Field: "tags", Message: fmt.Sprintf("%q is not a valid tag", t)}
		}
	}
	return nil
}

func dedupeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
