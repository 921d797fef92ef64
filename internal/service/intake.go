// Package service holds the application services between the HTTP handlers
// and the persistence ports.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angtech/catalog-api/internal/domain"
	"github.com/angtech/catalog-api/internal/infra/observability"
	"github.com/angtech/catalog-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var intakeTracer = otel.Tracer("service/intake")

// Intake converts public enquiry submissions into linked Customer and
// Enquiry records.
type Intake struct {
	products  port.ProductStore
	customers port.CustomerStore
	enquiries port.EnquiryStore
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewIntake creates the intake service with all dependencies injected.
func NewIntake(
	products port.ProductStore,
	customers port.CustomerStore,
	enquiries port.EnquiryStore,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Intake {
	return &Intake{
		products:  products,
		customers: customers,
		enquiries: enquiries,
		metrics:   metrics,
		logger:    logger,
	}
}

// Submit resolves the customer by email (creating one if needed), creates a
// pending enquiry referencing product and customer, and appends the enquiry
// id onto the customer's enquiries list.
//
// The enquiry insert and the back-reference append are two separate writes
// with no transaction: a failure between them leaves an enquiry whose id is
// missing from the customer's list. Steps already committed are not rolled
// back. Repeat submissions by the same email for the same product create
// additional enquiries under the same customer.
func (s *Intake) Submit(ctx context.Context, req *domain.EnquiryRequest) (*domain.Enquiry, error) {
	ctx, span := intakeTracer.Start(ctx, "Intake.Submit")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("intake", time.Since(start))
	}()

	if err := validateEnquiryRequest(req); err != nil {
		return nil, err
	}

	product, err := s.products.Get(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("resolve product: %w", err)
	}
	span.SetAttributes(attribute.String("product.id", product.ID.Hex()))

	// Step 1: resolve the customer by case-folded email.
	customer, err := s.customers.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("lookup customer: %w", err)
	}

	outcome := "existing"
	if customer == nil {
		// Step 2: first enquiry with this email — create the customer.
		customer, err = s.customers.Create(ctx, &domain.Customer{
			Name:  req.Name,
			Email: req.Email,
			Phone: req.Phone,
		})
		if err != nil {
			return nil, fmt.Errorf("create customer: %w", err)
		}
		outcome = "new"
	}
	span.SetAttributes(attribute.String("customer.id", customer.ID.Hex()))

	// Step 3: create the enquiry in its initial state.
	enquiry, err := s.enquiries.Create(ctx, &domain.Enquiry{
		ProductID:  product.ID,
		CustomerID: customer.ID,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Message:    req.Message,
		Status:     domain.StatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("create enquiry: %w", err)
	}

	// Step 4: append the back-reference. Not atomic with step 3.
	if err := s.customers.AppendEnquiry(ctx, customer.ID.Hex(), enquiry.ID.Hex()); err != nil {
		return nil, fmt.Errorf("append enquiry to customer: %w", err)
	}

	s.metrics.IncrEnquiry(outcome)
	s.logger.Info("enquiry submitted",
		zap.String("enquiry_id", enquiry.ID.Hex()),
		zap.String("customer_id", customer.ID.Hex()),
		zap.String("product_id", product.ID.Hex()),
		zap.String("customer_outcome", outcome),
	)

	return enquiry, nil
}

func validateEnquiryRequest(req *domain.EnquiryRequest) error {
	switch {
	case req.ProductID == "":
		return &domain.ErrValidation{Field: "productId", Message: "productId is required"}
	case req.Name == "":
		return &domain.ErrValidation{Field: "name", Message: "name is required"}
	case req.Email == "" || !strings.Contains(req.Email, "@"):
		return &domain.ErrValidation{Field: "email", Message: "a valid email is required"}
	case req.Phone == "":
		return &domain.ErrValidation{Field: "phone", Message: "phone is required"}
	case req.Message == "":
		return &domain.ErrValidation{Field: "message", Message: "message is required"}
	}
	return nil
}
