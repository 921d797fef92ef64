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

var enquiryTracer = otel.Tracer("service/enquiries")

// EnquiryService covers the back-office case management of enquiries:
// listing, status transitions, notes and follow-up dates.
type EnquiryService struct {
	enquiries port.EnquiryStore
	logger    *zap.Logger
}

// NewEnquiryService creates the enquiry case-management service.
func NewEnquiryService(enquiries port.EnquiryStore, logger *zap.Logger) *EnquiryService {
	return &EnquiryService{enquiries: enquiries, logger: logger}
}

// List returns enquiries for the admin listing, newest first.
func (s *EnquiryService) List(ctx context.Context, filter domain.EnquiryFilter) ([]domain.Enquiry, error) {
	ctx, span := enquiryTracer.Start(ctx, "EnquiryService.List")
	defer span.End()

	if filter.Status != "" && !domain.ValidEnquiryStatus(filter.Status) {
		return nil, &domain.ErrValidation{Field: "status", Message: fmt.Sprintf("%q is not a valid status", filter.Status)}
	}
	return s.enquiries.List(ctx, filter)
}

// Get returns one enquiry by id.
func (s *EnquiryService) Get(ctx context.Context, id string) (*domain.Enquiry, error) {
	ctx, span := enquiryTracer.Start(ctx, "EnquiryService.Get")
	defer span.End()

	return s.enquiries.Get(ctx, id)
}

// SetStatus moves an enquiry to the given status. Any member of the status
// enum is accepted from any current status — transitions are deliberately
// unconstrained, matching the admin UI which offers the full status list on
// every enquiry.
func (s *EnquiryService) SetStatus(ctx context.Context, id, status string) (*domain.Enquiry, error) {
	ctx, span := enquiryTracer.Start(ctx, "EnquiryService.SetStatus")
	defer span.End()

	if !domain.ValidEnquiryStatus(status) {
		return nil, &domain.ErrValidation{Field: "status", Message: fmt.Sprintf("%q is not a valid status", status)}
	}

	enquiry, err := s.enquiries.SetStatus(ctx, id, domain.EnquiryStatus(status))
	if err != nil {
		return nil, err
	}

	s.logger.Info("enquiry status updated",
		zap.String("enquiry_id", id),
		zap.String("status", status),
	)
	return enquiry, nil
}

// AddNote appends a timestamped note attributed to the acting admin.
// Content is not validated here; the admin UI prevents blank submission.
func (s *EnquiryService) AddNote(ctx context.Context, id, content string, authorID primitive.ObjectID) (*domain.Enquiry, error) {
	ctx, span := enquiryTracer.Start(ctx, "EnquiryService.AddNote")
	defer span.End()

	return s.enquiries.AddNote(ctx, id, domain.Note{
		Content:   content,
		CreatedBy: authorID,
		CreatedAt: time.Now().UTC(),
	})
}

// SetFollowUpDate sets (or clears, when date is nil) the follow-up date.
func (s *EnquiryService) SetFollowUpDate(ctx context.Context, id string, date *time.Time) (*domain.Enquiry, error) {
	ctx, span := enquiryTracer.Start(ctx, "EnquiryService.SetFollowUpDate")
	defer span.End()

	return s.enquiries.SetFollowUpDate(ctx, id, date)
}
