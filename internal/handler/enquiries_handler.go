package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/angtech/catalog-api/internal/domain"
	"github.com/angtech/catalog-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Enquiries — public intake plus admin case management
// ============================================================

func submitEnquiryHandler(svc *service.Intake, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/enquiries")
		defer span.End()

		var req domain.EnquiryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		enquiry, err := svc.Submit(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, enquiry)
	}
}

func listEnquiriesHandler(svc *service.EnquiryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/enquiries")
		defer span.End()

		filter := domain.EnquiryFilter{
			Status: r.URL.Query().Get("status"),
			Search: r.URL.Query().Get("search"),
		}

		enquiries, err := svc.List(ctx, filter)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, enquiries)
	}
}

func getEnquiryHandler(svc *service.EnquiryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/enquiries/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("enquiry.id", id))

		enquiry, err := svc.Get(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, enquiry)
	}
}

func setEnquiryStatusHandler(svc *service.EnquiryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /api/enquiries/{id}/status")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("enquiry.id", id))

		var req struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		enquiry, err := svc.SetStatus(ctx, id, req.Status)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, enquiry)
	}
}

func addEnquiryNoteHandler(svc *service.EnquiryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/enquiries/{id}/notes")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("enquiry.id", id))

		var req struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		authorID := authorIDFromContext(r)
		enquiry, err := svc.AddNote(ctx, id, req.Content, authorID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, enquiry)
	}
}

func setEnquiryFollowUpHandler(svc *service.EnquiryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /api/enquiries/{id}/follow-up")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("enquiry.id", id))

		var req struct {
			FollowUpDate *time.Time `json:"followUpDate"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		enquiry, err := svc.SetFollowUpDate(ctx, id, req.FollowUpDate)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, enquiry)
	}
}

// authorIDFromContext resolves the acting admin's ObjectID for note
// attribution. A malformed subject leaves the author unset rather than
// failing the write.
func authorIDFromContext(r *http.Request) primitive.ObjectID {
	id := IdentityFromContext(r.Context())
	oid, err := primitive.ObjectIDFromHex(id.UserID)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}
