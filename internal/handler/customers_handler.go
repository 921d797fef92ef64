package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/angtech/catalog-api/internal/domain"
	"github.com/angtech/catalog-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Customers — admin back office
// ============================================================

func listCustomersHandler(svc *service.CustomerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/customers")
		defer span.End()

		filter := domain.CustomerFilter{
			Search: r.URL.Query().Get("search"),
		}
		if v := r.URL.Query().Get("tags"); v != "" {
			filter.Tags = strings.Split(v, ",")
		}

		customers, err := svc.List(ctx, filter)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, customers)
	}
}

func getCustomerHandler(svc *service.CustomerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/customers/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("customer.id", id))

		customer, err := svc.Get(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, customer)
	}
}

func updateCustomerHandler(svc *service.CustomerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /api/customers/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("customer.id", id))

		var update domain.CustomerUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		customer, err := svc.Update(ctx, id, update)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, customer)
	}
}

func addCustomerNoteHandler(svc *service.CustomerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/customers/{id}/notes")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("customer.id", id))

		var req struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		customer, err := svc.AddNote(ctx, id, req.Content, authorIDFromContext(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, customer)
	}
}

func addCustomerTagHandler(svc *service.CustomerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/customers/{id}/tags")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("customer.id", id))

		var req struct {
			Tag string `json:"tag"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		customer, err := svc.AddTag(ctx, id, req.Tag)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, customer)
	}
}

func removeCustomerTagHandler(svc *service.CustomerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /api/customers/{id}/tags/{tag}")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("customer.id", id))

		customer, err := svc.RemoveTag(ctx, id, chi.URLParam(r, "tag"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, customer)
	}
}

func setCustomerTagsHandler(svc *service.CustomerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /api/customers/{id}/tags")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("customer.id", id))

		var req struct {
			Tags []string `json:"tags"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		customer, err := svc.SetTags(ctx, id, req.Tags)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, customer)
	}
}

func setCustomerFollowUpHandler(svc *service.CustomerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /api/customers/{id}/follow-up")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("customer.id", id))

		var req struct {
			FollowUpDate *time.Time `json:"followUpDate"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		customer, err := svc.SetFollowUpDate(ctx, id, req.FollowUpDate)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, customer)
	}
}

func touchCustomerContactHandler(svc *service.CustomerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /api/customers/{id}/last-contact")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("customer.id", id))

		customer, err := svc.TouchLastContact(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, customer)
	}
}
