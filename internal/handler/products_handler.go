package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/angtech/catalog-api/internal/domain"
	"github.com/angtech/catalog-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Catalog — /api/products
// ============================================================

func listProductsHandler(svc *service.Catalog, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/products")
		defer span.End()

		filter, err := productFilterFromQuery(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		products, err := svc.List(ctx, filter)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, products)
	}
}

func getProductHandler(svc *service.Catalog, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/products/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("product.id", id))

		product, err := svc.Get(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, product)
	}
}

func catalogFiltersHandler(svc *service.Catalog, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/products/filters")
		defer span.End()

		filters, err := svc.Filters(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, filters)
	}
}

func createProductHandler(svc *service.Catalog, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/products")
		defer span.End()

		var product domain.Product
		if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		created, err := svc.Create(ctx, &product)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, created)
	}
}

func updateProductHandler(svc *service.Catalog, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /api/products/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("product.id", id))

		var update domain.ProductUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		product, err := svc.Update(ctx, id, update)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, product)
	}
}

func deleteProductHandler(svc *service.Catalog, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /api/products/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("product.id", id))

		if err := svc.Delete(ctx, id); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, messageResponse{Message: "product deleted"})
	}
}

// productFilterFromQuery parses the catalog listing query parameters.
// Unknown sort values and non-numeric prices are rejected rather than
// silently ignored.
func productFilterFromQuery(r *http.Request) (domain.ProductFilter, error) {
	q := r.URL.Query()
	filter := domain.ProductFilter{
		Type:   q.Get("type"),
		Brand:  q.Get("brand"),
		Search: q.Get("search"),
		Sort:   q.Get("sort"),
	}

	if v := q.Get("minPrice"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, &domain.ErrValidation{Field: "minPrice", Message: "minPrice must be a number"}
		}
		filter.MinPrice = &p
	}
	if v := q.Get("maxPrice"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, &domain.ErrValidation{Field: "maxPrice", Message: "maxPrice must be a number"}
		}
		filter.MaxPrice = &p
	}
	if v := q.Get("isActive"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, &domain.ErrValidation{Field: "isActive", Message: "isActive must be true or false"}
		}
		filter.IsActive = &b
	}

	switch filter.Sort {
	case "", domain.SortNameAsc, domain.SortNameDesc, domain.SortPriceAsc, domain.SortPriceDesc:
	default:
		return filter, &domain.ErrValidation{Field: "sort", Message: "unknown sort order"}
	}

	return filter, nil
}
