package handler

import (
	"encoding/json"
	"net/http"

	"github.com/angtech/catalog-api/internal/domain"
	"github.com/angtech/catalog-api/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Auth — /api/auth
// ============================================================

func authLoginHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/auth/login")
		defer span.End()

		var req domain.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := authSvc.Login(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func authMeHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/auth/me")
		defer span.End()

		id := IdentityFromContext(ctx)
		if id.UserID == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		user, err := authSvc.Me(ctx, id.UserID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}
