package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rednammadhavi/laptopcare-erp/api/middleware"
	"github.com/rednammadhavi/laptopcare-erp/api/validators"
	"github.com/rednammadhavi/laptopcare-erp/internal/policy"
	"github.com/rednammadhavi/laptopcare-erp/pkg/enums"
	pkgerrors "github.com/rednammadhavi/laptopcare-erp/pkg/errors"
	"github.com/rednammadhavi/laptopcare-erp/pkg/pagination"
)

// actorFromRequest reconstructs the authenticated actor the auth middleware
// seeded into the request context.
func actorFromRequest(r *http.Request) (policy.Actor, error) {
	rawID := middleware.UserIDFromContext(r.Context())
	if rawID == "" {
		return policy.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return policy.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}

	role := enums.Role(middleware.RoleFromContext(r.Context()))
	if !role.IsValid() {
		return policy.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "role context missing")
	}

	return policy.Actor{UserID: userID, Role: role}, nil
}

// idParam parses the {id} URL parameter.
func idParam(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id")
	}
	return id, nil
}

// pageParams extracts the optional limit/cursor query parameters.
func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}
