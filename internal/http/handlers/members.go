package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/machwork/identity/internal/http/dto"
	httperrors "github.com/machwork/identity/internal/http/errors"
	"github.com/machwork/identity/internal/http/helpers"
	"github.com/machwork/identity/internal/http/middlewares"
	"github.com/machwork/identity/internal/rbac"
	"github.com/machwork/identity/internal/service/auth"
)

// MembersHandler expone las membresías de una compañía.
type MembersHandler struct {
	svc *auth.Service
}

func NewMembersHandler(svc *auth.Service) *MembersHandler {
	return &MembersHandler{svc: svc}
}

// List GET /api/v1/companies/{companyID}/members
func (h *MembersHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middlewares.GetClaims(r.Context())
	if claims == nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	companyID := chi.URLParam(r, "companyID")
	if companyID == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("companyID is required"))
		return
	}

	role, err := rbac.ParseRole(claims.Role)
	if err != nil {
		role = rbac.RoleWorker
	}

	members, err := h.svc.ListMembers(r.Context(), claims.Subject, role, claims.CompanyID, companyID)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	out := make([]dto.MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, dto.NewMemberResponse(m))
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}
