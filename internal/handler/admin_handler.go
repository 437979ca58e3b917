package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/domain"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/usecase"
	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	uc *usecase.AdminUsecase
	rs *Responder
}

func NewAdminHandler(uc *usecase.AdminUsecase, rs *Responder) *AdminHandler {
	return &AdminHandler{uc: uc, rs: rs}
}

func (h *AdminHandler) PendingUsers(w http.ResponseWriter, r *http.Request) {
	page, err := h.uc.PendingUsers(r.Context(),
		parseIntQueryParam(r, "page", 1),
		parseIntQueryParam(r, "limit", domain.DefaultPageSize))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, page)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := h.uc.ListUsers(r.Context(),
		domain.UserStatus(r.URL.Query().Get("status")),
		parseIntQueryParam(r, "page", 1),
		parseIntQueryParam(r, "limit", domain.DefaultPageSize))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, page)
}

func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	user, err := h.uc.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, map[string]any{"message": "User approved successfully", "user": user})
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	if err := h.uc.Reject(r.Context(), chi.URLParam(r, "id"), req.Reason); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, map[string]string{"message": "User rejected and removed"})
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.uc.Stats(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, stats)
}

type approvalRequest struct {
	Approved *bool `json:"approved"`
}

func (h *AdminHandler) SetListingApproval(w http.ResponseWriter, r *http.Request) {
	var req approvalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	if req.Approved == nil {
		h.rs.Error(w, r, domain.NewValidationError("approved", "approved is required"))
		return
	}
	kind, id := chi.URLParam(r, "kind"), chi.URLParam(r, "id")
	if err := h.uc.SetListingApproval(r.Context(), kind, id, *req.Approved); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, map[string]any{"message": "Listing approval updated", "id": id, "approved": *req.Approved})
}
