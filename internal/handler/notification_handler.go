package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/usecase"
)

type NotificationHandler struct {
	uc *usecase.NotificationUsecase
	rs *Responder
}

func NewNotificationHandler(uc *usecase.NotificationUsecase, rs *Responder) *NotificationHandler {
	return &NotificationHandler{uc: uc, rs: rs}
}

func (h *NotificationHandler) WhatsApp(w http.ResponseWriter, r *http.Request) {
	var req usecase.WhatsAppRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	receipt, err := h.uc.SendWhatsApp(r.Context(), req)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, receipt)
}

func (h *NotificationHandler) Call(w http.ResponseWriter, r *http.Request) {
	var req usecase.CallRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	receipt, err := h.uc.InitiateCall(r.Context(), req)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, receipt)
}
