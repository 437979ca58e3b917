package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/domain"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/middleware"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/upload"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/usecase"
	"github.com/go-chi/chi/v5"
)

// ListingHandler serves the CRUD endpoints of one listing type.
type ListingHandler[T any, PT domain.ListingPtr[T]] struct {
	uc      *usecase.ListingUsecase[T, PT]
	policy  upload.Policy
	storage domain.FileStorage
	rs      *Responder
}

func NewListingHandler[T any, PT domain.ListingPtr[T]](uc *usecase.ListingUsecase[T, PT], storage domain.FileStorage, maxImageSize int64, rs *Responder) *ListingHandler[T, PT] {
	return &ListingHandler[T, PT]{
		uc:      uc,
		policy:  upload.ListingImages(uc.Kind().UploadDir, maxImageSize),
		storage: storage,
		rs:      rs,
	}
}

func (h *ListingHandler[T, PT]) Kind() *domain.Kind { return h.uc.Kind() }

// readBody accepts either a multipart form with images or a JSON object.
func (h *ListingHandler[T, PT]) readBody(w http.ResponseWriter, r *http.Request) (map[string]any, []string, error) {
	if isMultipart(r) {
		res, err := h.policy.Process(w, r, h.storage)
		if err != nil {
			return nil, nil, err
		}
		return formFields(res.Values), res.Paths(upload.ListingImagesField), nil
	}
	fields, err := decodeJSONMap(w, r)
	if err != nil {
		return nil, nil, err
	}
	return fields, []string{}, nil
}

func (h *ListingHandler[T, PT]) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListingFilter(r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	page, err := h.uc.List(r.Context(), filter)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, page)
}

func (h *ListingHandler[T, PT]) Mine(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListingFilter(r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	page, err := h.uc.Mine(r.Context(), middleware.IdentityFromContext(r.Context()), filter)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, page)
}

func (h *ListingHandler[T, PT]) Get(w http.ResponseWriter, r *http.Request) {
	listing, err := h.uc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, listing)
}

func (h *ListingHandler[T, PT]) Create(w http.ResponseWriter, r *http.Request) {
	fields, images, err := h.readBody(w, r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	listing, err := h.uc.Create(r.Context(), middleware.IdentityFromContext(r.Context()), fields, images)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusCreated, listing)
}

func (h *ListingHandler[T, PT]) Update(w http.ResponseWriter, r *http.Request) {
	fields, images, err := h.readBody(w, r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	listing, err := h.uc.Update(r.Context(), middleware.IdentityFromContext(r.Context()), chi.URLParam(r, "id"), fields, images)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, listing)
}

func (h *ListingHandler[T, PT]) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.Delete(r.Context(), middleware.IdentityFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, map[string]string{"message": "Listing deleted successfully"})
}

func parseListingFilter(r *http.Request) (domain.ListingFilter, error) {
	q := r.URL.Query()
	filter := domain.ListingFilter{
		Category: q.Get("category"),
		City:     q.Get("city"),
		Search:   q.Get("search"),
		Page:     parseIntQueryParam(r, "page", 1),
		Limit:    parseIntQueryParam(r, "limit", domain.DefaultPageSize),
	}

	verr := &domain.ValidationError{}
	parseFloat := func(key string) *float64 {
		raw := q.Get(key)
		if raw == "" {
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			verr.Add(key, key+" must be a number")
			return nil
		}
		return &v
	}
	// A date-only upper bound covers that whole day.
	parseTime := func(key string, endOfDay bool) *time.Time {
		raw := q.Get(key)
		if raw == "" {
			return nil
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return &t
		}
		if t, err := time.Parse(time.DateOnly, raw); err == nil {
			if endOfDay {
				t = t.AddDate(0, 0, 1).Add(-time.Millisecond)
			}
			return &t
		}
		verr.Add(key, key+" must be a date (YYYY-MM-DD or RFC 3339)")
		return nil
	}

	filter.MinPrice = parseFloat("minPrice")
	filter.MaxPrice = parseFloat("maxPrice")
	filter.From = parseTime("from", false)
	filter.To = parseTime("to", true)
	if len(verr.Fields) > 0 {
		return filter, verr
	}
	filter.Normalize()
	return filter, nil
}

// EventHandler adds the booking endpoint to the event CRUD handler.
type EventHandler struct {
	*ListingHandler[domain.Event, *domain.Event]
	events *usecase.EventUsecase
}

func NewEventHandler(uc *usecase.EventUsecase, storage domain.FileStorage, maxImageSize int64, rs *Responder) *EventHandler {
	return &EventHandler{
		ListingHandler: NewListingHandler[domain.Event, *domain.Event](uc.ListingUsecase, storage, maxImageSize, rs),
		events:         uc,
	}
}

type bookRequest struct {
	Tickets *int `json:"tickets"`
}

func (h *EventHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	tickets := 1
	if req.Tickets != nil {
		tickets = *req.Tickets
	}

	booking, err := h.events.Book(r.Context(), chi.URLParam(r, "id"), tickets)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, map[string]any{
		"message":   "Booking confirmed",
		"event":     booking.Event,
		"remaining": booking.Remaining,
	})
}
