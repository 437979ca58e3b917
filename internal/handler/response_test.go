package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/domain"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.NewValidationError("title", "title is required"), http.StatusBadRequest},
		{fmt.Errorf("%w: too big", domain.ErrUploadRejected), http.StatusBadRequest},
		{domain.ErrDuplicateEmail, http.StatusBadRequest},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrPendingApproval, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("find car: %w", domain.ErrNotFound), http.StatusNotFound},
		{domain.ErrCapacityExceeded, http.StatusConflict},
		{domain.ErrEventUnavailable, http.StatusConflict},
		{errors.New("socket closed"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestResponderHidesCauseInProduction(t *testing.T) {
	cause := errors.New("mongo: connection refused")
	req := httptest.NewRequest(http.MethodGet, "/api/cars", nil)

	for _, production := range []bool{true, false} {
		rec := httptest.NewRecorder()
		NewResponder(logger.NewNop(), production).Error(rec, req, cause)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Internal server error", body.Message)
		if production {
			assert.Empty(t, body.Error)
		} else {
			assert.Equal(t, cause.Error(), body.Error)
		}
	}
}

func TestResponderErrorMessages(t *testing.T) {
	rs := NewResponder(logger.NewNop(), true)
	req := httptest.NewRequest(http.MethodPost, "/api/cars", nil)

	rec := httptest.NewRecorder()
	rs.Error(rec, req, fmt.Errorf("%w: big.png exceeds the 5242880 byte limit", domain.ErrUploadRejected))
	assert.Contains(t, rec.Body.String(), `"message":"big.png exceeds the 5242880 byte limit"`)

	rec = httptest.NewRecorder()
	rs.Error(rec, req, domain.ErrCapacityExceeded)
	assert.Contains(t, rec.Body.String(), `"message":"Not enough seats remaining"`)
}

func TestFormFields(t *testing.T) {
	values := url.Values{
		"title":            {"Paddy field"},
		"location[city]":   {"Palakkad"},
		"location.state":   {"Kerala"},
		"seller[name]":     {"Ravi"},
		"amenities[]":      {"well", "fence"},
		"nested[a][b]":     {"deep"},
		"ignored-if-empty": {},
	}

	got := formFields(values)

	assert.Equal(t, "Paddy field", got["title"])
	assert.Equal(t, map[string]any{"city": "Palakkad", "state": "Kerala"}, got["location"])
	assert.Equal(t, map[string]any{"name": "Ravi"}, got["seller"])
	assert.Equal(t, []any{"well", "fence"}, got["amenities"])
	assert.Equal(t, map[string]any{"b": "deep"}, got["nested"].(map[string]any)["a"])
	assert.NotContains(t, got, "ignored-if-empty")
}

func TestDecodeJSONMap(t *testing.T) {
	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		got, err := decodeJSONMap(httptest.NewRecorder(), req)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("non object", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`"text"`))
		_, err := decodeJSONMap(httptest.NewRecorder(), req)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("object", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"tickets":3}`))
		got, err := decodeJSONMap(httptest.NewRecorder(), req)
		require.NoError(t, err)
		assert.Equal(t, float64(3), got["tickets"])
	})
}

func TestParseListingFilter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/events?category=music&city=Kochi&minPrice=100&maxPrice=500.5&from=2024-01-01&to=2024-12-31T23:59:59Z&page=2&limit=500", nil)

	f, err := parseListingFilter(req)
	require.NoError(t, err)
	assert.Equal(t, "music", f.Category)
	assert.Equal(t, "Kochi", f.City)
	require.NotNil(t, f.MinPrice)
	assert.Equal(t, 100.0, *f.MinPrice)
	assert.Equal(t, 500.5, *f.MaxPrice)
	assert.Equal(t, 2024, f.From.Year())
	assert.Equal(t, 2, f.Page)
	assert.Equal(t, domain.MaxPageSize, f.Limit)

	req = httptest.NewRequest(http.MethodGet, "/api/events?from=yesterday&maxPrice=lots", nil)
	_, err = parseListingFilter(req)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "from")
	assert.Contains(t, verr.Fields, "maxPrice")
}

func TestParseListingFilter_DateOnlyUpperBoundCoversDay(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/events?from=2024-05-01&to=2024-05-31", nil)
	f, err := parseListingFilter(req)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *f.From)
	assert.Equal(t, time.Date(2024, 5, 31, 23, 59, 59, 999_000_000, time.UTC), *f.To)
	assert.True(t, f.To.After(time.Date(2024, 5, 31, 18, 0, 0, 0, time.UTC)))

	req = httptest.NewRequest(http.MethodGet, "/api/events?to=2024-05-31T12:00:00Z", nil)
	f, err = parseListingFilter(req)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC), *f.To)
}
