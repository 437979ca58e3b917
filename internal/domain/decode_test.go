package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFields_CoercesFormValues(t *testing.T) {
	var p Property
	err := DecodeFields(map[string]any{
		"title":     "  Hill top cottage ",
		"price":     "2500000.50",
		"bedrooms":  "3",
		"amenities": "garden, parking ,",
		"location":  `{"city":"Munnar","state":"Kerala"}`,
		"unknown":   "ignored",
	}, &p)
	require.NoError(t, err)

	assert.Equal(t, "Hill top cottage", p.Title)
	assert.Equal(t, 2500000.50, p.Price)
	assert.Equal(t, 3, p.Bedrooms)
	assert.Equal(t, []string{"garden", "parking"}, p.Amenities)
	assert.Equal(t, Location{City: "Munnar", State: "Kerala"}, p.Location)
}

func TestDecodeFields_Dates(t *testing.T) {
	var e Event
	require.NoError(t, DecodeFields(map[string]any{"startDate": "2024-08-15", "endDate": "2024-08-16T20:00"}, &e))

	assert.Equal(t, time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC), e.StartDate)
	require.NotNil(t, e.EndDate)
	assert.Equal(t, 20, e.EndDate.Hour())
}

func TestDecodeFields_ReportsTypeErrors(t *testing.T) {
	var c Car
	err := DecodeFields(map[string]any{"year": "twenty"}, &c)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "year")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDecodeFields_BooleansAndEmptyStrings(t *testing.T) {
	var dst struct {
		Flag  bool    `json:"flag"`
		Count int     `json:"count"`
		Price float64 `json:"price"`
	}
	require.NoError(t, DecodeFields(map[string]any{"flag": "on", "count": "", "price": 12}, &dst))
	assert.True(t, dst.Flag)
	assert.Zero(t, dst.Count)
	assert.Equal(t, 12.0, dst.Price)
}

func TestMergeFields(t *testing.T) {
	dst := map[string]any{"title": "a", "location": map[string]any{"city": "Kochi", "state": "Kerala"}}
	MergeFields(dst, map[string]any{"location": map[string]any{"city": "Kollam"}, "price": 5})

	assert.Equal(t, map[string]any{"city": "Kollam", "state": "Kerala"}, dst["location"])
	assert.Equal(t, 5, dst["price"])
	assert.Equal(t, "a", dst["title"])
}
