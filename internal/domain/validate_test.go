package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ReportsJSONPaths(t *testing.T) {
	l := &LandProperty{Title: "Plot", Price: 10, Area: 0, AreaUnit: "sqft", LandType: "swamp"}

	err := Validate(l)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	assert.Equal(t, "area is required", verr.Fields["area"])
	assert.Contains(t, verr.Fields["landType"], "must be one of [agricultural, residential, commercial, industrial]")
	assert.Contains(t, verr.Fields, "location.city")
	assert.Contains(t, verr.Fields, "seller.name")
	assert.Contains(t, verr.Fields, "seller.phone")
}

func TestValidate_CarYearRange(t *testing.T) {
	car := &Car{Make: "Ambassador", Model: "Classic", Price: 1, FuelType: "diesel", Transmission: "manual"}

	for _, year := range []int{MinCarYear, time.Now().Year() + 1} {
		car.Year = year
		assert.NoError(t, Validate(car), "year %d", year)
	}
	for _, year := range []int{MinCarYear - 1, time.Now().Year() + 2} {
		car.Year = year
		err := Validate(car)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "year %d", year)
		assert.Contains(t, verr.Fields, "year")
	}
}

func TestValidate_EventChecks(t *testing.T) {
	start := time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)
	before := start.Add(-time.Hour)
	ev := &Event{
		Title:           "Boat race",
		Category:        "sports",
		Venue:           Venue{City: "Alappuzha"},
		StartDate:       start,
		EndDate:         &before,
		Capacity:        5,
		CurrentBookings: 6,
	}

	err := Validate(ev)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "endDate")
	assert.Contains(t, verr.Fields, "capacity")

	after := start.Add(time.Hour)
	ev.EndDate = &after
	ev.CurrentBookings = 5
	assert.NoError(t, Validate(ev))
}

func TestValidate_EventRequiresStartDate(t *testing.T) {
	ev := &Event{Title: "Expo", Category: "business", Venue: Venue{City: "Kochi"}, Capacity: 10}

	var verr *ValidationError
	require.ErrorAs(t, Validate(ev), &verr)
	assert.Contains(t, verr.Fields, "startDate")
}

func TestValidationError_Message(t *testing.T) {
	verr := &ValidationError{}
	verr.Add("price", "price is required")
	verr.Add("make", "make is required")

	assert.Equal(t, "validation failed: make is required; price is required", verr.Error())
}

func TestListingFilterNormalize(t *testing.T) {
	f := ListingFilter{Page: -1, Limit: 0}
	f.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultPageSize, f.Limit)
	assert.Equal(t, int64(0), f.Skip())

	f = ListingFilter{Page: 3, Limit: 250}
	f.Normalize()
	assert.Equal(t, MaxPageSize, f.Limit)
	assert.Equal(t, int64(200), f.Skip())

	f = ListingFilter{Page: math.MaxInt, Limit: 100}
	f.Normalize()
	assert.Equal(t, MaxPage, f.Page)
	assert.Positive(t, f.Skip(), "huge pages must not wrap to a negative skip")
	assert.Equal(t, int64(MaxPage-1)*100, f.Skip())
	assert.Equal(t, int64(0), PageSkip(0, 10))

	page := NewPage[int](nil, 21, 1, 10)
	assert.Equal(t, []int{}, page.Items)
	assert.Equal(t, int64(3), page.Pages)
}
