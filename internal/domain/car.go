package domain

import (
	"fmt"
	"time"
)

const MinCarYear = 1900

var CarKind = Kind{
	Name:          "car",
	Route:         "cars",
	Collection:    "cars",
	UploadDir:     "cars",
	CategoryField: "fuelType",
	CityField:     "location.city",
	PriceField:    "price",
	TitleField:    "model",
	SortField:     "createdAt",
}

type Car struct {
	Base         `bson:",inline"`
	Make         string  `bson:"make" json:"make" validate:"required"`
	Model        string  `bson:"model" json:"model" validate:"required"`
	Year         int     `bson:"year" json:"year" validate:"required"`
	Price        float64 `bson:"price" json:"price" validate:"gte=0" decode:"required"`
	Mileage      float64 `bson:"mileage" json:"mileage" validate:"gte=0"`
	FuelType     string  `bson:"fuelType" json:"fuelType" validate:"oneof=petrol diesel cng electric hybrid"`
	Transmission string  `bson:"transmission" json:"transmission" validate:"oneof=manual automatic"`
	Color        string  `bson:"color,omitempty" json:"color,omitempty"`
	Description  string  `bson:"description,omitempty" json:"description,omitempty"`
	Location     Area    `bson:"location" json:"location"`
	Seller       Contact `bson:"seller" json:"seller"`
}

func (*Car) Kind() *Kind { return &CarKind }

func (c *Car) ApplyDefaults() {
	if c.FuelType == "" {
		c.FuelType = "petrol"
	}
	if c.Transmission == "" {
		c.Transmission = "manual"
	}
}

func (c *Car) Check() *ValidationError {
	maxYear := time.Now().Year() + 1
	if c.Year != 0 && (c.Year < MinCarYear || c.Year > maxYear) {
		return NewValidationError("year", fmt.Sprintf("year must be between %d and %d", MinCarYear, maxYear))
	}
	return nil
}
