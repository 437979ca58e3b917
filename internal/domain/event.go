package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var EventKind = Kind{
	Name:          "event",
	Route:         "events",
	Collection:    "events",
	UploadDir:     "events",
	OwnerField:    "organizer",
	CategoryField: "category",
	CityField:     "venue.city",
	PriceField:    "ticketPrice",
	DateField:     "startDate",
	TitleField:    "title",
	SortField:     "startDate",
	SortAsc:       true,
	ServerManaged: []string{"currentBookings"},
	CapacityField: "capacity",
	CounterField:  "currentBookings",
}

const capacityBelowBookings = "capacity cannot be lower than current bookings"

// CapacityBelowBookings is returned when a capacity edit loses a race with bookings.
func CapacityBelowBookings() *ValidationError {
	verr := &ValidationError{}
	verr.Add("capacity", capacityBelowBookings)
	return verr
}

type Venue struct {
	Name    string `bson:"name,omitempty" json:"name,omitempty"`
	Address string `bson:"address,omitempty" json:"address,omitempty"`
	City    string `bson:"city" json:"city" validate:"required"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
}

type Event struct {
	Base            `bson:",inline"`
	Title           string             `bson:"title" json:"title" validate:"required"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	Category        string             `bson:"category" json:"category" validate:"required,oneof=music sports business cultural education food other"`
	Venue           Venue              `bson:"venue" json:"venue"`
	StartDate       time.Time          `bson:"startDate" json:"startDate" validate:"required"`
	EndDate         *time.Time         `bson:"endDate,omitempty" json:"endDate,omitempty"`
	TicketPrice     float64            `bson:"ticketPrice" json:"ticketPrice" validate:"gte=0"`
	Capacity        int                `bson:"capacity" json:"capacity" validate:"required,min=1"`
	CurrentBookings int                `bson:"currentBookings" json:"currentBookings"`
	Organizer       primitive.ObjectID `bson:"organizer" json:"organizer"`
}

func (*Event) Kind() *Kind { return &EventKind }

func (e *Event) OwnerID() primitive.ObjectID      { return e.Organizer }
func (e *Event) SetOwnerID(id primitive.ObjectID) { e.Organizer = id }

// Remaining is the number of seats still available.
func (e *Event) Remaining() int {
	if r := e.Capacity - e.CurrentBookings; r > 0 {
		return r
	}
	return 0
}

func (e *Event) Check() *ValidationError {
	verr := &ValidationError{}
	if e.EndDate != nil && e.EndDate.Before(e.StartDate) {
		verr.Add("endDate", "endDate must not be before startDate")
	}
	if e.Capacity < e.CurrentBookings {
		verr.Add("capacity", capacityBelowBookings)
	}
	if len(verr.Fields) == 0 {
		return nil
	}
	return verr
}
