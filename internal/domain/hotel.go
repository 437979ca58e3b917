package domain

var HotelKind = Kind{
	Name:          "hotel",
	Route:         "hotels",
	Collection:    "hotels",
	UploadDir:     "hotels",
	CategoryField: "category",
	CityField:     "location.city",
	PriceField:    "pricePerNight",
	TitleField:    "name",
	SortField:     "createdAt",
	SoftDelete:    true,
}

type Hotel struct {
	Base          `bson:",inline"`
	Name          string       `bson:"name" json:"name" validate:"required"`
	Description   string       `bson:"description,omitempty" json:"description,omitempty"`
	Category      string       `bson:"category" json:"category" validate:"oneof=budget standard deluxe luxury resort"`
	StarRating    int          `bson:"starRating,omitempty" json:"starRating,omitempty" validate:"omitempty,min=1,max=5"`
	PricePerNight float64      `bson:"pricePerNight" json:"pricePerNight" validate:"gte=0" decode:"required"`
	Location      Location     `bson:"location" json:"location"`
	Amenities     []string     `bson:"amenities" json:"amenities"`
	Contact       HotelContact `bson:"contact" json:"contact"`
}

type HotelContact struct {
	Phone string `bson:"phone" json:"phone" validate:"required"`
	Email string `bson:"email,omitempty" json:"email,omitempty" validate:"omitempty,email"`
}

func (*Hotel) Kind() *Kind { return &HotelKind }

func (h *Hotel) ApplyDefaults() {
	if h.Category == "" {
		h.Category = "standard"
	}
	if h.Amenities == nil {
		h.Amenities = []string{}
	}
}
