package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

var PropertyKind = Kind{
	Name:          "property",
	Route:         "properties",
	Collection:    "properties",
	UploadDir:     "properties",
	OwnerField:    "owner",
	CategoryField: "propertyType",
	CityField:     "location.city",
	PriceField:    "price",
	TitleField:    "title",
	SortField:     "createdAt",
}

type Property struct {
	Base         `bson:",inline"`
	Title        string             `bson:"title" json:"title" validate:"required"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Price        float64            `bson:"price" json:"price" validate:"gte=0" decode:"required"`
	PropertyType string             `bson:"propertyType" json:"propertyType" validate:"required,oneof=apartment house villa commercial office plot"`
	ListingType  string             `bson:"listingType" json:"listingType" validate:"oneof=sale rent"`
	Bedrooms     int                `bson:"bedrooms" json:"bedrooms" validate:"gte=0"`
	Bathrooms    int                `bson:"bathrooms" json:"bathrooms" validate:"gte=0"`
	Area         float64            `bson:"area" json:"area" validate:"gte=0"`
	Location     Location           `bson:"location" json:"location"`
	Amenities    []string           `bson:"amenities" json:"amenities"`
	Owner        primitive.ObjectID `bson:"owner" json:"owner"`
}

func (*Property) Kind() *Kind { return &PropertyKind }

func (p *Property) OwnerID() primitive.ObjectID      { return p.Owner }
func (p *Property) SetOwnerID(id primitive.ObjectID) { p.Owner = id }

func (p *Property) ApplyDefaults() {
	if p.ListingType == "" {
		p.ListingType = "sale"
	}
	if p.Amenities == nil {
		p.Amenities = []string{}
	}
}
