package domain

var LandPropertyKind = Kind{
	Name:          "land-property",
	Route:         "land-properties",
	Collection:    "landproperties",
	UploadDir:     "land",
	CategoryField: "landType",
	CityField:     "location.city",
	PriceField:    "price",
	TitleField:    "title",
	SortField:     "createdAt",
}

type LandProperty struct {
	Base        `bson:",inline"`
	Title       string          `bson:"title" json:"title" validate:"required"`
	Description string          `bson:"description,omitempty" json:"description,omitempty"`
	Price       float64         `bson:"price" json:"price" validate:"gte=0" decode:"required"`
	Area        float64         `bson:"area" json:"area" validate:"required,gt=0"`
	AreaUnit    string          `bson:"areaUnit" json:"areaUnit" validate:"oneof=sqft sqyd acre hectare cent"`
	LandType    string          `bson:"landType" json:"landType" validate:"required,oneof=agricultural residential commercial industrial"`
	Location    Location        `bson:"location" json:"location"`
	Seller      RequiredContact `bson:"seller" json:"seller"`
}

func (*LandProperty) Kind() *Kind { return &LandPropertyKind }

func (l *LandProperty) ApplyDefaults() {
	if l.AreaUnit == "" {
		l.AreaUnit = "sqft"
	}
}
