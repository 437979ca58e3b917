package domain

var PackageKind = Kind{
	Name:          "package",
	Route:         "packages",
	Collection:    "packages",
	UploadDir:     "packages",
	CategoryField: "category",
	CityField:     "destination",
	PriceField:    "price",
	TitleField:    "name",
	SortField:     "createdAt",
}

// Package is a travel package offered by a local operator.
type Package struct {
	Base         `bson:",inline"`
	Name         string   `bson:"name" json:"name" validate:"required"`
	Description  string   `bson:"description,omitempty" json:"description,omitempty"`
	Destination  string   `bson:"destination" json:"destination" validate:"required"`
	DurationDays int      `bson:"durationDays" json:"durationDays" validate:"required,min=1"`
	Price        float64  `bson:"price" json:"price" validate:"gte=0" decode:"required"`
	Category     string   `bson:"category" json:"category" validate:"oneof=adventure family honeymoon pilgrimage wildlife beach cultural"`
	Inclusions   []string `bson:"inclusions" json:"inclusions"`
	Operator     Contact  `bson:"operator" json:"operator"`
}

func (*Package) Kind() *Kind { return &PackageKind }

func (p *Package) ApplyDefaults() {
	if p.Category == "" {
		p.Category = "family"
	}
	if p.Inclusions == nil {
		p.Inclusions = []string{}
	}
}
