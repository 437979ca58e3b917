package domain

var AccessoryKind = Kind{
	Name:          "accessory",
	Route:         "accessories",
	Collection:    "accessories",
	UploadDir:     "accessories",
	CategoryField: "category",
	CityField:     "location.city",
	PriceField:    "price",
	TitleField:    "name",
	SortField:     "createdAt",
	SoftDelete:    true,
}

type Accessory struct {
	Base        `bson:",inline"`
	Name        string  `bson:"name" json:"name" validate:"required"`
	Description string  `bson:"description,omitempty" json:"description,omitempty"`
	Category    string  `bson:"category" json:"category" validate:"required,oneof=electronics fashion home automotive sports other"`
	Brand       string  `bson:"brand,omitempty" json:"brand,omitempty"`
	Price       float64 `bson:"price" json:"price" validate:"gte=0" decode:"required"`
	Stock       int     `bson:"stock" json:"stock" validate:"gte=0"`
	Condition   string  `bson:"condition" json:"condition" validate:"oneof=new used refurbished"`
	Location    Area    `bson:"location" json:"location"`
	Seller      Contact `bson:"seller" json:"seller"`
}

func (*Accessory) Kind() *Kind { return &AccessoryKind }

func (a *Accessory) ApplyDefaults() {
	if a.Condition == "" {
		a.Condition = "new"
	}
}
