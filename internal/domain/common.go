package domain

// Location is the postal location embedded in most listings.
type Location struct {
	Address string `bson:"address,omitempty" json:"address,omitempty"`
	City    string `bson:"city" json:"city" validate:"required"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	Pincode string `bson:"pincode,omitempty" json:"pincode,omitempty"`
}

// Area is a location where the city is optional.
type Area struct {
	City  string `bson:"city,omitempty" json:"city,omitempty"`
	State string `bson:"state,omitempty" json:"state,omitempty"`
}

// Contact identifies a seller or operator supplied in the request body.
type Contact struct {
	Name  string `bson:"name,omitempty" json:"name,omitempty"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
	Email string `bson:"email,omitempty" json:"email,omitempty" validate:"omitempty,email"`
}

// RequiredContact is a Contact whose name and phone must be present.
type RequiredContact struct {
	Name  string `bson:"name" json:"name" validate:"required"`
	Phone string `bson:"phone" json:"phone" validate:"required"`
	Email string `bson:"email,omitempty" json:"email,omitempty" validate:"omitempty,email"`
}
