package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ProofAadhaar        = "Aadhaar"
	ProofPAN            = "PAN"
	ProofPassport       = "Passport"
	ProofDrivingLicense = "DrivingLicense"

	DefaultCountry = "India"
)

// UserStatus filters users by approval state.
type UserStatus string

const (
	UserStatusAny      UserStatus = ""
	UserStatusPending  UserStatus = "pending"
	UserStatusApproved UserStatus = "approved"
)

type GovernmentProof struct {
	Type     string `bson:"type" json:"type" validate:"required,oneof=Aadhaar PAN Passport DrivingLicense"`
	Number   string `bson:"number" json:"number" validate:"required"`
	Document string `bson:"document,omitempty" json:"document,omitempty"`
}

type Address struct {
	Street  string `bson:"street" json:"street" validate:"required"`
	City    string `bson:"city" json:"city" validate:"required"`
	State   string `bson:"state" json:"state" validate:"required"`
	Pincode string `bson:"pincode" json:"pincode" validate:"required"`
	Country string `bson:"country" json:"country"`
}

type User struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Email           string             `bson:"email" json:"email"`
	Phone           string             `bson:"phone" json:"phone"`
	Password        string             `bson:"password" json:"-"`
	Role            string             `bson:"role" json:"role"`
	GovernmentProof GovernmentProof    `bson:"governmentProof" json:"governmentProof"`
	Address         Address            `bson:"address" json:"address"`
	ProfilePicture  string             `bson:"profilePicture,omitempty" json:"profilePicture,omitempty"`
	IsApproved      bool               `bson:"isApproved" json:"isApproved"`
	ApprovedAt      *time.Time         `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) Identity() *Identity {
	return &Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// UploadedFiles returns every stored file path referenced by the user.
func (u *User) UploadedFiles() []string {
	var files []string
	if u.GovernmentProof.Document != "" {
		files = append(files, u.GovernmentProof.Document)
	}
	if u.ProfilePicture != "" {
		files = append(files, u.ProfilePicture)
	}
	return files
}

// Profile is the authenticated user's view including the listings they own.
type Profile struct {
	*User
	Properties []string `json:"properties"`
	Events     []string `json:"events"`
}

// UserStats summarises users for the admin dashboard.
type UserStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
}
