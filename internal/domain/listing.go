package domain

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage keeps (page-1)*limit well inside int64.
	MaxPage = math.MaxInt32
)

// Base carries the fields every listing type shares.
type Base struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Images     []string           `bson:"images" json:"images"`
	IsApproved bool               `bson:"isApproved" json:"isApproved"`
	IsActive   bool               `bson:"isActive" json:"isActive"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (b *Base) Meta() *Base { return b }

// Touch stamps the timestamps before a persist. CreatedAt is only set once.
func (b *Base) Touch(now time.Time) {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

// Visible reports whether the listing may be served to the public.
func (b *Base) Visible() bool {
	return b.IsApproved && b.IsActive
}

// Normalize makes sure Images serialises as [] rather than null.
func (b *Base) Normalize() {
	if b.Images == nil {
		b.Images = []string{}
	}
}

// Listing is implemented by pointers to every marketplace record type.
type Listing interface {
	Meta() *Base
	Kind() *Kind
}

// ListingPtr constrains generic code to pointer types of listing structs.
type ListingPtr[T any] interface {
	*T
	Listing
}

// Owned is implemented by owner-scoped listings.
type Owned interface {
	OwnerID() primitive.ObjectID
	SetOwnerID(id primitive.ObjectID)
}

// Defaulter fills enum defaults before validation.
type Defaulter interface {
	ApplyDefaults()
}

// Checker performs cross-field validation that struct tags cannot express.
type Checker interface {
	Check() *ValidationError
}

// Kind describes how one listing type is stored, filtered and routed.
type Kind struct {
	Name       string
	Route      string
	Collection string
	UploadDir  string

	// OwnerField is the stored owner reference. Empty for public listing types.
	OwnerField string

	CategoryField string
	CityField     string
	PriceField    string
	DateField     string
	TitleField    string

	SortField string
	SortAsc   bool

	SoftDelete bool

	// ServerManaged fields are never taken from request bodies or overwritten by updates.
	ServerManaged []string

	// CapacityField may never be updated below the stored CounterField.
	CapacityField string
	CounterField  string
}

func (k *Kind) OwnerScoped() bool { return k.OwnerField != "" }

// ProtectedFields are stripped from client input before decoding.
func (k *Kind) ProtectedFields() []string {
	fields := []string{"id", "_id", "images", "isApproved", "isActive", "createdAt", "updatedAt"}
	if k.OwnerField != "" {
		fields = append(fields, k.OwnerField)
	}
	return append(fields, k.ServerManaged...)
}

// ListingFilter is the query accepted by list operations.
type ListingFilter struct {
	Category string
	City     string
	Search   string
	MinPrice *float64
	MaxPrice *float64
	From     *time.Time
	To       *time.Time

	OwnerID primitive.ObjectID
	// IncludeHidden disables the approved+active gate.
	IncludeHidden bool

	Page  int
	Limit int
}

func (f *ListingFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Page > MaxPage {
		f.Page = MaxPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
}

func (f ListingFilter) Skip() int64 {
	return PageSkip(f.Page, f.Limit)
}

// PageSkip is the number of records before a 1-based page.
func PageSkip(page, limit int) int64 {
	if page < 1 || limit < 1 {
		return 0
	}
	return int64(page-1) * int64(limit)
}

// Page is one page of results.
type Page[T any] struct {
	Items []T   `json:"items"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

func NewPage[T any](items []T, total int64, page, limit int) Page[T] {
	if items == nil {
		items = []T{}
	}
	var pages int64
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return Page[T]{Items: items, Page: page, Limit: limit, Total: total, Pages: pages}
}

// ListingStats is reported per listing kind on the admin dashboard.
type ListingStats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Approved int64 `json:"approved"`
}
