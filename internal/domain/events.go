package domain

// Subjects published on the message bus.
const (
	SubjectListingCreated  = "listing.created"
	SubjectListingUpdated  = "listing.updated"
	SubjectListingDeleted  = "listing.deleted"
	SubjectListingApproval = "listing.approval"
	SubjectEventBooked     = "event.booked"
	SubjectUserRegistered  = "user.registered"
	SubjectUserApproved    = "user.approved"
	SubjectUserRejected    = "user.rejected"
	SubjectWhatsAppQueued  = "notification.whatsapp"
	SubjectCallInitiated   = "notification.call"
)

// ListingEvent is the payload of listing.* subjects.
type ListingEvent struct {
	Kind     string `json:"kind"`
	ID       string `json:"id"`
	Approved *bool  `json:"approved,omitempty"`
	Soft     bool   `json:"soft,omitempty"`
	ActorID  string `json:"actorId,omitempty"`
}

// BookingEvent is the payload of event.booked.
type BookingEvent struct {
	EventID         string `json:"eventId"`
	Tickets         int    `json:"tickets"`
	CurrentBookings int    `json:"currentBookings"`
	Capacity        int    `json:"capacity"`
}

// UserEvent is the payload of user.* subjects.
type UserEvent struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Reason string `json:"reason,omitempty"`
}
