package usecase

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/domain"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/platform/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const simulatedProvider = "simulated"

type WhatsAppRequest struct {
	Phone       string `json:"phone" validate:"required"`
	Message     string `json:"message" validate:"required"`
	ListingID   string `json:"listingId,omitempty"`
	ListingType string `json:"listingType,omitempty"`
}

type CallRequest struct {
	Phone       string `json:"phone" validate:"required"`
	ListingID   string `json:"listingId,omitempty"`
	ListingType string `json:"listingType,omitempty"`
}

// Receipt acknowledges a simulated notification.
type Receipt struct {
	Success   bool      `json:"success"`
	MessageID string    `json:"messageId,omitempty"`
	CallID    string    `json:"callId,omitempty"`
	Status    string    `json:"status"`
	Provider  string    `json:"provider"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

type notificationEvent struct {
	ID          string `json:"id"`
	Phone       string `json:"phone"`
	ListingID   string `json:"listingId,omitempty"`
	ListingType string `json:"listingType,omitempty"`
}

// NotificationUsecase simulates WhatsApp messages and voice calls. No
// telephony provider is contacted.
type NotificationUsecase struct {
	providerConfigured bool
	deps               Deps
	logger             *logger.Logger
}

func NewNotificationUsecase(providerConfigured bool, deps Deps) *NotificationUsecase {
	deps = deps.withDefaults()
	return &NotificationUsecase{
		providerConfigured: providerConfigured,
		deps:               deps,
		logger:             deps.Logger.Named("NotificationUsecase"),
	}
}

func (uc *NotificationUsecase) SendWhatsApp(ctx context.Context, req WhatsAppRequest) (*Receipt, error) {
	if err := domain.Validate(&req); err != nil {
		return nil, err
	}
	id := "wa_" + uuid.NewString()
	uc.logger.Info("Simulated WhatsApp message queued",
		zap.String("messageId", id),
		zap.String("phone", req.Phone),
		zap.String("listingId", req.ListingID),
		zap.String("listingType", req.ListingType),
		zap.Bool("provider_configured", uc.providerConfigured))
	uc.deps.Metrics.NotificationSimulated("whatsapp")
	uc.deps.publish(ctx, domain.SubjectWhatsAppQueued, notificationEvent{ID: id, Phone: req.Phone, ListingID: req.ListingID, ListingType: req.ListingType})

	return &Receipt{
		Success:   true,
		MessageID: id,
		Status:    "queued",
		Provider:  simulatedProvider,
		Timestamp: uc.deps.Now(),
		Message:   "WhatsApp message queued",
	}, nil
}

func (uc *NotificationUsecase) InitiateCall(ctx context.Context, req CallRequest) (*Receipt, error) {
	if err := domain.Validate(&req); err != nil {
		return nil, err
	}
	id := "call_" + uuid.NewString()
	uc.logger.Info("Simulated call initiated",
		zap.String("callId", id),
		zap.String("phone", req.Phone),
		zap.String("listingId", req.ListingID),
		zap.String("listingType", req.ListingType),
		zap.Bool("provider_configured", uc.providerConfigured))
	uc.deps.Metrics.NotificationSimulated("call")
	uc.deps.publish(ctx, domain.SubjectCallInitiated, notificationEvent{ID: id, Phone: req.Phone, ListingID: req.ListingID, ListingType: req.ListingType})

	return &Receipt{
		Success:   true,
		CallID:    id,
		Status:    "initiated",
		Provider:  simulatedProvider,
		Timestamp: uc.deps.Now(),
		Message:   "Call initiated",
	}, nil
}
