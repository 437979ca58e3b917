package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/domain"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationUsecase_SendWhatsApp(t *testing.T) {
	recorder := new(MockRecorder)
	publisher := &testutil.Publisher{}
	uc := NewNotificationUsecase(false, Deps{Metrics: recorder, Publisher: publisher})
	recorder.On("NotificationSimulated", "whatsapp").Once()

	receipt, err := uc.SendWhatsApp(context.Background(), WhatsAppRequest{
		Phone:       "+919847012345",
		Message:     "Is the plot still available?",
		ListingID:   "665f1c2e8b3c4a0012345678",
		ListingType: "land-property",
	})
	require.NoError(t, err)

	assert.True(t, receipt.Success)
	assert.True(t, strings.HasPrefix(receipt.MessageID, "wa_"))
	assert.Empty(t, receipt.CallID)
	assert.Equal(t, "queued", receipt.Status)
	assert.Equal(t, "simulated", receipt.Provider)
	assert.False(t, receipt.Timestamp.IsZero())
	assert.Equal(t, []string{domain.SubjectWhatsAppQueued}, publisher.Published())
	recorder.AssertExpectations(t)
}

func TestNotificationUsecase_InitiateCall(t *testing.T) {
	uc := NewNotificationUsecase(true, Deps{})

	receipt, err := uc.InitiateCall(context.Background(), CallRequest{Phone: "9847012345"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(receipt.CallID, "call_"))
	assert.Equal(t, "initiated", receipt.Status)

	other, err := uc.InitiateCall(context.Background(), CallRequest{Phone: "9847012345"})
	require.NoError(t, err)
	assert.NotEqual(t, receipt.CallID, other.CallID)
}

func TestNotificationUsecase_RequiresFields(t *testing.T) {
	uc := NewNotificationUsecase(false, Deps{})

	_, err := uc.SendWhatsApp(context.Background(), WhatsAppRequest{Phone: "123"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "message")

	_, err = uc.InitiateCall(context.Background(), CallRequest{})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "phone")
}
