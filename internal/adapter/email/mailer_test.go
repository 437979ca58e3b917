package email

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/config"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/domain"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, to []string, subject, bodyHTML, bodyText string) error {
	args := m.Called(ctx, to, subject, bodyHTML, bodyText)
	return args.Error(0)
}

func TestMailer_SendWelcome(t *testing.T) {
	sender := new(MockSender)
	m := NewMailer(sender, time.Second)
	user := &domain.User{Name: "Anu <script>", Email: "anu@example.com"}

	sender.On("Send", mock.Anything, []string{"anu@example.com"}, "Welcome to Startup Village County",
		mock.MatchedBy(func(html string) bool {
			return strings.Contains(html, "Anu &lt;script&gt;") && strings.Contains(html, "pending review")
		}),
		mock.AnythingOfType("string"),
	).Return(nil).Once()

	assert.NoError(t, m.SendWelcome(context.Background(), user))
	sender.AssertExpectations(t)
}

func TestMailer_SendRejectedIncludesReason(t *testing.T) {
	sender := new(MockSender)
	m := NewMailer(sender, time.Second)
	user := &domain.User{Name: "Ravi", Email: "ravi@example.com"}

	sender.On("Send", mock.Anything, []string{"ravi@example.com"}, "Your registration was not approved",
		mock.MatchedBy(func(html string) bool { return strings.Contains(html, "Reason: blurry scan") }),
		"Hello Ravi, your registration was not approved. Reason: blurry scan",
	).Return(nil).Once()

	assert.NoError(t, m.SendRejected(context.Background(), user, "blurry scan"))
	sender.AssertExpectations(t)
}

func TestMailer_PropagatesSenderErrors(t *testing.T) {
	sender := new(MockSender)
	m := NewMailer(sender, 0)
	sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("535 authentication failed"))

	err := m.SendApproved(context.Background(), &domain.User{Name: "Meera", Email: "meera@example.com"})
	assert.EqualError(t, err, "535 authentication failed")
}

func TestNewSMTPSender_RequiresConfiguration(t *testing.T) {
	_, err := NewSMTPSender(config.SMTPConfig{Host: "smtp.example.com"}, logger.NewNop())
	assert.Error(t, err)
}
