package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/domain"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type adminFixture struct {
	users  *testutil.UserStore
	mailer *testutil.Mailer
	files  *testutil.FileStore
	cars   *ListingUsecase[domain.Car, *domain.Car]
	hotels *ListingUsecase[domain.Hotel, *domain.Hotel]
	uc     *AdminUsecase
}

func newAdminFixture() *adminFixture {
	f := &adminFixture{
		users:  testutil.NewUserStore(),
		mailer: &testutil.Mailer{},
		files:  testutil.NewFileStore(),
	}
	deps := Deps{Storage: f.files, Now: func() time.Time { return fixedNow }}
	f.cars = NewListingUsecase[domain.Car](testutil.NewListingStore[domain.Car](), deps)
	f.hotels = NewListingUsecase[domain.Hotel](testutil.NewListingStore[domain.Hotel](), deps)
	f.uc = NewAdminUsecase(f.users, f.mailer, []ListingModerator{f.cars, f.hotels}, deps)
	return f
}

func (f *adminFixture) pendingUser(t *testing.T, email string) *domain.User {
	t.Helper()
	u := &domain.User{
		Email:           email,
		Role:            domain.RoleUser,
		GovernmentProof: domain.GovernmentProof{Type: domain.ProofPAN, Number: "ABCDE1234F", Document: "uploads/documents/" + email + ".pdf"},
		ProfilePicture:  "uploads/profiles/" + email + ".png",
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func TestAdminUsecase_Approve(t *testing.T) {
	f := newAdminFixture()
	u := f.pendingUser(t, "anu@example.com")

	approved, err := f.uc.Approve(context.Background(), u.ID.Hex())
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)
	require.NotNil(t, approved.ApprovedAt)
	assert.Equal(t, fixedNow, *approved.ApprovedAt)
	assert.Equal(t, []string{"anu@example.com"}, f.mailer.Approved)

	_, err = f.uc.Approve(context.Background(), u.ID.Hex())
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.uc.Approve(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.Approve(context.Background(), "bogus")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdminUsecase_RejectDeletesUserAndFiles(t *testing.T) {
	f := newAdminFixture()
	u := f.pendingUser(t, "ravi@example.com")

	require.NoError(t, f.uc.Reject(context.Background(), u.ID.Hex(), "blurry document"))

	_, err := f.users.FindByID(context.Background(), u.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ElementsMatch(t, u.UploadedFiles(), f.files.Removed)
	assert.Equal(t, []string{"ravi@example.com"}, f.mailer.Rejected)
}

func TestAdminUsecase_RejectRefusesApprovedUsers(t *testing.T) {
	f := newAdminFixture()
	u := f.pendingUser(t, "meera@example.com")
	_, err := f.uc.Approve(context.Background(), u.ID.Hex())
	require.NoError(t, err)

	err = f.uc.Reject(context.Background(), u.ID.Hex(), "")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Empty(t, f.files.Removed)
}

func TestAdminUsecase_ListUsers(t *testing.T) {
	f := newAdminFixture()
	first := f.pendingUser(t, "a@example.com")
	f.pendingUser(t, "b@example.com")
	f.pendingUser(t, "c@example.com")
	_, err := f.uc.Approve(context.Background(), first.ID.Hex())
	require.NoError(t, err)

	pending, err := f.uc.PendingUsers(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pending.Total)
	require.Len(t, pending.Items, 2)
	assert.Equal(t, "c@example.com", pending.Items[0].Email, "newest first")

	approved, err := f.uc.ListUsers(context.Background(), domain.UserStatusApproved, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), approved.Total)
	assert.Equal(t, domain.DefaultPageSize, approved.Limit)

	_, err = f.uc.ListUsers(context.Background(), "banned", 1, 10)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAdminUsecase_StatsAndListingModeration(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	f.pendingUser(t, "x@example.com")

	car, err := f.cars.Create(ctx, nil, map[string]any{"make": "Tata", "model": "Nexon", "year": 2022, "price": 900000}, nil)
	require.NoError(t, err)

	require.NoError(t, f.uc.SetListingApproval(ctx, "cars", car.ID.Hex(), false))
	_, err = f.cars.GetByID(ctx, car.ID.Hex())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = f.uc.SetListingApproval(ctx, "spaceships", car.ID.Hex(), true)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stats, err := f.uc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.UserStats{Total: 1, Pending: 1}, stats.Users)
	assert.Equal(t, domain.ListingStats{Total: 1, Active: 1, Approved: 0}, stats.Listings["cars"])
	assert.Equal(t, domain.ListingStats{}, stats.Listings["hotels"])
}
