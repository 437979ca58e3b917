package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/domain"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type TokenService interface {
	Issue(id *domain.Identity) (string, error)
	Verify(token string) (*domain.Identity, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// RegisterInput is the registration form after decoding.
type RegisterInput struct {
	Name                  string         `json:"name" validate:"required"`
	Email                 string         `json:"email" validate:"required,email"`
	Phone                 string         `json:"phone" validate:"required"`
	Password              string         `json:"password" validate:"required,min=6"`
	GovernmentProofType   string         `json:"governmentProofType" validate:"required,oneof=Aadhaar PAN Passport DrivingLicense"`
	GovernmentProofNumber string         `json:"governmentProofNumber" validate:"required"`
	Address               domain.Address `json:"address"`
}

// RegistrationFiles are the stored paths of the registration uploads.
type RegistrationFiles struct {
	Document       string
	ProfilePicture string
}

func (f RegistrationFiles) paths() []string {
	var out []string
	for _, p := range []string{f.Document, f.ProfilePicture} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Session is returned by registration and login.
type Session struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

type AuthUsecase struct {
	users      domain.UserRepository
	tokens     TokenService
	hasher     PasswordHasher
	mailer     domain.Mailer
	properties OwnerLookup
	events     OwnerLookup
	deps       Deps
	logger     *logger.Logger
}

func NewAuthUsecase(users domain.UserRepository, tokens TokenService, hasher PasswordHasher, mailer domain.Mailer, properties, events OwnerLookup, deps Deps) *AuthUsecase {
	deps = deps.withDefaults()
	return &AuthUsecase{
		users:      users,
		tokens:     tokens,
		hasher:     hasher,
		mailer:     mailer,
		properties: properties,
		events:     events,
		deps:       deps,
		logger:     deps.Logger.Named("AuthUsecase"),
	}
}

// Register creates a pending account. Uploaded files are removed again when
// registration fails for any reason.
func (uc *AuthUsecase) Register(ctx context.Context, fields map[string]any, files RegistrationFiles) (*Session, error) {
	session, err := uc.register(ctx, fields, files)
	if err != nil {
		uc.deps.discard(ctx, files.paths())
		return nil, err
	}
	return session, nil
}

func (uc *AuthUsecase) register(ctx context.Context, fields map[string]any, files RegistrationFiles) (*Session, error) {
	var in RegisterInput
	if err := domain.DecodeFields(fields, &in); err != nil {
		return nil, err
	}
	in.Email = strings.ToLower(in.Email)
	if err := domain.Validate(&in); err != nil {
		return nil, err
	}

	if _, err := uc.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hashed, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := uc.deps.Now()
	address := in.Address
	if address.Country == "" {
		address.Country = domain.DefaultCountry
	}
	user := &domain.User{
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Password: hashed,
		Role:     domain.RoleUser,
		GovernmentProof: domain.GovernmentProof{
			Type:     in.GovernmentProofType,
			Number:   in.GovernmentProofNumber,
			Document: files.Document,
		},
		Address:        address,
		ProfilePicture: files.ProfilePicture,
		IsApproved:     false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := uc.mailer.SendWelcome(ctx, user); err != nil {
		uc.logger.Warn("Welcome mail failed", zap.String("userID", user.ID.Hex()), zap.Error(err))
	}
	uc.deps.Metrics.UserRegistered()
	uc.deps.publish(ctx, domain.SubjectUserRegistered, domain.UserEvent{ID: user.ID.Hex(), Email: user.Email})
	uc.logger.Info("User registered", zap.String("userID", user.ID.Hex()))

	token, err := uc.tokens.Issue(user.Identity())
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token}, nil
}

// Login checks the password before the approval state, so an unknown
// account and a wrong password are indistinguishable.
func (uc *AuthUsecase) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		verr := &domain.ValidationError{}
		if email == "" {
			verr.Add("email", "email is required")
		}
		if password == "" {
			verr.Add("password", "password is required")
		}
		return nil, verr
	}

	user, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !uc.hasher.Compare(user.Password, password) {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsApproved {
		return nil, domain.ErrPendingApproval
	}

	token, err := uc.tokens.Issue(user.Identity())
	if err != nil {
		return nil, err
	}
	uc.logger.Info("User logged in", zap.String("userID", user.ID.Hex()))
	return &Session{User: user, Token: token}, nil
}

func (uc *AuthUsecase) Verify(token string) (*domain.Identity, error) {
	return uc.tokens.Verify(token)
}

// Profile returns the caller's account with the ids of the properties and
// events they own.
func (uc *AuthUsecase) Profile(ctx context.Context, actor *domain.Identity) (*domain.Profile, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	user, err := uc.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	properties, err := uc.owned(ctx, uc.properties, user.ID)
	if err != nil {
		return nil, err
	}
	events, err := uc.owned(ctx, uc.events, user.ID)
	if err != nil {
		return nil, err
	}
	return &domain.Profile{User: user, Properties: properties, Events: events}, nil
}

func (uc *AuthUsecase) owned(ctx context.Context, lookup OwnerLookup, id primitive.ObjectID) ([]string, error) {
	if lookup == nil {
		return []string{}, nil
	}
	ids, err := lookup.OwnedIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// AdminSeed describes an administrator account created at startup.
type AdminSeed struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// SeedAdmin creates an approved admin account unless the email is taken.
func (uc *AuthUsecase) SeedAdmin(ctx context.Context, seed AdminSeed) error {
	email := strings.ToLower(strings.TrimSpace(seed.Email))
	if email == "" {
		return nil
	}
	if _, err := uc.users.FindByEmail(ctx, email); err == nil {
		uc.logger.Info("Admin account already present", zap.String("email", email))
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	hashed, err := uc.hasher.Hash(seed.Password)
	if err != nil {
		return err
	}
	now := uc.deps.Now()
	admin := &domain.User{
		Name:       seed.Name,
		Email:      email,
		Phone:      seed.Phone,
		Password:   hashed,
		Role:       domain.RoleAdmin,
		Address:    domain.Address{Country: domain.DefaultCountry},
		IsApproved: true,
		ApprovedAt: &now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.users.Create(ctx, admin); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil
		}
		return fmt.Errorf("seed admin: %w", err)
	}
	uc.logger.Info("Admin account seeded", zap.String("email", email))
	return nil
}
