package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/domain"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/middleware"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/upload"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/usecase"
)

type AuthHandler struct {
	uc      *usecase.AuthUsecase
	policy  upload.Policy
	storage domain.FileStorage
	rs      *Responder
}

func NewAuthHandler(uc *usecase.AuthUsecase, storage domain.FileStorage, maxImageSize, maxDocumentSize int64, rs *Responder) *AuthHandler {
	return &AuthHandler{
		uc:      uc,
		policy:  upload.Registration(maxImageSize, maxDocumentSize),
		storage: storage,
		rs:      rs,
	}
}

// Register accepts multipart (with document and profile picture) or JSON.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var (
		fields map[string]any
		files  usecase.RegistrationFiles
	)
	if isMultipart(r) {
		res, err := h.policy.Process(w, r, h.storage)
		if err != nil {
			h.rs.Error(w, r, err)
			return
		}
		fields = formFields(res.Values)
		files = usecase.RegistrationFiles{
			Document:       res.First(upload.DocumentField),
			ProfilePicture: res.First(upload.ProfileField),
		}
	} else {
		var err error
		if fields, err = decodeJSONMap(w, r); err != nil {
			h.rs.Error(w, r, err)
			return
		}
	}

	session, err := h.uc.Register(r.Context(), fields, files)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusCreated, map[string]any{
		"message": "Registration successful. Your account is pending admin approval.",
		"user":    session.User,
		"token":   session.Token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	session, err := h.uc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   session.Token,
		"user":    session.User,
	})
}

// Verify echoes the identity carried by a valid token. JWTAuth has already
// rejected bad tokens by the time it runs.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		h.rs.Error(w, r, domain.ErrUnauthorized)
		return
	}
	h.rs.JSON(w, http.StatusOK, map[string]any{"valid": true, "user": identity})
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.uc.Profile(r.Context(), middleware.IdentityFromContext(r.Context()))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, map[string]any{"user": profile})
}
