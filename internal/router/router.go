package router

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/config"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/domain"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/handler"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/middleware"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/platform/logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

// bookable listing handlers also serve POST /{id}/book.
type bookable interface {
	Book(w http.ResponseWriter, r *http.Request)
}

// ListingRoutes is implemented by every listing handler.
type ListingRoutes interface {
	Kind() *domain.Kind
	List(w http.ResponseWriter, r *http.Request)
	Mine(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	Listings     []ListingRoutes
	Auth         *handler.AuthHandler
	Admin        *handler.AdminHandler
	Notification *handler.NotificationHandler
	Health       *handler.HealthHandler
}

type Options struct {
	Config   *config.Config
	Logger   *logger.Logger
	Verifier middleware.TokenVerifier
	// Metrics is nil when metrics are disabled.
	Metrics interface {
		middleware.HTTPObserver
		Handler() http.Handler
	}
	// Redis is nil when no Redis is configured; rate limiting is then in-process.
	Redis *redis.Client
	// UploadRoot is the local directory served under /uploads. Empty disables static serving.
	UploadRoot string
}

func New(h Handlers, opts Options) http.Handler {
	cfg := opts.Config
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Tracing)
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
	}
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	if cfg.Server.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.Server.RequestTimeout))
	}

	requireAuth := middleware.JWTAuth(opts.Verifier)

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.RateLimit(opts.Redis, cfg.RateLimit.Max, cfg.RateLimit.Window, opts.Logger))

		api.Get("/health", h.Health.Health)

		api.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", h.Auth.Register)
			ar.Post("/login", h.Auth.Login)
			ar.With(requireAuth).Get("/verify", h.Auth.Verify)
			ar.With(requireAuth).Get("/profile", h.Auth.Profile)
		})

		for _, lh := range h.Listings {
			mountListing(api, lh, requireAuth)
		}

		api.Route("/admin", func(ad chi.Router) {
			ad.Use(requireAuth, middleware.RequireAdmin)
			ad.Get("/pending-users", h.Admin.PendingUsers)
			ad.Get("/users", h.Admin.ListUsers)
			ad.Post("/approve/{id}", h.Admin.Approve)
			ad.Post("/reject/{id}", h.Admin.Reject)
			ad.Get("/stats", h.Admin.Stats)
			ad.Patch("/listings/{kind}/{id}/approval", h.Admin.SetListingApproval)
		})

		api.Route("/notifications", func(nr chi.Router) {
			nr.Post("/whatsapp", h.Notification.WhatsApp)
			nr.Post("/call", h.Notification.Call)
		})
	})

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}
	if opts.UploadRoot != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(opts.UploadRoot)))
		r.Handle("/uploads/*", cacheStatic(fs))
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Route not found"}`))
	})
	return r
}

// mountListing registers the CRUD routes of one listing type. Mutations of
// owner-scoped types require a token.
func mountListing(api chi.Router, lh ListingRoutes, requireAuth func(http.Handler) http.Handler) {
	kind := lh.Kind()
	api.Route("/"+kind.Route, func(lr chi.Router) {
		lr.Get("/", lh.List)
		lr.Get("/{id}", lh.Get)
		if b, ok := lh.(bookable); ok {
			lr.Post("/{id}/book", b.Book)
		}

		mutate := lr
		if kind.OwnerScoped() {
			mutate = lr.With(requireAuth)
			mutate.Get("/mine", lh.Mine)
		}
		mutate.Post("/", lh.Create)
		mutate.Put("/{id}", lh.Update)
		mutate.Delete("/{id}", lh.Delete)
	})
}

func cacheStatic(next http.Handler) http.Handler {
	maxAge := "public, max-age=" + strconv.Itoa(int((24 * time.Hour).Seconds()))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", maxAge)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		next.ServeHTTP(w, r)
	})
}
