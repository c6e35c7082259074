package router

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "vet-clinic-api/docs"
	mem "vet-clinic-api/internal/adapters/storage/memory"
	pg "vet-clinic-api/internal/adapters/storage/postgres"
	"vet-clinic-api/internal/auth"
	"vet-clinic-api/internal/config"
	"vet-clinic-api/internal/domain/appointments"
	"vet-clinic-api/internal/domain/owners"
	"vet-clinic-api/internal/domain/pets"
	"vet-clinic-api/internal/domain/users"
	"vet-clinic-api/internal/middleware"
	"vet-clinic-api/internal/platform/lock"
	"vet-clinic-api/internal/platform/mail"
	"vet-clinic-api/internal/platform/metrics"
)

type Options struct {
	Config *config.Config
	Logger *zap.Logger

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: los tests inyectan un mailer propio.
	Mailer mail.Mailer
}

// Services expone los servicios ya cableados, para que main pueda
// sembrar el admin inicial sin repetir la construcción.
type Services struct {
	Users        *users.Service
	Owners       *owners.Service
	Pets         *pets.Service
	Appointments *appointments.Service
}

func NewRouter(opts Options) (http.Handler, *Services) {
	cfg := opts.Config
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(log))
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	var (
		userRepo  users.Repository
		ownerRepo owners.Repository
		petRepo   pets.Repository
		apptRepo  appointments.Repository
	)

	if opts.DB != nil {
		userRepo = pg.NewUsersRepo(opts.DB)
		ownerRepo = pg.NewOwnersRepo(opts.DB)
		petRepo = pg.NewPetsRepo(opts.DB)
		apptRepo = pg.NewAppointmentsRepo(opts.DB)
	} else {
		userRepo = mem.NewUsersRepo()
		ownerRepo = mem.NewOwnersRepo()
		petRepo = mem.NewPetsRepo()
		apptRepo = mem.NewAppointmentsRepo()
	}

	mailer := opts.Mailer
	if mailer == nil {
		mailer = mail.NewLogMailer(log)
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.ResetTokenTTL)

	// Services por módulo. owners y pets se referencian mutuamente
	// vía interfaces, así que owners arranca con nil y se completa después.
	usersSvc := users.NewService(userRepo, tokens, mailer, log, cfg.BaseURL, cfg.Auth.MinPasswordLen)
	ownersSvc := owners.NewService(ownerRepo, nil)
	petsSvc := pets.NewService(petRepo, ownersSvc)
	ownersSvc.SetPetCounter(petsSvc)
	apptsSvc := appointments.NewService(apptRepo, petsSvc, ownersSvc, lock.NewKeyed())

	cookies := users.CookieOptions{
		Secure: cfg.IsProduction(),
		MaxAge: cfg.Auth.AccessTokenTTL,
	}

	r.Route("/api", func(api chi.Router) {
		users.RegisterRoutes(api, usersSvc, cookies)

		api.Group(func(protected chi.Router) {
			protected.Use(middleware.RequireAuth(tokens, usersSvc))

			users.RegisterProtectedRoutes(protected, usersSvc)
			owners.RegisterRoutes(protected, ownersSvc)
			pets.RegisterRoutes(protected, petsSvc)
			appointments.RegisterRoutes(protected, apptsSvc)

			protected.Group(func(admin chi.Router) {
				admin.Use(middleware.RequireAdmin(usersSvc))
				users.RegisterAdminRoutes(admin, usersSvc)
			})
		})
	})

	return r, &Services{
		Users:        usersSvc,
		Owners:       ownersSvc,
		Pets:         petsSvc,
		Appointments: apptsSvc,
	}
}
