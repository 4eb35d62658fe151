package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/Almer24/it-ticketing-system/internal/cache"
	"github.com/Almer24/it-ticketing-system/internal/config"
	"github.com/Almer24/it-ticketing-system/internal/handlers"
	"github.com/Almer24/it-ticketing-system/internal/middleware"
	"github.com/Almer24/it-ticketing-system/internal/models"
	"github.com/Almer24/it-ticketing-system/internal/repository/postgres"
	"github.com/Almer24/it-ticketing-system/internal/service"
	"github.com/Almer24/it-ticketing-system/internal/storage"
)

func New(log zerolog.Logger, db *pgxpool.Pool, photos storage.PhotoStore, c cache.Cache, cfg config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(httprate.LimitByIP(200, time.Minute))
	r.Use(middleware.WithAuth(cfg))

	// Health
	r.Get("/healthz", handlers.Health())

	// Repos + services + handlers
	ticketRepo := postgres.NewTicketRepo(db)
	userRepo := postgres.NewUserRepo(db)

	ticketSvc := service.NewTicketService(ticketRepo, userRepo, photos, log, cfg)
	userSvc := service.NewUserService(userRepo, cfg.ITCanManage)
	authSvc := service.NewAuthService(userRepo, cfg.SessionSecret)

	ah := handlers.NewAuthHTTP(authSvc, userRepo)
	th := handlers.NewTicketHTTP(ticketSvc, photos, log)
	uh := handlers.NewUserHTTP(userSvc)
	rh := handlers.NewReportsHTTP(ticketRepo, c, log)

	staffRoles := []string{models.RoleAdmin}
	if cfg.ITCanManage {
		staffRoles = append(staffRoles, models.RoleIT)
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", ah.Register())
		r.Post("/login", ah.Login())
		r.Post("/logout", ah.Logout())
		r.With(middleware.RequireAuth).Get("/me", ah.Me())
	})

	r.Route("/api/tickets", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", th.List())
		r.Post("/", th.Create())
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", th.Get())
			r.Delete("/", th.Delete())
			r.Post("/notes", th.AddNote())
			r.Post("/photo", th.UploadPhoto())
			r.With(middleware.RequireRoles(staffRoles...)).Patch("/status", th.ChangeStatus())
			r.With(middleware.RequireRoles(staffRoles...)).Patch("/assignee", th.Assign())
		})
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequireRoles(staffRoles...)).Get("/", uh.List())
		r.With(middleware.RequireRoles(staffRoles...)).Post("/", uh.Create())
		r.Route("/{id}", func(r chi.Router) {
			r.With(middleware.RequireSelfOrRoles(staffRoles...)).Get("/", uh.Get())
			r.With(middleware.RequireRoles(staffRoles...)).Put("/", uh.Update())
			r.With(middleware.RequireRoles(staffRoles...)).Delete("/", uh.Delete())
		})
	})

	r.Route("/api/reports", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequireRoles(staffRoles...)).Get("/summary", rh.Summary())
	})

	return r
}
