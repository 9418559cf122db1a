package routes

import (
	_ "embed"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Dosada05/fifa-tournament/handlers"
	"github.com/Dosada05/fifa-tournament/middleware"
)

//go:embed openapi.json
var openAPIDocument []byte

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

func SetupRoutes(
	router *chi.Mux,
	opts Options,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	exportHandler *handlers.ExportHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/ws", webSocketHandler.ServeWs)

	router.Get("/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(openAPIDocument)
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/openapi.json")))

	if opts.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	router.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Post("/auth/login", authHandler.Login)

		r.Get("/standings", tournamentHandler.GetStandings)
		r.Get("/roster", tournamentHandler.GetRoster)
		r.Get("/schedule", tournamentHandler.GetSchedule)
		r.Get("/snapshot", tournamentHandler.GetSnapshot)
		r.Get("/export/standings.xlsx", exportHandler.StandingsWorkbook)

		r.Route("/teams/usage", func(r chi.Router) {
			r.Get("/", tournamentHandler.GetTeamUsage)
			r.Get("/{player}", tournamentHandler.GetPlayerTeamUsage)
		})

		r.Route("/matches/{matchID}", func(r chi.Router) {
			r.Get("/options", tournamentHandler.GetMatchOptions)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Authenticate(opts.JWTSecret))
				r.Use(middleware.Authorize(handlers.EditorRole))
				r.Put("/", tournamentHandler.UpdateMatchResult)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Authenticate(opts.JWTSecret))
			r.Use(middleware.Authorize(handlers.EditorRole))
			r.Post("/initialize", tournamentHandler.Initialize)
			r.Post("/fixtures", tournamentHandler.GenerateFixtures)
		})
	})
}
