package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/morhendos/tenis-del-parque/handlers"
	"github.com/morhendos/tenis-del-parque/middleware"
	"github.com/morhendos/tenis-del-parque/models"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	playerHandler *handlers.PlayerHandler,
	leagueHandler *handlers.LeagueHandler,
	matchHandler *handlers.MatchHandler,
	standingsHandler *handlers.StandingsHandler,
	playoffHandler *handlers.PlayoffHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate([]byte(jwtSecret))
	adminOnly := middleware.Authorize(models.RoleAdmin)

	router.Post("/auth/register", authHandler.RegisterHandler)
	router.Post("/auth/login", authHandler.LoginHandler)

	router.Route("/players", func(r chi.Router) {
		r.Get("/", playerHandler.ListHandler)
		r.Get("/{playerID}", playerHandler.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{playerID}/photo", playerHandler.UploadPhotoHandler)
		})
	})

	router.Route("/leagues", func(r chi.Router) {
		r.Get("/", leagueHandler.ListHandler)
		r.Get("/{leagueID}", leagueHandler.GetByIDHandler)
		r.Get("/{leagueID}/standings", standingsHandler.GetHandler)
		r.Get("/{leagueID}/matches", matchHandler.ListByLeagueHandler)
		r.Get("/{leagueID}/registrations", leagueHandler.ListRegistrationsHandler)
		r.Get("/{leagueID}/playoffs", playoffHandler.GetBracketHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{leagueID}/registrations", leagueHandler.RegisterHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)
			r.Post("/", leagueHandler.CreateHandler)
			r.Patch("/{leagueID}/status", leagueHandler.UpdateStatusHandler)
			r.Post("/{leagueID}/logo", leagueHandler.UploadLogoHandler)
			r.Patch("/{leagueID}/registrations/{playerID}", leagueHandler.UpdateRegistrationStatusHandler)
			r.Post("/{leagueID}/registrations/recalculate", leagueHandler.RecalculateStatsHandler)
			r.Post("/{leagueID}/rounds", leagueHandler.GenerateRoundHandler)
			r.Post("/{leagueID}/playoffs", playoffHandler.InitializeHandler)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", matchHandler.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{matchID}/result", matchHandler.RecordResultHandler)
			r.Patch("/{matchID}/schedule", matchHandler.UpdateScheduleHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)
			r.Delete("/{matchID}/result", matchHandler.ReverseResultHandler)
			r.Post("/{matchID}/postpone", matchHandler.PostponeHandler)
			r.Post("/{matchID}/cancel", matchHandler.CancelHandler)
			r.Post("/{matchID}/restore", matchHandler.RestoreHandler)
		})
	})

	router.Get("/ws/leagues/{leagueID}", webSocketHandler.ServeWs)
}
