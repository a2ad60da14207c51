package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ligapro/liga-backend/handlers"
	"github.com/ligapro/liga-backend/middleware"
	"github.com/ligapro/liga-backend/models"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	memberHandler *handlers.MemberHandler,
	clubHandler *handlers.ClubHandler,
	tournamentHandler *handlers.TournamentHandler,
	gameHandler *handlers.GameHandler,
	rankingHandler *handlers.RankingHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate([]byte(jwtSecret))
	organizersOnly := middleware.Authorize(models.RoleOrganizer, models.RoleAdmin)

	router.Post("/users/signup", authHandler.SignUpHandler)
	router.Post("/users/signin", authHandler.SignInHandler)

	router.Get("/ranking/system", rankingHandler.SystemHandler)

	router.Route("/clubs", func(r chi.Router) {
		r.Get("/", clubHandler.ListHandler)
		r.Get("/{clubID}", clubHandler.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, organizersOnly)
			r.Post("/", clubHandler.CreateHandler)
			r.Post("/{clubID}/logo", clubHandler.UploadLogoHandler)
		})
	})

	router.Route("/members", func(r chi.Router) {
		r.Get("/", memberHandler.ListHandler)
		r.Get("/{memberID}", memberHandler.GetByIDHandler)
		r.Get("/{memberID}/ranking-history", memberHandler.RankingHistoryHandler)
		r.Get("/{memberID}/ranking-history/detailed", memberHandler.RankingHistoryDetailedHandler)
		r.Get("/{memberID}/ranking-stats", memberHandler.RankingStatsHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, organizersOnly)
			r.Post("/", memberHandler.CreateHandler)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		// Публичные маршруты просмотра
		r.Get("/", tournamentHandler.ListHandler)
		r.Get("/{tournamentID}", tournamentHandler.GetByIDHandler)
		r.Get("/{tournamentID}/members", tournamentHandler.ListMembersHandler)
		r.Get("/{tournamentID}/bracket", tournamentHandler.GetBracketHandler)
		r.Get("/{tournamentID}/standings", tournamentHandler.StandingsHandler)

		// Управление турниром — только организаторы
		r.Group(func(r chi.Router) {
			r.Use(authenticate, organizersOnly)
			r.Post("/", tournamentHandler.CreateHandler)
			r.Delete("/{tournamentID}", tournamentHandler.DeleteHandler)
			r.Post("/{tournamentID}/members", tournamentHandler.RegisterMemberHandler)
			r.Post("/{tournamentID}/bracket", tournamentHandler.GenerateBracketHandler)
			r.Post("/{tournamentID}/image", tournamentHandler.UploadImageHandler)
		})
	})

	router.Route("/games", func(r chi.Router) {
		r.Get("/{gameID}", gameHandler.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, organizersOnly)
			r.Put("/{gameID}/result", gameHandler.RecordResultHandler)
		})
	})
}
