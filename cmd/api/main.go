package main

import (
	"log"
	"net/http"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/cache"
	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/config"
	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/db"
	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/handler"
	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/recommend"
	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/repository"
	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Movie Recommender API
// @version 1.0
// @description API de recomendación de películas (scores híbridos, Mongo, Redis)
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	// Mongo y Redis
	db.InitMongo(cfg)
	cache.InitRedis(cfg)

	// repos
	userRepo := repository.NewUserRepository()
	movieRepo := repository.NewMovieRepository()
	ratingRepo := repository.NewRatingRepository()
	prefRepo := repository.NewPreferenceRepository()
	scoreRepo := repository.NewScoreRepository()
	recRepo := repository.NewRecommendationRepository()
	watchlistRepo := repository.NewWatchlistRepository()

	// motor de scores: calcula y recalcula los componentes por usuario
	engine := recommend.New(movieRepo, ratingRepo, prefRepo, scoreRepo, recommend.Params{
		MaxNeighborDistance: cfg.MaxNeighborDistance,
		MinHistory:          cfg.MinRatingsForPersonal,
		LikedThreshold:      cfg.LikedThreshold,
	})

	// services
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret)
	movieSvc := service.NewMovieService(movieRepo)
	ratingSvc := service.NewRatingService(ratingRepo, movieRepo, watchlistRepo, engine)
	prefSvc := service.NewPreferenceService(prefRepo, movieRepo, engine)
	recSvc := service.NewRecommendService(engine, userRepo, recRepo)
	watchlistSvc := service.NewWatchlistService(watchlistRepo, movieRepo, ratingRepo)
	adminSvc := service.NewAdminService(movieRepo, userRepo, engine)

	// handlers
	authH := handler.NewAuthHandler(authSvc)
	movieH := handler.NewMovieHandler(movieSvc)
	ratingH := handler.NewRatingHandler(ratingSvc)
	prefH := handler.NewPreferenceHandler(prefSvc)
	recH := handler.NewRecommendHandler(recSvc)
	watchlistH := handler.NewWatchlistHandler(watchlistSvc)
	adminH := handler.NewAdminHandler(adminSvc)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// =============
	// Rutas públicas
	// =============
	r.Get("/health", handler.Health)

	r.Post("/auth/register", authH.Register)
	r.Post("/auth/login", authH.Login)

	// Películas (públicas)
	r.Get("/movies/search", movieH.Search)
	r.Get("/movies/top", movieH.Top)
	r.Get("/movies/genres", movieH.Genres)
	r.Get("/movies/{id}", movieH.GetMovie)

	// ===========================
	// Rutas protegidas con JWT
	// ===========================
	authMw := handler.JWTAuth(cfg.JWTSecret)

	r.Group(func(r chi.Router) {
		r.Use(authMw)

		// ---- Endpoints /me (USER normal) ----
		r.Route("/me", func(r chi.Router) {
			r.Get("/ratings", ratingH.GetMyRatings)
			r.Post("/ratings", ratingH.PostMyRating)

			r.Get("/ignored", ratingH.GetMyIgnored)
			r.Post("/ignored/{movieId}", ratingH.Ignore)
			r.Delete("/ignored/{movieId}", ratingH.Unignore)

			r.Get("/recommendations", recH.GetMyRecommendations)
			r.Get("/recommendations/history", recH.GetMyHistory)
			r.Get("/recommendations/filtered", recH.GetMyFiltered)

			r.Get("/preferences", prefH.GetProfile)
			r.Get("/preferences/survey", prefH.GetSurvey)
			r.Post("/preferences/survey", prefH.PostSurvey)
			r.Get("/preferences/extracted", prefH.GetExtracted)

			r.Get("/watchlist", watchlistH.List)
			r.Post("/watchlist/{movieId}", watchlistH.Add)
			r.Delete("/watchlist/{movieId}", watchlistH.Remove)
		})

		// ---- Endpoints solo ADMIN ----
		r.Group(func(r chi.Router) {
			r.Use(handler.AdminOnly())

			// edición de usuario
			r.Put("/users/{id}/update", authH.UpdateUser)

			// ratings y recomendaciones de cualquier usuario
			r.Route("/users/{id}", func(r chi.Router) {
				r.Get("/", authH.GetUserByID)

				r.Get("/ratings", ratingH.GetRatings)
				r.Post("/ratings", ratingH.PostRating)

				// HTTP normal
				r.Get("/recommendations", recH.GetRecommendations)

				// WebSocket
				r.Get("/ws/recommendations", recH.GetRecommendationsWS)
			})

			// --- mantenimiento de scores / stats ---
			handler.MountAdminRoutes(r, adminH)
		})
	})

	// Swagger UI
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	log.Printf("HTTP escuchando en :%s", cfg.HTTPPort)
	log.Fatal(http.ListenAndServe(":"+cfg.HTTPPort, r))
}
