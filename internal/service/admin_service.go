package service

import (
	"context"
	"log"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/cache"
	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/db"
	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/recommend"
	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
)

// AdminService orquesta el mantenimiento del sistema de scores.
type AdminService struct {
	movies *repository.MovieRepository
	users  *repository.UserRepository
	engine *recommend.Engine
}

func NewAdminService(
	m *repository.MovieRepository,
	u *repository.UserRepository,
	engine *recommend.Engine,
) *AdminService {
	return &AdminService{movies: m, users: u, engine: engine}
}

// ---------------------- SUMMARY ----------------------

type ScoresSummary struct {
	TotalUsers       int64 `json:"totalUsers"`
	InitializedUsers int64 `json:"initializedUsers"`
	TotalMovies      int64 `json:"totalMovies"`
	TotalRatings     int64 `json:"totalRatings"`
	IgnoredRatings   int64 `json:"ignoredRatings"`
	ScoreRows        int64 `json:"scoreRows"`
}

// GetScoresSummary devuelve el resumen global del estado de los scores.
func (s *AdminService) GetScoresSummary(ctx context.Context) (*ScoresSummary, error) {
	mdb := db.DB()

	totalUsers, err := mdb.Collection("users").CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	initializedUsers, err := mdb.Collection("users").CountDocuments(ctx, bson.M{"initializedScores": true})
	if err != nil {
		return nil, err
	}
	totalMovies, err := mdb.Collection("movies").CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	totalRatings, err := mdb.Collection("ratings").CountDocuments(ctx, bson.M{
		"ignored": false,
		"rating":  bson.M{"$exists": true, "$ne": nil},
	})
	if err != nil {
		return nil, err
	}
	ignoredRatings, err := mdb.Collection("ratings").CountDocuments(ctx, bson.M{"ignored": true})
	if err != nil {
		return nil, err
	}
	scoreRows, err := mdb.Collection("recommendation_scores").CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	return &ScoresSummary{
		TotalUsers:       totalUsers,
		InitializedUsers: initializedUsers,
		TotalMovies:      totalMovies,
		TotalRatings:     totalRatings,
		IgnoredRatings:   ignoredRatings,
		ScoreRows:        scoreRows,
	}, nil
}

// ---------------------- REBUILD ----------------------

// RebuildMovieStats recalcula ratingStats de todo el catálogo desde los
// ratings crudos, corrigiendo la deriva del mantenimiento incremental.
func (s *AdminService) RebuildMovieStats(ctx context.Context) (int, error) {
	updated, err := s.movies.RebuildStats(ctx)
	if err != nil {
		return updated, err
	}
	log.Printf("[admin] ratingStats recalculados para %d películas", updated)
	return updated, nil
}

// RebuildUserScores marca los cinco componentes del usuario como pendientes
// e invalida su cache; el recálculo ocurre en su próxima petición de
// recomendaciones.
func (s *AdminService) RebuildUserScores(ctx context.Context, userID int) error {
	if err := s.engine.InitializeUser(ctx, userID); err != nil {
		return err
	}
	cache.BumpUserVersion(ctx, userID)
	log.Printf("[admin] scores del usuario %d marcados para recálculo", userID)
	return nil
}

// RebuildAllUserScores marca a todos los usuarios inicializados.
func (s *AdminService) RebuildAllUserScores(ctx context.Context) (int, error) {
	ids, err := s.users.AllIDs(ctx)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		s.engine.Coordinator().Mark(id, recommend.AllComponents)
		cache.BumpUserVersion(ctx, id)
	}
	return len(ids), nil
}
