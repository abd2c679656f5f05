package service

import (
	"context"
	"fmt"
	"time"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/cache"
	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/models"
	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/recommend"
	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/repository"
)

type RatingService struct {
	ratings   *repository.RatingRepository
	movies    *repository.MovieRepository
	watchlist *repository.WatchlistRepository
	engine    *recommend.Engine
}

func NewRatingService(
	r *repository.RatingRepository,
	m *repository.MovieRepository,
	w *repository.WatchlistRepository,
	engine *recommend.Engine,
) *RatingService {
	return &RatingService{
		ratings:   r,
		movies:    m,
		watchlist: w,
		engine:    engine,
	}
}

// AddOrUpdate registra la valoración a través del motor (que mantiene
// contadores de preferencias y el dirty set) y mantiene los stats agregados
// de la película de forma incremental. Devuelve los componentes de score que
// quedaron pendientes de recálculo.
func (s *RatingService) AddOrUpdate(ctx context.Context, userID, movieID int, rating float64) (recommend.ComponentSet, error) {
	// 1) Ver si ya existía un rating previo (para los stats)
	prev, err := s.ratings.Get(ctx, userID, movieID)
	if err != nil {
		return 0, err
	}
	countedBefore := prev.HasValue() && !prev.Ignored

	// 2) El motor hace el upsert, ajusta contadores y marca el dirty set
	dirty, err := s.engine.RecordRating(ctx, userID, movieID, rating)
	if err != nil {
		return 0, err
	}

	// 3) Actualizar stats de la película
	movie, err := s.movies.Movie(ctx, movieID)
	if err != nil {
		return 0, err
	}
	if movie == nil {
		return 0, fmt.Errorf("movie %d no encontrada", movieID)
	}

	if movie.RatingStats == nil {
		movie.RatingStats = &models.RatingStats{}
	}
	rs := movie.RatingStats

	// fórmula incremental sobre el promedio anterior
	if !countedBefore {
		total := rs.Average*float64(rs.Count) + rating
		rs.Count++
		rs.Average = total / float64(rs.Count)
	} else if rs.Count > 0 {
		total := rs.Average*float64(rs.Count) - *prev.Rating + rating
		rs.Average = total / float64(rs.Count)
		// rs.Count no cambia
	}
	rs.LastRatedAt = time.Now().UTC().Format(time.RFC3339)

	if err := s.movies.UpdateRatingStats(ctx, movieID, *rs); err != nil {
		return 0, err
	}

	// 4) Reflejar en la watchlist e invalidar rankings cacheados
	if err := s.watchlist.SetFlags(ctx, userID, movieID, true, false); err != nil {
		return 0, err
	}
	cache.BumpUserVersion(ctx, userID)

	return dirty, nil
}

// Ignore marca la película para que no vuelva a aparecer en recomendaciones.
// Si tenía valoración, se descuenta de los stats de la película.
func (s *RatingService) Ignore(ctx context.Context, userID, movieID int) (recommend.ComponentSet, error) {
	prev, err := s.ratings.Get(ctx, userID, movieID)
	if err != nil {
		return 0, err
	}
	countedBefore := prev.HasValue() && !prev.Ignored

	dirty, err := s.engine.RecordIgnore(ctx, userID, movieID)
	if err != nil {
		return 0, err
	}

	if countedBefore {
		if err := s.subtractFromStats(ctx, movieID, *prev.Rating); err != nil {
			return 0, err
		}
	}

	if err := s.watchlist.SetFlags(ctx, userID, movieID, countedBefore, true); err != nil {
		return 0, err
	}
	cache.BumpUserVersion(ctx, userID)

	return dirty, nil
}

// Unignore revierte un ignore; una valoración conservada vuelve a contar en
// los stats de la película.
func (s *RatingService) Unignore(ctx context.Context, userID, movieID int) (recommend.ComponentSet, error) {
	prev, err := s.ratings.Get(ctx, userID, movieID)
	if err != nil {
		return 0, err
	}
	wasIgnoredValue := prev.HasValue() && prev.Ignored

	dirty, err := s.engine.RecordUnignore(ctx, userID, movieID)
	if err != nil {
		return 0, err
	}

	if wasIgnoredValue {
		if err := s.addToStats(ctx, movieID, *prev.Rating); err != nil {
			return 0, err
		}
	}

	if err := s.watchlist.SetFlags(ctx, userID, movieID, wasIgnoredValue, false); err != nil {
		return 0, err
	}
	cache.BumpUserVersion(ctx, userID)

	return dirty, nil
}

func (s *RatingService) subtractFromStats(ctx context.Context, movieID int, rating float64) error {
	movie, err := s.movies.Movie(ctx, movieID)
	if err != nil || movie == nil || movie.RatingStats == nil || movie.RatingStats.Count == 0 {
		return err
	}
	rs := movie.RatingStats
	total := rs.Average*float64(rs.Count) - rating
	rs.Count--
	if rs.Count > 0 {
		rs.Average = total / float64(rs.Count)
	} else {
		rs.Average = 0
	}
	return s.movies.UpdateRatingStats(ctx, movieID, *rs)
}

func (s *RatingService) addToStats(ctx context.Context, movieID int, rating float64) error {
	movie, err := s.movies.Movie(ctx, movieID)
	if err != nil || movie == nil {
		return err
	}
	if movie.RatingStats == nil {
		movie.RatingStats = &models.RatingStats{}
	}
	rs := movie.RatingStats
	total := rs.Average*float64(rs.Count) + rating
	rs.Count++
	rs.Average = total / float64(rs.Count)
	return s.movies.UpdateRatingStats(ctx, movieID, *rs)
}

func (s *RatingService) GetByUser(ctx context.Context, userID, limit, offset int) ([]models.RatingDoc, error) {
	return s.ratings.ByUser(ctx, userID, limit, offset)
}

func (s *RatingService) GetIgnoredByUser(ctx context.Context, userID int) ([]models.RatingDoc, error) {
	return s.ratings.IgnoredByUser(ctx, userID)
}
