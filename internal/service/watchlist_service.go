package service

import (
	"context"
	"fmt"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/models"
	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/repository"
)

type WatchlistService struct {
	watchlist *repository.WatchlistRepository
	movies    *repository.MovieRepository
	ratings   *repository.RatingRepository
}

func NewWatchlistService(
	w *repository.WatchlistRepository,
	m *repository.MovieRepository,
	r *repository.RatingRepository,
) *WatchlistService {
	return &WatchlistService{watchlist: w, movies: m, ratings: r}
}

func (s *WatchlistService) Add(ctx context.Context, userID, movieID int) error {
	movie, err := s.movies.Movie(ctx, movieID)
	if err != nil {
		return err
	}
	if movie == nil {
		return fmt.Errorf("movie %d no encontrada", movieID)
	}
	if err := s.watchlist.Add(ctx, userID, movieID); err != nil {
		return err
	}

	// si ya estaba valorada o ignorada, los flags se reflejan al agregar
	prev, err := s.ratings.Get(ctx, userID, movieID)
	if err != nil {
		return err
	}
	if prev != nil {
		rated := prev.HasValue() && !prev.Ignored
		return s.watchlist.SetFlags(ctx, userID, movieID, rated, prev.Ignored)
	}
	return nil
}

func (s *WatchlistService) Remove(ctx context.Context, userID, movieID int) error {
	return s.watchlist.Remove(ctx, userID, movieID)
}

type WatchlistItem struct {
	Entry models.WatchlistEntry `json:"entry"`
	Movie *models.MovieDoc      `json:"movie"`
}

// List devuelve la watchlist con las películas resueltas, preservando el
// orden (más recientes primero).
func (s *WatchlistService) List(ctx context.Context, userID int) ([]WatchlistItem, error) {
	entries, err := s.watchlist.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]WatchlistItem, 0, len(entries))
	for _, e := range entries {
		movie, err := s.movies.Movie(ctx, e.MovieID)
		if err != nil {
			return nil, err
		}
		out = append(out, WatchlistItem{Entry: e, Movie: movie})
	}
	return out, nil
}
