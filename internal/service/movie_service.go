// internal/service/movie_service.go
package service

import (
	"context"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/models"
	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/repository"
)

type MovieService struct {
	movies *repository.MovieRepository
}

func NewMovieService(m *repository.MovieRepository) *MovieService {
	return &MovieService{movies: m}
}

func (s *MovieService) GetMovie(ctx context.Context, id int) (*models.MovieDoc, error) {
	return s.movies.Movie(ctx, id)
}

func (s *MovieService) Search(
	ctx context.Context,
	q, genre string,
	decade, limit, offset int,
) ([]models.MovieDoc, error) {
	return s.movies.Search(ctx, q, genre, decade, limit, offset)
}

func (s *MovieService) Top(ctx context.Context, metric string, limit int) ([]models.MovieDoc, error) {
	return s.movies.Top(ctx, metric, limit)
}

func (s *MovieService) Genres(ctx context.Context) ([]string, error) {
	return s.movies.DistinctGenres(ctx)
}
