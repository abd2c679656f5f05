package recommend

import (
	"context"
	"sort"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/models"
)

// Snapshot es la vista del catálogo para una petición: se construye una vez
// y se pasa explícitamente a cada cálculo en lugar de mantener listas de ids
// en estado global.
type Snapshot struct {
	Movies []models.MovieDoc
	byID   map[int]*models.MovieDoc

	// géneros distintos listados en el catálogo, ordenados
	Genres []string
	// máximo de valoraciones de una película en el catálogo (guardia de
	// división por cero: puede ser 0)
	MaxRatingCount int
}

func (e *Engine) Snapshot(ctx context.Context) (*Snapshot, error) {
	movies, err := e.catalog.AllMovies(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(movies, func(i, j int) bool { return movies[i].MovieID < movies[j].MovieID })

	snap := &Snapshot{
		Movies: movies,
		byID:   make(map[int]*models.MovieDoc, len(movies)),
	}

	genreSet := map[string]struct{}{}
	for i := range movies {
		m := &movies[i]
		snap.byID[m.MovieID] = m
		if c := m.RatingCount(); c > snap.MaxRatingCount {
			snap.MaxRatingCount = c
		}
		for _, g := range m.ListedGenres() {
			genreSet[g] = struct{}{}
		}
	}
	for g := range genreSet {
		snap.Genres = append(snap.Genres, g)
	}
	sort.Strings(snap.Genres)

	return snap, nil
}

func (s *Snapshot) Movie(id int) *models.MovieDoc {
	return s.byID[id]
}

// MovieIDs devuelve los ids del catálogo en orden ascendente.
func (s *Snapshot) MovieIDs() []int {
	ids := make([]int, len(s.Movies))
	for i := range s.Movies {
		ids[i] = s.Movies[i].MovieID
	}
	return ids
}
