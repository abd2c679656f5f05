package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/cache"
	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/models"
	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/recommend"
	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/repository"
)

// umbrales para considerar un género "preferido" a partir del historial
const (
	extractMinLikeRatio = 0.7
	extractMinSeen      = 4
)

type PreferenceService struct {
	prefs  *repository.PreferenceRepository
	movies *repository.MovieRepository
	engine *recommend.Engine
}

func NewPreferenceService(
	p *repository.PreferenceRepository,
	m *repository.MovieRepository,
	engine *recommend.Engine,
) *PreferenceService {
	return &PreferenceService{prefs: p, movies: m, engine: engine}
}

// SubmitSurvey reemplaza las respuestas de la encuesta. Un género no puede
// estar incluido y excluido a la vez.
func (s *PreferenceService) SubmitSurvey(ctx context.Context, userID int, included, excluded []string) (recommend.ComponentSet, error) {
	inSet := make(map[string]bool, len(included))
	for _, g := range included {
		inSet[g] = true
	}
	for _, g := range excluded {
		if inSet[g] {
			return 0, fmt.Errorf("género %q incluido y excluido a la vez", g)
		}
	}

	// solo géneros que existen en el catálogo
	known, err := s.movies.DistinctGenres(ctx)
	if err != nil {
		return 0, err
	}
	knownSet := make(map[string]bool, len(known))
	for _, g := range known {
		knownSet[g] = true
	}
	for _, g := range append(append([]string{}, included...), excluded...) {
		if !knownSet[g] {
			return 0, fmt.Errorf("género desconocido: %q", g)
		}
	}

	dirty, err := s.engine.SubmitSurvey(ctx, userID, included, excluded)
	if err != nil {
		return 0, err
	}
	cache.BumpUserVersion(ctx, userID)
	return dirty, nil
}

type SurveyState struct {
	Included []string `json:"included"`
	Excluded []string `json:"excluded"`
}

func (s *PreferenceService) GetSurvey(ctx context.Context, userID int) (*SurveyState, error) {
	included, excluded, err := s.engine.SurveyPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.Strings(included)
	sort.Strings(excluded)
	return &SurveyState{Included: included, Excluded: excluded}, nil
}

type GenreProfile struct {
	Genre    string          `json:"genre"`
	Survey   string          `json:"survey"`
	Counters models.Counters `json:"counters"`
}

type DecadeProfile struct {
	Decade   int             `json:"decade"`
	Counters models.Counters `json:"counters"`
}

// Profile devuelve los contadores crudos del usuario, ordenados para que la
// salida sea estable.
func (s *PreferenceService) Profile(ctx context.Context, userID int) ([]GenreProfile, []DecadeProfile, error) {
	genres, err := s.prefs.GenresByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	decades, err := s.prefs.DecadesByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	gp := make([]GenreProfile, 0, len(genres))
	for _, g := range genres {
		gp = append(gp, GenreProfile{Genre: g.Genre, Survey: g.Survey.String(), Counters: g.Counters})
	}
	sort.Slice(gp, func(i, j int) bool { return gp[i].Genre < gp[j].Genre })

	dp := make([]DecadeProfile, 0, len(decades))
	for _, d := range decades {
		dp = append(dp, DecadeProfile{Decade: d.Decade, Counters: d.Counters})
	}
	sort.Slice(dp, func(i, j int) bool { return dp[i].Decade < dp[j].Decade })

	return gp, dp, nil
}

// ExtractedPreferences son las preferencias derivadas del historial: géneros
// y décadas que al usuario le gustaron (o disgustaron) en al menos el 70% de
// las valoraciones, con un mínimo de 4 vistas.
type ExtractedPreferences struct {
	LikedGenres     []string `json:"likedGenres"`
	DislikedGenres  []string `json:"dislikedGenres"`
	LikedDecades    []int    `json:"likedDecades"`
	DislikedDecades []int    `json:"dislikedDecades"`
}

func extractRatio(part, seen int) bool {
	return seen >= extractMinSeen && float64(part)/float64(seen) >= extractMinLikeRatio
}

func derivePreferences(genres []models.GenrePreference, decades []models.DecadePreference) *ExtractedPreferences {
	out := &ExtractedPreferences{
		LikedGenres:     []string{},
		DislikedGenres:  []string{},
		LikedDecades:    []int{},
		DislikedDecades: []int{},
	}
	for _, g := range genres {
		if extractRatio(g.Counters.Likes, g.Counters.Seen) {
			out.LikedGenres = append(out.LikedGenres, g.Genre)
		}
		if extractRatio(g.Counters.Dislikes, g.Counters.Seen) {
			out.DislikedGenres = append(out.DislikedGenres, g.Genre)
		}
	}
	for _, d := range decades {
		if extractRatio(d.Counters.Likes, d.Counters.Seen) {
			out.LikedDecades = append(out.LikedDecades, d.Decade)
		}
		if extractRatio(d.Counters.Dislikes, d.Counters.Seen) {
			out.DislikedDecades = append(out.DislikedDecades, d.Decade)
		}
	}
	sort.Strings(out.LikedGenres)
	sort.Strings(out.DislikedGenres)
	sort.Ints(out.LikedDecades)
	sort.Ints(out.DislikedDecades)
	return out
}

// ExtractPreferences deriva las preferencias del historial de valoraciones.
func (s *PreferenceService) ExtractPreferences(ctx context.Context, userID int) (*ExtractedPreferences, error) {
	genres, err := s.prefs.GenresByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	decades, err := s.prefs.DecadesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return derivePreferences(genres, decades), nil
}
