package recommend

import (
	"context"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/models"
)

// computeSurveyBased puntúa el catálogo contra la encuesta de géneros: un
// género excluido anula la película; si no, la mitad del score es la
// proporción de géneros incluidos y la otra mitad la popularidad relativa.
func (e *Engine) computeSurveyBased(ctx context.Context, userID int, snap *Snapshot, hidden map[int]bool) error {
	included, excluded, err := e.SurveyPreferences(ctx, userID)
	if err != nil {
		return err
	}

	includedSet := make(map[string]bool, len(included))
	for _, g := range included {
		includedSet[g] = true
	}
	excludedSet := make(map[string]bool, len(excluded))
	for _, g := range excluded {
		excludedSet[g] = true
	}

	maxCount := snap.MaxRatingCount

	scores := scoreCatalog(snap, func(m *models.MovieDoc) float64 {
		if hidden[m.MovieID] {
			return 0
		}
		genres := m.ListedGenres()
		if len(genres) == 0 {
			return 0
		}
		matches := 0
		for _, g := range genres {
			if excludedSet[g] {
				return 0
			}
			if includedSet[g] {
				matches++
			}
		}
		if matches == 0 {
			return 0
		}
		genrePart := float64(matches) / float64(len(genres))
		popularity := 0.0
		if maxCount > 0 {
			popularity = float64(m.RatingCount()) / float64(maxCount)
		}
		return roundScore(0.5*genrePart + 0.5*popularity)
	})

	return e.scores.BulkSetComponent(ctx, userID, CompSurvey, scores)
}
