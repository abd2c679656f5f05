package recommend

import (
	"context"
	"sort"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/models"
)

const (
	popularTopCount   = 100
	popularMinAverage = 4.0
	// fracción del total de valoraciones del usuario bajo la cual un
	// género cuenta como poco explorado
	underexploredShare = 0.10
)

// computeExploration elige el modo según el tamaño del historial: con poco
// historial recomienda lo popular del catálogo; con historial suficiente,
// los géneros que el usuario casi no ha tocado.
func (e *Engine) computeExploration(ctx context.Context, userID int, snap *Snapshot, history map[int]float64, hidden map[int]bool) error {
	var scores map[int]float64
	if len(history) < explorationModeSwitch {
		scores = popularScores(snap, hidden)
	} else {
		var err error
		scores, err = e.underexploredScores(ctx, userID, snap, history, hidden)
		if err != nil {
			return err
		}
	}
	return e.scores.BulkSetComponent(ctx, userID, CompExploration, scores)
}

// popularScores puntúa las 100 películas más valoradas entre las que
// califican: promedio al menos 4.0 y no valoradas ni ignoradas por el
// usuario. El filtro va antes del corte, así una película escondida o de
// promedio bajo no ocupa lugar en la ventana. El resto del catálogo queda
// en 0.0.
func popularScores(snap *Snapshot, hidden map[int]bool) map[int]float64 {
	ranked := make([]*models.MovieDoc, 0, len(snap.Movies))
	for i := range snap.Movies {
		m := &snap.Movies[i]
		if hidden[m.MovieID] || m.AverageRating() < popularMinAverage {
			continue
		}
		ranked = append(ranked, m)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].RatingCount() != ranked[j].RatingCount() {
			return ranked[i].RatingCount() > ranked[j].RatingCount()
		}
		return ranked[i].MovieID < ranked[j].MovieID
	})
	if len(ranked) > popularTopCount {
		ranked = ranked[:popularTopCount]
	}

	popular := map[int]float64{}
	maxCount := snap.MaxRatingCount
	for _, m := range ranked {
		popularity := 0.0
		if maxCount > 0 {
			popularity = float64(m.RatingCount()) / float64(maxCount)
		}
		popular[m.MovieID] = roundScore(0.5*(m.AverageRating()-popularMinAverage) + 0.5*popularity)
	}

	return scoreCatalog(snap, func(m *models.MovieDoc) float64 {
		return popular[m.MovieID]
	})
}

// underexploredScores puntúa por la proporción de géneros poco explorados de
// cada película. Poco explorado: cero valoraciones del usuario en el género;
// si no queda ninguno así, los géneros por debajo del 10% de su total.
func (e *Engine) underexploredScores(ctx context.Context, userID int, snap *Snapshot, history map[int]float64, hidden map[int]bool) (map[int]float64, error) {
	rows, err := e.prefs.GenresByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]int, len(rows))
	for _, row := range rows {
		seen[row.Genre] = row.Counters.Seen
	}

	underexplored := map[string]bool{}
	for _, g := range snap.Genres {
		if seen[g] == 0 {
			underexplored[g] = true
		}
	}
	if len(underexplored) == 0 {
		threshold := underexploredShare * float64(len(history))
		for _, g := range snap.Genres {
			if float64(seen[g]) < threshold {
				underexplored[g] = true
			}
		}
	}
	if len(underexplored) == 0 {
		return scoreCatalog(snap, func(*models.MovieDoc) float64 { return 0 }), nil
	}

	return scoreCatalog(snap, func(m *models.MovieDoc) float64 {
		if hidden[m.MovieID] {
			return 0
		}
		genres := m.ListedGenres()
		if len(genres) == 0 {
			return floorScore
		}
		matches := 0
		for _, g := range genres {
			if underexplored[g] {
				matches++
			}
		}
		if matches == 0 {
			return 0
		}
		return roundScore(float64(matches) / float64(len(genres)))
	}), nil
}
