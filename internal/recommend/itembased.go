package recommend

import (
	"context"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/models"
)

// floorScore es el score fijo para películas sin géneros listados o sin año
// de estreno: la falta de metadatos nunca las excluye del ranking.
const floorScore = 0.25

// computeItemBased puntúa por afinidad de contenido: la diferencia entre el
// ratio de "me gustó" y "no me gustó" de cada género de la película
// (ponderada por 1/n géneros), más el mismo término para su década.
func (e *Engine) computeItemBased(ctx context.Context, userID int, snap *Snapshot, hidden map[int]bool) error {
	genreRatios, decadeRatios, err := e.PreferenceRatios(ctx, userID, snap, 1)
	if err != nil {
		return err
	}

	scores := scoreCatalog(snap, func(m *models.MovieDoc) float64 {
		if hidden[m.MovieID] {
			return 0
		}

		genrePart := floorScore
		if genres := m.ListedGenres(); len(genres) > 0 {
			sum := 0.0
			weight := 1.0 / float64(len(genres))
			for _, g := range genres {
				r := genreRatios[g]
				sum += weight * (r.Like - r.Dislike)
			}
			genrePart = roundScore(sum)
		}

		decadePart := floorScore
		if dec := m.Decade(); dec != nil {
			r := decadeRatios[*dec]
			decadePart = r.Like - r.Dislike
		}

		return roundScore(clamp01(genrePart + decadePart))
	})

	return e.scores.BulkSetComponent(ctx, userID, CompItemBased, scores)
}
