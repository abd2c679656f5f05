package recommend

import (
	"context"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/models"
)

const (
	exactMatchScore = 1.0
	nearMatchScore  = 0.75
)

// computeUserBased asigna 1.0 a las películas que le gustaron a un vecino
// exacto y 0.75 a las que le gustaron a un vecino cercano (sin pisar un 1.0
// previo). Todo lo demás queda explícitamente en 0.0: la columna se
// reemplaza entera, nunca se mezcla con el estado anterior.
func (e *Engine) computeUserBased(ctx context.Context, userID int, snap *Snapshot, hidden map[int]bool) error {
	exact, near, err := e.Neighbors(ctx, userID, e.maxNeighborDistance)
	if err != nil {
		return err
	}

	liked := map[int]float64{}
	for _, n := range exact {
		for movieID, value := range n.Ratings {
			if value >= e.likedThreshold {
				liked[movieID] = exactMatchScore
			}
		}
	}
	for _, n := range near {
		for movieID, value := range n.Ratings {
			if value >= e.likedThreshold && liked[movieID] != exactMatchScore {
				liked[movieID] = nearMatchScore
			}
		}
	}

	scores := scoreCatalog(snap, func(m *models.MovieDoc) float64 {
		if hidden[m.MovieID] {
			return 0
		}
		return liked[m.MovieID]
	})

	return e.scores.BulkSetComponent(ctx, userID, CompUserBased, scores)
}
