package recommend

import "context"

// Pesos del score híbrido. Cada rama suma exactamente 1.0; eso es un
// invariante que los tests verifican, no una casualidad de los valores
// actuales.
const (
	weightSurvey          = 0.25
	weightExploration     = 0.15
	weightUserBased       = 0.30
	weightItemBased       = 0.30
	weightExplorationBare = 0.20
	weightUserBasedBare   = 0.40
	weightItemBasedBare   = 0.40
)

// computeHybrid combina las columnas base en el score total. Sin señal de
// encuesta se usa la rama de tres componentes.
func (e *Engine) computeHybrid(ctx context.Context, userID int, hasSurvey bool) error {
	rows, err := e.scores.ByUser(ctx, userID)
	if err != nil {
		return err
	}

	totals := make(map[int]float64, len(rows))
	for _, row := range rows {
		var total float64
		if hasSurvey {
			total = weightSurvey*row.SurveyBased +
				weightExploration*row.ExplorationBased +
				weightUserBased*row.UserBased +
				weightItemBased*row.ItemBased
		} else {
			total = weightExplorationBare*row.ExplorationBased +
				weightUserBasedBare*row.UserBased +
				weightItemBasedBare*row.ItemBased
		}
		totals[row.MovieID] = roundScore(total)
	}

	return e.scores.BulkSetComponent(ctx, userID, CompHybrid, totals)
}
