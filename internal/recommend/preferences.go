package recommend

import (
	"context"
	"fmt"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/models"
)

// Umbrales sobre la escala 0.5–5.0: >3.5 cuenta como "me gustó", <2.5 como
// "no me gustó", el rango [2.5, 3.5] solo suma a las valoraciones vistas.
const (
	likeThreshold    = 3.5
	dislikeThreshold = 2.5
)

// decadas materializables al pedir ratios, como en la encuesta original
const (
	firstDecade = 1900
	lastDecade  = 2020
)

func counterDelta(value float64) CounterDelta {
	d := CounterDelta{Seen: 1}
	if value > likeThreshold {
		d.Likes = 1
	} else if value < dislikeThreshold {
		d.Dislikes = 1
	}
	return d
}

func (d CounterDelta) negated() CounterDelta {
	return CounterDelta{Seen: -d.Seen, Likes: -d.Likes, Dislikes: -d.Dislikes}
}

// ObserveRating incrementa los contadores de cada género de la película y de
// su década de estreno. Película sin año: se salta la década. Película sin
// géneros listados: no hay contadores de género que tocar (el score de
// item-based usa el piso 0.25 para estos casos).
func (e *Engine) ObserveRating(ctx context.Context, userID int, movie *models.MovieDoc, value float64) error {
	return e.applyRatingDeltas(ctx, userID, movie, counterDelta(value))
}

// RetractRating es el inverso exacto de ObserveRating con el mismo valor. Se
// usa cuando una película ya valorada pasa a ignorada, o antes de re-valorar.
func (e *Engine) RetractRating(ctx context.Context, userID int, movie *models.MovieDoc, value float64) error {
	return e.applyRatingDeltas(ctx, userID, movie, counterDelta(value).negated())
}

func (e *Engine) applyRatingDeltas(ctx context.Context, userID int, movie *models.MovieDoc, d CounterDelta) error {
	genres := map[string]CounterDelta{}
	for _, g := range movie.ListedGenres() {
		genres[g] = d
	}

	decades := map[int]CounterDelta{}
	if dec := movie.Decade(); dec != nil {
		decades[*dec] = d
	}

	if len(genres) == 0 && len(decades) == 0 {
		return nil
	}

	if err := e.prefs.ApplyCounterDeltas(ctx, userID, genres, decades); err != nil {
		return fmt.Errorf("%w: user=%d movie=%d: %v", ErrAggregateUpdate, userID, movie.MovieID, err)
	}
	return nil
}

// Ratios son las proporciones de "me gustó" y "no me gustó" sobre las
// valoraciones vistas de un género o década.
type Ratios struct {
	Like    float64
	Dislike float64
}

func countersToRatios(c models.Counters, minCount int) Ratios {
	if c.Seen < minCount || c.Seen == 0 {
		return Ratios{}
	}
	return Ratios{
		Like:    float64(c.Likes) / float64(c.Seen),
		Dislike: float64(c.Dislikes) / float64(c.Seen),
	}
}

// PreferenceRatios devuelve los ratios por género (todos los del catálogo) y
// por década (1900–2020). Las claves nunca vistas se materializan con
// contadores en cero y devuelven (0, 0); lo mismo pasa si el género/década
// tiene menos de minCount valoraciones (guardia de arranque en frío).
func (e *Engine) PreferenceRatios(ctx context.Context, userID int, snap *Snapshot, minCount int) (map[string]Ratios, map[int]Ratios, error) {
	genreRows, err := e.prefs.GenresByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	byGenre := make(map[string]models.Counters, len(genreRows))
	for _, row := range genreRows {
		byGenre[row.Genre] = row.Counters
	}

	genreRatios := make(map[string]Ratios, len(snap.Genres))
	for _, g := range snap.Genres {
		c, ok := byGenre[g]
		if !ok {
			if err := e.prefs.EnsureGenre(ctx, userID, g); err != nil {
				return nil, nil, err
			}
		}
		genreRatios[g] = countersToRatios(c, minCount)
	}

	decadeRows, err := e.prefs.DecadesByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	byDecade := make(map[int]models.Counters, len(decadeRows))
	for _, row := range decadeRows {
		byDecade[row.Decade] = row.Counters
	}

	decadeRatios := map[int]Ratios{}
	for dec := firstDecade; dec <= lastDecade; dec += 10 {
		c, ok := byDecade[dec]
		if !ok {
			if err := e.prefs.EnsureDecade(ctx, userID, dec); err != nil {
				return nil, nil, err
			}
		}
		decadeRatios[dec] = countersToRatios(c, minCount)
	}

	return genreRatios, decadeRatios, nil
}

// HasSurveyEntries indica si el usuario respondió la encuesta de
// preferencias (algún género con respuesta distinta de "sin responder").
func (e *Engine) HasSurveyEntries(ctx context.Context, userID int) (bool, error) {
	rows, err := e.prefs.GenresByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, row := range rows {
		if row.Survey != models.SurveyUnset {
			return true, nil
		}
	}
	return false, nil
}

// SurveyPreferences devuelve los géneros incluidos y excluidos en la
// encuesta.
func (e *Engine) SurveyPreferences(ctx context.Context, userID int) (included, excluded []string, err error) {
	rows, err := e.prefs.GenresByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	for _, row := range rows {
		switch row.Survey {
		case models.SurveyInclude:
			included = append(included, row.Genre)
		case models.SurveyExclude:
			excluded = append(excluded, row.Genre)
		}
	}
	return included, excluded, nil
}
