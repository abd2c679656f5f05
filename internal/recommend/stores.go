package recommend

import (
	"context"
	"errors"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/models"
)

var (
	// ErrInvalidMethod: nombre de método desconocido, rechazado antes de
	// calcular nada.
	ErrInvalidMethod = errors.New("invalid recommendation method")
	// ErrAggregateUpdate: la actualización transaccional de contadores de
	// preferencias falló y fue revertida completa.
	ErrAggregateUpdate = errors.New("aggregate preference update failed")
	// ErrMovieNotFound: el id no existe en el catálogo.
	ErrMovieNotFound = errors.New("movie not found")
)

// CounterDelta es el cambio que una valoración (o su retiro) aplica a un
// contador de género o década.
type CounterDelta struct {
	Seen     int
	Likes    int
	Dislikes int
}

// Catalog enumera el catálogo. El motor no lo muta nunca.
type Catalog interface {
	AllMovies(ctx context.Context) ([]models.MovieDoc, error)
	Movie(ctx context.Context, movieID int) (*models.MovieDoc, error)
}

// RatingStore persiste las aristas (usuario, película).
type RatingStore interface {
	Get(ctx context.Context, userID, movieID int) (*models.RatingDoc, error)
	Upsert(ctx context.Context, r *models.RatingDoc) error
	// ActiveByUser: valoraciones con valor y no ignoradas del usuario.
	ActiveByUser(ctx context.Context, userID int) ([]models.RatingDoc, error)
	IgnoredByUser(ctx context.Context, userID int) ([]models.RatingDoc, error)
	// AllActive: snapshot de solo lectura de las valoraciones activas de
	// todos los usuarios, para la búsqueda de vecinos.
	AllActive(ctx context.Context) ([]models.RatingDoc, error)
}

// PreferenceStore persiste los contadores por género/década y la respuesta
// de la encuesta. ApplyCounterDeltas debe ser atómico: o se aplican todos
// los deltas o ninguno.
type PreferenceStore interface {
	GenresByUser(ctx context.Context, userID int) ([]models.GenrePreference, error)
	DecadesByUser(ctx context.Context, userID int) ([]models.DecadePreference, error)
	EnsureGenre(ctx context.Context, userID int, genre string) error
	EnsureDecade(ctx context.Context, userID, decade int) error
	ApplyCounterDeltas(ctx context.Context, userID int, genres map[string]CounterDelta, decades map[int]CounterDelta) error
	SetSurveyAnswer(ctx context.Context, userID int, genre string, answer models.SurveyAnswer) error
	ClearSurveyAnswers(ctx context.Context, userID int) error
}

// ScoreStore persiste las cinco columnas de score por (usuario, película).
// BulkSetComponent sobreescribe la columna completa del usuario en una sola
// operación (semántica de reemplazo, nunca merge).
type ScoreStore interface {
	InitUser(ctx context.Context, userID int, movieIDs []int) error
	ByUser(ctx context.Context, userID int) ([]models.MovieScore, error)
	AnyNonZero(ctx context.Context, userID int, comp Component) (bool, error)
	BulkSetComponent(ctx context.Context, userID int, comp Component, scores map[int]float64) error
	ZeroComponent(ctx context.Context, userID int, comp Component) error
	// ZeroMovie pone las cinco columnas de la película a 0.0.
	ZeroMovie(ctx context.Context, userID, movieID int) error
	// TopN: filas ordenadas por la columna descendente, empate por movieId
	// ascendente.
	TopN(ctx context.Context, userID int, comp Component, n int) ([]models.MovieScore, error)
}
