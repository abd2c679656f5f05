package recommend

import (
	"context"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/models"
)

// Params son los parámetros ajustables del motor. Los ceros se rellenan con
// los valores por defecto en New.
type Params struct {
	// distancia máxima para contar como vecino cercano
	MaxNeighborDistance float64
	// mínimo de valoraciones activas para scores personalizados
	MinHistory int
	// valor a partir del cual una valoración cuenta como "le gustó" para
	// el score user-based
	LikedThreshold float64
	// cantidad de recomendaciones si la petición no la especifica
	DefaultAmount int
}

const (
	defaultMaxNeighborDistance = 30.0
	defaultMinHistory          = 4
	defaultLikedThreshold      = 4.0
	defaultAmount              = 10

	// con menos de estas valoraciones el modo explorativo recomienda lo
	// popular; a partir de ahí, los géneros poco explorados
	explorationModeSwitch = 50
)

// Engine implementa el cálculo y recálculo de scores de recomendación sobre
// los stores que recibe. Todas las mutaciones de un usuario pasan por el
// Coordinator, que garantiza como mucho un recálculo en vuelo por usuario.
type Engine struct {
	catalog Catalog
	ratings RatingStore
	prefs   PreferenceStore
	scores  ScoreStore
	coord   *Coordinator

	maxNeighborDistance float64
	minHistory          int
	likedThreshold      float64
	defaultAmount       int
}

func New(catalog Catalog, ratings RatingStore, prefs PreferenceStore, scores ScoreStore, p Params) *Engine {
	if p.MaxNeighborDistance == 0 {
		p.MaxNeighborDistance = defaultMaxNeighborDistance
	}
	if p.MinHistory == 0 {
		p.MinHistory = defaultMinHistory
	}
	if p.LikedThreshold == 0 {
		p.LikedThreshold = defaultLikedThreshold
	}
	if p.DefaultAmount == 0 {
		p.DefaultAmount = defaultAmount
	}
	return &Engine{
		catalog:             catalog,
		ratings:             ratings,
		prefs:               prefs,
		scores:              scores,
		coord:               NewCoordinator(),
		maxNeighborDistance: p.MaxNeighborDistance,
		minHistory:          p.MinHistory,
		likedThreshold:      p.LikedThreshold,
		defaultAmount:       p.DefaultAmount,
	}
}

// Coordinator expone el coordinador de recálculo del motor (los servicios lo
// usan para marcar componentes pendientes desde fuera, p.ej. al reconstruir
// un usuario desde mantenimiento).
func (e *Engine) Coordinator() *Coordinator { return e.coord }

func roundScore(x float64) float64 {
	return math.Round(x*100) / 100
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// InitializeUser materializa las filas de score del usuario para todo el
// catálogo (todas en cero) y marca los cinco componentes como pendientes,
// así la primera petición de recomendaciones calcula todo.
func (e *Engine) InitializeUser(ctx context.Context, userID int) error {
	unlock := e.coord.Lock(userID)
	defer unlock()

	snap, err := e.Snapshot(ctx)
	if err != nil {
		return err
	}
	if err := e.scores.InitUser(ctx, userID, snap.MovieIDs()); err != nil {
		return err
	}
	e.coord.Mark(userID, AllComponents)
	return nil
}

// RecordRating registra (o actualiza) la valoración del usuario. Una
// valoración previa con valor se retira de los contadores antes de observar
// la nueva, para no contarla dos veces. Devuelve el dirty set actualizado.
func (e *Engine) RecordRating(ctx context.Context, userID, movieID int, value float64) (ComponentSet, error) {
	unlock := e.coord.Lock(userID)
	defer unlock()

	movie, err := e.catalog.Movie(ctx, movieID)
	if err != nil {
		return 0, err
	}
	if movie == nil {
		return 0, ErrMovieNotFound
	}

	prev, err := e.ratings.Get(ctx, userID, movieID)
	if err != nil {
		return 0, err
	}
	if prev != nil && prev.HasValue() && !prev.Ignored {
		if err := e.RetractRating(ctx, userID, movie, *prev.Rating); err != nil {
			return 0, err
		}
	}

	doc := &models.RatingDoc{
		UserID:  userID,
		MovieID: movieID,
		Rating:  &value,
		RatedAt: time.Now().Unix(),
	}
	if err := e.ratings.Upsert(ctx, doc); err != nil {
		return 0, err
	}

	if err := e.ObserveRating(ctx, userID, movie, value); err != nil {
		return 0, err
	}

	// la fila de score de una película valorada queda en cero siempre
	if err := e.scores.ZeroMovie(ctx, userID, movieID); err != nil {
		return 0, err
	}

	e.coord.Mark(userID, AfterRating)
	return e.coord.Pending(userID), nil
}

// RecordIgnore marca la película como ignorada. Si tenía valoración con
// valor, los contadores se decrementan y los scores amplios quedan
// pendientes; si era solo un marcador, basta con poner su fila a cero.
func (e *Engine) RecordIgnore(ctx context.Context, userID, movieID int) (ComponentSet, error) {
	unlock := e.coord.Lock(userID)
	defer unlock()

	movie, err := e.catalog.Movie(ctx, movieID)
	if err != nil {
		return 0, err
	}
	if movie == nil {
		return 0, ErrMovieNotFound
	}

	prev, err := e.ratings.Get(ctx, userID, movieID)
	if err != nil {
		return 0, err
	}

	hadValue := prev != nil && prev.HasValue() && !prev.Ignored
	if hadValue {
		if err := e.RetractRating(ctx, userID, movie, *prev.Rating); err != nil {
			return 0, err
		}
	}

	doc := &models.RatingDoc{UserID: userID, MovieID: movieID, Ignored: true, IgnoredAt: time.Now().Unix()}
	if prev != nil {
		doc.Rating = prev.Rating
		doc.RatedAt = prev.RatedAt
	}
	if err := e.ratings.Upsert(ctx, doc); err != nil {
		return 0, err
	}

	if err := e.scores.ZeroMovie(ctx, userID, movieID); err != nil {
		return 0, err
	}

	if hadValue {
		e.coord.Mark(userID, AfterRating)
	}
	return e.coord.Pending(userID), nil
}

// RecordUnignore revierte un ignore. Si la valoración conservaba valor, los
// contadores se re-incrementan. Marca los componentes amplios siempre: la
// película vuelve a ser candidata y sus scores están obsoletos.
func (e *Engine) RecordUnignore(ctx context.Context, userID, movieID int) (ComponentSet, error) {
	unlock := e.coord.Lock(userID)
	defer unlock()

	movie, err := e.catalog.Movie(ctx, movieID)
	if err != nil {
		return 0, err
	}
	if movie == nil {
		return 0, ErrMovieNotFound
	}

	prev, err := e.ratings.Get(ctx, userID, movieID)
	if err != nil {
		return 0, err
	}
	if prev == nil || !prev.Ignored {
		return e.coord.Pending(userID), nil
	}

	doc := &models.RatingDoc{UserID: userID, MovieID: movieID, Rating: prev.Rating, RatedAt: prev.RatedAt}
	if err := e.ratings.Upsert(ctx, doc); err != nil {
		return 0, err
	}

	if prev.HasValue() {
		if err := e.ObserveRating(ctx, userID, movie, *prev.Rating); err != nil {
			return 0, err
		}
		// sigue valorada: su propia fila permanece en cero
		if err := e.scores.ZeroMovie(ctx, userID, movieID); err != nil {
			return 0, err
		}
	}

	e.coord.Mark(userID, AfterRating)
	return e.coord.Pending(userID), nil
}

// SubmitSurvey reemplaza por completo las respuestas de la encuesta de
// géneros del usuario.
func (e *Engine) SubmitSurvey(ctx context.Context, userID int, included, excluded []string) (ComponentSet, error) {
	unlock := e.coord.Lock(userID)
	defer unlock()

	if err := e.prefs.ClearSurveyAnswers(ctx, userID); err != nil {
		return 0, err
	}
	for _, g := range included {
		if err := e.prefs.SetSurveyAnswer(ctx, userID, g, models.SurveyInclude); err != nil {
			return 0, err
		}
	}
	for _, g := range excluded {
		if err := e.prefs.SetSurveyAnswer(ctx, userID, g, models.SurveyExclude); err != nil {
			return 0, err
		}
	}
	e.coord.Mark(userID, AfterSurvey)
	return e.coord.Pending(userID), nil
}

// RecommendationRequest describe una petición de lista ordenada.
type RecommendationRequest struct {
	UserID int
	Method Method
	Amount int
	// Dirty son componentes pendientes que el llamador arrastra (p.ej. los
	// devueltos por RecordRating en otra instancia); se unen a los del
	// coordinador local.
	Dirty ComponentSet
}

// ScoredMovie es una película resuelta junto con el score de la columna por
// la que se ordenó.
type ScoredMovie struct {
	Movie *models.MovieDoc
	Score float64
}

// RecommendationResult incluye el método efectivo después de aplicar la
// política de fallback por historial insuficiente.
type RecommendationResult struct {
	Requested  Method
	Method     Method
	Recomputed ComponentSet
	Items      []ScoredMovie
}

// GetRecommendations recalcula los componentes pendientes del usuario y
// devuelve las n mejores películas por la columna del método. Con menos de
// minHistory valoraciones, user-based e item-based se omiten y el método cae
// a survey-based (si hay encuesta) o explorativo.
func (e *Engine) GetRecommendations(ctx context.Context, req RecommendationRequest) (*RecommendationResult, error) {
	return e.serve(ctx, req, nil)
}

// FilteredRecommendations devuelve el catálogo restringido a un género y/o
// una década, ordenado por el score del método. Las películas valoradas o
// ignoradas no aparecen en la lista.
func (e *Engine) FilteredRecommendations(ctx context.Context, req RecommendationRequest, genre string, decade int) (*RecommendationResult, error) {
	return e.serve(ctx, req, func(m *models.MovieDoc) bool {
		if genre != "" {
			found := false
			for _, g := range m.ListedGenres() {
				if g == genre {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		if decade > 0 {
			d := m.Decade()
			if d == nil || *d != decade {
				return false
			}
		}
		return true
	})
}

func (e *Engine) serve(ctx context.Context, req RecommendationRequest, filter func(*models.MovieDoc) bool) (*RecommendationResult, error) {
	if req.Amount <= 0 {
		req.Amount = e.defaultAmount
	}

	unlock := e.coord.Lock(req.UserID)
	defer unlock()

	if !req.Dirty.Empty() {
		e.coord.Mark(req.UserID, req.Dirty)
	}
	pending := e.coord.Pending(req.UserID)

	snap, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	history, err := e.ratingVector(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	hasSurvey, err := e.HasSurveyEntries(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	method := req.Method
	personal := len(history) >= e.minHistory
	if !personal && (method == MethodUserBased || method == MethodItemBased || method == MethodHybrid) {
		if hasSurvey {
			method = MethodSurvey
		} else {
			method = MethodExploration
		}
	}

	if !pending.Empty() {
		log.Printf("[recommender] recomputing for user %d: %s", req.UserID, pending)
		if err := e.recompute(ctx, req.UserID, snap, history, hasSurvey, personal, pending); err != nil {
			return nil, err
		}
	}

	var items []ScoredMovie
	if filter == nil {
		rows, err := e.scores.TopN(ctx, req.UserID, method.Component(), req.Amount)
		if err != nil {
			return nil, err
		}
		// la resolución preserva el orden del ranking, nunca re-ordena
		items = make([]ScoredMovie, 0, len(rows))
		for _, row := range rows {
			m := snap.Movie(row.MovieID)
			if m == nil {
				continue
			}
			items = append(items, ScoredMovie{Movie: m, Score: componentValue(row, method.Component())})
		}
	} else {
		items, err = e.filteredRanking(ctx, req, method, snap, filter)
		if err != nil {
			return nil, err
		}
	}

	e.coord.Clear(req.UserID, pending)

	return &RecommendationResult{
		Requested:  req.Method,
		Method:     method,
		Recomputed: pending,
		Items:      items,
	}, nil
}

func componentValue(row models.MovieScore, comp Component) float64 {
	switch comp {
	case CompSurvey:
		return row.SurveyBased
	case CompUserBased:
		return row.UserBased
	case CompItemBased:
		return row.ItemBased
	case CompExploration:
		return row.ExplorationBased
	default:
		return row.Total
	}
}

// filteredRanking ordena en memoria las filas de score que pasan el filtro
// de catálogo. Las películas valoradas o ignoradas se saltan siempre.
func (e *Engine) filteredRanking(ctx context.Context, req RecommendationRequest, method Method, snap *Snapshot, filter func(*models.MovieDoc) bool) ([]ScoredMovie, error) {
	hidden, err := e.hiddenMovies(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	rows, err := e.scores.ByUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	comp := method.Component()
	items := make([]ScoredMovie, 0, len(rows))
	for _, row := range rows {
		if hidden[row.MovieID] {
			continue
		}
		m := snap.Movie(row.MovieID)
		if m == nil || !filter(m) {
			continue
		}
		items = append(items, ScoredMovie{Movie: m, Score: componentValue(row, comp)})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Movie.MovieID < items[j].Movie.MovieID
	})
	if len(items) > req.Amount {
		items = items[:req.Amount]
	}
	return items, nil
}

// recompute ejecuta los componentes pendientes en orden de dependencias:
// primero las columnas base, el híbrido al final.
func (e *Engine) recompute(ctx context.Context, userID int, snap *Snapshot, history map[int]float64, hasSurvey, personal bool, pending ComponentSet) error {
	hidden, err := e.hiddenMovies(ctx, userID)
	if err != nil {
		return err
	}

	if pending.Has(CompUserBased) {
		if personal {
			if err := e.computeUserBased(ctx, userID, snap, hidden); err != nil {
				return err
			}
		} else if err := e.zeroIfStale(ctx, userID, CompUserBased); err != nil {
			return err
		}
	}
	if pending.Has(CompItemBased) {
		if personal {
			if err := e.computeItemBased(ctx, userID, snap, hidden); err != nil {
				return err
			}
		} else if err := e.zeroIfStale(ctx, userID, CompItemBased); err != nil {
			return err
		}
	}
	if pending.Has(CompSurvey) {
		if hasSurvey {
			if err := e.computeSurveyBased(ctx, userID, snap, hidden); err != nil {
				return err
			}
		} else if err := e.zeroIfStale(ctx, userID, CompSurvey); err != nil {
			return err
		}
	}
	if pending.Has(CompExploration) {
		if err := e.computeExploration(ctx, userID, snap, history, hidden); err != nil {
			return err
		}
	}
	if pending.Has(CompHybrid) {
		if err := e.computeHybrid(ctx, userID, hasSurvey); err != nil {
			return err
		}
	}
	return nil
}

// hiddenMovies: películas valoradas o ignoradas por el usuario. Todos los
// cálculos las fuerzan a 0.0.
func (e *Engine) hiddenMovies(ctx context.Context, userID int) (map[int]bool, error) {
	hidden := map[int]bool{}
	active, err := e.ratings.ActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, r := range active {
		hidden[r.MovieID] = true
	}
	ignored, err := e.ratings.IgnoredByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, r := range ignored {
		hidden[r.MovieID] = true
	}
	return hidden, nil
}

// zeroIfStale pone la columna a cero solo si tiene algún valor distinto de
// cero, para no escribir de más.
func (e *Engine) zeroIfStale(ctx context.Context, userID int, comp Component) error {
	stale, err := e.scores.AnyNonZero(ctx, userID, comp)
	if err != nil {
		return err
	}
	if !stale {
		return nil
	}
	return e.scores.ZeroComponent(ctx, userID, comp)
}

const scoreShards = 4

// scoreCatalog reparte el catálogo en shards y evalúa fn en paralelo. Cada
// score es independiente del resto, así que solo se sincroniza el merge.
func scoreCatalog(snap *Snapshot, fn func(m *models.MovieDoc) float64) map[int]float64 {
	out := make(map[int]float64, len(snap.Movies))
	var mu sync.Mutex
	var wg sync.WaitGroup

	chunk := (len(snap.Movies) + scoreShards - 1) / scoreShards
	if chunk == 0 {
		return out
	}
	for start := 0; start < len(snap.Movies); start += chunk {
		end := start + chunk
		if end > len(snap.Movies) {
			end = len(snap.Movies)
		}
		wg.Add(1)
		go func(part []models.MovieDoc) {
			defer wg.Done()
			local := make(map[int]float64, len(part))
			for i := range part {
				local[part[i].MovieID] = fn(&part[i])
			}
			mu.Lock()
			for id, s := range local {
				out[id] = s
			}
			mu.Unlock()
		}(snap.Movies[start:end])
	}
	wg.Wait()
	return out
}
