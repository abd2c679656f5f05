package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/cache"
	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/models"
	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/recommend"
	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/repository"

	"github.com/google/uuid"
)

const (
	DefaultAmount = 10
	MaxAmount     = 50 // por seguridad, no deja pedir 1000 ítems
)

type RecommendService struct {
	engine  *recommend.Engine
	users   *repository.UserRepository
	recRepo *repository.RecommendationRepository
}

func NewRecommendService(
	engine *recommend.Engine,
	users *repository.UserRepository,
	recRepo *repository.RecommendationRepository,
) *RecommendService {
	return &RecommendService{
		engine:  engine,
		users:   users,
		recRepo: recRepo,
	}
}

// ====== Petición de recomendaciones ======

type RecRequest struct {
	UserID  int
	Method  string
	Amount  int
	Refresh bool
	// componentes que el cliente sabe obsoletos (los devuelven las
	// operaciones de registro); se unen al conjunto pendiente del motor
	Dirty recommend.ComponentSet
}

type RecResponse struct {
	Method     string            `json:"method"`
	Requested  string            `json:"requestedMethod"`
	Recomputed []string          `json:"recomputedComponents"`
	Movies     []RecommendedItem `json:"movies"`
}

type RecommendedItem struct {
	Movie *models.MovieDoc `json:"movie"`
	Score float64          `json:"score"`
}

func cacheKey(req RecRequest, version int64) string {
	// la versión del usuario invalida las entradas viejas sin borrarlas
	return fmt.Sprintf("rec:user:%d:v%d:%s:%d", req.UserID, version, req.Method, req.Amount)
}

// Recommend coordina el motor: materializa los scores del usuario la primera
// vez, recalcula lo pendiente y sirve el ranking. Cachea en Redis solo
// cuando no había nada pendiente, para no servir rankings obsoletos.
func (s *RecommendService) Recommend(ctx context.Context, req RecRequest) (*RecResponse, error) {
	if req.Amount <= 0 {
		req.Amount = DefaultAmount
	} else if req.Amount > MaxAmount {
		req.Amount = MaxAmount
	}

	method, err := recommend.ParseMethod(req.Method)
	if err != nil {
		return nil, err
	}
	req.Method = method.String()

	if err := s.ensureInitialized(ctx, req.UserID); err != nil {
		return nil, err
	}

	// 1) Cache Redis: solo válida si el usuario no tiene recálculo pendiente
	version := cache.UserVersion(ctx, req.UserID)
	pendingBefore := s.engine.Coordinator().Pending(req.UserID).Union(req.Dirty)
	if !req.Refresh && pendingBefore.Empty() {
		var cached RecResponse
		if ok, err := cache.GetJSON(ctx, cacheKey(req, version), &cached); err == nil && ok {
			return &cached, nil
		}
	}

	// 2) Motor: recalcula lo pendiente y arma el ranking
	result, err := s.engine.GetRecommendations(ctx, recommend.RecommendationRequest{
		UserID: req.UserID,
		Method: method,
		Amount: req.Amount,
		Dirty:  req.Dirty,
	})
	if err != nil {
		return nil, err
	}

	resp := &RecResponse{
		Method:     result.Method.String(),
		Requested:  result.Requested.String(),
		Recomputed: result.Recomputed.Strings(),
		Movies:     make([]RecommendedItem, 0, len(result.Items)),
	}
	for _, item := range result.Items {
		resp.Movies = append(resp.Movies, RecommendedItem{Movie: item.Movie, Score: item.Score})
	}

	// 3) Guardar historial en Mongo (no rompemos la respuesta si falla)
	hist := &models.Recommendation{
		ID:     uuid.NewString(),
		UserID: req.UserID,
		Method: result.Method.String(),
		Params: map[string]any{
			"requestedMethod": result.Requested.String(),
			"amount":          req.Amount,
			"recomputed":      result.Recomputed.Strings(),
		},
		Items:     recItems(result.Items),
		CreatedAt: time.Now(),
	}
	if err := s.recRepo.Insert(ctx, hist); err != nil {
		log.Printf("[recommend] error guardando historial en Mongo: %v", err)
	}

	// 4) Cachear en Redis (1 hora)
	if err := cache.SetJSON(ctx, cacheKey(req, cache.UserVersion(ctx, req.UserID)), resp, 60*60); err != nil {
		log.Printf("[recommend] error cacheando en Redis: %v", err)
	}

	return resp, nil
}

func recItems(items []recommend.ScoredMovie) []models.RecItem {
	out := make([]models.RecItem, 0, len(items))
	for _, it := range items {
		out = append(out, models.RecItem{MovieID: it.Movie.MovieID, Score: it.Score})
	}
	return out
}

// Filtered sirve el catálogo filtrado por género y/o década ordenado por el
// score del método (híbrido por defecto). No pasa por la cache Redis: las
// combinaciones de filtros multiplicarían las claves para poco beneficio.
func (s *RecommendService) Filtered(ctx context.Context, req RecRequest, genre string, decade int) (*RecResponse, error) {
	if req.Amount <= 0 {
		req.Amount = DefaultAmount
	} else if req.Amount > MaxAmount {
		req.Amount = MaxAmount
	}

	method, err := recommend.ParseMethod(req.Method)
	if err != nil {
		return nil, err
	}
	if err := s.ensureInitialized(ctx, req.UserID); err != nil {
		return nil, err
	}

	result, err := s.engine.FilteredRecommendations(ctx, recommend.RecommendationRequest{
		UserID: req.UserID,
		Method: method,
		Amount: req.Amount,
		Dirty:  req.Dirty,
	}, genre, decade)
	if err != nil {
		return nil, err
	}

	resp := &RecResponse{
		Method:     result.Method.String(),
		Requested:  result.Requested.String(),
		Recomputed: result.Recomputed.Strings(),
		Movies:     make([]RecommendedItem, 0, len(result.Items)),
	}
	for _, item := range result.Items {
		resp.Movies = append(resp.Movies, RecommendedItem{Movie: item.Movie, Score: item.Score})
	}
	return resp, nil
}

// ensureInitialized materializa las filas de score del usuario para todo el
// catálogo la primera vez que pide recomendaciones.
func (s *RecommendService) ensureInitialized(ctx context.Context, userID int) error {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("user %d no encontrado", userID)
	}
	if u.InitializedScores {
		return nil
	}

	log.Printf("[recommend] inicializando scores del usuario %d", userID)
	if err := s.engine.InitializeUser(ctx, userID); err != nil {
		return err
	}
	return s.users.SetInitializedScores(ctx, userID, true)
}

// History lista las últimas listas servidas al usuario.
func (s *RecommendService) History(ctx context.Context, userID int, limit int64) ([]models.Recommendation, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.recRepo.FindByUser(ctx, userID, limit)
}
