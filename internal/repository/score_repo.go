package repository

import (
	"context"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/db"
	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/models"
	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/recommend"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ScoreRepository struct {
	col *mongo.Collection
}

func NewScoreRepository() *ScoreRepository {
	return &ScoreRepository{col: db.DB().Collection("recommendation_scores")}
}

func scoreField(comp recommend.Component) string {
	switch comp {
	case recommend.CompSurvey:
		return "surveyBased"
	case recommend.CompUserBased:
		return "userBased"
	case recommend.CompItemBased:
		return "itemBased"
	case recommend.CompExploration:
		return "explorationBased"
	default:
		return "total"
	}
}

// InitUser materializa una fila en cero por cada película del catálogo. Las
// filas que ya existen no se tocan, así inicializar dos veces es inocuo.
func (r *ScoreRepository) InitUser(ctx context.Context, userID int, movieIDs []int) error {
	if len(movieIDs) == 0 {
		return nil
	}

	writes := make([]mongo.WriteModel, 0, len(movieIDs))
	for _, movieID := range movieIDs {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"userId": userID, "movieId": movieID}).
			SetUpdate(bson.M{"$setOnInsert": bson.M{
				"surveyBased":      0.0,
				"userBased":        0.0,
				"itemBased":        0.0,
				"explorationBased": 0.0,
				"total":            0.0,
			}}).
			SetUpsert(true))
	}

	_, err := r.col.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return err
}

func (r *ScoreRepository) ByUser(ctx context.Context, userID int) ([]models.MovieScore, error) {
	cur, err := r.col.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.MovieScore
	for cur.Next(ctx) {
		var s models.MovieScore
		if err := cur.Decode(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, cur.Err()
}

func (r *ScoreRepository) AnyNonZero(ctx context.Context, userID int, comp recommend.Component) (bool, error) {
	err := r.col.FindOne(ctx, bson.M{
		"userId":         userID,
		scoreField(comp): bson.M{"$gt": 0},
	}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// BulkSetComponent sobreescribe la columna completa del usuario en un solo
// BulkWrite. Semántica de reemplazo: el mapa trae todas las películas del
// catálogo y el valor viejo nunca sobrevive.
func (r *ScoreRepository) BulkSetComponent(ctx context.Context, userID int, comp recommend.Component, scores map[int]float64) error {
	if len(scores) == 0 {
		return nil
	}
	field := scoreField(comp)

	writes := make([]mongo.WriteModel, 0, len(scores))
	for movieID, score := range scores {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"userId": userID, "movieId": movieID}).
			SetUpdate(bson.M{"$set": bson.M{field: score}}).
			SetUpsert(true))
	}

	_, err := r.col.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return err
}

func (r *ScoreRepository) ZeroComponent(ctx context.Context, userID int, comp recommend.Component) error {
	_, err := r.col.UpdateMany(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{scoreField(comp): 0.0}},
	)
	return err
}

// ZeroMovie pone las cinco columnas de la película a cero (camino de
// valorar/ignorar: la fila propia nunca conserva scores).
func (r *ScoreRepository) ZeroMovie(ctx context.Context, userID, movieID int) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"userId": userID, "movieId": movieID},
		bson.M{"$set": bson.M{
			"surveyBased":      0.0,
			"userBased":        0.0,
			"itemBased":        0.0,
			"explorationBased": 0.0,
			"total":            0.0,
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

// TopN ordena por la columna pedida descendente con empate por movieId
// ascendente, para que el ranking sea determinista.
func (r *ScoreRepository) TopN(ctx context.Context, userID int, comp recommend.Component, n int) ([]models.MovieScore, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: scoreField(comp), Value: -1}, {Key: "movieId", Value: 1}}).
		SetLimit(int64(n))

	cur, err := r.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.MovieScore
	for cur.Next(ctx) {
		var s models.MovieScore
		if err := cur.Decode(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, cur.Err()
}
