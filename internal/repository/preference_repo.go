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

// PreferenceRepository guarda los contadores por género y por década en dos
// colecciones separadas. ApplyCounterDeltas las toca juntas dentro de una
// transacción: las dos o ninguna.
type PreferenceRepository struct {
	genres  *mongo.Collection
	decades *mongo.Collection
}

func NewPreferenceRepository() *PreferenceRepository {
	return &PreferenceRepository{
		genres:  db.DB().Collection("genre_preferences"),
		decades: db.DB().Collection("decade_preferences"),
	}
}

func (r *PreferenceRepository) GenresByUser(ctx context.Context, userID int) ([]models.GenrePreference, error) {
	cur, err := r.genres.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.GenrePreference
	for cur.Next(ctx) {
		var p models.GenrePreference
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, cur.Err()
}

func (r *PreferenceRepository) DecadesByUser(ctx context.Context, userID int) ([]models.DecadePreference, error) {
	cur, err := r.decades.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.DecadePreference
	for cur.Next(ctx) {
		var p models.DecadePreference
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, cur.Err()
}

// EnsureGenre materializa la fila del género con contadores en cero si no
// existía todavía. No toca filas existentes.
func (r *PreferenceRepository) EnsureGenre(ctx context.Context, userID int, genre string) error {
	_, err := r.genres.UpdateOne(ctx,
		bson.M{"userId": userID, "genre": genre},
		bson.M{"$setOnInsert": bson.M{
			"survey":   models.SurveyUnset,
			"counters": models.Counters{},
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *PreferenceRepository) EnsureDecade(ctx context.Context, userID, decade int) error {
	_, err := r.decades.UpdateOne(ctx,
		bson.M{"userId": userID, "decade": decade},
		bson.M{"$setOnInsert": bson.M{
			"counters": models.Counters{},
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

// ApplyCounterDeltas aplica los incrementos de una valoración (o su retiro)
// sobre todos los géneros y la década afectados, como una sola transacción.
func (r *PreferenceRepository) ApplyCounterDeltas(
	ctx context.Context,
	userID int,
	genres map[string]recommend.CounterDelta,
	decades map[int]recommend.CounterDelta,
) error {
	return db.WithTransaction(ctx, func(sc mongo.SessionContext) error {
		for genre, d := range genres {
			_, err := r.genres.UpdateOne(sc,
				bson.M{"userId": userID, "genre": genre},
				bson.M{
					"$inc": bson.M{
						"counters.seen":     d.Seen,
						"counters.likes":    d.Likes,
						"counters.dislikes": d.Dislikes,
					},
					"$setOnInsert": bson.M{"survey": models.SurveyUnset},
				},
				options.Update().SetUpsert(true),
			)
			if err != nil {
				return err
			}
		}
		for decade, d := range decades {
			_, err := r.decades.UpdateOne(sc,
				bson.M{"userId": userID, "decade": decade},
				bson.M{"$inc": bson.M{
					"counters.seen":     d.Seen,
					"counters.likes":    d.Likes,
					"counters.dislikes": d.Dislikes,
				}},
				options.Update().SetUpsert(true),
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PreferenceRepository) SetSurveyAnswer(ctx context.Context, userID int, genre string, answer models.SurveyAnswer) error {
	_, err := r.genres.UpdateOne(ctx,
		bson.M{"userId": userID, "genre": genre},
		bson.M{
			"$set":         bson.M{"survey": answer},
			"$setOnInsert": bson.M{"counters": models.Counters{}},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// ClearSurveyAnswers resetea la encuesta completa del usuario (las
// respuestas se reemplazan enteras en cada envío).
func (r *PreferenceRepository) ClearSurveyAnswers(ctx context.Context, userID int) error {
	_, err := r.genres.UpdateMany(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"survey": models.SurveyUnset}},
	)
	return err
}
