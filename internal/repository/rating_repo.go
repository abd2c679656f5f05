package repository

import (
	"context"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/db"
	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RatingRepository struct {
	col *mongo.Collection
}

func NewRatingRepository() *RatingRepository {
	return &RatingRepository{col: db.DB().Collection("ratings")}
}

func (r *RatingRepository) Get(ctx context.Context, userID, movieID int) (*models.RatingDoc, error) {
	var doc models.RatingDoc
	err := r.col.FindOne(ctx, bson.M{"userId": userID, "movieId": movieID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &doc, err
}

// Upsert reemplaza el documento completo de la arista (usuario, película).
// Un Rating nil borra el campo en Mongo en vez de guardar null, así los
// filtros con $exists siguen funcionando.
func (r *RatingRepository) Upsert(ctx context.Context, doc *models.RatingDoc) error {
	set := bson.M{
		"ignored":   doc.Ignored,
		"ignoredAt": doc.IgnoredAt,
	}
	update := bson.M{"$set": set}
	if doc.Rating != nil {
		set["rating"] = *doc.Rating
		set["ratedAt"] = doc.RatedAt
	} else {
		update["$unset"] = bson.M{"rating": "", "ratedAt": ""}
	}

	_, err := r.col.UpdateOne(ctx,
		bson.M{"userId": doc.UserID, "movieId": doc.MovieID},
		update,
		options.Update().SetUpsert(true),
	)
	return err
}

func activeFilter() bson.M {
	return bson.M{
		"ignored": false,
		"rating":  bson.M{"$exists": true, "$ne": nil},
	}
}

// ActiveByUser: valoraciones con valor y no ignoradas del usuario.
func (r *RatingRepository) ActiveByUser(ctx context.Context, userID int) ([]models.RatingDoc, error) {
	filter := activeFilter()
	filter["userId"] = userID
	return r.find(ctx, filter, nil)
}

func (r *RatingRepository) IgnoredByUser(ctx context.Context, userID int) ([]models.RatingDoc, error) {
	// la más recientemente ignorada primero
	opts := options.Find().SetSort(bson.D{{Key: "ignoredAt", Value: -1}})
	return r.find(ctx, bson.M{"userId": userID, "ignored": true}, opts)
}

// AllActive: las valoraciones activas de todos los usuarios, para la
// búsqueda de vecinos.
func (r *RatingRepository) AllActive(ctx context.Context) ([]models.RatingDoc, error) {
	return r.find(ctx, activeFilter(), nil)
}

// ByUser lista las valoraciones del usuario para la API, paginadas y de la
// más reciente a la más vieja.
func (r *RatingRepository) ByUser(ctx context.Context, userID, limit, offset int) ([]models.RatingDoc, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "ratedAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))
	filter := activeFilter()
	filter["userId"] = userID
	return r.find(ctx, filter, opts)
}

func (r *RatingRepository) CountActiveByUser(ctx context.Context, userID int) (int64, error) {
	filter := activeFilter()
	filter["userId"] = userID
	return r.col.CountDocuments(ctx, filter)
}

func (r *RatingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.RatingDoc, error) {
	var cur *mongo.Cursor
	var err error
	if opts != nil {
		cur, err = r.col.Find(ctx, filter, opts)
	} else {
		cur, err = r.col.Find(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.RatingDoc
	for cur.Next(ctx) {
		var doc models.RatingDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, cur.Err()
}
