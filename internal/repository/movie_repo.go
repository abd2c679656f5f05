// internal/repository/movie_repo.go
package repository

import (
	"context"
	"time"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/db"
	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MovieRepository struct {
	col *mongo.Collection
}

func NewMovieRepository() *MovieRepository {
	return &MovieRepository{col: db.DB().Collection("movies")}
}

// Movie y AllMovies son la vista de catálogo que consume el motor de
// recomendaciones.

func (r *MovieRepository) Movie(ctx context.Context, movieID int) (*models.MovieDoc, error) {
	var m models.MovieDoc
	err := r.col.FindOne(ctx, bson.M{"movieId": movieID}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &m, err
}

func (r *MovieRepository) AllMovies(ctx context.Context) ([]models.MovieDoc, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.MovieDoc
	for cur.Next(ctx) {
		var m models.MovieDoc
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, cur.Err()
}

func (r *MovieRepository) Search(
	ctx context.Context,
	q string,
	genre string,
	decade int,
	limit, offset int,
) ([]models.MovieDoc, error) {

	filter := bson.M{}

	if q != "" {
		filter["title"] = bson.M{"$regex": q, "$options": "i"}
	}
	if genre != "" {
		// géneros es un array, esto busca que contenga ese género
		filter["genres"] = genre
	}
	if decade > 0 {
		filter["year"] = bson.M{"$gte": decade, "$lt": decade + 10}
	}

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.MovieDoc
	for cur.Next(ctx) {
		var m models.MovieDoc
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, cur.Err()
}

// Top por popularidad (count) o rating promedio
func (r *MovieRepository) Top(ctx context.Context, metric string, limit int) ([]models.MovieDoc, error) {
	sortField := "ratingStats.count" // popular
	if metric == "rating" {
		sortField = "ratingStats.average"
	}

	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: -1}, {Key: "movieId", Value: 1}}).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.MovieDoc
	for cur.Next(ctx) {
		var m models.MovieDoc
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, cur.Err()
}

// UpdateRatingStats guarda el promedio/contador mantenidos incrementalmente
// por el servicio de valoraciones.
func (r *MovieRepository) UpdateRatingStats(ctx context.Context, movieID int, stats models.RatingStats) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"movieId": movieID},
		bson.M{"$set": bson.M{
			"ratingStats": stats,
			"updatedAt":   time.Now().UTC().Format(time.RFC3339),
		}},
	)
	return err
}

// RebuildStats recalcula ratingStats de todas las películas desde la
// colección de ratings, para corregir la deriva del mantenimiento
// incremental. Pensado para mantenimiento, no para el camino caliente.
func (r *MovieRepository) RebuildStats(ctx context.Context) (int, error) {
	ratings := db.DB().Collection("ratings")

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"ignored": false,
			"rating":  bson.M{"$exists": true, "$ne": nil},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":     "$movieId",
			"count":   bson.M{"$sum": 1},
			"average": bson.M{"$avg": "$rating"},
		}}},
	}

	cur, err := ratings.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	updated := 0
	now := time.Now().UTC().Format(time.RFC3339)
	for cur.Next(ctx) {
		var row struct {
			MovieID int     `bson:"_id"`
			Count   int     `bson:"count"`
			Average float64 `bson:"average"`
		}
		if err := cur.Decode(&row); err != nil {
			return updated, err
		}
		_, err := r.col.UpdateOne(ctx,
			bson.M{"movieId": row.MovieID},
			bson.M{"$set": bson.M{
				"ratingStats.count":   row.Count,
				"ratingStats.average": row.Average,
				"updatedAt":           now,
			}},
		)
		if err != nil {
			return updated, err
		}
		updated++
	}
	return updated, cur.Err()
}

func (r *MovieRepository) DistinctGenres(ctx context.Context) ([]string, error) {
	values, err := r.col.Distinct(ctx, "genres", bson.M{})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" && s != models.NoGenresListed {
			out = append(out, s)
		}
	}
	return out, nil
}
