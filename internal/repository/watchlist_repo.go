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

type WatchlistRepository struct {
	col *mongo.Collection
}

func NewWatchlistRepository() *WatchlistRepository {
	return &WatchlistRepository{col: db.DB().Collection("watchlist")}
}

func (r *WatchlistRepository) Add(ctx context.Context, userID, movieID int) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"userId": userID, "movieId": movieID},
		bson.M{"$setOnInsert": bson.M{
			"timeAdded": time.Now().Unix(),
			"rated":     false,
			"ignored":   false,
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *WatchlistRepository) Remove(ctx context.Context, userID, movieID int) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"userId": userID, "movieId": movieID})
	return err
}

func (r *WatchlistRepository) ByUser(ctx context.Context, userID int) ([]models.WatchlistEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timeAdded", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.WatchlistEntry
	for cur.Next(ctx) {
		var e models.WatchlistEntry
		if err := cur.Decode(&e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, cur.Err()
}

// SetFlags refleja en la watchlist que la película fue valorada o ignorada.
// Si la película no está en la lista no pasa nada.
func (r *WatchlistRepository) SetFlags(ctx context.Context, userID, movieID int, rated, ignored bool) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"userId": userID, "movieId": movieID},
		bson.M{"$set": bson.M{"rated": rated, "ignored": ignored}},
	)
	return err
}
