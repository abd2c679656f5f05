package repository

import (
	"context"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/db"
	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository() *UserRepository {
	return &UserRepository{col: db.DB().Collection("users")}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.UserDoc, error) {
	var u models.UserDoc
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &u, err
}

func (r *UserRepository) FindByID(ctx context.Context, userID int) (*models.UserDoc, error) {
	var u models.UserDoc
	err := r.col.FindOne(ctx, bson.M{"userId": userID}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &u, err
}

func (r *UserRepository) GetNextUserID(ctx context.Context) (int, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "userId", Value: -1}})
	var u models.UserDoc
	err := r.col.FindOne(ctx, bson.M{}, opts).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return u.UserID + 1, nil
}

func (r *UserRepository) Insert(ctx context.Context, u *models.UserDoc) error {
	_, err := r.col.InsertOne(ctx, u)
	return err
}

// UpdateByID aplica un $set parcial sobre el usuario.
func (r *UserRepository) UpdateByID(ctx context.Context, userID int, update bson.M) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": update},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetInitializedScores marca que las filas de score del usuario ya fueron
// materializadas para todo el catálogo.
func (r *UserRepository) SetInitializedScores(ctx context.Context, userID int, done bool) error {
	return r.UpdateByID(ctx, userID, bson.M{"initializedScores": done})
}

func (r *UserRepository) AllIDs(ctx context.Context) ([]int, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"userId": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []int
	for cur.Next(ctx) {
		var u models.UserDoc
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out = append(out, u.UserID)
	}
	return out, cur.Err()
}
