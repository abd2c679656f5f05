package db

import (
	"context"
	"log"
	"time"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var mongoClient *mongo.Client
var mongoDB *mongo.Database

func InitMongo(cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("[mongo] error conectando: %v", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("[mongo] ping falló: %v", err)
	}

	mongoClient = client
	mongoDB = client.Database(cfg.MongoDB)
	log.Printf("[mongo] conectado a %s / DB=%s\n", cfg.MongoURI, cfg.MongoDB)
}

func DB() *mongo.Database {
	return mongoDB
}

func Ping(ctx context.Context) error {
	return mongoClient.Ping(ctx, nil)
}

// WithTransaction ejecuta fn dentro de una transacción. Se usa para las
// actualizaciones de contadores de preferencias, que tocan dos colecciones y
// deben aplicarse completas o no aplicarse.
func WithTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := mongoClient.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	return err
}
