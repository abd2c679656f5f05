package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/config"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

func InitRedis(cfg *config.Config) {
	client = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("❌ Error conectando a Redis: %v", err)
	}

	log.Println("✅ Redis OK.")
}

// =======================================================
//  Helpers JSON para usar desde los servicios
// =======================================================

// GetJSON lee una key de Redis, si existe deserializa el JSON en `dest`.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}

	val, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		// no existe la clave
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON serializa `value` a JSON y lo guarda en Redis con TTL en segundos.
func SetJSON(ctx context.Context, key string, value any, ttlSeconds int) error {
	if client == nil {
		return nil
	}

	b, err := json.Marshal(value)
	if err != nil {
		return err
	}

	ttl := time.Duration(ttlSeconds) * time.Second
	return client.Set(ctx, key, b, ttl).Err()
}

// =======================================================
//  Versionado por usuario para invalidar rankings cacheados
// =======================================================

func versionKey(userID int) string {
	return fmt.Sprintf("rec:ver:user:%d", userID)
}

// UserVersion devuelve el contador de versión del usuario (0 si no existe).
// Las claves de cache de rankings incluyen esta versión, así que basta con
// incrementarla para que las entradas viejas dejen de resolverse.
func UserVersion(ctx context.Context, userID int) int64 {
	if client == nil {
		return 0
	}
	v, err := client.Get(ctx, versionKey(userID)).Int64()
	if err != nil {
		return 0
	}
	return v
}

// BumpUserVersion invalida todo lo cacheado para el usuario.
func BumpUserVersion(ctx context.Context, userID int) {
	if client == nil {
		return
	}
	if err := client.Incr(ctx, versionKey(userID)).Err(); err != nil {
		log.Printf("[cache] error incrementando versión de usuario %d: %v", userID, err)
	}
}

func Ping(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Ping(ctx).Err()
}
