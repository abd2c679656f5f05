package models

import "time"

type RecItem struct {
	MovieID int     `bson:"movieId" json:"movieId"`
	Score   float64 `bson:"score"  json:"score"`
}

// Recommendation guarda el historial de listas servidas.
type Recommendation struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UserID    int       `bson:"userId"        json:"userId"`
	Method    string    `bson:"method"        json:"method"`
	Params    any       `bson:"params"        json:"params"`
	Items     []RecItem `bson:"items"         json:"items"`
	CreatedAt time.Time `bson:"createdAt"     json:"createdAt"`
}
