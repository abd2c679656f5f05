package models

// RatingDoc es la arista (usuario, película). Rating == nil significa que el
// registro existe solo como marcador de "ignorado" (nunca hubo valoración).
type RatingDoc struct {
	UserID    int      `json:"userId" bson:"userId"`
	MovieID   int      `json:"movieId" bson:"movieId"`
	Rating    *float64 `json:"rating,omitempty" bson:"rating,omitempty"`
	RatedAt   int64    `json:"ratedAt,omitempty" bson:"ratedAt,omitempty"`
	Ignored   bool     `json:"ignored" bson:"ignored"`
	IgnoredAt int64    `json:"ignoredAt,omitempty" bson:"ignoredAt,omitempty"`
}

// HasValue indica si hay una valoración numérica guardada.
func (r *RatingDoc) HasValue() bool {
	return r != nil && r.Rating != nil
}

// Lo que devolvemos por API.
type Rating struct {
	UserID  int      `json:"userId"`
	MovieID int      `json:"movieId"`
	Rating  *float64 `json:"rating,omitempty"`
	RatedAt int64    `json:"ratedAt,omitempty"`
	Ignored bool     `json:"ignored"`
}
