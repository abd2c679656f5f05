package models

// WatchlistEntry refleja si la película ya fue valorada o ignorada para no
// tener que cruzar colecciones al renderizar la lista.
type WatchlistEntry struct {
	UserID    int   `json:"userId" bson:"userId"`
	MovieID   int   `json:"movieId" bson:"movieId"`
	TimeAdded int64 `json:"timeAdded" bson:"timeAdded"`
	Rated     bool  `json:"rated" bson:"rated"`
	Ignored   bool  `json:"ignored" bson:"ignored"`
}
