package models

import "math"

// Sentinela de MovieLens para películas sin géneros.
const NoGenresListed = "(no genres listed)"

type RatingStats struct {
	Average     float64 `json:"average" bson:"average"`
	Count       int     `json:"count" bson:"count"`
	LastRatedAt string  `json:"lastRatedAt,omitempty" bson:"lastRatedAt,omitempty"`
}

type MovieDoc struct {
	MovieID     int          `json:"movieId" bson:"movieId"`
	Title       string       `json:"title" bson:"title"`
	Year        *int         `json:"year,omitempty" bson:"year,omitempty"`
	Genres      []string     `json:"genres" bson:"genres"`
	RatingStats *RatingStats `json:"ratingStats,omitempty" bson:"ratingStats,omitempty"`
	CreatedAt   string       `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt   string       `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// Decade devuelve la década de estreno (p.e. 1994 -> 1990) o nil si no hay año.
func (m *MovieDoc) Decade() *int {
	if m.Year == nil {
		return nil
	}
	d := int(math.Floor(float64(*m.Year)/10.0)) * 10
	return &d
}

// ListedGenres devuelve los géneros reales de la película, filtrando el
// sentinela. Una lista vacía significa "sin géneros listados".
func (m *MovieDoc) ListedGenres() []string {
	out := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		if g == "" || g == NoGenresListed {
			continue
		}
		out = append(out, g)
	}
	return out
}

func (m *MovieDoc) RatingCount() int {
	if m.RatingStats == nil {
		return 0
	}
	return m.RatingStats.Count
}

func (m *MovieDoc) AverageRating() float64 {
	if m.RatingStats == nil {
		return 0
	}
	return m.RatingStats.Average
}
