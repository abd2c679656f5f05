package service

import (
	"reflect"
	"testing"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/models"
)

func TestDerivePreferences(t *testing.T) {
	genres := []models.GenrePreference{
		{Genre: "Action", Counters: models.Counters{Seen: 10, Likes: 8, Dislikes: 1}},
		{Genre: "Horror", Counters: models.Counters{Seen: 5, Likes: 0, Dislikes: 4}},
		// justo en el umbral del 70%
		{Genre: "Sci-Fi", Counters: models.Counters{Seen: 10, Likes: 7}},
		// ratio alto pero pocas vistas
		{Genre: "Drama", Counters: models.Counters{Seen: 3, Likes: 3}},
		// sin mayoría clara
		{Genre: "Comedy", Counters: models.Counters{Seen: 10, Likes: 5, Dislikes: 2}},
	}
	decades := []models.DecadePreference{
		{Decade: 1990, Counters: models.Counters{Seen: 6, Likes: 5}},
		{Decade: 2000, Counters: models.Counters{Seen: 4, Dislikes: 3}},
		{Decade: 2010, Counters: models.Counters{Seen: 2, Likes: 2}},
	}

	got := derivePreferences(genres, decades)

	if want := []string{"Action", "Sci-Fi"}; !reflect.DeepEqual(got.LikedGenres, want) {
		t.Fatalf("LikedGenres = %v, esperaba %v", got.LikedGenres, want)
	}
	if want := []string{"Horror"}; !reflect.DeepEqual(got.DislikedGenres, want) {
		t.Fatalf("DislikedGenres = %v, esperaba %v", got.DislikedGenres, want)
	}
	if want := []int{1990}; !reflect.DeepEqual(got.LikedDecades, want) {
		t.Fatalf("LikedDecades = %v, esperaba %v", got.LikedDecades, want)
	}
	if want := []int{2000}; !reflect.DeepEqual(got.DislikedDecades, want) {
		t.Fatalf("DislikedDecades = %v, esperaba %v", got.DislikedDecades, want)
	}
}

func TestDerivePreferencesSinHistorial(t *testing.T) {
	got := derivePreferences(nil, nil)

	// listas vacías, no nil: el JSON sale como [] y no como null
	for name, list := range map[string]int{
		"LikedGenres":     len(got.LikedGenres),
		"DislikedGenres":  len(got.DislikedGenres),
		"LikedDecades":    len(got.LikedDecades),
		"DislikedDecades": len(got.DislikedDecades),
	} {
		if list != 0 {
			t.Fatalf("%s debería estar vacía", name)
		}
	}
	if got.LikedGenres == nil || got.DislikedGenres == nil {
		t.Fatalf("las listas deben inicializarse vacías")
	}
}
