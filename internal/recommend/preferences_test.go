package recommend

import (
	"context"
	"testing"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/models"
)

func TestCounterDelta(t *testing.T) {
	cases := []struct {
		name     string
		value    float64
		likes    int
		dislikes int
	}{
		{"le gusto", 4.0, 1, 0},
		{"justo sobre el umbral", 3.6, 1, 0},
		{"neutral alto", 3.5, 0, 0},
		{"neutral bajo", 2.5, 0, 0},
		{"no le gusto", 2.0, 0, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := counterDelta(tc.value)
			if d.Seen != 1 {
				t.Fatalf("Seen = %d, esperaba 1", d.Seen)
			}
			if d.Likes != tc.likes || d.Dislikes != tc.dislikes {
				t.Fatalf("delta(%v) = %+v, esperaba likes=%d dislikes=%d", tc.value, d, tc.likes, tc.dislikes)
			}
		})
	}
}

func TestObserveRetractSymmetry(t *testing.T) {
	ctx := context.Background()
	movie := testMovie(1, 1994, []string{"Action", "Comedy"}, 0, 0)
	eng, st := newTestEngine(movie)

	if err := eng.ObserveRating(ctx, 7, &movie, 4.5); err != nil {
		t.Fatal(err)
	}

	g := st.userGenres(7)
	if g["Action"].Counters.Seen != 1 || g["Action"].Counters.Likes != 1 {
		t.Fatalf("contadores de Action tras observar: %+v", g["Action"].Counters)
	}
	if st.userDecades(7)[1990].Counters.Seen != 1 {
		t.Fatalf("contador de la década 1990 no incrementado")
	}

	if err := eng.RetractRating(ctx, 7, &movie, 4.5); err != nil {
		t.Fatal(err)
	}

	for _, p := range g {
		if p.Counters != (models.Counters{}) {
			t.Fatalf("contadores de %s no volvieron a cero: %+v", p.Genre, p.Counters)
		}
	}
	if st.userDecades(7)[1990].Counters != (models.Counters{}) {
		t.Fatalf("contadores de la década no volvieron a cero")
	}
}

func TestObserveRatingSinMetadatos(t *testing.T) {
	ctx := context.Background()
	movie := testMovie(1, 0, []string{models.NoGenresListed}, 0, 0)
	eng, st := newTestEngine(movie)

	// sin géneros listados ni año no hay nada que contar, pero tampoco error
	if err := eng.ObserveRating(ctx, 7, &movie, 4.0); err != nil {
		t.Fatal(err)
	}
	if len(st.userGenres(7)) != 0 || len(st.userDecades(7)) != 0 {
		t.Fatalf("no debería haber materializado contadores")
	}
}

func TestPreferenceRatios(t *testing.T) {
	ctx := context.Background()
	movie := testMovie(1, 1994, []string{"Action"}, 0, 0)
	eng, st := newTestEngine(movie)

	st.userGenres(3)["Action"] = &models.GenrePreference{
		UserID: 3, Genre: "Action",
		Counters: models.Counters{Seen: 10, Likes: 6, Dislikes: 1},
	}

	snap, err := eng.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}

	genres, decades, err := eng.PreferenceRatios(ctx, 3, snap, 1)
	if err != nil {
		t.Fatal(err)
	}

	r := genres["Action"]
	if r.Like != 0.6 || r.Dislike != 0.1 {
		t.Fatalf("Ratios de Action = %+v, esperaba {0.6 0.1}", r)
	}
	// década nunca vista: fila materializada en cero, ratios (0,0)
	if decades[1990] != (Ratios{}) {
		t.Fatalf("década sin historial debería dar (0,0)")
	}
	if _, ok := st.userDecades(3)[1990]; !ok {
		t.Fatalf("la fila de la década no fue materializada")
	}
}

func TestPreferenceRatiosMinCount(t *testing.T) {
	ctx := context.Background()
	movie := testMovie(1, 0, []string{"Drama"}, 0, 0)
	eng, st := newTestEngine(movie)

	st.userGenres(3)["Drama"] = &models.GenrePreference{
		UserID: 3, Genre: "Drama",
		Counters: models.Counters{Seen: 2, Likes: 2},
	}

	snap, _ := eng.Snapshot(ctx)
	genres, _, err := eng.PreferenceRatios(ctx, 3, snap, 4)
	if err != nil {
		t.Fatal(err)
	}
	// guardia de arranque en frío: menos de minCount valoraciones -> (0,0)
	if genres["Drama"] != (Ratios{}) {
		t.Fatalf("con Seen < minCount esperaba (0,0), fue %+v", genres["Drama"])
	}
}
