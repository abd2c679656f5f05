package recommend

import (
	"context"
	"sync"
	"testing"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/models"
)

func testCatalog() []models.MovieDoc {
	return []models.MovieDoc{
		testMovie(1, 1994, []string{"Action"}, 100, 4.5),
		testMovie(2, 1999, []string{"Comedy"}, 80, 4.2),
		testMovie(3, 2005, []string{"Drama"}, 60, 3.9),
		testMovie(4, 2010, []string{"Horror"}, 40, 4.1),
		testMovie(5, 0, []string{models.NoGenresListed}, 20, 4.8),
	}
}

func TestRecordRatingZeroesRowAndMarks(t *testing.T) {
	ctx := context.Background()
	eng, st := newTestEngine(testCatalog()...)

	if err := eng.InitializeUser(ctx, 1); err != nil {
		t.Fatal(err)
	}
	st.userScores(1)[2] = &models.MovieScore{
		UserID: 1, MovieID: 2,
		SurveyBased: 0.4, UserBased: 0.6, ItemBased: 0.3, ExplorationBased: 0.2, Total: 0.4,
	}

	eng.Coordinator().Clear(1, AllComponents)
	dirty, err := eng.RecordRating(ctx, 1, 2, 4.0)
	if err != nil {
		t.Fatal(err)
	}

	if dirty != AfterRating {
		t.Fatalf("dirty = %v, esperaba %v", dirty, AfterRating)
	}
	row := st.userScores(1)[2]
	if row.SurveyBased != 0 || row.UserBased != 0 || row.ItemBased != 0 ||
		row.ExplorationBased != 0 || row.Total != 0 {
		t.Fatalf("la fila de la película valorada debe quedar toda en cero: %+v", row)
	}
	// los contadores de preferencias reflejan la valoración
	if c := st.userGenres(1)["Comedy"].Counters; c.Seen != 1 || c.Likes != 1 {
		t.Fatalf("contadores de Comedy: %+v", c)
	}
}

func TestRecordRatingMovieInexistente(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(testCatalog()...)

	if _, err := eng.RecordRating(ctx, 1, 999, 4.0); err != ErrMovieNotFound {
		t.Fatalf("err = %v, esperaba ErrMovieNotFound", err)
	}
}

func TestRerateRetiraLaAnterior(t *testing.T) {
	ctx := context.Background()
	eng, st := newTestEngine(testCatalog()...)

	if _, err := eng.RecordRating(ctx, 1, 1, 4.0); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.RecordRating(ctx, 1, 1, 2.0); err != nil {
		t.Fatal(err)
	}

	// la primera valoración se retira antes de observar la nueva
	c := st.userGenres(1)["Action"].Counters
	if c.Seen != 1 || c.Likes != 0 || c.Dislikes != 1 {
		t.Fatalf("contadores tras re-valorar: %+v, esperaba seen=1 likes=0 dislikes=1", c)
	}
}

func TestIgnoreSinValorNoMarcaNada(t *testing.T) {
	ctx := context.Background()
	eng, st := newTestEngine(testCatalog()...)
	eng.Coordinator().Clear(1, AllComponents)

	dirty, err := eng.RecordIgnore(ctx, 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !dirty.Empty() {
		t.Fatalf("ignorar sin valoración previa no debería marcar componentes: %v", dirty)
	}

	doc := st.ratings[ratingKey{1, 3}]
	if !doc.Ignored || doc.Rating != nil {
		t.Fatalf("esperaba un marcador puro de ignorado: %+v", doc)
	}
}

func TestIgnoreConValorRetiraContadores(t *testing.T) {
	ctx := context.Background()
	eng, st := newTestEngine(testCatalog()...)

	if _, err := eng.RecordRating(ctx, 1, 1, 4.5); err != nil {
		t.Fatal(err)
	}
	eng.Coordinator().Clear(1, AllComponents)

	dirty, err := eng.RecordIgnore(ctx, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if dirty != AfterRating {
		t.Fatalf("dirty = %v, esperaba %v", dirty, AfterRating)
	}
	if c := st.userGenres(1)["Action"].Counters; c != (models.Counters{}) {
		t.Fatalf("contadores no retirados al ignorar: %+v", c)
	}
	// la valoración se conserva junto con el flag
	doc := st.ratings[ratingKey{1, 1}]
	if !doc.Ignored || doc.Rating == nil || *doc.Rating != 4.5 {
		t.Fatalf("doc tras ignorar: %+v", doc)
	}
}

func TestUnignoreReincorpora(t *testing.T) {
	ctx := context.Background()
	eng, st := newTestEngine(testCatalog()...)

	if _, err := eng.RecordRating(ctx, 1, 1, 4.5); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.RecordIgnore(ctx, 1, 1); err != nil {
		t.Fatal(err)
	}
	eng.Coordinator().Clear(1, AllComponents)

	dirty, err := eng.RecordUnignore(ctx, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if dirty != AfterRating {
		t.Fatalf("des-ignorar marca los componentes amplios siempre, fue %v", dirty)
	}
	if c := st.userGenres(1)["Action"].Counters; c.Seen != 1 || c.Likes != 1 {
		t.Fatalf("contadores tras des-ignorar: %+v", c)
	}
	if doc := st.ratings[ratingKey{1, 1}]; doc.Ignored {
		t.Fatalf("la valoración sigue ignorada")
	}
}

func TestSubmitSurveyMarcaSurveyYHybrid(t *testing.T) {
	ctx := context.Background()
	eng, st := newTestEngine(testCatalog()...)
	eng.Coordinator().Clear(1, AllComponents)

	dirty, err := eng.SubmitSurvey(ctx, 1, []string{"Action"}, []string{"Horror"})
	if err != nil {
		t.Fatal(err)
	}
	if dirty != AfterSurvey {
		t.Fatalf("dirty = %v, esperaba %v", dirty, AfterSurvey)
	}

	// un segundo envío reemplaza por completo al primero
	if _, err := eng.SubmitSurvey(ctx, 1, []string{"Comedy"}, nil); err != nil {
		t.Fatal(err)
	}
	if st.userGenres(1)["Action"].Survey != models.SurveyUnset {
		t.Fatalf("Action debería haber vuelto a 'unset'")
	}
	if st.userGenres(1)["Comedy"].Survey != models.SurveyInclude {
		t.Fatalf("Comedy debería estar incluido")
	}
}

func TestFallbackExplorativeConPocoHistorial(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(testCatalog()...)

	if err := eng.InitializeUser(ctx, 1); err != nil {
		t.Fatal(err)
	}
	// dos valoraciones: por debajo del mínimo para scores personalizados
	if _, err := eng.RecordRating(ctx, 1, 1, 4.0); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.RecordRating(ctx, 1, 2, 3.0); err != nil {
		t.Fatal(err)
	}

	res, err := eng.GetRecommendations(ctx, RecommendationRequest{UserID: 1, Method: MethodHybrid})
	if err != nil {
		t.Fatal(err)
	}

	if res.Method != MethodExploration {
		t.Fatalf("método efectivo = %v, esperaba fallback a explorativo", res.Method)
	}
	if res.Requested != MethodHybrid {
		t.Fatalf("el método pedido debe conservarse en la respuesta")
	}
	if len(res.Items) == 0 {
		t.Fatalf("esperaba recomendaciones explorativas")
	}
	// las películas valoradas nunca aparecen con score
	for _, item := range res.Items {
		if (item.Movie.MovieID == 1 || item.Movie.MovieID == 2) && item.Score != 0 {
			t.Fatalf("película valorada con score %v", item.Score)
		}
	}
}

func TestFallbackSurveyConEncuesta(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(testCatalog()...)

	if err := eng.InitializeUser(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.SubmitSurvey(ctx, 1, []string{"Action"}, nil); err != nil {
		t.Fatal(err)
	}

	res, err := eng.GetRecommendations(ctx, RecommendationRequest{UserID: 1, Method: MethodUserBased})
	if err != nil {
		t.Fatal(err)
	}
	if res.Method != MethodSurvey {
		t.Fatalf("con encuesta y sin historial el fallback es survey-based, fue %v", res.Method)
	}
}

func TestGetRecommendationsIdempotente(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(testCatalog()...)

	if err := eng.InitializeUser(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.SubmitSurvey(ctx, 1, []string{"Action", "Comedy"}, nil); err != nil {
		t.Fatal(err)
	}

	first, err := eng.GetRecommendations(ctx, RecommendationRequest{UserID: 1, Method: MethodSurvey})
	if err != nil {
		t.Fatal(err)
	}
	if eng.Coordinator().Pending(1) != 0 {
		t.Fatalf("el dirty set debe quedar vacío tras servir")
	}

	second, err := eng.GetRecommendations(ctx, RecommendationRequest{UserID: 1, Method: MethodSurvey})
	if err != nil {
		t.Fatal(err)
	}
	if second.Recomputed != 0 {
		t.Fatalf("sin pendientes no debería recalcular nada: %v", second.Recomputed)
	}

	if len(first.Items) != len(second.Items) {
		t.Fatalf("resultados de distinto tamaño: %d vs %d", len(first.Items), len(second.Items))
	}
	for i := range first.Items {
		if first.Items[i].Movie.MovieID != second.Items[i].Movie.MovieID ||
			first.Items[i].Score != second.Items[i].Score {
			t.Fatalf("la segunda llamada difiere en la posición %d", i)
		}
	}
}

func TestRankingDesempataPorMovieID(t *testing.T) {
	ctx := context.Background()
	eng, st := newTestEngine(testCatalog()...)

	if err := eng.InitializeUser(ctx, 1); err != nil {
		t.Fatal(err)
	}
	eng.Coordinator().Clear(1, AllComponents)

	// tres películas con el mismo score explorativo
	for _, id := range []int{4, 2, 3} {
		st.userScores(1)[id].ExplorationBased = 0.9
	}

	res, err := eng.GetRecommendations(ctx, RecommendationRequest{UserID: 1, Method: MethodExploration, Amount: 3})
	if err != nil {
		t.Fatal(err)
	}

	want := []int{2, 3, 4}
	for i, item := range res.Items {
		if item.Movie.MovieID != want[i] {
			got := make([]int, len(res.Items))
			for j := range res.Items {
				got[j] = res.Items[j].Movie.MovieID
			}
			t.Fatalf("orden %v, esperaba %v", got, want)
		}
	}
}

func TestRecomputeCompletoConHistorial(t *testing.T) {
	ctx := context.Background()
	eng, st := newTestEngine(testCatalog()...)

	if err := eng.InitializeUser(ctx, 1); err != nil {
		t.Fatal(err)
	}
	// historial suficiente para scores personalizados
	for movieID, value := range map[int]float64{1: 4.5, 2: 4.0, 3: 2.0, 4: 3.0} {
		if _, err := eng.RecordRating(ctx, 1, movieID, value); err != nil {
			t.Fatal(err)
		}
	}
	// un vecino con gustos parecidos
	rate(st, 2, 1, 4.5)
	rate(st, 2, 2, 4.0)
	rate(st, 2, 5, 5.0)

	res, err := eng.GetRecommendations(ctx, RecommendationRequest{UserID: 1, Method: MethodHybrid})
	if err != nil {
		t.Fatal(err)
	}
	if res.Method != MethodHybrid {
		t.Fatalf("con historial suficiente no hay fallback, fue %v", res.Method)
	}

	// todos los scores quedan dentro de [0, 1]
	rows, _ := st.ByUser(ctx, 1)
	for _, row := range rows {
		for _, v := range []float64{row.SurveyBased, row.UserBased, row.ItemBased, row.ExplorationBased, row.Total} {
			if v < 0 || v > 1 {
				t.Fatalf("score fuera de rango en la película %d: %+v", row.MovieID, row)
			}
		}
	}

	// la película 5 le gustó al vecino exacto y el usuario no la valoró
	if got := scoreOf(t, st, 1, 5, CompUserBased); got != 1.0 {
		t.Fatalf("score user-based de la película 5 = %v, esperaba 1.0", got)
	}
}

// slowTopNStore bloquea la primera llamada a TopN para poder intercalar
// otras operaciones con un servicio de recomendaciones en vuelo.
type slowTopNStore struct {
	*memStores
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *slowTopNStore) TopN(ctx context.Context, userID int, comp Component, n int) ([]models.MovieScore, error) {
	s.once.Do(func() {
		close(s.entered)
		<-s.release
	})
	return s.memStores.TopN(ctx, userID, comp, n)
}

func TestMarcaDuranteServicioNoSePierde(t *testing.T) {
	ctx := context.Background()
	st := newMemStores(testCatalog()...)
	slow := &slowTopNStore{
		memStores: st,
		entered:   make(chan struct{}),
		release:   make(chan struct{}),
	}
	eng := New(st, st, st, slow, Params{})

	if err := eng.InitializeUser(ctx, 1); err != nil {
		t.Fatal(err)
	}

	served := make(chan error, 1)
	go func() {
		_, err := eng.GetRecommendations(ctx, RecommendationRequest{UserID: 1, Method: MethodExploration})
		served <- err
	}()
	<-slow.entered

	// la valoración llega con el servicio aún en vuelo: espera el mutex del
	// usuario y su marca tiene que sobrevivir al Clear del servicio
	rated := make(chan ComponentSet, 1)
	go func() {
		dirty, err := eng.RecordRating(ctx, 1, 2, 4.5)
		if err != nil {
			t.Error(err)
		}
		rated <- dirty
	}()

	close(slow.release)
	if err := <-served; err != nil {
		t.Fatal(err)
	}
	if dirty := <-rated; dirty != AfterRating {
		t.Fatalf("dirty devuelto = %v, esperaba %v", dirty, AfterRating)
	}
	if pending := eng.Coordinator().Pending(1); pending != AfterRating {
		t.Fatalf("la marca concurrente se perdió: pending=%v", pending)
	}
}

func TestDirtyDeLaPeticionFuerzaRecalculo(t *testing.T) {
	ctx := context.Background()
	eng, st := newTestEngine(testCatalog()...)

	if err := eng.InitializeUser(ctx, 1); err != nil {
		t.Fatal(err)
	}
	eng.Coordinator().Clear(1, AllComponents)

	res, err := eng.GetRecommendations(ctx, RecommendationRequest{
		UserID: 1,
		Method: MethodExploration,
		Dirty:  ComponentSet(CompExploration),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Recomputed != ComponentSet(CompExploration) {
		t.Fatalf("el dirty de la petición debe recalcularse: %v", res.Recomputed)
	}
	// round(0.5*(4.5-4.0) + 0.5*(100/100), 2) = 0.75
	if got := scoreOf(t, st, 1, 1, CompExploration); got != 0.75 {
		t.Fatalf("el recálculo no corrió: película 1 = %v", got)
	}
}

func TestFilteredRecommendations(t *testing.T) {
	ctx := context.Background()
	eng, st := newTestEngine(
		testMovie(1, 1994, []string{"Action"}, 10, 4.0),
		testMovie(2, 1995, []string{"Comedy"}, 10, 4.0),
		testMovie(3, 1991, []string{"Action"}, 10, 4.0),
		testMovie(4, 2012, []string{"Action"}, 10, 4.0),
		testMovie(5, 1993, []string{"Action"}, 10, 4.0),
		testMovie(6, 2001, []string{"Drama"}, 10, 4.0),
		testMovie(7, 2002, []string{"Drama"}, 10, 4.0),
		testMovie(8, 2003, []string{"Drama"}, 10, 4.0),
	)

	if err := eng.InitializeUser(ctx, 1); err != nil {
		t.Fatal(err)
	}
	eng.Coordinator().Clear(1, AllComponents)

	// historial suficiente para que hybrid no caiga al fallback
	for _, id := range []int{5, 6, 7, 8} {
		rate(st, 1, id, 4.0)
	}
	st.userScores(1)[1].Total = 0.5
	st.userScores(1)[2].Total = 0.9
	st.userScores(1)[3].Total = 0.5
	st.userScores(1)[4].Total = 0.95
	st.userScores(1)[5].Total = 1.0

	// género y década a la vez; la 5 filtra pero está valorada
	res, err := eng.FilteredRecommendations(ctx, RecommendationRequest{UserID: 1, Method: MethodHybrid}, "Action", 1990)
	if err != nil {
		t.Fatal(err)
	}
	if res.Method != MethodHybrid {
		t.Fatalf("método efectivo = %v", res.Method)
	}
	assertMovieIDs(t, res.Items, []int{1, 3})

	// solo década: ordena por total descendente, empate por id
	res, err = eng.FilteredRecommendations(ctx, RecommendationRequest{UserID: 1, Method: MethodHybrid}, "", 1990)
	if err != nil {
		t.Fatal(err)
	}
	assertMovieIDs(t, res.Items, []int{2, 1, 3})

	// el amount recorta la lista filtrada
	res, err = eng.FilteredRecommendations(ctx, RecommendationRequest{UserID: 1, Method: MethodHybrid, Amount: 1}, "", 1990)
	if err != nil {
		t.Fatal(err)
	}
	assertMovieIDs(t, res.Items, []int{2})
}

func assertMovieIDs(t *testing.T, items []ScoredMovie, want []int) {
	t.Helper()
	got := make([]int, len(items))
	for i := range items {
		got[i] = items[i].Movie.MovieID
	}
	if len(got) != len(want) {
		t.Fatalf("ids %v, esperaba %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ids %v, esperaba %v", got, want)
		}
	}
}

func TestParseMethod(t *testing.T) {
	if m, err := ParseMethod(""); err != nil || m != MethodHybrid {
		t.Fatalf("el método vacío debe resolver a hybrid")
	}
	if _, err := ParseMethod("magia"); err == nil {
		t.Fatalf("método desconocido debe rechazarse")
	}
	for _, name := range []string{"survey-based", "user-based", "item-based", "explorative", "hybrid"} {
		m, err := ParseMethod(name)
		if err != nil {
			t.Fatalf("ParseMethod(%q): %v", name, err)
		}
		if m.String() != name {
			t.Fatalf("round-trip de %q dio %q", name, m.String())
		}
	}
}
