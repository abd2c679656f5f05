package recommend

import (
	"context"
	"sort"

	"github.com/igrauwelman/aiweb-2-movie-recommender/internal/models"
)

// fakes en memoria de los cuatro stores, para probar el motor sin Mongo

type ratingKey struct{ userID, movieID int }

type memStores struct {
	movies  []models.MovieDoc
	ratings map[ratingKey]models.RatingDoc
	genres  map[int]map[string]*models.GenrePreference
	decades map[int]map[int]*models.DecadePreference
	scores  map[int]map[int]*models.MovieScore
}

func newMemStores(movies ...models.MovieDoc) *memStores {
	return &memStores{
		movies:  movies,
		ratings: map[ratingKey]models.RatingDoc{},
		genres:  map[int]map[string]*models.GenrePreference{},
		decades: map[int]map[int]*models.DecadePreference{},
		scores:  map[int]map[int]*models.MovieScore{},
	}
}

// ---- Catalog ----

func (m *memStores) AllMovies(ctx context.Context) ([]models.MovieDoc, error) {
	return append([]models.MovieDoc(nil), m.movies...), nil
}

func (m *memStores) Movie(ctx context.Context, movieID int) (*models.MovieDoc, error) {
	for i := range m.movies {
		if m.movies[i].MovieID == movieID {
			mv := m.movies[i]
			return &mv, nil
		}
	}
	return nil, nil
}

// ---- RatingStore ----

func (m *memStores) Get(ctx context.Context, userID, movieID int) (*models.RatingDoc, error) {
	doc, ok := m.ratings[ratingKey{userID, movieID}]
	if !ok {
		return nil, nil
	}
	cp := doc
	return &cp, nil
}

func (m *memStores) Upsert(ctx context.Context, doc *models.RatingDoc) error {
	m.ratings[ratingKey{doc.UserID, doc.MovieID}] = *doc
	return nil
}

func (m *memStores) ActiveByUser(ctx context.Context, userID int) ([]models.RatingDoc, error) {
	var out []models.RatingDoc
	for _, doc := range m.ratings {
		if doc.UserID == userID && !doc.Ignored && doc.Rating != nil {
			out = append(out, doc)
		}
	}
	sortRatings(out)
	return out, nil
}

func (m *memStores) IgnoredByUser(ctx context.Context, userID int) ([]models.RatingDoc, error) {
	var out []models.RatingDoc
	for _, doc := range m.ratings {
		if doc.UserID == userID && doc.Ignored {
			out = append(out, doc)
		}
	}
	sortRatings(out)
	return out, nil
}

func (m *memStores) AllActive(ctx context.Context) ([]models.RatingDoc, error) {
	var out []models.RatingDoc
	for _, doc := range m.ratings {
		if !doc.Ignored && doc.Rating != nil {
			out = append(out, doc)
		}
	}
	sortRatings(out)
	return out, nil
}

func sortRatings(docs []models.RatingDoc) {
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].UserID != docs[j].UserID {
			return docs[i].UserID < docs[j].UserID
		}
		return docs[i].MovieID < docs[j].MovieID
	})
}

// ---- PreferenceStore ----

func (m *memStores) userGenres(userID int) map[string]*models.GenrePreference {
	g, ok := m.genres[userID]
	if !ok {
		g = map[string]*models.GenrePreference{}
		m.genres[userID] = g
	}
	return g
}

func (m *memStores) userDecades(userID int) map[int]*models.DecadePreference {
	d, ok := m.decades[userID]
	if !ok {
		d = map[int]*models.DecadePreference{}
		m.decades[userID] = d
	}
	return d
}

func (m *memStores) GenresByUser(ctx context.Context, userID int) ([]models.GenrePreference, error) {
	var out []models.GenrePreference
	for _, p := range m.userGenres(userID) {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Genre < out[j].Genre })
	return out, nil
}

func (m *memStores) DecadesByUser(ctx context.Context, userID int) ([]models.DecadePreference, error) {
	var out []models.DecadePreference
	for _, p := range m.userDecades(userID) {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Decade < out[j].Decade })
	return out, nil
}

func (m *memStores) EnsureGenre(ctx context.Context, userID int, genre string) error {
	g := m.userGenres(userID)
	if _, ok := g[genre]; !ok {
		g[genre] = &models.GenrePreference{UserID: userID, Genre: genre}
	}
	return nil
}

func (m *memStores) EnsureDecade(ctx context.Context, userID, decade int) error {
	d := m.userDecades(userID)
	if _, ok := d[decade]; !ok {
		d[decade] = &models.DecadePreference{UserID: userID, Decade: decade}
	}
	return nil
}

func (m *memStores) ApplyCounterDeltas(ctx context.Context, userID int, genres map[string]CounterDelta, decades map[int]CounterDelta) error {
	for genre, delta := range genres {
		if err := m.EnsureGenre(ctx, userID, genre); err != nil {
			return err
		}
		c := &m.userGenres(userID)[genre].Counters
		c.IncrementSeen(delta.Seen)
		c.IncrementLikes(delta.Likes)
		c.IncrementDislikes(delta.Dislikes)
	}
	for decade, delta := range decades {
		if err := m.EnsureDecade(ctx, userID, decade); err != nil {
			return err
		}
		c := &m.userDecades(userID)[decade].Counters
		c.IncrementSeen(delta.Seen)
		c.IncrementLikes(delta.Likes)
		c.IncrementDislikes(delta.Dislikes)
	}
	return nil
}

func (m *memStores) SetSurveyAnswer(ctx context.Context, userID int, genre string, answer models.SurveyAnswer) error {
	if err := m.EnsureGenre(ctx, userID, genre); err != nil {
		return err
	}
	m.userGenres(userID)[genre].Survey = answer
	return nil
}

func (m *memStores) ClearSurveyAnswers(ctx context.Context, userID int) error {
	for _, p := range m.userGenres(userID) {
		p.Survey = models.SurveyUnset
	}
	return nil
}

// ---- ScoreStore ----

func (m *memStores) userScores(userID int) map[int]*models.MovieScore {
	s, ok := m.scores[userID]
	if !ok {
		s = map[int]*models.MovieScore{}
		m.scores[userID] = s
	}
	return s
}

func (m *memStores) scoreRow(userID, movieID int) *models.MovieScore {
	s := m.userScores(userID)
	row, ok := s[movieID]
	if !ok {
		row = &models.MovieScore{UserID: userID, MovieID: movieID}
		s[movieID] = row
	}
	return row
}

func (m *memStores) InitUser(ctx context.Context, userID int, movieIDs []int) error {
	for _, id := range movieIDs {
		m.scoreRow(userID, id)
	}
	return nil
}

func (m *memStores) ByUser(ctx context.Context, userID int) ([]models.MovieScore, error) {
	var out []models.MovieScore
	for _, row := range m.userScores(userID) {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MovieID < out[j].MovieID })
	return out, nil
}

func memComponentValue(row *models.MovieScore, comp Component) float64 {
	switch comp {
	case CompSurvey:
		return row.SurveyBased
	case CompUserBased:
		return row.UserBased
	case CompItemBased:
		return row.ItemBased
	case CompExploration:
		return row.ExplorationBased
	default:
		return row.Total
	}
}

func setMemComponent(row *models.MovieScore, comp Component, value float64) {
	switch comp {
	case CompSurvey:
		row.SurveyBased = value
	case CompUserBased:
		row.UserBased = value
	case CompItemBased:
		row.ItemBased = value
	case CompExploration:
		row.ExplorationBased = value
	default:
		row.Total = value
	}
}

func (m *memStores) AnyNonZero(ctx context.Context, userID int, comp Component) (bool, error) {
	for _, row := range m.userScores(userID) {
		if memComponentValue(row, comp) != 0 {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStores) BulkSetComponent(ctx context.Context, userID int, comp Component, scores map[int]float64) error {
	for movieID, value := range scores {
		setMemComponent(m.scoreRow(userID, movieID), comp, value)
	}
	return nil
}

func (m *memStores) ZeroComponent(ctx context.Context, userID int, comp Component) error {
	for _, row := range m.userScores(userID) {
		setMemComponent(row, comp, 0)
	}
	return nil
}

func (m *memStores) ZeroMovie(ctx context.Context, userID, movieID int) error {
	row := m.scoreRow(userID, movieID)
	*row = models.MovieScore{UserID: userID, MovieID: movieID}
	return nil
}

func (m *memStores) TopN(ctx context.Context, userID int, comp Component, n int) ([]models.MovieScore, error) {
	rows, _ := m.ByUser(ctx, userID)
	sort.SliceStable(rows, func(i, j int) bool {
		vi, vj := memComponentValue(&rows[i], comp), memComponentValue(&rows[j], comp)
		if vi != vj {
			return vi > vj
		}
		return rows[i].MovieID < rows[j].MovieID
	})
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows, nil
}

// ---- helpers de armado ----

func testMovie(id int, year int, genres []string, count int, avg float64) models.MovieDoc {
	m := models.MovieDoc{
		MovieID: id,
		Title:   "pelicula",
		Genres:  genres,
	}
	if year > 0 {
		m.Year = &year
	}
	if count > 0 {
		m.RatingStats = &models.RatingStats{Average: avg, Count: count}
	}
	return m
}

func newTestEngine(movies ...models.MovieDoc) (*Engine, *memStores) {
	st := newMemStores(movies...)
	eng := New(st, st, st, st, Params{})
	return eng, st
}

func rate(st *memStores, userID, movieID int, value float64) {
	v := value
	st.ratings[ratingKey{userID, movieID}] = models.RatingDoc{
		UserID: userID, MovieID: movieID, Rating: &v,
	}
}
