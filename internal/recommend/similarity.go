package recommend

import (
	"context"
	"math"
	"sort"
)

// Neighbor es otro usuario con historial de valoraciones solapado, junto con
// su distancia euclídea sobre la intersección de películas valoradas.
type Neighbor struct {
	UserID   int
	Distance float64
	Ratings  map[int]float64
}

// maskedDistance calcula la distancia euclídea entre dos usuarios usando solo
// las películas que ambos valoraron. Sin solape devuelve ok=false: dos
// historiales disjuntos no dicen nada, ni a favor ni en contra.
func maskedDistance(a, b map[int]float64) (float64, bool) {
	var sum float64
	overlap := false
	for movieID, va := range a {
		vb, ok := b[movieID]
		if !ok {
			continue
		}
		overlap = true
		d := va - vb
		sum += d * d
	}
	if !overlap {
		return 0, false
	}
	return math.Sqrt(sum), true
}

// Neighbors busca vecinos del usuario entre todos los historiales activos.
// Devuelve por separado los vecinos exactos (distancia 0) y los cercanos
// (0 < d <= maxDistance), ambos ordenados por distancia y, a igualdad, por
// id de usuario para que el resultado sea determinista.
func (e *Engine) Neighbors(ctx context.Context, userID int, maxDistance float64) (exact, near []Neighbor, err error) {
	own, err := e.ratingVector(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if len(own) == 0 {
		return nil, nil, nil
	}

	all, err := e.ratings.AllActive(ctx)
	if err != nil {
		return nil, nil, err
	}

	vectors := map[int]map[int]float64{}
	for _, r := range all {
		if r.UserID == userID || !r.HasValue() {
			continue
		}
		v, ok := vectors[r.UserID]
		if !ok {
			v = map[int]float64{}
			vectors[r.UserID] = v
		}
		v[r.MovieID] = *r.Rating
	}

	for otherID, v := range vectors {
		d, ok := maskedDistance(own, v)
		if !ok {
			continue
		}
		n := Neighbor{UserID: otherID, Distance: d, Ratings: v}
		switch {
		case d == 0:
			exact = append(exact, n)
		case d <= maxDistance:
			near = append(near, n)
		}
	}

	sortNeighbors(exact)
	sortNeighbors(near)
	return exact, near, nil
}

func sortNeighbors(ns []Neighbor) {
	sort.Slice(ns, func(i, j int) bool {
		if ns[i].Distance != ns[j].Distance {
			return ns[i].Distance < ns[j].Distance
		}
		return ns[i].UserID < ns[j].UserID
	})
}

// ratingVector devuelve las valoraciones activas (no ignoradas, con valor)
// del usuario como mapa película -> valor.
func (e *Engine) ratingVector(ctx context.Context, userID int) (map[int]float64, error) {
	rows, err := e.ratings.ActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	v := make(map[int]float64, len(rows))
	for _, r := range rows {
		if r.HasValue() {
			v[r.MovieID] = *r.Rating
		}
	}
	return v, nil
}
