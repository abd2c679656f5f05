package recommend

import (
	"context"
	"testing"
)

func TestMaskedDistance(t *testing.T) {
	t.Run("vectores identicos", func(t *testing.T) {
		a := map[int]float64{1: 4.0, 2: 3.5}
		b := map[int]float64{1: 4.0, 2: 3.5, 3: 1.0}
		d, ok := maskedDistance(a, b)
		if !ok || d != 0 {
			t.Fatalf("d=%v ok=%v, esperaba distancia 0 sobre la intersección", d, ok)
		}
	})

	t.Run("sin solape", func(t *testing.T) {
		a := map[int]float64{1: 4.0}
		b := map[int]float64{2: 4.0}
		if _, ok := maskedDistance(a, b); ok {
			t.Fatalf("historiales disjuntos deberían quedar excluidos")
		}
	})

	t.Run("solo cuenta la interseccion", func(t *testing.T) {
		a := map[int]float64{1: 5.0, 2: 1.0}
		b := map[int]float64{1: 2.0, 3: 5.0}
		d, ok := maskedDistance(a, b)
		if !ok || d != 3.0 {
			t.Fatalf("d=%v, esperaba 3.0 (solo la película 1)", d)
		}
	})
}

func TestNeighbors(t *testing.T) {
	ctx := context.Background()
	eng, st := newTestEngine(
		testMovie(1, 0, []string{"Action"}, 0, 0),
		testMovie(2, 0, []string{"Drama"}, 0, 0),
	)

	// usuario objetivo
	rate(st, 1, 1, 4.0)
	rate(st, 1, 2, 3.0)

	// vecino exacto: mismos valores en la intersección
	rate(st, 2, 1, 4.0)
	rate(st, 2, 2, 3.0)

	// vecino cercano: distancia 1.0
	rate(st, 3, 1, 5.0)
	rate(st, 3, 2, 3.0)

	// sin solape: no aparece
	rate(st, 4, 999, 5.0)

	exact, near, err := eng.Neighbors(ctx, 1, 30)
	if err != nil {
		t.Fatal(err)
	}

	if len(exact) != 1 || exact[0].UserID != 2 {
		t.Fatalf("exact = %+v, esperaba solo el usuario 2", exact)
	}
	if len(near) != 1 || near[0].UserID != 3 {
		t.Fatalf("near = %+v, esperaba solo el usuario 3", near)
	}
}

func TestNeighborsDeterministicOrder(t *testing.T) {
	ctx := context.Background()
	eng, st := newTestEngine(testMovie(1, 0, []string{"Action"}, 0, 0))

	rate(st, 1, 1, 4.0)
	// tres vecinos a la misma distancia: el empate se rompe por id
	rate(st, 5, 1, 5.0)
	rate(st, 3, 1, 5.0)
	rate(st, 9, 1, 5.0)

	_, near, err := eng.Neighbors(ctx, 1, 30)
	if err != nil {
		t.Fatal(err)
	}
	if len(near) != 3 {
		t.Fatalf("esperaba 3 vecinos cercanos, hubo %d", len(near))
	}
	for i, want := range []int{3, 5, 9} {
		if near[i].UserID != want {
			t.Fatalf("orden %v, esperaba [3 5 9]", []int{near[0].UserID, near[1].UserID, near[2].UserID})
		}
	}
}

func TestNeighborsUsuarioSinHistorial(t *testing.T) {
	ctx := context.Background()
	eng, st := newTestEngine(testMovie(1, 0, []string{"Action"}, 0, 0))
	rate(st, 2, 1, 4.0)

	exact, near, err := eng.Neighbors(ctx, 1, 30)
	if err != nil {
		t.Fatal(err)
	}
	if exact != nil || near != nil {
		t.Fatalf("sin historial propio no hay vecinos")
	}
}
