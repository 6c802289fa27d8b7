package mahjong

import (
	"testing"

	"mahjong-lite/tile"
)

func tiles(t *testing.T, names ...string) []tile.Tile {
	t.Helper()
	out := make([]tile.Tile, 0, len(names))
	for _, n := range names {
		tl, err := tile.Parse(n)
		if err != nil {
			t.Fatalf("parse %q: %v", n, err)
		}
		out = append(out, tl)
	}
	return out
}

func meldOf(t *testing.T, kind MeldKind, concealed bool, names ...string) Meld {
	t.Helper()
	ids, err := tile.BuildIDs(tiles(t, names...))
	if err != nil {
		t.Fatalf("build meld ids: %v", err)
	}
	return Meld{Kind: kind, Tiles: ids, Concealed: concealed, ClaimedFrom: InvalidSeat}
}

func TestEvaluateHand_StandardWin(t *testing.T) {
	hand := tiles(t,
		"C1", "C1", "C1",
		"C2", "C3", "C4",
		"B5", "B6", "B7",
		"K9", "K9", "K9",
		"WE", "WE", "WE",
		"DR", "DR",
	)
	res := EvaluateHand(hand, nil, 0)
	if !res.Valid || res.Kind != WinStandard {
		t.Fatalf("expected standard win, got %+v", res)
	}
	if res.Breakdown[AmbitionTodas] != 1.0 {
		t.Fatalf("expected base todas, got %+v", res.Breakdown)
	}
	if res.Breakdown[AmbitionNoFlowers] != 0.25 {
		t.Fatalf("expected no-flowers bonus, got %+v", res.Breakdown)
	}
	if res.Total != 1.25 {
		t.Fatalf("expected total 1.25, got %v", res.Total)
	}
}

func TestEvaluateHand_RejectsWrongTileCount(t *testing.T) {
	hand := tiles(t,
		"C1", "C1", "C1",
		"C2", "C3", "C4",
		"B5", "B6", "B7",
		"K9", "K9", "K9",
		"WE", "WE", "WE",
		"DR",
	)
	if EvaluateHand(hand, nil, 0).Valid {
		t.Fatalf("16-tile hand must be rejected")
	}
	hand = append(hand, tiles(t, "DR", "DG")...)
	if EvaluateHand(hand, nil, 0).Valid {
		t.Fatalf("18-tile hand must be rejected")
	}
}

func TestEvaluateHand_RejectsNearMiss(t *testing.T) {
	hand := tiles(t,
		"C1", "C1", "C1",
		"C2", "C3", "C5", // broken run
		"B5", "B6", "B7",
		"K9", "K9", "K9",
		"WE", "WE", "WE",
		"DR", "DR",
	)
	if EvaluateHand(hand, nil, 0).Valid {
		t.Fatalf("broken run must not win")
	}
}

func TestEvaluateHand_BacktracksPastGreedyTriplet(t *testing.T) {
	// Peeling the C2 triplet strands C3 C4; the search must back out and use
	// the C2C3C4 run with a C2 pair instead.
	hand := tiles(t,
		"C1", "C1", "C1",
		"C2", "C2", "C2", "C3", "C4",
		"B1", "B1", "B1",
		"K5", "K6", "K7",
		"DW", "DW", "DW",
	)
	res := EvaluateHand(hand, nil, 1)
	if !res.Valid || res.Kind != WinStandard {
		t.Fatalf("expected backtracking standard win, got %+v", res)
	}
}

func TestEvaluateHand_SietePares(t *testing.T) {
	hand := tiles(t,
		"C1", "C1", "C2", "C2", "C3", "C3",
		"B1", "B1", "B2", "B2",
		"K1", "K1", "K5", "K5",
		"WE", "WE", "WE",
	)
	res := EvaluateHand(hand, nil, 2)
	if !res.Valid || res.Kind != WinSietePares {
		t.Fatalf("expected siete pares, got %+v", res)
	}
	if res.Total != 1.5 {
		t.Fatalf("siete pares pays fixed 1.5, got %v", res.Total)
	}
	if len(res.Ambitions) != 2 || res.Ambitions[0] != AmbitionTodas || res.Ambitions[1] != AmbitionSietePares {
		t.Fatalf("unexpected ambitions %v", res.Ambitions)
	}
}

func TestEvaluateHand_SietePares_SequenceTrio(t *testing.T) {
	// Seven exact pairs; the three unpaired tiles run C4 C5 C6.
	hand := tiles(t,
		"C1", "C1", "C2", "C2", "C3", "C3",
		"C4", "C5", "C6",
		"B1", "B1", "B2", "B2",
		"K1", "K1", "K5", "K5",
	)
	res := EvaluateHand(hand, nil, 0)
	if !res.Valid || res.Kind != WinSietePares {
		t.Fatalf("expected siete pares with sequence trio, got %+v", res)
	}
}

func TestEvaluateHand_SietePares_RejectsScatteredSingles(t *testing.T) {
	hand := tiles(t,
		"C1", "C1", "C2", "C2", "C3", "C3",
		"C4", "C5", "C9", // not a run
		"B1", "B1", "B2", "B2",
		"K1", "K1", "K5", "K5",
	)
	if EvaluateHand(hand, nil, 0).Valid {
		t.Fatalf("scattered singles must not make siete pares")
	}
}

func TestEvaluateHand_Escalera(t *testing.T) {
	melds := []Meld{
		meldOf(t, MeldChow, false, "C1", "C2", "C3"),
		meldOf(t, MeldChow, false, "C4", "C5", "C6"),
		meldOf(t, MeldChow, false, "C7", "C8", "C9"),
	}
	hand := tiles(t,
		"B1", "B1", "B1",
		"K2", "K3", "K4",
		"WE", "WE",
	)
	res := EvaluateHand(hand, melds, 1)
	if !res.Valid {
		t.Fatalf("expected win, got %+v", res)
	}
	if res.Breakdown[AmbitionEscalera] != 0.5 {
		t.Fatalf("expected escalera, got %+v", res.Breakdown)
	}
	if res.Total != 1.5 {
		t.Fatalf("expected 1.0 + 0.5, got %v", res.Total)
	}
}

func TestEvaluateHand_EscaleraNeedsOneSuit(t *testing.T) {
	melds := []Meld{
		meldOf(t, MeldChow, false, "C1", "C2", "C3"),
		meldOf(t, MeldChow, false, "B4", "B5", "B6"),
		meldOf(t, MeldChow, false, "C7", "C8", "C9"),
	}
	hand := tiles(t,
		"B1", "B1", "B1",
		"K2", "K3", "K4",
		"WE", "WE",
	)
	res := EvaluateHand(hand, melds, 1)
	if !res.Valid {
		t.Fatalf("expected win, got %+v", res)
	}
	if _, ok := res.Breakdown[AmbitionEscalera]; ok {
		t.Fatalf("mixed-suit chows must not pay escalera")
	}
}

func TestEvaluateHand_AllUpNeedsConcealedMelds(t *testing.T) {
	concealedKong := meldOf(t, MeldKong, true, "DR", "DR", "DR", "DR")
	hand := tiles(t,
		"C1", "C1", "C1",
		"C2", "C3", "C4",
		"B5", "B6", "B7",
		"K9", "K9", "K9",
		"WE", "WE",
	)
	res := EvaluateHand(hand, []Meld{concealedKong}, 1)
	if !res.Valid {
		t.Fatalf("expected win, got %+v", res)
	}
	if res.Breakdown[AmbitionAllUp] != 0.25 {
		t.Fatalf("expected all-up for concealed melds, got %+v", res.Breakdown)
	}

	exposed := meldOf(t, MeldPung, false, "DG", "DG", "DG")
	hand2 := tiles(t,
		"C1", "C1", "C1",
		"C2", "C3", "C4",
		"B5", "B6", "B7",
		"K9", "K9", "K9",
		"WE", "WE",
	)
	res2 := EvaluateHand(hand2, []Meld{exposed}, 1)
	if !res2.Valid {
		t.Fatalf("expected win, got %+v", res2)
	}
	if _, ok := res2.Breakdown[AmbitionAllUp]; ok {
		t.Fatalf("exposed meld must not pay all-up")
	}
}

func TestEvaluateHand_KongCountsAsTrio(t *testing.T) {
	kong := meldOf(t, MeldKong, false, "DR", "DR", "DR", "DR")
	hand := tiles(t,
		"C1", "C1", "C1",
		"C2", "C3", "C4",
		"B5", "B6", "B7",
		"K9", "K9", "K9",
		"WE", "WE",
	)
	res := EvaluateHand(hand, []Meld{kong}, 0)
	if !res.Valid || res.Kind != WinStandard {
		t.Fatalf("kong must count as one trio toward 17, got %+v", res)
	}
}
