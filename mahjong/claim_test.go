package mahjong

import (
	"testing"

	"mahjong-lite/tile"
)

func handList(t *testing.T, names ...string) tile.List {
	t.Helper()
	ids, err := tile.BuildIDs(tiles(t, names...))
	if err != nil {
		t.Fatalf("build hand ids: %v", err)
	}
	return ids
}

func TestChowPartners_PatternOrder(t *testing.T) {
	c5, _ := tile.Parse("C5")

	// Both low and high patterns complete; the low one is checked first.
	hand := handList(t, "C3", "C4", "C6", "C7", "WE", "WN")
	got, ok := chowPartners(hand, c5)
	if !ok {
		t.Fatalf("expected a chow, got none")
	}
	want := [2]tile.Tile{tile.TileCircle6, tile.TileCircle7}
	if got != want {
		t.Fatalf("pattern order broken: got %v want %v", got, want)
	}

	// Middle.
	hand = handList(t, "C4", "C6", "WE", "WN")
	got, ok = chowPartners(hand, c5)
	if !ok || got != [2]tile.Tile{tile.TileCircle4, tile.TileCircle6} {
		t.Fatalf("middle pattern: got %v ok=%v", got, ok)
	}

	// High.
	hand = handList(t, "C3", "C4", "WE", "WN")
	got, ok = chowPartners(hand, c5)
	if !ok || got != [2]tile.Tile{tile.TileCircle3, tile.TileCircle4} {
		t.Fatalf("high pattern: got %v ok=%v", got, ok)
	}

	// Honors never chow.
	we, _ := tile.Parse("WE")
	if _, ok := chowPartners(handList(t, "WE", "WE"), we); ok {
		t.Fatalf("wind tiles must not form runs")
	}

	// Rank bounds: C8 discard cannot open a 8-9-10 run.
	c8, _ := tile.Parse("C8")
	if _, ok := chowPartners(handList(t, "C9", "WE"), c8); ok {
		t.Fatalf("runs must stay within rank 1-9")
	}
}

func TestResolveClaims_WinBeatsPung(t *testing.T) {
	dealer := 0
	hands := [SeatCount][]string{
		0: {
			"DR", "C5", "C6", "C7",
			"C8", "C9", "B1", "B2",
			"B4", "B8", "B9", "K1",
			"K2", "K3", "K4", "K5",
		},
		1: {
			"DR", "DR", "K6", "K7",
			"K8", "WS", "WW", "DG",
			"DW", "C5", "C6", "C7",
			"C8", "C9", "B1", "B2",
		},
		2: {
			"C1", "C1", "C1", "C2",
			"C3", "C4", "B5", "B6",
			"B7", "K9", "K9", "K9",
			"WE", "WE", "WE", "DR",
		},
	}
	g := newSeatedGame(t, Config{
		WallOverride:     wallWithHands(t, dealer, hands, "WN"),
		ForcedDealerSeat: &dealer,
	})
	if err := g.StartHand(); err != nil {
		t.Fatalf("StartHand err: %v", err)
	}
	if err := g.Discard(0, tile.TileDragonRed); err != nil {
		t.Fatalf("Discard err: %v", err)
	}

	best, found := g.ResolveClaims([]Claim{
		{Seat: 1, Kind: ClaimPung},
		{Seat: 2, Kind: ClaimWin},
	})
	if !found || best.Seat != 2 || best.Kind != ClaimWin {
		t.Fatalf("win must outrank pung, got %+v found=%v", best, found)
	}

	if err := g.ProcessClaim(best); err != nil {
		t.Fatalf("ProcessClaim err: %v", err)
	}
	status, winner := g.Status()
	if status != StatusFinished || winner != 2 {
		t.Fatalf("expected seat 2 win, got %v/%d", status, winner)
	}
	res := g.WinResult()
	if res == nil || res.Kind != WinStandard || res.Total != 1.25 {
		t.Fatalf("unexpected win result %+v", res)
	}
	assertConservation(t, g)
}

func TestResolveClaims_EqualKindsFallBackToTurnOrder(t *testing.T) {
	dealer := 0
	hands := [SeatCount][]string{
		0: {
			"C5", "K1", "K2", "K3",
			"K4", "K5", "K6", "K7",
			"K8", "WS", "WW", "WN",
			"DG", "DW", "B8", "B9",
		},
		1: {
			"C6", "C7", "WE", "WE",
			"B1", "B1", "B2", "B2",
			"B4", "B4", "B5", "B5",
			"B6", "B6", "B7", "B7",
		},
		3: {
			"C3", "C4", "C8", "C9",
			"K9", "K9", "DR", "DR",
			"C1", "C1", "C2", "C2",
			"B3", "B3", "K1", "K2",
		},
	}
	g := newSeatedGame(t, Config{
		WallOverride:     wallWithHands(t, dealer, hands, "DG"),
		ForcedDealerSeat: &dealer,
	})
	if err := g.StartHand(); err != nil {
		t.Fatalf("StartHand err: %v", err)
	}
	if err := g.Discard(0, tile.TileCircle5); err != nil {
		t.Fatalf("Discard err: %v", err)
	}

	best, found := g.ResolveClaims([]Claim{
		{Seat: 3, Kind: ClaimChow},
		{Seat: 1, Kind: ClaimChow},
	})
	if !found || best.Seat != 1 {
		t.Fatalf("nearest seat after the discarder wins the tie, got %+v", best)
	}
}

func TestProcessClaim_ChowTakesOrderedPartners(t *testing.T) {
	dealer := 0
	hands := [SeatCount][]string{
		0: {
			"C5", "K1", "K2", "K3",
			"K4", "K5", "K6", "K7",
			"K8", "WS", "WW", "WN",
			"DG", "DW", "B8", "B9",
		},
		1: {
			"C3", "C4", "C6", "C7",
			"WE", "WE", "B1", "B1",
			"B2", "B2", "B4", "B4",
			"B5", "B5", "B6", "B6",
		},
	}
	g := newSeatedGame(t, Config{
		WallOverride:     wallWithHands(t, dealer, hands, "DG"),
		ForcedDealerSeat: &dealer,
	})
	if err := g.StartHand(); err != nil {
		t.Fatalf("StartHand err: %v", err)
	}
	if err := g.Discard(0, tile.TileCircle5); err != nil {
		t.Fatalf("Discard err: %v", err)
	}
	if err := g.ProcessClaim(Claim{Seat: 1, Kind: ClaimChow}); err != nil {
		t.Fatalf("ProcessClaim err: %v", err)
	}

	snap := g.Snapshot()
	if snap.CurrentSeat != 1 || snap.Phase != PhaseTypeDiscard {
		t.Fatalf("claimant must act next in discard phase")
	}
	if snap.HasOpenDiscard {
		t.Fatalf("claimed discard must close the window")
	}
	if len(snap.DiscardPile) != 0 || len(snap.Players[0].Discards) != 0 {
		t.Fatalf("claimed tile must leave both discard piles")
	}

	melds := snap.Players[1].Melds
	if len(melds) != 1 || melds[0].Kind != MeldChow || melds[0].ClaimedFrom != 0 {
		t.Fatalf("expected one chow claimed from seat 0, got %+v", melds)
	}
	// The low pattern (C5 C6 C7) is taken; C3 and C4 stay in hand.
	got := make(map[tile.Tile]bool)
	for _, mt := range melds[0].Tiles {
		got[mt] = true
	}
	if !got[tile.TileCircle5] || !got[tile.TileCircle6] || !got[tile.TileCircle7] {
		t.Fatalf("expected C5 C6 C7 meld, got %v", melds[0].Tiles)
	}
	stays := 0
	for _, h := range snap.Players[1].Hand {
		if h == tile.TileCircle3 || h == tile.TileCircle4 {
			stays++
		}
	}
	if stays != 2 {
		t.Fatalf("C3 and C4 must stay in hand")
	}
	assertConservation(t, g)
	assertHandSizes(t, g)
}

func TestProcessClaim_KongDrawsReplacement(t *testing.T) {
	dealer := 0
	hands := [SeatCount][]string{
		0: {
			"B3", "C5", "C6", "C7",
			"C8", "C9", "K1", "K2",
			"K3", "K4", "K5", "K6",
			"K7", "K8", "WS", "WW",
		},
		1: {
			"B3", "B3", "B3", "WE",
			"WE", "B1", "B1", "B2",
			"B2", "B4", "B4", "B5",
			"B5", "B6", "B6", "B7",
		},
	}
	g := newSeatedGame(t, Config{
		WallOverride:     wallWithHands(t, dealer, hands, "WN", "DW"),
		ForcedDealerSeat: &dealer,
	})
	if err := g.StartHand(); err != nil {
		t.Fatalf("StartHand err: %v", err)
	}
	if err := g.Discard(0, tile.TileBamboo3); err != nil {
		t.Fatalf("Discard err: %v", err)
	}

	before := g.WallCount()
	if err := g.ProcessClaim(Claim{Seat: 1, Kind: ClaimKong}); err != nil {
		t.Fatalf("ProcessClaim err: %v", err)
	}
	if g.WallCount() != before-1 {
		t.Fatalf("kong claim must draw one replacement: wall %d -> %d", before, g.WallCount())
	}

	snap := g.Snapshot()
	melds := snap.Players[1].Melds
	if len(melds) != 1 || melds[0].Kind != MeldKong || melds[0].Concealed || melds[0].ClaimedFrom != 0 {
		t.Fatalf("expected exposed kong from seat 0, got %+v", melds)
	}
	if len(melds[0].Tiles) != 4 {
		t.Fatalf("kong meld keeps all four tiles, got %d", len(melds[0].Tiles))
	}

	ledger := g.Ambitions()
	if len(ledger) != 1 || ledger[0].Kind != AmbitionKang || ledger[0].Seat != 1 {
		t.Fatalf("kong claim must log an instant kang, got %v", ledger)
	}
	assertConservation(t, g)
	assertHandSizes(t, g)
}

func TestDeclareKong_PromotesClaimedPung(t *testing.T) {
	dealer := 0
	hands := [SeatCount][]string{
		0: {
			"B3", "C5", "C6", "C7",
			"C8", "C9", "K1", "K2",
			"K3", "K4", "K5", "K6",
			"K7", "K8", "WS", "WW",
		},
		1: {
			"B3", "B3", "WE", "WE",
			"B1", "B1", "B2", "B2",
			"B4", "B4", "B5", "B5",
			"B6", "B6", "B7", "B7",
		},
	}
	// Seat 1 draws the fourth B3 a full round after the pung claim.
	g := newSeatedGame(t, Config{
		WallOverride:     wallWithHands(t, dealer, hands, "WN", "DG", "DW", "WS", "B3", "WW"),
		ForcedDealerSeat: &dealer,
	})
	if err := g.StartHand(); err != nil {
		t.Fatalf("StartHand err: %v", err)
	}
	if err := g.Discard(0, tile.TileBamboo3); err != nil {
		t.Fatalf("Discard err: %v", err)
	}
	if err := g.ProcessClaim(Claim{Seat: 1, Kind: ClaimPung}); err != nil {
		t.Fatalf("pung claim err: %v", err)
	}

	snap := g.Snapshot()
	if len(g.Ambitions()) != 1 {
		t.Fatalf("pung claim logs one kang, got %v", g.Ambitions())
	}

	// Seat 1 discards, then everyone plays draw-and-discard until seat 1
	// draws again.
	if err := g.Discard(1, snap.Players[1].Hand[0]); err != nil {
		t.Fatalf("Discard err: %v", err)
	}
	for seat := 2; seat != 1; seat = (seat + 1) % SeatCount {
		drawn, ok, err := g.Draw(seat)
		if err != nil || !ok {
			t.Fatalf("Draw seat %d err: %v ok=%v", seat, err, ok)
		}
		if err := g.Discard(seat, drawn); err != nil {
			t.Fatalf("Discard seat %d err: %v", seat, err)
		}
	}
	drawn, ok, err := g.Draw(1)
	if err != nil || !ok {
		t.Fatalf("Draw err: %v ok=%v", err, ok)
	}
	if drawn != tile.TileBamboo3 {
		t.Fatalf("scripted draw mismatch: %s", drawn)
	}

	if err := g.DeclareKong(1, tile.TileBamboo3); err != nil {
		t.Fatalf("promotion err: %v", err)
	}

	snap = g.Snapshot()
	melds := snap.Players[1].Melds
	if len(melds) != 1 || melds[0].Kind != MeldKong || len(melds[0].Tiles) != 4 {
		t.Fatalf("pung must promote in place, got %+v", melds)
	}
	if melds[0].ClaimedFrom != 0 {
		t.Fatalf("promotion keeps the original claim source, got %d", melds[0].ClaimedFrom)
	}
	if len(g.Ambitions()) != 2 {
		t.Fatalf("promotion logs a second kang, got %v", g.Ambitions())
	}
	if snap.CurrentSeat != 1 || snap.Phase != PhaseTypeDiscard {
		t.Fatalf("promotion must not advance the turn")
	}
	assertConservation(t, g)
	assertHandSizes(t, g)
}

func TestIsValidClaim_Gates(t *testing.T) {
	dealer := 0
	hands := [SeatCount][]string{
		0: {
			"C5", "K1", "K2", "K3",
			"K4", "K5", "K6", "K7",
			"K8", "WS", "WW", "WN",
			"DG", "DW", "B8", "B9",
		},
		2: {
			"C6", "C7", "WE", "WE",
			"B1", "B1", "B2", "B2",
			"B4", "B4", "B5", "B5",
			"B6", "B6", "B7", "B7",
		},
	}
	g := newSeatedGame(t, Config{
		WallOverride:     wallWithHands(t, dealer, hands, "DG"),
		ForcedDealerSeat: &dealer,
	})
	if err := g.StartHand(); err != nil {
		t.Fatalf("StartHand err: %v", err)
	}

	// No open discard yet.
	if g.IsValidClaim(Claim{Seat: 2, Kind: ClaimChow}) {
		t.Fatalf("no claim without an open discard")
	}
	if err := g.ProcessClaim(Claim{Seat: 2, Kind: ClaimChow}); err != ErrNoOpenDiscard {
		t.Fatalf("expected ErrNoOpenDiscard, got %v", err)
	}

	if err := g.Discard(0, tile.TileCircle5); err != nil {
		t.Fatalf("Discard err: %v", err)
	}

	// Chow is open to any seat, not only the next one.
	if !g.IsValidClaim(Claim{Seat: 2, Kind: ClaimChow}) {
		t.Fatalf("seat 2 holds C6 C7 and may chow")
	}
	// The discarder can never claim its own tile.
	if g.IsValidClaim(Claim{Seat: 0, Kind: ClaimChow}) {
		t.Fatalf("discarder must not claim its own discard")
	}
	// Not enough copies for a pung.
	if g.IsValidClaim(Claim{Seat: 1, Kind: ClaimPung}) {
		t.Fatalf("pung needs two matching copies in hand")
	}
}
