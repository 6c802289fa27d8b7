package mahjong

import (
	"testing"

	"mahjong-lite/tile"
)

// wallWithHands builds a WallOverride that deals the given 16-tile hands in
// the engine's round-robin batch order and then serves draws front-first.
// Nil hands are filled from the set's spare capacity; the rest of the set
// follows, playing tiles before bonus tiles, so no unexpected flowers appear.
func wallWithHands(t *testing.T, dealer int, hands [SeatCount][]string, draws ...string) []tile.ID {
	t.Helper()

	used := make(map[tile.Tile]int)
	parsed := [SeatCount][]tile.Tile{}
	for seat, names := range hands {
		if names == nil {
			continue
		}
		if len(names) != HandBaseSize {
			t.Fatalf("seat %d hand must hold %d tiles, got %d", seat, HandBaseSize, len(names))
		}
		parsed[seat] = tiles(t, names...)
		for _, tl := range parsed[seat] {
			used[tl]++
		}
	}
	drawTiles := tiles(t, draws...)
	for _, tl := range drawTiles {
		used[tl]++
	}

	var pool []tile.Tile
	for _, kind := range tile.PlayingKinds {
		for c := used[kind]; c < 4; c++ {
			pool = append(pool, kind)
		}
	}
	for seat := range parsed {
		if parsed[seat] != nil {
			continue
		}
		if len(pool) < HandBaseSize {
			t.Fatalf("not enough spare tiles to fill seat %d", seat)
		}
		parsed[seat] = pool[:HandBaseSize]
		pool = pool[HandBaseSize:]
	}

	prefix := make([]tile.Tile, 0, 64+len(drawTiles))
	for pass := 0; pass < HandBaseSize/4; pass++ {
		for j := 0; j < SeatCount; j++ {
			seat := (dealer + j) % SeatCount
			prefix = append(prefix, parsed[seat][pass*4:pass*4+4]...)
		}
	}
	prefix = append(prefix, drawTiles...)

	ids, err := tile.BuildIDs(prefix)
	if err != nil {
		t.Fatalf("build wall prefix: %v", err)
	}

	inPrefix := make(map[tile.ID]bool, len(ids))
	for _, id := range ids {
		inPrefix[id] = true
	}
	var rest, bonus []tile.ID
	for _, id := range tile.FullIDs() {
		if inPrefix[id] {
			continue
		}
		if id.Of().IsBonus() {
			bonus = append(bonus, id)
		} else {
			rest = append(rest, id)
		}
	}
	return append(append(ids, rest...), bonus...)
}

func newSeatedGame(t *testing.T, cfg Config) *Game {
	t.Helper()
	g, err := NewGame(cfg)
	if err != nil {
		t.Fatalf("NewGame err: %v", err)
	}
	for seat := 0; seat < SeatCount; seat++ {
		if err := g.SitDown(seat, uint64(10001+seat), false); err != nil {
			t.Fatalf("SitDown seat %d err: %v", seat, err)
		}
	}
	return g
}

func assertConservation(t *testing.T, g *Game) {
	t.Helper()
	snap := g.Snapshot()
	total := snap.WallCount
	for _, ps := range snap.Players {
		total += len(ps.Hand) + len(ps.Flowers) + len(ps.Discards)
		for _, m := range ps.Melds {
			total += len(m.Tiles)
		}
	}
	if total != tile.TotalTiles {
		t.Fatalf("tile conservation broken: %d != %d", total, tile.TotalTiles)
	}
}

func assertHandSizes(t *testing.T, g *Game) {
	t.Helper()
	snap := g.Snapshot()
	for _, ps := range snap.Players {
		held := len(ps.Hand) + 3*len(ps.Melds)
		want := HandBaseSize
		if ps.Seat == snap.CurrentSeat && snap.Phase == PhaseTypeDiscard {
			want = HandBaseSize + 1
		}
		if held != want {
			t.Fatalf("seat %d holds %d tiles, want %d", ps.Seat, held, want)
		}
	}
}

func TestStartHand_DealsSeventeenToDealer(t *testing.T) {
	g := newSeatedGame(t, Config{Seed: 42})
	if err := g.StartHand(); err != nil {
		t.Fatalf("StartHand err: %v", err)
	}

	snap := g.Snapshot()
	if snap.Phase != PhaseTypeDiscard {
		t.Fatalf("game must open in the dealer's discard phase")
	}
	if !snap.HasDrawnThisTurn {
		t.Fatalf("dealer's 17th tile counts as the turn draw")
	}
	if snap.CurrentSeat != snap.DealerSeat {
		t.Fatalf("dealer must act first")
	}
	assertHandSizes(t, g)
	assertConservation(t, g)

	for _, ps := range snap.Players {
		for _, h := range ps.Hand {
			if h.IsBonus() {
				t.Fatalf("seat %d still holds bonus tile %s", ps.Seat, h)
			}
		}
	}
}

func TestStartHand_DeterministicWallScenario(t *testing.T) {
	// Canonical set order: 136 playing tiles first, the 8 bonus tiles last.
	// Dealing 4x16 plus the dealer's opening draw leaves 79 in the wall, of
	// which 71 are playable draws.
	dealer := 0
	g := newSeatedGame(t, Config{
		Seed:             1,
		WallOverride:     tile.FullIDs(),
		ForcedDealerSeat: &dealer,
	})
	if err := g.StartHand(); err != nil {
		t.Fatalf("StartHand err: %v", err)
	}

	snap := g.Snapshot()
	if snap.WallCount != tile.TotalTiles-SeatCount*HandBaseSize-1 {
		t.Fatalf("wall count = %d, want %d", snap.WallCount, tile.TotalTiles-SeatCount*HandBaseSize-1)
	}
	if !snap.HasDrawnThisTurn {
		t.Fatalf("dealer hasDrawnThisTurn must be true after setup")
	}
	for _, ps := range snap.Players {
		if len(ps.Flowers) != 0 {
			t.Fatalf("no flowers expected, seat %d has %d", ps.Seat, len(ps.Flowers))
		}
	}

	// The 8 bonus tiles remain buried in the wall: 71 playable draws left.
	playable := snap.WallCount - len(tile.BonusKinds)
	if playable != tile.TotalTiles-len(tile.BonusKinds)-SeatCount*HandBaseSize-1 {
		t.Fatalf("playable wall = %d, want %d", playable, tile.TotalTiles-len(tile.BonusKinds)-SeatCount*HandBaseSize-1)
	}
}

func TestStartHand_ReplacesDealtBonusTiles(t *testing.T) {
	// Put a flower and a season into the first dealt batches.
	wall := tile.FullIDs()
	f1 := wall.IndexOf(tile.TileFlower1)
	wall[0], wall[f1] = wall[f1], wall[0]
	s1 := wall.IndexOf(tile.TileSeason1)
	wall[5], wall[s1] = wall[s1], wall[5]

	dealer := 0
	g := newSeatedGame(t, Config{WallOverride: wall, ForcedDealerSeat: &dealer})
	if err := g.StartHand(); err != nil {
		t.Fatalf("StartHand err: %v", err)
	}

	snap := g.Snapshot()
	if len(snap.Players[0].Flowers) != 1 {
		t.Fatalf("dealer must have exposed the dealt flower, got %v", snap.Players[0].Flowers)
	}
	if len(snap.Players[1].Flowers) != 1 {
		t.Fatalf("seat 1 must have exposed the dealt season, got %v", snap.Players[1].Flowers)
	}
	assertHandSizes(t, g)
	assertConservation(t, g)
}

func TestDiscard_RejectsIllegalOperations(t *testing.T) {
	dealer := 0
	g := newSeatedGame(t, Config{
		WallOverride:     wallWithHands(t, dealer, [SeatCount][]string{}, "WN"),
		ForcedDealerSeat: &dealer,
	})
	if err := g.StartHand(); err != nil {
		t.Fatalf("StartHand err: %v", err)
	}

	snap := g.Snapshot()
	if err := g.Discard(1, snap.Players[1].Hand[0]); err != ErrOutOfTurn {
		t.Fatalf("expected ErrOutOfTurn, got %v", err)
	}
	if _, _, err := g.Draw(0); err != ErrWrongPhase {
		t.Fatalf("expected ErrWrongPhase for draw in discard phase, got %v", err)
	}
	if err := g.Discard(0, tile.TileSeason1); err != ErrTileNotInHand {
		t.Fatalf("expected ErrTileNotInHand, got %v", err)
	}

	// Legal discard passes the turn and opens the claim window.
	out := snap.Players[0].Hand[0]
	if err := g.Discard(0, out); err != nil {
		t.Fatalf("Discard err: %v", err)
	}
	snap = g.Snapshot()
	if snap.CurrentSeat != 1 || snap.Phase != PhaseTypeDraw {
		t.Fatalf("turn must pass to seat 1 in draw phase, got seat %d phase %v", snap.CurrentSeat, snap.Phase)
	}
	if !snap.HasOpenDiscard || snap.OpenDiscard != out {
		t.Fatalf("discard must stay open to claims, got %+v", snap.OpenDiscard)
	}
	assertConservation(t, g)
}

func TestDiscard_OverwritesOpenDiscard(t *testing.T) {
	dealer := 0
	g := newSeatedGame(t, Config{
		WallOverride:     wallWithHands(t, dealer, [SeatCount][]string{}, "WN", "DG"),
		ForcedDealerSeat: &dealer,
	})
	if err := g.StartHand(); err != nil {
		t.Fatalf("StartHand err: %v", err)
	}

	first := g.Snapshot().Players[0].Hand[0]
	if err := g.Discard(0, first); err != nil {
		t.Fatalf("Discard err: %v", err)
	}
	drawn, ok, err := g.Draw(1)
	if err != nil || !ok {
		t.Fatalf("Draw err: %v ok=%v", err, ok)
	}
	if drawn != tile.TileDragonGreen {
		t.Fatalf("scripted draw mismatch: %s", drawn)
	}
	if err := g.Discard(1, drawn); err != nil {
		t.Fatalf("Discard err: %v", err)
	}

	snap := g.Snapshot()
	if snap.OpenDiscard != drawn || snap.DiscarderSeat != 1 {
		t.Fatalf("new discard must overwrite the open one, got %s from %d", snap.OpenDiscard, snap.DiscarderSeat)
	}
	if len(snap.DiscardPile) != 2 {
		t.Fatalf("shared pile keeps both discards, got %d", len(snap.DiscardPile))
	}
}

func TestDeclareWin_SelfDraw(t *testing.T) {
	dealer := 0
	hands := [SeatCount][]string{0: {
		"C1", "C1", "C1", "C2",
		"C3", "C4", "B5", "B6",
		"B7", "K9", "K9", "K9",
		"DR", "DR", "WE", "WE",
	}}
	// Dealer's 17th tile completes the DR triplet.
	g := newSeatedGame(t, Config{
		WallOverride:     wallWithHands(t, dealer, hands, "DR"),
		ForcedDealerSeat: &dealer,
	})
	if err := g.StartHand(); err != nil {
		t.Fatalf("StartHand err: %v", err)
	}

	res, err := g.DeclareWin(0)
	if err != nil {
		t.Fatalf("DeclareWin err: %v", err)
	}
	if res.Kind != WinStandard {
		t.Fatalf("expected standard win, got %+v", res)
	}
	status, winner := g.Status()
	if status != StatusFinished || winner != 0 {
		t.Fatalf("expected finished with winner 0, got %v/%d", status, winner)
	}

	ledger := g.Ambitions()
	if len(ledger) == 0 || ledger[0].Kind != AmbitionTodas {
		t.Fatalf("win must append detector ambitions, got %v", ledger)
	}
	assertConservation(t, g)
}

func TestDeclareWin_RejectsIncompleteHand(t *testing.T) {
	dealer := 0
	g := newSeatedGame(t, Config{
		WallOverride:     wallWithHands(t, dealer, [SeatCount][]string{}, "WN"),
		ForcedDealerSeat: &dealer,
	})
	if err := g.StartHand(); err != nil {
		t.Fatalf("StartHand err: %v", err)
	}
	if _, err := g.DeclareWin(0); err != ErrInvalidClaim {
		t.Fatalf("expected ErrInvalidClaim, got %v", err)
	}
	if status, _ := g.Status(); status != StatusPlaying {
		t.Fatalf("rejected win must not end the game")
	}
}

func TestDeclareKong_ConcealedWithReplacementDraw(t *testing.T) {
	dealer := 0
	hands := [SeatCount][]string{0: {
		"C9", "C9", "C9", "C9",
		"C3", "C4", "B5", "B6",
		"B7", "K9", "K9", "K9",
		"DR", "DR", "WE", "WE",
	}}
	g := newSeatedGame(t, Config{
		WallOverride:     wallWithHands(t, dealer, hands, "B1", "B2"),
		ForcedDealerSeat: &dealer,
	})
	if err := g.StartHand(); err != nil {
		t.Fatalf("StartHand err: %v", err)
	}

	before := g.Snapshot()
	if err := g.DeclareKong(0, tile.TileCircle9); err != nil {
		t.Fatalf("DeclareKong err: %v", err)
	}
	after := g.Snapshot()

	if after.WallCount != before.WallCount-1 {
		t.Fatalf("kong must trigger exactly one replacement draw: wall %d -> %d", before.WallCount, after.WallCount)
	}
	if after.CurrentSeat != 0 || after.Phase != PhaseTypeDiscard {
		t.Fatalf("turn must not advance until the kong claimant discards")
	}
	melds := after.Players[0].Melds
	if len(melds) != 1 || melds[0].Kind != MeldKong || !melds[0].Concealed {
		t.Fatalf("expected one concealed kong, got %+v", melds)
	}

	ledger := g.Ambitions()
	if len(ledger) != 1 || ledger[0].Kind != AmbitionKang {
		t.Fatalf("kong must log an instant kang, got %v", ledger)
	}
	assertConservation(t, g)
}

func TestWallExhaustion_SignalsDraw(t *testing.T) {
	g := newSeatedGame(t, Config{Seed: 7})
	if err := g.StartHand(); err != nil {
		t.Fatalf("StartHand err: %v", err)
	}

	// Dealer opens; everyone then discards exactly what they draw until the
	// wall runs dry.
	snap := g.Snapshot()
	if err := g.Discard(snap.CurrentSeat, snap.Players[snap.CurrentSeat].Hand[0]); err != nil {
		t.Fatalf("opening discard err: %v", err)
	}
	for i := 0; i < tile.TotalTiles; i++ {
		snap = g.Snapshot()
		drawn, ok, err := g.Draw(snap.CurrentSeat)
		if err != nil {
			t.Fatalf("Draw err: %v", err)
		}
		if !ok {
			if err := g.EndDrawn(); err != nil {
				t.Fatalf("EndDrawn err: %v", err)
			}
			status, winner := g.Status()
			if status != StatusDrawn || winner != InvalidSeat {
				t.Fatalf("expected drawn game, got %v/%d", status, winner)
			}
			assertConservation(t, g)
			return
		}
		if err := g.Discard(snap.CurrentSeat, drawn); err != nil {
			t.Fatalf("Discard err: %v", err)
		}
	}
	t.Fatalf("wall never exhausted")
}
