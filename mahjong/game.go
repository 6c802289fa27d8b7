package mahjong

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"mahjong-lite/tile"
)

// Game is the single-table rules engine. Every transition is a synchronous,
// atomic call; callers serialize who may act (one decision per discard window).
type Game struct {
	cfg Config
	rng *rand.Rand

	mu sync.Mutex

	players [SeatCount]*Player

	wall        tile.List
	discardPile tile.List

	// the one discard currently open to claims
	openDiscard    tile.ID
	hasOpenDiscard bool
	discarderSeat  int

	current          int
	phase            Phase
	hasDrawnThisTurn bool

	prevailingWind tile.Tile
	dealer         int

	ambitions []AmbitionRecord

	status GameStatus
	winner int
	winRes *WinResult
}

func NewGame(cfg Config) (*Game, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &Game{
		cfg:            cfg,
		rng:            rand.New(rand.NewSource(seed)),
		prevailingWind: tile.TileWindEast,
		dealer:         InvalidSeat,
		discarderSeat:  InvalidSeat,
		winner:         InvalidSeat,
	}
	return g, nil
}

// SitDown seats a player. All four seats must be filled before StartHand.
func (g *Game) SitDown(seat int, playerID uint64, robot bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if seat < 0 || seat >= SeatCount {
		return fmt.Errorf("invalid seat %d", seat)
	}
	if g.players[seat] != nil {
		return fmt.Errorf("seat %d already occupied", seat)
	}
	g.players[seat] = &Player{
		ID:    playerID,
		Seat:  seat,
		Robot: robot,
	}
	return nil
}

func (g *Game) Player(seat int) *Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	if seat < 0 || seat >= SeatCount {
		return nil
	}
	return g.players[seat]
}

// StartHand shuffles, deals 4x16 in round-robin batches of four, exposes
// dealt bonus tiles, and has the dealer draw the 17th tile. The game opens
// in the dealer's discard phase.
func (g *Game) StartHand() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for seat, p := range g.players {
		if p == nil {
			return fmt.Errorf("seat %d is empty", seat)
		}
		p.resetForNewGame()
	}

	if g.cfg.WallOverride != nil {
		g.wall.Init(g.cfg.WallOverride)
	} else {
		g.wall = tile.FullIDs()
		g.wall.Shuffle(g.rng)
	}
	g.discardPile = nil
	g.hasOpenDiscard = false
	g.discarderSeat = InvalidSeat
	g.ambitions = nil
	g.status = StatusPlaying
	g.winner = InvalidSeat
	g.winRes = nil

	if g.cfg.ForcedDealerSeat != nil {
		g.dealer = *g.cfg.ForcedDealerSeat
	} else {
		g.dealer = g.rng.Intn(SeatCount)
	}

	// Round-robin batches of 4 tiles, dealer first.
	for pass := 0; pass < HandBaseSize/4; pass++ {
		for j := 0; j < SeatCount; j++ {
			seat := (g.dealer + j) % SeatCount
			for k := 0; k < 4; k++ {
				id, ok := g.wall.PopFront()
				if !ok {
					return ErrInvalidState("wall underflow during deal")
				}
				g.players[seat].addHandTile(id)
			}
		}
	}

	// Expose bonus tiles dealt into hands and refill until every player
	// holds 16 playing tiles.
	for j := 0; j < SeatCount; j++ {
		seat := (g.dealer + j) % SeatCount
		if err := g.replaceBonusLocked(g.players[seat]); err != nil {
			return err
		}
	}

	// Dealer's 17th tile opens play.
	g.current = g.dealer
	if _, ok := g.drawTileLocked(g.players[g.dealer]); !ok {
		return ErrInvalidState("wall underflow on dealer draw")
	}
	g.phase = PhaseTypeDiscard
	g.hasDrawnThisTurn = true
	return nil
}

// replaceBonusLocked moves every bonus tile out of the hand into the flower
// collection, drawing replacements until only playing tiles remain.
func (g *Game) replaceBonusLocked(p *Player) error {
	for {
		moved := false
		for i := 0; i < len(p.hand); i++ {
			if !p.hand[i].Of().IsBonus() {
				continue
			}
			p.addFlower(p.hand.RemoveAt(i))
			id, ok := g.wall.PopFront()
			if !ok {
				return ErrInvalidState("wall underflow during bonus replacement")
			}
			p.hand.Add(id)
			moved = true
			break
		}
		if !moved {
			return nil
		}
	}
}

// drawTileLocked pops wall tiles for p, routing bonus tiles to flowers, until
// a playing tile lands in the hand. ok=false signals wall exhaustion, which
// the caller must treat as the end-of-wall condition.
func (g *Game) drawTileLocked(p *Player) (tile.ID, bool) {
	for {
		id, ok := g.wall.PopFront()
		if !ok {
			return 0, false
		}
		if id.Of().IsBonus() {
			p.addFlower(id)
			continue
		}
		p.addHandTile(id)
		return id, true
	}
}

// Draw pops the wall front for the acting player. Returns ok=false when the
// wall is exhausted; the engine does not decide the end-of-wall outcome, the
// caller ends the game via EndDrawn.
func (g *Game) Draw(seat int) (tile.Tile, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusPlaying {
		return tile.TileInvalid, false, ErrGameEnded
	}
	if seat != g.current {
		return tile.TileInvalid, false, ErrOutOfTurn
	}
	if g.phase != PhaseTypeDraw {
		return tile.TileInvalid, false, ErrWrongPhase
	}

	id, ok := g.drawTileLocked(g.players[seat])
	if !ok {
		return tile.TileInvalid, false, nil
	}
	g.phase = PhaseTypeDiscard
	g.hasDrawnThisTurn = true
	return id.Of(), true, nil
}

// Discard removes one hand instance matching t, appends it to the player and
// shared discard piles, and opens it to claims. The turn passes to the next
// seat in draw phase.
func (g *Game) Discard(seat int, t tile.Tile) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusPlaying {
		return ErrGameEnded
	}
	if seat != g.current {
		return ErrOutOfTurn
	}
	if g.phase != PhaseTypeDiscard {
		return ErrWrongPhase
	}
	p := g.players[seat]
	i := p.hand.IndexOf(t)
	if i < 0 {
		return ErrTileNotInHand
	}

	id := p.hand.RemoveAt(i)
	p.discards.Add(id)
	g.discardPile.Add(id)
	g.openDiscard = id
	g.hasOpenDiscard = true
	g.discarderSeat = seat

	g.current = (g.current + 1) % SeatCount
	g.phase = PhaseTypeDraw
	g.hasDrawnThisTurn = false
	return nil
}

// DeclareWin declares a self-drawn win from the acting player's 17-tile hand.
func (g *Game) DeclareWin(seat int) (*WinResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusPlaying {
		return nil, ErrGameEnded
	}
	if seat != g.current {
		return nil, ErrOutOfTurn
	}
	if g.phase != PhaseTypeDiscard || !g.hasDrawnThisTurn {
		return nil, ErrWrongPhase
	}

	p := g.players[seat]
	res := EvaluateHand(tile.Identities(p.hand), p.melds, len(p.flowers))
	if !res.Valid {
		return nil, ErrInvalidClaim
	}
	g.finishWinLocked(seat, &res)
	return &res, nil
}

// DeclareKong forms a kong from the acting player's own hand: either four
// concealed copies, or the drawn fourth copy promoting an exposed pung
// (append-only). A replacement draw follows before the discard.
func (g *Game) DeclareKong(seat int, t tile.Tile) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusPlaying {
		return ErrGameEnded
	}
	if seat != g.current {
		return ErrOutOfTurn
	}
	if g.phase != PhaseTypeDiscard || !g.hasDrawnThisTurn {
		return ErrWrongPhase
	}

	p := g.players[seat]
	switch {
	case p.hand.CountMatching(t) >= 4:
		ids := p.removeMatching(t, 4)
		p.addMeld(Meld{
			Kind:        MeldKong,
			Tiles:       ids,
			Concealed:   true,
			ClaimedFrom: InvalidSeat,
		})
	case p.hand.CountMatching(t) >= 1 && p.exposedPung(t) >= 0:
		mi := p.exposedPung(t)
		ids := p.removeMatching(t, 1)
		p.melds[mi].Tiles.Add(ids[0])
		p.melds[mi].Kind = MeldKong
	default:
		return ErrInvalidClaim
	}

	g.logAmbitionLocked(seat, AmbitionKang)

	// Kong replacement draw; the turn does not advance until the discard.
	if _, ok := g.drawTileLocked(p); !ok {
		return nil // wall exhausted, caller ends the game
	}
	return nil
}

// EndDrawn marks the game as a wall-exhaustion draw with no winner.
func (g *Game) EndDrawn() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusPlaying {
		return ErrGameEnded
	}
	g.status = StatusDrawn
	return nil
}

func (g *Game) finishWinLocked(seat int, res *WinResult) {
	g.status = StatusFinished
	g.winner = seat
	g.winRes = res
	for _, kind := range res.Ambitions {
		g.logAmbitionLocked(seat, kind)
	}
}

func (g *Game) logAmbitionLocked(seat int, kind AmbitionKind) {
	g.ambitions = append(g.ambitions, AmbitionRecord{
		Seat:   seat,
		Kind:   kind,
		Payout: AmbitionPayouts[kind] * g.cfg.unitPayout(),
		At:     time.Now(),
	})
}

// Status returns the terminal state and the winner seat (InvalidSeat if none).
func (g *Game) Status() (GameStatus, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status, g.winner
}

// WinResult returns the detector report of the winning hand, nil before a win.
func (g *Game) WinResult() *WinResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.winRes
}

// Ambitions returns a copy of the append-only ambition ledger.
func (g *Game) Ambitions() []AmbitionRecord {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]AmbitionRecord, len(g.ambitions))
	copy(out, g.ambitions)
	return out
}

// WallCount reports the remaining wall size.
func (g *Game) WallCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.wall.Count()
}
