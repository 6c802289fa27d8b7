package mahjong

import "mahjong-lite/tile"

type MeldSnapshot struct {
	Kind        MeldKind
	Tiles       []tile.Tile
	Concealed   bool
	ClaimedFrom int
}

type PlayerSnapshot struct {
	ID       uint64
	Seat     int
	Robot    bool
	Hand     []tile.Tile
	Melds    []MeldSnapshot
	Flowers  []tile.Tile
	Discards []tile.Tile
}

type Snapshot struct {
	Status GameStatus
	Winner int

	CurrentSeat      int
	Phase            Phase
	HasDrawnThisTurn bool

	DealerSeat     int
	PrevailingWind tile.Tile

	WallCount   int
	DiscardPile []tile.Tile

	OpenDiscard    tile.Tile
	HasOpenDiscard bool
	DiscarderSeat  int

	Players   []PlayerSnapshot
	Ambitions []AmbitionRecord
}

// Snapshot returns a deep-copied read view of the game.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := Snapshot{
		Status:           g.status,
		Winner:           g.winner,
		CurrentSeat:      g.current,
		Phase:            g.phase,
		HasDrawnThisTurn: g.hasDrawnThisTurn,
		DealerSeat:       g.dealer,
		PrevailingWind:   g.prevailingWind,
		WallCount:        g.wall.Count(),
		DiscardPile:      tile.Identities(g.discardPile),
		HasOpenDiscard:   g.hasOpenDiscard,
		DiscarderSeat:    g.discarderSeat,
		Ambitions:        append([]AmbitionRecord{}, g.ambitions...),
	}
	if g.hasOpenDiscard {
		s.OpenDiscard = g.openDiscard.Of()
	}

	for seat := 0; seat < SeatCount; seat++ {
		p := g.players[seat]
		if p == nil {
			continue
		}
		ps := PlayerSnapshot{
			ID:       p.ID,
			Seat:     p.Seat,
			Robot:    p.Robot,
			Hand:     tile.Identities(p.hand),
			Flowers:  tile.Identities(p.flowers),
			Discards: tile.Identities(p.discards),
		}
		for _, m := range p.melds {
			ps.Melds = append(ps.Melds, MeldSnapshot{
				Kind:        m.Kind,
				Tiles:       tile.Identities(m.Tiles),
				Concealed:   m.Concealed,
				ClaimedFrom: m.ClaimedFrom,
			})
		}
		s.Players = append(s.Players, ps)
	}
	return s
}
