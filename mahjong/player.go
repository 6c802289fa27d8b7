package mahjong

import "mahjong-lite/tile"

type Player struct {
	ID    uint64
	Seat  int
	Robot bool

	hand     tile.List // unmelded non-bonus tiles, player arrangement order
	melds    []Meld    // insertion order = formation order
	flowers  tile.List // bonus tiles, exposed on draw
	discards tile.List // chronological
}

func (p *Player) IsRobot() bool { return p.Robot }

func (p *Player) Hand() tile.List     { return p.hand }
func (p *Player) Melds() []Meld       { return p.melds }
func (p *Player) Flowers() tile.List  { return p.flowers }
func (p *Player) Discards() tile.List { return p.discards }

func (p *Player) resetForNewGame() {
	p.hand = make(tile.List, 0, HandBaseSize+1)
	p.melds = nil
	p.flowers = nil
	p.discards = nil
}

func (p *Player) addHandTile(ids ...tile.ID) {
	p.hand.Add(ids...)
}

func (p *Player) addFlower(id tile.ID) {
	p.flowers.Add(id)
}

func (p *Player) addMeld(m Meld) {
	p.melds = append(p.melds, m)
}

// removeMatching extracts n hand instances matching identity t.
// Returns nil without mutating if the hand holds fewer than n.
func (p *Player) removeMatching(t tile.Tile, n int) tile.List {
	if p.hand.CountMatching(t) < n {
		return nil
	}
	out := make(tile.List, 0, n)
	for len(out) < n {
		i := p.hand.IndexOf(t)
		out = append(out, p.hand.RemoveAt(i))
	}
	return out
}

// handTileCount is hand + 3 per meld; 16 when settled, 17 mid-turn.
func (p *Player) handTileCount() int {
	return len(p.hand) + 3*len(p.melds)
}

// exposedPung returns the index of an exposed pung matching t, or -1.
// Used by the kong-promotion path.
func (p *Player) exposedPung(t tile.Tile) int {
	for i, m := range p.melds {
		if m.Kind == MeldPung && !m.Concealed && m.Identity().Matches(t) {
			return i
		}
	}
	return -1
}
