package mahjong

import "mahjong-lite/tile"

// Meld is a committed group of 3-4 physical tiles. Immutable once formed,
// except for the append-only kong-promotion path that grows an exposed pung
// into a kong.
type Meld struct {
	Kind      MeldKind
	Tiles     tile.List
	Concealed bool
	// ClaimedFrom is the seat the claimed tile came from, InvalidSeat for
	// self-formed melds.
	ClaimedFrom int
}

// Identity returns the tile kind the meld is built on. For chows this is the
// lowest rank member.
func (m Meld) Identity() tile.Tile {
	if len(m.Tiles) == 0 {
		return tile.TileInvalid
	}
	low := m.Tiles[0].Of()
	for _, id := range m.Tiles[1:] {
		if t := id.Of(); t.SortKey() < low.SortKey() {
			low = t
		}
	}
	return low
}

// TrioTiles returns the three identity-bearing tiles of the meld; a kong's
// fourth copy does not count toward the 17-tile winning total.
func (m Meld) TrioTiles() []tile.Tile {
	ts := tile.Identities(m.Tiles)
	if len(ts) > 3 {
		ts = ts[:3]
	}
	return ts
}

func (m Meld) clone() Meld {
	out := m
	out.Tiles = m.Tiles.Clone()
	return out
}
