package tile

import "fmt"

// TotalTiles is the physical tile count of a Filipino mahjong set:
// 34 playing kinds x 4 copies + 8 distinct bonus tiles.
const TotalTiles = 144

// ID is the stable index of one physical tile in the canonical set.
// Discards and claims reference IDs, so the four copies of a kind are
// never interchangeable instances.
type ID uint8

var fullSet [TotalTiles]Tile

func init() {
	i := 0
	for _, t := range PlayingKinds {
		for c := 0; c < 4; c++ {
			fullSet[i] = t
			i++
		}
	}
	for _, t := range BonusKinds {
		fullSet[i] = t
		i++
	}
}

// Of returns the identity of a physical tile.
func (id ID) Of() Tile {
	return fullSet[id]
}

func (id ID) String() string {
	return fmt.Sprintf("%s#%d", id.Of(), id)
}

// FullIDs returns all 144 tile IDs in canonical order.
func FullIDs() List {
	out := make(List, TotalTiles)
	for i := range out {
		out[i] = ID(i)
	}
	return out
}

// Identities maps IDs to their tile identities.
func Identities(ids []ID) []Tile {
	out := make([]Tile, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Of())
	}
	return out
}

// BuildIDs allocates distinct physical instances for the requested identities,
// in order. Useful for wall overrides in tests and replay specs. Fails if a
// kind is requested more often than it exists in the set.
func BuildIDs(tiles []Tile) ([]ID, error) {
	used := make(map[ID]bool, len(tiles))
	out := make([]ID, 0, len(tiles))
	for _, t := range tiles {
		found := false
		for i := 0; i < TotalTiles; i++ {
			id := ID(i)
			if used[id] || id.Of() != t {
				continue
			}
			used[id] = true
			out = append(out, id)
			found = true
			break
		}
		if !found {
			return nil, fmt.Errorf("no free instance of %s", t)
		}
	}
	return out, nil
}
