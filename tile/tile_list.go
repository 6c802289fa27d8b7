package tile

import "math/rand"

// List is an ordered sequence of physical tiles. Used for walls, hands,
// discard piles.
type List []ID

func (ls *List) Init(ids []ID) {
	*ls = make([]ID, len(ids))
	copy(*ls, ids)
}

// Count 获取总牌数
func (ls List) Count() int {
	return len(ls)
}

// Shuffle is an unbiased Fisher-Yates permutation driven by the game rng.
func (ls List) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(ls), func(i, j int) {
		ls[i], ls[j] = ls[j], ls[i]
	})
}

func (ls *List) Add(ids ...ID) {
	*ls = append(*ls, ids...)
}

// PopFront removes and returns the wall front (the next draw).
func (ls *List) PopFront() (ID, bool) {
	if len(*ls) == 0 {
		return 0, false
	}
	id := (*ls)[0]
	*ls = (*ls)[1:]
	return id, true
}

// RemoveAt removes the tile at index i, preserving order.
func (ls *List) RemoveAt(i int) ID {
	id := (*ls)[i]
	*ls = append((*ls)[:i], (*ls)[i+1:]...)
	return id
}

// IndexOf returns the position of the first instance matching identity t,
// or -1.
func (ls List) IndexOf(t Tile) int {
	for i, id := range ls {
		if id.Of().Matches(t) {
			return i
		}
	}
	return -1
}

// IndexOfID returns the position of the physical tile id, or -1.
func (ls List) IndexOfID(want ID) int {
	for i, id := range ls {
		if id == want {
			return i
		}
	}
	return -1
}

// CountMatching counts instances matching identity t.
func (ls List) CountMatching(t Tile) int {
	n := 0
	for _, id := range ls {
		if id.Of().Matches(t) {
			n++
		}
	}
	return n
}

func (ls List) Clone() List {
	out := make(List, len(ls))
	copy(out, ls)
	return out
}
