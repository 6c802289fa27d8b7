package mahjong

import (
	"sort"

	"mahjong-lite/tile"
)

// WinResult is the detector's report for a candidate hand.
type WinResult struct {
	Valid     bool
	Kind      WinKind
	Ambitions []AmbitionKind
	Total     float64
	Breakdown map[AmbitionKind]float64
}

// EvaluateHand decides whether concealed tiles + melds form a complete
// 17-tile hand, and which ambitions it pays. Pure: no game state is touched.
//
// Two mutually exclusive shapes are tested in order: Siete Pares (seven pairs
// plus one trio), then the standard five-trios-plus-pair shape via
// backtracking decomposition.
func EvaluateHand(concealed []tile.Tile, melds []Meld, flowerCount int) WinResult {
	candidate := make([]tile.Tile, 0, WinningTotal)
	candidate = append(candidate, concealed...)
	for _, m := range melds {
		candidate = append(candidate, m.TrioTiles()...)
	}
	if len(candidate) != WinningTotal {
		return WinResult{}
	}

	if isSietePares(candidate) {
		return buildResult(WinSietePares, melds, flowerCount)
	}

	needed := TriosNeeded - len(melds)
	if needed < 0 {
		return WinResult{}
	}
	rem := append([]tile.Tile(nil), concealed...)
	sort.Slice(rem, func(i, j int) bool { return rem[i].SortKey() < rem[j].SortKey() })
	if decompose(rem, needed, false) {
		return buildResult(WinStandard, melds, flowerCount)
	}
	return WinResult{}
}

// isSietePares accepts seven identity pairs plus one trio: either one group
// of three and seven of two, or seven exact pairs whose three leftover
// singles run as a one-suit sequence. Quads count as two pairs.
func isSietePares(candidate []tile.Tile) bool {
	groups := make(map[tile.Tile]int, len(candidate))
	for _, t := range candidate {
		groups[t]++
	}

	twos, threes, others := 0, 0, 0
	pairs := 0
	var singles []tile.Tile
	for t, n := range groups {
		switch n {
		case 2:
			twos++
		case 3:
			threes++
		case 1, 4:
		default:
			others++
		}
		pairs += n / 2
		if n%2 == 1 {
			singles = append(singles, t)
		}
	}
	if others > 0 {
		return false
	}
	if threes == 1 && twos == 7 && len(groups) == 8 {
		return true
	}
	if pairs != 7 || len(singles) != 3 {
		return false
	}
	return isSequence(singles)
}

func isSequence(ts []tile.Tile) bool {
	if len(ts) != 3 {
		return false
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i].SortKey() < ts[j].SortKey() })
	if !ts[0].IsNumbered() {
		return false
	}
	return ts[1] == ts[0].WithRank(ts[0].Rank()+1) &&
		ts[2] == ts[0].WithRank(ts[0].Rank()+2)
}

// decompose is a full backtracking search over sorted remaining tiles. The
// first tile must open the pair (once), a triplet, or a sequence; each choice
// recurses on a fresh remaining snapshot and backtracks on failure.
func decompose(rem []tile.Tile, needed int, pairTaken bool) bool {
	if len(rem) == 0 {
		return needed == 0 && pairTaken
	}
	min := needed * 3
	if !pairTaken {
		min += 2
	}
	if len(rem) < min {
		return false
	}

	first := rem[0]

	// The pair, if still owed.
	if !pairTaken && len(rem) >= 2 && rem[1].Matches(first) {
		if decompose(rem[2:], needed, true) {
			return true
		}
	}

	// Triplet before sequence.
	if needed > 0 && len(rem) >= 3 && rem[1].Matches(first) && rem[2].Matches(first) {
		if decompose(rem[3:], needed-1, pairTaken) {
			return true
		}
	}

	// Sequence anchored on the first tile.
	if needed > 0 && first.IsNumbered() && first.Rank() <= 7 {
		i2 := indexOfTile(rem, first.WithRank(first.Rank()+1), 1)
		if i2 >= 0 {
			i3 := indexOfTile(rem, first.WithRank(first.Rank()+2), i2+1)
			if i3 >= 0 {
				next := make([]tile.Tile, 0, len(rem)-3)
				for k, t := range rem {
					if k == 0 || k == i2 || k == i3 {
						continue
					}
					next = append(next, t)
				}
				if decompose(next, needed-1, pairTaken) {
					return true
				}
			}
		}
	}

	// The first tile fits no grouping on this branch.
	return false
}

func indexOfTile(ts []tile.Tile, want tile.Tile, from int) int {
	for i := from; i < len(ts); i++ {
		if ts[i] == want {
			return i
		}
	}
	return -1
}

func buildResult(kind WinKind, melds []Meld, flowerCount int) WinResult {
	res := WinResult{
		Valid:     true,
		Kind:      kind,
		Breakdown: make(map[AmbitionKind]float64),
	}
	add := func(a AmbitionKind) {
		res.Ambitions = append(res.Ambitions, a)
		res.Breakdown[a] = AmbitionPayouts[a]
		res.Total += AmbitionPayouts[a]
	}

	add(AmbitionTodas)
	if kind == WinSietePares {
		// Fixed 1.5x total; standard bonuses do not stack.
		add(AmbitionSietePares)
		return res
	}

	if hasEscalera(melds) {
		add(AmbitionEscalera)
	}
	if flowerCount == 0 {
		add(AmbitionNoFlowers)
	}
	if len(melds) > 0 && allConcealed(melds) {
		add(AmbitionAllUp)
	}
	return res
}

// hasEscalera looks for three meld chows of one suit whose ranks span 1-9.
func hasEscalera(melds []Meld) bool {
	lows := make(map[tile.Suit]map[byte]bool)
	for _, m := range melds {
		if m.Kind != MeldChow {
			continue
		}
		low := m.Identity()
		if lows[low.Suit()] == nil {
			lows[low.Suit()] = make(map[byte]bool)
		}
		lows[low.Suit()][low.Rank()] = true
	}
	for _, ranks := range lows {
		if ranks[1] && ranks[4] && ranks[7] {
			return true
		}
	}
	return false
}

func allConcealed(melds []Meld) bool {
	for _, m := range melds {
		if !m.Concealed {
			return false
		}
	}
	return true
}
