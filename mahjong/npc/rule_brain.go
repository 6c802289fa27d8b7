package npc

import (
	"math/rand"

	"mahjong-lite/mahjong"
	"mahjong-lite/tile"
)

// RuleBrain makes decisions by scoring hand states with tunable parameters.
type RuleBrain struct {
	Persona *NPCPersona
	rng     *rand.Rand
}

// NewRuleBrain creates a RuleBrain from a persona definition.
func NewRuleBrain(persona *NPCPersona, seed int64) *RuleBrain {
	return &RuleBrain{
		Persona: persona,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

func (b *RuleBrain) Name() string { return b.Persona.Name }

// Decide implements BrainDecider. Strict priority: win first, then claims on
// the open discard gated by hand-value improvement, then draw or the
// lowest-scoring discard.
func (b *RuleBrain) Decide(view GameView) Decision {
	myTurn := view.Seat == view.CurrentSeat

	if view.HasOpenDiscard && view.DiscarderSeat != view.Seat {
		if d, ok := b.claimDecision(view); ok {
			return d
		}
		if !myTurn {
			return Decision{Action: ActionPass}
		}
	}

	if myTurn && view.Phase == mahjong.PhaseTypeDiscard && view.HasDrawnThisTurn {
		if mahjong.EvaluateHand(view.Hand, viewMelds(view.Melds), view.FlowerCount).Valid {
			return Decision{Action: ActionWin}
		}
		if t, ok := b.selfKong(view); ok {
			return Decision{Action: ActionKong, Tile: t}
		}
		if t, ok := b.chooseDiscard(view); ok {
			return Decision{Action: ActionDiscard, Tile: t}
		}
	}
	if myTurn && view.Phase == mahjong.PhaseTypeDraw {
		return Decision{Action: ActionDraw}
	}

	// Fallback: the game must always progress.
	if myTurn && len(view.Hand) > 0 {
		return Decision{Action: ActionDiscard, Tile: view.Hand[0]}
	}
	return Decision{Action: ActionPass}
}

// claimDecision evaluates the open discard in priority order Win > Kong >
// Pung > Chow. Kong is always taken; pung and chow must beat the current
// hand value by a kind-specific margin, and chow is expert-only.
func (b *RuleBrain) claimDecision(view GameView) (Decision, bool) {
	discard := view.OpenDiscard
	melds := viewMelds(view.Melds)

	candidate := make([]tile.Tile, 0, len(view.Hand)+1)
	candidate = append(candidate, view.Hand...)
	candidate = append(candidate, discard)
	if mahjong.EvaluateHand(candidate, melds, view.FlowerCount).Valid {
		return Decision{Action: ActionClaim, Claim: mahjong.ClaimWin, Tile: discard}, true
	}

	matching := countMatching(view.Hand, discard)
	if matching >= 3 {
		// Instant payout plus a guaranteed trio.
		return Decision{Action: ActionClaim, Claim: mahjong.ClaimKong, Tile: discard}, true
	}

	current := handValue(view.Hand, len(view.Melds))
	greedCut := int(b.Persona.Brain.ClaimGreed * 5)

	if matching >= 2 {
		after := removeMatching(view.Hand, discard, 2)
		if handValue(after, len(view.Melds)+1) >= current+pungClaimMargin-greedCut {
			return Decision{Action: ActionClaim, Claim: mahjong.ClaimPung, Tile: discard}, true
		}
	}

	if b.Persona.Tier == TierExpert {
		if partners, ok := runPartners(view.Hand, discard); ok {
			after := removeMatching(view.Hand, partners[0], 1)
			after = removeMatching(after, partners[1], 1)
			if handValue(after, len(view.Melds)+1) >= current+chowClaimMargin-greedCut {
				return Decision{Action: ActionClaim, Claim: mahjong.ClaimChow, Tile: discard}, true
			}
		}
	}
	return Decision{}, false
}

const (
	pungClaimMargin = 15
	chowClaimMargin = 10

	// Wall size below which caution starts biasing discards toward tiles
	// already proven safe.
	lateWallCount = 30
)

// selfKong reports a four-of-a-kind held concealed, or a drawn fourth copy of
// an exposed pung.
func (b *RuleBrain) selfKong(view GameView) (tile.Tile, bool) {
	for _, t := range view.Hand {
		if countMatching(view.Hand, t) >= 4 {
			return t, true
		}
		for _, m := range view.Melds {
			if m.Kind == mahjong.MeldPung && len(m.Tiles) > 0 && m.Tiles[0].Matches(t) {
				return t, true
			}
		}
	}
	return tile.TileInvalid, false
}

// chooseDiscard picks the hand tile with the lowest discard value. Within two
// tiles of a win the scoring flips to conservative mode and the brain sheds
// isolated singles instead of touching near-complete groups.
func (b *RuleBrain) chooseDiscard(view GameView) (tile.Tile, bool) {
	if len(view.Hand) == 0 {
		return tile.TileInvalid, false
	}
	conservative := estimateDistance(view.Hand, len(view.Melds)) <= 2

	best := view.Hand[0]
	bestScore := 1 << 30
	seen := make(map[tile.Tile]bool, len(view.Hand))
	for _, t := range view.Hand {
		if seen[t] {
			continue
		}
		seen[t] = true
		score := b.discardValue(t, view, conservative)
		if b.Persona.Brain.Randomness > 0 {
			score += int((b.rng.Float64() - 0.5) * b.Persona.Brain.Randomness * 10)
		}
		if score < bestScore {
			best = t
			bestScore = score
		}
	}
	return best, true
}

// discardValue scores one candidate tile; lower means more disposable.
func (b *RuleBrain) discardValue(t tile.Tile, view GameView, conservative bool) int {
	rest := removeMatching(view.Hand, t, 1)

	score := 10
	if t.IsHonor() {
		score = 20
	}

	matching := countMatching(rest, t)
	switch {
	case matching >= 2:
		score -= 50 // near-kong
	case matching == 1:
		score -= 25 // near-pung
	}

	bothAdjacent := false
	if t.IsNumbered() {
		r := t.Rank()
		left := r > 1 && countMatching(rest, t.WithRank(r-1)) > 0
		right := r < 9 && countMatching(rest, t.WithRank(r+1)) > 0
		gapped := (r > 2 && countMatching(rest, t.WithRank(r-2)) > 0) ||
			(r < 8 && countMatching(rest, t.WithRank(r+2)) > 0)
		switch {
		case left && right:
			score -= 30
			bothAdjacent = true
		case left || right:
			score -= 15
		case gapped:
			score -= 10
		}
	}

	// Danger adjustment: matching tiles already discarded are safer to let
	// go. Cautious personas lean on that harder once the wall runs low.
	safetyWeight := 5
	if view.WallCount > 0 && view.WallCount <= lateWallCount {
		safetyWeight += int(b.Persona.Brain.Caution * 10)
	}
	score -= safetyWeight * countMatching(view.AllDiscards, t)
	if t.IsNumbered() && t.Rank() >= 4 && t.Rank() <= 6 {
		score += 10
	}
	if t.IsHonor() {
		score -= 5
	}
	if t.IsNumbered() && (t.Rank() == 1 || t.Rank() == 9) {
		score += 5
	}
	if t.IsNumbered() && t.Rank() >= 4 && t.Rank() <= 6 {
		score -= 5
	}

	if conservative {
		score += 50
		switch {
		case matching == 1:
			score += 100 // breaks a pair
		case matching >= 2:
			score += 150 // breaks a triplet
		}
		if bothAdjacent {
			score += 75 // breaks a filled run
		}
	}
	return score
}

// handValue is the weighted hand score used to compare before/after claim
// states.
func handValue(hand []tile.Tile, meldCount int) int {
	score := meldCount * 30

	counts := make(map[tile.Tile]int, len(hand))
	for _, t := range hand {
		counts[t]++
	}
	for _, n := range counts {
		switch {
		case n >= 3:
			score += 25
		case n == 2:
			score += 15
		}
	}
	for t := range counts {
		if !t.IsNumbered() {
			continue
		}
		r := t.Rank()
		if (r < 9 && counts[t.WithRank(r+1)] > 0) || (r < 8 && counts[t.WithRank(r+2)] > 0) {
			score += 10
		}
	}

	score += 5 * (mahjong.HandBaseSize + 1 - len(hand))
	return score
}

// estimateDistance is the better of a pairs-oriented and a melds-oriented
// shortfall estimate, in tiles still needed.
func estimateDistance(hand []tile.Tile, meldCount int) int {
	counts := make(map[tile.Tile]int, len(hand))
	for _, t := range hand {
		counts[t]++
	}

	// Pairs route: seven pairs plus one trio.
	pairs, maxGroup := 0, 0
	for _, n := range counts {
		pairs += n / 2
		if n > maxGroup {
			maxGroup = n
		}
	}
	pairsDist := 0
	if pairs < 7 {
		pairsDist += 7 - pairs
	}
	if maxGroup < 3 {
		pairsDist += 3 - maxGroup
	}
	if meldCount > 0 {
		// Exposed melds lock the pairs shape out for everything but a trio.
		pairsDist += 3 * (meldCount - 1)
	}

	// Melds route: five trios plus one pair.
	trios := meldCount
	havePair := false
	remaining := make(map[tile.Tile]int, len(counts))
	for t, n := range counts {
		if n >= 3 {
			trios++
			n -= 3
		}
		remaining[t] = n
	}
	for t, n := range remaining {
		if !t.IsNumbered() || n == 0 {
			continue
		}
		r := t.Rank()
		if r <= 7 && remaining[t.WithRank(r+1)] > 0 && remaining[t.WithRank(r+2)] > 0 {
			trios++
			remaining[t]--
			remaining[t.WithRank(r+1)]--
			remaining[t.WithRank(r+2)]--
		}
	}
	for _, n := range remaining {
		if n >= 2 {
			havePair = true
			break
		}
	}
	meldsDist := 0
	if trios < mahjong.TriosNeeded {
		meldsDist += mahjong.TriosNeeded - trios
	}
	if !havePair {
		meldsDist++
	}

	if pairsDist < meldsDist {
		return pairsDist
	}
	return meldsDist
}

// runPartners finds two hand tiles completing a run with the discard,
// checking the low, middle and high positions in that order.
func runPartners(hand []tile.Tile, discard tile.Tile) ([2]tile.Tile, bool) {
	if !discard.IsNumbered() {
		return [2]tile.Tile{}, false
	}
	rank := int(discard.Rank())
	patterns := [3][2]int{
		{rank + 1, rank + 2},
		{rank - 1, rank + 1},
		{rank - 2, rank - 1},
	}
	for _, pat := range patterns {
		if pat[0] < 1 || pat[1] > 9 {
			continue
		}
		a := discard.WithRank(byte(pat[0]))
		c := discard.WithRank(byte(pat[1]))
		if countMatching(hand, a) >= 1 && countMatching(hand, c) >= 1 {
			return [2]tile.Tile{a, c}, true
		}
	}
	return [2]tile.Tile{}, false
}

func countMatching(ts []tile.Tile, want tile.Tile) int {
	n := 0
	for _, t := range ts {
		if t.Matches(want) {
			n++
		}
	}
	return n
}

func removeMatching(ts []tile.Tile, want tile.Tile, n int) []tile.Tile {
	out := make([]tile.Tile, 0, len(ts))
	for _, t := range ts {
		if n > 0 && t.Matches(want) {
			n--
			continue
		}
		out = append(out, t)
	}
	return out
}

// viewMelds rebuilds engine melds from snapshot identities. Only identities
// matter to the detector, so arena instances are re-allocated freely.
func viewMelds(ms []mahjong.MeldSnapshot) []mahjong.Meld {
	out := make([]mahjong.Meld, 0, len(ms))
	for _, m := range ms {
		ids, err := tile.BuildIDs(m.Tiles)
		if err != nil {
			continue
		}
		out = append(out, mahjong.Meld{
			Kind:        m.Kind,
			Tiles:       ids,
			Concealed:   m.Concealed,
			ClaimedFrom: m.ClaimedFrom,
		})
	}
	return out
}
